package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"symbus/emu"
	"symbus/emu/log"
)

var version = "devel"

func main() {
	cfg := parseArgs(os.Args[1:])

	switch cfg.mode {
	case mapMode:
		checkf(runMap(os.Stdout, cfg.Map), "map failed")
	case checkMode:
		checkf(runCheck(os.Stdout, cfg.Check), "check failed")
	case dumpMode:
		highlight := term.IsTerminal(int(os.Stdout.Fd()))
		checkf(runDump(os.Stdout, cfg.Dump, highlight), "dump failed")
	case versionMode:
		fmt.Println("symbus", version)
	}
}

func loadMachine(path string) (*emu.Machine, error) {
	mcfg, err := emu.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return emu.NewMachine(mcfg)
}

func runMap(w io.Writer, args Map) error {
	m, err := loadMachine(args.Config)
	if err != nil {
		return err
	}
	defer m.Close()

	if args.JSON {
		buf := append(emu.EncodeMemoryMap(m.Bus), '\n')
		_, err := w.Write(buf)
		return err
	}
	return emu.WriteMemoryMap(w, m.Bus)
}

// runCheck builds all machines concurrently and reports the status of each
// of them, in the order they were given.
func runCheck(w io.Writer, args Check) error {
	results := make([]error, len(args.Configs))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for i, path := range args.Configs {
		g.Go(func() error {
			start := time.Now()
			results[i] = checkConfig(path, args.Complete)

			log.ModEmu.DebugZ("checked configuration").
				String("config", path).
				Duration("elapsed", time.Since(start)).
				Error("err", results[i]).
				End()
			return nil
		})
	}
	g.Wait()

	nfailed := 0
	for i, path := range args.Configs {
		if results[i] != nil {
			nfailed++
			fmt.Fprintf(w, "FAIL %s: %v\n", path, results[i])
			continue
		}
		fmt.Fprintf(w, "ok   %s\n", path)
	}

	if nfailed != 0 {
		return fmt.Errorf("%d of %d configuration(s) failed", nfailed, len(args.Configs))
	}
	log.ModEmu.Infof("%d configuration(s) checked", len(args.Configs))
	return nil
}

func checkConfig(path string, complete bool) error {
	m, err := loadMachine(path)
	if err != nil {
		return err
	}
	defer m.Close()

	if complete {
		return emu.CheckComplete(m.Bus)
	}
	return nil
}

func runDump(w io.Writer, args Dump, highlight bool) error {
	m, err := loadMachine(args.Config)
	if err != nil {
		return err
	}
	defer m.Close()

	if args.Program != "" {
		prog, err := os.ReadFile(args.Program)
		if err != nil {
			return err
		}
		if err := m.LoadProgram(prog); err != nil {
			return err
		}
		log.ModEmu.WithField("program", args.Program).Infof("loaded %d byte(s) at $%04X", len(prog), m.CPU.PC())
	}

	from := m.CPU.PC()
	if args.From != nil {
		from = uint32(*args.From)
	}
	return emu.Dump(w, m.Bus, from, args.Len, highlight)
}
