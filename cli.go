package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"symbus/emu/log"
)

type mode byte

const (
	mapMode     mode = iota // Print a memory map
	checkMode               // Check machine configurations
	dumpMode                // Dump memory
	versionMode             // Show symbus version
)

type (
	CLI struct {
		Map     Map     `cmd:"" help:"Print the memory map of a machine."`
		Check   Check   `cmd:"" help:"Check that machine configurations can be built."`
		Dump    Dump    `cmd:"" help:"Load a program and dump machine memory."`
		Version Version `cmd:"" help:"Show symbus version."`

		Log logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Map struct {
		Config string `arg:"" name:"/path/to/config" help:"${config_help}" type:"existingfile"`
		JSON   bool   `name:"json" help:"Print the memory map as JSON."`
	}

	Check struct {
		Configs  []string `arg:"" name:"/path/to/config" help:"${config_help}"`
		Complete bool     `name:"complete" help:"Require every bus address to be mapped."`
	}

	Dump struct {
		Config  string   `arg:"" name:"/path/to/config" help:"${config_help}" type:"existingfile"`
		Program string   `name:"program" help:"${program_help}" type:"existingfile"`
		From    *hexAddr `name:"from" help:"First address to dump (default: cpu program counter)." placeholder:"ADDR"`
		Len     int      `name:"len" help:"Number of bytes to dump." default:"256"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"config_help":  "Machine configuration file (TOML).",
	"program_help": "Binary file loaded in memory at the cpu program counter.",
	"log_help":     "Enable logging for specified modules.",
}

func newParser(cfg *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("symbus"),
		kong.Description("Memory-mapped bus for emulated machines."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars,
	}, options...)
	return kong.New(cfg, options...)
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := newParser(&cfg)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	cfg.mode = commandMode(ctx.Command())
	return cfg
}

func commandMode(cmd string) mode {
	switch {
	case strings.HasPrefix(cmd, "check"):
		return checkMode
	case strings.HasPrefix(cmd, "dump"):
		return dumpMode
	case cmd == "version":
		return versionMode
	}
	return mapMode
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
	var strs []string
	for _, m := range log.ModuleNames() {
		strs = append(strs, "    - "+m)
	}

	fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	var mask logModMask
	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			mask |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if mask != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		mask = logModMask(log.ModuleMaskAll)
	}

	*lm = mask
	log.EnableDebugModules(log.ModuleMask(mask))
	return nil
}

// hexAddr is a bus address given in hexadecimal, with an optional '$' or
// '0x' prefix.
type hexAddr uint32

// Decode implements kong.MapperValue interface.
func (a *hexAddr) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	str, ok := tok.Value.(string)
	if !ok {
		return fmt.Errorf("expected an address but got %q", tok)
	}
	s := strings.TrimPrefix(str, "$")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("invalid address %q", str)
	}
	*a = hexAddr(v)
	return nil
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
