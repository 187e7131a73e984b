// Command luma runs, inspects, and packages compiled Luau bytecode.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("luma")

func usage() {
	fmt.Fprintf(os.Stderr, `luma - Luau bytecode runner

Usage:
  luma [flags] <command> [arguments]

Commands:
  run <file>     Execute a bytecode file (.luauc) or sealed chunk (.lpk)
  dump <file>    Disassemble a bytecode file or sealed chunk
  pack <file>    Seal a bytecode file into a distributable chunk
  runs <hash>    Show the recorded run history of a chunk

Flags:
`)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  luma run script.luauc
  luma -trace run script.luauc
  luma -store luma.db run script.lpk
  luma dump script.luauc
  luma pack -name demo script.luauc
  luma -store luma.db runs 4b6e...
`)
}

func main() {
	configPath := flag.String("config", "", "path to a luma.toml config file")
	storePath := flag.String("store", "", "path to the chunk store database (overrides config)")
	trace := flag.Bool("trace", false, "log every executed instruction")
	verbose := flag.Int("v", 0, "log verbosity (0-2)")
	flag.Usage = usage
	flag.Parse()

	commonlog.Configure(*verbose, nil)

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fail("load config: %v", err)
	}
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "run":
		err = cmdRun(cfg, args[1:], *trace)
	case "dump":
		err = cmdDump(cfg, args[1:])
	case "pack":
		err = cmdPack(cfg, args[1:])
	case "runs":
		err = cmdRuns(cfg, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "luma: unknown command %q\n\n", args[0])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fail("%s: %v", args[0], err)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "luma: "+format+"\n", args...)
	os.Exit(1)
}
