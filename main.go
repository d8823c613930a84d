package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/leth4/leto-sub000/internal/app"
	"github.com/leth4/leto-sub000/internal/config"
)

const usage = `usage: leto-board [-config file] <command> [args]

commands:
  mcp [board.json...]           serve boards to MCP clients on stdin/stdout
  export <board.json> <out.png> render a board to a PNG image
  check <board.json>            summarize a board and report problems
`

func main() {
	// stdout carries the MCP protocol
	log.SetOutput(os.Stderr)

	fs := flag.NewFlagSet("leto-board", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath(), "config file")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "mcp":
		err = app.ServeMCP(cfg, rest...)
	case "export":
		if len(rest) != 2 {
			fs.Usage()
			os.Exit(2)
		}
		err = app.ExportPNG(cfg, rest[0], rest[1])
	case "check":
		if len(rest) != 1 {
			fs.Usage()
			os.Exit(2)
		}
		var r app.Report
		r, err = app.Check(cfg, rest[0])
		if err == nil {
			r.Print(os.Stdout)
			if !r.OK() {
				os.Exit(1)
			}
		}
	default:
		fs.Usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}
