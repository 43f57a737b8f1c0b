package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/wasm2lua/wasm2lua"
	"github.com/wasm2lua/wasm2lua/wasm"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to a .wasm module")
		dialectName = flag.String("dialect", "luajit", "Target dialect: luajit or luau")
		outFile     = flag.String("o", "", "Write generated Lua to this file (default: stdout)")
		list        = flag.Bool("list", false, "List the module's exported functions and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: wasm2lua -wasm <file.wasm> [-dialect luajit|luau] [-o out.lua]")
		fmt.Fprintln(os.Stderr, "       wasm2lua -wasm <file.wasm> -list")
		fmt.Fprintln(os.Stderr, "       wasm2lua -wasm <file.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	dialect, err := parseDialect(*dialectName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i requires an interactive terminal on stdout")
			os.Exit(1)
		}
		if err := runInteractive(*wasmFile, dialect); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, *outFile, dialect, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseDialect(name string) (wasm2lua.Dialect, error) {
	switch strings.ToLower(name) {
	case "luajit", "lj":
		return wasm2lua.DialectLuaJIT, nil
	case "luau", "lu":
		return wasm2lua.DialectLuau, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q, want luajit or luau", name)
	}
}

func run(wasmFile, outFile string, dialect wasm2lua.Dialect, listOnly bool) error {
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	module, err := wasm.ParseModule(data)
	if err != nil {
		return fmt.Errorf("parse module: %w", err)
	}

	exports := describeExports(module)
	fmt.Fprintf(os.Stderr, "Module: %s\n", wasmFile)
	fmt.Fprintf(os.Stderr, "Exported functions: %d\n", len(exports))
	for _, e := range exports {
		fmt.Fprintf(os.Stderr, "  %s\n", e.signature())
	}

	if listOnly {
		return nil
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		return wasm2lua.Translate(module, f, wasm2lua.Config{Dialect: dialect})
	}

	return wasm2lua.Translate(module, out, wasm2lua.Config{Dialect: dialect})
}
