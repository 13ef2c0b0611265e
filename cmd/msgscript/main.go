// msgscript - MessageScript codec CLI tool
//
// Usage:
//
//	msgscript decompile [file]        Decode a binary container and print surface text
//	msgscript compile [file]          Parse surface text and write a binary container
//	msgscript dump [file]             Decode a binary container and print a textual summary
//	msgscript version                Print version info
//
// Configuration (env vars, optionally loaded from a .env file):
//
//	MSGSCRIPT_LIBRARY_PATH   path to a function-library YAML document
//	MSGSCRIPT_ENDIAN         "little" or "big" (forces the Reader's endian hint)
//	MSGSCRIPT_LOG_FILE       path to a rotating diagnostic log (default: stderr only)
//	MSGSCRIPT_STRICT         "1" to enable strict integer narrowing
//
// If no file is given, reads from stdin; compile/decompile write to stdout.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ashfall/msgscript/msgscript"
	"github.com/ashfall/msgscript/batch"
	"github.com/ashfall/msgscript/compiler"
	"github.com/ashfall/msgscript/container"
	"github.com/ashfall/msgscript/decompile"
	"github.com/ashfall/msgscript/library"
	"github.com/ashfall/msgscript/surface"
)

const version = "0.1.0"

type cliConfig struct {
	libraryPath string
	endian      string
	logFile     string
	strict      bool
}

func loadConfig() cliConfig {
	godotenv.Load()
	return cliConfig{
		libraryPath: os.Getenv("MSGSCRIPT_LIBRARY_PATH"),
		endian:      strings.ToLower(os.Getenv("MSGSCRIPT_ENDIAN")),
		logFile:     os.Getenv("MSGSCRIPT_LOG_FILE"),
		strict:      os.Getenv("MSGSCRIPT_STRICT") == "1",
	}
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := loadConfig()
	diag := newDiagSink(cfg.logFile)

	lib, err := loadLibrary(cfg.libraryPath)
	if err != nil {
		fatal("load library: %v", err)
	}

	cmd := os.Args[1]
	var fileArg string
	if len(os.Args) > 2 && !strings.HasPrefix(os.Args[2], "-") {
		fileArg = os.Args[2]
	}

	var input io.Reader = os.Stdin
	if fileArg != "" {
		f, err := os.Open(fileArg)
		if err != nil {
			fatal("open file: %v", err)
		}
		defer f.Close()
		input = f
	}

	runID := batch.NewRunID()
	diag.Trace("run %s: command=%s", runID, cmd)

	switch cmd {
	case "decompile":
		cmdDecompile(input, lib, cfg, diag)
	case "compile":
		cmdCompile(input, lib, cfg, diag)
	case "dump":
		cmdDump(input, cfg, diag)
	case "version", "-v", "--version":
		fmt.Printf("msgscript %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `msgscript - MessageScript codec CLI tool

Usage:
  msgscript decompile [file]   Decode a binary container, print surface text
  msgscript compile [file]     Parse surface text, write a binary container
  msgscript dump [file]        Decode a binary container, print a summary
  msgscript version            Print version info

Environment:
  MSGSCRIPT_LIBRARY_PATH   function-library YAML document
  MSGSCRIPT_ENDIAN         "little" or "big"
  MSGSCRIPT_LOG_FILE       rotating diagnostic log path
  MSGSCRIPT_STRICT         "1" to reject narrowing integer literals

If no file is given, reads from stdin.
`)
}

func newDiagSink(logFile string) msgscript.DiagSink {
	if logFile == "" {
		return msgscript.NewWriterSink(os.Stderr, false)
	}
	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     28,
	}
	return msgscript.NewWriterSink(rotator, true)
}

func loadLibrary(path string) (*library.Set, error) {
	if path == "" {
		return nil, nil
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library %q: %w", path, err)
	}
	return library.LoadValidated(doc)
}

func endianOption(cfg cliConfig) container.ReaderOption {
	switch cfg.endian {
	case "little":
		return container.WithEndianHint(container.EndianLittle)
	case "big":
		return container.WithEndianHint(container.EndianBig)
	default:
		return container.WithEndianHint(container.EndianFromMagic)
	}
}

func cmdDecompile(r io.Reader, lib *library.Set, cfg cliConfig, diag msgscript.DiagSink) {
	raw, err := container.NewReader(r, endianOption(cfg), container.WithDiagSink(diag)).Read()
	if err != nil {
		fatal("read container: %v", err)
	}
	script, err := container.Lift(raw)
	if err != nil {
		fatal("lift model: %v", err)
	}

	d := decompile.NewDecompiler(decompile.WithLibrary(lib))
	text, err := d.DecompileScript(script)
	if err != nil {
		fatal("decompile: %v", err)
	}
	fmt.Print(text)
}

func cmdCompile(r io.Reader, lib *library.Set, cfg cliConfig, diag msgscript.DiagSink) {
	src, err := io.ReadAll(r)
	if err != nil {
		fatal("read input: %v", err)
	}

	windows, err := surface.Parse(string(src))
	if err != nil {
		fatal("parse surface syntax: %v", err)
	}

	c := compiler.NewCompiler(
		compiler.WithLibrary(lib),
		compiler.WithStrictNarrowing(cfg.strict),
		compiler.WithDiagSink(diag),
	)
	script, err := c.CompileWindows(windows)
	if err != nil {
		fatal("compile: %v", err)
	}

	w := container.NewWriter(
		container.WithWriterDiagSink(diag),
		container.WithStrictNarrowing(cfg.strict),
	)
	if err := w.WriteScript(os.Stdout, script); err != nil {
		fatal("write container: %v", err)
	}
}

func cmdDump(r io.Reader, cfg cliConfig, diag msgscript.DiagSink) {
	raw, err := container.NewReader(r, endianOption(cfg), container.WithDiagSink(diag)).Read()
	if err != nil {
		fatal("read container: %v", err)
	}
	script, err := container.Lift(raw)
	if err != nil {
		fatal("lift model: %v", err)
	}

	fmt.Printf("user_id=%d format=%v windows=%d\n", script.UserID, script.Format, len(script.Windows))
	for i, win := range script.Windows {
		switch w := win.(type) {
		case *msgscript.DialogueWindow:
			fmt.Printf("[%d] dialogue %q lines=%d\n", i, w.Identifier, len(w.Lines))
		case *msgscript.SelectionWindow:
			fmt.Printf("[%d] selection %q lines=%d\n", i, w.Identifier, len(w.Lines))
		}
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "msgscript: "+format+"\n", args...)
	os.Exit(1)
}
