package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"sl"
	"sl/internal/config"
	"sl/internal/lexer"
)

const version = "0.1.0"

// Exit codes follow sysexits(3).
const (
	exitOK       = 0
	exitUsage    = 64
	exitData     = 65 // lexical, syntax or resolution error
	exitNoInput  = 66
	exitSoftware = 70 // runtime error
	exitIOErr    = 74
)

func main() {
	if len(os.Args) < 2 {
		// no command: interactive on a terminal, otherwise a script on stdin
		if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			os.Exit(cmdRepl(nil))
		}
		os.Exit(cmdRun([]string{"-"}))
	}

	cmd := os.Args[1]

	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "tokens":
		os.Exit(cmdTokens(os.Args[2:]))
	case "ast":
		os.Exit(cmdAST(os.Args[2:]))
	case "config":
		os.Exit(cmdConfig(os.Args[2:]))
	case "help", "-h", "--help":
		usage(os.Stdout)
	case "version", "--version":
		fmt.Println("sl", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage(os.Stderr)
		os.Exit(exitUsage)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `SL language CLI

Usage:
  sl                          REPL on a terminal, otherwise run stdin
  sl run [-v] <file.sl|->     Run a script ("-" reads stdin)
  sl repl [-v] [-config f]    Start the REPL
  sl tokens <file.sl>         Print the token stream
  sl ast <file.sl>            Print the syntax tree
  sl config [-config f] [-write]
                              Print the effective REPL config, or write it
  sl version                  Print the version

Flags:
  -v       Debug logging on stderr
  -config  REPL config file (default: $HOME/.slrc.yaml)`)
}

func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// -------------- RUN --------------

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	verbose := fs.Bool("v", false, "debug logging on stderr")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "error: run: expected exactly one input file")
		return exitUsage
	}

	input := fs.Arg(0)
	src, err := readSource(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitNoInput
	}

	logger := newLogger(*verbose)
	session := sl.New(sl.Options{Logger: logger})

	start := time.Now()
	res := session.RunProgram(src)
	if logger != nil {
		logger.Info("finished",
			"file", input,
			"size", humanize.Bytes(uint64(len(src))),
			"elapsed", time.Since(start),
			"errors", len(res.Errors))
	}
	return exitCode(res)
}

func exitCode(res sl.Result) int {
	switch {
	case res.HadRuntimeError:
		return exitSoftware
	case res.HadError:
		return exitData
	}
	return exitOK
}

// -------------- REPL --------------

func cmdRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	verbose := fs.Bool("v", false, "debug logging on stderr")
	cfgPath := fs.String("config", config.DefaultPath(), "REPL config file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitUsage
	}
	if cfg.Banner {
		fmt.Printf("SL %s. Type :quit or Ctrl-D to exit.\n", version)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetMultiLineMode(true)

	if cfg.HistoryFile != "" && cfg.HistoryLimit > 0 {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer saveHistory(ln, cfg.HistoryFile, cfg.HistoryLimit)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		sig := <-sigc
		_ = saveHistory(ln, cfg.HistoryFile, cfg.HistoryLimit)
		ln.Close()
		os.Exit(signalExitCode(sig))
	}()

	session := sl.New(sl.Options{Logger: newLogger(*verbose)})

	for {
		code, ok := readByParseProbe(ln, cfg.Prompt, cfg.Continuation)
		if !ok {
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":q":
				return exitOK
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		res := session.RunInteractiveLine(code)
		if !res.HadError && res.Value != nil {
			fmt.Println(res.Value.String())
		}
	}

	return exitOK
}

// readByParseProbe keeps reading continuation lines while the input so far
// only fails to parse because it ends early.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl-C drops the pending entry
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if sl.IsIncomplete(src) {
			continue
		}
		return src, true
	}
}

// historyWriter is the part of *liner.State that saveHistory needs.
type historyWriter interface {
	WriteHistory(w io.Writer) (int, error)
}

// saveHistory writes at most limit of the newest entries to path. An empty
// path or a limit of 0 disables history.
func saveHistory(h historyWriter, path string, limit int) error {
	if path == "" || limit <= 0 {
		return nil
	}
	var buf bytes.Buffer
	if _, err := h.WriteHistory(&buf); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	text := strings.TrimSuffix(buf.String(), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return nil
}

// signalExitCode follows the shell convention of 128 plus the signal number.
func signalExitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}

// -------------- TOKENS / AST --------------

func cmdTokens(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "error: tokens: expected exactly one input file")
		return exitUsage
	}
	src, err := readSource(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitNoInput
	}

	toks, errs := lexer.Scan(src)
	for _, tok := range toks {
		fmt.Printf("%d:%d\t%-10s %s\n", tok.Pos.Line, tok.Pos.Column, tok.Kind, tok.Lexeme)
	}
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e)
	}
	if len(errs) > 0 {
		return exitData
	}
	return exitOK
}

func cmdAST(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "error: ast: expected exactly one input file")
		return exitUsage
	}
	src, err := readSource(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitNoInput
	}

	out, errs := sl.Dump(src)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return exitData
	}
	fmt.Print(out)
	return exitOK
}

// -------------- CONFIG --------------

func cmdConfig(args []string) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cfgPath := fs.String("config", config.DefaultPath(), "REPL config file")
	write := fs.Bool("write", false, "write the effective config to the file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitData
	}

	if *write {
		if err := config.Write(cfg, ""); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return exitIOErr
		}
		fmt.Println("wrote", cfg.Path)
		return exitOK
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitSoftware
	}
	fmt.Printf("# %s\n%s", cfg.Path, data)
	return exitOK
}
