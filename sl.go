// Package sl embeds the SL interpreter: source text goes through the lexer,
// parser, resolver and tree-walking evaluator, and a Session keeps global
// state between runs so a REPL can build on earlier input.
package sl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"sl/internal/ast"
	"sl/internal/interpreter"
	"sl/internal/lexer"
	"sl/internal/parser"
	"sl/internal/resolver"
	"sl/internal/runtime"
	"sl/internal/token"
)

// Value is an SL runtime value.
type Value = runtime.Value

// Kind is the type of a Value.
type Kind = runtime.Kind

const (
	KindNil      = runtime.KindNil
	KindBool     = runtime.KindBool
	KindNumber   = runtime.KindNumber
	KindString   = runtime.KindString
	KindCallable = runtime.KindCallable
	KindInstance = runtime.KindInstance
)

// RuntimeError is the error reported when evaluation fails.
type RuntimeError = runtime.RuntimeError

// NativeFunc implements a host-provided function. A returned error becomes
// a runtime error at the call site.
type NativeFunc = runtime.NativeFunc

// Value constructors for hosts.

func Nil() Value {
	return runtime.Nil()
}

func Bool(b bool) Value {
	return runtime.Bool(b)
}

func Number(f float64) Value {
	return runtime.Number(f)
}

func Str(s string) Value {
	return runtime.Str(s)
}

// NewNative wraps fn as a callable value taking exactly arity arguments.
func NewNative(name string, arity int, fn NativeFunc) Value {
	return runtime.CallableValue(&runtime.Native{Name: name, Params: arity, Fn: fn})
}

// Options configures a Session. The zero value prints to the process's
// stdout/stderr, reads a monotonic clock and discards logs.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Clock backs the clock() builtin, in seconds.
	Clock  func() float64
	Logger *slog.Logger
}

// Result reports the outcome of one run.
type Result struct {
	// HadError is set when any lexical, syntax, resolution or runtime error
	// occurred.
	HadError bool
	// HadRuntimeError is set when evaluation started and then failed.
	HadRuntimeError bool
	// Value is the trailing expression's value of an interactive line.
	Value *Value
	// Errors holds every reported error in order.
	Errors []error
}

// Session runs SL source against a persistent global environment. It is not
// safe for concurrent use.
type Session struct {
	id     string
	stderr io.Writer
	log    *slog.Logger
	interp *interpreter.Interpreter
}

// New creates a Session.
func New(opts Options) *Session {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	id := uuid.NewString()
	return &Session{
		id:     id,
		stderr: opts.Stderr,
		log:    opts.Logger.With("session", id),
		interp: interpreter.New(runtime.NewHost(opts.Stdout, opts.Clock)),
	}
}

// ID returns the session identifier attached to log records.
func (s *Session) ID() string {
	return s.id
}

// RunProgram runs a complete script. Any static error prevents execution.
func (s *Session) RunProgram(source string) Result {
	start := time.Now()
	log := s.log.With("mode", "program")

	toks, lexErrs := s.scan(log, source)
	p := parser.New(toks)
	stmts := p.Parse()
	log.Debug("parsed", "statements", len(stmts), "errors", len(p.Errors()))

	if errs := append(lexErrs, p.Errors()...); len(errs) > 0 {
		return s.fail(log, errs)
	}

	locals, errs := resolver.NewResolver().Resolve(stmts)
	log.Debug("resolved", "locals", len(locals), "errors", len(errs))
	if len(errs) > 0 {
		return s.fail(log, errs)
	}

	s.interp.Resolve(locals)
	if err := s.interp.Interpret(stmts); err != nil {
		return s.failRuntime(log, err)
	}
	log.Debug("run complete", "elapsed", time.Since(start))
	return Result{}
}

// RunInteractiveLine runs REPL input. A trailing bare expression is
// evaluated and returned in Result.Value.
func (s *Session) RunInteractiveLine(source string) Result {
	start := time.Now()
	log := s.log.With("mode", "interactive")

	toks, lexErrs := s.scan(log, source)
	p := parser.New(toks)
	in := p.ParseInteractive()
	log.Debug("parsed", "statements", len(in.Stmts), "expr", in.Expr != nil, "errors", len(p.Errors()))

	if errs := append(lexErrs, p.Errors()...); len(errs) > 0 {
		return s.fail(log, errs)
	}

	locals, errs := resolver.NewResolver().ResolveInteractive(in)
	log.Debug("resolved", "locals", len(locals), "errors", len(errs))
	if len(errs) > 0 {
		return s.fail(log, errs)
	}

	s.interp.Resolve(locals)
	if err := s.interp.Interpret(in.Stmts); err != nil {
		return s.failRuntime(log, err)
	}

	var res Result
	if in.Expr != nil {
		v, err := s.interp.Evaluate(in.Expr)
		if err != nil {
			return s.failRuntime(log, err)
		}
		res.Value = &v
	}
	log.Debug("run complete", "elapsed", time.Since(start))
	return res
}

// Define binds a global in the session, replacing any previous binding.
func (s *Session) Define(name string, v Value) {
	s.interp.Globals().Define(name, v)
}

func (s *Session) scan(log *slog.Logger, source string) ([]token.Token, []error) {
	toks, errs := lexer.Scan(source)
	log.Debug("scanned",
		"size", humanize.Bytes(uint64(len(source))),
		"tokens", humanize.Comma(int64(len(toks))),
		"errors", len(errs))
	return toks, errs
}

func (s *Session) fail(log *slog.Logger, errs []error) Result {
	for _, err := range errs {
		fmt.Fprintln(s.stderr, err)
	}
	log.Debug("rejected", "errors", len(errs))
	return Result{HadError: true, Errors: errs}
}

func (s *Session) failRuntime(log *slog.Logger, err error) Result {
	fmt.Fprintln(s.stderr, err)
	log.Debug("runtime error", "err", err)
	return Result{HadError: true, HadRuntimeError: true, Errors: []error{err}}
}

// IsIncomplete reports whether source failed to parse only because it ended
// too early, as with an unclosed block or string. A REPL uses it to keep
// reading lines.
func IsIncomplete(source string) bool {
	toks, lexErrs := lexer.Scan(source)
	for _, err := range lexErrs {
		var lerr *lexer.Error
		if errors.As(err, &lerr) && lerr.AtEnd {
			return true
		}
	}
	if len(lexErrs) > 0 {
		return false
	}

	p := parser.New(toks)
	p.ParseInteractive()
	for _, err := range p.Errors() {
		var perr *parser.Error
		if errors.As(err, &perr) && perr.AtEnd() {
			return true
		}
	}
	return false
}

// Dump returns the indented syntax tree of source, or the errors that kept
// it from parsing.
func Dump(source string) (string, []error) {
	toks, lexErrs := lexer.Scan(source)
	p := parser.New(toks)
	stmts := p.Parse()
	if errs := append(lexErrs, p.Errors()...); len(errs) > 0 {
		return "", errs
	}
	return ast.DumpProgram(stmts), nil
}
