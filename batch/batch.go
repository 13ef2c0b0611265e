// Package batch fans concurrent compile/decompile work out across many
// files. Independent Compiler/Decompiler instances operate on disjoint
// input, one per goroutine: independent instances operating on disjoint
// data may run in parallel.
package batch

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ashfall/msgscript/msgscript"
	"github.com/ashfall/msgscript/compiler"
	"github.com/ashfall/msgscript/decompile"
	"github.com/ashfall/msgscript/library"
)

// RunID tags one batch invocation so its diagnostics can be correlated in
// a shared log file (see the CLI's lumberjack sink).
type RunID = uuid.UUID

// NewRunID allocates a fresh RunID for a batch invocation.
func NewRunID() RunID { return uuid.New() }

// Option configures a batch run.
type Option func(*settings)

type settings struct {
	workers int
	library *library.Set
	diag    msgscript.DiagSink
	strict  bool
}

// WithWorkers bounds how many files are compiled/decompiled concurrently.
// Zero (the default) means unbounded.
func WithWorkers(n int) Option {
	return func(s *settings) { s.workers = n }
}

// WithLibrary attaches a function Library to every per-file
// Compiler/Decompiler this batch run creates.
func WithLibrary(lib *library.Set) Option {
	return func(s *settings) { s.library = lib }
}

// WithDiagSink attaches a diagnostic sink to every per-file Compiler this
// batch run creates. Decompilers take no sink.
func WithDiagSink(sink msgscript.DiagSink) Option {
	return func(s *settings) { s.diag = sink }
}

// WithStrictNarrowing propagates strict-narrowing mode to every per-file
// Compiler this batch run creates.
func WithStrictNarrowing(strict bool) Option {
	return func(s *settings) { s.strict = strict }
}

func newSettings(opts []Option) *settings {
	s := &settings{diag: msgscript.NopSink{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CompileJob is one file's worth of compile input.
type CompileJob struct {
	Path    string
	Windows []compiler.WindowNode
}

// CompileResult is one file's compile outcome.
type CompileResult struct {
	Path   string
	Script *msgscript.Script
	Err    error
}

// CompileFiles compiles every job, each on its own Compiler instance,
// fanned out over a bounded worker pool via errgroup. A failing job does
// not abort the others; its error is recorded in its CompileResult.
func CompileFiles(ctx context.Context, jobs []CompileJob, opts ...Option) ([]CompileResult, error) {
	s := newSettings(opts)
	results := make([]CompileResult, len(jobs))

	eg, egCtx := errgroup.WithContext(ctx)
	if s.workers > 0 {
		eg.SetLimit(s.workers)
	}

	for i, job := range jobs {
		i, job := i, job
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				results[i] = CompileResult{Path: job.Path, Err: err}
				return nil
			}
			c := compiler.NewCompiler(
				compiler.WithLibrary(s.library),
				compiler.WithDiagSink(s.diag),
				compiler.WithStrictNarrowing(s.strict),
			)
			script, err := c.CompileWindows(job.Windows)
			results[i] = CompileResult{Path: job.Path, Script: script, Err: err}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// DecompileJob is one script's worth of decompile input.
type DecompileJob struct {
	Path   string
	Script *msgscript.Script
}

// DecompileResult is one file's decompile outcome.
type DecompileResult struct {
	Path string
	Text string
	Err  error
}

// DecompileScripts decompiles every job, each on its own Decompiler
// instance, fanned out over a bounded worker pool via errgroup.
func DecompileScripts(ctx context.Context, jobs []DecompileJob, opts ...Option) ([]DecompileResult, error) {
	s := newSettings(opts)
	results := make([]DecompileResult, len(jobs))

	eg, egCtx := errgroup.WithContext(ctx)
	if s.workers > 0 {
		eg.SetLimit(s.workers)
	}

	for i, job := range jobs {
		i, job := i, job
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				results[i] = DecompileResult{Path: job.Path, Err: err}
				return nil
			}
			d := decompile.NewDecompiler(decompile.WithLibrary(s.library))
			text, err := d.DecompileScript(job.Script)
			results[i] = DecompileResult{Path: job.Path, Text: text, Err: err}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
