// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"go.astrophena.name/prehook/config"
	"go.astrophena.name/prehook/filetype"
	"go.astrophena.name/prehook/logger"
	"go.astrophena.name/prehook/source"
)

// ErrNoSuchHook is returned when a hook selector matches no hook at the
// requested stage.
var ErrNoSuchHook = errors.New("no such hook")

// ErrUnknownStage is returned when asked to run hooks of a stage that does
// not exist.
var ErrUnknownStage = errors.New("unknown stage")

// Differ reports the unstaged changes of the working tree. Comparing its
// result before and after a hook tells whether the hook modified files.
// [*gitrepo.Repo] implements it.
type Differ interface {
	Diff(ctx context.Context) ([]byte, error)
}

// Lister lists every file of the repository. Meta hooks use it.
// [*gitrepo.Repo] implements it.
type Lister interface {
	AllFiles(ctx context.Context) ([]string, error)
}

// Options configure a [Runner]. The zero value runs pre-commit hooks in the
// current directory and discards the output.
type Options struct {
	// Stage is the stage being run. Defaults to pre-commit.
	Stage config.Stage
	// Hook, if set, runs only the hook with this id or alias.
	Hook string
	// Skip lists ids and aliases of hooks that are reported as skipped
	// without running.
	Skip []string
	// FailFast stops after the first failing hook, in addition to the
	// document's fail_fast.
	FailFast bool
	// Verbose shows the output of every hook, not just failing ones.
	Verbose bool
	// Color enables colored status lines.
	Color bool
	// Width is the terminal width. Status lines are at most 80 columns
	// wide, or narrower on a smaller terminal, but never too narrow for
	// the longest hook name.
	Width int
	// Root is the repository root hooks run in. Defaults to the current
	// directory.
	Root string
	// Stdout receives status lines and hook output.
	Stdout io.Writer
	// Classifier returns file type tags. Defaults to a
	// [filetype.Classifier] at Root.
	Classifier Classifier
	// Differ, if set, detects hooks that modify files.
	Differ Differ
	// Lister, if set, lists the repository files for meta hooks.
	// Otherwise they see only the files passed to Run.
	Lister Lister
	// Store provisions language environments. Required for the python
	// and golang languages.
	Store *source.Store
	// Jobs bounds the concurrent invocations of a hook. Defaults to the
	// number of CPUs.
	Jobs int
	// Environ is the environment hooks run with. Defaults to os.Environ().
	Environ []string
}

// Runner runs an execution plan against a set of files.
type Runner struct {
	doc  *config.Document
	opts Options
	cols int
}

// New returns a Runner for the document doc.
func New(doc *config.Document, opts Options) *Runner {
	if opts.Stage == "" {
		opts.Stage = config.StagePreCommit
	}
	opts.Stage = opts.Stage.Canonical()
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Classifier == nil {
		opts.Classifier = filetype.NewClassifier(opts.Root)
	}
	if opts.Jobs < 1 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.Environ == nil {
		opts.Environ = os.Environ()
	}
	return &Runner{doc: doc, opts: opts}
}

// Status is the outcome of one step.
type Status int

const (
	// Passed means the hook ran and succeeded.
	Passed Status = iota
	// Failed means the hook ran and failed, or could not be run.
	Failed
	// NoFiles means no file matched the hook.
	NoFiles
	// Skipped means the hook was named in the skip list.
	Skipped
	// NotRun means an earlier hook failed with fail_fast in effect.
	NotRun
)

func (s Status) String() string {
	switch s {
	case Passed:
		return "Passed"
	case Failed:
		return "Failed"
	case NoFiles, Skipped:
		return "Skipped"
	case NotRun:
		return "Not run"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result is the outcome of one step.
type Result struct {
	Step   Step
	Status Status
	// Files are the files the hook was run against.
	Files []string
	// Command is the command line without filenames. Empty for hooks that
	// do not start a process.
	Command []string
	// Output is the combined output of all invocations.
	Output   []byte
	Duration time.Duration
	// Err is a *HookFailure when Status is Failed.
	Err error
}

// Report holds the results of the steps selected for a run, in plan order.
type Report struct {
	Results []Result
}

// Failed returns the results of failed steps.
func (r *Report) Failed() []Result {
	return lo.Filter(r.Results, func(res Result, _ int) bool { return res.Status == Failed })
}

// Run runs the steps of plan selected for the stage against files, given as
// slash-separated paths relative to the repository root. Failures are
// reported in the returned error, which matches [ErrHookFailed]; the report
// is returned in any case.
func (r *Runner) Run(ctx context.Context, plan []Step, files []string) (*Report, error) {
	if !r.opts.Stage.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, r.opts.Stage)
	}
	selected := lo.Filter(plan, func(s Step, _ int) bool {
		if !s.RunsAt(r.doc, r.opts.Stage) {
			return false
		}
		return r.opts.Hook == "" || s.Hook.MatchesSelector(r.opts.Hook)
	})
	if r.opts.Hook != "" && len(selected) == 0 {
		return nil, fmt.Errorf("%w: %q at stage %s", ErrNoSuchHook, r.opts.Hook, r.opts.Stage)
	}
	r.cols = columns(selected, r.opts.Width)

	var (
		report   = &Report{}
		errs     *multierror.Error
		failFast = r.doc.FailFast || r.opts.FailFast
		stopped  bool
	)
	for _, step := range selected {
		if stopped {
			report.Results = append(report.Results, Result{Step: step, Status: NotRun})
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := r.runStep(ctx, plan, step, files)
		r.print(&res)
		report.Results = append(report.Results, res)
		if res.Status == Failed {
			errs = multierror.Append(errs, res.Err)
			if failFast {
				logger.Debug(ctx, "stopping after failure", slog.String("hook", step.Hook.ID))
				stopped = true
			}
		}
	}
	return report, errs.ErrorOrNil()
}

func (r *Runner) runStep(ctx context.Context, plan []Step, step Step, files []string) Result {
	res := Result{Step: step}
	if slices.ContainsFunc(r.opts.Skip, step.Hook.MatchesSelector) {
		res.Status = Skipped
		return res
	}
	fail := func(f *HookFailure) Result {
		f.ID = step.Hook.ID
		res.Status, res.Err = Failed, f
		return res
	}

	matched, err := Filter(r.doc, &step, files, r.opts.Classifier)
	if err != nil {
		return fail(&HookFailure{Err: err})
	}
	res.Files = matched
	if len(matched) == 0 && !step.Hook.AlwaysRuns() {
		res.Status = NoFiles
		return res
	}

	var before []byte
	if r.opts.Differ != nil {
		if before, err = r.opts.Differ.Diff(ctx); err != nil {
			return fail(&HookFailure{Err: err})
		}
	}

	start := time.Now()
	run, err := r.execute(ctx, plan, &step, matched)
	res.Duration = time.Since(start)
	res.Command, res.Output = run.command, run.output
	logger.Debug(ctx, "ran hook",
		slog.String("hook", step.Hook.ID),
		slog.Int("files", len(matched)),
		slog.Int("exit_code", run.code),
		slog.Duration("duration", res.Duration),
	)
	if err != nil {
		return fail(&HookFailure{Output: run.output, Err: err})
	}

	modified := false
	if r.opts.Differ != nil {
		after, err := r.opts.Differ.Diff(ctx)
		if err != nil {
			return fail(&HookFailure{Output: run.output, Err: err})
		}
		modified = !bytes.Equal(before, after)
	}
	if run.code != 0 || modified {
		return fail(&HookFailure{ExitCode: run.code, Modified: modified, Output: run.output})
	}
	res.Status = Passed
	return res
}

// run is the raw outcome of executing a hook.
type run struct {
	command []string
	code    int
	output  []byte
}

func (r *Runner) execute(ctx context.Context, plan []Step, step *Step, files []string) (run, error) {
	switch step.Hook.Language {
	case source.MetaLanguage:
		return r.runMeta(ctx, plan, step, files)
	case "fail":
		var out bytes.Buffer
		out.WriteString(step.Hook.Entry)
		out.WriteString("\n\n")
		for _, f := range files {
			fmt.Fprintln(&out, f)
		}
		return run{code: 1, output: out.Bytes()}, nil
	}
	env, err := r.prepare(ctx, step)
	if err != nil {
		return run{}, err
	}
	cmd, err := r.command(step, env)
	if err != nil {
		return run{}, err
	}
	return r.runCommand(ctx, step, cmd, env, files)
}

func (r *Runner) writeLog(step *Step, output []byte) error {
	path := step.Hook.LogFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.opts.Root, filepath.FromSlash(path))
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(output); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
