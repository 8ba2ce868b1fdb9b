// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"al.essio.dev/pkg/shellescape"
	"github.com/google/shlex"

	"go.astrophena.name/prehook/logger"
	"go.astrophena.name/prehook/syncx"
)

// environment describes what a hook's language provisioned for it.
type environment struct {
	// bin is prepended to PATH. Empty for languages without an environment.
	bin string
	// vars are extra environment variables.
	vars []string
}

func (r *Runner) languageVersion(step *Step) string {
	if v := step.Hook.LanguageVersion; v != "" {
		return v
	}
	if v := r.doc.DefaultLanguageVersion[step.Hook.Language]; v != "" {
		return v
	}
	return "default"
}

func (r *Runner) prepare(ctx context.Context, step *Step) (environment, error) {
	switch lang := step.Hook.Language; lang {
	case "system", "script":
		return environment{}, nil
	case "python":
		return r.preparePython(ctx, step)
	case "golang":
		return r.prepareGo(ctx, step)
	default:
		return environment{}, fmt.Errorf("unsupported language %q", lang)
	}
}

// envDir returns the store directory of the step's environment. Steps of
// the same source sharing a language, version and dependencies share it.
func (r *Runner) envDir(step *Step, lang, version string) (string, error) {
	if r.opts.Store == nil {
		return "", fmt.Errorf("language %s needs a store", lang)
	}
	parts := []string{step.Source.Repo, step.Source.Rev, step.Dir, lang, version}
	return r.opts.Store.EnvDir(append(parts, step.Hook.AdditionalDependencies...)...), nil
}

func (r *Runner) preparePython(ctx context.Context, step *Step) (environment, error) {
	version := r.languageVersion(step)
	dir, err := r.envDir(step, "python", version)
	if err != nil {
		return environment{}, err
	}
	bin := filepath.Join(dir, "bin")
	if runtime.GOOS == "windows" {
		bin = filepath.Join(dir, "Scripts")
	}
	err = r.opts.Store.Install(ctx, dir, func(ctx context.Context, dir string) error {
		python := "python3"
		if version != "default" {
			python = version
		}
		if err := r.exec(ctx, "", nil, python, "-m", "venv", dir); err != nil {
			return err
		}
		args := []string{"install"}
		if step.Dir != "" {
			args = append(args, ".")
		}
		args = append(args, step.Hook.AdditionalDependencies...)
		if len(args) == 1 {
			return nil
		}
		return r.exec(ctx, step.Dir, nil, filepath.Join(bin, "pip"), args...)
	})
	if err != nil {
		return environment{}, err
	}
	return environment{bin: bin, vars: []string{"VIRTUAL_ENV=" + dir}}, nil
}

func (r *Runner) prepareGo(ctx context.Context, step *Step) (environment, error) {
	version := r.languageVersion(step)
	dir, err := r.envDir(step, "golang", version)
	if err != nil {
		return environment{}, err
	}
	bin := filepath.Join(dir, "bin")
	vars := []string{"GOBIN=" + bin}
	if version != "default" {
		vars = append(vars, "GOTOOLCHAIN=go"+strings.TrimPrefix(version, "go"))
	}
	err = r.opts.Store.Install(ctx, dir, func(ctx context.Context, dir string) error {
		if step.Dir != "" {
			if err := r.exec(ctx, step.Dir, vars, "go", "install", "./..."); err != nil {
				return err
			}
		}
		for _, dep := range step.Hook.AdditionalDependencies {
			if !strings.Contains(dep, "@") {
				dep += "@latest"
			}
			if err := r.exec(ctx, "", vars, "go", "install", dep); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return environment{}, err
	}
	return environment{bin: bin, vars: vars}, nil
}

// command returns the command line of the step without filenames.
func (r *Runner) command(step *Step, env environment) ([]string, error) {
	argv, err := shlex.Split(step.Hook.Entry)
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", step.Hook.Entry, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty entry")
	}
	switch {
	case step.Hook.Language == "script":
		base := step.Dir
		if base == "" {
			base = r.opts.Root
		}
		argv[0] = filepath.Join(base, filepath.FromSlash(argv[0]))
	case env.bin != "":
		if p := filepath.Join(env.bin, argv[0]); isExecutable(p) {
			argv[0] = p
		}
	}
	return append(argv, step.Hook.Args...), nil
}

func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir() && (runtime.GOOS == "windows" || fi.Mode()&0o111 != 0)
}

// runCommand runs cmd followed by the filenames, split into partitions that
// run concurrently unless the hook requires serial execution.
func (r *Runner) runCommand(ctx context.Context, step *Step, cmd []string, env environment, files []string) (run, error) {
	res := run{command: cmd}
	if !step.Hook.PassesFilenames() {
		files = nil
	}
	jobs := r.opts.Jobs
	if step.Hook.RequiresSerial() {
		jobs = 1
	}
	parts := partition(cmd, files, jobs, maxCommandLength)

	var (
		outputs = make([][]byte, len(parts))
		codes   = make([]int, len(parts))
		errs    = make([]error, len(parts))
		wg      = syncx.NewLimitedWaitGroup(jobs)
		environ = r.environ(env)
	)
	for i, part := range parts {
		wg.Go(func() {
			argv := append(cmd[:len(cmd):len(cmd)], part...)
			outputs[i], codes[i], errs[i] = r.invoke(ctx, argv, environ)
		})
	}
	wg.Wait()

	res.output = bytes.Join(outputs, nil)
	res.code = codesMax(codes)
	return res, errors.Join(errs...)
}

func codesMax(codes []int) int {
	m := 0
	for _, c := range codes {
		m = max(m, c)
	}
	return m
}

// exitCode returns the status of a finished process. A process killed by a
// signal gets 128 plus the signal number, as shells report it.
func exitCode(err *exec.ExitError) int {
	if code := err.ExitCode(); code >= 0 {
		return code
	}
	if ws, ok := err.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return 1
}

// invoke runs one command line in the repository root and returns its
// combined output and exit code. Failing to start is an error; exiting with
// a non-zero status is not.
func (r *Runner) invoke(ctx context.Context, argv, environ []string) ([]byte, int, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.opts.Root
	cmd.Env = environ
	cmd.Stdout = &out
	cmd.Stderr = &out
	logger.Debug(ctx, "running command", slog.String("cmd", shellescape.QuoteCommand(argv)))
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out.Bytes(), exitCode(exitErr), nil
	}
	if err != nil {
		return out.Bytes(), 0, fmt.Errorf("running %s: %w", argv[0], err)
	}
	return out.Bytes(), 0, nil
}

// environ returns the hook environment with env applied.
func (r *Runner) environ(env environment) []string {
	environ := make([]string, 0, len(r.opts.Environ)+len(env.vars))
	for _, kv := range r.opts.Environ {
		if env.bin != "" && strings.HasPrefix(kv, "PATH=") {
			kv = "PATH=" + env.bin + string(os.PathListSeparator) + kv[len("PATH="):]
		}
		environ = append(environ, kv)
	}
	return append(environ, env.vars...)
}

// exec runs an environment installation command, returning its output in
// the error on failure.
func (r *Runner) exec(ctx context.Context, dir string, vars []string, name string, args ...string) error {
	argv := append([]string{name}, args...)
	logger.Info(ctx, "installing", slog.String("cmd", shellescape.QuoteCommand(argv)))
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(r.environ(environment{}), vars...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %v\n%s", shellescape.QuoteCommand(argv), err, out)
	}
	return nil
}
