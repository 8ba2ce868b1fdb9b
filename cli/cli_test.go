// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package cli_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.astrophena.name/prehook/cli"
	"go.astrophena.name/prehook/cli/clitest"
	"go.astrophena.name/prehook/testutil"
	"go.astrophena.name/prehook/version"
)

// hookApp imitates a small hook command: it prints the files it is given,
// prefixed with -prefix, and fails when one of them is named "bad".
type hookApp struct {
	prefix  string
	verbose bool
	jobs    int

	ran bool
}

var errBadFile = errors.New("bad file")

func (a *hookApp) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.prefix, "prefix", "checked", "Prefix of every printed `line`.")
	fs.BoolVar(&a.verbose, "verbose", false, "Print a summary.")
	fs.IntVar(&a.jobs, "jobs", 1, "Number of `workers`.")
}

func (a *hookApp) Run(ctx context.Context) error {
	a.ran = true
	env := cli.GetEnv(ctx)
	for _, f := range env.Args {
		if f == "bad" {
			return fmt.Errorf("%w: %s", errBadFile, f)
		}
		fmt.Fprintf(env.Stdout, "%s %s\n", a.prefix, f)
	}
	if a.verbose {
		fmt.Fprintf(env.Stderr, "%d file(s) with %d worker(s)\n", len(env.Args), a.jobs)
	}
	return nil
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	setup := func(*testing.T) *hookApp { return new(hookApp) }

	clitest.Run(t, setup, map[string]clitest.Case[*hookApp]{
		"no arguments": {
			WantNothingPrinted: true,
			CheckFunc: func(t *testing.T, a *hookApp) {
				testutil.AssertEqual(t, a.ran, true)
				testutil.AssertEqual(t, a.prefix, "checked")
			},
		},
		"arguments": {
			Args:         []string{"setup.py", "yavoc/vocab.py"},
			WantInStdout: "checked setup.py\nchecked yavoc/vocab.py\n",
		},
		"flags before arguments": {
			Args:         []string{"-prefix", "linted", "-verbose", "-jobs", "4", "a.py"},
			WantInStdout: "linted a.py\n",
			WantInStderr: "1 file(s) with 4 worker(s)\n",
		},
		"app error": {
			Args:    []string{"a.py", "bad"},
			WantErr: errBadFile,
		},
		"help": {
			Args:         []string{"-h"},
			WantErr:      flag.ErrHelp,
			WantInStderr: "Available flags:",
		},
		"help mentions the pager": {
			Args:         []string{"-help"},
			WantErr:      flag.ErrHelp,
			WantInStderr: "To disable the pager, set the NO_PAGER environment variable.",
		},
		"version": {
			Args:         []string{"-version"},
			WantErr:      cli.ErrExitVersion,
			WantInStderr: version.Version().String(),
			CheckFunc: func(t *testing.T, a *hookApp) {
				testutil.AssertEqual(t, a.ran, false)
			},
		},
		"cpu profile": {
			Args: []string{"-cpuprofile", filepath.Join(dir, "cpu.prof")},
			CheckFunc: func(t *testing.T, _ *hookApp) {
				if _, err := os.Stat(filepath.Join(dir, "cpu.prof")); err != nil {
					t.Fatal(err)
				}
			},
		},
		"memory profile": {
			Args: []string{"-memprofile", filepath.Join(dir, "mem.prof")},
			CheckFunc: func(t *testing.T, _ *hookApp) {
				if _, err := os.Stat(filepath.Join(dir, "mem.prof")); err != nil {
					t.Fatal(err)
				}
			},
		},
	})
}

// versionApp defines its own -version flag, which takes precedence.
type versionApp struct{ version bool }

func (a *versionApp) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.version, "version", false, "Print the hook version.")
}

func (a *versionApp) Run(ctx context.Context) error {
	if a.version {
		fmt.Fprint(cli.GetEnv(ctx).Stdout, "hook 1.0")
	}
	return nil
}

func TestOwnVersionFlag(t *testing.T) {
	clitest.Run(t, func(*testing.T) *versionApp { return new(versionApp) }, map[string]clitest.Case[*versionApp]{
		"app version": {
			Args:         []string{"-version"},
			WantInStdout: "hook 1.0",
		},
	})
}

func TestInvalidArgs(t *testing.T) {
	app := cli.AppFunc(func(ctx context.Context) error {
		return fmt.Errorf("%w: missing hook id", cli.ErrInvalidArgs)
	})
	clitest.Run(t, func(*testing.T) cli.AppFunc { return app }, map[string]clitest.Case[cli.AppFunc]{
		"wrapped": {WantErr: cli.ErrInvalidArgs},
	})
}

func TestInvalidFlagValue(t *testing.T) {
	var stderr bytes.Buffer
	ctx := cli.WithEnv(context.Background(), &cli.Env{
		Args:   []string{"-jobs", "many"},
		Getenv: func(string) string { return "" },
		Stdin:  strings.NewReader(""),
		Stdout: io.Discard,
		Stderr: &stderr,
	})
	app := new(hookApp)
	if err := cli.Run(ctx, app); err == nil {
		t.Fatal("want an error")
	}
	testutil.AssertEqual(t, app.ran, false)
	// The flag package reports the problem itself.
	if want := `invalid value "many" for flag -jobs: parse error`; !strings.Contains(stderr.String(), want) {
		t.Fatalf("stderr must contain %q, got:\n%s", want, stderr.String())
	}
}

func TestCPUProfileError(t *testing.T) {
	var stderr bytes.Buffer
	ctx := cli.WithEnv(context.Background(), &cli.Env{
		Args:   []string{"-cpuprofile", filepath.Join(t.TempDir(), "missing", "cpu.prof")},
		Getenv: func(string) string { return "" },
		Stdin:  strings.NewReader(""),
		Stdout: io.Discard,
		Stderr: &stderr,
	})
	err := cli.Run(ctx, new(hookApp))
	if err == nil || !strings.Contains(err.Error(), "could not create CPU profile") {
		t.Fatalf("want a CPU profile error, got %v", err)
	}
}

func TestDocComment(t *testing.T) {
	const src = "/*\nHookapp checks files.\n\nIt prints them.\n*/\npackage main\n"
	cli.SetDocComment([]byte(src))
	t.Cleanup(func() { cli.SetDocComment(nil) })

	clitest.Run(t, func(*testing.T) *hookApp { return new(hookApp) }, map[string]clitest.Case[*hookApp]{
		"help shows the doc comment": {
			Args:         []string{"-h"},
			WantErr:      flag.ErrHelp,
			WantInStderr: "Hookapp checks files.\n\nIt prints them.\n",
		},
	})
}

func TestEnvLogf(t *testing.T) {
	var stderr bytes.Buffer
	env := &cli.Env{Stderr: &stderr}
	env.Logf("skipping %s", "mypy")
	env.Logf("done")
	testutil.AssertEqual(t, stderr.String(), "skipping mypy\ndone\n")
}

func TestGetEnvDefault(t *testing.T) {
	env := cli.GetEnv(context.Background())
	testutil.AssertEqual(t, env.Stdout, io.Writer(os.Stdout))
}

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	testutil.AssertEqual(t, cli.IsTerminalWriter(&buf), false)
	testutil.AssertEqual(t, cli.TerminalWidth(&buf), 0)

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	testutil.AssertEqual(t, cli.IsTerminalWriter(f), false)
	testutil.AssertEqual(t, cli.TerminalWidth(f), 0)
}

func TestPager(t *testing.T) {
	isTerminal := cli.IsTerminal
	cli.IsTerminal = func(int) bool { return true }
	t.Cleanup(func() { cli.IsTerminal = isTerminal })

	cases := map[string]struct {
		env        map[string]string
		wantStderr bool
	}{
		"pager takes the help": {
			env: map[string]string{"PAGER": "true"},
		},
		"NO_PAGER disables the pager": {
			env:        map[string]string{"PAGER": "true", "NO_PAGER": "1"},
			wantStderr: true,
		},
		"no PAGER": {
			wantStderr: true,
		},
		"unparsable PAGER": {
			env:        map[string]string{"PAGER": `"unterminated`},
			wantStderr: true,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			// The pager is only used when stderr is a file.
			r, w, err := os.Pipe()
			if err != nil {
				t.Fatal(err)
			}
			var (
				stderr []byte
				wg     sync.WaitGroup
			)
			wg.Go(func() { stderr, _ = io.ReadAll(r) })

			ctx := cli.WithEnv(context.Background(), &cli.Env{
				Args:   []string{"-h"},
				Getenv: func(key string) string { return tc.env[key] },
				Stdin:  strings.NewReader(""),
				Stdout: io.Discard,
				Stderr: w,
			})
			err = cli.Run(ctx, new(hookApp))
			w.Close()
			wg.Wait()
			r.Close()

			if !errors.Is(err, flag.ErrHelp) {
				t.Fatalf("want flag.ErrHelp, got %v", err)
			}
			testutil.AssertEqual(t, strings.Contains(string(stderr), "Available flags:"), tc.wantStderr)
		})
	}
}
