// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package gitrepo

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"go.astrophena.name/prehook/config"
	"go.astrophena.name/prehook/testutil"
)

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@example.com",
		"GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
}

func newRepo(t *testing.T) (string, *Repo) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"setup.py":       "from setuptools import setup\n",
		"yavoc/vocab.py": "WORDS = []\n",
	})
	gitCmd(t, dir, "init", "-q", "-b", "main")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-q", "-m", "initial")
	gitCmd(t, dir, "tag", "v1")

	repo, err := Open(context.Background(), filepath.Join(dir, "yavoc"))
	if err != nil {
		t.Fatal(err)
	}
	return dir, repo
}

func TestOpen(t *testing.T) {
	dir, repo := newRepo(t)
	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := filepath.EvalSymlinks(repo.Root)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, want)
}

func TestOpenNotRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}
	t.Setenv("GIT_CEILING_DIRECTORIES", os.TempDir())
	_, err := Open(context.Background(), t.TempDir())
	if !errors.Is(err, ErrNotRepository) {
		t.Fatalf("want ErrNotRepository, got %v", err)
	}
}

func TestFiles(t *testing.T) {
	dir, repo := newRepo(t)
	ctx := context.Background()

	all, err := repo.AllFiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, all, []string{"setup.py", "yavoc/vocab.py"})

	staged, err := repo.StagedFiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, staged, []string(nil))

	testutil.WriteFiles(t, dir, map[string]string{
		"tests/test vocab.py": "def test(): pass\n",
		"yavoc/vocab.py":      "WORDS = ['a']\n",
	})
	gitCmd(t, dir, "add", "tests")
	staged, err = repo.StagedFiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, staged, []string{"tests/test vocab.py"})

	diff, err := repo.Diff(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(diff), "+WORDS = ['a']") {
		t.Fatalf("diff does not show the unstaged change:\n%s", diff)
	}

	gitCmd(t, dir, "commit", "-q", "-m", "tests")
	changed, err := repo.ChangedFiles(ctx, "v1", "HEAD")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, changed, []string{"tests/test vocab.py"})
}

func TestHooksDir(t *testing.T) {
	dir, repo := newRepo(t)
	got, err := repo.HooksDir(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, ".git", "hooks")
	got, _ = filepath.EvalSymlinks(filepath.Dir(got))
	want, _ = filepath.EvalSymlinks(filepath.Dir(want))
	testutil.AssertEqual(t, got, want)
}

func TestInstallHook(t *testing.T) {
	hooks := filepath.Join(t.TempDir(), "hooks")

	path, err := InstallHook(hooks, "commit", "go tool pre-commit", false)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, path, filepath.Join(hooks, "pre-commit"))
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, string(b), "#!/bin/sh\n# installed by prehook; do not edit.\nexec go tool pre-commit -hook-stage=pre-commit hook-impl \"$@\"\n")
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode()&0o111 == 0 {
		t.Fatalf("hook is not executable: %v", fi.Mode())
	}

	// Reinstalling over our own script is fine.
	if _, err := InstallHook(hooks, config.StagePreCommit, "prehook", false); err != nil {
		t.Fatal(err)
	}

	removed, err := UninstallHook(hooks, config.StagePreCommit)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, removed, true)
	removed, err = UninstallHook(hooks, config.StagePreCommit)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, removed, false)
}

func TestInstallHookForeign(t *testing.T) {
	hooks := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"pre-push": "#!/bin/sh\nmake lint\n",
	})

	if _, err := InstallHook(hooks, config.StagePrePush, "prehook", false); !errors.Is(err, ErrForeignHook) {
		t.Fatalf("want ErrForeignHook, got %v", err)
	}
	if _, err := UninstallHook(hooks, config.StagePrePush); !errors.Is(err, ErrForeignHook) {
		t.Fatalf("want ErrForeignHook, got %v", err)
	}
	if _, err := InstallHook(hooks, config.StagePrePush, "prehook", true); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(hooks, "pre-push"))
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, IsInstalled(b), true)
}

func TestInstallHookManual(t *testing.T) {
	if _, err := InstallHook(t.TempDir(), config.StageManual, "prehook", false); err == nil {
		t.Fatal("want error")
	}
}
