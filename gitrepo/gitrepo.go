// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package gitrepo queries the Git working tree hooks run against and manages
// the hook scripts that start them.
package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotRepository is returned when a directory is not inside a Git working
// tree.
var ErrNotRepository = errors.New("not a git repository")

// Repo is a Git working tree.
type Repo struct {
	// Root is the top-level directory of the working tree.
	Root string
}

// Open finds the working tree containing dir.
func Open(ctx context.Context, dir string) (*Repo, error) {
	out, err := git(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotRepository, dir, err)
	}
	return &Repo{Root: strings.TrimSpace(string(out))}, nil
}

// StagedFiles returns the files added, copied, modified or renamed in the
// index, relative to the root.
func (r *Repo) StagedFiles(ctx context.Context) ([]string, error) {
	return r.list(ctx, "diff", "--staged", "--name-only", "--no-ext-diff", "-z", "--diff-filter=ACMRTUXB")
}

// AllFiles returns every tracked file, relative to the root.
func (r *Repo) AllFiles(ctx context.Context) ([]string, error) {
	return r.list(ctx, "ls-files", "-z")
}

// ChangedFiles returns the files changed between two revisions, as used by
// pre-push hooks.
func (r *Repo) ChangedFiles(ctx context.Context, from, to string) ([]string, error) {
	return r.list(ctx, "diff", "--name-only", "--no-ext-diff", "-z", "--diff-filter=ACMRT", from+"..."+to)
}

// Diff returns the unstaged changes of the working tree. Comparing it before
// and after a hook tells whether the hook modified files.
func (r *Repo) Diff(ctx context.Context) ([]byte, error) {
	return git(ctx, r.Root, "diff", "--no-ext-diff", "--no-color")
}

// HooksDir returns the directory Git runs hook scripts from.
func (r *Repo) HooksDir(ctx context.Context) (string, error) {
	out, err := git(ctx, r.Root, "rev-parse", "--git-path", "hooks")
	if err != nil {
		return "", err
	}
	dir := strings.TrimSpace(string(out))
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(r.Root, dir)
	}
	return dir, nil
}

func (r *Repo) list(ctx context.Context, args ...string) ([]string, error) {
	out, err := git(ctx, r.Root, args...)
	if err != nil {
		return nil, err
	}
	var files []string
	for name := range strings.SplitSeq(string(out), "\x00") {
		if name != "" {
			files = append(files, name)
		}
	}
	return files, nil
}

func git(ctx context.Context, dir string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git %s: %v: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
