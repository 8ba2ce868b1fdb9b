// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package source

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"

	"go.astrophena.name/prehook/logger"
	"go.astrophena.name/prehook/syncx"
)

// HomeEnv is the environment variable overriding the store location.
const HomeEnv = "PREHOOK_HOME"

const (
	indexFile     = "index.json"
	lockFile      = ".lock"
	reposDir      = "repos"
	envsDir       = "envs"
	lockRetry     = 50 * time.Millisecond
	defaultFanout = 4
	// staleClone is how long a clone may stay pending before GC assumes
	// the process making it is gone.
	staleClone = time.Hour
)

// DefaultDir returns the store location: $PREHOOK_HOME if set, otherwise a
// directory under the user's cache directory.
func DefaultDir(getenv func(string) string) string {
	if dir := getenv(HomeEnv); dir != "" {
		return dir
	}
	return filepath.Join(xdg.CacheHome, "prehook")
}

// Store keeps checkouts of remote sources and provisioned language
// environments on disk. Several processes may share one store.
type Store struct {
	dir         string
	cloner      Cloner
	concurrency int
	inflight    syncx.Map[string, *syncx.Lazy[string]]
}

// Option configures a [Store].
type Option func(*Store)

// WithCloner sets the Cloner used to fetch remote sources. The default is
// [GitCloner].
func WithCloner(c Cloner) Option { return func(s *Store) { s.cloner = c } }

// WithConcurrency sets how many sources are fetched at once.
func WithConcurrency(n int) Option { return func(s *Store) { s.concurrency = max(n, 1) } }

// Open opens the store at dir, creating it if needed.
func Open(dir string, opts ...Option) (*Store, error) {
	s := &Store{
		dir:         dir,
		cloner:      GitCloner{},
		concurrency: defaultFanout,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, d := range []string{reposDir, envsDir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dir returns the store location.
func (s *Store) Dir() string { return s.dir }

type indexEntry struct {
	Repo     string    `json:"repo"`
	Rev      string    `json:"rev"`
	Dir      string    `json:"dir"`
	LastUsed time.Time `json:"last_used"`
	// Pending marks a clone still being made. LastUsed is when it started.
	Pending bool `json:"pending,omitempty"`
}

type index map[string]indexEntry

func key(repo, rev string) string { return repo + "@" + rev }

func pendingKey(dir string) string { return "pending:" + dir }

// Fetch returns the directory holding repo checked out at rev, cloning it on
// first use. Concurrent fetches of the same repo and rev share one clone.
func (s *Store) Fetch(ctx context.Context, repo, rev string) (string, error) {
	k := key(repo, rev)
	lazy, _ := s.inflight.LoadOrStore(k, new(syncx.Lazy[string]))
	dir, err := lazy.GetErr(func() (string, error) { return s.fetch(ctx, repo, rev) })
	if err != nil {
		// Let a later call try again.
		s.inflight.Delete(k)
	}
	return dir, err
}

func (s *Store) fetch(ctx context.Context, repo, rev string) (string, error) {
	var dir string
	err := s.withLock(ctx, func(idx index) (bool, error) {
		e, ok := idx[key(repo, rev)]
		if !ok || !exists(filepath.Join(s.dir, e.Dir)) {
			return false, nil
		}
		dir = filepath.Join(s.dir, e.Dir)
		e.LastUsed = time.Now()
		idx[key(repo, rev)] = e
		return true, nil
	})
	if err != nil || dir != "" {
		return dir, err
	}

	// The clone directory is registered as pending so that GC in another
	// process leaves it alone.
	var tmp, rel string
	err = s.withLock(ctx, func(idx index) (bool, error) {
		var err error
		if tmp, err = os.MkdirTemp(filepath.Join(s.dir, reposDir), "clone"); err != nil {
			return false, err
		}
		if rel, err = filepath.Rel(s.dir, tmp); err != nil {
			return false, err
		}
		rel = filepath.ToSlash(rel)
		idx[pendingKey(rel)] = indexEntry{Repo: repo, Rev: rev, Dir: rel, LastUsed: time.Now(), Pending: true}
		return true, nil
	})
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "fetching source", slog.String("repo", repo), slog.String("rev", rev))
	if err := s.cloner.Clone(ctx, repo, rev, tmp); err != nil {
		os.RemoveAll(tmp)
		// The context may be done already; unregister regardless.
		if uerr := s.withLock(context.WithoutCancel(ctx), func(idx index) (bool, error) {
			delete(idx, pendingKey(rel))
			return true, nil
		}); uerr != nil {
			logger.Warn(ctx, "cannot unregister failed clone", slog.String("dir", rel), slog.Any("err", uerr))
		}
		return "", &UnresolvableSourceError{Repo: repo, Rev: rev, Err: err}
	}

	err = s.withLock(ctx, func(idx index) (bool, error) {
		delete(idx, pendingKey(rel))
		// Another process may have finished the same clone meanwhile.
		if e, ok := idx[key(repo, rev)]; ok && exists(filepath.Join(s.dir, e.Dir)) {
			os.RemoveAll(tmp)
			dir = filepath.Join(s.dir, e.Dir)
			return true, nil
		}
		idx[key(repo, rev)] = indexEntry{Repo: repo, Rev: rev, Dir: rel, LastUsed: time.Now()}
		dir = tmp
		return true, nil
	})
	return dir, err
}

// withLock runs f with the store index while holding the store lock across
// processes. The index is written back if f reports a change.
func (s *Store) withLock(ctx context.Context, f func(idx index) (changed bool, err error)) error {
	lock := flock.New(filepath.Join(s.dir, lockFile))
	locked, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("locking store: %w", err)
	}
	if !locked {
		return fmt.Errorf("locking store: %w", ctx.Err())
	}
	defer lock.Unlock()

	idx, err := s.readIndex()
	if err != nil {
		return err
	}
	changed, err := f(idx)
	if err != nil || !changed {
		return err
	}
	return s.writeIndex(idx)
}

func (s *Store) readIndex() (index, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return make(index), nil
	}
	if err != nil {
		return nil, err
	}
	idx := make(index)
	if err := json.Unmarshal(b, &idx); err != nil {
		return nil, fmt.Errorf("corrupt store index: %w", err)
	}
	return idx, nil
}

func (s *Store) writeIndex(idx index) error {
	b, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(filepath.Join(s.dir, indexFile), bytes.NewReader(b))
}

// EnvDir returns the directory for a language environment identified by
// parts, such as a checkout, a language and its additional dependencies.
func (s *Store) EnvDir(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return filepath.Join(s.dir, envsDir, hex.EncodeToString(sum[:8]))
}

// Clean removes the store entirely.
func (s *Store) Clean(ctx context.Context) error {
	logger.Info(ctx, "removing store", slog.String("dir", s.dir))
	return os.RemoveAll(s.dir)
}

// GC removes checkouts that are not in the index and index entries whose
// checkout is gone. Clones in progress are kept unless they have been
// pending for too long. It returns the number of removed checkouts.
func (s *Store) GC(ctx context.Context) (int, error) {
	var removed int
	err := s.withLock(ctx, func(idx index) (bool, error) {
		known := make(map[string]bool)
		changed := false
		for k, e := range idx {
			stale := e.Pending && time.Since(e.LastUsed) > staleClone
			if stale || !exists(filepath.Join(s.dir, e.Dir)) {
				delete(idx, k)
				changed = true
				continue
			}
			known[e.Dir] = true
		}
		entries, err := os.ReadDir(filepath.Join(s.dir, reposDir))
		if err != nil {
			return changed, err
		}
		for _, de := range entries {
			rel := reposDir + "/" + de.Name()
			if known[rel] {
				continue
			}
			if err := os.RemoveAll(filepath.Join(s.dir, reposDir, de.Name())); err != nil {
				return changed, err
			}
			removed++
		}
		return changed, nil
	})
	return removed, err
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

const installedMarker = ".prehook-installed"

// Install runs install once for the environment directory dir, which should
// come from [Store.EnvDir]. Later calls, from this or another process, return
// immediately. A failed install leaves no trace, so the next call retries it.
func (s *Store) Install(ctx context.Context, dir string, install func(ctx context.Context, dir string) error) error {
	marker := filepath.Join(dir, installedMarker)
	if exists(marker) {
		return nil
	}
	return s.withLock(ctx, func(index) (bool, error) {
		if exists(marker) {
			return false, nil
		}
		if err := os.RemoveAll(dir); err != nil {
			return false, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, err
		}
		logger.Info(ctx, "installing environment", slog.String("dir", dir))
		if err := install(ctx, dir); err != nil {
			os.RemoveAll(dir)
			return false, err
		}
		return false, os.WriteFile(marker, nil, 0o644)
	})
}
