// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package source resolves the hook sources of a document into complete hook
// definitions, fetching remote sources at their pinned revisions into an
// on-disk store.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"

	"go.astrophena.name/prehook/config"
	"go.astrophena.name/prehook/logger"
)

// ErrUnresolvableSource is matched by every error reporting a source or hook
// that cannot be located.
var ErrUnresolvableSource = errors.New("unresolvable source")

// UnresolvableSourceError reports a remote source that cannot be fetched at
// its revision, or a hook that it does not define.
type UnresolvableSourceError struct {
	Repo string
	Rev  string
	Err  error
}

func (e *UnresolvableSourceError) Error() string {
	return fmt.Sprintf("%v: %s@%s: %v", ErrUnresolvableSource, e.Repo, e.Rev, e.Err)
}

// Is makes errors.Is(err, ErrUnresolvableSource) true.
func (e *UnresolvableSourceError) Is(target error) bool { return target == ErrUnresolvableSource }

func (e *UnresolvableSourceError) Unwrap() error { return e.Err }

// Resolved is a source together with the complete definitions of the hooks
// it contributes, in declaration order.
type Resolved struct {
	// Source is the declaration from the document.
	Source config.Source
	// Dir is the checkout of a remote source. Empty for local and meta
	// sources.
	Dir string
	// Hooks are complete definitions: for remote sources the manifest
	// definition with the declaration's overrides applied.
	Hooks []config.Hook
}

// Resolve resolves every source of doc. Remote sources are fetched
// concurrently; the result is in declaration order regardless.
func (s *Store) Resolve(ctx context.Context, doc *config.Document) ([]Resolved, error) {
	out := make([]Resolved, len(doc.Repos))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, src := range doc.Repos {
		switch {
		case src.IsLocal():
			out[i] = Resolved{Source: src, Hooks: slices.Clone(src.Hooks)}
		case src.IsMeta():
			out[i] = resolveMeta(src)
		default:
			g.Go(func() error {
				r, err := s.resolveRemote(ctx, src)
				if err != nil {
					return err
				}
				out[i] = r
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) resolveRemote(ctx context.Context, src config.Source) (Resolved, error) {
	dir, err := s.Fetch(ctx, src.Repo, src.Rev)
	if err != nil {
		return Resolved{}, err
	}
	unresolvable := func(err error) error {
		return &UnresolvableSourceError{Repo: src.Repo, Rev: src.Rev, Err: err}
	}

	manifest, err := config.ParseManifestFile(filepath.Join(dir, config.ManifestFileName))
	if err != nil {
		return Resolved{}, unresolvable(err)
	}

	r := Resolved{Source: src, Dir: dir}
	for _, decl := range src.Hooks {
		def, ok := manifest.Lookup(decl.ID)
		if !ok {
			return Resolved{}, unresolvable(fmt.Errorf("hook %q is not defined in %s", decl.ID, config.ManifestFileName))
		}
		if err := config.CheckMinimumVersion(def.MinimumVersion); err != nil {
			return Resolved{}, unresolvable(fmt.Errorf("hook %q: %w", decl.ID, err))
		}
		r.Hooks = append(r.Hooks, def.Merge(decl))
	}
	logger.Debug(ctx, "resolved source",
		slog.String("repo", src.Repo),
		slog.String("rev", src.Rev),
		slog.Int("hooks", len(r.Hooks)),
	)
	return r, nil
}

// MetaLanguage is the language of the built-in meta hooks. Runners execute
// them in process.
const MetaLanguage = "meta"

var configFilePattern = `^\.pre-commit-config\.yaml$`

var metaDefinitions = config.Manifest{
	{
		ID:          "check-hooks-apply",
		Name:        "Check hooks apply to the repository",
		Description: "fails when a hook matches no files",
		Entry:       "check-hooks-apply",
		Language:    MetaLanguage,
		Files:       configFilePattern,
	},
	{
		ID:          "check-useless-excludes",
		Name:        "Check for useless excludes",
		Description: "fails when an exclude pattern matches no files",
		Entry:       "check-useless-excludes",
		Language:    MetaLanguage,
		Files:       configFilePattern,
	},
	{
		ID:          "identity",
		Name:        "identity",
		Description: "prints the files it is run against",
		Entry:       "identity",
		Language:    MetaLanguage,
		Verbose:     config.Bool(true),
	},
}

func resolveMeta(src config.Source) Resolved {
	r := Resolved{Source: src}
	for _, decl := range src.Hooks {
		// Parse has rejected unknown meta hook ids already.
		def, _ := metaDefinitions.Lookup(decl.ID)
		merged := def.Merge(decl)
		merged.Entry, merged.Language = def.Entry, def.Language
		r.Hooks = append(r.Hooks, merged)
	}
	return r
}
