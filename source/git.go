// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package source

import (
	"context"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Cloner fetches repo at rev into an empty directory.
type Cloner interface {
	Clone(ctx context.Context, repo, rev, dir string) error
}

// GitCloner clones Git repositories. Rev may be a tag, a branch or a
// (possibly abbreviated) commit hash.
type GitCloner struct {
	// Progress, if set, receives the remote's progress messages.
	Progress io.Writer
}

// Clone implements [Cloner].
func (c GitCloner) Clone(ctx context.Context, repo, rev, dir string) error {
	r, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:      repo,
		Tags:     git.AllTags,
		Progress: c.Progress,
	})
	if err != nil {
		return fmt.Errorf("clone: %w", err)
	}

	hash, err := r.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		// Branches other than the default exist only as remote refs.
		var rerr error
		hash, rerr = r.ResolveRevision(plumbing.Revision("refs/remotes/origin/" + rev))
		if rerr != nil {
			return fmt.Errorf("unknown revision %q: %w", rev, err)
		}
	}

	wt, err := r.Worktree()
	if err != nil {
		return err
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return fmt.Errorf("checkout %s: %w", rev, err)
	}
	return nil
}
