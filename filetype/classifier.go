// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package filetype

import (
	"path/filepath"

	"go.astrophena.name/prehook/syncx"
)

// Classifier computes tags of files under a root directory, remembering the
// result for each path. It is safe for concurrent use.
type Classifier struct {
	root  string
	cache syncx.Map[string, result]
}

type result struct {
	tags Set
	err  error
}

// NewClassifier returns a Classifier resolving relative paths against root.
func NewClassifier(root string) *Classifier {
	return &Classifier{root: root}
}

// Tags returns the tags of the file at the slash-separated path, relative to
// the classifier root.
func (c *Classifier) Tags(path string) (Set, error) {
	if r, ok := c.cache.Load(path); ok {
		return r.tags, r.err
	}
	tags, err := Tags(filepath.Join(c.root, filepath.FromSlash(path)))
	r, _ := c.cache.LoadOrStore(path, result{tags: tags, err: err})
	return r.tags, r.err
}
