// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package runner

import (
	"errors"
	"io/fs"

	"github.com/dlclark/regexp2"

	"go.astrophena.name/prehook/config"
	"go.astrophena.name/prehook/filetype"
	"go.astrophena.name/prehook/syncx"
)

// Classifier returns the type tags of a file given by its slash-separated
// path relative to the repository root. [*filetype.Classifier] implements
// it.
type Classifier interface {
	Tags(path string) (filetype.Set, error)
}

var patterns syncx.Map[string, *patternResult]

type patternResult struct {
	re  *regexp2.Regexp
	err error
}

func compile(pattern string) (*regexp2.Regexp, error) {
	if r, ok := patterns.Load(pattern); ok {
		return r.re, r.err
	}
	re, err := config.CompilePattern(pattern)
	r, _ := patterns.LoadOrStore(pattern, &patternResult{re: re, err: err})
	return r.re, r.err
}

// search reports whether pattern matches anywhere in s. An empty pattern
// matches everything.
func search(pattern, s string) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	re, err := compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s)
}

// excluded reports whether pattern excludes s. An empty pattern excludes
// nothing.
func excluded(pattern, s string) (bool, error) {
	if pattern == "" {
		return false, nil
	}
	return search(pattern, s)
}

// FilterNames returns the files matching the include pattern and not
// matching the exclude pattern.
func FilterNames(files []string, include, exclude string) ([]string, error) {
	var out []string
	for _, f := range files {
		in, err := search(include, f)
		if err != nil {
			return nil, err
		}
		if !in {
			continue
		}
		ex, err := excluded(exclude, f)
		if err != nil {
			return nil, err
		}
		if !ex {
			out = append(out, f)
		}
	}
	return out, nil
}

// FilterTypes returns the files whose tags satisfy the hook's type
// constraints. A hook without any declares [config.DefaultTypes]. Files
// that do not exist have no type and are dropped.
func FilterTypes(files []string, h *config.Hook, c Classifier) ([]string, error) {
	types := h.Types
	if len(types) == 0 && len(h.TypesOr) == 0 {
		types = config.DefaultTypes
	}
	var out []string
	for _, f := range files {
		tags, err := c.Tags(f)
		if errors.Is(err, fs.ErrNotExist) {
			// Deleted from the work tree but still tracked.
			continue
		}
		if err != nil {
			return nil, err
		}
		if filetype.Matches(tags, types, h.TypesOr, h.ExcludeTypes) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Filter returns the files the hook of step applies to: the document's
// global patterns first, then the hook's patterns, then its type
// constraints. Order of files is kept.
func Filter(doc *config.Document, step *Step, files []string, c Classifier) ([]string, error) {
	exclude := doc.Exclude
	if exclude == "" {
		exclude = config.DefaultExclude
	}
	files, err := FilterNames(files, doc.Files, exclude)
	if err != nil {
		return nil, err
	}
	files, err = FilterNames(files, step.Hook.Files, step.Hook.Exclude)
	if err != nil {
		return nil, err
	}
	return FilterTypes(files, &step.Hook, c)
}
