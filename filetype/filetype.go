// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package filetype assigns type tags to files, so hooks can select the files
// they apply to by kind ("python", "text", "executable") rather than by name.
package filetype

import (
	"bufio"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
)

// Set is a set of tags.
type Set map[string]struct{}

// NewSet returns a set holding tags.
func NewSet(tags ...string) Set {
	s := make(Set, len(tags))
	s.Add(tags...)
	return s
}

// Add adds tags to s.
func (s Set) Add(tags ...string) {
	for _, t := range tags {
		s[t] = struct{}{}
	}
}

// Has reports whether tag is in s.
func (s Set) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Sorted returns the tags in lexical order.
func (s Set) Sorted() []string {
	tags := lo.Keys(map[string]struct{}(s))
	slices.Sort(tags)
	return tags
}

// Matches reports whether a file with tags is selected by a hook declaring
// types (all required), typesOr (at least one required, when not empty) and
// excludeTypes (none allowed).
func Matches(tags Set, types, typesOr, excludeTypes []string) bool {
	if !lo.EveryBy(types, tags.Has) {
		return false
	}
	if len(typesOr) > 0 && !lo.SomeBy(typesOr, tags.Has) {
		return false
	}
	return !lo.SomeBy(excludeTypes, tags.Has)
}

// Tags returns the tags of the file at path.
//
// A symbolic link is tagged only "symlink" and a directory only
// "directory". A regular file is tagged "file", "executable" or
// "non-executable", "text" or "binary", and then by its name, its extension
// and, for executables without a recognized name, its shebang line.
func Tags(path string) (Set, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	switch mode := fi.Mode(); {
	case mode&fs.ModeSymlink != 0:
		return NewSet("symlink"), nil
	case mode.IsDir():
		return NewSet("directory"), nil
	case !mode.IsRegular():
		return NewSet("socket"), nil
	}

	tags := NewSet("file")
	executable := fi.Mode().Perm()&0o111 != 0
	if executable {
		tags.Add("executable")
	} else {
		tags.Add("non-executable")
	}

	byName := TagsForName(filepath.Base(path))
	tags.Add(byName...)
	if len(byName) == 0 && executable {
		interp, err := shebang(path)
		if err != nil {
			return nil, err
		}
		tags.Add(interpreterTags(interp)...)
	}

	if !tags.Has("text") && !tags.Has("binary") {
		text, err := isText(path, fi.Size())
		if err != nil {
			return nil, err
		}
		if text {
			tags.Add("text")
		} else {
			tags.Add("binary")
		}
	}
	return tags, nil
}

// TagsForName returns the tags implied by a file name alone.
func TagsForName(name string) []string {
	if t, ok := names[name]; ok {
		return t
	}
	// Dotfiles such as .bashrc have no extension in the usual sense.
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" || ext == strings.TrimPrefix(name, ".") && strings.HasPrefix(name, ".") {
		if t, ok := names[strings.ToLower(name)]; ok {
			return t
		}
		return nil
	}
	if t, ok := extensions[ext]; ok {
		return t
	}
	return extensions[strings.ToLower(ext)]
}

func shebang(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadSlice('\n')
	if !bytes.HasPrefix(line, []byte("#!")) {
		return nil, nil
	}
	if err != nil && len(line) == 0 {
		return nil, nil
	}
	fields := strings.Fields(string(bytes.TrimPrefix(line, []byte("#!"))))
	if len(fields) == 0 {
		return nil, nil
	}
	if filepath.Base(fields[0]) == "env" {
		fields = fields[1:]
		for len(fields) > 0 && strings.HasPrefix(fields[0], "-") {
			fields = fields[1:]
		}
	}
	return fields, nil
}

func interpreterTags(cmd []string) []string {
	if len(cmd) == 0 {
		return nil
	}
	interp := filepath.Base(cmd[0])
	if t, ok := interpreters[interp]; ok {
		return t
	}
	// python3.12 → python3 → python.
	for trimmed := interp; trimmed != ""; {
		i := strings.LastIndexAny(trimmed, ".0123456789")
		if i < 0 || i != len(trimmed)-1 {
			break
		}
		trimmed = trimmed[:i]
		if t, ok := interpreters[trimmed]; ok {
			return append(slices.Clone(t), interp)
		}
	}
	return nil
}

func isText(path string, size int64) (bool, error) {
	if size == 0 {
		return true, nil
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return false, err
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true, nil
		}
	}
	return false, nil
}
