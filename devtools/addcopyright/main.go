// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"

	"go.astrophena.name/prehook/cli"
	"go.astrophena.name/prehook/filetype"
)

// notice is a copyright header for one file type.
type notice struct {
	// template is formatted with the year.
	template string
	// marker identifies an existing header.
	marker string
}

var notices = map[string]notice{
	"go": {
		template: `// © %d Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

`,
		marker: "// ©",
	},
	"shell": {
		template: `# © %d Ilya Mateyko. All rights reserved.
# Use of this source code is governed by the ISC
# license that can be found in the LICENSE.md file.

`,
		marker: "# ©",
	},
}

// errMissingHeader is returned in check mode when a file lacks a header.
var errMissingHeader = errors.New("missing copyright header")

func main() { cli.Main(new(app)) }

type app struct {
	dry     bool
	check   bool
	exclude string

	// for tests
	now func() time.Time
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.dry, "dry", false, "Print the files that would have a copyright header added, without making changes.")
	fs.BoolVar(&a.check, "check", false, "Fail if any file lacks a copyright header, without making changes.")
	fs.StringVar(&a.exclude, "exclude", "_examples/**,**/testdata/**", "Comma-separated doublestar `patterns` of files to skip.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	files := env.Args
	if len(files) == 0 {
		var err error
		if files, err = walk("."); err != nil {
			return err
		}
	}

	excludes := lo.Compact(strings.Split(a.exclude, ","))
	var missing []string
	for _, file := range files {
		file = path.Clean(filepath.ToSlash(file))
		excluded, err := matchAny(excludes, file)
		if err != nil {
			return fmt.Errorf("%w: -exclude: %v", cli.ErrInvalidArgs, err)
		}
		if excluded {
			continue
		}
		n, ok := noticeFor(file)
		if !ok {
			continue
		}
		added, err := a.addHeader(file, n)
		if err != nil {
			return err
		}
		if added {
			missing = append(missing, file)
		}
	}

	for _, file := range missing {
		switch {
		case a.check:
			env.Logf("%s: %v", file, errMissingHeader)
		case a.dry:
			env.Logf("Would add copyright header to file %s.", file)
		}
	}
	if a.check && len(missing) > 0 {
		return fmt.Errorf("%w in %d file(s)", errMissingHeader, len(missing))
	}
	return nil
}

func walk(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func matchAny(patterns []string, file string) (bool, error) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, file)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// noticeFor picks the header for a file by its type tags.
func noticeFor(file string) (notice, bool) {
	for _, tag := range filetype.TagsForName(path.Base(file)) {
		if n, ok := notices[tag]; ok {
			return n, true
		}
	}
	return notice{}, false
}

// addHeader prepends the header to file unless it has one. It reports
// whether the file lacked a header; in check and dry modes the file is left
// alone.
func (a *app) addHeader(file string, n notice) (bool, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return false, err
	}
	// A header goes after the interpreter line of a script.
	var shebang []byte
	if bytes.HasPrefix(content, []byte("#!")) {
		if i := bytes.IndexByte(content, '\n'); i >= 0 {
			shebang, content = content[:i+1], content[i+1:]
		}
	}
	if bytes.HasPrefix(content, []byte(n.marker)) {
		return false, nil
	}
	if a.check || a.dry {
		return true, nil
	}

	now := time.Now
	if a.now != nil {
		now = a.now
	}
	info, err := os.Stat(file)
	if err != nil {
		return false, err
	}
	var buf bytes.Buffer
	buf.Write(shebang)
	fmt.Fprintf(&buf, n.template, now().Year())
	buf.Write(content)
	return true, os.WriteFile(file, buf.Bytes(), info.Mode().Perm())
}
