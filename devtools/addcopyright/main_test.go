// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.astrophena.name/prehook/cli"
	"go.astrophena.name/prehook/cli/clitest"
	"go.astrophena.name/prehook/testutil"
)

const goHeader = `// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

`

func newTree(t *testing.T) string {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"main.go":                   "package main\n",
		"done.go":                   goHeader + "package main\n",
		"scripts/build.sh":          "#!/bin/sh\necho build\n",
		"README.md":                 "# readme\n",
		"_examples/other/x.go":      "package x\n",
		"runner/testdata/script.sh": "echo hi\n",
	})
	t.Chdir(dir)
	return dir
}

func read(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestRun(t *testing.T) {
	setup := func(t *testing.T) *app {
		newTree(t)
		return &app{now: func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }}
	}
	clitest.Run(t, setup, map[string]clitest.Case[*app]{
		"adds headers": {
			Args:               []string{},
			WantNothingPrinted: true,
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, read(t, "main.go"), goHeader+"package main\n")
				testutil.AssertEqual(t, read(t, "done.go"), goHeader+"package main\n")
				testutil.AssertEqual(t, read(t, "scripts/build.sh"), "#!/bin/sh\n# © 2026 Ilya Mateyko. All rights reserved.\n# Use of this source code is governed by the ISC\n# license that can be found in the LICENSE.md file.\n\necho build\n")
				testutil.AssertEqual(t, read(t, "README.md"), "# readme\n")
				testutil.AssertEqual(t, read(t, "_examples/other/x.go"), "package x\n")
				testutil.AssertEqual(t, read(t, "runner/testdata/script.sh"), "echo hi\n")
			},
		},
		"only given files": {
			Args:               []string{"README.md", "scripts/build.sh"},
			WantNothingPrinted: true,
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, read(t, "main.go"), "package main\n")
			},
		},
		"check": {
			Args:         []string{"-check", "main.go", "done.go"},
			WantErr:      errMissingHeader,
			WantInStderr: "main.go: missing copyright header",
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, read(t, "main.go"), "package main\n")
			},
		},
		"check passes": {
			Args:               []string{"-check", "done.go", "README.md"},
			WantNothingPrinted: true,
		},
		"dry run": {
			Args:         []string{"-dry"},
			WantInStderr: "Would add copyright header to file main.go.",
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, read(t, filepath.Join("scripts", "build.sh")), "#!/bin/sh\necho build\n")
			},
		},
		"bad exclude pattern": {
			Args:    []string{"-exclude", "[", "main.go"},
			WantErr: cli.ErrInvalidArgs,
		},
	})
}
