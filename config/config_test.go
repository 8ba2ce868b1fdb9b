// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package config

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"go.astrophena.name/prehook/testutil"
	"go.astrophena.name/prehook/version"
)

func TestParsePythonProject(t *testing.T) {
	doc, err := ParseFile("testdata/valid/python-project.yaml")
	if err != nil {
		t.Fatal(err)
	}

	testutil.AssertEqual(t, doc.FailFast, true)
	testutil.AssertEqual(t, doc.DefaultStages, []Stage{StagePreCommit, StagePrePush})

	var repos []string
	for _, src := range doc.Repos {
		repos = append(repos, src.Repo)
	}
	testutil.AssertEqual(t, repos, []string{
		"https://github.com/PyCQA/isort",
		"https://github.com/psf/black",
		"https://github.com/PyCQA/flake8",
		"https://github.com/PyCQA/pydocstyle",
		LocalRepo,
	})
	testutil.AssertEqual(t, doc.Repos[1].Rev, "22.3.0")
	testutil.AssertEqual(t, doc.Repos[3].Hooks[0].Exclude, "^tests/")

	local := doc.Repos[4]
	testutil.AssertEqual(t, local.IsLocal(), true)
	testutil.AssertEqual(t, local.Rev, "")
	testutil.AssertEqual(t, len(local.Hooks), 2)
	install := local.Hooks[0]
	testutil.AssertEqual(t, install.Entry, "pip install -e .")
	testutil.AssertEqual(t, install.Language, "system")
	testutil.AssertEqual(t, install.Types, []string{"python"})
	testutil.AssertEqual(t, install.PassesFilenames(), false)

	// Remote declarations default to passing filenames.
	testutil.AssertEqual(t, doc.Repos[0].Hooks[0].PassesFilenames(), true)
}

func TestRoundTrip(t *testing.T) {
	testutil.Run(t, "testdata/valid/*.yaml", func(t *testing.T, match string) {
		first, err := ParseFile(match)
		if err != nil {
			t.Fatal(err)
		}
		b, err := Marshal(first)
		if err != nil {
			t.Fatal(err)
		}
		second, err := Parse(b)
		if err != nil {
			t.Fatalf("Parse(Marshal()): %v\n%s", err, b)
		}
		testutil.AssertEqual(t, second, first)
	})
}

func TestMarshalKeepsExplicitFalse(t *testing.T) {
	doc := &Document{Repos: []Source{{
		Repo: LocalRepo,
		Hooks: []Hook{{
			ID: "mypy", Name: "mypy", Entry: "mypy", Language: "system",
			PassFilenames: Bool(false),
		}},
	}}}
	b, err := Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "pass_filenames: false") {
		t.Fatalf("explicit false was dropped:\n%s", b)
	}
	if strings.Contains(string(b), "always_run") {
		t.Fatalf("unset option was written:\n%s", b)
	}
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]struct {
		in         string
		wantFields []string
	}{
		"invalid yaml": {
			in:         "repos: [",
			wantFields: []string{""},
		},
		"empty": {
			in:         "",
			wantFields: []string{""},
		},
		"missing repos": {
			in:         "fail_fast: true\n",
			wantFields: []string{""},
		},
		"wrong type": {
			in:         "fail_fast: sometimes\nrepos: []\n",
			wantFields: []string{"fail_fast"},
		},
		"missing rev on remote source": {
			in: `repos:
  - repo: https://github.com/psf/black
    hooks:
      - id: black
`,
			wantFields: []string{"repos[0].rev"},
		},
		"empty rev on remote source": {
			in: `repos:
  - repo: https://github.com/psf/black
    rev: ""
    hooks:
      - id: black
`,
			wantFields: []string{"repos[0].rev"},
		},
		"rev on local source": {
			in: `repos:
  - repo: local
    rev: v1
    hooks:
      - {id: x, name: x, entry: x, language: system}
`,
			wantFields: []string{"repos[0].rev"},
		},
		"missing id": {
			in: `repos:
  - repo: https://github.com/psf/black
    rev: 22.3.0
    hooks:
      - args: [--check]
`,
			wantFields: []string{"repos[0].hooks[0]"},
		},
		"empty id": {
			in: `repos:
  - repo: https://github.com/psf/black
    rev: 22.3.0
    hooks:
      - id: ""
`,
			wantFields: []string{"repos[0].hooks[0].id"},
		},
		"missing repo": {
			in: `repos:
  - rev: 22.3.0
    hooks:
      - id: black
`,
			wantFields: []string{"repos[0]"},
		},
		"incomplete local hook": {
			in: `repos:
  - repo: local
    hooks:
      - id: mypy
`,
			wantFields: []string{"repos[0].hooks[0].name", "repos[0].hooks[0].entry", "repos[0].hooks[0].language"},
		},
		"unknown language": {
			in: `repos:
  - repo: local
    hooks:
      - {id: x, name: x, entry: x, language: cobol}
`,
			wantFields: []string{"repos[0].hooks[0].language"},
		},
		"unknown stage": {
			in: `default_stages: [pre-lunch]
repos:
  - repo: local
    hooks:
      - {id: x, name: x, entry: x, language: system, stages: [push, later]}
`,
			wantFields: []string{"default_stages[0]", "repos[0].hooks[0].stages[1]"},
		},
		"bad pattern": {
			in: `exclude: "(unclosed"
repos:
  - repo: local
    hooks:
      - {id: x, name: x, entry: x, language: system, files: "[z-a]"}
`,
			wantFields: []string{"exclude", "repos[0].hooks[0].files"},
		},
		"unknown meta hook": {
			in: `repos:
  - repo: meta
    hooks:
      - id: check-everything
`,
			wantFields: []string{"repos[0].hooks[0].id"},
		},
		"no hooks": {
			in: `repos:
  - repo: https://github.com/psf/black
    rev: 22.3.0
    hooks: []
`,
			wantFields: []string{"repos[0].hooks"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse([]byte(tc.in))
			if doc != nil {
				t.Fatalf("Parse() returned a document for malformed input")
			}
			if !errors.Is(err, ErrMalformedConfig) {
				t.Fatalf("Parse() error = %v, want ErrMalformedConfig", err)
			}
			var mce *MalformedConfigError
			if !errors.As(err, &mce) {
				t.Fatalf("Parse() error is %T, want *MalformedConfigError", err)
			}
			var fields []string
			for _, p := range mce.Problems() {
				fields = append(fields, p.Field)
			}
			for _, want := range tc.wantFields {
				if !slices.Contains(fields, want) {
					t.Errorf("problems %q do not mention %q\nerror: %v", fields, want, err)
				}
			}
		})
	}
}

func TestParseFileNamesFileInError(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"bad.yaml": "repos:\n  - repo: https://x\n    hooks: [{id: a}]\n",
	})
	_, err := ParseFile(dir + "/bad.yaml")
	if err == nil || !strings.Contains(err.Error(), "bad.yaml") || !strings.Contains(err.Error(), "repos[0].rev") {
		t.Fatalf("ParseFile() error = %v", err)
	}
}

func TestMinimumVersion(t *testing.T) {
	old := runningVersion
	t.Cleanup(func() { runningVersion = old })

	doc := "minimum_pre_commit_version: 2.0.0\nrepos:\n  - repo: meta\n    hooks: [{id: identity}]\n"

	cases := map[string]struct {
		running string
		wantErr bool
	}{
		"devel build": {running: "devel"},
		"newer":       {running: "v2.1.0"},
		"equal":       {running: "v2.0.0"},
		"older":       {running: "v1.9.9", wantErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			runningVersion = func() version.Info { return version.Info{Version: tc.running} }
			_, err := Parse([]byte(doc))
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestStage(t *testing.T) {
	cases := map[Stage]struct {
		canonical   Stage
		valid       bool
		installable bool
	}{
		"commit":       {StagePreCommit, true, true},
		"push":         {StagePrePush, true, true},
		"merge-commit": {StagePreMergeCommit, true, true},
		"pre-push":     {StagePrePush, true, true},
		"manual":       {StageManual, true, false},
		"nonsense":     {"nonsense", false, false},
	}
	for in, tc := range cases {
		t.Run(string(in), func(t *testing.T) {
			testutil.AssertEqual(t, in.Canonical(), tc.canonical)
			testutil.AssertEqual(t, in.Valid(), tc.valid)
			testutil.AssertEqual(t, in.IsInstallable(), tc.installable)
		})
	}
}

func TestMerge(t *testing.T) {
	def := Hook{
		ID:       "flake8",
		Name:     "flake8",
		Entry:    "flake8",
		Language: "python",
		Types:    []string{"python"},
		Args:     []string{"--max-line-length=88"},
	}
	got := def.Merge(Hook{
		ID:            "ignored",
		Args:          []string{"--select=E"},
		Exclude:       "^docs/",
		PassFilenames: Bool(false),
	})
	want := Hook{
		ID:            "flake8",
		Name:          "flake8",
		Entry:         "flake8",
		Language:      "python",
		Types:         []string{"python"},
		Args:          []string{"--select=E"},
		Exclude:       "^docs/",
		PassFilenames: Bool(false),
	}
	testutil.AssertEqual(t, got, want)
	// The definition itself is untouched.
	testutil.AssertEqual(t, def.Args, []string{"--max-line-length=88"})
}

func TestManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`- id: black
  name: black
  entry: black
  language: python
  types_or: [python, pyi]
  require_serial: true
- id: black-jupyter
  name: black-jupyter
  entry: black
  language: python
  types_or: [python, pyi, jupyter]
`))
	if err != nil {
		t.Fatal(err)
	}
	h, ok := m.Lookup("black")
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, h.RequiresSerial(), true)
	_, ok = m.Lookup("isort")
	testutil.AssertEqual(t, ok, false)

	_, err = ParseManifest([]byte("- id: x\n- id: x\n  name: x\n  entry: x\n  language: system\n"))
	if !errors.Is(err, ErrMalformedConfig) {
		t.Fatalf("ParseManifest() error = %v, want ErrMalformedConfig", err)
	}
	if !strings.Contains(err.Error(), `duplicate hook "x"`) || !strings.Contains(err.Error(), "[0].entry") {
		t.Fatalf("ParseManifest() error = %v", err)
	}
}

func TestSampleParses(t *testing.T) {
	if _, err := Parse(Sample()); err != nil {
		t.Fatal(err)
	}
}

func TestFieldPath(t *testing.T) {
	testutil.AssertEqual(t, fieldPath(""), "")
	testutil.AssertEqual(t, fieldPath("/fail_fast"), "fail_fast")
	testutil.AssertEqual(t, fieldPath("/repos/0/hooks/12/id"), "repos[0].hooks[12].id")
}
