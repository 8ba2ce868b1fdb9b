// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package version

import (
	"testing"

	"go.astrophena.name/prehook/testutil"
)

func TestInfoString(t *testing.T) {
	cases := map[string]struct {
		in   Info
		want string
	}{
		"devel": {
			in:   Info{Name: "pre-commit", Version: "devel", Go: "go1.26.0"},
			want: "pre-commit devel built with go1.26.0\n",
		},
		"with commit": {
			in:   Info{Name: "pre-commit", Version: "v1.2.0", Commit: "abc123", Go: "go1.26.0"},
			want: "pre-commit v1.2.0 (abc123) built with go1.26.0\n",
		},
		"modified": {
			in:   Info{Name: "pre-commit", Version: "v1.2.0", Commit: "abc123", Modified: true, Go: "go1.26.0"},
			want: "pre-commit v1.2.0 (abc123, modified) built with go1.26.0\n",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, tc.in.String(), tc.want)
		})
	}
}

func TestIsDevel(t *testing.T) {
	testutil.AssertEqual(t, Info{Version: "devel"}.IsDevel(), true)
	testutil.AssertEqual(t, Info{Version: "(devel)"}.IsDevel(), true)
	testutil.AssertEqual(t, Info{Version: "v0.3.0"}.IsDevel(), false)
}
