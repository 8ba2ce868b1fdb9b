// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Addcopyright adds a copyright header to source files.

Usage:

	$ addcopyright [flags] [file...]

It checks the given files, or every file under the current directory when
none are given, and prepends a copyright notice with the current year to
those that lack one. The kind of notice is picked by file type, so Go and
shell files get comments in their own syntax; other files are left alone.

With -check nothing is changed: files lacking a header are listed and the
program fails, which makes it usable as a hook that receives the staged
files as arguments.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/prehook/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
