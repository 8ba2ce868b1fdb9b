// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Pre-commit runs the hooks declared in a hook registry document against the
files of a Git repository.

Usage:

	$ pre-commit [flags] [command] [args...]

The hook registry document, .pre-commit-config.yaml in the repository root by
default, lists hook sources in order. A source is either a remote Git
repository pinned to a revision, whose .pre-commit-hooks.yaml manifest
defines its hooks, the "local" sentinel, whose hooks are defined in place,
or the "meta" sentinel for built-in hooks that check the document itself.
Hooks run in declaration order: source order first, then hook order within a
source.

Commands:

  - run [hook-id]: run hooks against the staged files, or the files selected
    by -all-files, -files, -files-glob or -from-ref and -to-ref. With a hook
    id or alias only that hook runs. This is the default command.
  - install, uninstall: install or remove the Git hook scripts for the
    stages in -hook-type, or the document's default_install_hook_types, or
    pre-commit. Scripts not installed by this program are kept unless
    -overwrite is set.
  - hook-impl [args...]: used by installed hook scripts.
  - validate-config [file...]: validate hook registry documents.
  - validate-manifest [file...]: validate hook manifests.
  - plan: print the execution plan without running anything.
  - sample-config: print a sample hook registry document.
  - schema: print the JSON Schema hook registry documents are validated
    against.
  - clean: remove the store of fetched sources and language environments.
  - gc: remove fetched sources that are no longer referenced.

Remote sources are fetched into a store under $XDG_CACHE_HOME/prehook, or
$PREHOOK_HOME when set. Hooks named in the comma-separated SKIP environment
variable are reported as skipped without running. When a hook fails, later
hooks still run unless fail_fast is set in the document or -fail-fast is
passed; the program exits with status 1 if any hook failed.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/prehook/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
