// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package config parses and validates hook registry documents.
//
// A document is an ordered list of hook sources. Each source is either a
// remote repository pinned to a revision, or one of the sentinels [LocalRepo]
// and [MetaRepo], whose hooks are defined in the document itself:
//
//	default_stages: [pre-commit, pre-push]
//	fail_fast: true
//	repos:
//	  - repo: https://github.com/psf/black
//	    rev: 22.3.0
//	    hooks:
//	      - id: black
//	  - repo: local
//	    hooks:
//	      - id: mypy
//	        name: mypy
//	        entry: mypy
//	        language: system
//	        types: [python]
//	        pass_filenames: false
//
// Order matters: it is the order in which hooks execute. A parsed [Document]
// is never modified by this package after [Parse] returns.
package config
