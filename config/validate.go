// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package config

import (
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/dlclark/regexp2"

	"go.astrophena.name/prehook/version"
)

// runningVersion is replaced in tests.
var runningVersion = version.Version

// CompilePattern compiles a files or exclude pattern. Patterns use Python
// regular expression syntax and match anywhere in a slash-separated path.
func CompilePattern(pattern string) (*regexp2.Regexp, error) {
	return regexp2.Compile(pattern, regexp2.None)
}

// CheckMinimumVersion returns an error if the running program is older than
// min. Development builds satisfy any minimum.
func CheckMinimumVersion(min string) error {
	if min == "" {
		return nil
	}
	want, err := semver.NewVersion(min)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", min, err)
	}
	info := runningVersion()
	if info.IsDevel() {
		return nil
	}
	have, err := semver.NewVersion(info.Version)
	if err != nil {
		return fmt.Errorf("running version %q is not a semantic version: %w", info.Version, err)
	}
	if have.LessThan(want) {
		return fmt.Errorf("requires version %s, running %s", want, have)
	}
	return nil
}

func validateDocument(d *Document, p *problems) {
	checkVersion(p, "minimum_pre_commit_version", d.MinimumVersion)
	checkStages(p, "default_stages", d.DefaultStages)
	for i, s := range d.DefaultInstallHookTypes {
		if !s.IsInstallable() {
			p.add(fmt.Sprintf("default_install_hook_types[%d]", i), "unknown hook type %q", s)
		}
	}
	checkPattern(p, "files", d.Files)
	checkPattern(p, "exclude", d.Exclude)
	for lang := range d.DefaultLanguageVersion {
		if !slices.Contains(Languages, lang) {
			p.add("default_language_version."+lang, "unknown language %q", lang)
		}
	}
	if len(d.Repos) == 0 {
		p.add("repos", "at least one source is required")
	}

	for i := range d.Repos {
		src := &d.Repos[i]
		field := fmt.Sprintf("repos[%d]", i)
		switch {
		case src.Repo == "":
			p.add(field+".repo", "must not be empty")
		case src.IsRemote() && src.Rev == "":
			p.add(field+".rev", "is required for remote source %q", src.Repo)
		case !src.IsRemote() && src.Rev != "":
			p.add(field+".rev", "must not be set for %q sources", src.Repo)
		}
		if len(src.Hooks) == 0 {
			p.add(field+".hooks", "at least one hook is required")
		}
		for j := range src.Hooks {
			validateHook(p, src, &src.Hooks[j], fmt.Sprintf("%s.hooks[%d]", field, j))
		}
	}
}

func validateHook(p *problems, src *Source, h *Hook, field string) {
	if h.ID == "" {
		p.add(field+".id", "must not be empty")
	}
	switch {
	case src.IsLocal():
		checkDefinition(p, h, field)
	case src.IsMeta():
		if h.ID != "" && !slices.Contains(MetaHooks, h.ID) {
			p.add(field+".id", "unknown meta hook %q", h.ID)
		}
		if h.Entry != "" || h.Language != "" {
			p.add(field, "meta hooks cannot override entry or language")
		}
	default:
		if h.Language != "" && !slices.Contains(Languages, h.Language) {
			p.add(field+".language", "unknown language %q", h.Language)
		}
	}
	checkCommon(p, h, field)
}

// checkDefinition verifies the fields every complete hook definition has.
func checkDefinition(p *problems, h *Hook, field string) {
	if h.Name == "" {
		p.add(field+".name", "is required")
	}
	if h.Entry == "" {
		p.add(field+".entry", "is required")
	}
	switch {
	case h.Language == "":
		p.add(field+".language", "is required")
	case !slices.Contains(Languages, h.Language):
		p.add(field+".language", "unknown language %q", h.Language)
	}
}

func checkCommon(p *problems, h *Hook, field string) {
	checkStages(p, field+".stages", h.Stages)
	checkPattern(p, field+".files", h.Files)
	checkPattern(p, field+".exclude", h.Exclude)
	checkVersion(p, field+".minimum_pre_commit_version", h.MinimumVersion)
}

func checkStages(p *problems, field string, stages []Stage) {
	for i, s := range stages {
		if !s.Valid() {
			p.add(fmt.Sprintf("%s[%d]", field, i), "unknown stage %q", s)
		}
	}
}

func checkPattern(p *problems, field, pattern string) {
	if pattern == "" {
		return
	}
	if _, err := CompilePattern(pattern); err != nil {
		p.add(field, "invalid pattern %q: %v", pattern, err)
	}
}

func checkVersion(p *problems, field, min string) {
	if err := CheckMinimumVersion(min); err != nil {
		p.add(field, "%v", err)
	}
}
