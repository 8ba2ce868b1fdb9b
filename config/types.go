// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package config

import "strings"

// Sentinel values of [Source.Repo].
const (
	// LocalRepo marks a source whose hooks are fully defined in the document.
	LocalRepo = "local"
	// MetaRepo marks a source of built-in hooks that check the document
	// itself.
	MetaRepo = "meta"
)

// DefaultFileName is the name of the document looked up in a repository root.
const DefaultFileName = ".pre-commit-config.yaml"

// ManifestFileName is the name of the file in which a remote source
// publishes its hook definitions.
const ManifestFileName = ".pre-commit-hooks.yaml"

// DefaultExclude is the global exclude pattern used when the document sets
// none. It matches nothing.
const DefaultExclude = "^$"

// DefaultTypes is the type set a hook applies to when it declares none.
var DefaultTypes = []string{"file"}

// Languages lists the execution environments hooks may declare.
var Languages = []string{"system", "script", "fail", "python", "golang"}

// MetaHooks lists the hooks provided by [MetaRepo].
var MetaHooks = []string{"identity", "check-hooks-apply", "check-useless-excludes"}

// Document is a hook registry document.
type Document struct {
	// DefaultInstallHookTypes are the Git hooks installed when none are
	// requested explicitly.
	DefaultInstallHookTypes []Stage `yaml:"default_install_hook_types,omitempty"`
	// DefaultLanguageVersion maps a language to the version used when a hook
	// does not set language_version.
	DefaultLanguageVersion map[string]string `yaml:"default_language_version,omitempty"`
	// DefaultStages are the stages hooks without their own stages run at.
	// Empty means every stage.
	DefaultStages []Stage `yaml:"default_stages,omitempty"`
	// Files is a global include pattern applied before per-hook patterns.
	Files string `yaml:"files,omitempty"`
	// Exclude is a global exclude pattern applied before per-hook patterns.
	Exclude string `yaml:"exclude,omitempty"`
	// FailFast stops execution after the first failing hook.
	FailFast bool `yaml:"fail_fast,omitempty"`
	// MinimumVersion is the lowest runner version able to run the document.
	MinimumVersion string `yaml:"minimum_pre_commit_version,omitempty"`
	// Repos are the hook sources, in execution order.
	Repos []Source `yaml:"repos"`
}

// Source is one entry of [Document.Repos].
type Source struct {
	// Repo locates the hook definitions: a clonable URL or path, LocalRepo
	// or MetaRepo.
	Repo string `yaml:"repo"`
	// Rev pins a remote source to a tag, branch or commit. Empty for local
	// and meta sources.
	Rev string `yaml:"rev,omitempty"`
	// Hooks are the hooks taken from this source, in execution order.
	Hooks []Hook `yaml:"hooks"`
}

// IsLocal reports whether the source is defined in the document itself.
func (s *Source) IsLocal() bool { return s.Repo == LocalRepo }

// IsMeta reports whether the source refers to the built-in meta hooks.
func (s *Source) IsMeta() bool { return s.Repo == MetaRepo }

// IsRemote reports whether the source has to be fetched.
func (s *Source) IsRemote() bool { return !s.IsLocal() && !s.IsMeta() }

// Hook declares a hook. In a remote source only ID is required and every
// other field overrides the remote definition. In a local source the
// declaration is the definition.
type Hook struct {
	ID                     string   `yaml:"id"`
	Alias                  string   `yaml:"alias,omitempty"`
	Name                   string   `yaml:"name,omitempty"`
	Description            string   `yaml:"description,omitempty"`
	Entry                  string   `yaml:"entry,omitempty"`
	Language               string   `yaml:"language,omitempty"`
	LanguageVersion        string   `yaml:"language_version,omitempty"`
	Files                  string   `yaml:"files,omitempty"`
	Exclude                string   `yaml:"exclude,omitempty"`
	Types                  []string `yaml:"types,omitempty"`
	TypesOr                []string `yaml:"types_or,omitempty"`
	ExcludeTypes           []string `yaml:"exclude_types,omitempty"`
	Args                   []string `yaml:"args,omitempty"`
	Stages                 []Stage  `yaml:"stages,omitempty"`
	AdditionalDependencies []string `yaml:"additional_dependencies,omitempty"`
	PassFilenames          *bool    `yaml:"pass_filenames,omitempty"`
	AlwaysRun              *bool    `yaml:"always_run,omitempty"`
	RequireSerial          *bool    `yaml:"require_serial,omitempty"`
	Verbose                *bool    `yaml:"verbose,omitempty"`
	LogFile                string   `yaml:"log_file,omitempty"`
	MinimumVersion         string   `yaml:"minimum_pre_commit_version,omitempty"`
}

// PassesFilenames reports whether matched file names are appended to the
// command line. Defaults to true.
func (h *Hook) PassesFilenames() bool { return h.PassFilenames == nil || *h.PassFilenames }

// AlwaysRuns reports whether the hook runs even when no file matches.
func (h *Hook) AlwaysRuns() bool { return h.AlwaysRun != nil && *h.AlwaysRun }

// RequiresSerial reports whether the hook must be invoked one command at a
// time.
func (h *Hook) RequiresSerial() bool { return h.RequireSerial != nil && *h.RequireSerial }

// IsVerbose reports whether the hook output is shown even on success.
func (h *Hook) IsVerbose() bool { return h.Verbose != nil && *h.Verbose }

// DisplayName returns the name shown in status lines.
func (h *Hook) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}
	return h.ID
}

// MatchesSelector reports whether the hook is addressed by s, either by its
// id or by its alias.
func (h *Hook) MatchesSelector(s string) bool {
	return s != "" && (h.ID == s || h.Alias == s)
}

// Merge returns a copy of h with every field set in override replacing the
// corresponding field of h. The ID is kept.
func (h Hook) Merge(override Hook) Hook {
	str := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	list := func(dst *[]string, src []string) {
		if src != nil {
			*dst = src
		}
	}
	flag := func(dst **bool, src *bool) {
		if src != nil {
			*dst = src
		}
	}
	str(&h.Alias, override.Alias)
	str(&h.Name, override.Name)
	str(&h.Description, override.Description)
	str(&h.Entry, override.Entry)
	str(&h.Language, override.Language)
	str(&h.LanguageVersion, override.LanguageVersion)
	str(&h.Files, override.Files)
	str(&h.Exclude, override.Exclude)
	str(&h.LogFile, override.LogFile)
	str(&h.MinimumVersion, override.MinimumVersion)
	list(&h.Types, override.Types)
	list(&h.TypesOr, override.TypesOr)
	list(&h.ExcludeTypes, override.ExcludeTypes)
	list(&h.Args, override.Args)
	list(&h.AdditionalDependencies, override.AdditionalDependencies)
	if override.Stages != nil {
		h.Stages = override.Stages
	}
	flag(&h.PassFilenames, override.PassFilenames)
	flag(&h.AlwaysRun, override.AlwaysRun)
	flag(&h.RequireSerial, override.RequireSerial)
	flag(&h.Verbose, override.Verbose)
	return h
}

// Bool returns a pointer to v, for filling the tri-state fields of [Hook].
func Bool(v bool) *bool { return &v }

// Stage is a Git lifecycle point at which hooks may run.
type Stage string

// Known stages.
const (
	StagePreCommit        Stage = "pre-commit"
	StagePreMergeCommit   Stage = "pre-merge-commit"
	StagePrePush          Stage = "pre-push"
	StagePrepareCommitMsg Stage = "prepare-commit-msg"
	StageCommitMsg        Stage = "commit-msg"
	StagePostCheckout     Stage = "post-checkout"
	StagePostCommit       Stage = "post-commit"
	StagePostMerge        Stage = "post-merge"
	StagePostRewrite      Stage = "post-rewrite"
	StagePreRebase        Stage = "pre-rebase"
	StageManual           Stage = "manual"
)

// Stages lists every known stage in canonical form.
var Stages = []Stage{
	StagePreCommit, StagePreMergeCommit, StagePrePush, StagePrepareCommitMsg,
	StageCommitMsg, StagePostCheckout, StagePostCommit, StagePostMerge,
	StagePostRewrite, StagePreRebase, StageManual,
}

var legacyStages = map[Stage]Stage{
	"commit":       StagePreCommit,
	"push":         StagePrePush,
	"merge-commit": StagePreMergeCommit,
}

// Canonical maps legacy stage names (commit, push, merge-commit) to their
// current names. Other values are returned unchanged.
func (s Stage) Canonical() Stage {
	if c, ok := legacyStages[Stage(strings.TrimSpace(string(s)))]; ok {
		return c
	}
	return s
}

// Valid reports whether s names a known stage, possibly by a legacy name.
func (s Stage) Valid() bool {
	c := s.Canonical()
	for _, k := range Stages {
		if c == k {
			return true
		}
	}
	return false
}

// IsInstallable reports whether s corresponds to a Git hook script, as
// opposed to the manual stage.
func (s Stage) IsInstallable() bool { return s.Valid() && s.Canonical() != StageManual }
