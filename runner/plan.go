// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package runner builds the execution plan of a hook registry document,
// selects the files each hook applies to and runs the hooks.
package runner

import (
	"slices"

	"github.com/samber/lo"

	"go.astrophena.name/prehook/config"
	"go.astrophena.name/prehook/source"
)

// Step is one hook of the execution plan.
type Step struct {
	// Source is the declaration the hook comes from.
	Source config.Source
	// Dir is the checkout of a remote source, empty otherwise.
	Dir string
	// Hook is the complete hook definition.
	Hook config.Hook
}

// Plan flattens resolved sources into one ordered list: source order first,
// then the order of hooks within each source.
func Plan(resolved []source.Resolved) []Step {
	return lo.FlatMap(resolved, func(r source.Resolved, _ int) []Step {
		return lo.Map(r.Hooks, func(h config.Hook, _ int) Step {
			return Step{Source: r.Source, Dir: r.Dir, Hook: h}
		})
	})
}

// Stages returns the stages the step runs at: its own stages, the document
// defaults, or every stage.
func (s *Step) Stages(doc *config.Document) []config.Stage {
	stages := s.Hook.Stages
	if len(stages) == 0 {
		stages = doc.DefaultStages
	}
	if len(stages) == 0 {
		return slices.Clone(config.Stages)
	}
	return lo.Uniq(lo.Map(stages, func(st config.Stage, _ int) config.Stage { return st.Canonical() }))
}

// RunsAt reports whether the step runs at stage.
func (s *Step) RunsAt(doc *config.Document, stage config.Stage) bool {
	return slices.Contains(s.Stages(doc), stage.Canonical())
}
