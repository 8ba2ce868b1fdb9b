// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package runner

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

func (r *Runner) runMeta(ctx context.Context, plan []Step, step *Step, files []string) (run, error) {
	var out bytes.Buffer
	switch step.Hook.Entry {
	case "identity":
		for _, f := range files {
			fmt.Fprintln(&out, f)
		}
		return run{output: out.Bytes()}, nil
	case "check-hooks-apply":
		all, err := r.allFiles(ctx, files)
		if err != nil {
			return run{}, err
		}
		for _, s := range plan {
			if s.Source.IsMeta() || s.Hook.AlwaysRuns() {
				continue
			}
			matched, err := Filter(r.doc, &s, all, r.opts.Classifier)
			if err != nil {
				return run{}, err
			}
			if len(matched) == 0 {
				fmt.Fprintf(&out, "%s does not apply to this repository\n", s.Hook.ID)
			}
		}
	case "check-useless-excludes":
		all, err := r.allFiles(ctx, files)
		if err != nil {
			return run{}, err
		}
		if err := r.checkExcludes(&out, plan, all); err != nil {
			return run{}, err
		}
	default:
		return run{}, fmt.Errorf("unknown meta hook %q", step.Hook.Entry)
	}
	if out.Len() > 0 {
		return run{code: 1, output: out.Bytes()}, nil
	}
	return run{}, nil
}

func (r *Runner) allFiles(ctx context.Context, files []string) ([]string, error) {
	if r.opts.Lister == nil {
		return files, nil
	}
	return r.opts.Lister.AllFiles(ctx)
}

// checkExcludes reports exclude patterns that exclude nothing: the global
// one against every file, a hook's against the files its other filters
// select.
func (r *Runner) checkExcludes(out *bytes.Buffer, plan []Step, all []string) error {
	if pattern := r.doc.Exclude; pattern != "" {
		if ok, err := anyMatches(pattern, all); err != nil {
			return err
		} else if !ok {
			fmt.Fprintf(out, "The global exclude pattern %q does not match any files\n", pattern)
		}
	}
	candidates, err := FilterNames(all, r.doc.Files, r.doc.Exclude)
	if err != nil {
		return err
	}
	for _, s := range plan {
		if s.Source.IsMeta() || s.Hook.Exclude == "" {
			continue
		}
		files, err := FilterNames(candidates, s.Hook.Files, "")
		if err != nil {
			return err
		}
		if files, err = FilterTypes(files, &s.Hook, r.opts.Classifier); err != nil {
			return err
		}
		ok, err := anyMatches(s.Hook.Exclude, files)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "The exclude pattern %q for %s does not match any files\n", strings.TrimSpace(s.Hook.Exclude), s.Hook.ID)
		}
	}
	return nil
}

func anyMatches(pattern string, files []string) (bool, error) {
	for _, f := range files {
		ok, err := search(pattern, f)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}
