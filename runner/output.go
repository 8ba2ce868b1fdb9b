// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package runner

import (
	"bytes"
	"fmt"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/fatih/color"
)

const (
	maxColumns = 80
	noFiles    = "(no files to check)"
)

// columns returns the width of status lines: at most 80 columns, or the
// terminal width if smaller, but always enough for the longest name.
func columns(steps []Step, width int) int {
	cols := maxColumns
	if width > 0 {
		cols = min(cols, width)
	}
	for _, s := range steps {
		cols = max(cols, len(s.Hook.DisplayName())+3+len(noFiles)+len("Skipped"))
	}
	return cols
}

func (r *Runner) colorize(attr color.Attribute, s string) string {
	c := color.New(attr)
	if r.opts.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// print writes the status line of res and, for failing or verbose hooks,
// the details and output that follow it.
func (r *Runner) print(res *Result) {
	name := res.Step.Hook.DisplayName()
	var postfix string
	var attr color.Attribute
	switch res.Status {
	case Passed:
		attr = color.FgGreen
	case Failed:
		attr = color.FgRed
	case NoFiles:
		postfix, attr = noFiles, color.FgCyan
	case Skipped:
		attr = color.FgYellow
	default:
		return
	}
	status := res.Status.String()
	dots := max(1, r.cols-len(name)-len(postfix)-len(status))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s%s%s%s\n", name, strings.Repeat(".", dots), postfix, r.colorize(attr, status))

	verbose := r.opts.Verbose || res.Step.Hook.IsVerbose()
	if res.Status == Failed || (verbose && res.Status == Passed) {
		fmt.Fprintf(&buf, "- hook id: %s\n", res.Step.Hook.ID)
		if r.opts.Verbose && len(res.Command) > 0 {
			fmt.Fprintf(&buf, "- command: %s\n", shellescape.QuoteCommand(res.Command))
		}
		if verbose {
			fmt.Fprintf(&buf, "- duration: %.2fs\n", res.Duration.Seconds())
		}
		if f, ok := res.Err.(*HookFailure); ok {
			switch {
			case f.Err != nil:
				fmt.Fprintf(&buf, "- error: %v\n", f.Err)
			case f.ExitCode != 0:
				fmt.Fprintf(&buf, "- exit code: %d\n", f.ExitCode)
			}
			if f.Modified {
				buf.WriteString("- files were modified by this hook\n")
			}
		}
		if out := bytes.TrimSpace(res.Output); len(out) > 0 {
			if res.Step.Hook.LogFile != "" {
				if err := r.writeLog(&res.Step, res.Output); err != nil {
					fmt.Fprintf(&buf, "- writing %s: %v\n", res.Step.Hook.LogFile, err)
				} else {
					fmt.Fprintf(&buf, "- output written to %s\n", res.Step.Hook.LogFile)
				}
			} else {
				buf.WriteString("\n")
				buf.Write(out)
				buf.WriteString("\n\n")
			}
		}
	}
	r.opts.Stdout.Write(buf.Bytes())
}
