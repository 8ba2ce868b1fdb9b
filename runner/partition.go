// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package runner

// maxCommandLength bounds the length of a command line, leaving headroom
// below the smallest ARG_MAX of supported platforms for the environment.
var maxCommandLength = 1<<17 - 2048

// partition splits files into groups so that cmd followed by any group stays
// under maxLen bytes. With jobs > 1 files are spread into at least jobs
// groups so they can run concurrently. A command without files, or one that
// does not take filenames, yields a single empty group.
func partition(cmd, files []string, jobs, maxLen int) [][]string {
	if len(files) == 0 {
		return [][]string{nil}
	}
	base := 0
	for _, arg := range cmd {
		base += len(arg) + 1
	}
	perGroup := len(files)
	if jobs > 1 {
		perGroup = (len(files) + jobs - 1) / jobs
	}

	var (
		groups [][]string
		cur    []string
		size   = base
	)
	for _, f := range files {
		n := len(f) + 1
		if len(cur) > 0 && (size+n > maxLen || len(cur) >= perGroup) {
			groups = append(groups, cur)
			cur, size = nil, base
		}
		cur = append(cur, f)
		size += n
	}
	return append(groups, cur)
}
