// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package runner

import (
	"errors"
	"fmt"
)

// ErrHookFailed is matched by every error reporting a failed hook.
var ErrHookFailed = errors.New("hook failed")

// HookFailure reports a hook that exited with a non-zero status, modified
// files, or could not be started.
type HookFailure struct {
	// ID is the id of the failed hook.
	ID string
	// ExitCode is the highest exit status among the hook's invocations.
	ExitCode int
	// Modified is true if the hook changed files in the working tree.
	Modified bool
	// Output is the combined output of the hook.
	Output []byte
	// Err is set when the hook could not be run at all.
	Err error
}

func (e *HookFailure) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%v: %s: %v", ErrHookFailed, e.ID, e.Err)
	case e.ExitCode != 0:
		return fmt.Sprintf("%v: %s: exit code %d", ErrHookFailed, e.ID, e.ExitCode)
	default:
		return fmt.Sprintf("%v: %s: files were modified by this hook", ErrHookFailed, e.ID)
	}
}

// Is makes errors.Is(err, ErrHookFailed) true.
func (e *HookFailure) Is(target error) bool { return target == ErrHookFailed }

func (e *HookFailure) Unwrap() error { return e.Err }
