// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package gitrepo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"

	"github.com/natefinch/atomic"

	"go.astrophena.name/prehook/config"
)

// ErrForeignHook is returned when installing over a hook script that was
// not written by this program.
var ErrForeignHook = errors.New("hook script exists and was not installed by prehook")

const marker = "# installed by prehook"

var scriptTemplate = template.Must(template.New("hook").Parse(`#!/bin/sh
` + marker + `; do not edit.
exec {{.Command}} -hook-stage={{.Stage}} hook-impl "$@"
`))

// HookScript returns the script installed as the Git hook for stage. command
// is the shell-quoted command that starts the runner.
func HookScript(stage config.Stage, command string) []byte {
	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, struct {
		Command string
		Stage   config.Stage
	}{command, stage.Canonical()}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// InstallHook writes the hook script for stage into hooksDir. A script that
// was not installed by this program is only replaced when overwrite is true.
func InstallHook(hooksDir string, stage config.Stage, command string, overwrite bool) (string, error) {
	if !stage.IsInstallable() {
		return "", fmt.Errorf("cannot install a hook for stage %q", stage)
	}
	path := filepath.Join(hooksDir, string(stage.Canonical()))
	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return "", err
	case !IsInstalled(existing) && !overwrite:
		return "", fmt.Errorf("%w: %s", ErrForeignHook, path)
	}
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return "", err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(HookScript(stage, command))); err != nil {
		return "", err
	}
	return path, os.Chmod(path, 0o755)
}

// UninstallHook removes the hook script for stage if this program installed
// it. It reports whether a script was removed.
func UninstallHook(hooksDir string, stage config.Stage) (bool, error) {
	path := filepath.Join(hooksDir, string(stage.Canonical()))
	existing, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !IsInstalled(existing) {
		return false, fmt.Errorf("%w: %s", ErrForeignHook, path)
	}
	return true, os.Remove(path)
}

// IsInstalled reports whether script was written by [InstallHook].
func IsInstalled(script []byte) bool { return bytes.Contains(script, []byte(marker)) }
