// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the list of hook definitions a remote source publishes in
// [ManifestFileName].
type Manifest []Hook

// Lookup returns the definition with the given id.
func (m Manifest) Lookup(id string) (Hook, bool) {
	for _, h := range m {
		if h.ID == id {
			return h, true
		}
	}
	return Hook{}, false
}

// ParseManifest parses and validates a manifest. Every definition needs an
// id, a name, an entry and a known language.
func ParseManifest(b []byte) (Manifest, error) { return parseManifest("", b) }

// ParseManifestFile reads and parses the manifest at path.
func ParseManifestFile(path string) (Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseManifest(path, b)
}

func parseManifest(file string, b []byte) (Manifest, error) {
	var (
		p problems
		m Manifest
	)
	if err := yaml.Unmarshal(b, &m); err != nil {
		p.add("", "invalid manifest: %v", err)
		return nil, p.err(file)
	}
	if len(m) == 0 {
		p.add("", "manifest defines no hooks")
	}
	seen := make(map[string]bool)
	for i := range m {
		h := &m[i]
		h.normalize()
		field := fmt.Sprintf("[%d]", i)
		if h.ID == "" {
			p.add(field+".id", "must not be empty")
		} else if seen[h.ID] {
			p.add(field+".id", "duplicate hook %q", h.ID)
		}
		seen[h.ID] = true
		checkDefinition(&p, h, field)
		checkCommon(&p, h, field)
	}
	if err := p.err(file); err != nil {
		return nil, err
	}
	return m, nil
}
