// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package config

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse parses and validates a document. Any problem, whether a YAML syntax
// error, a wrongly typed key or a missing required field, is reported as a
// [*MalformedConfigError].
func Parse(b []byte) (*Document, error) { return parse("", b) }

// ParseFile reads and parses the document at path.
func ParseFile(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(path, b)
}

func parse(file string, b []byte) (*Document, error) {
	var p problems

	var tree any
	if err := yaml.Unmarshal(b, &tree); err != nil {
		p.add("", "invalid YAML: %v", err)
		return nil, p.err(file)
	}
	if tree == nil {
		p.add("", "document is empty")
		return nil, p.err(file)
	}
	if !checkSchema(tree, &p) {
		return nil, p.err(file)
	}

	var doc Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		p.add("", "%v", err)
		return nil, p.err(file)
	}
	doc.normalize()

	validateDocument(&doc, &p)
	if err := p.err(file); err != nil {
		return nil, err
	}
	return &doc, nil
}

// normalize replaces empty lists with nil so that a document survives
// marshaling, which omits them, unchanged.
func (d *Document) normalize() {
	nilIfEmpty(&d.DefaultInstallHookTypes)
	nilIfEmpty(&d.DefaultStages)
	if len(d.DefaultLanguageVersion) == 0 {
		d.DefaultLanguageVersion = nil
	}
	for i := range d.Repos {
		for j := range d.Repos[i].Hooks {
			d.Repos[i].Hooks[j].normalize()
		}
	}
}

func (h *Hook) normalize() {
	nilIfEmpty(&h.Types)
	nilIfEmpty(&h.TypesOr)
	nilIfEmpty(&h.ExcludeTypes)
	nilIfEmpty(&h.Args)
	nilIfEmpty(&h.Stages)
	nilIfEmpty(&h.AdditionalDependencies)
}

func nilIfEmpty[T any](s *[]T) {
	if len(*s) == 0 {
		*s = nil
	}
}

// Marshal serializes a document. Unset optional fields are omitted; explicit
// false values of tri-state hook options are kept. Parsing the result yields
// a document equal to d.
func Marshal(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
