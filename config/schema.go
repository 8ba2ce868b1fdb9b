// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"go.astrophena.name/prehook/syncx"
)

//go:embed schema.json
var schemaJSON []byte

// Schema returns the JSON Schema documents are checked against.
func Schema() []byte { return bytes.Clone(schemaJSON) }

var compiledSchema syncx.Lazy[*jsonschema.Schema]

func documentSchema() *jsonschema.Schema {
	return compiledSchema.Get(func() *jsonschema.Schema {
		return jsonschema.MustCompileString("prehook-config.json", string(schemaJSON))
	})
}

// checkSchema validates a generic YAML tree against the document schema and
// records every violation in p. It reports whether the tree conforms.
func checkSchema(tree any, p *problems) bool {
	// The tree goes through JSON so that the validator sees only JSON types.
	b, err := json.Marshal(tree)
	if err != nil {
		p.add("", "cannot check document: %v", err)
		return false
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		p.add("", "cannot check document: %v", err)
		return false
	}
	err = documentSchema().Validate(v)
	if err == nil {
		return true
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		p.add("", "%v", err)
		return false
	}
	collectViolations(ve, p)
	return false
}

func collectViolations(ve *jsonschema.ValidationError, p *problems) {
	if len(ve.Causes) == 0 {
		p.add(fieldPath(ve.InstanceLocation), "%s", ve.Message)
		return
	}
	for _, c := range ve.Causes {
		collectViolations(c, p)
	}
}

// fieldPath turns a JSON pointer such as "/repos/0/hooks/1" into
// "repos[0].hooks[1]".
func fieldPath(ptr string) string {
	var sb strings.Builder
	for _, tok := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		if tok == "" {
			continue
		}
		if _, err := strconv.Atoi(tok); err == nil {
			fmt.Fprintf(&sb, "[%s]", tok)
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strings.NewReplacer("~1", "/", "~0", "~").Replace(tok))
	}
	return sb.String()
}
