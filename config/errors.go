// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ErrMalformedConfig is matched by every error reporting a structurally
// invalid document or manifest.
var ErrMalformedConfig = errors.New("malformed configuration")

// FieldError describes one problem at a location inside a document, such as
// "repos[1].hooks[0].id".
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

// MalformedConfigError lists every problem found in a document.
type MalformedConfigError struct {
	// File is the path of the document, if it was read from disk.
	File string
	errs *multierror.Error
}

func (e *MalformedConfigError) Error() string {
	name := e.File
	if name == "" {
		name = "document"
	}
	return fmt.Sprintf("%v: %s%s", ErrMalformedConfig, name, e.errs.Error())
}

// Is makes errors.Is(err, ErrMalformedConfig) true.
func (e *MalformedConfigError) Is(target error) bool { return target == ErrMalformedConfig }

// Unwrap returns the individual problems.
func (e *MalformedConfigError) Unwrap() []error { return e.errs.WrappedErrors() }

// Problems returns the individual problems in the order they were found.
func (e *MalformedConfigError) Problems() []*FieldError {
	var fes []*FieldError
	for _, err := range e.errs.WrappedErrors() {
		var fe *FieldError
		if errors.As(err, &fe) {
			fes = append(fes, fe)
		}
	}
	return fes
}

// problems accumulates FieldErrors while a document is checked.
type problems struct {
	errs *multierror.Error
}

func (p *problems) add(field, format string, args ...any) {
	p.errs = multierror.Append(p.errs, &FieldError{Field: field, Msg: fmt.Sprintf(format, args...)})
}

func (p *problems) err(file string) error {
	if p.errs == nil || len(p.errs.Errors) == 0 {
		return nil
	}
	p.errs.ErrorFormat = listFormat
	return &MalformedConfigError{File: file, errs: p.errs}
}

func listFormat(errs []error) string {
	var sb strings.Builder
	for _, err := range errs {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}
