// Package xsd validates dialog documents against an XML Schema.
package xsd

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"

	"github.com/jacoelho/xsd"
	xsderrors "github.com/jacoelho/xsd/errors"

	"github.com/aretw0/arbor/pkg/domain"
)

// Validator implements ports.SchemaValidator. A compiled schema is safe for
// concurrent use.
type Validator struct {
	schema *xsd.Schema
}

// Load compiles the schema at path.
func Load(path string) (*Validator, error) {
	schema, err := xsd.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &Validator{schema: schema}, nil
}

// LoadFS compiles the schema at location inside fsys.
func LoadFS(fsys fs.FS, location string) (*Validator, error) {
	schema, err := xsd.Load(fsys, location)
	if err != nil {
		return nil, err
	}
	return &Validator{schema: schema}, nil
}

// Validate maps every schema violation to a warning diagnostic.
func (v *Validator) Validate(ctx context.Context, doc []byte) ([]domain.Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := v.schema.Validate(bytes.NewReader(doc))
	if err == nil {
		return nil, nil
	}

	violations, ok := xsderrors.AsValidations(err)
	if !ok {
		return nil, fmt.Errorf("validate: %w", err)
	}

	diags := make([]domain.Diagnostic, 0, len(violations))
	for _, violation := range violations {
		diags = append(diags, domain.Diagnostic{
			Severity: domain.SeverityWarning,
			Stage:    domain.StageSchema,
			Message:  describe(violation),
		})
	}
	return diags, nil
}

func describe(v xsderrors.Validation) string {
	msg := v.Message
	if v.Path != "" {
		msg += " at " + v.Path
	}
	if v.Line > 0 {
		msg = fmt.Sprintf("line %d, column %d: %s", v.Line, v.Column, msg)
	}
	return fmt.Sprintf("[%s] %s", v.Code, msg)
}
