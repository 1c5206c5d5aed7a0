package compiler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// CompilationContext carries the state of a single compilation. It is created
// by Compiler for every call and never shared between goroutines.
type CompilationContext struct {
	names   *Namespace
	parents ParentMap
	diags   []domain.Diagnostic

	config  ports.ConfigLookup
	schema  ports.SchemaValidator
	now     time.Time
	baseDir string
	logger  *slog.Logger
	loader  *fragmentLoader
}

func newCompilationContext(c *Compiler, baseDir string) *CompilationContext {
	return &CompilationContext{
		names:   NewNamespace(),
		parents: make(ParentMap),
		config:  c.config,
		schema:  c.schema,
		now:     c.clock(),
		baseDir: baseDir,
		logger:  c.logger,
		loader:  c.loader,
	}
}

// Warn records a diagnostic and logs it.
func (c *CompilationContext) Warn(stage domain.Stage, node string, format string, args ...any) {
	d := domain.Diagnostic{
		Severity: domain.SeverityWarning,
		Stage:    stage,
		Node:     node,
		Message:  fmt.Sprintf(format, args...),
	}
	c.diags = append(c.diags, d)
	c.logger.Warn(d.Message, "stage", string(stage), "node", node)
}

// Diagnostics returns the warnings collected so far.
func (c *CompilationContext) Diagnostics() []domain.Diagnostic {
	return c.diags
}

// Names exposes the identifier namespace.
func (c *CompilationContext) Names() *Namespace {
	return c.names
}

// lookup resolves a configuration value; absent values are empty.
func (c *CompilationContext) lookup(name string) string {
	if name == placeholderBuildTime {
		return c.now.Format(buildTimeLayout)
	}
	if c.config == nil {
		return ""
	}
	v, _ := c.config.Get(name)
	return v
}

// validate runs the schema over the serialized doc. Failures to serialize or
// to validate are reported as schema warnings.
func (c *CompilationContext) validate(ctx context.Context, source string, doc io.WriterTo) {
	if c.schema == nil {
		return
	}
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		c.Warn(domain.StageSchema, "", "%s: cannot serialize for schema validation: %v", source, err)
		return
	}
	diags, err := c.schema.Validate(ctx, buf.Bytes())
	if err != nil {
		c.Warn(domain.StageSchema, "", "%s: schema validation failed: %v", source, err)
		return
	}
	for _, d := range diags {
		d.Severity = domain.SeverityWarning
		d.Stage = domain.StageSchema
		d.Message = source + ": " + d.Message
		c.diags = append(c.diags, d)
		c.logger.Warn(d.Message, "stage", string(domain.StageSchema))
	}
}
