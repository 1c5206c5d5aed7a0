package arbor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/beevik/etree"

	"github.com/aretw0/arbor/internal/compiler"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// ErrNoSink is returned by Publish when no artifact sink was configured.
var ErrNoSink = errors.New("no artifact sink configured")

// Compiler is the high-level entry point of the library.
// It wraps the internal compiler and optionally publishes the compiled JSON.
type Compiler struct {
	compiler *compiler.Compiler
	sink     ports.ArtifactSink
	logger   *slog.Logger
	opts     []compiler.Option
}

// Option defines a functional option for configuring the Compiler.
type Option func(*Compiler)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
		c.opts = append(c.opts, compiler.WithLogger(logger))
	}
}

// WithSchema validates imported fragments and the merged dialog.
// Violations are reported as diagnostics, never as errors.
func WithSchema(v ports.SchemaValidator) Option {
	return func(c *Compiler) {
		c.opts = append(c.opts, compiler.WithSchema(v))
	}
}

// WithConfig sets the lookup used by <replace> placeholders.
func WithConfig(cfg ports.ConfigLookup) Option {
	return func(c *Compiler) {
		c.opts = append(c.opts, compiler.WithConfig(cfg))
	}
}

// WithClock overrides the time used by the build time placeholder.
func WithClock(clock func() time.Time) Option {
	return func(c *Compiler) {
		c.opts = append(c.opts, compiler.WithClock(clock))
	}
}

// WithCacheSize sets how many imported files are kept in memory.
func WithCacheSize(n int) Option {
	return func(c *Compiler) {
		c.opts = append(c.opts, compiler.WithCacheSize(n))
	}
}

// WithSink sets where Publish writes compiled dialogs.
func WithSink(sink ports.ArtifactSink) Option {
	return func(c *Compiler) {
		c.sink = sink
	}
}

// New creates a Compiler. It is safe for concurrent use.
func New(opts ...Option) *Compiler {
	c := &Compiler{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.compiler = compiler.New(c.opts...)
	return c
}

// CompileFile compiles the dialog at path; imports resolve next to it.
func (c *Compiler) CompileFile(ctx context.Context, path string) (*domain.Result, error) {
	return c.compiler.CompileFile(ctx, path)
}

// CompileBytes compiles an XML dialog, resolving imports under baseDir.
func (c *Compiler) CompileBytes(ctx context.Context, data []byte, baseDir string) (*domain.Result, error) {
	return c.compiler.CompileBytes(ctx, data, baseDir)
}

// Compile compiles a parsed dialog without modifying it.
func (c *Compiler) Compile(ctx context.Context, doc *etree.Document, baseDir string) (*domain.Result, error) {
	return c.compiler.Compile(ctx, doc, baseDir)
}

// Publish encodes the records of res and stores them under name.
func (c *Compiler) Publish(ctx context.Context, name string, res *domain.Result) error {
	if c.sink == nil {
		return ErrNoSink
	}
	var buf bytes.Buffer
	if err := Encode(&buf, res); err != nil {
		return err
	}
	if err := c.sink.Put(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to publish %s: %w", name, err)
	}
	c.logger.Info("dialog published", "name", name, "records", len(res.Records))
	return nil
}

// Encode writes the records of res as an indented JSON array.
func Encode(w io.Writer, res *domain.Result) error {
	return domain.EncodeRecords(w, res.Records)
}
