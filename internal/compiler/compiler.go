package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/beevik/etree"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// DefaultCacheSize is the number of imported files kept in memory.
const DefaultCacheSize = 256

// ErrEmptyDocument is returned when the dialog has no root element.
var ErrEmptyDocument = errors.New("dialog document has no root element")

// Compiler turns authoring trees into flat dialog records.
// It is safe for concurrent use; each compilation gets its own context.
type Compiler struct {
	logger    *slog.Logger
	schema    ports.SchemaValidator
	config    ports.ConfigLookup
	clock     func() time.Time
	cacheSize int
	loader    *fragmentLoader
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithSchema validates imported fragments and the merged tree.
func WithSchema(v ports.SchemaValidator) Option {
	return func(c *Compiler) {
		c.schema = v
	}
}

// WithConfig sets the lookup used by <replace> placeholders.
func WithConfig(cfg ports.ConfigLookup) Option {
	return func(c *Compiler) {
		c.config = cfg
	}
}

// WithClock overrides the time source of the build time placeholder.
func WithClock(clock func() time.Time) Option {
	return func(c *Compiler) {
		c.clock = clock
	}
}

// WithCacheSize sets how many imported files are cached.
func WithCacheSize(n int) Option {
	return func(c *Compiler) {
		c.cacheSize = n
	}
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		logger:    logging.NewNop(),
		clock:     time.Now,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	loader, err := newFragmentLoader(c.cacheSize)
	if err != nil {
		loader, _ = newFragmentLoader(DefaultCacheSize)
	}
	c.loader = loader
	return c
}

// CachedFragments returns the number of imported files held in the cache.
func (c *Compiler) CachedFragments() int {
	return c.loader.Len()
}

// CompileFile compiles the dialog at path. Imports resolve relative to its
// directory.
func (c *Compiler) CompileFile(ctx context.Context, path string) (*domain.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dialog: %w", err)
	}
	return c.CompileBytes(ctx, data, filepath.Dir(path))
}

// CompileBytes parses and compiles an XML dialog.
func (c *Compiler) CompileBytes(ctx context.Context, data []byte, baseDir string) (*domain.Result, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse dialog: %w", err)
	}
	return c.compile(ctx, doc, baseDir)
}

// Compile compiles a parsed dialog. The document is copied, not modified.
func (c *Compiler) Compile(ctx context.Context, doc *etree.Document, baseDir string) (*domain.Result, error) {
	return c.compile(ctx, doc.Copy(), baseDir)
}

func (c *Compiler) compile(ctx context.Context, doc *etree.Document, baseDir string) (*domain.Result, error) {
	root := doc.Root()
	if root == nil {
		return nil, ErrEmptyDocument
	}
	cc := newCompilationContext(c, baseDir)

	// 1. Imports
	imported, err := cc.ResolveImports(ctx, root)
	if err != nil {
		return nil, err
	}
	stripComments(root)
	c.logger.Debug("imports resolved", "fragments", imported)

	cc.validate(ctx, "dialog", doc)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Declared names
	if err := CollectNames(root, cc.names); err != nil {
		return nil, err
	}
	cc.parents.Index(root, nil)

	// 3. Settings and control nodes
	if err := cc.Generate(root, nil, RootDirectives()); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 4. Records
	records, err := cc.Lower(root.ChildElements(), nil, nil)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("dialog compiled", "records", len(records), "warnings", len(cc.diags))

	return &domain.Result{Records: records, Diagnostics: cc.Diagnostics()}, nil
}
