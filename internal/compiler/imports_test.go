package compiler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

func TestResolveImports_NoImportsIsIdentity(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(`<nodes><node name="a"><condition>#a</condition><nodes><node name="b"/></nodes></node><node name="else"/></nodes>`))
	before, err := doc.WriteToString()
	require.NoError(t, err)

	c := newTestContext(t)
	n, err := c.ResolveImports(context.Background(), doc.Root())
	require.NoError(t, err)

	after, err := doc.WriteToString()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, before, after)
}

func TestResolveImports(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.xml": `<nodes>
			<node name="welcome"><condition>welcome</condition></node>
			<node name="fallback"><condition>anything_else</condition></node>
			<import>parts/help.xml</import>
		</nodes>`,
		"parts/help.xml": `<nodes>
			<node name="help"><condition>#help</condition><output>Version <replace>app_version</replace> built <replace>internal_build_date_time</replace><replace>missing</replace></output></node>
			<node name="greet"><condition>#greet</condition><output><importText>texts/greeting.txt</importText></output></node>
		</nodes>`,
		"texts/greeting.txt": "Hello there",
	})
	clock := func() time.Time { return time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC) }

	res, err := New(
		WithConfig(ports.MapConfig{"app_version": "1.2"}),
		WithClock(clock),
	).CompileFile(context.Background(), dir+"/main.xml")
	require.NoError(t, err)

	assert.Equal(t, []string{"welcome", "help", "greet", "fallback"}, res.Names(), "fallback stays last")
	assert.JSONEq(t, `{"text":"Version 1.2 built 24-03-05-14-07"}`, toJSON(t, mustFind(t, res, "help").Output))
	assert.JSONEq(t, `{"text":"Hello there"}`, toJSON(t, mustFind(t, res, "greet").Output))
}

func TestResolveImports_Nested(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.xml": `<nodes>
			<node name="menu"><condition>#menu</condition><nodes><import>sub.xml</import></nodes></node>
		</nodes>`,
		"sub.xml":  `<nodes><node name="item"><condition>#item</condition></node><import>deep.xml</import></nodes>`,
		"deep.xml": `<nodes><node name="deep"><condition>#deep</condition></node></nodes>`,
	})

	res, err := New().CompileFile(context.Background(), dir+"/main.xml")
	require.NoError(t, err)

	assert.Equal(t, []string{"item", "deep"}, siblingsOf(res, "menu"))
}

func TestResolveImports_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{
			"main.xml": `<nodes><import>nope.xml</import></nodes>`,
		})
		_, err := New().CompileFile(context.Background(), dir+"/main.xml")
		assert.ErrorIs(t, err, domain.ErrImport)
	})

	t.Run("malformed fragment", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{
			"main.xml": `<nodes><import>bad.xml</import></nodes>`,
			"bad.xml":  `<nodes><node name=></nodes>`,
		})
		_, err := New().CompileFile(context.Background(), dir+"/main.xml")
		assert.ErrorIs(t, err, domain.ErrImport)
	})

	t.Run("cycle", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{
			"main.xml": `<nodes><import>a.xml</import></nodes>`,
			"a.xml":    `<nodes><node name="a"/><import>b.xml</import></nodes>`,
			"b.xml":    `<nodes><node name="b"/><import>a.xml</import></nodes>`,
		})
		_, err := New().CompileFile(context.Background(), dir+"/main.xml")
		assert.ErrorIs(t, err, domain.ErrImportCycle)
		assert.ErrorIs(t, err, domain.ErrImport)
	})

	t.Run("import outside the base directory", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{
			"dialogs/main.xml": `<nodes><import>../secret.xml</import></nodes>`,
			"secret.xml":       `<nodes><node name="leak"/></nodes>`,
		})
		_, err := New().CompileFile(context.Background(), dir+"/dialogs/main.xml")
		assert.ErrorIs(t, err, domain.ErrImportOutsideBase)
		assert.ErrorIs(t, err, domain.ErrImport)
	})

	t.Run("imported text outside the base directory", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{
			"dialogs/main.xml": `<nodes><import>a.xml</import></nodes>`,
			"dialogs/a.xml":    `<nodes><node name="a"><output><importText>sub/../../secret.txt</importText></output></node></nodes>`,
			"secret.txt":       `password`,
		})
		_, err := New().CompileFile(context.Background(), dir+"/dialogs/main.xml")
		assert.ErrorIs(t, err, domain.ErrImport)
		assert.Contains(t, err.Error(), "outside the base directory")
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{
			"main.xml": `<nodes><import>a.xml</import></nodes>`,
			"a.xml":    `<nodes/>`,
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New().CompileFile(ctx, dir+"/main.xml")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFragmentCache(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.xml": `<nodes><import>a.xml</import></nodes>`,
		"a.xml":    `<nodes><node name="a"/></nodes>`,
	})
	c := New(WithCacheSize(8))

	for i := 0; i < 3; i++ {
		_, err := c.CompileFile(context.Background(), dir+"/main.xml")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, c.CachedFragments())
}

type stubValidator struct {
	calls int
}

func (s *stubValidator) Validate(ctx context.Context, doc []byte) ([]domain.Diagnostic, error) {
	s.calls++
	return []domain.Diagnostic{{Message: "element 'bogus' not expected"}}, nil
}

func TestSchemaViolationsAreWarnings(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.xml": `<nodes><import>a.xml</import></nodes>`,
		"a.xml":    `<nodes><node name="a"/><bogus/></nodes>`,
	})
	v := &stubValidator{}

	res, err := New(WithSchema(v)).CompileFile(context.Background(), dir+"/main.xml")
	require.NoError(t, err)

	assert.Equal(t, 2, v.calls, "fragment and merged dialog")
	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, domain.StageSchema, res.Diagnostics[0].Stage)
	assert.Equal(t, domain.SeverityWarning, res.Diagnostics[0].Severity)
	assert.Contains(t, res.Diagnostics[0].Message, "a.xml")
}

func TestResolveImports_DotSegmentsInsideBase(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.xml": `<nodes><import>sub/../a.xml</import></nodes>`,
		"a.xml":    `<nodes><node name="a"><condition>#a</condition></node></nodes>`,
	})
	res, err := New().CompileFile(context.Background(), dir+"/main.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, res.Names())
}

type failingWriter struct{}

func (failingWriter) WriteTo(w io.Writer) (int64, error) {
	return 0, errors.New("broken document")
}

func TestSchemaSerializationFailureIsWarning(t *testing.T) {
	v := &stubValidator{}
	cc := newTestContext(t, WithSchema(v))

	cc.validate(context.Background(), "dialog", failingWriter{})

	assert.Zero(t, v.calls)
	require.Len(t, cc.Diagnostics(), 1)
	d := cc.Diagnostics()[0]
	assert.Equal(t, domain.StageSchema, d.Stage)
	assert.Equal(t, domain.SeverityWarning, d.Severity)
	assert.Contains(t, d.Message, "broken document")
}
