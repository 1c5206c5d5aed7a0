package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/domain"
)

func parseElement(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(xml))
	require.NotNil(t, doc.Root())
	return doc.Root()
}

func newTestContext(t *testing.T, opts ...Option) *CompilationContext {
	t.Helper()
	return newCompilationContext(New(opts...), t.TempDir())
}

func compileString(t *testing.T, xml string, opts ...Option) *domain.Result {
	t.Helper()
	res, err := New(opts...).CompileBytes(context.Background(), []byte(xml), t.TempDir())
	require.NoError(t, err)
	return res
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func mustFind(t *testing.T, res *domain.Result, name string) domain.Record {
	t.Helper()
	rec, ok := res.Find(name)
	require.True(t, ok, "record %s not found in %v", name, res.Names())
	return rec
}

// siblingsOf returns the names of the records whose parent is parent, in order.
func siblingsOf(res *domain.Result, parent string) []string {
	var names []string
	for _, r := range res.Records {
		if r.Parent == parent {
			names = append(names, r.DialogNode)
		}
	}
	return names
}
