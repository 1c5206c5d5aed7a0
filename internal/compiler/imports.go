package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aretw0/arbor/pkg/domain"
)

// fragmentLoader reads imported files through a cache keyed by path, size and
// modification time, so a long running server picks up edits.
type fragmentLoader struct {
	cache *lru.Cache[string, []byte]
}

func newFragmentLoader(size int) (*fragmentLoader, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &fragmentLoader{cache: cache}, nil
}

func (l *fragmentLoader) read(path string) ([]byte, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s@%d:%d", path, st.ModTime().UnixNano(), st.Size())
	if data, ok := l.cache.Get(key); ok {
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, data)
	return data, nil
}

// Len returns the number of cached files.
func (l *fragmentLoader) Len() int {
	return l.cache.Len()
}

// resolvePath joins a slash separated import path under the base directory.
// Paths that clean to a location outside of it are rejected.
func (c *CompilationContext) resolvePath(rel string) (string, error) {
	base := c.baseDir
	if base == "" {
		base = "."
	}
	path := filepath.Join(base, filepath.Join(strings.Split(rel, "/")...))
	inside, err := filepath.Rel(base, path)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", domain.ErrImportOutsideBase, rel)
	}
	return path, nil
}

// ResolveImports inlines every <import> found in the <nodes> container and in
// the <nodes> of its nodes. It returns the number of imported fragments.
func (c *CompilationContext) ResolveImports(ctx context.Context, nodes *etree.Element) (int, error) {
	return c.resolveImports(ctx, nodes, nil)
}

func (c *CompilationContext) resolveImports(ctx context.Context, nodes *etree.Element, stack []string) (int, error) {
	var fallback *etree.Element
	if existing := structuralNodes(nodes); len(existing) > 0 && isCatchAll(existing[len(existing)-1]) {
		fallback = existing[len(existing)-1]
	}

	count := 0
	for _, imp := range elementsByTag(nodes, tagImport) {
		rel := strings.TrimSpace(imp.Text())
		fragment, n, err := c.importFragment(ctx, rel, stack)
		if err != nil {
			return count, err
		}
		count += n + 1
		for _, child := range elementsByTag(fragment, tagNode) {
			nodes.AddChild(child)
		}
		nodes.RemoveChild(imp)
	}
	if count > 0 && fallback != nil {
		nodes.AddChild(fallback)
	}

	for _, n := range structuralNodes(nodes) {
		sub := n.SelectElement(tagNodes)
		if sub == nil {
			continue
		}
		k, err := c.resolveImports(ctx, sub, stack)
		count += k
		if err != nil {
			return count, err
		}
	}
	return count, nil
}

// importFragment loads, substitutes and resolves one imported document.
func (c *CompilationContext) importFragment(ctx context.Context, rel string, stack []string) (*etree.Element, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	path, err := c.resolvePath(rel)
	if err != nil {
		return nil, 0, err
	}
	for _, open := range stack {
		if open == path {
			return nil, 0, fmt.Errorf("%w: %s", domain.ErrImportCycle, strings.Join(append(stack, path), " -> "))
		}
	}
	c.logger.Debug("importing", "path", path)

	data, err := c.loader.read(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", domain.ErrImport, rel, err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", domain.ErrImport, rel, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, 0, fmt.Errorf("%w: %s: no root element", domain.ErrImport, rel)
	}

	if err := c.substitute(root); err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", domain.ErrImport, rel, err)
	}
	c.validate(ctx, rel, doc)

	n, err := c.resolveImports(ctx, root, append(stack, path))
	if err != nil {
		return nil, 0, err
	}
	return root, n, nil
}

// substitute splices <importText> file contents and <replace> config values
// into the text of their parents.
func (c *CompilationContext) substitute(root *etree.Element) error {
	for _, el := range root.FindElements(".//" + tagImportText) {
		rel := strings.TrimSpace(el.Text())
		path, err := c.resolvePath(rel)
		if err != nil {
			return err
		}
		data, err := c.loader.read(path)
		if err != nil {
			return err
		}
		replaceWithText(el, string(data))
	}
	for _, el := range root.FindElements(".//" + tagReplace) {
		replaceWithText(el, c.lookup(strings.TrimSpace(el.Text())))
	}
	return nil
}
