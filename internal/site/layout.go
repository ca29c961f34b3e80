package site

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-tagfeed/internal/markdown"
)

// LayoutsDir is the source directory holding layout templates.
const LayoutsDir = "_layouts"

// Layout is a template wrapping page output. Data holds the layout's own
// front matter, which may name a parent layout under "layout".
type Layout struct {
	Name    string
	Path    string
	Data    map[string]any
	Content string
}

// LoadLayouts reads every file directly under dir, keyed by file name
// without extension. When two files share a name the first in lexical order
// wins. A missing directory yields an empty set.
func LoadLayouts(fsys fs.FS, dir string) (map[string]*Layout, error) {
	layouts := map[string]*Layout{}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return layouts, nil
		}
		return nil, fmt.Errorf("site: read layouts: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		if _, exists := layouts[name]; exists {
			continue
		}
		layout, err := ReadLayout(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		layouts[name] = layout
	}
	return layouts, nil
}

// ReadLayout parses a single layout file.
func ReadLayout(fsys fs.FS, name string) (*Layout, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("site: read layout %s: %w", name, err)
	}
	fm, body, err := markdown.ParseFrontMatter(raw)
	if err != nil {
		return nil, fmt.Errorf("site: layout %s: %w", name, err)
	}
	base := path.Base(name)
	return &Layout{
		Name:    strings.TrimSuffix(base, path.Ext(base)),
		Path:    name,
		Data:    maps.Clone(fm.Raw),
		Content: string(body),
	}, nil
}

// layoutName normalises a "layout" front matter value. Empty, nil and none
// all mean no layout.
func layoutName(value any) string {
	if value == nil {
		return ""
	}
	name := strings.TrimSpace(fmt.Sprint(value))
	switch strings.ToLower(name) {
	case "", "nil", "none", "null":
		return ""
	}
	return name
}
