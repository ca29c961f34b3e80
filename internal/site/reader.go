package site

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/goliatone/go-tagfeed/internal/markdown"
)

// readTree walks the source root collecting plain pages and static files.
// Directories and files starting with "_" or "." are skipped along with the
// destination and the excluded patterns.
func (s *Site) readTree(ctx context.Context) ([]Page, []string, error) {
	var (
		pages   []Page
		statics []string
	)
	err := fs.WalkDir(s.deps.Source, ".", func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if current == "." {
			return nil
		}
		if s.skipped(current, d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		raw, err := fs.ReadFile(s.deps.Source, current)
		if err != nil {
			return fmt.Errorf("site: read %s: %w", current, err)
		}
		if !markdown.HasFrontMatter(raw) {
			statics = append(statics, current)
			return nil
		}
		page, err := s.newPlainPage(current, raw)
		if err != nil {
			return err
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return pages, statics, nil
}

func (s *Site) skipped(current, base string) bool {
	if strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".") {
		return true
	}
	if dest := cleanRelative(s.cfg.Destination); dest != "" && (current == dest || strings.HasPrefix(current, dest+"/")) {
		return true
	}
	for _, pattern := range s.cfg.Exclude {
		pattern = cleanRelative(pattern)
		if pattern == "" {
			continue
		}
		if current == pattern || strings.HasPrefix(current, pattern+"/") {
			return true
		}
		if ok, _ := path.Match(pattern, current); ok {
			return true
		}
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func (s *Site) newPlainPage(current string, raw []byte) (*BasePage, error) {
	fm, body, err := markdown.ParseFrontMatter(raw)
	if err != nil {
		return nil, fmt.Errorf("site: page %s: %w", current, err)
	}

	name := path.Base(current)
	ext := path.Ext(name)
	contentType := contentTypeFor(ext)
	if ext == ".md" || ext == ".markdown" {
		if s.deps.Parser != nil {
			converted, err := s.deps.Parser.Parse(body)
			if err != nil {
				return nil, fmt.Errorf("site: page %s: %w", current, err)
			}
			body = converted
		}
		name = strings.TrimSuffix(name, ext) + ".html"
		contentType = "text/html"
	}

	dir := path.Dir(current)
	if dir == "." {
		dir = ""
	}
	return NewBasePage(dir, name, fm.Raw, string(body)).SetCategory(CategoryPage, contentType), nil
}

func contentTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		return "text/html"
	case ".xml":
		return "application/xml"
	case ".css":
		return "text/css"
	case ".js":
		return "text/javascript"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain"
	default:
		return ""
	}
}

func cleanRelative(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	cleaned := path.Clean(strings.TrimPrefix(strings.ReplaceAll(value, "\\", "/"), "./"))
	if cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." || path.IsAbs(cleaned) {
		return ""
	}
	return cleaned
}
