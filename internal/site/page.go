package site

import (
	"context"
	"fmt"
	"maps"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-tagfeed/pkg/interfaces"
)

// Page is an output document of the build: posts, plain pages and generated
// pages such as tag feeds.
type Page interface {
	Dir() string
	Name() string
	// Path is the slash separated output path relative to the destination.
	Path() string
	URL() string
	Data() map[string]any
	Render(renderer interfaces.TemplateRenderer, layouts map[string]*Layout, payload map[string]any) error
	Write(ctx context.Context, writer Writer) error
	Rendered() bool
	Written() bool
	Output() string
	Category() Category
	Destination(root string) string
}

// BasePage implements Page for a template body plus front matter data.
type BasePage struct {
	dir         string
	name        string
	data        map[string]any
	content     string
	templated   bool
	category    Category
	contentType string

	output        string
	rendered      bool
	written       bool
	missingLayout string
}

var _ Page = (*BasePage)(nil)

// NewBasePage returns a page whose content is rendered as a template before
// layouts are applied. dir and name are used verbatim.
func NewBasePage(dir, name string, data map[string]any, content string) *BasePage {
	cloned := maps.Clone(data)
	if cloned == nil {
		cloned = map[string]any{}
	}
	return &BasePage{
		dir:       dir,
		name:      name,
		data:      cloned,
		content:   content,
		templated: true,
		category:  CategoryPage,
	}
}

// SetCategory records how the page output is reported to storage.
func (p *BasePage) SetCategory(category Category, contentType string) *BasePage {
	p.category = category
	p.contentType = contentType
	return p
}

// SetTemplated controls whether the page content is itself a template.
func (p *BasePage) SetTemplated(templated bool) *BasePage {
	p.templated = templated
	return p
}

func (p *BasePage) Dir() string  { return p.dir }
func (p *BasePage) Name() string { return p.name }

func (p *BasePage) Path() string {
	if p.dir == "" {
		return p.name
	}
	return strings.TrimPrefix(p.dir+"/"+p.name, "/")
}

func (p *BasePage) URL() string {
	return "/" + p.Path()
}

// Data exposes the page variables. Mutations are visible to later renders.
func (p *BasePage) Data() map[string]any { return p.data }

// Content returns the unrendered page body.
func (p *BasePage) Content() string { return p.content }

func (p *BasePage) Rendered() bool { return p.rendered }
func (p *BasePage) Written() bool  { return p.written }
func (p *BasePage) Output() string { return p.output }

func (p *BasePage) Category() Category { return p.category }

// MissingLayout reports a layout the last render asked for but could not find.
func (p *BasePage) MissingLayout() string { return p.missingLayout }

func (p *BasePage) Destination(root string) string {
	return filepath.Join(root, filepath.FromSlash(p.Path()))
}

// Render produces the page output. Templated content is rendered with the
// site payload and a `page` variable, then wrapped in the layout chain that
// starts at data["layout"]. Each layout is applied at most once.
func (p *BasePage) Render(renderer interfaces.TemplateRenderer, layouts map[string]*Layout, payload map[string]any) error {
	if renderer == nil {
		return ErrRendererRequired
	}

	pageVars := maps.Clone(p.data)
	pageVars["url"] = p.URL()
	pageVars["path"] = p.Path()

	content := p.content
	if p.templated {
		out, err := renderer.RenderString(content, withVars(payload, map[string]any{"page": pageVars}))
		if err != nil {
			return fmt.Errorf("site: render %s: %w", p.Path(), err)
		}
		content = out
	}
	pageVars["content"] = content

	p.missingLayout = ""
	used := map[string]struct{}{}
	for name := layoutName(p.data["layout"]); name != ""; {
		if _, seen := used[name]; seen {
			break
		}
		used[name] = struct{}{}

		layout, ok := layouts[name]
		if !ok || layout == nil {
			p.missingLayout = name
			break
		}
		out, err := renderer.RenderString(layout.Content, withVars(payload, map[string]any{
			"page":    pageVars,
			"layout":  layout.Data,
			"content": content,
		}))
		if err != nil {
			return fmt.Errorf("site: render %s with layout %s: %w", p.Path(), name, err)
		}
		content = out
		name = layoutName(layout.Data["layout"])
	}

	p.output = content
	p.rendered = true
	return nil
}

// Write persists the rendered output at Path relative to the writer root.
// Writing again overwrites the previous file with the same bytes.
func (p *BasePage) Write(ctx context.Context, writer Writer) error {
	if !p.rendered {
		return fmt.Errorf("%w: %s", ErrPageNotRendered, p.Path())
	}
	if writer == nil {
		writer = noopWriter{}
	}
	target := p.Path()
	if err := writer.EnsureDir(ctx, path.Dir(target)); err != nil {
		return fmt.Errorf("site: ensure dir for %s: %w", target, err)
	}
	if err := writer.WriteFile(ctx, WriteRequest{
		Path:        target,
		Content:     []byte(p.output),
		Category:    p.category,
		ContentType: p.contentType,
		Metadata:    map[string]string{"url": p.URL()},
	}); err != nil {
		return fmt.Errorf("site: write %s: %w", target, err)
	}
	p.written = true
	return nil
}

func withVars(payload map[string]any, vars map[string]any) map[string]any {
	merged := make(map[string]any, len(payload)+len(vars))
	maps.Copy(merged, payload)
	maps.Copy(merged, vars)
	return merged
}
