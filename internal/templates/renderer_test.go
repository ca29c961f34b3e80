package templates_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-tagfeed/internal/templates"
)

func TestRenderStringUsesSiteAndPage(t *testing.T) {
	renderer := templates.NewRenderer(nil, "")

	out, err := renderer.RenderString("<title>{{ page.title }} | {{ site.title }}</title>", map[string]any{
		"site": map[string]any{"title": "Field Notes"},
		"page": map[string]any{"title": "Posts Tagged &ldquo;go&rdquo;"},
	})
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if out != "<title>Posts Tagged &ldquo;go&rdquo; | Field Notes</title>" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderStringWritesToProvidedWriter(t *testing.T) {
	renderer := templates.NewRenderer(nil, "")
	var buf bytes.Buffer

	out, err := renderer.RenderString("hello {{ name }}", map[string]any{"name": "feed"}, &buf)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if out != "" || buf.String() != "hello feed" {
		t.Fatalf("expected writer output, got %q / %q", out, buf.String())
	}
}

func TestRenderStringRejectsUnsupportedData(t *testing.T) {
	renderer := templates.NewRenderer(nil, "")
	if _, err := renderer.RenderString("x", struct{}{}); !errors.Is(err, templates.ErrUnsupportedData) {
		t.Fatalf("expected ErrUnsupportedData, got %v", err)
	}
}

func TestRenderTemplateLoadsIncludes(t *testing.T) {
	fsys := fstest.MapFS{
		"_includes/head.html": {Data: []byte("<head>{{ site.title }}</head>")},
	}
	renderer := templates.NewRenderer(fsys, "")
	data := map[string]any{"site": map[string]any{"title": "Blog"}}

	out, err := renderer.Render("head.html", data)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "<head>Blog</head>" {
		t.Fatalf("unexpected output %q", out)
	}

	inline, err := renderer.RenderString(`{% include "head.html" %}<body></body>`, data)
	if err != nil {
		t.Fatalf("RenderString with include: %v", err)
	}
	if inline != "<head>Blog</head><body></body>" {
		t.Fatalf("unexpected include output %q", inline)
	}
}

func TestRenderTemplateMissing(t *testing.T) {
	renderer := templates.NewRenderer(fstest.MapFS{}, "")
	if _, err := renderer.RenderTemplate("missing.html", nil); err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestGlobalContextMergesVariables(t *testing.T) {
	renderer := templates.NewRenderer(nil, "")
	if err := renderer.GlobalContext(map[string]any{"generator": "sitegen"}); err != nil {
		t.Fatalf("GlobalContext: %v", err)
	}

	out, err := renderer.RenderString("{{ generator }}/{{ page.title }}", map[string]any{
		"page": map[string]any{"title": "About"},
	})
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if out != "sitegen/About" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRegisterFilter(t *testing.T) {
	renderer := templates.NewRenderer(nil, "")
	if err := renderer.RegisterFilter("shout", func(input any, _ any) (any, error) {
		return strings.ToUpper(input.(string)) + "!", nil
	}); err != nil {
		t.Fatalf("RegisterFilter: %v", err)
	}
	if err := renderer.RegisterFilter("", nil); !errors.Is(err, templates.ErrFilterNameRequired) {
		t.Fatalf("expected ErrFilterNameRequired, got %v", err)
	}

	out, err := renderer.RenderString(`{{ "tags"|shout }}`, nil)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if out != "TAGS!" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestOutputIsNotAutoescaped(t *testing.T) {
	renderer := templates.NewRenderer(nil, "")
	out, err := renderer.RenderString("{{ content }}|{{ content|xml_escape }}", map[string]any{
		"content": "<p>a & b</p>",
	})
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if out != "<p>a & b</p>|&lt;p&gt;a &amp; b&lt;/p&gt;" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestTaggedFilterInLoop(t *testing.T) {
	renderer := templates.NewRenderer(nil, "")
	posts := []map[string]any{
		{"title": "One", "tags": []string{"go", "data science"}},
		{"title": "Two", "tags": []string{"go"}},
		{"title": "Three", "tags": []string{"rust"}},
	}

	out, err := renderer.RenderString(`{% for post in site.posts|tagged:page.tag %}[{{ post.title }}]{% endfor %}`, map[string]any{
		"site": map[string]any{"posts": posts},
		"page": map[string]any{"tag": "data science"},
	})
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if out != "[One]" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestTagged(t *testing.T) {
	type post struct {
		Title string
		Tags  []string
	}
	cases := []struct {
		name  string
		input any
		tag   any
		want  int
	}{
		{"maps", []map[string]any{{"tags": []any{"go"}}, {"tags": []any{"js"}}}, "go", 1},
		{"structs", []post{{Tags: []string{"go"}}, {Tags: []string{"go"}}}, "go", 2},
		{"pointers", []*post{{Tags: []string{"go"}}}, "js", 0},
		{"empty tag", []post{{Tags: []string{"go"}}}, nil, 0},
		{"nil input", nil, "go", 0},
		{"trailing space kept", []post{{Tags: []string{"go "}}, {Tags: []string{"go"}}}, "go ", 1},
		{"padded tag misses bare", []post{{Tags: []string{"go"}}}, " go", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := templates.Tagged(tc.input, tc.tag)
			if err != nil {
				t.Fatalf("Tagged: %v", err)
			}
			if len(got.([]any)) != tc.want {
				t.Fatalf("expected %d entries, got %d", tc.want, len(got.([]any)))
			}
		})
	}

	if _, err := templates.Tagged("not a list", "go"); err == nil {
		t.Fatal("expected error for non-list input")
	}
}

func TestDateToXMLSchema(t *testing.T) {
	when := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	cases := []struct {
		input any
		want  string
	}{
		{when, "2024-03-15T08:00:00Z"},
		{&when, "2024-03-15T08:00:00Z"},
		{"2024-03-15", "2024-03-15T00:00:00Z"},
		{"2024-03-15 08:00:00 +0000", "2024-03-15T08:00:00Z"},
		{nil, ""},
	}
	for _, tc := range cases {
		got, err := templates.DateToXMLSchema(tc.input, nil)
		if err != nil {
			t.Fatalf("DateToXMLSchema(%v): %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("DateToXMLSchema(%v) = %q, want %q", tc.input, got, tc.want)
		}
	}
	if _, err := templates.DateToXMLSchema("yesterday", nil); err == nil {
		t.Fatal("expected error for unparsable date")
	}
}

func TestAbsoluteURL(t *testing.T) {
	cases := []struct {
		input, base, want string
	}{
		{"/tags/go/atom.xml", "https://example.com/", "https://example.com/tags/go/atom.xml"},
		{"about.html", "https://example.com", "https://example.com/about.html"},
		{"https://other.org/x", "https://example.com", "https://other.org/x"},
		{"", "https://example.com", "https://example.com/"},
		{"/x", "", "/x"},
	}
	for _, tc := range cases {
		got, err := templates.AbsoluteURL(tc.input, tc.base)
		if err != nil {
			t.Fatalf("AbsoluteURL: %v", err)
		}
		if got != tc.want {
			t.Fatalf("AbsoluteURL(%q, %q) = %q, want %q", tc.input, tc.base, got, tc.want)
		}
	}
}
