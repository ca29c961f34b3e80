package site_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-tagfeed/internal/markdown"
	"github.com/goliatone/go-tagfeed/internal/site"
	"github.com/goliatone/go-tagfeed/internal/templates"
	"github.com/goliatone/go-tagfeed/pkg/interfaces"
)

func TestBasePageRenderStopsOnLayoutLoop(t *testing.T) {
	layouts := map[string]*site.Layout{
		"a": {Name: "a", Data: map[string]any{"layout": "b"}, Content: "a({{ content }})"},
		"b": {Name: "b", Data: map[string]any{"layout": "a"}, Content: "b({{ content }})"},
	}
	page := site.NewBasePage("", "index.html", map[string]any{"layout": "a"}, "x")

	if err := page.Render(templates.NewRenderer(nil, ""), layouts, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if page.Output() != "b(a(x))" {
		t.Fatalf("unexpected output %q", page.Output())
	}
}

func TestBasePageRenderNoneLayout(t *testing.T) {
	layouts := map[string]*site.Layout{"none": {Content: "wrapped"}}
	for _, value := range []any{nil, "", "none", "nil"} {
		page := site.NewBasePage("", "robots.txt", map[string]any{"layout": value}, "plain")
		if err := page.Render(templates.NewRenderer(nil, ""), layouts, nil); err != nil {
			t.Fatalf("Render: %v", err)
		}
		if page.Output() != "plain" {
			t.Fatalf("layout %v: unexpected output %q", value, page.Output())
		}
	}
}

func TestBasePageRenderRecordsMissingLayout(t *testing.T) {
	page := site.NewBasePage("", "index.html", map[string]any{"layout": "ghost"}, "body")
	if err := page.Render(templates.NewRenderer(nil, ""), nil, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if page.Output() != "body" || page.MissingLayout() != "ghost" {
		t.Fatalf("unexpected output %q missing %q", page.Output(), page.MissingLayout())
	}
}

func TestBasePageRenderRequiresRenderer(t *testing.T) {
	page := site.NewBasePage("", "index.html", nil, "")
	if err := page.Render(nil, nil, nil); !errors.Is(err, site.ErrRendererRequired) {
		t.Fatalf("expected ErrRendererRequired, got %v", err)
	}
}

func TestBasePageWriteBeforeRender(t *testing.T) {
	page := site.NewBasePage("tags/go", "atom.xml", nil, "")
	err := page.Write(context.Background(), site.NewWriter(newRecordingStorage()))
	if !errors.Is(err, site.ErrPageNotRendered) {
		t.Fatalf("expected ErrPageNotRendered, got %v", err)
	}
	if page.Written() {
		t.Fatal("page must not be marked written")
	}
}

func TestBasePageWriteUsesRawPath(t *testing.T) {
	store := newRecordingStorage()
	page := site.NewBasePage("tags/data science", "atom.xml", nil, "<feed/>").SetCategory(site.CategoryFeed, "application/atom+xml")
	if err := page.Render(templates.NewRenderer(nil, ""), nil, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := page.Write(context.Background(), site.NewWriter(store)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if store.files["tags/data science/atom.xml"] != "<feed/>" {
		t.Fatalf("unexpected files %v", store.files)
	}
	args := store.args["tags/data science/atom.xml"]
	if args[3] != "feed" || args[4] != "application/atom+xml" {
		t.Fatalf("unexpected write metadata %v", args[3:])
	}
	if page.URL() != "/tags/data science/atom.xml" {
		t.Fatalf("unexpected url %q", page.URL())
	}
	if got := page.Destination("/srv/site"); got != filepath.Join("/srv/site", "tags", "data science", "atom.xml") {
		t.Fatalf("unexpected destination %q", got)
	}
}

func TestNewBasePageCopiesData(t *testing.T) {
	data := map[string]any{"title": "original"}
	page := site.NewBasePage("", "index.html", data, "")
	page.Data()["title"] = "changed"
	if data["title"] != "original" {
		t.Fatal("expected page data to be copied")
	}
}

func TestLoadLayouts(t *testing.T) {
	fsys := fstest.MapFS{
		"_layouts/atom.xml":      file("---\ntitle: ignored\n---\n<feed>{{ page.tag }}</feed>"),
		"_layouts/atom.html":     file("duplicate"),
		"_layouts/default.html":  file("{{ content }}"),
		"_layouts/nested/x.html": file("skipped"),
	}

	layouts, err := site.LoadLayouts(fsys, site.LayoutsDir)
	if err != nil {
		t.Fatalf("LoadLayouts: %v", err)
	}
	if len(layouts) != 2 {
		t.Fatalf("expected 2 layouts, got %d", len(layouts))
	}
	atom := layouts["atom"]
	if atom == nil || atom.Path != "_layouts/atom.html" {
		t.Fatalf("expected first lexical file to win, got %+v", atom)
	}
	if layouts["default"].Content != "{{ content }}" {
		t.Fatalf("unexpected default content %q", layouts["default"].Content)
	}

	empty, err := site.LoadLayouts(fstest.MapFS{}, site.LayoutsDir)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty set for missing dir, got %v %v", empty, err)
	}
}

func TestReadLayoutKeepsFrontMatter(t *testing.T) {
	fsys := fstest.MapFS{"_layouts/atom.xml": file("---\nlayout: none\ncustom: yes\n---\n<feed/>")}
	layout, err := site.ReadLayout(fsys, "_layouts/atom.xml")
	if err != nil {
		t.Fatalf("ReadLayout: %v", err)
	}
	if layout.Name != "atom" || layout.Content != "<feed/>" || layout.Data["layout"] != "none" {
		t.Fatalf("unexpected layout %+v", layout)
	}
}

func TestReadPostsDerivesDatesAndSlugs(t *testing.T) {
	fsys := fstest.MapFS{
		"_posts/2024-01-02-from-filename.md": file("---\ntitle: From Filename\n---\nA"),
		"_posts/undated.md":                  file("---\ntitle: Go Tips For You\ndate: 2024-02-01T10:00:00Z\n---\nB"),
		"_posts/2024-01-05-override.md":      file("---\ntitle: Override\nslug: custom\ndate: 2023-12-31T00:00:00Z\ntags: [go, go, rust]\n---\nC"),
		"_posts/notes.txt":                   file("not a post"),
	}

	posts, err := site.ReadPosts(context.Background(), fsys, site.PostsDir, markdown.NewGoldmarkParser(interfaces.ParseOptions{}), false)
	if err != nil {
		t.Fatalf("ReadPosts: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}

	undated := posts[0]
	if undated.Slug != "go-tips-for-you" || !undated.Date.Equal(time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected undated post slug=%q date=%v", undated.Slug, undated.Date)
	}
	if undated.URL() != "/2024/02/01/go-tips-for-you.html" {
		t.Fatalf("unexpected url %q", undated.URL())
	}

	fromFilename := posts[1]
	if fromFilename.Slug != "from-filename" || fromFilename.Date.Format("2006-01-02") != "2024-01-02" {
		t.Fatalf("unexpected filename post %+v", fromFilename)
	}

	override := posts[2]
	if override.Slug != "custom" || override.Date.Year() != 2023 {
		t.Fatalf("expected front matter to override filename, got slug=%q date=%v", override.Slug, override.Date)
	}
	if len(override.Tags) != 2 {
		t.Fatalf("expected duplicate tags dropped, got %v", override.Tags)
	}
	if override.TemplateData()["content"] != "<p>C</p>\n" {
		t.Fatalf("unexpected content %q", override.TemplateData()["content"])
	}
}

func TestReadPostsAcceptsLooseFrontMatter(t *testing.T) {
	fsys := fstest.MapFS{
		"_posts/2024-01-01-scalar.md": file("---\ntitle: Scalar\ntags: ruby\n---\nA"),
		"_posts/2024-01-02-spaced.md": file("---\ntitle: Spaced\ntags: ruby go\n---\nB"),
		"_posts/2023-06-01-offset.md": file("---\ntitle: Offset\ndate: 2024-01-01 10:00:00 +0100\ntags: [go]\n---\nC"),
	}

	posts, err := site.ReadPosts(context.Background(), fsys, site.PostsDir, markdown.NewGoldmarkParser(interfaces.ParseOptions{}), false)
	if err != nil {
		t.Fatalf("ReadPosts: %v", err)
	}
	bySlug := map[string]*site.Post{}
	for _, post := range posts {
		bySlug[post.Slug] = post
	}

	cases := []struct {
		slug string
		tags []string
		date time.Time
	}{
		{"scalar", []string{"ruby"}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"spaced", []string{"ruby", "go"}, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"offset", []string{"go"}, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		post, ok := bySlug[tc.slug]
		if !ok {
			t.Fatalf("missing post %q in %v", tc.slug, bySlug)
		}
		if !slices.Equal(post.Tags, tc.tags) {
			t.Fatalf("%s: tags %v, want %v", tc.slug, post.Tags, tc.tags)
		}
		if !post.Date.Equal(tc.date) {
			t.Fatalf("%s: date %v, want %v", tc.slug, post.Date, tc.date)
		}
	}
}

func TestReadPostsRejectsUnknownDate(t *testing.T) {
	fsys := fstest.MapFS{
		"_posts/bad.md": file("---\ntitle: Bad\ndate: someday\n---\nA"),
	}
	_, err := site.ReadPosts(context.Background(), fsys, site.PostsDir, markdown.NewGoldmarkParser(interfaces.ParseOptions{}), false)
	if err == nil {
		t.Fatal("expected an unrecognised date to fail the read")
	}
}
