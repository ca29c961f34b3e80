package feeds_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-tagfeed/internal/feeds"
	"github.com/goliatone/go-tagfeed/internal/site"
	"github.com/goliatone/go-tagfeed/internal/templates"
)

func TestNewTagFeedPage(t *testing.T) {
	src := fstest.MapFS{
		"_layouts/atom.xml": {Data: []byte("---\nlayout: none\ngenerator: sitegen\ntitle: replaced\n---\n<feed>{{ page.title }}</feed>")},
	}

	page, err := feeds.NewTagFeedPage(src, "tags/data science", "data science")
	if err != nil {
		t.Fatalf("NewTagFeedPage: %v", err)
	}

	if page.Name() != "atom.xml" || page.Dir() != "tags/data science" {
		t.Fatalf("unexpected location %q / %q", page.Dir(), page.Name())
	}
	if page.Path() != "tags/data science/atom.xml" {
		t.Fatalf("unexpected path %q", page.Path())
	}
	data := page.Data()
	if data["tag"] != "data science" {
		t.Fatalf("expected tag in data, got %v", data["tag"])
	}
	if data["title"] != "Posts Tagged &ldquo;data science&rdquo;" {
		t.Fatalf("unexpected title %v", data["title"])
	}
	if data["generator"] != "sitegen" || data["layout"] != "none" {
		t.Fatalf("expected layout front matter to be kept, got %v", data)
	}
	if page.Category() != site.CategoryFeed {
		t.Fatalf("unexpected category %q", page.Category())
	}
	if page.Rendered() || page.Written() {
		t.Fatal("new page must be neither rendered nor written")
	}

	if err := page.Render(templates.NewRenderer(nil, ""), nil, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if page.Output() != "<feed>Posts Tagged &ldquo;data science&rdquo;</feed>" {
		t.Fatalf("unexpected output %q", page.Output())
	}
}

func TestNewTagFeedPageKeepsTagVerbatim(t *testing.T) {
	src := fstest.MapFS{"_layouts/atom.xml": {Data: []byte("<feed/>")}}
	for _, tag := range []string{"C++", "<b>", "ünïcode", "a/b"} {
		page, err := feeds.NewTagFeedPage(src, "tags/"+tag, tag)
		if err != nil {
			t.Fatalf("NewTagFeedPage(%q): %v", tag, err)
		}
		if page.Tag() != tag || page.Data()["title"] != feeds.Title(tag) {
			t.Fatalf("tag %q altered: %q / %v", tag, page.Tag(), page.Data()["title"])
		}
		if page.Path() != "tags/"+tag+"/atom.xml" {
			t.Fatalf("unexpected path %q", page.Path())
		}
	}
}

func TestNewTagFeedPageErrors(t *testing.T) {
	src := fstest.MapFS{"_layouts/atom.xml": {Data: []byte("<feed/>")}}

	if _, err := feeds.NewTagFeedPage(src, "tags/", ""); !errors.Is(err, feeds.ErrTagRequired) {
		t.Fatalf("expected ErrTagRequired, got %v", err)
	}
	if _, err := feeds.NewTagFeedPage(fstest.MapFS{}, "tags/go", "go"); !errors.Is(err, feeds.ErrLayoutMissing) {
		t.Fatalf("expected ErrLayoutMissing, got %v", err)
	}
}

func TestNewTagFeedPageWithLayout(t *testing.T) {
	src := fstest.MapFS{"_layouts/feed.xml": {Data: []byte("custom")}}

	page, err := feeds.NewTagFeedPageWithLayout(src, "topics/go", "go", "feed")
	if err != nil {
		t.Fatalf("NewTagFeedPageWithLayout: %v", err)
	}
	if page.LayoutPath() != "_layouts/feed.xml" || page.Content() != "custom" {
		t.Fatalf("unexpected layout %q content %q", page.LayoutPath(), page.Content())
	}
}

func TestTitle(t *testing.T) {
	if got := feeds.Title("go"); got != "Posts Tagged &ldquo;go&rdquo;" {
		t.Fatalf("unexpected title %q", got)
	}
}
