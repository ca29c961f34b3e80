package site

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-tagfeed/internal/markdown"
	"github.com/goliatone/go-tagfeed/pkg/interfaces"
)

// PostsDir is the source directory holding dated posts.
const PostsDir = "_posts"

var postFilename = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)\.(md|markdown)$`)

// Post is a dated entry read from the posts directory. Its content is the
// Markdown body converted to HTML.
type Post struct {
	*BasePage
	Title      string
	Slug       string
	Summary    string
	Author     string
	Date       time.Time
	Tags       []string
	SourcePath string
}

// ID returns the post identifier, its URL without extension.
func (p *Post) ID() string {
	return strings.TrimSuffix(p.URL(), path.Ext(p.URL()))
}

// TemplateData returns the variables exposed for the post in site.posts and
// site.tags.
func (p *Post) TemplateData() map[string]any {
	data := map[string]any{}
	for key, value := range p.Data() {
		data[key] = value
	}
	data["title"] = p.Title
	data["url"] = p.URL()
	data["date"] = p.Date
	data["id"] = p.ID()
	data["content"] = p.Content()
	data["summary"] = p.Summary
	data["tags"] = append([]string(nil), p.Tags...)
	data["slug"] = p.Slug
	if p.Author != "" {
		data["author"] = p.Author
	}
	return data
}

// ReadPosts loads, converts and sorts the posts under dir, newest first.
// Drafts are skipped unless includeDrafts is set.
func ReadPosts(ctx context.Context, fsys fs.FS, dir string, parser interfaces.MarkdownParser, includeDrafts bool) ([]*Post, error) {
	loader := markdown.NewLoader(fsys, markdown.LoaderConfig{Pattern: "*", Recursive: true})
	docs, err := loader.LoadDirectory(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("site: read posts: %w", err)
	}

	posts := make([]*Post, 0, len(docs))
	for _, doc := range docs {
		ext := path.Ext(doc.FilePath)
		if ext != ".md" && ext != ".markdown" {
			continue
		}
		if doc.FrontMatter.Draft && !includeDrafts {
			continue
		}
		post, err := newPost(doc, parser)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Date.Equal(posts[j].Date) {
			return posts[i].SourcePath < posts[j].SourcePath
		}
		return posts[i].Date.After(posts[j].Date)
	})
	return posts, nil
}

func newPost(doc *interfaces.Document, parser interfaces.MarkdownParser) (*Post, error) {
	fm := doc.FrontMatter
	date := fm.Date
	fileSlug := ""
	if match := postFilename.FindStringSubmatch(path.Base(doc.FilePath)); match != nil {
		fileSlug = match[2]
		if date.IsZero() {
			parsed, err := time.Parse("2006-01-02", match[1])
			if err != nil {
				return nil, fmt.Errorf("site: post %s: %w", doc.FilePath, err)
			}
			date = parsed
		}
	}
	if date.IsZero() {
		date = doc.LastModified
	}

	postSlug := strings.TrimSpace(fm.Slug)
	if postSlug == "" {
		postSlug = fileSlug
	}
	if postSlug == "" {
		normalized, err := slug.Normalize(fm.Title)
		if err != nil || normalized == "" {
			return nil, fmt.Errorf("site: post %s: cannot derive slug", doc.FilePath)
		}
		postSlug = normalized
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = postSlug
	}

	html := doc.Body
	if parser != nil {
		converted, err := parser.Parse(doc.Body)
		if err != nil {
			return nil, fmt.Errorf("site: post %s: %w", doc.FilePath, err)
		}
		html = converted
	}

	tags := make([]string, 0, len(fm.Tags))
	seen := map[string]struct{}{}
	for _, tag := range fm.Tags {
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	data := map[string]any{}
	for key, value := range fm.Raw {
		data[key] = value
	}
	data["title"] = title
	data["date"] = date
	data["tags"] = tags
	data["slug"] = postSlug

	dir := path.Join(date.Format("2006"), date.Format("01"), date.Format("02"))
	page := NewBasePage(dir, postSlug+".html", data, string(html)).
		SetTemplated(false).
		SetCategory(CategoryPost, "text/html")

	return &Post{
		BasePage:   page,
		Title:      title,
		Slug:       postSlug,
		Summary:    fm.Summary,
		Author:     fm.Author,
		Date:       date,
		Tags:       tags,
		SourcePath: doc.FilePath,
	}, nil
}
