package feeds

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/goliatone/go-tagfeed/internal/site"
)

const (
	// DefaultLayout names the layout that gates and shapes tag feeds.
	DefaultLayout = "atom"
	// DefaultDirectory is the output directory holding one sub-directory per tag.
	DefaultDirectory = "tags"
	// OutputName is the file name of every tag feed.
	OutputName = "atom.xml"

	contentType = "application/atom+xml"
)

var (
	ErrLayoutMissing = errors.New("feeds: feed layout not found")
	ErrTagRequired   = errors.New("feeds: tag is required")
)

// TagFeedPage is the Atom feed of a single tag. Its template and data come
// from the feed layout file; the tag and a derived title are added on top.
type TagFeedPage struct {
	*site.BasePage
	tag        string
	layoutPath string
}

// NewTagFeedPage builds the feed page for tag under dir from
// `_layouts/atom.xml` in src.
func NewTagFeedPage(src fs.FS, dir, tag string) (*TagFeedPage, error) {
	return NewTagFeedPageWithLayout(src, dir, tag, DefaultLayout)
}

// NewTagFeedPageWithLayout is NewTagFeedPage with a custom layout name; the
// template is read from `_layouts/<layout>.xml`.
func NewTagFeedPageWithLayout(src fs.FS, dir, tag, layout string) (*TagFeedPage, error) {
	if tag == "" {
		return nil, ErrTagRequired
	}
	if strings.TrimSpace(layout) == "" {
		layout = DefaultLayout
	}

	layoutPath := path.Join(site.LayoutsDir, layout+".xml")
	tpl, err := site.ReadLayout(src, layoutPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLayoutMissing, layoutPath)
		}
		return nil, err
	}

	data := tpl.Data
	if data == nil {
		data = map[string]any{}
	}
	data["tag"] = tag
	data["title"] = Title(tag)

	page := site.NewBasePage(dir, OutputName, data, tpl.Content).
		SetCategory(site.CategoryFeed, contentType)

	return &TagFeedPage{
		BasePage:   page,
		tag:        tag,
		layoutPath: layoutPath,
	}, nil
}

// Title returns the feed title for tag. The tag is inserted verbatim.
func Title(tag string) string {
	return "Posts Tagged &ldquo;" + tag + "&rdquo;"
}

// Tag returns the tag the feed covers.
func (p *TagFeedPage) Tag() string { return p.tag }

// LayoutPath returns the source path of the template the page was built from.
func (p *TagFeedPage) LayoutPath() string { return p.layoutPath }
