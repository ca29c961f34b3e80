package site

import (
	"context"
	"io/fs"
	"sort"

	"github.com/goliatone/go-tagfeed/pkg/interfaces"
)

// Host is the view of a build that generators work against.
type Host interface {
	// LookupLayout reports whether a layout with the given name was loaded.
	LookupLayout(name string) (*Layout, bool)
	Layouts() map[string]*Layout
	// TagsToPosts maps every tag in use to its posts, newest first.
	TagsToPosts() map[string][]*Post
	Posts() []*Post
	// GlobalPayload is the template data shared by every page of the build.
	// Callers must treat it as read-only.
	GlobalPayload() map[string]any
	AppendPage(page Page)
	Pages() []Page
	SourceFS() fs.FS
	Renderer() interfaces.TemplateRenderer
	Writer() Writer
	URL() string
}

// Generator contributes pages during the generate phase of a build. It is
// invoked once per build, after the source tree has been read.
type Generator interface {
	Name() string
	Generate(ctx context.Context, host Host) error
}

// SortedTags returns the keys of a tag index in lexical order.
func SortedTags(index map[string][]*Post) []string {
	tags := make([]string, 0, len(index))
	for tag := range index {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
