package feeds

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-tagfeed/internal/logging"
	"github.com/goliatone/go-tagfeed/internal/site"
	"github.com/goliatone/go-tagfeed/pkg/interfaces"
)

// Options configures the feed generator.
type Options struct {
	// Layout is both the gate and the template: feeds are produced only when
	// the site has this layout, and `_layouts/<Layout>.xml` is rendered.
	Layout string
	// Directory is the output directory for per-tag sub-directories.
	Directory string
}

// Generator emits an Atom feed for every tag of the site.
type Generator struct {
	opts   Options
	logger interfaces.Logger
}

var _ site.Generator = (*Generator)(nil)

// NewGenerator returns a Generator. Empty options fall back to the
// defaults and a nil logger discards output.
func NewGenerator(opts Options, logger interfaces.Logger) *Generator {
	if strings.TrimSpace(opts.Layout) == "" {
		opts.Layout = DefaultLayout
	}
	if strings.TrimSpace(opts.Directory) == "" {
		opts.Directory = DefaultDirectory
	}
	return &Generator{
		opts:   opts,
		logger: logging.Ensure(logger),
	}
}

func (g *Generator) Name() string { return "feeds" }

// Generate renders, writes and registers one feed page per tag in lexical
// tag order. Without the feed layout it does nothing. The first failure
// stops the run; feeds already written are left in place.
func (g *Generator) Generate(ctx context.Context, host site.Host) error {
	if _, ok := host.LookupLayout(g.opts.Layout); !ok {
		g.logger.Debug("feeds.skipped", "reason", "layout not found", "layout", g.opts.Layout)
		return nil
	}

	index := host.TagsToPosts()
	for _, tag := range site.SortedTags(index) {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := NewTagFeedPageWithLayout(host.SourceFS(), g.opts.Directory+"/"+tag, tag, g.opts.Layout)
		if err != nil {
			return fmt.Errorf("feeds: tag %q: %w", tag, err)
		}
		if err := page.Render(host.Renderer(), host.Layouts(), host.GlobalPayload()); err != nil {
			return fmt.Errorf("feeds: tag %q: %w", tag, err)
		}
		if err := page.Write(ctx, host.Writer()); err != nil {
			return fmt.Errorf("feeds: tag %q: %w", tag, err)
		}
		host.AppendPage(page)

		logging.WithFeedContext(g.logger, tag, page.Path(), page.LayoutPath()).
			Info("feeds.tag.written", "posts", len(index[tag]))
	}
	return nil
}
