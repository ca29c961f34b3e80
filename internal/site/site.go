package site

import (
	"context"
	"fmt"
	"io/fs"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-tagfeed/internal/adapters/noop"
	"github.com/goliatone/go-tagfeed/internal/logging"
	"github.com/goliatone/go-tagfeed/pkg/interfaces"
	"github.com/goliatone/go-tagfeed/pkg/storage"
)

// Config captures the site-wide settings exposed to templates and the reader.
type Config struct {
	Title       string
	Description string
	URL         string
	Author      string
	// Destination is the output directory relative to the source root. It is
	// skipped while reading; leave empty when the output lives elsewhere.
	Destination string
	Drafts      bool
	Exclude     []string
	// Extra holds custom configuration keys merged into the `site` variable.
	Extra map[string]any
}

// Dependencies lists the collaborators a Site needs.
type Dependencies struct {
	Source   fs.FS
	Renderer interfaces.TemplateRenderer
	Storage  interfaces.StorageProvider
	Parser   interfaces.MarkdownParser
	Logger   interfaces.Logger
}

// ProcessOptions narrows a build.
type ProcessOptions struct {
	// DryRun renders everything but persists nothing.
	DryRun bool
}

// BuildResult reports what a build produced.
type BuildResult struct {
	BuildID  string
	BuiltAt  time.Time
	Duration time.Duration
	Posts    int
	Pages    int
	Feeds    int
	Assets   int
	Written  []string
	DryRun   bool
}

// Option customises a Site.
type Option func(*Site)

// WithGenerators registers generators run in order during the generate phase.
func WithGenerators(generators ...Generator) Option {
	return func(s *Site) {
		for _, generator := range generators {
			if generator != nil {
				s.generators = append(s.generators, generator)
			}
		}
	}
}

// WithClock overrides the clock used for site.time and build timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Site) {
		if now != nil {
			s.now = now
		}
	}
}

// Site reads a source tree and produces the output tree. A Site may be
// processed repeatedly; every build starts from an empty page list.
type Site struct {
	cfg        Config
	deps       Dependencies
	generators []Generator
	now        func() time.Time
	logger     interfaces.Logger

	mu      sync.Mutex
	layouts map[string]*Layout
	posts   []*Post
	tags    map[string][]*Post
	pages   []Page
	statics []string
	payload map[string]any
	writer  Writer
	builtAt time.Time
}

var _ Host = (*Site)(nil)

// New constructs a Site.
func New(cfg Config, deps Dependencies, opts ...Option) *Site {
	s := &Site{
		cfg:    cfg,
		deps:   deps,
		now:    time.Now,
		logger: logging.Ensure(deps.Logger),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.reset(false)
	return s
}

// AddGenerator registers an additional generator.
func (s *Site) AddGenerator(generator Generator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generator != nil {
		s.generators = append(s.generators, generator)
	}
}

// Process runs a full build: reset, read, generate, render, write and copy
// static files. Generator errors abort the build.
func (s *Site) Process(ctx context.Context, opts ProcessOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Source == nil {
		return nil, ErrSourceRequired
	}
	if s.deps.Renderer == nil {
		return nil, ErrRendererRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result := &BuildResult{
		BuildID: uuid.NewString(),
		DryRun:  opts.DryRun,
	}
	logger := logging.WithFields(s.logger, map[string]any{"build_id": result.BuildID})

	s.reset(opts.DryRun)
	result.BuiltAt = s.builtAt

	if err := s.read(ctx); err != nil {
		return nil, err
	}
	s.payload = s.buildPayload()
	logger.Debug("site.read.completed", "posts", len(s.posts), "pages", len(s.pages), "tags", len(s.tags), "static", len(s.statics))

	for _, generator := range s.generators {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := generator.Generate(ctx, s); err != nil {
			return nil, fmt.Errorf("site: generator %s: %w", generator.Name(), err)
		}
	}

	for _, page := range s.pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !page.Written() {
			if !page.Rendered() {
				if err := page.Render(s.deps.Renderer, s.layouts, s.payload); err != nil {
					return nil, err
				}
				if base, ok := page.(interface{ MissingLayout() string }); ok && base.MissingLayout() != "" {
					logger.Warn("site.layout.missing", "page", page.Path(), "layout", base.MissingLayout())
				}
			}
			if err := page.Write(ctx, s.writer); err != nil {
				return nil, err
			}
		}
		result.Written = append(result.Written, page.Path())
		switch page.Category() {
		case CategoryPost:
			result.Posts++
		case CategoryFeed:
			result.Feeds++
		default:
			result.Pages++
		}
	}

	for _, name := range s.statics {
		if err := s.copyStatic(ctx, name); err != nil {
			return nil, err
		}
		result.Written = append(result.Written, name)
		result.Assets++
	}

	result.Duration = time.Since(start)
	logger.Info("site.build.completed",
		"posts", result.Posts,
		"pages", result.Pages,
		"feeds", result.Feeds,
		"assets", result.Assets,
		"dry_run", result.DryRun,
		"duration", result.Duration.String(),
	)
	return result, nil
}

// Clean removes every file under the destination root.
func (s *Site) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.deps.Storage == nil {
		return nil
	}
	if _, err := s.deps.Storage.Exec(ctx, storage.OpRemove, "."); err != nil {
		return fmt.Errorf("site: clean: %w", err)
	}
	s.logger.Info("site.clean.completed")
	return nil
}

func (s *Site) LookupLayout(name string) (*Layout, bool) {
	layout, ok := s.layouts[name]
	return layout, ok && layout != nil
}

func (s *Site) Layouts() map[string]*Layout { return s.layouts }

func (s *Site) TagsToPosts() map[string][]*Post { return s.tags }

func (s *Site) Posts() []*Post { return s.posts }

func (s *Site) GlobalPayload() map[string]any { return s.payload }

// AppendPage adds a page to the current build. Pages that are not yet
// written when the render phase starts are rendered and written then.
func (s *Site) AppendPage(page Page) {
	if page != nil {
		s.pages = append(s.pages, page)
	}
}

func (s *Site) Pages() []Page { return s.pages }

func (s *Site) SourceFS() fs.FS { return s.deps.Source }

func (s *Site) Renderer() interfaces.TemplateRenderer { return s.deps.Renderer }

func (s *Site) Writer() Writer { return s.writer }

func (s *Site) URL() string { return strings.TrimRight(strings.TrimSpace(s.cfg.URL), "/") }

func (s *Site) reset(dryRun bool) {
	s.layouts = map[string]*Layout{}
	s.posts = nil
	s.tags = map[string][]*Post{}
	s.pages = nil
	s.statics = nil
	s.payload = map[string]any{}
	s.builtAt = s.now()
	if dryRun {
		s.writer = NewWriter(noop.Storage())
	} else {
		s.writer = NewWriter(s.deps.Storage)
	}
}

func (s *Site) read(ctx context.Context) error {
	layouts, err := LoadLayouts(s.deps.Source, LayoutsDir)
	if err != nil {
		return err
	}
	s.layouts = layouts

	posts, err := ReadPosts(ctx, s.deps.Source, PostsDir, s.deps.Parser, s.cfg.Drafts)
	if err != nil {
		return err
	}
	s.posts = posts
	for _, post := range posts {
		s.pages = append(s.pages, post)
		for _, tag := range post.Tags {
			s.tags[tag] = append(s.tags[tag], post)
		}
	}

	pages, statics, err := s.readTree(ctx)
	if err != nil {
		return err
	}
	s.pages = append(s.pages, pages...)
	s.statics = statics
	return nil
}

func (s *Site) buildPayload() map[string]any {
	siteVars := map[string]any{}
	maps.Copy(siteVars, s.cfg.Extra)

	posts := make([]map[string]any, 0, len(s.posts))
	for _, post := range s.posts {
		posts = append(posts, post.TemplateData())
	}
	tags := make(map[string][]map[string]any, len(s.tags))
	for tag, tagged := range s.tags {
		entries := make([]map[string]any, 0, len(tagged))
		for _, post := range tagged {
			entries = append(entries, post.TemplateData())
		}
		tags[tag] = entries
	}

	siteVars["title"] = s.cfg.Title
	siteVars["description"] = s.cfg.Description
	siteVars["url"] = s.URL()
	siteVars["author"] = s.cfg.Author
	siteVars["time"] = s.builtAt
	siteVars["posts"] = posts
	siteVars["tags"] = tags
	siteVars["tag_names"] = SortedTags(s.tags)
	return map[string]any{"site": siteVars}
}

func (s *Site) copyStatic(ctx context.Context, name string) error {
	data, err := fs.ReadFile(s.deps.Source, name)
	if err != nil {
		return fmt.Errorf("site: read %s: %w", name, err)
	}
	if dir := parentDir(name); dir != "" {
		if err := s.writer.EnsureDir(ctx, dir); err != nil {
			return fmt.Errorf("site: ensure dir for %s: %w", name, err)
		}
	}
	if err := s.writer.WriteFile(ctx, WriteRequest{
		Path:     name,
		Content:  data,
		Category: CategoryAsset,
	}); err != nil {
		return fmt.Errorf("site: copy %s: %w", name, err)
	}
	return nil
}

func parentDir(name string) string {
	if idx := strings.LastIndex(name, "/"); idx > 0 {
		return name[:idx]
	}
	return ""
}
