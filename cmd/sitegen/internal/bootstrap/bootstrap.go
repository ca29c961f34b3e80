package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-tagfeed/internal/adapters/filesystem"
	"github.com/goliatone/go-tagfeed/internal/commands"
	buildcmd "github.com/goliatone/go-tagfeed/internal/commands/build"
	"github.com/goliatone/go-tagfeed/internal/feeds"
	"github.com/goliatone/go-tagfeed/internal/logging"
	"github.com/goliatone/go-tagfeed/internal/logging/console"
	"github.com/goliatone/go-tagfeed/internal/logging/gologger"
	"github.com/goliatone/go-tagfeed/internal/markdown"
	"github.com/goliatone/go-tagfeed/internal/runtimeconfig"
	"github.com/goliatone/go-tagfeed/internal/site"
	"github.com/goliatone/go-tagfeed/internal/sitemap"
	"github.com/goliatone/go-tagfeed/internal/templates"
	"github.com/goliatone/go-tagfeed/pkg/interfaces"
)

// Options captures configuration for the sitegen CLI bootstrap. Empty values
// keep whatever _config.yml (or the defaults) specify.
type Options struct {
	Source      string
	Destination string
	ConfigFile  string
	Drafts      *bool

	LogProvider string
	LogLevel    string
	LogFormat   string

	// LoggerProvider replaces the provider derived from the logging config.
	LoggerProvider interfaces.LoggerProvider
	// Clock overrides the build clock.
	Clock func() time.Time
}

// Module bundles the wired site and the command handlers driving it.
type Module struct {
	Config         runtimeconfig.Config
	Site           *site.Site
	Logger         interfaces.Logger
	LoggerProvider interfaces.LoggerProvider
	Build          *buildcmd.BuildSiteHandler
	Clean          *buildcmd.CleanSiteHandler
}

// BuildModule loads the site configuration and wires the renderer, markdown
// parser, destination storage and generators into a site.
func BuildModule(opts Options) (*Module, error) {
	source := strings.TrimSpace(opts.Source)
	if source == "" {
		source = "."
	}
	configFile := strings.TrimSpace(opts.ConfigFile)
	if configFile == "" {
		configFile = runtimeconfig.DefaultConfigFile
	}

	sourceFS := os.DirFS(source)
	cfg, err := runtimeconfig.Load(sourceFS, configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg = applyOverrides(cfg, source, opts)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	provider := opts.LoggerProvider
	if provider == nil {
		provider, err = NewLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("configure logging: %w", err)
		}
	}

	generators := []site.Generator{}
	if cfg.Feeds.Enabled {
		generators = append(generators, feeds.NewGenerator(feeds.Options{
			Layout:    cfg.Feeds.Layout,
			Directory: cfg.Feeds.Directory,
		}, logging.FeedsLogger(provider)))
	}
	if cfg.Sitemap {
		generators = append(generators, sitemap.NewGenerator(logging.SitemapLogger(provider)))
	}

	siteOpts := []site.Option{site.WithGenerators(generators...)}
	if opts.Clock != nil {
		siteOpts = append(siteOpts, site.WithClock(opts.Clock))
	}

	s := site.New(site.Config{
		Title:       cfg.Title,
		Description: cfg.Description,
		URL:         cfg.URL,
		Author:      cfg.Author,
		Destination: destinationInsideSource(source, cfg.DestinationPath()),
		Drafts:      cfg.Drafts,
		Exclude:     cfg.Exclude,
		Extra:       cfg.Extra,
	}, site.Dependencies{
		Source:   sourceFS,
		Renderer: templates.NewRenderer(sourceFS, templates.DefaultIncludesDir),
		Storage:  filesystem.NewStorage(cfg.DestinationPath()),
		Parser:   markdown.NewGoldmarkParser(cfg.Markdown),
		Logger:   logging.SiteLogger(provider),
	}, siteOpts...)

	commandLogger := commands.CommandLogger(provider, "build")

	return &Module{
		Config:         cfg,
		Site:           s,
		Logger:         logging.ModuleLogger(provider, "sitegen"),
		LoggerProvider: provider,
		Build:          buildcmd.NewBuildSiteHandler(s, commandLogger),
		Clean:          buildcmd.NewCleanSiteHandler(s, commandLogger),
	}, nil
}

// NewLoggerProvider returns the provider named by the logging config.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	case "", "console":
		consoleOpts := console.Options{}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			consoleOpts.MinLevel = &level
		}
		return console.NewProvider(consoleOpts), nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}

func applyOverrides(cfg runtimeconfig.Config, source string, opts Options) runtimeconfig.Config {
	cfg.Source = source
	if dest := strings.TrimSpace(opts.Destination); dest != "" {
		if abs, err := filepath.Abs(dest); err == nil {
			dest = abs
		}
		cfg.Destination = dest
	}
	if opts.Drafts != nil {
		cfg.Drafts = *opts.Drafts
	}
	if value := strings.TrimSpace(opts.LogProvider); value != "" {
		cfg.Logging.Provider = value
	}
	if value := strings.TrimSpace(opts.LogLevel); value != "" {
		cfg.Logging.Level = value
	}
	if value := strings.TrimSpace(opts.LogFormat); value != "" {
		cfg.Logging.Format = value
	}
	return cfg
}

// destinationInsideSource returns the destination as a slash separated path
// relative to source, or "" when it lives outside the source tree.
func destinationInsideSource(source, destination string) string {
	absSource, err := filepath.Abs(source)
	if err != nil {
		return ""
	}
	absDest, err := filepath.Abs(destination)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(absSource, absDest)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.ToSlash(rel)
}
