package runtimeconfig

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-tagfeed/pkg/interfaces"
)

var ErrSourceRequired = errors.New("sitegen config: source directory is required")
var ErrDestinationRequired = errors.New("sitegen config: destination directory is required")
var ErrDestinationIsSource = errors.New("sitegen config: destination must differ from source")
var ErrDestinationContainsSource = errors.New("sitegen config: destination must not contain the source directory")
var ErrFeedsLayoutRequired = errors.New("sitegen config: feeds layout is required when feeds are enabled")
var ErrFeedsDirectoryInvalid = errors.New("sitegen config: feeds directory must be a relative path inside the destination")
var ErrLoggingProviderUnknown = errors.New("sitegen config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("sitegen config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("sitegen config: logging format is invalid")

// Config is the site configuration read from _config.yml. Keys that do not
// map to a field are kept in Extra and exposed to templates under `site`.
type Config struct {
	Title       string                  `yaml:"title"`
	Description string                  `yaml:"description"`
	URL         string                  `yaml:"url"`
	Author      string                  `yaml:"author"`
	Source      string                  `yaml:"source"`
	Destination string                  `yaml:"destination"`
	Drafts      bool                    `yaml:"drafts"`
	Exclude     []string                `yaml:"exclude"`
	Markdown    interfaces.ParseOptions `yaml:"markdown"`
	Feeds       FeedsConfig             `yaml:"feeds"`
	Sitemap     bool                    `yaml:"sitemap"`
	Logging     LoggingConfig           `yaml:"logging"`
	Extra       map[string]any          `yaml:"-"`
}

// FeedsConfig controls the per-tag Atom feed generator.
type FeedsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Layout    string `yaml:"layout"`
	Directory string `yaml:"directory"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns the configuration used when _config.yml is absent.
func DefaultConfig() Config {
	return Config{
		Title:       "My Blog",
		Source:      ".",
		Destination: "_site",
		Feeds: FeedsConfig{
			Enabled:   true,
			Layout:    "atom",
			Directory: "tags",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Extra: map[string]any{},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	source := strings.TrimSpace(cfg.Source)
	destination := strings.TrimSpace(cfg.Destination)
	if source == "" {
		return ErrSourceRequired
	}
	if destination == "" {
		return ErrDestinationRequired
	}
	switch destinationOverlap(source, destination) {
	case overlapSame:
		return fmt.Errorf("%w: %s", ErrDestinationIsSource, destination)
	case overlapAncestor:
		return fmt.Errorf("%w: %s", ErrDestinationContainsSource, destination)
	}
	if cfg.Feeds.Enabled {
		if strings.TrimSpace(cfg.Feeds.Layout) == "" {
			return ErrFeedsLayoutRequired
		}
		if !isRelativeInside(cfg.Feeds.Directory) {
			return fmt.Errorf("%w: %q", ErrFeedsDirectoryInvalid, cfg.Feeds.Directory)
		}
	}
	provider := normalizeProvider(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// DestinationPath resolves the destination relative to the source directory
// unless it is absolute.
func (cfg Config) DestinationPath() string {
	if filepath.IsAbs(cfg.Destination) {
		return filepath.Clean(cfg.Destination)
	}
	return filepath.Join(cfg.Source, cfg.Destination)
}

type overlap int

const (
	overlapNone overlap = iota
	overlapSame
	overlapAncestor
)

// destinationOverlap reports whether the resolved destination is the source
// directory or one of its parents. Cleaning either would wipe the sources.
func destinationOverlap(source, destination string) overlap {
	if !filepath.IsAbs(destination) {
		destination = filepath.Join(source, destination)
	}
	src, err := filepath.Abs(source)
	if err != nil {
		return overlapNone
	}
	dest, err := filepath.Abs(destination)
	if err != nil {
		return overlapNone
	}
	rel, err := filepath.Rel(dest, src)
	if err != nil {
		return overlapNone
	}
	switch {
	case rel == ".":
		return overlapSame
	case rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)):
		return overlapNone
	default:
		return overlapAncestor
	}
}

func isRelativeInside(dir string) bool {
	dir = strings.TrimSpace(dir)
	if dir == "" || strings.HasPrefix(dir, "/") {
		return false
	}
	clean := path.Clean(dir)
	return clean != "." && clean != ".." && !strings.HasPrefix(clean, "../")
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
