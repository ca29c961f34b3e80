package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-tagfeed/pkg/interfaces"
)

const (
	rootModule    = "sitegen"
	siteModule    = "sitegen.site"
	feedsModule   = "sitegen.feeds"
	sitemapModule = "sitegen.sitemap"
)

const (
	fieldTag    = "tag"
	fieldOutput = "output"
	fieldLayout = "layout"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// SiteLogger returns the logger namespace reserved for the build pipeline.
func SiteLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, siteModule)
}

// FeedsLogger returns the logger namespace reserved for tag feed generation.
func FeedsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, feedsModule)
}

// SitemapLogger returns the logger namespace reserved for the sitemap generator.
func SitemapLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sitemapModule)
}

// WithFeedContext enriches the logger with the tag, output path and layout of
// a feed being produced. Empty values are ignored.
func WithFeedContext(logger interfaces.Logger, tag, output, layout string) interfaces.Logger {
	fields := map[string]any{}
	if tag != "" {
		fields[fieldTag] = tag
	}
	if trimmed := strings.TrimSpace(output); trimmed != "" {
		fields[fieldOutput] = trimmed
	}
	if trimmed := strings.TrimSpace(layout); trimmed != "" {
		fields[fieldLayout] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
