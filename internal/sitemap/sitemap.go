package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-tagfeed/internal/logging"
	"github.com/goliatone/go-tagfeed/internal/site"
	"github.com/goliatone/go-tagfeed/pkg/interfaces"
)

// FileName is the output path of the sitemap.
const FileName = "sitemap.xml"

const namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Generator writes sitemap.xml listing every page registered with the host
// when it runs, so it should be registered after generators that add pages.
type Generator struct {
	logger interfaces.Logger
}

var _ site.Generator = (*Generator)(nil)

func NewGenerator(logger interfaces.Logger) *Generator {
	return &Generator{logger: logging.Ensure(logger)}
}

func (g *Generator) Name() string { return "sitemap" }

func (g *Generator) Generate(ctx context.Context, host site.Host) error {
	fallback := buildTime(host.GlobalPayload())
	entries := Entries(host.URL(), host.Pages(), fallback)

	content, err := Render(entries)
	if err != nil {
		return err
	}

	page := site.NewBasePage("", FileName, nil, content).
		SetTemplated(false).
		SetCategory(site.CategorySitemap, "application/xml")
	if err := page.Render(host.Renderer(), nil, nil); err != nil {
		return fmt.Errorf("sitemap: %w", err)
	}
	if err := page.Write(ctx, host.Writer()); err != nil {
		return fmt.Errorf("sitemap: %w", err)
	}
	host.AppendPage(page)

	g.logger.Info("sitemap.written", "entries", len(entries), "output", FileName)
	return nil
}

// Entry is a single <url> element.
type Entry struct {
	Location string `xml:"loc"`
	LastMod  string `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []Entry  `xml:"url"`
}

// Entries converts pages into sitemap entries sorted by location. Posts use
// their date as last modification, every other page uses fallback.
func Entries(baseURL string, pages []site.Page, fallback time.Time) []Entry {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = "http://localhost"
	}

	entries := make([]Entry, 0, len(pages))
	seen := map[string]struct{}{}
	for _, page := range pages {
		if page == nil || page.Category() == site.CategorySitemap {
			continue
		}
		location := base + (&url.URL{Path: page.URL()}).EscapedPath()
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}

		lastMod := fallback
		if post, ok := page.(*site.Post); ok && !post.Date.IsZero() {
			lastMod = post.Date
		}
		entry := Entry{Location: location}
		if !lastMod.IsZero() {
			entry.LastMod = lastMod.UTC().Format(time.RFC3339)
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})
	return entries
}

// Render encodes entries as a sitemap document.
func Render(entries []Entry) (string, error) {
	out, err := xml.MarshalIndent(urlSet{XMLNS: namespace, URLs: entries}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("sitemap: encode: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}

func buildTime(payload map[string]any) time.Time {
	siteVars, _ := payload["site"].(map[string]any)
	built, _ := siteVars["time"].(time.Time)
	return built
}
