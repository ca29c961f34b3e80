package markdown

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-tagfeed/pkg/interfaces"
)

var frontMatterDelimiter = []byte("---")

// HasFrontMatter reports whether source opens with a YAML front matter block.
// Files without one are treated as static assets by the site reader.
func HasFrontMatter(source []byte) bool {
	source = bytes.TrimPrefix(source, []byte("\xef\xbb\xbf"))
	return bytes.HasPrefix(source, frontMatterDelimiter)
}

// ParseFrontMatter extracts metadata and the body from source. Sources
// without a front matter block return an empty FrontMatter and the full
// source as body.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	if !HasFrontMatter(source) {
		fm, _ := envelopeToFrontMatter(frontMatterEnvelope{}, false)
		return fm, source, nil
	}

	var meta frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	fm, err := envelopeToFrontMatter(meta, true)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return fm, body, nil
}

// BuildDocument assembles an interfaces.Document from the supplied file path,
// raw content, and modification time. BodyHTML is left empty so callers can
// render lazily.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	sum := sha256.Sum256(source)
	return &interfaces.Document{
		FilePath:     path,
		FrontMatter:  fm,
		Body:         body,
		LastModified: modified,
		Checksum:     sum[:],
	}, nil
}

type frontMatterEnvelope struct {
	Title   string         `yaml:"title"`
	Slug    string         `yaml:"slug"`
	Summary string         `yaml:"summary"`
	Layout  string         `yaml:"layout"`
	Tags    any            `yaml:"tags"`
	Author  string         `yaml:"author"`
	Date    any            `yaml:"date"`
	Draft   bool           `yaml:"draft"`
	Custom  map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope, present bool) (interfaces.FrontMatter, error) {
	tags := NormalizeTags(env.Tags)
	date, err := ParseDate(env.Date)
	if err != nil {
		return interfaces.FrontMatter{}, err
	}

	custom := map[string]any{}
	maps.Copy(custom, env.Custom)

	raw := make(map[string]any, len(custom)+8)
	maps.Copy(raw, custom)
	setString(raw, "title", env.Title)
	setString(raw, "slug", env.Slug)
	setString(raw, "summary", env.Summary)
	setString(raw, "layout", env.Layout)
	setString(raw, "author", env.Author)
	if len(tags) > 0 {
		raw["tags"] = append([]string(nil), tags...)
	}
	if !date.IsZero() {
		raw["date"] = date
	}
	if env.Draft {
		raw["draft"] = true
	}

	return interfaces.FrontMatter{
		Title:   env.Title,
		Slug:    env.Slug,
		Summary: env.Summary,
		Layout:  env.Layout,
		Tags:    tags,
		Author:  env.Author,
		Date:    date,
		Draft:   env.Draft,
		Custom:  custom,
		Raw:     raw,
		Present: present,
	}, nil
}

func setString(target map[string]any, key, value string) {
	if value != "" {
		target[key] = value
	}
}

// DateLayouts are the date formats accepted in front matter and by the
// date filters, tried in order.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate converts a decoded front matter date into a time.Time. A nil or
// blank value yields the zero time.
func ParseDate(value any) (time.Time, error) {
	switch typed := value.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return typed, nil
	case string:
		text := strings.TrimSpace(typed)
		if text == "" {
			return time.Time{}, nil
		}
		for _, layout := range DateLayouts {
			if parsed, err := time.Parse(layout, text); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", typed)
	default:
		return time.Time{}, fmt.Errorf("unrecognised date %v (%T)", value, value)
	}
}

// NormalizeTags accepts tags written as a YAML list or as a single
// whitespace separated string. List entries are kept verbatim.
func NormalizeTags(value any) []string {
	switch typed := value.(type) {
	case nil:
		return []string{}
	case string:
		return strings.Fields(typed)
	case []string:
		return append([]string{}, typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(typed)}
	}
}
