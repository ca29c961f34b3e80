// Package markdown parses source documents for the site build: YAML front
// matter through adrg/frontmatter, Markdown bodies through goldmark, and
// discovery of post files on an fs.FS.
package markdown
