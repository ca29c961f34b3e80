// Package feeds generates one Atom feed per tag. During every build the
// Generator walks the site's tag index and, for each tag, renders the
// `_layouts/atom.xml` template into `tags/<tag>/atom.xml`. Tags are used
// verbatim in output paths.
package feeds
