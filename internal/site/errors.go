package site

import "errors"

var (
	// ErrPageNotRendered is returned when Write is called before Render.
	ErrPageNotRendered = errors.New("site: page must be rendered before it is written")
	// ErrRendererRequired indicates a render was attempted without a template renderer.
	ErrRendererRequired = errors.New("site: template renderer is required")
	// ErrSourceRequired indicates the site was built without a source filesystem.
	ErrSourceRequired = errors.New("site: source filesystem is required")
	errWritePath      = errors.New("site: write requires path")
)
