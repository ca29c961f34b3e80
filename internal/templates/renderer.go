package templates

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-tagfeed/pkg/interfaces"
)

// DefaultIncludesDir is where named templates are resolved from.
const DefaultIncludesDir = "_includes"

var ErrUnsupportedData = errors.New("templates: data must be a map[string]any")
var ErrFilterNameRequired = errors.New("templates: filter name is required")
var ErrFilterFuncRequired = errors.New("templates: filter function is required")

// Renderer implements interfaces.TemplateRenderer on top of pongo2. Named
// templates are loaded from the includes directory of the source tree and
// may be referenced from inline templates with {% include %}.
type Renderer struct {
	set *pongo2.TemplateSet
	mu  sync.RWMutex
}

var _ interfaces.TemplateRenderer = (*Renderer)(nil)

// NewRenderer returns a renderer resolving named templates from dir inside
// fsys. A nil fsys disables named templates.
func NewRenderer(fsys fs.FS, dir string) *Renderer {
	registerBuiltins()
	if strings.TrimSpace(dir) == "" {
		dir = DefaultIncludesDir
	}
	set := pongo2.NewSet("sitegen", &fsLoader{fsys: fsys, dir: dir})
	return &Renderer{set: set}
}

// Render renders the named template. It is an alias of RenderTemplate.
func (r *Renderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

func (r *Renderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", err
	}
	r.mu.RLock()
	tpl, err := r.set.FromFile(name)
	r.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("templates: load %s: %w", name, err)
	}
	return execute(tpl, ctx, out)
}

func (r *Renderer) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", err
	}
	r.mu.RLock()
	tpl, err := r.set.FromString(templateContent)
	r.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("templates: parse: %w", err)
	}
	return execute(tpl, ctx, out)
}

// RegisterFilter adds or replaces a filter. pongo2 keeps filters in a
// process-wide registry, so the filter is visible to every renderer.
func (r *Renderer) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrFilterNameRequired
	}
	if fn == nil {
		return ErrFilterFuncRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return setFilter(name, adaptFilter(name, fn))
}

// GlobalContext merges data into the variables available to every template
// rendered by r.
func (r *Renderer) GlobalContext(data any) error {
	ctx, err := toContext(data)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.set.Globals == nil {
		r.set.Globals = pongo2.Context{}
	}
	r.set.Globals.Update(ctx)
	return nil
}

func execute(tpl *pongo2.Template, ctx pongo2.Context, out []io.Writer) (string, error) {
	if len(out) > 0 && out[0] != nil {
		if err := tpl.ExecuteWriter(ctx, out[0]); err != nil {
			return "", fmt.Errorf("templates: execute: %w", err)
		}
		return "", nil
	}
	rendered, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("templates: execute: %w", err)
	}
	return rendered, nil
}

func toContext(data any) (pongo2.Context, error) {
	switch typed := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return typed, nil
	case map[string]any:
		return pongo2.Context(typed), nil
	default:
		return nil, fmt.Errorf("%w, got %T", ErrUnsupportedData, data)
	}
}

func setFilter(name string, fn pongo2.FilterFunction) error {
	if pongo2.FilterExists(name) {
		return pongo2.ReplaceFilter(name, fn)
	}
	return pongo2.RegisterFilter(name, fn)
}

func adaptFilter(name string, fn func(any, any) (any, error)) pongo2.FilterFunction {
	return func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var input, arg any
		if in != nil {
			input = in.Interface()
		}
		if param != nil && !param.IsNil() {
			arg = param.Interface()
		}
		result, err := fn(input, arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}
}

// fsLoader resolves template names relative to dir inside fsys.
type fsLoader struct {
	fsys fs.FS
	dir  string
}

// Abs is applied more than once to the same name by pongo2, so names already
// inside dir are returned unchanged.
func (l *fsLoader) Abs(_, name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	prefix := path.Clean(l.dir) + "/"
	if strings.HasPrefix(name, prefix) {
		return name
	}
	return path.Join(l.dir, name)
}

func (l *fsLoader) Get(name string) (io.Reader, error) {
	if l.fsys == nil {
		return nil, fmt.Errorf("templates: %s: %w", name, fs.ErrNotExist)
	}
	data, err := fs.ReadFile(l.fsys, l.Abs("", name))
	if err != nil {
		return nil, err
	}
	return strings.NewReader(string(data)), nil
}
