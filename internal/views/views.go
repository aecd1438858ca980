package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gur-shatz/empdir/internal/log"
	"github.com/gur-shatz/empdir/internal/pathctx"
)

//go:embed templates/*.html
var templateFiles embed.FS

// layoutFile wraps every page; pages define "title" and "content".
const layoutFile = "layout.html"

// View is the value every template executes against.
type View struct {
	VERSION string
	COLOR   string
	Route   pathctx.Context
	Data    any
}

// CompleteURL prefixes endpoint with the request's version/color route.
func (this View) CompleteURL(endpoint string) string {
	return this.Route.CompleteURL(endpoint)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDir reads templates from dir instead of the embedded copies.
// Combine with Watch to pick up edits without a restart.
func WithDir(dir string) Option {
	return func(r *Renderer) {
		r.dir = dir
	}
}

// WithLogger sets the logger used for reload messages.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		r.log = l
	}
}

// Renderer executes page templates with the process-wide VERSION and
// COLOR and the per-request route prefix.
type Renderer struct {
	version  string
	colorHex string
	dir      string
	log      *log.Logger

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// New parses all page templates. It fails if any template does not parse.
func New(version, colorHex string, opts ...Option) (*Renderer, error) {
	this := &Renderer{
		version:  version,
		colorHex: colorHex,
		log:      log.Default(),
	}
	for _, opt := range opts {
		opt(this)
	}
	if err := this.Reload(); err != nil {
		return nil, err
	}
	return this, nil
}

func (this *Renderer) source() (fs.FS, error) {
	if this.dir != "" {
		return os.DirFS(this.dir), nil
	}
	return fs.Sub(templateFiles, "templates")
}

// Reload re-parses every template. On error the previous set is kept.
func (this *Renderer) Reload() error {
	fsys, err := this.source()
	if err != nil {
		return fmt.Errorf("template source: %w", err)
	}

	files, err := doublestar.Glob(fsys, "**/*.html")
	if err != nil {
		return fmt.Errorf("glob templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		if path.Base(f) == layoutFile {
			continue
		}
		t, err := template.ParseFS(fsys, layoutFile, f)
		if err != nil {
			return fmt.Errorf("parse template %s: %w", f, err)
		}
		pages[f] = t
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}

	this.mu.Lock()
	this.pages = pages
	this.mu.Unlock()
	return nil
}

// Pages returns the names of the loaded page templates.
func (this *Renderer) Pages() []string {
	this.mu.RLock()
	defer this.mu.RUnlock()
	names := make([]string, 0, len(this.pages))
	for k := range this.pages {
		names = append(names, k)
	}
	return names
}

// Render writes page with the given status. The output is buffered, so a
// template error never produces a half-written page.
func (this *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data any) error {
	this.mu.RLock()
	t, ok := this.pages[page]
	this.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	view := View{
		VERSION: this.version,
		COLOR:   this.colorHex,
		Route:   pathctx.FromContext(r.Context()),
		Data:    data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutFile, view); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
