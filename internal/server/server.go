package server

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gur-shatz/empdir/internal/log"
	"github.com/gur-shatz/empdir/internal/metrics"
	"github.com/gur-shatz/empdir/internal/pathctx"
	"github.com/gur-shatz/empdir/internal/store"
)

//go:embed static/*
var staticFiles embed.FS

// Directory is the persistence the handlers need. *store.Store implements it.
type Directory interface {
	AddEmployee(ctx context.Context, e store.Employee) (string, error)
	GetEmployee(ctx context.Context, id string) (store.Employee, error)
	Ping(ctx context.Context) error
}

// Renderer writes an HTML page. *views.Renderer implements it.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, page string, data any) error
}

// Server holds the handlers' dependencies.
type Server struct {
	dir     Directory
	views   Renderer
	metrics *metrics.Metrics
	log     *log.Logger
}

// New creates a Server.
func New(dir Directory, views Renderer, m *metrics.Metrics, logger *log.Logger) *Server {
	return &Server{
		dir:     dir,
		views:   views,
		metrics: m,
		log:     logger,
	}
}

// routePrefixes are the URL shapes every page is reachable under.
// The parameters only shape routing; the values pages use come from
// pathctx, which also decides whether a prefix is recognized at all.
var routePrefixes = []string{"", "/{version}/{color}", "/{color}"}

// Routes returns the full HTTP handler.
func (this *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(this.accessLog)
	r.Use(pathctx.Middleware)

	r.Get("/healthz", this.handleHealth)
	r.Handle("/metrics", this.metrics.Handler())

	sub, _ := fs.Sub(staticFiles, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	for _, prefix := range routePrefixes {
		getPost(r, prefix+"/", this.handleHome)
		getPost(r, prefix+"/about", this.handleAbout)
		getPost(r, prefix+"/addemp", this.handleAddEmployee)
		getPost(r, prefix+"/getemp", this.handleGetEmployeeForm)
		getPost(r, prefix+"/fetchdata", this.handleFetchData)
	}

	return r
}

func getPost(r chi.Router, pattern string, h http.HandlerFunc) {
	r.Get(pattern, h)
	r.Post(pattern, h)
}

// accessLog logs and counts every request by its matched route pattern.
func (this *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		this.metrics.ObserveRequest(route, r.Method, status)
		this.log.Request(r.Method, r.URL.Path, status, time.Since(start))
	})
}
