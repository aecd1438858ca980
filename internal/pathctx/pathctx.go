// Package pathctx derives the optional version/color routing prefix of a
// request from its URL path.
//
// Two prefixes are recognized, first match wins:
//
//	/{version}/{color}[/...]   sets Version and Color
//	/{color}[/...]             sets Color only
//
// Only Versions and RouteColors take part in matching. RouteColors is a
// deliberate subset of the theme palette: a deployment themed "green"
// still serves unprefixed URLs.
package pathctx

import (
	"context"
	"net/http"
	"regexp"
	"strings"
)

// Versions are the version tokens accepted in a prefix.
var Versions = []string{"v1", "v2"}

// RouteColors are the color tokens accepted in a prefix.
var RouteColors = []string{"blue", "pink"}

var (
	reVersionColor = regexp.MustCompile(`^/(?P<version>` + alternation(Versions) + `)/(?P<color>` + alternation(RouteColors) + `)(?:/|$)`)
	reColor        = regexp.MustCompile(`^/(?P<color>` + alternation(RouteColors) + `)(?:/|$)`)
)

func alternation(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return strings.Join(quoted, "|")
}

// Context is the per-request routing prefix. Version is never set
// without Color.
type Context struct {
	Version string
	Color   string
}

// IsZero reports whether no prefix was matched.
func (this Context) IsZero() bool {
	return this.Version == "" && this.Color == ""
}

// Prefix returns the matched prefix without a trailing slash:
// "/v2/pink", "/blue" or "".
func (this Context) Prefix() string {
	switch {
	case this.Version != "" && this.Color != "":
		return "/" + this.Version + "/" + this.Color
	case this.Color != "":
		return "/" + this.Color
	default:
		return ""
	}
}

// CompleteURL re-applies the prefix to endpoint. Leading slashes on
// endpoint are ignored, so "addemp" and "/addemp" give the same result.
func (this Context) CompleteURL(endpoint string) string {
	return this.Prefix() + "/" + strings.TrimLeft(endpoint, "/")
}

// Resolve matches path against the two prefix grammars.
func Resolve(path string) Context {
	if m := reVersionColor.FindStringSubmatch(path); m != nil {
		return Context{
			Version: m[reVersionColor.SubexpIndex("version")],
			Color:   m[reVersionColor.SubexpIndex("color")],
		}
	}
	if m := reColor.FindStringSubmatch(path); m != nil {
		return Context{Color: m[reColor.SubexpIndex("color")]}
	}
	return Context{}
}

type ctxKey struct{}

// WithContext returns a copy of parent carrying pc.
func WithContext(parent context.Context, pc Context) context.Context {
	return context.WithValue(parent, ctxKey{}, pc)
}

// FromContext returns the Context stored by Middleware, or the zero
// Context if there is none.
func FromContext(ctx context.Context) Context {
	pc, _ := ctx.Value(ctxKey{}).(Context)
	return pc
}

// Middleware resolves the prefix of every request before it is routed.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pc := Resolve(r.URL.Path)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), pc)))
	})
}
