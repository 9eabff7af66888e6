// Package routes provides HTTP route registration and handler building.
package routes

import (
	"log/slog"
	"net/http"
)

// System defines the interface for route registration and HTTP handler building.
type System interface {
	RegisterGroup(group Group)
	RegisterRoute(route Route)
	Build() http.Handler
	Groups() []Group
	Routes() []Route
}

type routes struct {
	routes []Route
	groups []Group
	logger *slog.Logger
}

// New creates a route system with the specified logger.
func New(logger *slog.Logger) System {
	return &routes{
		logger: logger.With("system", "routes"),
		groups: []Group{},
		routes: []Route{},
	}
}

func (r *routes) Groups() []Group {
	return r.groups
}

func (r *routes) Routes() []Route {
	return r.routes
}

func (r *routes) RegisterRoute(route Route) {
	r.routes = append(r.routes, route)
}

func (r *routes) RegisterGroup(group Group) {
	r.groups = append(r.groups, group)
}

// Build constructs an http.Handler from all registered routes and groups.
func (r *routes) Build() http.Handler {
	mux := http.NewServeMux()

	for _, route := range r.routes {
		r.handle(mux, route.Method+" "+route.Pattern, route.Handler)
	}

	for _, group := range r.groups {
		r.registerGroup(mux, "", group)
	}

	return mux
}

func (r *routes) registerGroup(mux *http.ServeMux, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		r.handle(mux, route.Method+" "+fullPrefix+route.Pattern, route.Handler)
	}
	for _, child := range group.Children {
		r.registerGroup(mux, fullPrefix, child)
	}
}

func (r *routes) handle(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	r.logger.Debug("route registered", "pattern", pattern)
	mux.HandleFunc(pattern, handler)
}
