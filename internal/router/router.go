package router

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/MINAqwq/LibWebli/internal/message"
)

// ErrNotFound is returned by Resolve when no route matches.
var ErrNotFound = errors.New("route not found")

// Handler processes a request. It may modify resp and return Next, or end
// the chain with a terminal Outcome.
type Handler func(req *message.Request, resp *message.Response) Outcome

// Chain is an ordered list of handlers run for one route.
type Chain []Handler

type routeKey struct {
	method string
	path   string
}

type group struct {
	prefix string
	router *Router
}

// Router maps (method, path) to handler chains and delegates path prefixes
// to child routers. Register routes before serving; lookups are safe for
// concurrent use.
type Router struct {
	mu     sync.RWMutex
	routes map[routeKey]Chain
	groups []group
}

// New creates an empty router.
func New() *Router {
	return &Router{routes: make(map[routeKey]Chain)}
}

// Register stores handlers under (method, path), replacing any previous
// chain for the same key.
func (r *Router) Register(method, path string, handlers ...Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[routeKey{method: method, path: path}] = Chain(handlers)
}

// Get registers a GET route.
func (r *Router) Get(path string, handlers ...Handler) {
	r.Register(message.MethodGet, path, handlers...)
}

// Post registers a POST route.
func (r *Router) Post(path string, handlers ...Handler) {
	r.Register(message.MethodPost, path, handlers...)
}

// Put registers a PUT route.
func (r *Router) Put(path string, handlers ...Handler) {
	r.Register(message.MethodPut, path, handlers...)
}

// Patch registers a PATCH route.
func (r *Router) Patch(path string, handlers ...Handler) {
	r.Register(message.MethodPatch, path, handlers...)
}

// Delete registers a DELETE route.
func (r *Router) Delete(path string, handlers ...Handler) {
	r.Register(message.MethodDelete, path, handlers...)
}

// Group delegates every path starting with prefix + "/" to child, with the
// prefix stripped. Groups are tried in registration order before the
// router's own routes.
func (r *Router) Group(prefix string, child *Router) {
	prefix = strings.TrimSuffix(prefix, "/")

	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = append(r.groups, group{prefix: prefix, router: child})
}

// Resolve finds the chain for method and path. The query string is ignored.
// It also returns the path as seen by the router that matched, which differs
// from path when a group prefix was stripped.
func (r *Router) Resolve(method, path string) (Chain, string, error) {
	return r.resolve(method, message.StripQuery(path))
}

func (r *Router) resolve(method, path string) (Chain, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.groups {
		rest, ok := stripPrefix(path, g.prefix)
		if !ok {
			continue
		}
		chain, matched, err := g.router.resolve(method, rest)
		if err == nil {
			return chain, matched, nil
		}
	}

	if chain, ok := r.routes[routeKey{method: method, path: path}]; ok {
		return chain, path, nil
	}

	return nil, "", ErrNotFound
}

// stripPrefix removes prefix from path on a segment boundary.
func stripPrefix(path, prefix string) (string, bool) {
	if prefix == "" {
		return path, true
	}
	if path == prefix {
		return "/", true
	}
	if strings.HasPrefix(path, prefix+"/") {
		return path[len(prefix):], true
	}
	return "", false
}

// RouteInfo describes one registered route with its full path.
type RouteInfo struct {
	Method   string
	Path     string
	Handlers int
}

// Routes lists every reachable route, including those of groups, sorted by
// path then method.
func (r *Router) Routes() []RouteInfo {
	var out []RouteInfo
	r.collect("", &out)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func (r *Router) collect(prefix string, out *[]RouteInfo) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for k, chain := range r.routes {
		*out = append(*out, RouteInfo{Method: k.method, Path: prefix + k.path, Handlers: len(chain)})
	}
	for _, g := range r.groups {
		g.router.collect(prefix+g.prefix, out)
	}
}
