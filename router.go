// Copyright 2024 xgfone
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package harbor

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// RouteInfo is the information of a registered route.
type RouteInfo struct {
	Method  string
	Pattern string
}

func (ri RouteInfo) String() string {
	return fmt.Sprintf("RouteInfo(method=%s, pattern=%s)", ri.Method, ri.Pattern)
}

// RouteResult is the result of the route lookup.
type RouteResult struct {
	Pattern     string
	Endpoint    Endpoint
	Middlewares []Middleware // Outer to inner
	Match       RouteMatch
}

type binding struct {
	pattern     string
	names       []string
	endpoint    Endpoint
	middlewares []Middleware
}

type resource struct {
	bindings map[string]*binding
}

func (r *resource) methods() []string {
	methods := make([]string, 0, len(r.bindings))
	for method := range r.bindings {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}

// routeTree is shared by a router and all its nested routers.
type routeTree struct {
	lock   sync.Mutex
	root   node
	frozen atomic.Bool
}

// Router is a path trie router.
//
// The middlewares of each route are those registered on the router, and
// its ancestors when nesting, before the route is added. So the middleware
// added later does not apply to the previous routes.
type Router struct {
	tree        *routeTree
	prefix      string
	middlewares []Middleware
}

// NewRouter returns a new router.
func NewRouter() *Router { return &Router{tree: new(routeTree)} }

// Prefix returns the path prefix of the router.
func (r *Router) Prefix() string { return r.prefix }

// Use appends the middlewares, which will apply to the routes
// added after that.
func (r *Router) Use(mws ...Middleware) *Router {
	r.checkFrozen("", r.prefix)
	r.middlewares = append(r.middlewares, mws...)
	return r
}

// Group returns a nested router with the path prefix, which starts with
// a copy of the current middlewares of r.
func (r *Router) Group(prefix string) *Router {
	prefix = strings.TrimRight(prefix, "/")
	if prefix != "" && prefix[0] != '/' {
		panic(fmt.Errorf("the prefix '%s' does not start with '/'", prefix))
	}

	return &Router{
		tree:        r.tree,
		prefix:      r.prefix + prefix,
		middlewares: append([]Middleware(nil), r.middlewares...),
	}
}

// Nest calls f with a nested router with the path prefix.
//
// See Group.
func (r *Router) Nest(prefix string, f func(*Router)) *Router {
	f(r.Group(prefix))
	return r
}

// At returns the resource of the path pattern to register the endpoints.
func (r *Router) At(pattern string) *Resource {
	return &Resource{router: r, pattern: pattern}
}

func (r *Router) fullPattern(pattern string) string {
	if r.prefix == "" {
		return pattern
	} else if pattern == "/" || pattern == "" {
		return r.prefix
	}
	return r.prefix + pattern
}

func (r *Router) checkFrozen(method, pattern string) {
	if r.tree.frozen.Load() {
		panic(RouteError{Method: method, Pattern: pattern, Err: ErrRouterFrozen})
	}
}

// Register registers the endpoint with the method and the path pattern.
//
// Re-registering the same method on the same pattern overwrites it.
// It panics if the pattern is invalid or the router has been frozen.
func (r *Router) Register(pattern, method string, ep Endpoint) {
	pattern = r.fullPattern(pattern)
	method = strings.ToUpper(method)
	r.checkFrozen(method, pattern)

	if method == "" || ep == nil {
		panic(RouteError{Method: method, Pattern: pattern,
			Err: fmt.Errorf("method or endpoint is empty")})
	}

	segs, err := parsePattern(pattern)
	if err != nil {
		panic(RouteError{Method: method, Pattern: pattern, Err: err})
	}

	var names []string
	for _, seg := range segs {
		if seg.capture {
			names = append(names, seg.name)
		}
	}

	r.tree.lock.Lock()
	defer r.tree.lock.Unlock()

	n := r.tree.root.insert(segs)
	if n.resource == nil {
		n.resource = &resource{bindings: make(map[string]*binding, 2)}
	}

	n.resource.bindings[method] = &binding{
		pattern:     pattern,
		names:       names,
		endpoint:    ep,
		middlewares: append([]Middleware(nil), r.middlewares...),
	}
}

func (r *Router) lookup(path string) (*resource, []string) {
	n, values := r.tree.root.match(splitPath(path), nil)
	if n == nil || n.resource == nil {
		return nil, nil
	}
	return n.resource, values
}

// Route finds the route by the request path and method.
//
// The method is matched case-insensitively, the same as Register.
// Return false if the path is not matched or the method is not registered.
func (r *Router) Route(path, method string) (result RouteResult, ok bool) {
	res, values := r.lookup(path)
	if res == nil {
		return
	}

	b := res.bindings[strings.ToUpper(method)]
	if b == nil {
		return
	}

	captures := make([]Capture, len(values))
	for i, value := range values {
		captures[i] = Capture{Name: b.names[i], Value: value}
	}

	return RouteResult{
		Pattern:     b.pattern,
		Endpoint:    b.endpoint,
		Middlewares: b.middlewares,
		Match:       RouteMatch{captures: captures},
	}, true
}

// Allowed returns the sorted methods registered on the resource
// matching the path.
//
// Return nil if no resource matches the path.
func (r *Router) Allowed(path string) []string {
	if res, _ := r.lookup(path); res != nil {
		return res.methods()
	}
	return nil
}

// Routes returns all the registered routes, sorted by pattern and method.
func (r *Router) Routes() (routes []RouteInfo) {
	r.tree.lock.Lock()
	r.tree.root.walk(func(res *resource) {
		for method, b := range res.bindings {
			routes = append(routes, RouteInfo{Method: method, Pattern: b.pattern})
		}
	})
	r.tree.lock.Unlock()

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Pattern == routes[j].Pattern {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Pattern < routes[j].Pattern
	})
	return
}

// Freeze forbids to register the routes and the middlewares any more.
func (r *Router) Freeze() { r.tree.frozen.Store(true) }

// Resource is used to register the endpoints of a path pattern.
type Resource struct {
	router  *Router
	pattern string
}

// Pattern returns the path pattern of the resource, including the prefix.
func (r *Resource) Pattern() string { return r.router.fullPattern(r.pattern) }

// Method registers the endpoint with the method.
func (r *Resource) Method(method string, ep Endpoint) *Resource {
	r.router.Register(r.pattern, method, ep)
	return r
}

// Get is equal to r.Method(http.MethodGet, ep).
func (r *Resource) Get(ep Endpoint) *Resource { return r.Method(http.MethodGet, ep) }

// Head is equal to r.Method(http.MethodHead, ep).
func (r *Resource) Head(ep Endpoint) *Resource { return r.Method(http.MethodHead, ep) }

// Post is equal to r.Method(http.MethodPost, ep).
func (r *Resource) Post(ep Endpoint) *Resource { return r.Method(http.MethodPost, ep) }

// Put is equal to r.Method(http.MethodPut, ep).
func (r *Resource) Put(ep Endpoint) *Resource { return r.Method(http.MethodPut, ep) }

// Patch is equal to r.Method(http.MethodPatch, ep).
func (r *Resource) Patch(ep Endpoint) *Resource { return r.Method(http.MethodPatch, ep) }

// Delete is equal to r.Method(http.MethodDelete, ep).
func (r *Resource) Delete(ep Endpoint) *Resource { return r.Method(http.MethodDelete, ep) }

// Options is equal to r.Method(http.MethodOptions, ep).
func (r *Resource) Options(ep Endpoint) *Resource { return r.Method(http.MethodOptions, ep) }

// Any registers the endpoint with all the common methods.
func (r *Resource) Any(ep Endpoint) *Resource {
	r.Get(ep)
	r.Put(ep)
	r.Post(ep)
	r.Head(ep)
	r.Patch(ep)
	r.Delete(ep)
	r.Options(ep)
	return r
}
