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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func namedEndpoint(name string) Endpoint {
	return EndpointFunc(func(*Context) *Response {
		return &Response{Status: 200, Header: http.Header{}, Body: StringBody(name)}
	})
}

func endpointName(ep Endpoint) string {
	resp := ep.Call(nil)
	data, _ := resp.Body.Bytes()
	return string(data)
}

func TestRouterCaptures(t *testing.T) {
	r := NewRouter()
	r.At("/").Get(namedEndpoint("root"))
	r.At("/users").Get(namedEndpoint("users"))
	r.At("/users/{}").Get(namedEndpoint("user"))
	r.At("/users/{}/posts/{}").Get(namedEndpoint("post"))
	r.At("/users/{uid}/books/{bid}").Get(namedEndpoint("book"))
	r.At("/users/me").Get(namedEndpoint("me"))
	r.At("/a/b/c/d").Get(namedEndpoint("abcd"))
	r.At("/a/b/x").Get(namedEndpoint("abx"))
	r.At("/a").Get(namedEndpoint("a"))

	tests := []struct {
		path     string
		name     string
		captures []string
	}{
		{"/", "root", []string{}},
		{"/users", "users", []string{}},
		{"/users/123", "user", []string{"123"}},
		{"/users/me", "me", []string{}},
		{"/users/1/posts/2", "post", []string{"1", "2"}},
		{"/users/1/books/2", "book", []string{"1", "2"}},
		{"/a/b/c/d", "abcd", []string{}},
		{"/a/b/x", "abx", []string{}},
		{"/a", "a", []string{}},
	}

	for _, test := range tests {
		result, ok := r.Route(test.path, http.MethodGet)
		if !assert.True(t, ok, test.path) {
			continue
		}
		assert.Equal(t, test.name, endpointName(result.Endpoint), test.path)
		assert.Equal(t, test.captures, result.Match.Values(), test.path)
	}

	result, _ := r.Route("/users/1/books/2", http.MethodGet)
	uid, _ := result.Match.Get("uid")
	bid, _ := result.Match.Get("bid")
	assert.Equal(t, "1", uid)
	assert.Equal(t, "2", bid)
	assert.Equal(t, "/users/{uid}/books/{bid}", result.Pattern)

	for _, path := range []string{"/nope", "/users/", "/users/1/posts", "/a/b",
		"/a/b/c", "/a/b/c/d/e", "//users", "/users//posts/1"} {
		_, ok := r.Route(path, http.MethodGet)
		assert.False(t, ok, path)
	}

	_, ok := r.Route("/users", http.MethodPost)
	assert.False(t, ok)
}

func TestRouterLiteralOverCapture(t *testing.T) {
	r := NewRouter()
	r.At("/users/{}/info").Get(namedEndpoint("info"))
	r.At("/users/me/profile").Get(namedEndpoint("profile"))

	result, ok := r.Route("/users/1/info", http.MethodGet)
	assert.True(t, ok)
	assert.Equal(t, "info", endpointName(result.Endpoint))

	result, ok = r.Route("/users/me/profile", http.MethodGet)
	assert.True(t, ok)
	assert.Equal(t, "profile", endpointName(result.Endpoint))

	// The literal "me" is chosen, so the capture branch is not tried.
	_, ok = r.Route("/users/me/info", http.MethodGet)
	assert.False(t, ok)
}

func TestRouterOverwrite(t *testing.T) {
	r := NewRouter()
	r.At("/path").Get(namedEndpoint("first"))
	r.At("/path").Method("get", namedEndpoint("second"))

	result, ok := r.Route("/path", http.MethodGet)
	assert.True(t, ok)
	assert.Equal(t, "second", endpointName(result.Endpoint))
	assert.Equal(t, []RouteInfo{{Method: "GET", Pattern: "/path"}}, r.Routes())
}

func TestRouterInvalidPattern(t *testing.T) {
	patterns := []string{"", "path", "/a//b", "/{", "/{a", "/a{}", "/{a}/{a}", "/{a}b", "/{{}}"}
	for _, pattern := range patterns {
		func() {
			defer func() {
				if v := recover(); v == nil {
					t.Errorf("expect a panic for the pattern '%s'", pattern)
				} else if _, ok := v.(RouteError); !ok {
					t.Errorf("expect RouteError, but got %T", v)
				}
			}()
			NewRouter().At(pattern).Get(namedEndpoint(""))
		}()
	}
}

func TestRouterAllowedAndRoutes(t *testing.T) {
	r := NewRouter()
	r.At("/users/{}").Get(namedEndpoint("")).Post(namedEndpoint("")).Delete(namedEndpoint(""))
	r.At("/users").Post(namedEndpoint(""))

	assert.Equal(t, []string{"DELETE", "GET", "POST"}, r.Allowed("/users/1"))
	assert.Nil(t, r.Allowed("/nope"))

	expected := []RouteInfo{
		{Method: "POST", Pattern: "/users"},
		{Method: "DELETE", Pattern: "/users/{}"},
		{Method: "GET", Pattern: "/users/{}"},
		{Method: "POST", Pattern: "/users/{}"},
	}
	assert.Equal(t, expected, r.Routes())
}

type tagMiddleware string

func (m tagMiddleware) Handle(c *Context) *Response { return c.Next() }

func TestRouterNest(t *testing.T) {
	a, b, c := tagMiddleware("a"), tagMiddleware("b"), tagMiddleware("c")

	r := NewRouter()
	r.Use(a)
	r.At("/root").Get(namedEndpoint("root"))
	r.Nest("/api", func(api *Router) {
		api.Use(b)
		api.At("/").Get(namedEndpoint("api"))
		api.At("/users/{}").Get(namedEndpoint("user"))
	})
	r.Use(c)
	r.At("/late").Get(namedEndpoint("late"))

	result, ok := r.Route("/root", http.MethodGet)
	assert.True(t, ok)
	assert.Equal(t, []Middleware{a}, result.Middlewares)

	result, ok = r.Route("/api", http.MethodGet)
	assert.True(t, ok)
	assert.Equal(t, "api", endpointName(result.Endpoint))
	assert.Equal(t, []Middleware{a, b}, result.Middlewares)

	result, ok = r.Route("/api/users/1", http.MethodGet)
	assert.True(t, ok)
	assert.Equal(t, "/api/users/{}", result.Pattern)
	assert.Equal(t, []string{"1"}, result.Match.Values())
	assert.Len(t, result.Middlewares, 2)

	result, ok = r.Route("/late", http.MethodGet)
	assert.True(t, ok)
	assert.Equal(t, []Middleware{a, c}, result.Middlewares)
}

func TestRouterFrozen(t *testing.T) {
	r := NewRouter()
	r.At("/").Get(namedEndpoint(""))
	r.Freeze()

	assert.PanicsWithValue(t, RouteError{Method: "GET", Pattern: "/path", Err: ErrRouterFrozen}, func() {
		r.At("/path").Get(namedEndpoint(""))
	})
}

func BenchmarkRouterRoute(b *testing.B) {
	r := NewRouter()
	r.At("/users/{}/posts/{}").Get(namedEndpoint(""))
	r.At("/users/{}/books/{}").Get(namedEndpoint(""))
	r.At("/a/b/c/d/e/f").Get(namedEndpoint(""))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Route("/users/1/posts/2", http.MethodGet)
	}
}
