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

type traceMiddleware struct {
	name  string
	trace *[]string
}

func (m traceMiddleware) Handle(c *Context) *Response {
	*m.trace = append(*m.trace, m.name+"-pre")
	resp := c.Next()
	*m.trace = append(*m.trace, m.name+"-post")
	return resp
}

func TestContextNextOrder(t *testing.T) {
	var trace []string
	s := New(nil, SetLogger(NewNopLogger()))
	s.Use(traceMiddleware{name: "A", trace: &trace})
	s.Use(traceMiddleware{name: "B", trace: &trace})
	s.At("/").Get(EndpointFunc(func(*Context) *Response {
		trace = append(trace, "E")
		return NewResponse(200)
	}))

	resp := s.Call(NewRequest(http.MethodGet, "/", EmptyBody()))
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, []string{"A-pre", "B-pre", "E", "B-post", "A-post"}, trace)
}

func TestContextNextTwice(t *testing.T) {
	var calls int
	s := New(nil, SetLogger(NewNopLogger()))
	s.Use(MiddlewareFunc(func(c *Context) *Response {
		c.Next()
		return c.Next()
	}))
	s.At("/").Get(EndpointFunc(func(*Context) *Response {
		calls++
		return NewResponse(200)
	}))

	s.Call(NewRequest(http.MethodGet, "/", EmptyBody()))
	assert.Equal(t, 2, calls)
}

func TestContextShortCircuit(t *testing.T) {
	var called bool
	s := New(nil, SetLogger(NewNopLogger()))
	s.Use(MiddlewareFunc(func(c *Context) *Response {
		return NewResponse(http.StatusUnauthorized)
	}))
	s.At("/").Get(EndpointFunc(func(*Context) *Response {
		called = true
		return NewResponse(200)
	}))

	resp := s.Call(NewRequest(http.MethodGet, "/", EmptyBody()))
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.False(t, called)
}

func TestContextNilResponse(t *testing.T) {
	s := New(nil, SetLogger(NewNopLogger()))
	s.Use(MiddlewareFunc(func(c *Context) *Response { return nil }))
	s.At("/").Get(EndpointFunc(func(*Context) *Response { return NewResponse(200) }))

	resp := s.Call(NewRequest(http.MethodGet, "/", EmptyBody()))
	assert.Equal(t, 500, resp.Status)
}

func TestNewContext(t *testing.T) {
	req := NewRequest(http.MethodGet, "/users/1", EmptyBody())
	req.Header.Set(HeaderXForwardedFor, "1.2.3.4, 5.6.7.8")

	c := NewContext("data", req, RouteResult{
		Pattern:  "/users/{id}",
		Match:    NewRouteMatch(Capture{Name: "id", Value: "1"}),
		Endpoint: EndpointFunc(func(c *Context) *Response { return NewResponse(204) }),
	})

	assert.Equal(t, "data", c.AppData())
	assert.Equal(t, "/users/{id}", c.Pattern())
	assert.Equal(t, "1", c.Param("id"))
	assert.Equal(t, "1.2.3.4", c.ClientIP())
	assert.Equal(t, 204, c.Next().Status)

	c.Set("key", "value")
	value, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", value)

	c.Reset()
	_, ok = c.Get("key")
	assert.False(t, ok)
	assert.Nil(t, c.AppData())
}
