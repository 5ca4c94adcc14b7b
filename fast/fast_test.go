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

package fast

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
	"github.com/xgfone/harbor"
)

func newRequestCtx(method, uri, body string, headers ...string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	req.SetBodyString(body)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	var rctx fasthttp.RequestCtx
	rctx.Init(&req, nil, nil)
	return &rctx
}

func newServer() *harbor.Server {
	s := harbor.New(nil, harbor.SetLogger(harbor.NewNopLogger()))
	s.At("/hello/{}").Post(harbor.Func3(harbor.Path[string](0), harbor.Header("X-Token"),
		harbor.BodyString(), func(name, token, body string) (string, error) {
			return name + ":" + token + ":" + body, nil
		}))
	s.At("/query").Get(harbor.EndpointFunc(func(c *harbor.Context) *harbor.Response {
		return harbor.IntoResponse(c.Request().Query().Get("q"), nil)
	}))
	s.At("/stream").Get(harbor.Func0(func() (harbor.Responder, error) {
		chunks := []string{"x", "y", "z"}
		return harbor.Stream(harbor.MIMETextPlain, harbor.ChunkStreamFunc(
			func(context.Context) ([]byte, error) {
				if len(chunks) == 0 {
					return nil, io.EOF
				}
				chunk := chunks[0]
				chunks = chunks[1:]
				return []byte(chunk), nil
			})), nil
	}))
	return s
}

func TestHandler(t *testing.T) {
	h := Handler(newServer())

	rctx := newRequestCtx(http.MethodPost, "/hello/world", "body", "X-Token", "abc")
	h(rctx)
	assert.Equal(t, 200, rctx.Response.StatusCode())
	assert.Equal(t, "world:abc:body", string(rctx.Response.Body()))
	assert.Equal(t, harbor.MIMETextPlainCharsetUTF8,
		string(rctx.Response.Header.Peek(harbor.HeaderContentType)))

	rctx = newRequestCtx(http.MethodGet, "/query?q=value", "")
	h(rctx)
	assert.Equal(t, "value", string(rctx.Response.Body()))

	rctx = newRequestCtx(http.MethodGet, "/stream", "")
	h(rctx)
	assert.Equal(t, 200, rctx.Response.StatusCode())
	assert.Equal(t, "xyz", string(rctx.Response.Body()))

	rctx = newRequestCtx(http.MethodDelete, "/nope", "")
	h(rctx)
	assert.Equal(t, 404, rctx.Response.StatusCode())
	assert.Len(t, rctx.Response.Body(), 0)
}

func TestNewRequest(t *testing.T) {
	rctx := newRequestCtx(http.MethodPut, "/a/b?k=v", "data", "X-Real-IP", "1.2.3.4")
	req := NewRequest(context.Background(), rctx)

	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/a/b", req.Path)
	assert.Equal(t, "k=v", req.RawQuery)
	assert.Equal(t, "1.2.3.4", req.Header.Get(harbor.HeaderXRealIP))

	// The body is copied from the fasthttp request.
	rctx.Request.SetBodyString("changed")
	data, ok := req.PeekBody().Bytes()
	assert.True(t, ok)
	assert.Equal(t, "data", string(data))
}

func TestNewServer(t *testing.T) {
	s := harbor.New(nil, harbor.SetName("fast"), harbor.SetLogger(harbor.NewNopLogger()))
	assert.Equal(t, "fast", NewServer(s).Name)
}

func TestHandlerStreamContext(t *testing.T) {
	s := harbor.New(nil, harbor.SetLogger(harbor.NewNopLogger()))
	s.At("/s/{}").Get(harbor.EndpointFunc(func(c *harbor.Context) *harbor.Response {
		var done bool
		return harbor.IntoResponse(harbor.Stream(harbor.MIMETextPlain,
			harbor.ChunkStreamFunc(func(context.Context) ([]byte, error) {
				if done {
					return nil, io.EOF
				}
				done = true
				id, _ := c.RouteMatch().Index(0)
				return []byte(c.Request().Method + " " + id), nil
			})), nil)
	}))
	s.At("/panic").Get(harbor.Func0(func() (harbor.Responder, error) {
		return harbor.Stream(harbor.MIMETextPlain, harbor.ChunkStreamFunc(
			func(context.Context) ([]byte, error) { panic("boom") })), nil
	}))
	h := Handler(s)

	first := newRequestCtx(http.MethodGet, "/s/1", "")
	h(first)
	second := newRequestCtx(http.MethodGet, "/s/2", "")
	h(second)

	// fasthttp drains the stream after the handler returns.
	assert.Equal(t, "GET 2", string(second.Response.Body()))
	assert.Equal(t, "GET 1", string(first.Response.Body()))

	rctx := newRequestCtx(http.MethodGet, "/panic", "")
	assert.NotPanics(t, func() {
		h(rctx)
		rctx.Response.Body()
	})
}

func TestHandlerMethodCase(t *testing.T) {
	rctx := newRequestCtx("get", "/query?q=x", "")
	Handler(newServer())(rctx)
	assert.Equal(t, 200, rctx.Response.StatusCode())
}
