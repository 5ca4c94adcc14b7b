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
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerNotFound(t *testing.T) {
	s := newTestServer(nil)
	s.At("/").Get(namedEndpoint("root"))

	for _, method := range []string{"GET", "POST", "PUT", "DELETE", "PATCH", "FOO"} {
		resp := call(s, method, "/nope", EmptyBody())
		assert.Equal(t, 404, resp.Status, method)
		assert.Equal(t, 0, resp.Body.Len(), method)
	}

	// No 405 by default.
	resp := call(s, http.MethodPost, "/", EmptyBody())
	assert.Equal(t, 404, resp.Status)
}

func TestServerMethodNotAllowed(t *testing.T) {
	s := New(nil, SetLogger(NewNopLogger()), SetMethodNotAllowed(MethodNotAllowedEndpoint))
	s.At("/res").Put(namedEndpoint("put")).Get(namedEndpoint("get"))

	resp := call(s, http.MethodPost, "/res", EmptyBody())
	assert.Equal(t, 405, resp.Status)
	assert.Equal(t, "GET, PUT", resp.Header.Get(HeaderAllow))

	resp = call(s, http.MethodPost, "/other", EmptyBody())
	assert.Equal(t, 404, resp.Status)
	assert.Equal(t, "", resp.Header.Get(HeaderAllow))
}

func TestServerCustomNotFound(t *testing.T) {
	var trace []string
	s := New(nil, SetLogger(NewNopLogger()), SetNotFound(Func0(func() (Responder, error) {
		return Blob(MIMETextPlain, []byte("missing")), nil
	})))
	s.Use(traceMiddleware{name: "A", trace: &trace})

	resp := call(s, http.MethodGet, "/nope", EmptyBody())
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "missing", bodyString(t, resp))
	assert.Equal(t, []string{"A-pre", "A-post"}, trace)
}

func TestServerPanic(t *testing.T) {
	s := newTestServer(nil)
	s.At("/panic").Get(EndpointFunc(func(*Context) *Response { panic("boom") }))
	s.At("/ok").Get(namedEndpoint("ok"))

	assert.Equal(t, 500, call(s, http.MethodGet, "/panic", EmptyBody()).Status)
	assert.Equal(t, 200, call(s, http.MethodGet, "/ok", EmptyBody()).Status)
}

func TestServerFrozen(t *testing.T) {
	s := newTestServer(nil)
	s.At("/").Get(namedEndpoint("root"))
	call(s, http.MethodGet, "/", EmptyBody())

	assert.Panics(t, func() { s.At("/new").Get(namedEndpoint("new")) })
	assert.Panics(t, func() { s.Use(tagMiddleware("late")) })
}

func TestServerEndpointError(t *testing.T) {
	s := newTestServer(nil)
	s.At("/teapot").Get(Func0(func() (interface{}, error) {
		return nil, NewHTTPError(http.StatusTeapot).WithBody(MIMETextPlain, []byte("tea"))
	}))
	s.At("/fail").Get(Func0(func() (interface{}, error) {
		return nil, io.ErrUnexpectedEOF
	}))

	resp := call(s, http.MethodGet, "/teapot", EmptyBody())
	assert.Equal(t, http.StatusTeapot, resp.Status)
	assert.Equal(t, "tea", bodyString(t, resp))

	resp = call(s, http.MethodGet, "/fail", EmptyBody())
	assert.Equal(t, 500, resp.Status)
	assert.Equal(t, 0, resp.Body.Len())
}

type counterData struct {
	shared *int
	local  int
}

func (d counterData) Clone() interface{} {
	*d.shared++
	return counterData{shared: d.shared, local: *d.shared}
}

func TestServerCloneData(t *testing.T) {
	var shared int
	s := newTestServer(counterData{shared: &shared})
	s.At("/").Get(Func1(AppData[counterData](), func(d counterData) (int, error) {
		return 200 + d.local, nil
	}))

	assert.Equal(t, 201, call(s, http.MethodGet, "/", EmptyBody()).Status)
	assert.Equal(t, 202, call(s, http.MethodGet, "/", EmptyBody()).Status)
	assert.Equal(t, 2, shared)
}

type database struct {
	lock     sync.Mutex
	messages []string
}

func TestServerSharedState(t *testing.T) {
	db := &database{}
	s := newTestServer(db)
	s.At("/message").Post(Func2(AppData[*database](), BodyString(),
		func(db *database, msg string) (int, error) {
			db.lock.Lock()
			defer db.lock.Unlock()
			db.messages = append(db.messages, msg)
			return http.StatusCreated, nil
		}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			call(s, http.MethodPost, "/message", StringBody("hi"))
		}()
	}
	wg.Wait()

	assert.Len(t, db.messages, 10)
}

func TestServerBodyTakenTwice(t *testing.T) {
	s := New(nil, SetLogger(NewNopLogger()), SetDebug(true))
	s.At("/twice").Post(EndpointFunc(func(c *Context) *Response {
		first, _ := c.Request().TakeBody().ReadAll(c.Context())
		second, _ := c.Request().TakeBody().ReadAll(c.Context())
		return IntoResponse(map[string]int{"first": len(first), "second": len(second)}, nil)
	}))

	resp := call(s, http.MethodPost, "/twice", StringBody("abcd"))
	assert.Equal(t, `{"first":4,"second":0}`, bodyString(t, resp))
}

func TestServeHTTP(t *testing.T) {
	s := newTestServer(nil)
	s.At("/hello/{}").Get(Func1(Path[string](0), func(name string) (string, error) {
		return "Hello, " + name, nil
	}))
	s.At("/echo").Post(Func1(BodyBytes(), func(b []byte) ([]byte, error) {
		return b, nil
	}))
	s.At("/stream").Get(Func0(func() (Responder, error) {
		chunks := []string{"a", "b", "c"}
		return Stream(MIMETextPlain, ChunkStreamFunc(func(context.Context) ([]byte, error) {
			if len(chunks) == 0 {
				return nil, io.EOF
			}
			chunk := chunks[0]
			chunks = chunks[1:]
			return []byte(chunk), nil
		})), nil
	}))
	s.At("/empty").Get(Func0(func() (int, error) { return http.StatusNoContent, nil }))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello/world", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "Hello, world", rec.Body.String())
	assert.Equal(t, "12", rec.Header().Get(HeaderContentLength))
	assert.Equal(t, MIMETextPlainCharsetUTF8, rec.Header().Get(HeaderContentType))

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("payload")))
	assert.Equal(t, "payload", rec.Body.String())
	assert.Equal(t, MIMEOctetStream, rec.Header().Get(HeaderContentType))

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "abc", rec.Body.String())
	assert.Equal(t, "", rec.Header().Get(HeaderContentLength))
	assert.True(t, rec.Flushed)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/empty", nil))
	assert.Equal(t, 204, rec.Code)
	assert.Equal(t, "", rec.Header().Get(HeaderContentLength))

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, 404, rec.Code)
	assert.Equal(t, "0", rec.Header().Get(HeaderContentLength))
	assert.Equal(t, "", rec.Body.String())
}

func TestServerOptions(t *testing.T) {
	s := New("data", SetName("app"), SetLogger(NewNopLogger()))
	assert.Equal(t, "app", s.GetName())
	assert.Equal(t, "data", s.Data())
	assert.NotNil(t, s.Logger())
}

func TestServerStreamAfterCall(t *testing.T) {
	s := newTestServer(nil)
	s.At("/stream/{}").Get(EndpointFunc(func(c *Context) *Response {
		var done bool
		return IntoResponse(Stream(MIMETextPlain, ChunkStreamFunc(func(context.Context) ([]byte, error) {
			if done {
				return nil, io.EOF
			}
			done = true
			id, _ := c.RouteMatch().Index(0)
			return []byte("path=" + c.Request().Path + ",id=" + id), nil
		})), nil)
	}))
	s.At("/other").Get(namedEndpoint("other"))

	first := call(s, http.MethodGet, "/stream/1", EmptyBody())
	second := call(s, http.MethodGet, "/stream/2", EmptyBody())

	// Other requests may run before the transport drains the stream.
	for i := 0; i < 10; i++ {
		call(s, http.MethodGet, "/other", EmptyBody())
	}

	assert.Equal(t, "path=/stream/2,id=2", bodyString(t, second))
	assert.Equal(t, "path=/stream/1,id=1", bodyString(t, first))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream/3", nil))
	assert.Equal(t, "path=/stream/3,id=3", rec.Body.String())
}

func TestServerStreamPanic(t *testing.T) {
	s := newTestServer(nil)
	s.At("/").Get(Func0(func() (Responder, error) {
		return Stream(MIMETextPlain, ChunkStreamFunc(func(context.Context) ([]byte, error) {
			panic("boom")
		})), nil
	}))

	resp := call(s, http.MethodGet, "/", EmptyBody())
	assert.NotPanics(t, func() {
		_, err := resp.Body.ReadAll(context.Background())
		assert.ErrorContains(t, err, "boom")
	})

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestServerMethodCase(t *testing.T) {
	s := newTestServer(nil)
	s.At("/").Get(namedEndpoint("root"))

	r := httptest.NewRequest("get", "/", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, r)
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "root", rec.Body.String())
}
