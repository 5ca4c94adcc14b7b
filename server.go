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
	"errors"
	"io"
	"net/http"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
)

// NotFoundEndpoint is the default endpoint used when no route matches.
var NotFoundEndpoint Endpoint = EndpointFunc(func(*Context) *Response {
	return ErrNotFound.Response()
})

// MethodNotAllowedEndpoint returns 405 with the empty body.
var MethodNotAllowedEndpoint Endpoint = EndpointFunc(func(*Context) *Response {
	return ErrMethodNotAllowed.Response()
})

// Server dispatches the requests to the endpoints of its router.
type Server struct {
	*Router

	name   string
	debug  bool
	logger Logger
	data   interface{}

	notFound         Endpoint
	methodNotAllowed Endpoint

	freeze  sync.Once
	ctxpool sync.Pool
}

// New returns a new Server with the application data.
//
// data is copied for each request, see CloneData.
func New(data interface{}, options ...Option) *Server {
	s := &Server{
		Router:   NewRouter(),
		logger:   NewLoggerFromWriter(os.Stderr, ""),
		data:     data,
		notFound: NotFoundEndpoint,
	}

	for _, option := range options {
		option(s)
	}

	s.ctxpool.New = func() interface{} {
		return &Context{Data: make(map[string]interface{}, 4), Logger: s.logger}
	}

	return s
}

// GetName returns the name of the server.
func (s *Server) GetName() string { return s.name }

// GetLogger returns the logger of the server.
func (s *Server) GetLogger() Logger { return s.logger }

// Logger returns the logger of the server.
func (s *Server) Logger() Logger { return s.logger }

// Data returns the application data.
func (s *Server) Data() interface{} { return s.data }

func (s *Server) acquireContext() *Context {
	return s.ctxpool.Get().(*Context)
}

func (s *Server) releaseContext(c *Context) {
	c.Reset()
	s.ctxpool.Put(c)
}

// Call handles the request and returns the response.
//
// The first call freezes the router, so no route or middleware can be
// registered after that. The panic escaping from the middlewares or the
// endpoint is recovered as the response 500.
//
// The streaming body of the response may still refer to the request context
// while the transport drains it, so the context is only reused for
// the buffered responses.
func (s *Server) Call(req *Request) (resp *Response) {
	s.freeze.Do(s.Router.Freeze)

	c := s.acquireContext()
	defer func() {
		if v := recover(); v != nil {
			s.logger.Errorf("panic: method=%s, path=%s, err=%v\n%s",
				req.Method, req.Path, v, debug.Stack())
			resp = ErrInternalServerError.Response()
		}

		if !resp.Body.IsStreaming() {
			s.releaseContext(c)
		}
	}()

	route, ok := s.Router.Route(req.Path, req.Method)
	if !ok {
		route = s.fallback(req)
	}

	c.reset(CloneData(s.data), req, route)
	resp = c.Next()

	if s.debug && req.takes > 1 {
		s.logger.Warnf("the request body is taken %d times: method=%s, path=%s",
			req.takes, req.Method, req.Path)
	}

	return
}

// fallback returns the pseudo route for the request matching no route,
// which runs through the middlewares of the top-level router.
func (s *Server) fallback(req *Request) RouteResult {
	if s.logger != nil {
		s.logger.Debugf("no route: method=%s, path=%s", req.Method, req.Path)
	}

	route := RouteResult{Endpoint: s.notFound, Middlewares: s.Router.middlewares}
	if s.methodNotAllowed != nil {
		if allowed := s.Router.Allowed(req.Path); len(allowed) > 0 {
			route.Endpoint = allowEndpoint{allow: strings.Join(allowed, ", "),
				endpoint: s.methodNotAllowed}
		}
	}

	return route
}

type allowEndpoint struct {
	allow    string
	endpoint Endpoint
}

func (e allowEndpoint) Call(c *Context) *Response {
	resp := e.endpoint.Call(c)
	if resp != nil {
		resp.Header.Set(HeaderAllow, e.allow)
	}
	return resp
}

// ServeHTTP implements the interface http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := s.Call(NewRequestFromHTTP(r))
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		s.logger.Errorf("fail to write the response: method=%s, path=%s, err=%s",
			r.Method, r.URL.Path, err)
	}
}

// WriteResponse writes the response into the http.ResponseWriter.
//
// The buffered body is written once with the header Content-Length.
// The streaming body is copied chunk by chunk, and flushed after each chunk
// if w implements http.Flusher.
func WriteResponse(ctx context.Context, w http.ResponseWriter, resp *Response) error {
	header := w.Header()
	for key, values := range resp.Header {
		header[key] = values
	}

	if data, ok := resp.Body.Bytes(); ok {
		if bodyAllowedForStatus(resp.Status) {
			header.Set(HeaderContentLength, strconv.Itoa(len(data)))
		}

		w.WriteHeader(resp.Status)
		if len(data) > 0 {
			_, err := w.Write(data)
			return err
		}
		return nil
	}

	w.WriteHeader(resp.Status)
	flusher, _ := w.(http.Flusher)
	return copyChunks(ctx, resp.Body.stream, func(chunk []byte) error {
		if _, err := w.Write(chunk); err != nil {
			return err
		} else if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
}

func copyChunks(ctx context.Context, s ChunkStream, write func([]byte) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, err := nextChunk(ctx, s)
		if len(chunk) > 0 {
			if werr := write(chunk); werr != nil {
				return werr
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		default:
			return err
		}
	}
}

func bodyAllowedForStatus(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
