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
	"net/http"
	"net/url"
	"strings"
)

// Request is an inbound request independent of the transport.
type Request struct {
	Method     string
	Path       string
	RawQuery   string
	Header     http.Header
	RemoteAddr string

	ctx   context.Context
	body  Body
	takes int
	query url.Values
}

// NewRequest returns a new request.
//
// target is the request path with the optional query string, such as
// "/path/to?key=value".
func NewRequest(method, target string, body Body) *Request {
	path, query, _ := strings.Cut(target, "?")
	if path == "" {
		path = "/"
	}

	return &Request{
		Method:   strings.ToUpper(method),
		Path:     path,
		RawQuery: query,
		Header:   make(http.Header),
		body:     body,
	}
}

// NewRequestFromHTTP converts a net/http request to Request,
// whose body is wrapped as a streaming body.
func NewRequestFromHTTP(r *http.Request) *Request {
	path := r.URL.Path
	if path == "" {
		path = "/"
	}

	return &Request{
		Method:     r.Method,
		Path:       path,
		RawQuery:   r.URL.RawQuery,
		Header:     r.Header,
		RemoteAddr: r.RemoteAddr,
		ctx:        r.Context(),
		body:       ReaderBody(r.Body),
	}
}

// Context returns the context of the request.
//
// Return context.Background() if no context is set.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext sets the context of the request and returns itself.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic("nil context")
	}
	r.ctx = ctx
	return r
}

// TakeBody moves the body out of the request, and leaves an empty body
// in its place.
//
// So the second call returns an empty body.
func (r *Request) TakeBody() (body Body) {
	body, r.body = r.body, EmptyBody()
	r.takes++
	return
}

// BodyTaken reports whether the body has been taken by TakeBody.
func (r *Request) BodyTaken() bool { return r.takes > 0 }

// SetBody resets the body of the request.
//
// It is used by the middlewares to wrap the inbound body.
func (r *Request) SetBody(body Body) { r.body = body }

// PeekBody returns the body without taking it.
func (r *Request) PeekBody() Body { return r.body }

// Query parses the raw query string and returns the url values.
//
// Notice: the parsed result is cached.
func (r *Request) Query() url.Values {
	if r.query == nil {
		r.query, _ = url.ParseQuery(r.RawQuery)
		if r.query == nil {
			r.query = url.Values{}
		}
	}
	return r.query
}

// ContentType returns the media type of the header "Content-Type",
// without the parameters.
func (r *Request) ContentType() string {
	return ContentType(r.Header.Get(HeaderContentType))
}
