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

// Package fast serves a harbor.Server on the fasthttp transport.
package fast

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"github.com/xgfone/harbor"
)

// NewRequest converts the fasthttp request to harbor.Request,
// whose body is a buffered copy of the request body.
func NewRequest(ctx context.Context, rctx *fasthttp.RequestCtx) *harbor.Request {
	header := make(http.Header)
	rctx.Request.Header.VisitAll(func(k, v []byte) {
		key := http.CanonicalHeaderKey(string(k))
		header[key] = append(header[key], string(v))
	})

	var body harbor.Body
	if data := rctx.PostBody(); len(data) > 0 {
		// PostBody is only valid until the handler returns.
		body = harbor.BytesBody(append([]byte(nil), data...))
	} else {
		body = harbor.EmptyBody()
	}

	path := string(rctx.Path())
	if path == "" {
		path = "/"
	}

	req := &harbor.Request{
		Method:     string(rctx.Method()),
		Path:       path,
		RawQuery:   string(rctx.URI().QueryString()),
		Header:     header,
		RemoteAddr: rctx.RemoteAddr().String(),
	}
	req.SetBody(body)
	return req.WithContext(ctx)
}

// WriteResponse writes the response into the fasthttp response.
//
// The buffered body is set directly, and the streaming body is sent
// by the chunked transfer encoding.
func WriteResponse(ctx context.Context, rctx *fasthttp.RequestCtx, resp *harbor.Response) {
	for key, values := range resp.Header {
		for i, value := range values {
			if i == 0 {
				rctx.Response.Header.Set(key, value)
			} else {
				rctx.Response.Header.Add(key, value)
			}
		}
	}

	rctx.SetStatusCode(resp.Status)
	if data, ok := resp.Body.Bytes(); ok {
		rctx.SetBody(data)
	} else {
		rctx.SetBodyStream(resp.Body.Reader(ctx), -1)
	}
}

// Handler returns a fasthttp handler dispatching the requests to s.
//
// The streaming response body is read by fasthttp after the handler returns,
// so the request context is never canceled by the handler.
func Handler(s *harbor.Server) fasthttp.RequestHandler {
	return func(rctx *fasthttp.RequestCtx) {
		ctx := context.Background()
		WriteResponse(ctx, rctx, s.Call(NewRequest(ctx, rctx)))
	}
}

// NewServer returns a new fasthttp server serving s.
func NewServer(s *harbor.Server) *fasthttp.Server {
	return &fasthttp.Server{
		Name:    s.GetName(),
		Handler: Handler(s),
	}
}

// ListenAndServe serves s on the TCP address addr by fasthttp.
func ListenAndServe(addr string, s *harbor.Server) error {
	s.Logger().Infof("The fasthttp server is running on %s", addr)
	return NewServer(s).ListenAndServe(addr)
}
