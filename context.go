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
	"net"
	"strings"
)

type reqctx uint8

// GetContext returns the request context from the context.
func GetContext(ctx context.Context) *Context {
	c, _ := ctx.Value(reqctx(255)).(*Context)
	return c
}

// SetContext sets the request context into the context.
func SetContext(ctx context.Context, c *Context) (newctx context.Context) {
	return context.WithValue(ctx, reqctx(255), c)
}

// Context is the state of a request while it passes through the middlewares
// and reaches the endpoint.
type Context struct {
	// Data is used to store the key-value pairs shared by the middlewares
	// and the endpoint.
	//
	// Notice: when the new request is coming, they will be cleaned out.
	Data map[string]interface{}

	Logger

	appdata     interface{}
	req         *Request
	pattern     string
	match       RouteMatch
	endpoint    Endpoint
	middlewares []Middleware
	index       int
}

// NewContext returns a new Context.
//
// It is used by the server and the tests of the middlewares and endpoints.
func NewContext(appdata interface{}, req *Request, route RouteResult) *Context {
	c := &Context{Data: make(map[string]interface{}, 4), Logger: NewNopLogger()}
	c.reset(appdata, req, route)
	return c
}

func (c *Context) reset(appdata interface{}, req *Request, route RouteResult) {
	c.appdata = appdata
	c.req = req
	c.pattern = route.Pattern
	c.match = route.Match
	c.endpoint = route.Endpoint
	c.middlewares = route.Middlewares
	c.index = 0
}

// Reset resets the context to the initalizing state.
func (c *Context) Reset() {
	if len(c.Data) != 0 {
		for key := range c.Data {
			delete(c.Data, key)
		}
	}
	c.reset(nil, nil, RouteResult{})
}

// Next runs the rest of the middleware chain and returns the response.
//
// When all the middlewares have run, it calls the endpoint. Calling Next
// again from the same middleware re-runs the downstream chain.
func (c *Context) Next() (resp *Response) {
	if i := c.index; i < len(c.middlewares) {
		c.index = i + 1
		resp = c.middlewares[i].Handle(c)
		c.index = i
		if resp == nil {
			c.Errorf("the middleware #%d returns the nil response: method=%s, path=%s",
				i, c.req.Method, c.req.Path)
			resp = ErrorResponse(ErrNilResponse)
		}
		return
	}

	if c.endpoint == nil {
		return ErrNotFound.Response()
	}

	if resp = c.endpoint.Call(c); resp == nil {
		c.Errorf("the endpoint returns the nil response: method=%s, path=%s",
			c.req.Method, c.req.Path)
		resp = ErrorResponse(ErrNilResponse)
	}
	return
}

// AppData returns the clone of the application data for this request.
func (c *Context) AppData() interface{} { return c.appdata }

// Request returns the request.
func (c *Context) Request() *Request { return c.req }

// Context returns the context of the request.
func (c *Context) Context() context.Context { return c.req.Context() }

// Pattern returns the path pattern of the matched route.
func (c *Context) Pattern() string { return c.pattern }

// RouteMatch returns the captures of the path.
func (c *Context) RouteMatch() RouteMatch { return c.match }

// Param returns the value of the capture by the name.
func (c *Context) Param(name string) string {
	value, _ := c.match.Get(name)
	return value
}

// Set stores the key-value pair into Data.
func (c *Context) Set(key string, value interface{}) { c.Data[key] = value }

// Get returns the value by the key from Data.
func (c *Context) Get(key string) (value interface{}, ok bool) {
	value, ok = c.Data[key]
	return
}

// RemoteIP returns the host of the remote address of the connection.
func (c *Context) RemoteIP() string {
	if host, _, err := net.SplitHostPort(c.req.RemoteAddr); err == nil {
		return host
	}
	return c.req.RemoteAddr
}

// ClientIP returns the real client's network address based on `X-Forwarded-For`
// or `X-Real-Ip` request header. Or returns the remote address.
//
// The headers are supplied by the client, so only use it behind a proxy
// which overwrites them.
func (c *Context) ClientIP() string {
	if ip := c.req.Header.Get(HeaderXForwardedFor); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	} else if ip := c.req.Header.Get(HeaderXRealIP); ip != "" {
		return ip
	} else if ra, _, _ := net.SplitHostPort(c.req.RemoteAddr); ra != "" {
		return ra
	}
	return c.req.RemoteAddr
}
