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
	"errors"
	"fmt"
)

// Endpoint is the terminal handler of a route.
type Endpoint interface {
	Call(c *Context) *Response
}

// EndpointFunc is a function implementing the interface Endpoint.
type EndpointFunc func(c *Context) *Response

// Call implements the interface Endpoint.
func (f EndpointFunc) Call(c *Context) *Response { return f(c) }

type bodyConsumer interface {
	ConsumesBody() bool
}

// checkBodyConsumers panics if more than one extractor consumes the body.
func checkBodyConsumers(extractors ...bodyConsumer) {
	var consumers int
	for _, e := range extractors {
		if e.ConsumesBody() {
			consumers++
		}
	}

	if consumers > 1 {
		panic(fmt.Errorf("%d extractors consume the request body, but only one is allowed", consumers))
	}
}

// Func0 converts a function without the arguments to Endpoint.
//
// The result of f is converted by IntoResponse.
func Func0[R any](f func() (R, error)) Endpoint {
	return EndpointFunc(func(c *Context) *Response {
		v, err := f()
		return respond(c, v, err)
	})
}

// Func1 converts a function with one argument to Endpoint,
// which is extracted by e1.
//
// If the extractor fails, its error is converted to the response
// and f is not called.
func Func1[A1, R any](e1 Extractor[A1], f func(A1) (R, error)) Endpoint {
	checkBodyConsumers(e1)
	return EndpointFunc(func(c *Context) *Response {
		a1, err := e1.Extract(c)
		if err != nil {
			return extractError(c, err)
		}
		v, err := f(a1)
		return respond(c, v, err)
	})
}

// Func2 is the same as Func1, but with two arguments.
//
// It panics if both extractors consume the body.
func Func2[A1, A2, R any](e1 Extractor[A1], e2 Extractor[A2],
	f func(A1, A2) (R, error)) Endpoint {
	checkBodyConsumers(e1, e2)
	return EndpointFunc(func(c *Context) *Response {
		a1, err := e1.Extract(c)
		if err != nil {
			return extractError(c, err)
		}

		a2, err := e2.Extract(c)
		if err != nil {
			return extractError(c, err)
		}

		v, err := f(a1, a2)
		return respond(c, v, err)
	})
}

// Func3 is the same as Func1, but with three arguments.
func Func3[A1, A2, A3, R any](e1 Extractor[A1], e2 Extractor[A2], e3 Extractor[A3],
	f func(A1, A2, A3) (R, error)) Endpoint {
	checkBodyConsumers(e1, e2, e3)
	return EndpointFunc(func(c *Context) *Response {
		a1, err := e1.Extract(c)
		if err != nil {
			return extractError(c, err)
		}

		a2, err := e2.Extract(c)
		if err != nil {
			return extractError(c, err)
		}

		a3, err := e3.Extract(c)
		if err != nil {
			return extractError(c, err)
		}

		v, err := f(a1, a2, a3)
		return respond(c, v, err)
	})
}

// Func4 is the same as Func1, but with four arguments.
func Func4[A1, A2, A3, A4, R any](e1 Extractor[A1], e2 Extractor[A2],
	e3 Extractor[A3], e4 Extractor[A4], f func(A1, A2, A3, A4) (R, error)) Endpoint {
	checkBodyConsumers(e1, e2, e3, e4)
	return EndpointFunc(func(c *Context) *Response {
		a1, err := e1.Extract(c)
		if err != nil {
			return extractError(c, err)
		}

		a2, err := e2.Extract(c)
		if err != nil {
			return extractError(c, err)
		}

		a3, err := e3.Extract(c)
		if err != nil {
			return extractError(c, err)
		}

		a4, err := e4.Extract(c)
		if err != nil {
			return extractError(c, err)
		}

		v, err := f(a1, a2, a3, a4)
		return respond(c, v, err)
	})
}

func respond(c *Context, v interface{}, err error) *Response {
	if err != nil {
		var he HTTPError
		if !errors.As(err, &he) {
			c.Errorf("the endpoint fails: method=%s, path=%s, err=%s",
				c.req.Method, c.req.Path, err)
		}
	}

	return IntoResponse(v, err)
}

func extractError(c *Context, err error) *Response {
	c.Debugf("fail to extract the argument: method=%s, path=%s, err=%s",
		c.req.Method, c.req.Path, err)
	return ErrorResponse(err)
}
