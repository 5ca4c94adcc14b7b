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

// Middleware is a step of the request processing around the endpoint.
//
// It calls c.Next() to run the rest of the chain, and may inspect or modify
// the request before and the response after that. A middleware which does
// not call c.Next() must return its own response.
type Middleware interface {
	Handle(c *Context) *Response
}

// MiddlewareFunc is a function implementing the interface Middleware.
type MiddlewareFunc func(c *Context) *Response

// Handle implements the interface Middleware.
func (f MiddlewareFunc) Handle(c *Context) *Response { return f(c) }
