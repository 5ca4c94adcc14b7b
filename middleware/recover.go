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

package middleware

import (
	"runtime/debug"

	"github.com/xgfone/harbor"
)

// Recover returns a middleware to recover the panic of the rest of the chain
// as the response 500, so that the outer middlewares still see a response.
func Recover() Middleware {
	return harbor.MiddlewareFunc(func(c *harbor.Context) (resp *harbor.Response) {
		defer func() {
			if e := recover(); e != nil {
				req := c.Request()
				c.Errorf("panic: method=%s, path=%s, err=%v\n%s",
					req.Method, req.Path, e, debug.Stack())
				resp = harbor.ErrInternalServerError.Response()
			}
		}()
		return c.Next()
	})
}
