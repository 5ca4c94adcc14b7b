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
	"sync/atomic"

	"github.com/xgfone/harbor"
)

// MaxRequests returns a Middleware to allow the maximum number of the requests
// to access the handler at the same time.
//
// If the number of the requests exceeds max, it will call the endpoint
// if given, or return 429 by default.
func MaxRequests(max uint32, handler ...harbor.Endpoint) Middleware {
	var h harbor.Endpoint = harbor.EndpointFunc(func(*harbor.Context) *harbor.Response {
		return harbor.ErrTooManyRequests.Response()
	})
	if len(handler) > 0 && handler[0] != nil {
		h = handler[0]
	}

	var maxNum = int64(max)
	var current atomic.Int64

	return harbor.MiddlewareFunc(func(c *harbor.Context) *harbor.Response {
		defer current.Add(-1)
		if current.Add(1) > maxNum {
			return h.Call(c)
		}
		return c.Next()
	})
}
