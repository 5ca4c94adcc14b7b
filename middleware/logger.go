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
	"time"

	"github.com/xgfone/harbor"
)

// Logger returns a new logger middleware that will log the request
// by the logger of the request context.
//
// The response with the status code 5xx is logged at the error level,
// and others at the info level.
func Logger() Middleware {
	return harbor.MiddlewareFunc(func(c *harbor.Context) *harbor.Response {
		start := time.Now()
		resp := c.Next()
		cost := time.Since(start).String()

		req := c.Request()
		url := req.Path
		if req.RawQuery != "" {
			url = url + "?" + req.RawQuery
		}

		if resp.IsServerError() {
			c.Errorf("addr=%s, code=%d, method=%s, url=%s, starttime=%d, cost=%s",
				req.RemoteAddr, resp.Status, req.Method, url, start.Unix(), cost)
		} else {
			c.Infof("addr=%s, code=%d, method=%s, url=%s, starttime=%d, cost=%s",
				req.RemoteAddr, resp.Status, req.Method, url, start.Unix(), cost)
		}

		return resp
	})
}
