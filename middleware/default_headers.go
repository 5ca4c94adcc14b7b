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
	"net/http"

	"github.com/xgfone/harbor"
)

// DefaultHeaders is a middleware to add the headers into the response
// if the response does not have them.
type DefaultHeaders struct {
	headers http.Header
}

// NewDefaultHeaders returns a new DefaultHeaders without any header.
func NewDefaultHeaders() *DefaultHeaders {
	return &DefaultHeaders{headers: make(http.Header, 4)}
}

// Header adds the default header and returns itself.
func (m *DefaultHeaders) Header(key, value string) *DefaultHeaders {
	m.headers.Add(key, value)
	return m
}

// Handle implements the interface harbor.Middleware.
func (m *DefaultHeaders) Handle(c *harbor.Context) *harbor.Response {
	resp := c.Next()
	for key, values := range m.headers {
		if _, ok := resp.Header[key]; !ok {
			resp.Header[key] = append([]string(nil), values...)
		}
	}
	return resp
}
