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
	"github.com/google/uuid"
	"github.com/xgfone/harbor"
)

// RequestIDKey is the key of the request id stored in the context data.
const RequestIDKey = "request_id"

// GenerateRequestID returns a new request id, which is a UUID v7.
func GenerateRequestID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RequestID returns a X-Request-ID middleware.
//
// If the request header does not contain X-Request-ID, it will set a new one.
// The request id is also stored into the context data by RequestIDKey
// and set into the response header.
//
// generateRequestID is GenerateRequestID by default.
func RequestID(generateRequestID ...func() string) Middleware {
	getRequestID := GenerateRequestID
	if len(generateRequestID) > 0 && generateRequestID[0] != nil {
		getRequestID = generateRequestID[0]
	}

	return harbor.MiddlewareFunc(func(c *harbor.Context) *harbor.Response {
		req := c.Request()
		xid := req.Header.Get(harbor.HeaderXRequestID)
		if xid == "" {
			xid = getRequestID()
			req.Header.Set(harbor.HeaderXRequestID, xid)
		}
		c.Set(RequestIDKey, xid)

		resp := c.Next()
		resp.Header.Set(harbor.HeaderXRequestID, xid)
		return resp
	})
}
