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
	"context"
	"strconv"

	"github.com/xgfone/harbor"
)

// BodyLimit is used to limit the maximum body of the request.
//
// If the header Content-Length or the buffered body exceeds maxBodySize,
// it returns 413 directly. For the streaming body, reading the body fails
// with 413 once the read size exceeds maxBodySize.
func BodyLimit(maxBodySize int64) Middleware {
	return harbor.MiddlewareFunc(func(c *harbor.Context) *harbor.Response {
		if maxBodySize < 1 {
			return c.Next()
		}

		req := c.Request()
		if cl := req.Header.Get(harbor.HeaderContentLength); cl != "" {
			if size, err := strconv.ParseInt(cl, 10, 64); err == nil && size > maxBodySize {
				return harbor.ErrRequestEntityTooLarge.Response()
			}
		}

		body := req.PeekBody()
		if !body.IsStreaming() {
			if int64(body.Len()) > maxBodySize {
				return harbor.ErrRequestEntityTooLarge.Response()
			}
			return c.Next()
		}

		req.SetBody(harbor.StreamBody(&limitedStream{stream: body.Stream(), limit: maxBodySize}))
		return c.Next()
	})
}

type limitedStream struct {
	stream harbor.ChunkStream
	read   int64
	limit  int64
}

func (s *limitedStream) Next(ctx context.Context) ([]byte, error) {
	chunk, err := s.stream.Next(ctx)
	s.read += int64(len(chunk))
	if s.read > s.limit {
		return nil, harbor.ErrRequestEntityTooLarge.Newf("the body exceeds %d bytes", s.limit)
	}
	return chunk, err
}
