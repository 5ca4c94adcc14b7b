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
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/xgfone/harbor"
)

// Gzip returns a middleware to compress the response body by GZIP
// if the client accepts it.
//
// The buffered body is compressed at once, and the streaming body is
// compressed chunk by chunk. The empty body, the body with Content-Encoding
// and the status codes 204 and 304 are not compressed.
func Gzip(level ...int) Middleware {
	glevel := gzip.DefaultCompression
	if len(level) > 0 {
		glevel = level[0]
	}

	if _, err := gzip.NewWriterLevel(io.Discard, glevel); err != nil {
		panic(err)
	}

	return harbor.MiddlewareFunc(func(c *harbor.Context) *harbor.Response {
		if !strings.Contains(c.Request().Header.Get(harbor.HeaderAcceptEncoding), "gzip") {
			return c.Next()
		}

		resp := c.Next()
		resp.Header.Add(harbor.HeaderVary, harbor.HeaderAcceptEncoding)
		if resp.Header.Get(harbor.HeaderContentEncoding) != "" ||
			resp.Status == http.StatusNoContent ||
			resp.Status == http.StatusNotModified ||
			resp.Body.Len() == 0 {
			return resp
		}

		if data, ok := resp.Body.Bytes(); ok {
			if resp.Header.Get(harbor.HeaderContentType) == "" {
				resp.Header.Set(harbor.HeaderContentType, http.DetectContentType(data))
			}

			var buf bytes.Buffer
			w, _ := gzip.NewWriterLevel(&buf, glevel)
			if _, err := w.Write(data); err != nil {
				c.Errorf("fail to compress the response body: %s", err)
				return resp
			}
			w.Close()
			resp.Body = harbor.BytesBody(buf.Bytes())
		} else {
			stream := &gzipStream{src: resp.Body.Stream()}
			stream.w, _ = gzip.NewWriterLevel(&stream.buf, glevel)
			resp.Body = harbor.StreamBody(stream)
		}

		resp.Header.Set(harbor.HeaderContentEncoding, "gzip")
		resp.Header.Del(harbor.HeaderContentLength)
		return resp
	})
}

type gzipStream struct {
	src  harbor.ChunkStream
	buf  bytes.Buffer
	w    *gzip.Writer
	done bool
}

func (s *gzipStream) Next(ctx context.Context) ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}

	for {
		chunk, err := s.src.Next(ctx)
		if len(chunk) > 0 {
			if _, werr := s.w.Write(chunk); werr != nil {
				return nil, werr
			} else if werr = s.w.Flush(); werr != nil {
				return nil, werr
			}
		}

		switch {
		case errors.Is(err, io.EOF):
			if cerr := s.w.Close(); cerr != nil {
				return nil, cerr
			}
			s.done = true
			return s.take(), nil

		case err != nil:
			return nil, err

		case s.buf.Len() > 0:
			return s.take(), nil
		}
	}
}

func (s *gzipStream) take() []byte {
	data := make([]byte, s.buf.Len())
	copy(data, s.buf.Bytes())
	s.buf.Reset()
	return data
}
