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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// DefaultChunkSize is the size of the chunks read from a reader-backed body.
var DefaultChunkSize = 4096

// ChunkStream is a lazy, ordered sequence of body chunks.
//
// Next returns io.EOF after the last chunk. The returned chunk is only valid
// until the next call of Next.
type ChunkStream interface {
	Next(ctx context.Context) ([]byte, error)
}

// ChunkStreamFunc is a function implementing the interface ChunkStream.
type ChunkStreamFunc func(ctx context.Context) ([]byte, error)

// Next implements the interface ChunkStream.
func (f ChunkStreamFunc) Next(ctx context.Context) ([]byte, error) { return f(ctx) }

// Body is the raw content of a request or a response.
//
// It is either a fixed buffer or a stream of chunks. The zero value is
// an empty buffered body.
type Body struct {
	buf    []byte
	stream ChunkStream
}

// EmptyBody returns an empty buffered body.
func EmptyBody() Body { return Body{} }

// BytesBody returns a buffered body with b.
func BytesBody(b []byte) Body { return Body{buf: b} }

// StringBody returns a buffered body with s.
func StringBody(s string) Body { return Body{buf: []byte(s)} }

// StreamBody returns a streaming body reading the chunks from s.
func StreamBody(s ChunkStream) Body {
	if s == nil {
		return Body{}
	}
	return Body{stream: s}
}

// ReaderBody returns a streaming body which reads the chunks from r.
//
// It is used to wrap the raw inbound data from the transport.
func ReaderBody(r io.Reader) Body {
	if r == nil || r == http.NoBody {
		return Body{}
	}
	return Body{stream: &readerStream{r: r, size: DefaultChunkSize}}
}

// ChunksBody returns a streaming body yielding the given chunks in order.
func ChunksBody(chunks ...[]byte) Body {
	var index int
	return StreamBody(ChunkStreamFunc(func(context.Context) ([]byte, error) {
		if index >= len(chunks) {
			return nil, io.EOF
		}
		index++
		return chunks[index-1], nil
	}))
}

// IsStreaming reports whether the body is a stream of chunks.
func (b Body) IsStreaming() bool { return b.stream != nil }

// Len returns the length of the buffered body, or -1 for a streaming body.
func (b Body) Len() int {
	if b.stream != nil {
		return -1
	}
	return len(b.buf)
}

// Bytes returns the buffered content and true, or nil and false
// if the body is streaming.
func (b Body) Bytes() ([]byte, bool) {
	if b.stream != nil {
		return nil, false
	}
	return b.buf, true
}

// Stream returns the chunk stream of the streaming body,
// or nil for the buffered body.
func (b Body) Stream() ChunkStream { return b.stream }

// ReadAll collects the full content of the body.
//
// For the buffered body, it returns a copy of the buffer. For the streaming
// body, it reads every chunk in order and concatenates them, and fails on
// the first chunk error or when ctx is done.
func (b Body) ReadAll(ctx context.Context) (data []byte, err error) {
	if b.stream == nil {
		data = make([]byte, len(b.buf))
		copy(data, b.buf)
		return
	}

	buf := getBuffer()
	defer putBuffer(buf)

	for {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		var chunk []byte
		chunk, err = nextChunk(ctx, b.stream)
		buf.Write(chunk)

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			data = make([]byte, buf.Len())
			copy(data, buf.Bytes())
			return data, nil
		default:
			return nil, err
		}
	}
}

// Reader converts the body to an io.Reader for the transport.
//
// A buffered body is returned as *bytes.Reader so that its length is known.
func (b Body) Reader(ctx context.Context) io.Reader {
	if b.stream == nil {
		return bytes.NewReader(b.buf)
	}
	return &streamReader{ctx: ctx, stream: b.stream}
}

type readerStream struct {
	r    io.Reader
	buf  []byte
	size int
	err  error
}

func (s *readerStream) Next(ctx context.Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}

	if s.buf == nil {
		if s.size <= 0 {
			s.size = 4096
		}
		s.buf = make([]byte, s.size)
	}

	for {
		n, err := s.r.Read(s.buf)
		if err != nil {
			s.err = err
		}

		if n > 0 {
			return s.buf[:n], nil
		} else if err != nil {
			return nil, err
		} else if err = ctx.Err(); err != nil {
			return nil, err
		}
	}
}

type streamReader struct {
	ctx    context.Context
	stream ChunkStream
	chunk  []byte
	err    error
}

func (r *streamReader) Read(p []byte) (n int, err error) {
	for len(r.chunk) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.chunk, r.err = nextChunk(r.ctx, r.stream)
	}

	n = copy(p, r.chunk)
	r.chunk = r.chunk[n:]
	return
}

// nextChunk pulls the next chunk from s, and converts the panic
// of s into an error.
func nextChunk(ctx context.Context, s ChunkStream) (chunk []byte, err error) {
	defer func() {
		if v := recover(); v != nil {
			chunk, err = nil, fmt.Errorf("the chunk stream panics: %v", v)
		}
	}()
	return s.Next(ctx)
}
