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
	"mime"
	"strings"

	"github.com/xgfone/go-tools/v6/pools"
)

var bufpool = pools.NewBufferPool(1024)

func getBuffer() *bytes.Buffer    { return bufpool.Get() }
func putBuffer(buf *bytes.Buffer) { buf.Reset(); bufpool.Put(buf) }

// ResetBufferPool resets the initial size of the pooled buffers, which are
// used to collect the streaming bodies and to encode the JSON responses.
//
// It should be called before serving any request.
func ResetBufferPool(size int) {
	if size > 0 {
		bufpool = pools.NewBufferPool(size)
	}
}

// ContentType returns the media type of the Content-Type value ct
// without the parameters.
func ContentType(ct string) string {
	if index := strings.IndexByte(ct, ';'); index > -1 {
		ct = ct[:index]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// Boundary returns the boundary parameter of the multipart Content-Type ct.
//
// Return "" if ct does not carry the parameter "boundary".
func Boundary(ct string) string {
	if ct == "" {
		return ""
	}

	if _, params, err := mime.ParseMediaType(ct); err == nil {
		return params["boundary"]
	}

	// Fall back to the raw parameter for the malformed media type.
	const key = "boundary="
	if index := strings.Index(ct, key); index > -1 {
		boundary := ct[index+len(key):]
		if end := strings.IndexByte(boundary, ';'); end > -1 {
			boundary = boundary[:end]
		}
		return strings.Trim(strings.TrimSpace(boundary), `"`)
	}
	return ""
}
