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

import "net/http"

// Preallocated header values for the content types set by the responders.
var (
	mimeApplicationJSONs      = []string{MIMEApplicationJSON}
	mimeApplicationForms      = []string{MIMEApplicationForm}
	mimeTextPlainCharsetUTF8s = []string{MIMETextPlainCharsetUTF8}
	mimeOctetStreams          = []string{MIMEOctetStream}
)

// SetContentType sets the header "Content-Type" to ct.
//
// Do nothing if ct is empty.
func SetContentType(header http.Header, ct string) {
	switch ct {
	case "":
	case MIMEApplicationJSON:
		header[HeaderContentType] = mimeApplicationJSONs
	case MIMEApplicationForm:
		header[HeaderContentType] = mimeApplicationForms
	case MIMETextPlainCharsetUTF8:
		header[HeaderContentType] = mimeTextPlainCharsetUTF8s
	case MIMEOctetStream:
		header[HeaderContentType] = mimeOctetStreams
	default:
		header.Set(HeaderContentType, ct)
	}
}
