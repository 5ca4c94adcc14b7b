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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/xgfone/harbor/binder"
)

// Response is an outbound response independent of the transport.
type Response struct {
	Status int
	Header http.Header
	Body   Body
}

// NewResponse returns a new response with the status code and an empty body.
func NewResponse(status int) *Response {
	return &Response{Status: status, Header: make(http.Header)}
}

// Respond implements the interface Responder.
func (r *Response) Respond() (*Response, error) {
	if r == nil {
		return nil, ErrNilResponse
	}
	return r, nil
}

// SetHeader sets the header and returns itself.
func (r *Response) SetHeader(key, value string) *Response {
	r.Header.Set(key, value)
	return r
}

// SetBody resets the body and returns itself.
func (r *Response) SetBody(body Body) *Response {
	r.Body = body
	return r
}

// Responder is used to convert a value into a response.
type Responder interface {
	Respond() (*Response, error)
}

// ResponderFunc is a function implementing the interface Responder.
type ResponderFunc func() (*Response, error)

// Respond implements the interface Responder.
func (f ResponderFunc) Respond() (*Response, error) { return f() }

// Text returns a responder with the status code 200 and the text body.
func Text(s string) Responder {
	return Blob(MIMETextPlainCharsetUTF8, []byte(s))
}

// Blob returns a responder with the status code 200, the Content-Type ct
// and the body b.
func Blob(ct string, b []byte) Responder {
	return ResponderFunc(func() (*Response, error) {
		resp := NewResponse(http.StatusOK)
		SetContentType(resp.Header, ct)
		resp.Body = BytesBody(b)
		return resp, nil
	})
}

// JSON returns a responder which serializes v to JSON.
func JSON(v interface{}) Responder {
	return ResponderFunc(func() (*Response, error) {
		buf := getBuffer()
		defer putBuffer(buf)

		if err := json.NewEncoder(buf).Encode(v); err != nil {
			return nil, err
		}

		// Remove the trailing newline added by json.Encoder.
		data := make([]byte, buf.Len()-1)
		copy(data, buf.Bytes())
		return Blob(MIMEApplicationJSON, data).Respond()
	})
}

// Form returns a responder which serializes v to the urlencoded form.
//
// v may be url.Values, map[string]string or a struct with the tag "form".
func Form(v interface{}) Responder {
	return ResponderFunc(func() (*Response, error) {
		values, err := binder.EncodeURLValues(v, "form")
		if err != nil {
			return nil, err
		}
		return Blob(MIMEApplicationForm, []byte(values.Encode())).Respond()
	})
}

// Status returns a responder with the status code and an empty body.
func Status(code int) Responder {
	return ResponderFunc(func() (*Response, error) {
		return NewResponse(code), nil
	})
}

// Stream returns a responder with the status code 200 and a streaming body.
func Stream(ct string, s ChunkStream) Responder {
	return ResponderFunc(func() (*Response, error) {
		resp := NewResponse(http.StatusOK)
		SetContentType(resp.Header, ct)
		resp.Body = StreamBody(s)
		return resp, nil
	})
}

// IntoResponse converts the result of an endpoint into a response.
//
// If err is not nil, the response is the empty one with the status code
// of HTTPError, or 500 for other errors. Or, v is converted as follow:
//
//	nil       => 200 with the empty body
//	string    => 200 with the text body
//	[]byte    => 200 with the octet stream body
//	int       => the status code with the empty body
//	Responder => the response returned by Respond
//	others    => 200 with the JSON body
//
// A responder failing to serialize produces 500.
func IntoResponse(v interface{}, err error) *Response {
	if err != nil {
		return ErrorResponse(err)
	}

	var r Responder
	switch data := v.(type) {
	case nil:
		return NewResponse(http.StatusOK)
	case *Response:
		if data == nil {
			return ErrorResponse(ErrNilResponse)
		}
		return data
	case Responder:
		r = data
	case string:
		r = Text(data)
	case []byte:
		r = Blob(MIMEOctetStream, data)
	case int:
		return NewResponse(data)
	default:
		r = JSON(data)
	}

	resp, err := r.Respond()
	if err != nil {
		return ErrorResponse(err)
	} else if resp == nil {
		return ErrorResponse(ErrNilResponse)
	}
	return resp
}

// ErrorResponse converts the error to a response.
//
// HTTPError is converted by its method Response, and others are 500.
func ErrorResponse(err error) *Response {
	var he HTTPError
	if errors.As(err, &he) {
		return he.Response()
	}
	return NewResponse(http.StatusInternalServerError)
}

// IsServerError reports whether the response status is 5xx.
func (r *Response) IsServerError() bool { return r.Status >= 500 }

func (r *Response) String() string {
	return fmt.Sprintf("%d %s", r.Status, http.StatusText(r.Status))
}
