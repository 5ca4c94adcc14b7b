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
	"errors"
	"fmt"
	"net/http"
)

// Some non-HTTP errors.
var (
	ErrMissingBoundary = errors.New("missing the boundary of the multipart form")
	ErrMissingCapture  = errors.New("missing the path capture")
	ErrInvalidUTF8     = errors.New("the body is not valid UTF-8")
	ErrAppDataType     = errors.New("the app data has a different type")
	ErrNilResponse     = errors.New("the middleware returns a nil response")
	ErrRouterFrozen    = errors.New("the router is frozen after serving")
)

// Some HTTP errors.
var (
	ErrBadRequest            = NewHTTPError(http.StatusBadRequest)
	ErrUnauthorized          = NewHTTPError(http.StatusUnauthorized)
	ErrForbidden             = NewHTTPError(http.StatusForbidden)
	ErrNotFound              = NewHTTPError(http.StatusNotFound)
	ErrMethodNotAllowed      = NewHTTPError(http.StatusMethodNotAllowed)
	ErrRequestTimeout        = NewHTTPError(http.StatusRequestTimeout)
	ErrConflict              = NewHTTPError(http.StatusConflict)
	ErrRequestEntityTooLarge = NewHTTPError(http.StatusRequestEntityTooLarge)
	ErrUnsupportedMediaType  = NewHTTPError(http.StatusUnsupportedMediaType)
	ErrTooManyRequests       = NewHTTPError(http.StatusTooManyRequests)
	ErrInternalServerError   = NewHTTPError(http.StatusInternalServerError)
	ErrServiceUnavailable    = NewHTTPError(http.StatusServiceUnavailable)
)

// HTTPError represents an error with the HTTP status code.
//
// When an endpoint or an extractor returns it, the response carries Code
// and an empty body.
type HTTPError struct {
	Code int
	Err  error
	CT   string // Content-Type, only used when the body is not empty
	Body []byte
}

// NewHTTPError returns a new HTTPError.
func NewHTTPError(code int, msg ...string) HTTPError {
	if len(msg) > 0 {
		return HTTPError{Code: code, Err: errors.New(msg[0])}
	}
	return HTTPError{Code: code}
}

func (e HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %s", e.Code, http.StatusText(e.Code), e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, http.StatusText(e.Code))
}

// Unwrap unwraps the inner error.
func (e HTTPError) Unwrap() error { return e.Err }

// New returns a new HTTPError with the new inner error.
func (e HTTPError) New(err error) HTTPError { e.Err = err; return e }

// Newf is equal to New(fmt.Errorf(msg, args...)).
func (e HTTPError) Newf(msg string, args ...interface{}) HTTPError {
	if len(args) == 0 {
		return e.New(errors.New(msg))
	}
	return e.New(fmt.Errorf(msg, args...))
}

// WithBody returns a new HTTPError with the response body and its Content-Type.
func (e HTTPError) WithBody(ct string, body []byte) HTTPError {
	e.CT, e.Body = ct, body
	return e
}

// Response converts the error to a response.
func (e HTTPError) Response() *Response {
	resp := NewResponse(e.Code)
	if len(e.Body) > 0 {
		SetContentType(resp.Header, e.CT)
		resp.Body = BytesBody(e.Body)
	}
	return resp
}

// RouteError represents an error when registering a route.
type RouteError struct {
	Method  string
	Pattern string
	Err     error
}

func (re RouteError) Error() string {
	return fmt.Sprintf("%s: method=%s, pattern=%s", re.Err, re.Method, re.Pattern)
}

// Unwrap unwraps the inner error.
func (re RouteError) Unwrap() error { return re.Err }
