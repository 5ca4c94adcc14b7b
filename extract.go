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
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/xgfone/harbor/binder"
)

// Extractor is used to extract an endpoint argument from the request context.
//
// The returned error should be an HTTPError, which is converted to
// the response. Any other error is converted to 500.
type Extractor[T any] interface {
	Extract(c *Context) (T, error)

	// ConsumesBody reports whether the extractor takes the request body.
	ConsumesBody() bool
}

// ExtractorFunc is a function implementing the interface Extractor,
// which does not consume the body.
type ExtractorFunc[T any] func(c *Context) (T, error)

// Extract implements the interface Extractor.
func (f ExtractorFunc[T]) Extract(c *Context) (T, error) { return f(c) }

// ConsumesBody implements the interface Extractor.
func (f ExtractorFunc[T]) ConsumesBody() bool { return false }

// BodyExtractorFunc is a function implementing the interface Extractor,
// which consumes the body.
type BodyExtractorFunc[T any] func(c *Context) (T, error)

// Extract implements the interface Extractor.
func (f BodyExtractorFunc[T]) Extract(c *Context) (T, error) { return f(c) }

// ConsumesBody implements the interface Extractor.
func (f BodyExtractorFunc[T]) ConsumesBody() bool { return true }

// AppData returns an extractor to get the application data of the type T.
//
// If the type of the application data is not T, it fails with 500.
func AppData[T any]() Extractor[T] {
	return ExtractorFunc[T](func(c *Context) (v T, err error) {
		v, ok := c.AppData().(T)
		if !ok {
			err = ErrInternalServerError.Newf("%s: expect %T, but got %T",
				ErrAppDataType, v, c.AppData())
		}
		return
	})
}

// Path returns an extractor to parse the index-th path capture,
// which starts with 0, as the type T.
//
// If the capture does not exist or cannot be parsed as T, it fails with 400.
func Path[T any](index int) Extractor[T] {
	return ExtractorFunc[T](func(c *Context) (v T, err error) {
		value, ok := c.RouteMatch().Index(index)
		if !ok {
			err = ErrBadRequest.New(fmt.Errorf("%w: index=%d", ErrMissingCapture, index))
			return
		}
		err = parseCapture(&v, value)
		return
	})
}

// PathNamed returns an extractor to parse the path capture named name
// as the type T.
func PathNamed[T any](name string) Extractor[T] {
	return ExtractorFunc[T](func(c *Context) (v T, err error) {
		value, ok := c.RouteMatch().Get(name)
		if !ok {
			err = ErrBadRequest.New(fmt.Errorf("%w: name=%s", ErrMissingCapture, name))
			return
		}
		err = parseCapture(&v, value)
		return
	})
}

func parseCapture(ptr interface{}, value string) error {
	if err := binder.SetValue(reflect.ValueOf(ptr).Elem(), value); err != nil {
		return ErrBadRequest.New(err)
	}
	return nil
}

// Query returns an extractor to bind the url query to the struct T
// by the struct tag "query".
func Query[T any]() Extractor[T] {
	return ExtractorFunc[T](func(c *Context) (v T, err error) {
		if err = binder.BindURLValues(&v, c.Request().Query(), "query"); err != nil {
			err = ErrBadRequest.New(err)
		}
		return
	})
}

// Header returns an extractor to get the value of the request header.
//
// Return "" if the header does not exist.
func Header(name string) Extractor[string] {
	return ExtractorFunc[string](func(c *Context) (string, error) {
		return c.Request().Header.Get(name), nil
	})
}

// readBody takes the body from the request and reads all of it.
func readBody(c *Context) ([]byte, error) {
	body := c.Request().TakeBody()
	data, err := body.ReadAll(c.Context())
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, context.DeadlineExceeded):
		return nil, ErrRequestTimeout.New(err)
	default:
		var he HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, ErrBadRequest.New(err)
	}
}

// BodyJSON returns an extractor to decode the JSON body to T.
func BodyJSON[T any]() Extractor[T] {
	return BodyExtractorFunc[T](func(c *Context) (v T, err error) {
		data, err := readBody(c)
		if err != nil {
			return
		}

		if err = json.Unmarshal(data, &v); err != nil {
			err = ErrBadRequest.New(err)
		}
		return
	})
}

// BodyForm returns an extractor to decode the urlencoded form body to T
// by the struct tag "form".
//
// T may be url.Values.
func BodyForm[T any]() Extractor[T] {
	return BodyExtractorFunc[T](func(c *Context) (v T, err error) {
		data, err := readBody(c)
		if err != nil {
			return
		}

		values, err := url.ParseQuery(string(data))
		if err != nil {
			err = ErrBadRequest.New(err)
			return
		}

		if vs, ok := any(&v).(*url.Values); ok {
			*vs = values
		} else if err = binder.BindURLValues(&v, values, "form"); err != nil {
			err = ErrBadRequest.New(err)
		}
		return
	})
}

// BodyString returns an extractor to read the body as the UTF-8 string.
//
// If the body is not valid UTF-8, it fails with 400.
func BodyString() Extractor[string] {
	return BodyExtractorFunc[string](func(c *Context) (string, error) {
		data, err := readBody(c)
		if err != nil {
			return "", err
		} else if !utf8.Valid(data) {
			return "", ErrBadRequest.New(ErrInvalidUTF8)
		}
		return string(data), nil
	})
}

// BodyStringLossy returns an extractor to read the body as the string,
// which replaces the invalid UTF-8 sequences with U+FFFD.
func BodyStringLossy() Extractor[string] {
	return BodyExtractorFunc[string](func(c *Context) (string, error) {
		data, err := readBody(c)
		if err != nil {
			return "", err
		}
		return strings.ToValidUTF8(string(data), string(utf8.RuneError)), nil
	})
}

// BodyBytes returns an extractor to read the raw body.
func BodyBytes() Extractor[[]byte] {
	return BodyExtractorFunc[[]byte](readBody)
}

// MultipartForm is the multipart body of the request.
type MultipartForm struct {
	*multipart.Reader
	Boundary string
}

// BodyMultipart returns an extractor to read the multipart body.
//
// The boundary comes from the parameter of the header Content-Type.
// If it is missing, it fails with 400 and does not touch the body.
func BodyMultipart() Extractor[*MultipartForm] {
	return BodyExtractorFunc[*MultipartForm](func(c *Context) (*MultipartForm, error) {
		boundary := Boundary(c.Request().Header.Get(HeaderContentType))
		if boundary == "" {
			return nil, ErrBadRequest.New(ErrMissingBoundary)
		}

		data, err := readBody(c)
		if err != nil {
			return nil, err
		}

		reader := multipart.NewReader(bytes.NewReader(data), boundary)
		return &MultipartForm{Reader: reader, Boundary: boundary}, nil
	})
}
