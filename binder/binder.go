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

// Package binder binds the url values, such as the query or the urlencoded
// form, to a struct, and encodes a struct back to the url values.
package binder

import (
	"encoding"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/xgfone/go-tools/v6/function"
)

// BindUnmarshaler is the interface used to wrap the UnmarshalParam method
// to unmarshal itself from the string parameter.
type BindUnmarshaler interface {
	// Unmarshal decodes the argument param and assigns to itself.
	UnmarshalBind(param string) error
}

// BindURLValues parses the data and assign to the pointer ptr to a struct.
//
// Notice: tag is the name of the struct tag. such as "form", "query", etc.
// If the tag value is equal to "-", ignore this field. If the tag is missing,
// the field name is used, which is matched case-insensitively.
//
// Support the types of the struct fields as follow:
//   - bool
//   - int, int8, int16, int32, int64
//   - uint, uint8, uint16, uint32, uint64
//   - float32, float64
//   - string
//   - time.Time     // RFC3339
//   - time.Duration // use time.ParseDuration()
//
// And any pointer or slice of the types above, and
//   - interface { UnmarshalBind(param string) error }
//   - encoding.TextUnmarshaler
func BindURLValues(ptr interface{}, data url.Values, tag string) error {
	value := reflect.ValueOf(ptr)
	if value.Kind() != reflect.Ptr || value.IsNil() {
		return fmt.Errorf("%T is not a pointer", ptr)
	}
	return bindURLValues(value.Elem(), data, tag)
}

func bindURLValues(val reflect.Value, data url.Values, tag string) (err error) {
	valType := val.Type()
	if valType.Kind() != reflect.Struct {
		return errors.New("binding element must be a struct")
	}

	for i, num := 0, valType.NumField(); i < num; i++ {
		field := valType.Field(i)
		fieldName, named := fieldTagName(field, tag)
		if fieldName == "-" {
			continue
		}

		fieldValue := val.Field(i)
		if field.Anonymous && fieldValue.Kind() == reflect.Struct && !named {
			if err = bindURLValues(fieldValue, data, tag); err != nil {
				return err
			}
			continue
		} else if !fieldValue.CanSet() {
			continue
		}

		inputs, exists := data[fieldName]
		if !exists && !named {
			inputs, exists = lookupFold(data, fieldName)
		}
		if !exists || len(inputs) == 0 {
			continue
		}

		if isSlice(fieldValue) {
			num := len(inputs)
			slice := reflect.MakeSlice(field.Type, num, num)
			for j := 0; j < num; j++ {
				if err = SetValue(slice.Index(j), inputs[j]); err != nil {
					return fmt.Errorf("%s: %w", fieldName, err)
				}
			}
			fieldValue.Set(slice)
		} else if err = SetValue(fieldValue, inputs[0]); err != nil {
			return fmt.Errorf("%s: %w", fieldName, err)
		}
	}

	return
}

func fieldTagName(field reflect.StructField, tag string) (name string, named bool) {
	name, _, _ = strings.Cut(field.Tag.Get(tag), ",")
	if name = strings.TrimSpace(name); name != "" {
		return name, true
	}
	return field.Name, false
}

func lookupFold(data url.Values, name string) ([]string, bool) {
	for key, values := range data {
		if strings.EqualFold(key, name) {
			return values, true
		}
	}
	return nil, false
}

var (
	binderType    = reflect.TypeOf((*BindUnmarshaler)(nil)).Elem()
	textType      = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	durationType  = reflect.TypeOf(time.Duration(0))
	marshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

func isSlice(value reflect.Value) bool {
	if value.Kind() != reflect.Slice || value.Type().Elem().Kind() == reflect.Uint8 {
		return false
	}
	ptr := reflect.PointerTo(value.Type())
	return !ptr.Implements(binderType) && !ptr.Implements(textType)
}

// The builtin types which the named types are converted from.
var basicTypes = map[reflect.Kind]reflect.Type{
	reflect.Bool:    reflect.TypeOf(false),
	reflect.Int:     reflect.TypeOf(int(0)),
	reflect.Int8:    reflect.TypeOf(int8(0)),
	reflect.Int16:   reflect.TypeOf(int16(0)),
	reflect.Int32:   reflect.TypeOf(int32(0)),
	reflect.Int64:   reflect.TypeOf(int64(0)),
	reflect.Uint:    reflect.TypeOf(uint(0)),
	reflect.Uint8:   reflect.TypeOf(uint8(0)),
	reflect.Uint16:  reflect.TypeOf(uint16(0)),
	reflect.Uint32:  reflect.TypeOf(uint32(0)),
	reflect.Uint64:  reflect.TypeOf(uint64(0)),
	reflect.Float32: reflect.TypeOf(float32(0)),
	reflect.Float64: reflect.TypeOf(float64(0)),
	reflect.String:  reflect.TypeOf(""),
}

// SetValue parses the input and assigns it to the settable value.
//
// An empty input leaves the value unchanged, except for the string.
func SetValue(value reflect.Value, input string) error {
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			value.Set(reflect.New(value.Type().Elem()))
		}
		if ok, err := unmarshal(value, input); ok {
			return err
		}
		return SetValue(value.Elem(), input)

	case reflect.Interface:
		if value.IsNil() {
			return errors.New("the interface value must not be nil")
		}
		if u, ok := value.Interface().(BindUnmarshaler); ok {
			return u.UnmarshalBind(input)
		}
		return fmt.Errorf("unknown field type '%s'", value.Type())
	}

	if ok, err := unmarshal(value.Addr(), input); ok {
		return err
	}

	switch {
	case value.Kind() == reflect.String:
		value.SetString(input)
		return nil
	case value.Kind() == reflect.Slice && value.Type().Elem().Kind() == reflect.Uint8:
		value.SetBytes([]byte(input))
		return nil
	case input == "":
		return nil
	case value.Type() == durationType:
		v, err := time.ParseDuration(input)
		if err == nil {
			value.SetInt(int64(v))
		}
		return err
	}

	basic, ok := basicTypes[value.Kind()]
	if !ok {
		return fmt.Errorf("unknown field type '%s'", value.Type())
	}

	tmp := reflect.New(basic)
	if err := function.SetValue(tmp.Interface(), input); err != nil {
		return err
	}
	value.Set(tmp.Elem().Convert(value.Type()))
	return nil
}

func unmarshal(ptr reflect.Value, input string) (ok bool, err error) {
	switch u := ptr.Interface().(type) {
	case BindUnmarshaler:
		return true, u.UnmarshalBind(input)
	case encoding.TextUnmarshaler:
		if input == "" {
			return true, nil
		}
		return true, u.UnmarshalText([]byte(input))
	default:
		return false, nil
	}
}

// EncodeURLValues encodes the struct v, or the pointer to it, to url.Values.
//
// It is the inverse of BindURLValues with the same tag. The zero pointers
// and the fields with the tag "-" are omitted.
func EncodeURLValues(v interface{}, tag string) (url.Values, error) {
	switch data := v.(type) {
	case url.Values:
		return data, nil
	case map[string][]string:
		return url.Values(data), nil
	case map[string]string:
		values := make(url.Values, len(data))
		for key, value := range data {
			values.Set(key, value)
		}
		return values, nil
	}

	value := reflect.ValueOf(v)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return url.Values{}, nil
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%T is not a struct", v)
	}

	values := make(url.Values, value.NumField())
	return values, encodeURLValues(values, value, tag)
}

func encodeURLValues(values url.Values, val reflect.Value, tag string) error {
	valType := val.Type()
	for i, num := 0, valType.NumField(); i < num; i++ {
		field := valType.Field(i)
		fieldName, named := fieldTagName(field, tag)
		if fieldName == "-" || (!field.IsExported() && !field.Anonymous) {
			continue
		}

		fieldValue := val.Field(i)
		if field.Anonymous && fieldValue.Kind() == reflect.Struct && !named {
			if err := encodeURLValues(values, fieldValue, tag); err != nil {
				return err
			}
			continue
		} else if !field.IsExported() {
			continue
		}

		if fieldValue.Kind() == reflect.Slice && fieldValue.Type().Elem().Kind() != reflect.Uint8 {
			for j, _len := 0, fieldValue.Len(); j < _len; j++ {
				s, ok, err := formatValue(fieldValue.Index(j))
				if err != nil {
					return fmt.Errorf("%s: %w", fieldName, err)
				} else if ok {
					values.Add(fieldName, s)
				}
			}
			continue
		}

		s, ok, err := formatValue(fieldValue)
		if err != nil {
			return fmt.Errorf("%s: %w", fieldName, err)
		} else if ok {
			values.Set(fieldName, s)
		}
	}
	return nil
}

func formatValue(value reflect.Value) (s string, ok bool, err error) {
	for value.Kind() == reflect.Ptr || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return
		}
		value = value.Elem()
	}

	if value.Type().Implements(marshalerType) {
		var b []byte
		b, err = value.Interface().(encoding.TextMarshaler).MarshalText()
		return string(b), err == nil, err
	}

	switch value.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(value.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if value.Type() == durationType {
			return time.Duration(value.Int()).String(), true, nil
		}
		return strconv.FormatInt(value.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(value.Uint(), 10), true, nil
	case reflect.Float32:
		return strconv.FormatFloat(value.Float(), 'f', -1, 32), true, nil
	case reflect.Float64:
		return strconv.FormatFloat(value.Float(), 'f', -1, 64), true, nil
	case reflect.String:
		return value.String(), true, nil
	case reflect.Slice:
		if value.Type().Elem().Kind() == reflect.Uint8 {
			return string(value.Bytes()), true, nil
		}
	}

	return "", false, fmt.Errorf("unsupported field type '%s'", value.Type())
}
