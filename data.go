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

// Cloner is implemented by the application data which needs a custom copy
// for each request.
type Cloner interface {
	Clone() interface{}
}

// CloneData returns the copy of the application data for a request.
//
// If data implements Cloner, return data.Clone(). Or, return data itself,
// which is copied by value, so the pointer, map or channel fields of data
// are shared by all the requests.
func CloneData(data interface{}) interface{} {
	if c, ok := data.(Cloner); ok {
		return c.Clone()
	}
	return data
}
