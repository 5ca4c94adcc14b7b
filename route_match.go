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

// Capture is a path segment matched by a capture placeholder.
type Capture struct {
	Name  string // Empty for the anonymous placeholder "{}"
	Value string
}

// RouteMatch is the ordered captures produced by the router.
type RouteMatch struct {
	captures []Capture
}

// NewRouteMatch returns a new RouteMatch with the captures.
func NewRouteMatch(captures ...Capture) RouteMatch {
	return RouteMatch{captures: captures}
}

// Len returns the number of the captures.
func (m RouteMatch) Len() int { return len(m.captures) }

// Index returns the value of the i-th capture, which starts with 0.
//
// Return ("", false) if i is out of range.
func (m RouteMatch) Index(i int) (string, bool) {
	if i < 0 || i >= len(m.captures) {
		return "", false
	}
	return m.captures[i].Value, true
}

// Get returns the value of the capture named name.
func (m RouteMatch) Get(name string) (string, bool) {
	for i := len(m.captures) - 1; i >= 0; i-- {
		if m.captures[i].Name == name {
			return m.captures[i].Value, true
		}
	}
	return "", false
}

// Values returns the values of all the captures in order.
func (m RouteMatch) Values() []string {
	values := make([]string, len(m.captures))
	for i := range m.captures {
		values[i] = m.captures[i].Value
	}
	return values
}

// Each calls f for each capture in order.
func (m RouteMatch) Each(f func(Capture)) {
	for i := range m.captures {
		f(m.captures[i])
	}
}
