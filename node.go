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
	"fmt"
	"strings"
)

// segment is a parsed segment of the route pattern.
type segment struct {
	literal string
	capture bool
	name    string
}

// parsePattern splits the pattern into the segments.
//
// The pattern must start with "/" and contain no empty segment except the
// trailing one. A segment is either a literal or a whole-segment capture
// "{}" or "{name}".
func parsePattern(pattern string) (segs []segment, err error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, fmt.Errorf("the pattern '%s' does not start with '/'", pattern)
	} else if pattern == "/" {
		return nil, nil
	}

	names := make(map[string]struct{}, 4)
	parts := strings.Split(pattern[1:], "/")
	segs = make([]segment, len(parts))
	for i, part := range parts {
		switch {
		case part == "":
			if i < len(parts)-1 {
				return nil, fmt.Errorf("the pattern '%s' contains the empty segment", pattern)
			}

		case part[0] == '{':
			if part[len(part)-1] != '}' {
				return nil, fmt.Errorf("the capture segment '%s' is not closed", part)
			}

			name := part[1 : len(part)-1]
			if strings.ContainsAny(name, "{}") {
				return nil, fmt.Errorf("invalid capture segment '%s'", part)
			} else if name != "" {
				if _, ok := names[name]; ok {
					return nil, fmt.Errorf("duplicate capture name '%s'", name)
				}
				names[name] = struct{}{}
			}

			segs[i] = segment{capture: true, name: name}
			continue

		case strings.ContainsAny(part, "{}"):
			return nil, fmt.Errorf("the capture must be a whole segment: '%s'", part)
		}

		segs[i] = segment{literal: part}
	}

	return
}

// splitPath splits the request path into the segments.
func splitPath(path string) []string {
	if path == "" || path == "/" {
		return nil
	} else if path[0] == '/' {
		path = path[1:]
	}
	return strings.Split(path, "/")
}

// node is a node of the compressed segment trie.
//
// The edge into a literal node holds a run of the literal segments, which
// is split when a new pattern diverges inside it. The capture node matches
// exactly one non-empty segment.
type node struct {
	segs     []string
	indices  []string // The first segment of each literal child
	children []*node
	capture  *node
	resource *resource
}

func (n *node) child(seg string) *node {
	for i := range n.indices {
		if n.indices[i] == seg {
			return n.children[i]
		}
	}
	return nil
}

func (n *node) addChild(child *node) {
	n.indices = append(n.indices, child.segs[0])
	n.children = append(n.children, child)
}

// insert walks or extends the trie by the segments and returns
// the terminal node.
func (n *node) insert(segs []segment) *node {
	for len(segs) > 0 {
		if segs[0].capture {
			if n.capture == nil {
				n.capture = new(node)
			}
			n, segs = n.capture, segs[1:]
			continue
		}

		// Collect the leading run of the literal segments.
		var lits []string
		for _, seg := range segs {
			if seg.capture {
				break
			}
			lits = append(lits, seg.literal)
		}

		child := n.child(lits[0])
		if child == nil {
			child = &node{segs: lits}
			n.addChild(child)
			n, segs = child, segs[len(lits):]
			continue
		}

		// Find the longest common run.
		i, max := 1, min(len(lits), len(child.segs))
		for i < max && lits[i] == child.segs[i] {
			i++
		}

		// Split edge
		if i < len(child.segs) {
			tail := &node{
				segs:     child.segs[i:],
				indices:  child.indices,
				children: child.children,
				capture:  child.capture,
				resource: child.resource,
			}

			child.segs = child.segs[:i:i]
			child.indices = nil
			child.children = nil
			child.capture = nil
			child.resource = nil
			child.addChild(tail)
		}

		n, segs = child, segs[i:]
	}

	return n
}

// match walks the trie by the path segments and returns the terminal node
// with the captured values, or nil if no node matches.
//
// The literal child is preferred over the capture child, and the choice
// is never revisited.
func (n *node) match(segs []string, values []string) (*node, []string) {
	for len(segs) > 0 {
		if child := n.child(segs[0]); child != nil {
			if !hasSegPrefix(segs, child.segs) {
				return nil, nil
			}
			n, segs = child, segs[len(child.segs):]
		} else if n.capture != nil && segs[0] != "" {
			values = append(values, segs[0])
			n, segs = n.capture, segs[1:]
		} else {
			return nil, nil
		}
	}

	return n, values
}

func hasSegPrefix(segs, prefix []string) bool {
	if len(segs) < len(prefix) {
		return false
	}
	for i := range prefix {
		if segs[i] != prefix[i] {
			return false
		}
	}
	return true
}

// walk calls f for each node with a resource.
func (n *node) walk(f func(*resource)) {
	if n.resource != nil {
		f(n.resource)
	}
	for _, child := range n.children {
		child.walk(f)
	}
	if n.capture != nil {
		n.capture.walk(f)
	}
}
