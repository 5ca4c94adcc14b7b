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

// Option is used to configure Server.
type Option func(*Server)

// SetName sets the name, which is "" by default.
func SetName(name string) Option {
	return func(s *Server) {
		s.name = name
	}
}

// SetDebug sets whether to enable the debug mode, which is false by default.
//
// In the debug mode, the server logs the request whose body is taken
// more than once.
func SetDebug(debug bool) Option {
	return func(s *Server) {
		s.debug = debug
	}
}

// SetLogger sets the Logger, which is `NewLoggerFromWriter(os.Stderr, "")`
// by default.
func SetLogger(log Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.logger = log
		}
	}
}

// SetNotFound sets the endpoint to handle the request which matches
// no route, which returns 404 with the empty body by default.
func SetNotFound(ep Endpoint) Option {
	return func(s *Server) {
		if ep != nil {
			s.notFound = ep
		}
	}
}

// SetMethodNotAllowed sets the endpoint to handle the request whose path
// matches a route but the method does not.
//
// It is nil by default, and such a request is handled as not found.
// If set, the response has the header "Allow" listing the registered methods.
func SetMethodNotAllowed(ep Endpoint) Option {
	return func(s *Server) {
		s.methodNotAllowed = ep
	}
}

// SetBufferSize sets the initial size of the pooled buffers, which are
// used to collect the body and encode the JSON response.
func SetBufferSize(size int) Option {
	return func(s *Server) {
		ResetBufferPool(size)
	}
}
