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

package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/xgfone/harbor"
)

// CORSConfig is used to configure the CORS middleware.
type CORSConfig struct {
	// AllowOrigin defines a list of origins that may access the resource.
	//
	// Optional. Default: []string{"*"}.
	AllowOrigins []string `yaml:"allow_origins"`

	// AllowHeaders indicates a list of request headers used in response to
	// a preflight request to indicate which HTTP headers can be used when
	// making the actual request.
	//
	// Optional. Default: []string{}.
	AllowHeaders []string `yaml:"allow_headers"`

	// AllowMethods indicates methods allowed when accessing the resource.
	// This is used in response to a preflight request.
	//
	// Optional. Default: []string{"HEAD", "GET", "POST", "PUT", "PATCH", "DELETE"}.
	AllowMethods []string `yaml:"allow_methods"`

	// ExposeHeaders indicates a server whitelist headers that browsers are
	// allowed to access.
	//
	// Optional. Default: []string{}.
	ExposeHeaders []string `yaml:"expose_headers"`

	// AllowCredentials indicates whether or not the response to the request
	// can be exposed when the credentials flag is true.
	//
	// Optional. Default: false.
	AllowCredentials bool `yaml:"allow_credentials"`

	// MaxAge indicates how long (in seconds) the results of a preflight request
	// can be cached.
	//
	// Optional. Default: 0.
	MaxAge int `yaml:"max_age"`
}

// CORS returns a CORS middleware.
//
// The preflight request is answered by 204 without calling the endpoint.
func CORS(config *CORSConfig) Middleware {
	var conf CORSConfig
	if config != nil {
		conf = *config
	}

	if len(conf.AllowOrigins) == 0 {
		conf.AllowOrigins = []string{"*"}
	}
	if len(conf.AllowMethods) == 0 {
		conf.AllowMethods = []string{http.MethodHead, http.MethodGet,
			http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}
	}

	allowMethods := strings.Join(conf.AllowMethods, ",")
	allowHeaders := strings.Join(conf.AllowHeaders, ",")
	exposeHeaders := strings.Join(conf.ExposeHeaders, ",")
	maxAge := strconv.Itoa(conf.MaxAge)

	return harbor.MiddlewareFunc(func(c *harbor.Context) *harbor.Response {
		req := c.Request()
		origin := req.Header.Get(harbor.HeaderOrigin)
		allowOrigin := conf.allowOrigin(origin)

		// Simple request
		if req.Method != http.MethodOptions {
			resp := c.Next()
			resp.Header.Add(harbor.HeaderVary, harbor.HeaderOrigin)
			resp.Header.Set(harbor.HeaderAccessControlAllowOrigin, allowOrigin)
			if conf.AllowCredentials {
				resp.Header.Set(harbor.HeaderAccessControlAllowCredentials, "true")
			}
			if exposeHeaders != "" {
				resp.Header.Set(harbor.HeaderAccessControlExposeHeaders, exposeHeaders)
			}
			return resp
		}

		// Preflight request
		resp := harbor.NewResponse(http.StatusNoContent)
		resp.Header.Add(harbor.HeaderVary, harbor.HeaderOrigin)
		resp.Header.Add(harbor.HeaderVary, harbor.HeaderAccessControlRequestMethod)
		resp.Header.Add(harbor.HeaderVary, harbor.HeaderAccessControlRequestHeaders)
		resp.Header.Set(harbor.HeaderAccessControlAllowOrigin, allowOrigin)
		resp.Header.Set(harbor.HeaderAccessControlAllowMethods, allowMethods)

		if conf.AllowCredentials {
			resp.Header.Set(harbor.HeaderAccessControlAllowCredentials, "true")
		}

		if allowHeaders != "" {
			resp.Header.Set(harbor.HeaderAccessControlAllowHeaders, allowHeaders)
		} else if h := req.Header.Get(harbor.HeaderAccessControlRequestHeaders); h != "" {
			resp.Header.Set(harbor.HeaderAccessControlAllowHeaders, h)
		}

		if conf.MaxAge > 0 {
			resp.Header.Set(harbor.HeaderAccessControlMaxAge, maxAge)
		}

		return resp
	})
}

func (conf *CORSConfig) allowOrigin(origin string) (allowOrigin string) {
	for _, o := range conf.AllowOrigins {
		if o == "*" {
			if conf.AllowCredentials {
				allowOrigin = origin
			} else {
				allowOrigin = o
			}
		} else if o == origin {
			return o
		}

		if matchSubdomain(origin, o) {
			return origin
		}
	}
	return
}
