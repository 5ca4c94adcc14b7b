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
	"strconv"
	"sync"
	"time"

	"github.com/xgfone/harbor"
	"golang.org/x/time/rate"
)

// RateLimitConfig is used to configure the RateLimit middleware.
type RateLimitConfig struct {
	// RPS is the number of the requests allowed per second for each key.
	//
	// Optional. Default: 5.
	RPS float64 `yaml:"rps"`

	// Burst is the maximum number of the requests in a burst.
	//
	// Optional. Default: 10.
	Burst int `yaml:"burst"`

	// TrustProxy makes the default key trust the headers X-Forwarded-For
	// and X-Real-Ip, which is only safe behind a proxy overwriting them.
	//
	// Optional. Default: false, the key is the host of the remote address.
	TrustProxy bool `yaml:"trust_proxy"`

	// Key returns the key of the request, by which the requests share
	// a token bucket.
	//
	// Optional. Default: see TrustProxy.
	Key func(c *harbor.Context) string `yaml:"-"`
}

// The pool sweeps the idle limiters once it holds more keys than this.
const limiterSweepSize = 1024

type limiterEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

type limiterPool struct {
	mu    sync.Mutex
	m     map[string]*limiterEntry
	rps   float64
	burst int
	idle  time.Duration // The time to refill an empty bucket
	now   func() time.Time
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	return &limiterPool{
		m:     make(map[string]*limiterEntry),
		rps:   rps,
		burst: burst,
		idle:  time.Duration(float64(burst) / rps * float64(time.Second)),
		now:   time.Now,
	}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if e, ok := p.m[key]; ok {
		e.seen = now
		return e.limiter
	}

	if len(p.m) >= limiterSweepSize {
		p.sweep(now)
	}

	e := &limiterEntry{limiter: rate.NewLimiter(rate.Limit(p.rps), p.burst), seen: now}
	p.m[key] = e
	return e.limiter
}

// sweep removes the limiters idle long enough to have a full bucket,
// which behave the same as the new ones.
func (p *limiterPool) sweep(now time.Time) {
	for key, e := range p.m {
		if now.Sub(e.seen) >= p.idle {
			delete(p.m, key)
		}
	}
}

// RateLimit returns a middleware to limit the request rate by the token
// bucket of each key, which returns 429 with the header Retry-After
// when the bucket is empty.
func RateLimit(config *RateLimitConfig) Middleware {
	var conf RateLimitConfig
	if config != nil {
		conf = *config
	}

	if conf.RPS <= 0 {
		conf.RPS = 5
	}
	if conf.Burst <= 0 {
		conf.Burst = 10
	}
	if conf.Key == nil {
		if conf.TrustProxy {
			conf.Key = func(c *harbor.Context) string { return c.ClientIP() }
		} else {
			conf.Key = func(c *harbor.Context) string { return c.RemoteIP() }
		}
	}

	pool := newLimiterPool(conf.RPS, conf.Burst)
	retryAfter := strconv.Itoa(int(1/conf.RPS) + 1)

	return harbor.MiddlewareFunc(func(c *harbor.Context) *harbor.Response {
		if !pool.get(conf.Key(c)).Allow() {
			resp := harbor.ErrTooManyRequests.Response()
			resp.Header.Set(harbor.HeaderRetryAfter, retryAfter)
			return resp
		}
		return c.Next()
	})
}
