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

// Package config loads the server configuration from a YAML file,
// the .env file and the environment variables prefixed with "HARBOR_".
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/xgfone/harbor"
	"github.com/xgfone/harbor/binder"
	"github.com/xgfone/harbor/middleware"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of the environment variables overriding
// the configuration.
const EnvPrefix = "HARBOR_"

// LogConfig is the configuration of the logger.
type LogConfig struct {
	// Format is one of "text" and "json".
	Format string `yaml:"format"`

	// Level is one of "trace", "debug", "info", "warn" and "error".
	Level string `yaml:"level"`
}

// RateLimitConfig is the configuration of the rate limiter,
// which is disabled when RPS is not positive.
type RateLimitConfig struct {
	RPS        float64 `yaml:"rps"`
	Burst      int     `yaml:"burst"`
	TrustProxy bool    `yaml:"trust_proxy"`
}

// Config is the configuration of the server.
type Config struct {
	Name  string `yaml:"name"`
	Addr  string `yaml:"addr"`
	Debug bool   `yaml:"debug"`

	// MethodNotAllowed enables 405 for the path matching a route
	// without the request method.
	MethodNotAllowed bool `yaml:"method_not_allowed"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	MaxBodySize int64  `yaml:"max_body_size"`
	MaxRequests uint32 `yaml:"max_requests"`
	BufferSize  int    `yaml:"buffer_size"`

	RateLimit RateLimitConfig        `yaml:"rate_limit"`
	CORS      *middleware.CORSConfig `yaml:"cors"`
	Log       LogConfig              `yaml:"log"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     time.Minute,
		ShutdownTimeout: harbor.DefaultShutdownTimeout,
		Log:             LogConfig{Format: "text", Level: "info"},
	}
}

// Load loads the configuration.
//
// It loads the environment variables from envfiles first, which is ".env"
// by default and ignored if not existing. Then it decodes the YAML file path
// onto the default configuration if path is not empty, and overrides
// the result by the environment variables, such as HARBOR_ADDR.
func Load(path string, envfiles ...string) (conf Config, err error) {
	if len(envfiles) == 0 {
		envfiles = []string{".env"}
	}
	for _, file := range envfiles {
		if err = godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return conf, fmt.Errorf("fail to load the env file '%s': %w", file, err)
		}
	}

	conf = Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return conf, fmt.Errorf("fail to read the config file: %w", err)
		}
		if err = yaml.Unmarshal(data, &conf); err != nil {
			return conf, fmt.Errorf("fail to parse the config file '%s': %w", path, err)
		}
	}

	if err = conf.loadEnv(os.LookupEnv); err != nil {
		return
	}

	err = conf.Validate()
	return
}

func (c *Config) envs() map[string]interface{} {
	return map[string]interface{}{
		"NAME":               &c.Name,
		"ADDR":               &c.Addr,
		"DEBUG":              &c.Debug,
		"METHOD_NOT_ALLOWED": &c.MethodNotAllowed,
		"READ_TIMEOUT":       &c.ReadTimeout,
		"WRITE_TIMEOUT":      &c.WriteTimeout,
		"IDLE_TIMEOUT":       &c.IdleTimeout,
		"SHUTDOWN_TIMEOUT":   &c.ShutdownTimeout,
		"MAX_BODY_SIZE":      &c.MaxBodySize,
		"MAX_REQUESTS":       &c.MaxRequests,
		"BUFFER_SIZE":        &c.BufferSize,
		"RATE_LIMIT_RPS":     &c.RateLimit.RPS,
		"RATE_LIMIT_BURST":   &c.RateLimit.Burst,
		"RATE_LIMIT_PROXY":   &c.RateLimit.TrustProxy,
		"LOG_FORMAT":         &c.Log.Format,
		"LOG_LEVEL":          &c.Log.Level,
	}
}

func (c *Config) loadEnv(lookup func(string) (string, bool)) error {
	for name, ptr := range c.envs() {
		value, ok := lookup(EnvPrefix + name)
		if !ok || value == "" {
			continue
		}

		if err := binder.SetValue(reflect.ValueOf(ptr).Elem(), value); err != nil {
			return fmt.Errorf("invalid env %s%s='%s': %w", EnvPrefix, name, value, err)
		}
	}
	return nil
}

// Validate checks whether the configuration is valid.
func (c Config) Validate() error {
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format '%s'", c.Log.Format)
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}

	if c.Addr == "" {
		return errors.New("missing the listen address")
	}
	return nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "trace":
		return harbor.LevelTrace, nil
	case "":
		return slog.LevelInfo, nil
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return lvl, fmt.Errorf("invalid log level '%s'", level)
	}
	return lvl, nil
}

// Logger returns a new logger writing to os.Stderr.
func (c Config) Logger() harbor.Logger {
	return c.NewLogger(os.Stderr)
}

// NewLogger returns a new logger writing to w by the log format and level.
func (c Config) NewLogger(w io.Writer) harbor.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return harbor.NewLoggerFromSlog(slog.New(handler))
}

// Options returns the server options.
func (c Config) Options() []harbor.Option {
	opts := []harbor.Option{
		harbor.SetName(c.Name),
		harbor.SetDebug(c.Debug),
		harbor.SetLogger(c.Logger()),
	}

	if c.MethodNotAllowed {
		opts = append(opts, harbor.SetMethodNotAllowed(harbor.MethodNotAllowedEndpoint))
	}
	if c.BufferSize > 0 {
		opts = append(opts, harbor.SetBufferSize(c.BufferSize))
	}
	return opts
}

// Middlewares returns the standard middlewares, which starts with
// the access logger and the panic recovery.
func (c Config) Middlewares() []harbor.Middleware {
	mws := []harbor.Middleware{
		middleware.Logger(),
		middleware.Recover(),
		middleware.RequestID(),
	}

	if c.MaxBodySize > 0 {
		mws = append(mws, middleware.BodyLimit(c.MaxBodySize))
	}
	if c.MaxRequests > 0 {
		mws = append(mws, middleware.MaxRequests(c.MaxRequests))
	}
	if c.RateLimit.RPS > 0 {
		mws = append(mws, middleware.RateLimit(&middleware.RateLimitConfig{
			RPS:        c.RateLimit.RPS,
			Burst:      c.RateLimit.Burst,
			TrustProxy: c.RateLimit.TrustProxy,
		}))
	}
	if c.CORS != nil {
		mws = append(mws, middleware.CORS(c.CORS))
	}

	return mws
}

// Runner returns a new runner serving h on the configured address
// with the configured timeouts.
func (c Config) Runner(h http.Handler) *harbor.Runner {
	r := harbor.NewRunner(h)
	r.Server.Addr = c.Addr
	r.Server.ReadTimeout = c.ReadTimeout
	r.Server.WriteTimeout = c.WriteTimeout
	r.Server.IdleTimeout = c.IdleTimeout
	if c.ShutdownTimeout > 0 {
		r.ShutdownTimeout = c.ShutdownTimeout
	}
	if r.Name == "" {
		r.Name = c.Name
	}
	return r
}

// NewServer returns a new server with the application data,
// which is configured by the options and the standard middlewares.
func (c Config) NewServer(data interface{}, opts ...harbor.Option) *harbor.Server {
	s := harbor.New(data, append(c.Options(), opts...)...)
	s.Use(c.Middlewares()...)
	return s
}
