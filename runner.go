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
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// DefaultSignals is a set of default signals to shut down the server.
var DefaultSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT}

// DefaultShutdownTimeout is the default timeout to shut down the server
// gracefully.
var DefaultShutdownTimeout = 10 * time.Second

// Runner runs a HTTP server until receiving one of the signals,
// then shuts it down gracefully.
type Runner struct {
	Name            string
	Logger          Logger
	Server          *http.Server
	Signals         []os.Signal
	ShutdownTimeout time.Duration

	once  sync.Once
	hooks []func()
	done  chan struct{}
}

// NewRunner returns a new Runner serving the handler.
//
// If the handler has the methods GetName and GetLogger, such as Server,
// they are used as the name and the logger of the runner.
func NewRunner(handler http.Handler) *Runner {
	r := &Runner{
		Server:          &http.Server{Handler: handler},
		Signals:         DefaultSignals,
		ShutdownTimeout: DefaultShutdownTimeout,
		done:            make(chan struct{}),
	}

	if h, ok := handler.(interface{ GetName() string }); ok {
		r.Name = h.GetName()
	}
	if h, ok := handler.(interface{ GetLogger() Logger }); ok {
		r.Logger = h.GetLogger()
	}
	return r
}

// RegisterOnShutdown registers the functions to run in reverse order
// after the server is shut down.
func (r *Runner) RegisterOnShutdown(functions ...func()) {
	r.hooks = append(r.hooks, functions...)
}

// Stop shuts down the server within ShutdownTimeout, and runs the shutdown
// functions. It only takes effect once.
func (r *Runner) Stop() {
	r.once.Do(func() {
		defer close(r.done)

		ctx := context.Background()
		if r.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.ShutdownTimeout)
			defer cancel()
		}

		if err := r.Server.Shutdown(ctx); err != nil && r.Logger != nil {
			r.Logger.Errorf("fail to shutdown the http server [%s] gracefully: %s", r.Name, err)
		}

		for i := len(r.hooks) - 1; i >= 0; i-- {
			r.hooks[i]()
		}
	})
}

// Done returns a channel which is closed after the server is shut down.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Start serves on addr, or Server.Addr if addr is empty, until the server
// is shut down, and returns the error except http.ErrServerClosed.
func (r *Runner) Start(addr string) error {
	if addr != "" {
		r.Server.Addr = addr
	}
	if r.Server.Addr == "" {
		panic("Runner: Server.Addr is empty")
	}

	if r.Logger != nil {
		r.Logger.Infof("The HTTP Server [%s] is running on %s", r.Name, r.Server.Addr)
	}

	go r.waitSignals()
	err := r.Server.ListenAndServe()
	r.Stop()

	if r.Logger != nil {
		r.Logger.Infof("The HTTP Server [%s] listening on %s is shutdown", r.Name, r.Server.Addr)
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (r *Runner) waitSignals() {
	if len(r.Signals) == 0 {
		return
	}

	ss := make(chan os.Signal, 1)
	signal.Notify(ss, r.Signals...)
	defer signal.Stop(ss)

	select {
	case <-r.done:
	case <-ss:
		r.Stop()
	}
}
