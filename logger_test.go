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
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerFromWriter(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	log := NewLoggerFromWriter(buf, "", 0)

	log.Tracef("trace")
	log.Debugf("debug %d", 1)
	log.Infof("info")
	log.Warnf("warn %s", "x")
	log.Errorf("error")

	expect := []string{"[T] trace", "[D] debug 1", "[I] info", "[W] warn x", "[E] error"}
	assert.Equal(t, expect, strings.Split(strings.TrimSpace(buf.String()), "\n"))
}

func TestNopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		log := NewNopLogger()
		log.Errorf("nothing %d", 1)
	})
}

func TestLoggerFromSlog(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	log := NewLoggerFromSlog(slog.New(handler))

	log.Debugf("hidden")
	log.Infof("hello %s", "world")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if assert.Len(t, lines, 1) {
		var record map[string]interface{}
		assert.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
		assert.Equal(t, "INFO", record["level"])
		assert.Equal(t, "hello world", record["msg"])
	}
}
