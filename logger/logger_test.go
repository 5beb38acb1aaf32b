/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{OFF, "OFF"},
		{Level(999), "UNKNOWN"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, test.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" Warning "))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, OFF, ParseLevel("off"))
	assert.Equal(t, INFO, ParseLevel("whatever"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(INFO, &buf)
	require.NotNil(t, l)

	l.Info("memory state %s -> %s", "Moderate", "Severe")
	assert.Contains(t, buf.String(), "memory state Moderate -> Severe")
	assert.Contains(t, buf.String(), "INFO")

	buf.Reset()
	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.SetLevel(DEBUG)
	l.Debug("visible %d", 1)
	assert.Contains(t, buf.String(), "visible 1")

	buf.Reset()
	l.SetLevel(OFF)
	l.Error("nothing")
	assert.Empty(t, buf.String())
}

func TestDefaultLogger(t *testing.T) {
	orig := GetDefault()
	defer SetDefault(orig)

	var buf bytes.Buffer
	SetDefault(NewLogger(DEBUG, &buf))
	Debug("d")
	Info("i")
	Warn("w")
	Error("e")
	out := buf.String()
	for _, want := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		assert.Contains(t, out, want)
	}

	SetDefault(nil)
	assert.NotPanics(t, func() { Info("discarded") })
}

func TestDiscardLogger(t *testing.T) {
	l := NewDiscardLogger()
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x")
		l.Warn("x")
		l.Error("x")
		l.SetLevel(DEBUG)
	})
}

func TestNewFromConfig(t *testing.T) {
	l, err := New(Config{Level: "warn"})
	require.NoError(t, err)
	require.NotNil(t, l)
	l.Info("filtered")

	l, err = New(Config{Level: "debug", Development: true})
	require.NoError(t, err)
	require.NotNil(t, l)
}
