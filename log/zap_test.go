/*
 * MIT License
 *
 * Copyright (c) 2022-2026 GoAkt Team
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLevels(t *testing.T) {
	t.Run("With an unknown level falls back to debug", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(7, buffer)
		require.Equal(t, DebugLevel, logger.LogLevel())

		logger.Debug("test debug")
		actual, err := extractMessage(buffer.Bytes())
		require.NoError(t, err)
		require.Equal(t, "test debug", actual)

		lvl, err := extractLevel(buffer.Bytes())
		require.NoError(t, err)
		require.Equal(t, DebugLevel.String(), lvl)
	})
	t.Run("With info level drops debug entries", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.Debugf("hidden %d", 1)
		require.Empty(t, buffer.Bytes())

		logger.Infof("service %s finished", "foo:v1")
		actual, err := extractMessage(buffer.Bytes())
		require.NoError(t, err)
		require.Equal(t, "service foo:v1 finished", actual)
	})
	t.Run("With warn level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(WarningLevel, buffer)
		logger.Info("hidden")
		require.Empty(t, buffer.Bytes())

		logger.Warn("refresh lease fail")
		lvl, err := extractLevel(buffer.Bytes())
		require.NoError(t, err)
		require.Equal(t, "warn", lvl)
		require.Equal(t, WarningLevel, logger.LogLevel())
	})
	t.Run("With error level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(ErrorLevel, buffer)
		logger.Warnf("hidden %s", "warn")
		require.Empty(t, buffer.Bytes())

		logger.Errorf("put node fail: %s", "10.0.0.1:80")
		actual, err := extractMessage(buffer.Bytes())
		require.NoError(t, err)
		require.Equal(t, "put node fail: 10.0.0.1:80", actual)
	})
	t.Run("With panic", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		assert.Panics(t, func() { logger.Panic("boom") })
		assert.Panics(t, func() { logger.Panicf("boom %d", 2) })
	})
}

func TestZapWith(t *testing.T) {
	t.Run("adds structured fields to output", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With("service", "foo:v1", "lease", int64(42), "err", errors.New("timeout")).Info("put node fail")

		var m map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(buffer.Bytes(), &m))
		require.Contains(t, m, "service")
		require.Contains(t, m, "lease")
		require.Contains(t, m, "err")
		assert.Equal(t, "42", string(m["lease"]))
	})
	t.Run("returns same logger when keyValues empty", func(t *testing.T) {
		logger := NewZap(InfoLevel, new(bytes.Buffer))
		assert.Equal(t, Logger(logger), logger.With())
	})
	t.Run("odd keyValues uses _ for orphan", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With("a", 1, "orphan").Info("msg")

		var m map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(buffer.Bytes(), &m))
		require.Contains(t, m, "a")
		require.Contains(t, m, "_")
	})
	t.Run("skips non-string keys", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With(42, "ignored", "k", "v").Info("msg")

		var m map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(buffer.Bytes(), &m))
		require.Contains(t, m, "k")
		require.NotContains(t, m, "42")
	})
	t.Run("keeps level and outputs", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(WarningLevel, buffer)
		child := logger.With("run", "abc")
		assert.Equal(t, WarningLevel, child.LogLevel())
		assert.Equal(t, logger.LogOutput(), child.LogOutput())
	})
}

func TestZapOutputs(t *testing.T) {
	t.Run("defaults to stdout", func(t *testing.T) {
		logger := NewZap(InfoLevel)
		require.Len(t, logger.LogOutput(), 1)
		assert.Equal(t, os.Stdout, logger.LogOutput()[0])
		require.NoError(t, logger.Flush())
	})
	t.Run("flushes file outputs", func(t *testing.T) {
		file, err := os.Create(filepath.Join(t.TempDir(), "run.log"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = file.Close() })

		logger := NewZap(InfoLevel, file)
		logger.Info("scan finished")
		require.NoError(t, logger.Flush())

		content, err := os.ReadFile(file.Name())
		require.NoError(t, err)
		actual, err := extractMessage(content)
		require.NoError(t, err)
		assert.Equal(t, "scan finished", actual)
	})
	t.Run("std logger writes through zap", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.StdLogger().Print("from std")
		actual, err := extractMessage(buffer.Bytes())
		require.NoError(t, err)
		assert.Equal(t, "from std", actual)
	})
}

func TestParseLevel(t *testing.T) {
	for name, expected := range map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warn":    WarningLevel,
		"warning": WarningLevel,
		" error ": ErrorLevel,
		"fatal":   FatalLevel,
		"panic":   PanicLevel,
	} {
		level, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, level, name)
	}

	level, err := ParseLevel("verbose")
	require.Error(t, err)
	assert.Equal(t, InvalidLevel, level)
	assert.Equal(t, "invalid", InvalidLevel.String())
}

func extractMessage(bytes []byte) (string, error) {
	return extractField(bytes, "msg")
}

func extractLevel(bytes []byte) (string, error) {
	return extractField(bytes, "level")
}

func extractField(bytes []byte, field string) (string, error) {
	// a map container to decode the JSON structure into
	c := make(map[string]json.RawMessage)

	// unmarshal JSON
	if err := json.Unmarshal(bytes, &c); err != nil {
		return "", err
	}
	if v, ok := c[field]; ok {
		return strconv.Unquote(string(v))
	}
	return "", nil
}
