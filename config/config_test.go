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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infrmods/regmigrate/log"
)

func TestDefault(t *testing.T) {
	config := Default()
	require.NoError(t, config.Validate())
	assert.Equal(t, []string{"127.0.0.1:2379"}, config.Etcd.Endpoints)
	assert.Equal(t, 5*time.Second, config.Etcd.DialTimeout)
	assert.Equal(t, 10*time.Second, config.Etcd.RequestTimeout)
	assert.Equal(t, 3, config.Etcd.ConnectAttempts)
	assert.Equal(t, "/services/", config.Services.KeyPrefix)
	assert.Equal(t, "/configs", config.Configs.KeyPrefix)
	assert.Equal(t, "mysql", config.DB.Driver)
	assert.Equal(t, log.InfoLevel, config.LogLevel())
}

func TestLoad(t *testing.T) {
	t.Run("With empty path", func(t *testing.T) {
		config, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), config)
	})
	t.Run("With partial file", func(t *testing.T) {
		path := writeConfig(t, `
etcd:
  endpoints:
    - http://etcd-1:2379
    - http://etcd-2:2379
  request_timeout: 3s
db:
  source: root:secret@tcp(db:3306)/registry
log:
  level: debug
`)
		config, err := Load(path)
		require.NoError(t, err)
		require.NoError(t, config.Validate())
		assert.Equal(t, []string{"http://etcd-1:2379", "http://etcd-2:2379"}, config.Etcd.Endpoints)
		assert.Equal(t, 3*time.Second, config.Etcd.RequestTimeout)
		assert.Equal(t, 5*time.Second, config.Etcd.DialTimeout)
		assert.Equal(t, "mysql", config.DB.Driver)
		assert.Equal(t, "root:secret@tcp(db:3306)/registry", config.DB.Source)
		assert.Equal(t, "/services/", config.Services.KeyPrefix)
		assert.Equal(t, log.DebugLevel, config.LogLevel())
		require.NoError(t, config.ValidateDB())
	})
	t.Run("With null section", func(t *testing.T) {
		path := writeConfig(t, "services: null\nconfigs:\n  key_prefix: /cfg\n")
		config, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/services/", config.Services.KeyPrefix)
		assert.Equal(t, "/cfg", config.Configs.KeyPrefix)
	})
	t.Run("With missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("With malformed file", func(t *testing.T) {
		_, err := Load(writeConfig(t, "etcd: [unclosed"))
		require.Error(t, err)
	})
}

func TestApplyEndpoint(t *testing.T) {
	testCases := []struct {
		name     string
		hostport string
		expected []string
	}{
		{name: "host and port", hostport: "10.0.0.5:2380", expected: []string{"10.0.0.5:2380"}},
		{name: "bare host", hostport: "etcd.local", expected: []string{"etcd.local:2379"}},
		{name: "bare ipv6 host", hostport: "::1", expected: []string{"[::1]:2379"}},
		{name: "empty", hostport: "", expected: []string{"127.0.0.1:2379"}},
		{name: "http url with port", hostport: "http://etcd:2379", expected: []string{"http://etcd:2379"}},
		{name: "https url without port", hostport: "https://etcd", expected: []string{"https://etcd:2379"}},
		{name: "url with trailing slash", hostport: "http://10.0.0.5:2380/", expected: []string{"http://10.0.0.5:2380"}},
		{name: "ipv6 url without port", hostport: "http://[::1]", expected: []string{"http://[::1]:2379"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := Default()
			config.ApplyEndpoint(tc.hostport)
			assert.Equal(t, tc.expected, config.Etcd.Endpoints)
			assert.NoError(t, config.Validate())
		})
	}
}

func TestApplyEndpointUnsupportedScheme(t *testing.T) {
	config := Default()
	config.ApplyEndpoint("unix://etcd")
	assert.Equal(t, []string{"unix://etcd:2379"}, config.Etcd.Endpoints)

	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported scheme "unix"`)
}

func TestValidate(t *testing.T) {
	config := Default()
	config.Etcd.Endpoints = []string{"etcd-1"}
	config.Etcd.ConnectAttempts = 0
	config.Services.KeyPrefix = "services"
	config.DB.Driver = "sqlite"
	config.Log.Level = "loud"

	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid address=(etcd-1)")
	assert.Contains(t, err.Error(), "the [etcd.connect_attempts] must be greater than 0")
	assert.Contains(t, err.Error(), `the [services.key_prefix] must be an absolute key prefix, got "services"`)
	assert.Contains(t, err.Error(), "the [db.driver] must be one of")
	assert.Contains(t, err.Error(), `the [log.level] is invalid: "loud"`)

	assert.Equal(t, log.InfoLevel, config.LogLevel())
	assert.EqualError(t, config.ValidateDB(), "the [db.source] is required")
}

func TestEtcdStoreConfig(t *testing.T) {
	config := Default()
	config.ApplyEndpoint("etcd:2379")
	config.Etcd.Username = "root"
	config.Etcd.Password = "secret"
	config.Etcd.ConnectAttempts = 5

	storeConfig := config.EtcdStoreConfig(log.DiscardLogger)
	require.NoError(t, storeConfig.Validate())
	assert.Equal(t, []string{"etcd:2379"}, storeConfig.Endpoints)
	assert.Equal(t, "root", storeConfig.Username)
	assert.Equal(t, "secret", storeConfig.Password)
	assert.Equal(t, 5, storeConfig.ConnectAttempts)
	assert.Equal(t, 10*time.Second, storeConfig.RequestTimeout)
	assert.Equal(t, log.DiscardLogger, storeConfig.Logger)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
