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

package etcdstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("With defaults", func(t *testing.T) {
		config := NewConfig()
		require.NoError(t, config.Validate())
		assert.Equal(t, []string{DefaultEndpoint}, config.Endpoints)
		assert.Equal(t, 5*time.Second, config.DialTimeout)
		assert.Equal(t, 10*time.Second, config.RequestTimeout)
		assert.Equal(t, 3, config.ConnectAttempts)
		assert.EqualValues(t, 1000, config.PageSize)
	})
	t.Run("With URL endpoints", func(t *testing.T) {
		config := NewConfig("http://127.0.0.1:2379", "https://etcd-2:2379")
		assert.NoError(t, config.Validate())
	})
	t.Run("With invalid endpoint", func(t *testing.T) {
		config := NewConfig("127.0.0.1")
		assert.Error(t, config.Validate())
	})
	t.Run("With every field invalid", func(t *testing.T) {
		config := &Config{}
		err := config.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Endpoints must not be empty")
		assert.Contains(t, err.Error(), "DialTimeout must be greater than 0")
		assert.Contains(t, err.Error(), "RequestTimeout must be greater than 0")
		assert.Contains(t, err.Error(), "ConnectAttempts must be greater than 0")
		assert.Contains(t, err.Error(), "PageSize must be greater than 0")
	})
}
