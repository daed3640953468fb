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

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infrmods/regmigrate/errors"
)

func TestLayoutParse(t *testing.T) {
	layout := NewLayout(DefaultPrefix)

	t.Run("With a descriptor key", func(t *testing.T) {
		parsed, err := layout.Parse("/services/foo/v1/desc")
		require.NoError(t, err)
		assert.Equal(t, KindDescriptor, parsed.Kind)
		assert.Equal(t, ServiceKey{Name: "foo", Version: "v1"}, parsed.Service)
		assert.Empty(t, parsed.Address)
	})
	t.Run("With a node key", func(t *testing.T) {
		parsed, err := layout.Parse("/services/foo/v1/node_1.2.3.4:80")
		require.NoError(t, err)
		assert.Equal(t, KindNode, parsed.Kind)
		assert.Equal(t, "1.2.3.4:80", parsed.Address)
	})
	t.Run("With an address holding a slash", func(t *testing.T) {
		parsed, err := layout.Parse("/services/foo/v1/node_host/extra")
		require.NoError(t, err)
		assert.Equal(t, "host/extra", parsed.Address)
	})
	t.Run("With unknown keys", func(t *testing.T) {
		for _, key := range []string{
			"/services/foo/desc",
			"/services/foo/v1/other",
			"/services/foo/v1/node_",
			"/services//v1/desc",
			"/services/foo//desc",
			"/services/foo/v1/desc/extra",
			"/configs/foo/v1/desc",
			"/services/",
		} {
			_, err := layout.Parse(key)
			assert.ErrorIs(t, err, errors.ErrUnknownKey, key)
		}
	})
	t.Run("With keys in the new layout", func(t *testing.T) {
		for _, key := range []string{
			"/services/foo:v1/default/desc",
			"/services/foo:v1/default/node_1.2.3.4:80",
		} {
			_, err := layout.Parse(key)
			assert.ErrorIs(t, err, errors.ErrAlreadyMigrated, key)
		}
	})
	t.Run("With an old service whose version is default", func(t *testing.T) {
		parsed, err := layout.Parse("/services/foo/default/desc")
		require.NoError(t, err)
		assert.Equal(t, ServiceKey{Name: "foo", Version: "default"}, parsed.Service)
	})
	t.Run("With a default version and a name that is not name:version", func(t *testing.T) {
		parsed, err := layout.Parse("/services/foo:/default/node_1.2.3.4:80")
		require.NoError(t, err)
		assert.Equal(t, ServiceKey{Name: "foo:", Version: "default"}, parsed.Service)
		assert.Equal(t, "1.2.3.4:80", parsed.Address)
	})
}

func TestLayoutKeys(t *testing.T) {
	service := ServiceKey{Name: "foo", Version: "v1"}

	t.Run("With the default prefix", func(t *testing.T) {
		layout := NewLayout("")
		assert.Equal(t, DefaultPrefix, layout.Prefix())
		assert.Equal(t, "/services/foo/v1/desc", layout.OldDescriptorKey(service))
		assert.Equal(t, "/services/foo/v1/node_1.2.3.4:80", layout.OldNodeKey(service, "1.2.3.4:80"))
		assert.Equal(t, "/services/foo:v1/default/desc", layout.NewDescriptorKey(service))
		assert.Equal(t, "/services/foo:v1/default/node_1.2.3.4:80", layout.NewNodeKey(service, "1.2.3.4:80"))
	})
	t.Run("With a prefix missing the trailing slash", func(t *testing.T) {
		layout := NewLayout("/staging/services")
		assert.Equal(t, "/staging/services/", layout.Prefix())
		assert.Equal(t, "/staging/services/foo:v1/default/desc", layout.NewDescriptorKey(service))
	})
	t.Run("With round trips through Parse", func(t *testing.T) {
		layout := NewLayout(DefaultPrefix)
		parsed, err := layout.Parse(layout.OldNodeKey(service, "10.0.0.1:8080"))
		require.NoError(t, err)
		assert.Equal(t, service, parsed.Service)
		assert.Equal(t, "10.0.0.1:8080", parsed.Address)

		_, err = layout.Parse(layout.NewNodeKey(service, "10.0.0.1:8080"))
		assert.ErrorIs(t, err, errors.ErrAlreadyMigrated)
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "descriptor", KindDescriptor.String())
	assert.Equal(t, "node", KindNode.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
