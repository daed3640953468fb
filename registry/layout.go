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
	"fmt"
	"strings"

	"github.com/infrmods/regmigrate/errors"
)

const (
	// DefaultPrefix is the namespace holding service registrations
	DefaultPrefix = "/services/"
	// DefaultZone is the literal second path segment of the new layout
	DefaultZone = "default"

	descriptorSuffix = "desc"
	nodeSuffixPrefix = "node_"
)

// Kind tells which part of a service a key holds
type Kind int

const (
	// KindDescriptor marks a desc key
	KindDescriptor Kind = iota + 1
	// KindNode marks a node_<address> key
	KindNode
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindDescriptor:
		return "descriptor"
	case KindNode:
		return "node"
	default:
		return "unknown"
	}
}

// ParsedKey is a key that matched the old layout
type ParsedKey struct {
	Service ServiceKey
	Kind    Kind
	// Address is only set for KindNode
	Address string
}

// Layout builds and parses registration keys under a prefix.
//
// Old layout:
//
//	<prefix><name>/<version>/desc
//	<prefix><name>/<version>/node_<address>
//
// New layout:
//
//	<prefix><name>:<version>/default/desc
//	<prefix><name>:<version>/default/node_<address>
type Layout struct {
	prefix string
}

// NewLayout creates a Layout for the given prefix. A trailing slash is added when missing.
// An empty prefix falls back to DefaultPrefix.
func NewLayout(prefix string) *Layout {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Layout{prefix: prefix}
}

// Prefix returns the normalized prefix
func (l *Layout) Prefix() string {
	return l.prefix
}

// Parse matches key against the old layout.
// It returns errors.ErrUnknownKey when the key does not match and
// errors.ErrAlreadyMigrated when the key follows the new layout.
func (l *Layout) Parse(key string) (*ParsedKey, error) {
	rest, ok := strings.CutPrefix(key, l.prefix)
	if !ok {
		return nil, errors.ErrUnknownKey
	}

	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return nil, errors.ErrUnknownKey
	}

	name, version, suffix := parts[0], parts[1], parts[2]
	parsed := &ParsedKey{Service: ServiceKey{Name: name, Version: version}}
	switch {
	case suffix == descriptorSuffix:
		parsed.Kind = KindDescriptor
	case strings.HasPrefix(suffix, nodeSuffixPrefix) && len(suffix) > len(nodeSuffixPrefix):
		parsed.Kind = KindNode
		parsed.Address = suffix[len(nodeSuffixPrefix):]
	default:
		return nil, errors.ErrUnknownKey
	}

	// <name>:<version>/default/... is what this tool writes
	if version == DefaultZone {
		if _, err := ParseServiceKey(name); err == nil {
			return nil, errors.ErrAlreadyMigrated
		}
	}
	return parsed, nil
}

// OldDescriptorKey returns the old-layout descriptor key of a service
func (l *Layout) OldDescriptorKey(service ServiceKey) string {
	return fmt.Sprintf("%s%s/%s/%s", l.prefix, service.Name, service.Version, descriptorSuffix)
}

// OldNodeKey returns the old-layout node key of an endpoint
func (l *Layout) OldNodeKey(service ServiceKey, address string) string {
	return fmt.Sprintf("%s%s/%s/%s%s", l.prefix, service.Name, service.Version, nodeSuffixPrefix, address)
}

// NewDescriptorKey returns the new-layout descriptor key of a service
func (l *Layout) NewDescriptorKey(service ServiceKey) string {
	return fmt.Sprintf("%s%s/%s/%s", l.prefix, service, DefaultZone, descriptorSuffix)
}

// NewNodeKey returns the new-layout node key of an endpoint
func (l *Layout) NewNodeKey(service ServiceKey, address string) string {
	return fmt.Sprintf("%s%s/%s/%s%s", l.prefix, service, DefaultZone, nodeSuffixPrefix, address)
}
