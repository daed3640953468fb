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
	"bytes"
	"slices"
	"strings"

	"github.com/infrmods/regmigrate/errors"
)

// ServiceKey identifies a service by name and version
type ServiceKey struct {
	Name    string
	Version string
}

// String returns the composite name:version form
func (k ServiceKey) String() string {
	return k.Name + ":" + k.Version
}

// ParseServiceKey splits a name:version composite on its last colon
func ParseServiceKey(s string) (ServiceKey, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return ServiceKey{}, errors.ErrInvalidServiceKey
	}
	return ServiceKey{Name: s[:i], Version: s[i+1:]}, nil
}

// Endpoint is one live registration of a service instance
type Endpoint struct {
	// LeaseID is the lease the original key was bound to. Zero means none.
	LeaseID int64
	Address string
	Payload []byte
}

// NewEndpoint creates an Endpoint owning a copy of payload
func NewEndpoint(leaseID int64, address string, payload []byte) Endpoint {
	return Endpoint{
		LeaseID: leaseID,
		Address: address,
		Payload: bytes.Clone(payload),
	}
}

// Valid reports whether the endpoint carries a lease
func (e Endpoint) Valid() bool {
	return e.LeaseID != 0
}

// Service aggregates the descriptor and endpoints registered for one name and version
type Service struct {
	key           ServiceKey
	descriptor    []byte
	hasDescriptor bool
	endpoints     []Endpoint
}

// Key returns the service identity
func (s *Service) Key() ServiceKey {
	return s.key
}

// Descriptor returns the descriptor blob and whether one was observed
func (s *Service) Descriptor() ([]byte, bool) {
	return s.descriptor, s.hasDescriptor
}

// SetDescriptor records the descriptor blob
func (s *Service) SetDescriptor(descriptor []byte) {
	s.descriptor = bytes.Clone(descriptor)
	if s.descriptor == nil {
		s.descriptor = []byte{}
	}
	s.hasDescriptor = true
}

// AddEndpoint appends an endpoint, keeping insertion order
func (s *Service) AddEndpoint(endpoint Endpoint) {
	s.endpoints = append(s.endpoints, endpoint)
}

// Endpoints returns the endpoints in insertion order
func (s *Service) Endpoints() []Endpoint {
	return slices.Clone(s.endpoints)
}

// Services is an ordered mapping from ServiceKey to Service.
// Iteration follows the order in which keys were first referenced.
type Services struct {
	index map[ServiceKey]*Service
	order []*Service
}

// NewServices creates an empty Services
func NewServices() *Services {
	return &Services{index: make(map[ServiceKey]*Service)}
}

// GetOrInsert returns the Service for key, creating it on first reference
func (s *Services) GetOrInsert(key ServiceKey) *Service {
	if service, ok := s.Get(key); ok {
		return service
	}
	service := &Service{key: key}
	s.index[key] = service
	s.order = append(s.order, service)
	return service
}

// Get returns the Service for key when present
func (s *Services) Get(key ServiceKey) (*Service, bool) {
	service, ok := s.index[key]
	return service, ok
}

// Len returns the number of services
func (s *Services) Len() int {
	return len(s.order)
}

// All returns the services in first-reference order
func (s *Services) All() []*Service {
	return slices.Clone(s.order)
}

// Keys returns the service keys in first-reference order
func (s *Services) Keys() []ServiceKey {
	keys := make([]ServiceKey, 0, len(s.order))
	for _, service := range s.order {
		keys = append(keys, service.key)
	}
	return keys
}
