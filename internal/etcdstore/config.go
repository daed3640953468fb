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
	"time"

	"github.com/infrmods/regmigrate/internal/validation"
	"github.com/infrmods/regmigrate/log"
)

const (
	// DefaultEndpoint is the client address of a local etcd
	DefaultEndpoint = "127.0.0.1:2379"

	defaultDialTimeout     = 5 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultConnectAttempts = 3
	defaultPageSize        = 1000
)

// Config holds configuration for the etcd backed store
type Config struct {
	// Endpoints is a list of etcd cluster endpoints
	Endpoints []string
	// DialTimeout for etcd client connections
	DialTimeout time.Duration
	// RequestTimeout bounds every single store operation
	RequestTimeout time.Duration
	// Username for etcd authentication (optional)
	Username string
	// Password for etcd authentication (optional)
	Password string
	// ConnectAttempts is how many times the initial status probe is tried
	ConnectAttempts int
	// PageSize is the number of keys fetched per range request when scanning a prefix
	PageSize int64
	// Logger is used for connection diagnostics
	Logger log.Logger
}

var _ validation.Validator = (*Config)(nil)

// NewConfig creates a Config with default timeouts for the given endpoints.
// No endpoint means DefaultEndpoint.
func NewConfig(endpoints ...string) *Config {
	if len(endpoints) == 0 {
		endpoints = []string{DefaultEndpoint}
	}
	return &Config{
		Endpoints:       endpoints,
		DialTimeout:     defaultDialTimeout,
		RequestTimeout:  defaultRequestTimeout,
		ConnectAttempts: defaultConnectAttempts,
		PageSize:        defaultPageSize,
		Logger:          log.DefaultLogger,
	}
}

// Validate implements validation.Validator.
func (c *Config) Validate() error {
	chain := validation.New(validation.AllErrors()).
		AddAssertion(len(c.Endpoints) > 0, "Endpoints must not be empty").
		AddAssertion(c.DialTimeout > 0, "DialTimeout must be greater than 0").
		AddAssertion(c.RequestTimeout > 0, "RequestTimeout must be greater than 0").
		AddAssertion(c.ConnectAttempts > 0, "ConnectAttempts must be greater than 0").
		AddAssertion(c.PageSize > 0, "PageSize must be greater than 0")
	for _, endpoint := range c.Endpoints {
		chain.AddValidator(validation.NewTCPAddressValidator(endpoint))
	}
	return chain.Validate()
}
