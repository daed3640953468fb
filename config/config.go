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

// Package config loads the regmigrate YAML configuration file.
package config

import (
	"fmt"
	"net"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/infrmods/regmigrate/internal/etcdstore"
	"github.com/infrmods/regmigrate/internal/validation"
	"github.com/infrmods/regmigrate/log"
	"github.com/infrmods/regmigrate/registry"
)

const (
	// EnvConfigPath names the environment variable holding the config file path
	EnvConfigPath = "REGMIGRATE_CONFIG"

	defaultEtcdPort        = "2379"
	defaultConfigsPrefix   = "/configs"
	defaultDriver          = "mysql"
	defaultConnectAttempts = 3
)

// Drivers lists the database/sql drivers the config export can use
var Drivers = []string{"mysql", "pgx"}

// Config is the root of the configuration file
type Config struct {
	Etcd     *EtcdConfig     `yaml:"etcd"`
	Services *ServicesConfig `yaml:"services"`
	Configs  *ConfigsConfig  `yaml:"configs"`
	DB       *DBConfig       `yaml:"db"`
	Log      *LogConfig      `yaml:"log"`
}

// EtcdConfig is the etcd cluster connection
type EtcdConfig struct {
	Endpoints       []string      `yaml:"endpoints"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	ConnectAttempts int           `yaml:"connect_attempts"`
}

// ServicesConfig locates the service registrations
type ServicesConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// ConfigsConfig locates the exported configuration keys
type ConfigsConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// DBConfig is the database holding the configs table
type DBConfig struct {
	Driver string `yaml:"driver"`
	Source string `yaml:"source"`
}

// LogConfig sets the log verbosity
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a Config with every default set
func Default() *Config {
	return &Config{
		Etcd: &EtcdConfig{
			Endpoints:       []string{etcdstore.DefaultEndpoint},
			DialTimeout:     5 * time.Second,
			RequestTimeout:  10 * time.Second,
			ConnectAttempts: defaultConnectAttempts,
		},
		Services: &ServicesConfig{KeyPrefix: registry.DefaultPrefix},
		Configs:  &ConfigsConfig{KeyPrefix: defaultConfigsPrefix},
		DB:       &DBConfig{Driver: defaultDriver},
		Log:      &LogConfig{Level: log.InfoLevel.String()},
	}
}

// Load reads the YAML file at path over the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file=%s", path)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file=%s", path)
	}
	config.fillDefaults()
	return config, nil
}

// ApplyEndpoint replaces the etcd endpoints with a single [scheme://]host[:port],
// the same forms the config file accepts. A bare host gets the default etcd client port.
func (c *Config) ApplyEndpoint(endpoint string) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return
	}
	scheme, hostport, ok := strings.Cut(endpoint, "://")
	if !ok {
		scheme, hostport = "", endpoint
	}
	hostport = strings.TrimSuffix(hostport, "/")
	if _, _, err := net.SplitHostPort(hostport); err != nil {
		hostport = net.JoinHostPort(strings.Trim(hostport, "[]"), defaultEtcdPort)
	}
	if ok {
		hostport = scheme + "://" + hostport
	}
	c.Etcd.Endpoints = []string{hostport}
}

// Validate implements validation.Validator.
func (c *Config) Validate() error {
	chain := validation.New(validation.AllErrors()).
		AddAssertion(len(c.Etcd.Endpoints) > 0, "the [etcd.endpoints] is required").
		AddAssertion(c.Etcd.DialTimeout > 0, "the [etcd.dial_timeout] must be greater than 0").
		AddAssertion(c.Etcd.RequestTimeout > 0, "the [etcd.request_timeout] must be greater than 0").
		AddAssertion(c.Etcd.ConnectAttempts > 0, "the [etcd.connect_attempts] must be greater than 0").
		AddValidator(validation.NewKeyPrefixValidator("services.key_prefix", c.Services.KeyPrefix)).
		AddValidator(validation.NewKeyPrefixValidator("configs.key_prefix", c.Configs.KeyPrefix)).
		AddAssertion(slices.Contains(Drivers, c.DB.Driver),
			fmt.Sprintf("the [db.driver] must be one of %v, got %q", Drivers, c.DB.Driver))

	for _, endpoint := range c.Etcd.Endpoints {
		chain.AddValidator(validation.NewTCPAddressValidator(endpoint))
	}

	_, err := log.ParseLevel(c.Log.Level)
	chain.AddAssertion(err == nil, fmt.Sprintf("the [log.level] is invalid: %q", c.Log.Level))
	return chain.Validate()
}

// ValidateDB checks the settings the config export needs on top of Validate
func (c *Config) ValidateDB() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("db.source", c.DB.Source)).
		Validate()
}

// LogLevel returns the configured log level, InfoLevel when unparsable
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// EtcdStoreConfig converts the etcd section into an etcdstore.Config
func (c *Config) EtcdStoreConfig(logger log.Logger) *etcdstore.Config {
	storeConfig := etcdstore.NewConfig(c.Etcd.Endpoints...)
	storeConfig.DialTimeout = c.Etcd.DialTimeout
	storeConfig.RequestTimeout = c.Etcd.RequestTimeout
	storeConfig.Username = c.Etcd.Username
	storeConfig.Password = c.Etcd.Password
	storeConfig.ConnectAttempts = c.Etcd.ConnectAttempts
	storeConfig.Logger = logger
	return storeConfig
}

// fillDefaults restores sections a config file set to null
func (c *Config) fillDefaults() {
	defaults := Default()
	if c.Etcd == nil {
		c.Etcd = defaults.Etcd
	}
	if c.Services == nil {
		c.Services = defaults.Services
	}
	if c.Configs == nil {
		c.Configs = defaults.Configs
	}
	if c.DB == nil {
		c.DB = defaults.DB
	}
	if c.Log == nil {
		c.Log = defaults.Log
	}
}
