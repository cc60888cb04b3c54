// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the YAML file that describes a crate check:
// the crate's name, the extern crates it may name, and the dialect
// options of the resolver and expander.
//
// Example:
//
//	crate: app
//	features: [use_extern_macros]
//	externs:
//	  util: ../util/lib.mac
//	recursion_limit: 32
//	log:
//	  level: debug
package config // import "go.macroscope.dev/internal/config"

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"go.macroscope.dev/expand"
	"go.macroscope.dev/resolve"
	"go.macroscope.dev/syntax"
)

// Output formats.
const (
	Text = "text"
	JSON = "json"
)

// Config describes one crate check.
type Config struct {
	// Crate is the name of the local crate.
	Crate string `yaml:"crate"`

	// Features are enabled in addition to the crate's own
	// #![feature(...)] attributes.
	Features []string `yaml:"features,omitempty"`

	// Externs maps an extern crate name to the file holding it.
	// Relative paths are relative to the config file.
	Externs map[string]string `yaml:"externs,omitempty"`

	RecursionLimit    int    `yaml:"recursion_limit,omitempty"`
	AllowExternMacros bool   `yaml:"allow_extern_macros,omitempty"`
	Output            string `yaml:"output,omitempty"`
	Log               Log    `yaml:"log,omitempty"`

	dir string
}

// Log configures the expansion trace.
type Log struct {
	Level string `yaml:"level,omitempty"`
	JSON  bool   `yaml:"json,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Crate:          "krate",
		RecursionLimit: expand.RecursionLimit,
		Output:         Text,
		Log:            Log{Level: "WARN"},
	}
}

// Load reads the configuration file at path.
// Options the file omits keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config: %v", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid config: %v", path)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes a configuration from YAML.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Crate == "" {
		return errors.New("crate name was empty")
	}
	if _, ok := c.Externs[c.Crate]; ok {
		return errors.Errorf("extern crate %q has the name of the local crate", c.Crate)
	}
	if c.RecursionLimit <= 0 {
		return errors.Errorf("invalid recursion limit: %d", c.RecursionLimit)
	}
	switch c.Output {
	case Text, JSON:
	default:
		return errors.Errorf("unsupported output: '%s', supported: %v, %v", c.Output, Text, JSON)
	}
	return nil
}

// AddExtern records an extern crate given on the command line.
func (c *Config) AddExtern(name, path string) {
	if c.Externs == nil {
		c.Externs = make(map[string]string)
	}
	c.Externs[name] = path
}

// Apply sets the package-level dialect options from c.
func (c *Config) Apply() {
	resolve.AllowExternMacros = c.AllowExternMacros
	expand.RecursionLimit = c.RecursionLimit
}

// ExternPaths returns the file of every extern crate, sorted by
// crate name.
func (c *Config) ExternPaths() []string {
	names := make([]string, 0, len(c.Externs))
	for name := range c.Externs {
		names = append(names, name)
	}
	sort.Strings(names)
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = c.externPath(name)
	}
	return paths
}

func (c *Config) externPath(name string) string {
	path := c.Externs[name]
	if !filepath.IsAbs(path) && c.dir != "" {
		path = filepath.Join(c.dir, path)
	}
	return path
}

// LoadExterns parses the file of every extern crate.
func (c *Config) LoadExterns() (map[string]*syntax.File, error) {
	externs := make(map[string]*syntax.File, len(c.Externs))
	for name := range c.Externs {
		f, err := syntax.Parse(c.externPath(name), nil)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load extern crate %v", name)
		}
		externs[name] = f
	}
	return externs, nil
}

// Options returns the expansion options for c.
func (c *Config) Options(externs map[string]*syntax.File) *expand.Options {
	return &expand.Options{Externs: externs, Features: c.Features}
}
