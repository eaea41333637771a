// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config implements the yaml-driven configuration of the compiler and
// the leveled logger shared by construction and simplification.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config holds the settings of one compiler instance. Fields not present in
// the yaml file keep their zero value; use NewDefault for sensible defaults.
type Config struct {
	sourceFile string

	// LogLevel controls the verbosity of the LogGroup (see LogLevel constants).
	LogLevel int `yaml:"log-level"`

	// MaxInlineDepth bounds the nesting of inlined bodies. Inline requests
	// beyond the bound are refused and emitted as real invocations.
	MaxInlineDepth int `yaml:"max-inline-depth"`

	// VerifyGraph enables the post-construction verification pass (frame
	// state presence and depth, value graph acyclicity).
	VerifyGraph bool `yaml:"verify-graph"`

	// EagerResolving makes the builder resolve referenced types and methods
	// at parse time instead of leaving unresolved references for deopt.
	EagerResolving bool `yaml:"eager-resolving"`

	// ReportsDir is the directory where graph listings are written when
	// ReportGraphs is set. Created on demand next to the binary if empty.
	ReportsDir string `yaml:"reports-dir"`

	// ReportGraphs dumps the final graph of every compilation unit into
	// ReportsDir.
	ReportGraphs bool `yaml:"report-graphs"`
}

// NewDefault returns the default configuration.
func NewDefault() *Config {
	return &Config{
		LogLevel:       int(InfoLevel),
		MaxInlineDepth: 5,
		VerifyGraph:    true,
		EagerResolving: true,
	}
}

// Load reads a Config from a yaml file.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file %s: %w", filename, err)
	}
	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file %s: %w", filename, err)
	}
	cfg.sourceFile = filename
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}
	return cfg, nil
}

// SourceFile returns the file the config was loaded from, "" for defaults.
func (c *Config) SourceFile() string { return c.sourceFile }

// Validate checks option ranges.
func (c *Config) Validate() error {
	if c.LogLevel < int(ErrLevel) || c.LogLevel > int(TraceLevel) {
		return fmt.Errorf("log-level must be between %d and %d, got %d", ErrLevel, TraceLevel, c.LogLevel)
	}
	if c.MaxInlineDepth < 0 {
		return fmt.Errorf("max-inline-depth must be non-negative, got %d", c.MaxInlineDepth)
	}
	return nil
}

// ReportPath returns the path for a report file of the given name, creating
// ReportsDir if necessary.
func (c *Config) ReportPath(name string) (string, error) {
	dir := c.ReportsDir
	if dir == "" {
		dir = "ar-jit-reports"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("could not create reports dir %s: %w", dir, err)
	}
	return dir + string(os.PathSeparator) + name, nil
}
