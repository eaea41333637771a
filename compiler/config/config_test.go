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

package config

import (
	"path/filepath"
	"testing"
)

func TestLoadReadsAllFields(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != int(DebugLevel) {
		t.Errorf("LogLevel = %d, want %d", cfg.LogLevel, DebugLevel)
	}
	if cfg.MaxInlineDepth != 3 {
		t.Errorf("MaxInlineDepth = %d, want 3", cfg.MaxInlineDepth)
	}
	if !cfg.VerifyGraph {
		t.Errorf("VerifyGraph should be set")
	}
	if cfg.EagerResolving {
		t.Errorf("EagerResolving should be unset")
	}
	if cfg.ReportsDir != "graph-reports" {
		t.Errorf("ReportsDir = %q, want graph-reports", cfg.ReportsDir)
	}
	if !cfg.ReportGraphs {
		t.Errorf("ReportGraphs should be set")
	}
	if cfg.SourceFile() != filepath.Join("testdata", "config.yaml") {
		t.Errorf("SourceFile() = %q", cfg.SourceFile())
	}
}

func TestLoadRejectsOutOfRangeLevel(t *testing.T) {
	if _, err := Load(filepath.Join("testdata", "bad-level.yaml")); err == nil {
		t.Errorf("an out-of-range log level should fail validation")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join("testdata", "does-not-exist.yaml")); err == nil {
		t.Errorf("loading a missing file should fail")
	}
}

func TestLoadGlobalUsesSetFile(t *testing.T) {
	SetGlobalConfig(filepath.Join("testdata", "config.yaml"))
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal failed: %v", err)
	}
	if cfg.MaxInlineDepth != 3 {
		t.Errorf("LoadGlobal should read the file set by SetGlobalConfig")
	}
}

func TestDefaultsValidate(t *testing.T) {
	cfg := NewDefault()
	if err := cfg.Validate(); err != nil {
		t.Errorf("the default config should validate, got %v", err)
	}
	cfg.MaxInlineDepth = -1
	if err := cfg.Validate(); err == nil {
		t.Errorf("a negative inline depth should fail validation")
	}
}
