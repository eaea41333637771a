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
	"io"
	"log"
	"os"
)

// LogLevel is the verbosity of a LogGroup.
type LogLevel int

const (
	// ErrLevel=1 - the minimum level of logging.
	ErrLevel LogLevel = iota + 1

	// WarnLevel=2 - the level for logging warnings, and errors
	WarnLevel

	// InfoLevel=3 - the level for logging high-level information, results
	InfoLevel

	// DebugLevel=4 - the level for per-unit debugging information
	DebugLevel

	// TraceLevel=5 - the level for per-node tracing; only usable on small units
	TraceLevel
)

var levelPrefixes = map[LogLevel]string{
	ErrLevel:   "[ERROR] ",
	WarnLevel:  "[WARN] ",
	InfoLevel:  "[INFO] ",
	DebugLevel: "[DEBUG] ",
	TraceLevel: "[TRACE] ",
}

// LogGroup is the leveled logger of one compiler instance. A zero scope tag
// logs bare messages; WithScope returns a group tagging every message with a
// compilation-unit identifier.
type LogGroup struct {
	level LogLevel
	scope string
	out   *log.Logger
}

// NewLogGroup returns a log group configured to the logging settings stored
// inside the config, writing to stdout.
func NewLogGroup(config *Config) *LogGroup {
	return &LogGroup{
		level: LogLevel(config.LogLevel),
		out:   log.New(os.Stdout, "", log.LstdFlags),
	}
}

// SetOutput redirects the group to the writer provided.
func (l *LogGroup) SetOutput(w io.Writer) {
	l.out.SetOutput(w)
}

// SetFlags sets the flags of the underlying logger.
func (l *LogGroup) SetFlags(x int) {
	l.out.SetFlags(x)
}

// WithScope returns a group that prefixes every message with scope, sharing
// the output and level of l.
func (l *LogGroup) WithScope(scope string) *LogGroup {
	return &LogGroup{level: l.level, scope: scope + " ", out: l.out}
}

// LogsDebug returns whether the group logs at debug level or finer.
func (l *LogGroup) LogsDebug() bool { return l.level >= DebugLevel }

// LogsTrace returns whether the group logs at trace level.
func (l *LogGroup) LogsTrace() bool { return l.level >= TraceLevel }

func (l *LogGroup) printf(level LogLevel, format string, v ...any) {
	if l.level >= level {
		l.out.Printf(levelPrefixes[level]+l.scope+format, v...)
	}
}

// Tracef logs at trace level. Arguments are handled in the manner of Printf.
func (l *LogGroup) Tracef(format string, v ...any) {
	l.printf(TraceLevel, format, v...)
}

// Debugf logs at debug level. Arguments are handled in the manner of Printf.
func (l *LogGroup) Debugf(format string, v ...any) {
	l.printf(DebugLevel, format, v...)
}

// Infof logs at info level. Arguments are handled in the manner of Printf.
func (l *LogGroup) Infof(format string, v ...any) {
	l.printf(InfoLevel, format, v...)
}

// Warnf logs at warning level. Arguments are handled in the manner of Printf.
func (l *LogGroup) Warnf(format string, v ...any) {
	l.printf(WarnLevel, format, v...)
}

// Errorf logs at error level. Arguments are handled in the manner of Printf.
func (l *LogGroup) Errorf(format string, v ...any) {
	l.printf(ErrLevel, format, v...)
}
