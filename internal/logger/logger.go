// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logger wraps logrus so packages log through named component
// entries without importing logrus directly.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the logrus logger behind Root.
type Logger = logrus.Logger

// Entry is a logger bound to fields, as returned by Named.
type Entry = logrus.Entry

// Fields is a set of structured key/value pairs for WithFields.
type Fields = logrus.Fields

// rootLogger is never replaced; SetRoot copies settings into it so entries
// created by Named before the call follow it.
var rootLogger = newRoot(os.Stderr, logrus.WarnLevel)

func newRoot(w io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(PlainFormatter{})
	return l
}

// Configure sets the root level and output. An empty level keeps the
// current one; a nil writer keeps the current output.
func Configure(level string, w io.Writer) error {
	l := Root()
	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("parsing log level %q: %w", level, err)
		}
		l.SetLevel(lvl)
	}
	if w != nil {
		l.SetOutput(w)
	}
	return nil
}

// SetupFile appends root output to path, creating parent directories.
// The caller closes the returned file.
func SetupFile(path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	Root().SetOutput(f)
	return f, nil
}

// Root returns the shared logger.
func Root() *Logger {
	return rootLogger
}

// SetRoot makes the shared logger write like l: its output, level,
// formatter and hooks. Entries already returned by Named follow the change.
// nil restores stderr at warn level with the plain formatter.
func SetRoot(l *Logger) {
	if l == nil {
		l = newRoot(os.Stderr, logrus.WarnLevel)
	}
	rootLogger.SetOutput(l.Out)
	rootLogger.SetLevel(l.GetLevel())
	rootLogger.SetFormatter(l.Formatter)
	rootLogger.ReplaceHooks(l.Hooks)
}

// Named returns an entry tagged with a component field.
func Named(component string) *Entry {
	entry := logrus.NewEntry(Root())
	if component != "" {
		entry = entry.WithField("component", component)
	}
	return entry
}

// PlainFormatter writes: [timestamp] [LEVEL] [component] message key=value...
type PlainFormatter struct{}

// Format implements logrus.Formatter.
func (PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry == nil {
		return []byte{}, nil
	}
	parts := make([]string, 0, 5)
	parts = append(parts, fmt.Sprintf("[%s]", entry.Time.UTC().Format(time.RFC3339)))
	parts = append(parts, fmt.Sprintf("[%s]", strings.ToUpper(entry.Level.String())))
	if c, ok := entry.Data["component"].(string); ok && c != "" {
		parts = append(parts, fmt.Sprintf("[%s]", c))
	}
	parts = append(parts, entry.Message)
	if fields := formatFields(entry.Data); fields != "" {
		parts = append(parts, fields)
	}
	return []byte(strings.Join(parts, " ") + "\n"), nil
}

func formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "component" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}
