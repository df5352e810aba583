// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Defaults for the locate stage. Callers override them through LocateConfig;
// WithDefaults never replaces a value the caller set.
const (
	DefaultMaxResults = 6
	DefaultThreshold  = 0.5
)

// DefaultExtensions lists the image file extensions admitted by the walker.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".svg", ".bmp"}

// LocateConfig holds settings for a single locate invocation.
type LocateConfig struct {
	// Roots are the directories searched in parallel, one walker per root.
	// Empty means the platform's per-user media directories.
	Roots []string `json:"roots,omitempty" yaml:"roots,omitempty" mapstructure:"roots"`

	// MaxResults caps the returned list and gates the cooperative cutoff (default 6).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// Threshold is the admission threshold; a candidate must score strictly
	// above it (default 0.5).
	Threshold float64 `json:"threshold" yaml:"threshold" mapstructure:"threshold"`

	// Extensions are the admissible file extensions, lower case with the dot.
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty" mapstructure:"extensions"`

	// Timeout bounds the whole search. Zero disables it.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" mapstructure:"timeout"`

	// Sequential runs walkers one after another instead of concurrently.
	Sequential bool `json:"sequential,omitempty" yaml:"sequential,omitempty" mapstructure:"sequential"`
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
// Roots are left empty; the locate package resolves them.
func (c LocateConfig) WithDefaults() LocateConfig {
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}
	return c
}

// VaultConfig holds settings for the vault store.
type VaultConfig struct {
	// DBPath is the SQLite database file (default <UserConfigDir>/imagecrypt/imagecrypt.db).
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
}
