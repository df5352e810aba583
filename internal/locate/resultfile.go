// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locate

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/imagecrypt/pkg/types"
)

// ResultFile is the on-disk form of a finished search, so a pick list can be
// reopened without walking the filesystem again.
type ResultFile struct {
	Query     string             `yaml:"query"`
	Config    types.LocateConfig `yaml:"config"`
	Matches   []Match            `yaml:"matches"`
	Stats     Stats              `yaml:"stats"`
	Timestamp time.Time          `yaml:"timestamp"`
}

// WriteResultFile saves the search output and the config that produced it.
func WriteResultFile(path string, cfg types.LocateConfig, out Output) error {
	rf := ResultFile{
		Query:     out.Query,
		Config:    cfg,
		Matches:   out.Matches,
		Stats:     out.Stats,
		Timestamp: time.Now().UTC(),
	}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved search.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}

// Output rebuilds the search output stored in the file.
func (rf *ResultFile) Output() Output {
	return Output{Query: rf.Query, Matches: rf.Matches, Stats: rf.Stats}
}
