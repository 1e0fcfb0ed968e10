// Package snapshot loads the portfolio snapshot the dashboard renders.
package snapshot

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/vire-dashboard/internal/models"
)

//go:embed sample.json
var sampleJSON []byte

// Provider supplies the snapshot for one render pass.
type Provider interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
}

// NewProvider returns a file provider for path, or the built-in sample when path is empty.
func NewProvider(path string) Provider {
	if path == "" {
		return SampleProvider{}
	}
	return &FileProvider{Path: path}
}

// SampleProvider serves the built-in sample portfolio.
type SampleProvider struct{}

// Snapshot implements Provider.
func (SampleProvider) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return DecodeJSON(sampleJSON)
}

// Sample returns the built-in sample snapshot.
func Sample() *models.Snapshot {
	s, err := DecodeJSON(sampleJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded sample snapshot is invalid: %v", err))
	}
	return s
}

// FileProvider reads a JSON or YAML snapshot file on every call, so edits are
// picked up without a restart.
type FileProvider struct {
	Path string
}

// Snapshot implements Provider.
func (p *FileProvider) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", p.Path, err)
	}

	var s *models.Snapshot
	switch strings.ToLower(filepath.Ext(p.Path)) {
	case ".yaml", ".yml":
		s, err = DecodeYAML(data)
	default:
		s, err = DecodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", p.Path, err)
	}
	return s, nil
}

// DecodeJSON decodes and validates a JSON snapshot.
func DecodeJSON(data []byte) (*models.Snapshot, error) {
	var s models.Snapshot
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot JSON: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// DecodeYAML decodes and validates a YAML snapshot.
func DecodeYAML(data []byte) (*models.Snapshot, error) {
	var s models.Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
