// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/script-engine/pkg/types"
)

const (
	jsonDir    = "json"
	scriptsDir = "scripts"
)

// Artifacts writes run outputs under a base directory: analysis JSON
// into json/, scripts and their metadata sidecars into scripts/.
type Artifacts struct {
	baseDir string
	now     func() time.Time
}

// NewArtifacts builds an artifact writer rooted at baseDir.
func NewArtifacts(baseDir string) *Artifacts {
	return &Artifacts{baseDir: baseDir, now: time.Now}
}

// stamp formats a timestamp for artifact file names.
func (a *Artifacts) stamp() string {
	return a.now().Format("20060102_150405")
}

// SaveAnalysis writes the intermediate analysis artifact as
// pretty-printed UTF-8 JSON and returns the path.
func (a *Artifacts) SaveAnalysis(analysis *types.Analysis) (string, error) {
	dir := filepath.Join(a.baseDir, jsonDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling analysis: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("analysis_%s.json", a.stamp()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing analysis: %w", err)
	}
	return path, nil
}

// LoadAnalysis reads a previously saved analysis artifact.
func LoadAnalysis(path string) (*types.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading analysis: %w", err)
	}
	var analysis types.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("parsing analysis: %w", err)
	}
	return &analysis, nil
}

// SaveScript writes the final script plus a YAML metadata sidecar and
// returns the script path.
func (a *Artifacts) SaveScript(script string, meta *types.RunMetadata) (string, error) {
	dir := filepath.Join(a.baseDir, scriptsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	stamp := a.stamp()
	path := filepath.Join(dir, fmt.Sprintf("script_%s.txt", stamp))
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return "", fmt.Errorf("writing script: %w", err)
	}

	metaData, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshaling metadata: %w", err)
	}
	metaPath := filepath.Join(dir, fmt.Sprintf("script_%s.yaml", stamp))
	if err := os.WriteFile(metaPath, metaData, 0o644); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}

	return path, nil
}
