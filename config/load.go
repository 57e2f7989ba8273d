package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a scenario document from path, dispatching to JSON or YAML
// decoding by file extension (.yaml/.yml vs everything else), normalizing
// tolerant key spellings, and decoding into a Document. It does not validate
// or build a World — call Build for that.
func Load(path string) (Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read scenario document: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return decodeYAML(content)
	}
	return decodeJSON(content)
}

func decodeJSON(content []byte) (Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(content, &raw); err != nil {
		return Document{}, fmt.Errorf("unmarshal scenario document: %w", err)
	}
	return decodeNormalized(raw)
}

func decodeYAML(content []byte) (Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return Document{}, fmt.Errorf("unmarshal scenario document (yaml): %w", err)
	}
	return decodeNormalized(raw)
}

// decodeNormalized normalizes key spellings on the generic tree, then
// round-trips it through JSON to populate the typed Document — this lets
// Document keep ordinary `json:"..."` tags (including time.Time's built-in
// RFC3339 decoding) regardless of whether the source was JSON or YAML.
func decodeNormalized(raw map[string]any) (Document, error) {
	normalized := normalizeKeys(raw)
	bytes, err := json.Marshal(normalized)
	if err != nil {
		return Document{}, fmt.Errorf("re-marshal normalized scenario document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(bytes, &doc); err != nil {
		return Document{}, fmt.Errorf("decode scenario document: %w", err)
	}
	return doc, nil
}
