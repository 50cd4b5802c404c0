package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads a target manifest from the provided path.
func Load(path string) (*Target, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}

	var generic map[string]any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", absPath, err)
	}
	if generic != nil {
		if err := checkSchema(generic); err != nil {
			return nil, fmt.Errorf("%s: %w", absPath, err)
		}
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var doc Target
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: decode: %w", absPath, err)
	}
	doc.Source = absPath

	baseDir := filepath.Dir(absPath)
	doc.Workdir = resolvePath(baseDir, os.ExpandEnv(doc.Workdir))
	doc.ApplyDefaults()
	doc.EnvFile = resolvePath(doc.Workdir, os.ExpandEnv(doc.EnvFile))
	doc.ProjectFile = resolvePath(doc.Workdir, os.ExpandEnv(doc.ProjectFile))

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	return &doc, nil
}

// LoadOrDefault reads the manifest at path. A missing file yields the
// built-in defaults unless required is set, in which case the open error is
// returned.
func LoadOrDefault(path string, required bool) (*Target, error) {
	if path != "" {
		target, err := Load(path)
		if err == nil {
			return target, nil
		}
		if required || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return Default(), nil
}

func resolvePath(base, path string) string {
	if path == "" {
		return base
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(base, path))
}
