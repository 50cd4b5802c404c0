package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// EnvEntry is a single KEY=VALUE assignment read from an env file.
type EnvEntry struct {
	Key   string
	Value string
}

// ParseEnv reads KEY=VALUE assignments. Blank lines, lines starting with '#'
// and lines without '=' are skipped. Only the first '=' separates the key
// from the value, and one layer of surrounding quotes is stripped.
func ParseEnv(r io.Reader) ([]EnvEntry, error) {
	scanner := bufio.NewScanner(r)
	var entries []EnvEntry
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		entries = append(entries, EnvEntry{Key: key, Value: unquote(strings.TrimSpace(value))})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if (first == '"' || first == '\'') && first == last {
		return value[1 : len(value)-1]
	}
	return value
}

// LoadEnvFile parses the env file at path and exports every entry into the
// process environment, overriding existing values. It reports whether the
// file existed; a missing file is not an error.
func LoadEnvFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("load env file %q: %w", path, err)
	}
	defer f.Close()

	entries, err := ParseEnv(f)
	if err != nil {
		return true, fmt.Errorf("load env file %q: %w", path, err)
	}
	for _, entry := range entries {
		if err := os.Setenv(entry.Key, entry.Value); err != nil {
			return true, fmt.Errorf("load env file %q: set %s: %w", path, entry.Key, err)
		}
	}
	return true, nil
}
