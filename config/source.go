package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source looks up a raw configuration value by its ENV-style key.
type Source interface {
	Lookup(key string) (string, bool)
}

// EnvSource reads the process environment.
type EnvSource struct{}

func (EnvSource) Lookup(key string) (string, bool) { return os.LookupEnv(key) }

// MapSource is an in-memory snapshot, used for files and tests.
type MapSource map[string]string

func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Keys 返回排序后的键，便于日志输出。
func (m MapSource) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Chain consults each source in order; the first one holding the key wins.
type Chain []Source

func (c Chain) Lookup(key string) (string, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if v, ok := s.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// LoadDotEnv reads KEY=VALUE pairs from a dotenv file without touching the
// process environment.
func LoadDotEnv(path string) (MapSource, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read dotenv: %w", err)
	}
	return MapSource(values), nil
}

// LoadYAML reads a YAML file into a flat source. Top-level keys may already be
// ENV-style (GRID_LEVELS: 10); nested mappings are flattened with "_" and
// upper-cased, so grid: {levels: 10} also yields GRID_LEVELS.
func LoadYAML(path string) (MapSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out := make(MapSource)
	flatten("", doc, out)
	return out, nil
}

func flatten(prefix string, node map[string]interface{}, out MapSource) {
	for k, v := range node {
		key := strings.ToUpper(k)
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case []interface{}:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, fmt.Sprint(item))
			}
			out[key] = strings.Join(parts, ",")
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// LoadFile picks the decoder from the file extension: .yaml/.yml are YAML,
// everything else is treated as a dotenv file.
func LoadFile(path string) (MapSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return LoadDotEnv(path)
	}
}
