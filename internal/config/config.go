// Package config loads evaluation settings from JSON, YAML or TOML files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"swypesim/internal/inputmodel"
	"swypesim/internal/model"
	"swypesim/internal/storage"
)

// Eval describes one fitness evaluation. Paths are used as given; an empty
// Layout selects the built-in QWERTY keyboard.
type Eval struct {
	Model      string            `json:"model" yaml:"model" toml:"model"`
	Network    string            `json:"network" yaml:"network" toml:"network"`
	NetworkID  string            `json:"network_id" yaml:"network_id" toml:"network_id"`
	Layout     string            `json:"layout" yaml:"layout" toml:"layout"`
	Vocabulary string            `json:"vocabulary" yaml:"vocabulary" toml:"vocabulary"`
	Words      []string          `json:"words" yaml:"words" toml:"words"`
	Iterations int               `json:"iterations" yaml:"iterations" toml:"iterations"`
	Workers    int               `json:"workers" yaml:"workers" toml:"workers"`
	Seed       int64             `json:"seed" yaml:"seed" toml:"seed"`
	Store      string            `json:"store" yaml:"store" toml:"store"`
	DBPath     string            `json:"db_path" yaml:"db_path" toml:"db_path"`
	LogLevel   string            `json:"log_level" yaml:"log_level" toml:"log_level"`
	Params     inputmodel.Params `json:"params" yaml:"params" toml:"params"`
}

func Default() *Eval {
	return &Eval{
		Model:      string(inputmodel.KindInterpolation),
		Iterations: 1000,
		Workers:    4,
		Seed:       1,
		Store:      storage.DefaultStoreKind(),
		DBPath:     "swypesim.db",
		LogLevel:   "info",
		Params:     inputmodel.DefaultParams(),
	}
}

// Load reads path over the defaults. The format follows the file extension;
// unknown extensions are tried as TOML, JSON and YAML in turn.
func Load(path string) (*Eval, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if err := autoDetectAndParse(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.Params = cfg.Params.WithDefaults()
	return cfg, nil
}

func autoDetectAndParse(data []byte, cfg *Eval) error {
	if _, err := toml.Decode(string(data), cfg); err == nil {
		return nil
	}
	if err := json.Unmarshal(data, cfg); err == nil {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err == nil {
		return nil
	}
	return fmt.Errorf("unable to parse config file (tried TOML, JSON, YAML)")
}

func (c *Eval) Validate() error {
	switch inputmodel.Kind(c.Model) {
	case inputmodel.KindInterpolation:
	case inputmodel.KindNeural:
		if c.Network == "" && c.NetworkID == "" {
			return fmt.Errorf("%w: neural model needs a network artifact or stored network id", model.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown model %q", model.ErrInvalidInput, c.Model)
	}
	if c.Vocabulary == "" && len(c.Words) == 0 {
		return fmt.Errorf("%w: no vocabulary configured", model.ErrInvalidInput)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", model.ErrInvalidInput, c.Iterations)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", model.ErrInvalidInput, c.Workers)
	}
	return c.Params.WithDefaults().Validate()
}
