package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the config file expected in the data directory.
const FileName = "bankfeed.yaml"

// Config represents the top-level bankfeed.yaml configuration.
type Config struct {
	DataDir string       `yaml:"data_dir"`
	Listen  string       `yaml:"listen"`
	Import  ImportConfig `yaml:"import"`
	Git     GitConfig    `yaml:"git"`
}

// ImportConfig bounds the files accepted for import.
type ImportConfig struct {
	MinFileSize int64 `yaml:"min_file_size"`
	MaxFileSize int64 `yaml:"max_file_size"`
}

// GitConfig controls auto-committing the data directory after imports.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a bankfeed.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data directory.
func Default(dataDir string) *Config {
	return &Config{
		DataDir: dataDir,
		Listen:  ":8080",
		Import: ImportConfig{
			MinFileSize: 100,
			MaxFileSize: 10 << 20,
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Bankfeed Importer",
			AuthorEmail: "importer@bankfeed.dev",
		},
	}
}
