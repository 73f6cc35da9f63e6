package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel     string `yaml:"log_level"`
	DBPath       string `yaml:"db_path"`
	CrossLingual bool   `yaml:"cross_lingual"`
	SkipInvalid  bool   `yaml:"skip_invalid"`
	Alignment    struct {
		NumBest       int    `yaml:"num_best"`         // alignments kept per sentence
		NumBestInFile int    `yaml:"num_best_in_file"` // records per sentence in file; <0 means num_best
		Src2Tgt       string `yaml:"src2tgt"`          // n-best file, gold tokens as source
		Tgt2Src       string `yaml:"tgt2src"`          // n-best file, test tokens as source
	} `yaml:"alignment"`
	Output struct {
		Dir    string `yaml:"dir"`
		Format string `yaml:"format"`
	} `yaml:"output"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		LogLevel:    "info",
		DBPath:      "amrdiff.db",
		SkipInvalid: true,
	}
	cfg.Alignment.NumBest = 5
	cfg.Alignment.NumBestInFile = -1
	cfg.Output.Dir = "out"
	cfg.Output.Format = "dot"
	return cfg
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config over the defaults
	cfg := Default()
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if cfg.Alignment.NumBestInFile < 0 {
		cfg.Alignment.NumBestInFile = cfg.Alignment.NumBest
	}

	// 3. Override with Environment Variables if present
	if level := os.Getenv("AMRDIFF_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if db := os.Getenv("AMRDIFF_DB"); db != "" {
		cfg.DBPath = db
	}
	if p := os.Getenv("AMRDIFF_SRC2TGT"); p != "" {
		cfg.Alignment.Src2Tgt = p
	}
	if p := os.Getenv("AMRDIFF_TGT2SRC"); p != "" {
		cfg.Alignment.Tgt2Src = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Evidence reports whether both n-best alignment files are configured.
func (c *Config) Evidence() bool {
	return c.Alignment.Src2Tgt != "" && c.Alignment.Tgt2Src != ""
}

func (c *Config) Validate() error {
	a := c.Alignment
	if a.NumBest <= 0 {
		return fmt.Errorf("alignment.num_best must be positive, got %d", a.NumBest)
	}
	if a.NumBestInFile >= 0 && a.NumBestInFile < a.NumBest {
		return fmt.Errorf("alignment.num_best_in_file (%d) is below num_best (%d)", a.NumBestInFile, a.NumBest)
	}
	if (a.Src2Tgt == "") != (a.Tgt2Src == "") {
		return errors.New("alignment.src2tgt and alignment.tgt2src must be set together")
	}
	switch c.Output.Format {
	case "dot", "mermaid", "json":
	default:
		return fmt.Errorf("unknown output.format %q", c.Output.Format)
	}
	return nil
}
