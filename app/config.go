package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config carries the user-level report defaults. Flags override anything
// loaded here.
type Config struct {
	BasisStrategy string
	WindowPolicy  string
	AllDecimals   bool
	CsvOutputDir  string
}

func DefaultConfig() *Config {
	return &Config{
		BasisStrategy: "average",
		WindowPolicy:  "default",
	}
}

// LoadConfig reads ~/.invext.toml (or the given path) over the defaults.
// A missing file is not an error; a malformed one is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".invext.toml")
	}
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("error loading config %s: %w", path, err)
	}

	if v := k.String("report.basis"); v != "" {
		cfg.BasisStrategy = v
	}
	if v := k.String("report.policy"); v != "" {
		cfg.WindowPolicy = v
	}
	if k.Exists("report.all_decimals") {
		cfg.AllDecimals = k.Bool("report.all_decimals")
	}
	if v := k.String("report.csv_output_dir"); v != "" {
		cfg.CsvOutputDir = v
	}
	return cfg, nil
}
