package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Reader interface {
	Read() (*Config, error)
}

type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, validate(cfg)
}

// FileReader reads a .env, .yaml or .json file and then lets the
// environment override it.
type FileReader struct {
	path string
}

func NewFileReader(path string) FileReader {
	return FileReader{path: path}
}

func (r FileReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadConfig(r.path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", r.path, err)
	}

	return cfg, validate(cfg)
}

func validate(cfg *Config) error {
	_, err := cfg.Report.Location()
	if err != nil {
		return fmt.Errorf("invalid report timezone %q: %w", cfg.Report.Timezone, err)
	}
	if cfg.Calendar.Concurrency < 1 {
		return fmt.Errorf("calendar concurrency must be positive, got %d", cfg.Calendar.Concurrency)
	}
	return nil
}
