package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/theta-lang/theta/internal/theta"
)

// Config is the optional theta.yaml project file: the module search path
// and the root modules tools should check by default.
type Config struct {
	Path    []string `yaml:"path"`
	Modules []string `yaml:"modules"`
}

// LoadConfig reads and decodes a theta.yaml file.
func LoadConfig(file string) (*Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, &theta.IOError{Err: err}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &theta.IOError{Err: fmt.Errorf("%s: %w", file, err)}
	}
	return &cfg, nil
}
