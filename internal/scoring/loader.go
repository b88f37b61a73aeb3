package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadWeightsConfig reads a partial weights override from a YAML file.
// Fields left out of the file keep their defaults at Resolve time.
func LoadWeightsConfig(path string) (WeightsConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return WeightsConfig{}, fmt.Errorf("read weights file: %w", err)
	}
	var cfg WeightsConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return WeightsConfig{}, fmt.Errorf("parse weights file: %w", err)
	}
	return cfg, nil
}
