package concore

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of an engine configuration file. Field
// names match EngineConfig's, lower-cased, for a readable yaml document.
type fileConfig struct {
	AutoPropagate   bool `yaml:"autoPropagate"`
	AllowViolations bool `yaml:"allowViolations"`
	ViolationBudget int  `yaml:"violationBudget"`
}

// LoadEngineConfig reads an EngineConfig from a yaml file at path.
func LoadEngineConfig(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, errors.Wrapf(err, "concore: reading config %s", path)
	}
	return ParseEngineConfig(data)
}

// ParseEngineConfig decodes an EngineConfig from yaml bytes already read
// into memory.
func ParseEngineConfig(data []byte) (EngineConfig, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return EngineConfig{}, errors.Wrap(err, "concore: parsing config")
	}
	return EngineConfig{
		AutoPropagate:   fc.AutoPropagate,
		AllowViolations: fc.AllowViolations,
		ViolationBudget: fc.ViolationBudget,
	}, nil
}
