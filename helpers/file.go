package helpers

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

var ErrReadYaml = errors.New("failed to read config file")

func LoadYamlFile[T any](filepath string, conf *T) error {
	if filepath == "" {
		return nil
	}
	bytes, err := os.ReadFile(filepath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stdout, "failed to open config file '%s': %s\n", filepath, err)
		return ErrReadYaml
	}

	if err := yaml.UnmarshalStrict(bytes, conf); err != nil {
		return fmt.Errorf("%w: %v", ErrReadYaml, err)
	}
	return nil
}
