package codegen

import (
	"fmt"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/Azamsaif47/Alfred-app/internal/config"
)

const defaultsHeader = `# Alfred API default configuration
# Generated from internal/config/config.go
# DO NOT EDIT MANUALLY

`

// GenerateDefaultsYAML writes every environment variable of the configuration
// with its default value. Variables without a default are written empty.
func GenerateDefaultsYAML(outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(defaultsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err := encoder.Encode(Defaults()); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return encoder.Close()
}

// Defaults maps each environment variable to its envDefault tag.
func Defaults() map[string]string {
	t := reflect.TypeOf(config.Config{})
	out := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, ok := field.Tag.Lookup("env")
		if !ok {
			continue
		}
		out[name] = field.Tag.Get("envDefault")
	}
	return out
}
