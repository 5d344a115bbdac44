package codegen

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/Azamsaif47/Alfred-app/internal/config"
)

// GenerateJSONSchema writes config.schema.json for the service configuration
// into outputDir and returns the written path.
func GenerateJSONSchema(outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}

	schema := reflector.Reflect(&config.Config{})
	schema.Title = "Alfred API Configuration"
	schema.Description = "Environment driven configuration of the alfred conversational agent service"

	path := filepath.Join(outputDir, "config.schema.json")
	if err := writeSchemaFile(path, schema); err != nil {
		return "", fmt.Errorf("write schema: %w", err)
	}
	return path, nil
}

func writeSchemaFile(path string, schema *jsonschema.Schema) error {
	data, err := schema.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
