package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Azamsaif47/Alfred-app/internal/config/codegen"
)

func main() {
	outDir := flag.String("out", "config", "directory for config.schema.json and defaults.yaml")
	flag.Parse()

	schemaPath, err := codegen.GenerateJSONSchema(*outDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("generated %s\n", schemaPath)

	defaultsPath := filepath.Join(*outDir, "defaults.yaml")
	if err := codegen.GenerateDefaultsYAML(defaultsPath); err != nil {
		fmt.Fprintf(os.Stderr, "generate defaults: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("generated %s\n", defaultsPath)
}
