package main

import (
	"log"

	"github.com/tufyaa/yahoo-talib/internal/config"
)

func main() {
	schemaPath, samplePath, err := config.WriteSchemaFiles("./config")
	if err != nil {
		log.Fatalf("Failed to generate schema: %v", err)
	}

	log.Printf("Sample config available at %s", samplePath)
	log.Printf("Schema successfully generated at %s", schemaPath)
}
