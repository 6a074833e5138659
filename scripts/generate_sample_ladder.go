package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// generateSampleLadder writes a sample seller-level ladder file matching the
// compiled-in default, for exercising the file and S3 loaders locally.
func main() {
	dataDir := "data/levels"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	ladder := map[string]interface{}{
		"tiers": []map[string]interface{}{
			{"name": "Newbie", "xpRequired": 250},
			{"name": "Amateur", "xpRequired": 500},
			{"name": "Highly Rated", "xpRequired": 1000},
			{"name": "Guru"},
		},
	}

	data, err := json.MarshalIndent(ladder, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal ladder: %v", err)
	}

	path := filepath.Join(dataDir, "ladder.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("Failed to write ladder file: %v", err)
	}

	fmt.Printf("Wrote sample ladder to %s\n", path)
}
