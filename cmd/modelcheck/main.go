// Package main provides the model artifact validation tool. It checks an
// artifact against the production feature manifest without touching any
// warehouse, and can bootstrap a sample artifact file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"time-to-shop/internal/domain"
	"time-to-shop/internal/model"
)

func main() {
	modelPath := flag.String("model-path", "model.json", "Model artifact path")
	writeSample := flag.Bool("write-sample", false, "Write the built-in sample artifact to -model-path and exit")
	flag.Parse()

	if *writeSample {
		if err := writeSampleArtifact(*modelPath); err != nil {
			fmt.Fprintf(os.Stderr, "write sample artifact: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote sample artifact to %s\n", *modelPath)
		return
	}

	manifest := domain.DefaultFeatureManifest()
	m, err := model.Load(*modelPath, manifest, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "artifact rejected: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Model Artifact ===")
	fmt.Printf("Path:     %s\n", *modelPath)
	fmt.Printf("Version:  %s\n", m.Version())
	fmt.Printf("Features: %d\n", m.FeatureCount())
	fmt.Println("Status:   valid")
}

// writeSampleArtifact serializes the built-in sample ensemble to path.
func writeSampleArtifact(path string) error {
	data, err := json.MarshalIndent(model.SampleArtifact(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
