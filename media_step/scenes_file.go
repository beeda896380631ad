package media_step

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/serisow/storystudio/pipeline_type"
)

// SaveScenes writes the scene list as indented JSON.
func SaveScenes(path string, scenes []pipeline_type.Scene) error {
	data, err := json.MarshalIndent(scenes, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling scenes: %w", err)
	}
	return writeFile(path, data)
}

// LoadScenes reads a scene list saved by SaveScenes, possibly edited by
// hand since. Tones are normalised on the way in.
func LoadScenes(path string) ([]pipeline_type.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenes: %w", err)
	}
	var scenes []pipeline_type.Scene
	if err := json.Unmarshal(data, &scenes); err != nil {
		return nil, fmt.Errorf("error parsing scenes: %w", err)
	}
	return pipeline_type.NormalizeScenes(scenes), nil
}

// SaveStory keeps the source text next to the scenes derived from it.
func SaveStory(path, story string) error {
	return writeFile(path, []byte(story))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
