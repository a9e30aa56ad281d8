package feed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSources reads the YAML sources file and validates every entry.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s contains no sources", path)
	}

	seen := make(map[string]bool, len(file.Sources))
	for i, source := range file.Sources {
		if source.Name == "" {
			return nil, fmt.Errorf("source at index %d has no name", i)
		}
		if source.URL == "" {
			return nil, fmt.Errorf("source %q has no URL", source.Name)
		}
		if seen[source.Name] {
			return nil, fmt.Errorf("duplicate source name %q", source.Name)
		}
		seen[source.Name] = true
	}

	return file.Sources, nil
}
