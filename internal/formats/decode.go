package formats

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Extensions returns the file extensions this package can decode.
func Extensions() []string {
	return []string{".yaml", ".yml", ".json"}
}

// Supported reports whether ext routes to a decoder.
func Supported(ext string) bool {
	for _, s := range Extensions() {
		if ext == s {
			return true
		}
	}
	return false
}

// Parse decodes data into a Document using the decoder for ext. The two
// formats are interchangeable; authors pick whichever reads better.
func Parse(data []byte, ext string) (Document, error) {
	switch ext {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return Document{}, fmt.Errorf("formats: unsupported extension %q", ext)
	}
}

// ParseYAML decodes a YAML asset file.
func ParseYAML(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("formats: yaml unmarshal: %w", err)
	}
	return doc, nil
}

// ParseJSON decodes a JSON asset file.
func ParseJSON(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("formats: json unmarshal: %w", err)
	}
	return doc, nil
}
