package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts json, yaml/yml or csv, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// FormatForPath guesses the format from the file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatJSON
}

// ReadDocument loads a JSON or YAML payload as a generic document, ready for
// timeline.NormalizeDocument. The format follows the file extension.
func ReadDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}

	var doc map[string]any
	switch FormatForPath(path) {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatCSV:
		return nil, fmt.Errorf("import %s: csv files cannot be imported", filepath.Base(path))
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}
