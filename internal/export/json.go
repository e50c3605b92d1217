package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sadopc/timeline/internal/timeline"
)

// ToJSON writes p as an indented JSON document.
func ToJSON(p timeline.Payload, path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
