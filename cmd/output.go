package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// render prints v in the configured output format. The table format is each
// command's own business; this handles the structured forms.
func render(format string, v any, table func()) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	default:
		table()
		return nil
	}
}
