package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// writeOutput renders a command result to w in the requested format.
func writeOutput(w io.Writer, format string, v any) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", outputJSON:
		pretty, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(pretty))
		return err
	case outputYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toPlain(v)); err != nil {
			return fmt.Errorf("encoding yaml output: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// toPlain round-trips v through json so that yaml keys follow the json tags.
func toPlain(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}

	var plain any
	if err := json.Unmarshal(data, &plain); err != nil {
		return v
	}
	return plain
}
