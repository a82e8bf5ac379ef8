package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSON serializes a report or scan as indented JSON.
// If path is "-" or empty, writes to stdout.
func WriteJSON(v any, path string) error {
	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return EncodeJSON(w, v)
}

// EncodeJSON writes v to w as indented JSON without HTML escaping.
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}
