package form

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Decode reads a form definition from r.
func Decode(r io.Reader) (*Definition, error) {
	var d Definition
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("form: failed to decode definition: %w", err)
	}
	return &d, nil
}

// Encode writes d to w as two-space indented JSON followed by a newline.
func Encode(w io.Writer, d *Definition) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("form: failed to encode definition: %w", err)
	}
	return nil
}

// ReadFile loads a definition written by WriteFile or fetched from the form service.
func ReadFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("form: failed to open file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile stores d at path, replacing any existing file.
func WriteFile(path string, d *Definition) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("form: failed to create file: %w", err)
	}
	if err := Encode(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
