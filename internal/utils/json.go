package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
)

// LoadJSON reads a JSON file and strictly decodes it into target.
// Unknown fields are rejected so typos in game data fail at startup.
func LoadJSON(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := DecodeStrict(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from %s: %w", path, err)
	}
	return nil
}

// LoadJSONFS is LoadJSON over an fs.FS
func LoadJSONFS(fsys fs.FS, path string, target interface{}) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := DecodeStrict(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from %s: %w", path, err)
	}
	return nil
}

// DecodeStrict unmarshals data, rejecting unknown fields and trailing content
func DecodeStrict(data []byte, target interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected trailing data")
	}
	return nil
}
