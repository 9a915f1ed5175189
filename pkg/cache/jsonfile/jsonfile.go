// Package jsonfile stores pipeline data as flat JSON documents. Documents are written with
// sorted keys and a fixed indentation so cache files diff cleanly. Writes replace the whole
// file; there is no locking and concurrent writers to one path are unsupported.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const indent = "    "

// Marshal encodes v with sorted object keys at every level and four space indentation.
func Marshal(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	// round trip through generic values so struct fields are sorted like map keys
	var generic interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(generic); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save overwrites path with the JSON encoding of v.
func Save(path string, v interface{}) error {
	data, err := Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "could not encode %s", path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "could not create directory for %s", path)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "could not write %s", path)
	}
	log.Debugf("saved %s (%d bytes)", path, len(data))
	return nil
}

// Load decodes path into v. found is false when the file does not exist, which is not an error.
func Load(path string, v interface{}) (found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "could not read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, errors.Wrapf(err, "could not decode %s", path)
	}
	return true, nil
}

// Exists reports whether path exists and holds a valid JSON document.
func Exists(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Valid(data)
}

// Update merges entries over the map stored at path and writes the merged map back.
// Entries already present are replaced; the last writer wins.
func Update(path string, entries map[string]json.RawMessage) error {
	merged := map[string]json.RawMessage{}
	if _, err := Load(path, &merged); err != nil {
		return err
	}
	for k, v := range entries {
		merged[k] = v
	}
	return Save(path, merged)
}

// UpdateValues is Update for typed values.
func UpdateValues[T any](path string, entries map[string]T) error {
	raw := make(map[string]json.RawMessage, len(entries))
	for k, v := range entries {
		b, err := json.Marshal(v)
		if err != nil {
			return errors.Wrapf(err, "could not encode entry %s", k)
		}
		raw[k] = b
	}
	return Update(path, raw)
}
