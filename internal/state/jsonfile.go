// Package state persists small JSON state files (settings, rest level,
// weather cache) and reports how each load obtained its value.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Outcome describes how a load call obtained its value.
type Outcome int

const (
	// Loaded means the file was read and parsed
	Loaded Outcome = iota
	// Missing means no file exists; defaults are in use
	Missing
	// Corrupt means the file exists but could not be parsed or failed validation; defaults are in use
	Corrupt
	// Unreadable means the file exists but could not be read; defaults are in use
	Unreadable
)

func (o Outcome) String() string {
	switch o {
	case Loaded:
		return "loaded"
	case Missing:
		return "missing"
	case Corrupt:
		return "corrupt"
	case Unreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// Result pairs an outcome with the underlying error, if any.
type Result struct {
	Outcome Outcome
	Err     error
}

// UsedDefaults reports whether the caller received default values.
func (r Result) UsedDefaults() bool {
	return r.Outcome != Loaded
}

// CorruptResult wraps err as a Corrupt outcome.
func CorruptResult(err error) Result {
	return Result{Outcome: Corrupt, Err: err}
}

// ReadFile reads path and classifies failures. On Loaded the raw bytes
// are returned.
func ReadFile(path string) ([]byte, Result) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Result{Outcome: Missing}
		}
		return nil, Result{Outcome: Unreadable, Err: fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)}
	}
	return data, Result{Outcome: Loaded}
}

// ReadJSON unmarshals path into v. Fields absent from the file keep the
// values v already holds, so callers pre-fill v with defaults.
func ReadJSON(path string, v interface{}) Result {
	data, res := ReadFile(path)
	if res.Outcome != Loaded {
		return res
	}
	if err := json.Unmarshal(data, v); err != nil {
		return CorruptResult(fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err))
	}
	return res
}

// WriteJSON writes v as indented JSON to path via a temporary file and
// rename. Parent directories are created as needed.
func WriteJSON(path string, v interface{}, indent string) error {
	data, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return WriteFile(path, data)
}

// WriteFile writes data to path atomically.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
