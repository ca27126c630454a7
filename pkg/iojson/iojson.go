// Package iojson writes JSON command output for scripting consumers.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Error is the standard shape for errors emitted as JSON.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Write marshals obj as indented JSON to stdout, reporting marshal
// failures on stderr.
func Write(obj any) error {
	return WriteWith(os.Stdout, os.Stderr, obj)
}

// WriteWith marshals obj as indented JSON to w. Marshal failures are
// reported to ew as a JSON error blob; they indicate a bug, since every
// type passed here is JSON-serializable by construction.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		_, werr := fmt.Fprintln(ew, marshalError("error marshaling output", err))
		return werr
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// WriteLine marshals obj as a single compact JSON line to w, for
// line-oriented scripting consumers.
func WriteLine(w io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// WriteError emits an Error to stderr.
func WriteError(msg string, data map[string]any) error {
	bits, err := json.MarshalIndent(Error{Message: msg, Data: data}, "", "  ")
	if err != nil {
		bits = []byte(marshalError(msg, err))
	}
	_, err = fmt.Fprintln(os.Stderr, string(bits))
	return err
}

// marshalError hand-builds an error blob when json.Marshal itself fails.
func marshalError(msg string, jsonErr error) string {
	msgBytes, _ := json.Marshal(msg)
	errBytes, _ := json.Marshal(jsonErr.Error())
	return fmt.Sprintf(`{"message":%s,"data":{"json_error":%s}}`, msgBytes, errBytes)
}
