// Package format writes CLI output.
package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Formats lists the values accepted by --format.
var Formats = []string{"json", "edn", "md", "text"}

// Write writes structured output.
//
// Supported formats:
// - json (default)
// - edn
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON. Types with their own MarshalJSON (such as an
// ordered snapshot) keep their key order.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// IsDocument reports whether format is a markdown-based format.
func IsDocument(format string) bool {
	return format == "md" || format == "text"
}
