package ir

import (
	"fmt"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
)

// File extensions the codec dispatches on.
const (
	ExtJSON    = ".json"
	ExtMsgpack = ".msgpack"
	ExtBin     = ".bin"
)

// Encode serializes the document in the format implied by the path
// extension: ExtJSON for the indented JSON form, ExtMsgpack or ExtBin
// for the binary form.
func Encode(doc *Document, path string) ([]byte, error) {
	switch ext := filepath.Ext(path); ext {
	case ExtJSON:
		return MarshalJSON(doc)
	case ExtMsgpack, ExtBin:
		return MarshalMsgpack(doc)
	default:
		return nil, fmt.Errorf("ir: unsupported extension %q in %q (want %s, %s or %s)", ext, path, ExtJSON, ExtMsgpack, ExtBin)
	}
}

// Decode reverses Encode, dispatching on the same path extension.
func Decode(data []byte, path string) (*Document, error) {
	switch ext := filepath.Ext(path); ext {
	case ExtJSON:
		return UnmarshalJSON(data)
	case ExtMsgpack, ExtBin:
		return UnmarshalMsgpack(data)
	default:
		return nil, fmt.Errorf("ir: unsupported extension %q in %q (want %s, %s or %s)", ext, path, ExtJSON, ExtMsgpack, ExtBin)
	}
}

// MarshalJSON encodes the document as indented JSON with a trailing
// newline, so on-disk snapshots diff cleanly.
func MarshalJSON(doc *Document) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ir: marshal document: %w", err)
	}
	return append(b, '\n'), nil
}

// UnmarshalJSON decodes a document from its JSON form. Numeric defaults
// come back as float64, as usual for JSON.
func UnmarshalJSON(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("ir: unmarshal document: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("ir: unsupported document version %q (this build reads %q)", doc.Version, Version)
	}
	return doc, nil
}

// MarshalMsgpack encodes the document in its binary form.
func MarshalMsgpack(doc *Document) ([]byte, error) {
	b, err := msgpack.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("ir: marshal document: %w", err)
	}
	return b, nil
}

// UnmarshalMsgpack decodes a document from its binary form.
func UnmarshalMsgpack(data []byte) (*Document, error) {
	doc := &Document{}
	if err := msgpack.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("ir: unmarshal document: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("ir: unsupported document version %q (this build reads %q)", doc.Version, Version)
	}
	return doc, nil
}
