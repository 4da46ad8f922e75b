// Package serialization encodes CLI reports in a selectable wire format.
package serialization

import (
	"fmt"
	"io"
)

const (
	// JSONType represents the serialization type for JSON format.
	JSONType = "json"
	// GobType represents the serialization type for Gob format.
	GobType = "gob"
)

// Encoder writes values to an underlying stream.
type Encoder interface {
	Encode(v any) error
}

// Decoder reads values from an underlying stream.
type Decoder interface {
	Decode(v any) error
}

// NewEncoder returns the encoder registered under kind.
func NewEncoder(kind string, w io.Writer) (Encoder, error) {
	switch kind {
	case JSONType:
		return JsonEncoder(w), nil
	case GobType:
		return GobEncoder(w), nil
	default:
		return nil, fmt.Errorf("unsupported serialization type: %s", kind)
	}
}

// NewDecoder returns the decoder registered under kind.
func NewDecoder(kind string, r io.Reader) (Decoder, error) {
	switch kind {
	case JSONType:
		return JsonDecoder(r), nil
	case GobType:
		return GobDecoder(r), nil
	default:
		return nil, fmt.Errorf("unsupported serialization type: %s", kind)
	}
}
