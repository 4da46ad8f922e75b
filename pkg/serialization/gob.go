package serialization

import (
	"encoding/gob"
	"io"
)

// Gob streams reports in gob format, for Go consumers of the CLI output.
type Gob struct {
	dec *gob.Decoder
	enc *gob.Encoder
}

// Decode reads the next report into v.
func (g *Gob) Decode(v any) error {
	return g.dec.Decode(v)
}

// Encode writes v as the next report. Type information is sent once per stream.
func (g *Gob) Encode(v any) error {
	return g.enc.Encode(v)
}

// GobDecoder reads a report stream written by GobEncoder.
func GobDecoder(r io.Reader) Decoder {
	return &Gob{dec: gob.NewDecoder(r)}
}

// GobEncoder starts a report stream on w.
func GobEncoder(w io.Writer) Encoder {
	return &Gob{enc: gob.NewEncoder(w)}
}
