package serialization

import (
	"encoding/json"
	"io"
)

// Json writes one indented JSON document per report.
type Json struct {
	dec *json.Decoder
	enc *json.Encoder
}

// Decode reads the next document into v.
func (j *Json) Decode(v any) error {
	return j.dec.Decode(v)
}

// Encode writes v followed by a newline.
func (j *Json) Encode(v any) error {
	return j.enc.Encode(v)
}

// JsonDecoder reads a stream of JSON documents.
func JsonDecoder(r io.Reader) Decoder {
	return &Json{dec: json.NewDecoder(r)}
}

// JsonEncoder writes reports indented by two spaces.
func JsonEncoder(w io.Writer) Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &Json{enc: enc}
}
