package gribio

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// ErrMalformedOutput is returned when buffered decoder output is not a valid
// grib_dump -j document.
var ErrMalformedOutput = errors.New("malformed grib_dump output")

// document is the complete grib_dump -j output:
//
//	{ "messages" : [
//	  [ {"key": "discipline", "value": 10}, ... ],
//	  ...
//	]}
type document struct {
	Messages [][]fragment `json:"messages"`
}

// DecodeAll decodes a complete grib_dump -j document. Each message's key/value
// array is flattened into a Message; a key repeated within one message keeps
// its last value.
func DecodeAll(data []byte) ([]Message, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(ErrMalformedOutput, "failed to parse GRIB data: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(ErrMalformedOutput, "failed to parse GRIB data: unexpected data after document")
	}

	out := make([]Message, 0, len(doc.Messages))
	for i, entries := range doc.Messages {
		msg := make(Message, len(entries))
		for _, f := range entries {
			if !f.complete() {
				continue
			}
			v, err := decodeValue(f.Value)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedOutput, "message %d key %q: %v", i, f.Key, err)
			}
			msg[f.Key] = v
		}
		out = append(out, msg)
	}
	return out, nil
}
