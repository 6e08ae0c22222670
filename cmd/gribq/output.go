package main

import (
	"encoding/json"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"

	"github.com/sdifrance/ecgrib/gribio"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// messageWriter writes messages as JSON lines through an optional compressor.
type messageWriter struct {
	zw  io.WriteCloser
	enc *json.Encoder
}

func newMessageWriter(w io.Writer, compression string) (*messageWriter, error) {
	var zw io.WriteCloser
	switch compression {
	case "", "none":
		zw = nopCloser{w}
	case "gzip":
		zw = gzip.NewWriter(w)
	case "zstd":
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, err
		}
		zw = enc
	case "lz4":
		zw = lz4.NewWriter(w)
	default:
		return nil, errors.Errorf("unsupported output compression %q", compression)
	}
	return &messageWriter{zw: zw, enc: json.NewEncoder(zw)}, nil
}

// Write writes one message. Keys are sorted.
func (w *messageWriter) Write(m gribio.Message) error {
	return errors.Wrap(w.enc.Encode(m), "failed to encode message")
}

// Close flushes the compressor. It does not close the underlying writer.
func (w *messageWriter) Close() error {
	return w.zw.Close()
}
