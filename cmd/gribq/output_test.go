package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdifrance/ecgrib/grid"
	"github.com/sdifrance/ecgrib/gribio"
)

func TestMessageWriter(t *testing.T) {
	v := 1.5
	msgs := []gribio.Message{
		{"shortName": "swh", "values": []grid.Point{{Latitude: 90, Longitude: 0, Value: &v}, {Latitude: 90, Longitude: 0.25}}},
		{"shortName": "perpw", "average": 8.25},
	}
	want := `{"shortName":"swh","values":[{"lat":90,"lon":0,"value":1.5},{"lat":90,"lon":0.25,"value":null}]}
{"average":8.25,"shortName":"perpw"}
`
	tests := []struct {
		compression string
		decompress  func(t *testing.T, r io.Reader) io.Reader
	}{
		{"none", func(_ *testing.T, r io.Reader) io.Reader { return r }},
		{"gzip", func(t *testing.T, r io.Reader) io.Reader {
			zr, err := gzip.NewReader(r)
			require.NoError(t, err)
			return zr
		}},
		{"zstd", func(t *testing.T, r io.Reader) io.Reader {
			zr, err := zstd.NewReader(r)
			require.NoError(t, err)
			return zr
		}},
		{"lz4", func(_ *testing.T, r io.Reader) io.Reader { return lz4.NewReader(r) }},
	}
	for _, tt := range tests {
		t.Run(tt.compression, func(t *testing.T) {
			var buf bytes.Buffer
			w, err := newMessageWriter(&buf, tt.compression)
			require.NoError(t, err)
			for _, m := range msgs {
				require.NoError(t, w.Write(m))
			}
			require.NoError(t, w.Close())

			got, err := io.ReadAll(tt.decompress(t, &buf))
			require.NoError(t, err)
			assert.Equal(t, want, string(got))
		})
	}
}

func TestMessageWriterRejectsUnknownCompression(t *testing.T) {
	_, err := newMessageWriter(io.Discard, "brotli")
	assert.EqualError(t, err, `unsupported output compression "brotli"`)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"shortName", "values"}, splitList(" shortName, ,values "))
}

func TestFilterFromFlags(t *testing.T) {
	defer func(p string, d, c, n int) { *param, *discipline, *category, *number = p, d, c, n }(*param, *discipline, *category, *number)

	*param = "perpw"
	f, err := filterFromFlags()
	require.NoError(t, err)
	assert.Equal(t, "discipline=10,parameterCategory=0,parameterNumber=11", f.Clause())

	*param = "nope"
	_, err = filterFromFlags()
	assert.ErrorContains(t, err, `unknown parameter "nope"`)

	*param, *discipline, *category, *number = "", -1, 2, 1
	f, err = filterFromFlags()
	require.NoError(t, err)
	assert.Equal(t, "parameterCategory=2,parameterNumber=1", f.Clause())
}
