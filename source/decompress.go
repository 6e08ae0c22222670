package source

import (
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

type decompressor func(io.Reader) (io.ReadCloser, error)

// decompressors maps a lower-case file extension to its decoder.
var decompressors = map[string]decompressor{
	".gz": func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	},
	".zst": func(r io.Reader) (io.ReadCloser, error) {
		d, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	},
	".lz4": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(lz4.NewReader(r)), nil
	},
}

// stage decompresses src into a new temporary file and returns its path.
func (s *Source) stage(src string, dec decompressor, opts Options) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", errors.Wrap(err, "GRIB file not accessible")
	}
	defer in.Close()

	r, err := dec(in)
	if err != nil {
		return "", errors.Wrapf(err, "cannot decompress %s", src)
	}
	defer r.Close()

	out, err := s.createTemp(opts, ".grib2")
	if err != nil {
		return "", err
	}
	defer out.Close()

	n, err := io.Copy(out, r)
	if err != nil {
		return "", errors.Wrapf(err, "cannot decompress %s", src)
	}
	glog.V(1).Infof("staged %d decompressed bytes of %s at %s", n, src, out.Name())
	return out.Name(), nil
}
