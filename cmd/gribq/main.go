// Program gribq prints the messages of a GRIB2 file, or of a GRIB2 URL, as
// JSON lines.
//
//	gribq -input gfswave.t00z.global.0p25.f000.grib2 -param swh -latlon
//	gribq -input https://example.com/wave.grib2.gz -metadata
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/sdifrance/ecgrib"
	"github.com/sdifrance/ecgrib/gribio"
	"github.com/sdifrance/ecgrib/params"
)

var (
	input      = flag.String("input", "", "Path or HTTP(S) URL of the input GRIB2 file. Files ending in .gz, .zst or .lz4 are decompressed first.")
	discipline = flag.Int("discipline", -1, "GRIB2 discipline to select; -1 selects any.")
	category   = flag.Int("category", -1, "GRIB2 parameter category to select; -1 selects any.")
	number     = flag.Int("number", -1, "GRIB2 parameter number to select; -1 selects any.")
	param      = flag.String("param", "", "ecCodes short name of the parameter to select, e.g. swh or ws. Overrides -discipline, -category and -number.")
	keys       = flag.String("keys", "", "Comma separated keys to request. Defaults to the essential keys.")
	metadata   = flag.Bool("metadata", false, "Print grid and origin metadata instead of parameter values.")
	all        = flag.Bool("all", false, "Print every key of every message.")
	latlon     = flag.Bool("latlon", false, "Replace value arrays with latitude/longitude points.")
	gridMeta   = flag.Bool("grid_from_metadata", false, "Locate points using each message's grid keys instead of the global 0.25 degree grid.")
	get        = flag.String("get", "", "Comma separated keys to print with grib_get instead of decoding messages.")
	timeout    = flag.Duration("timeout", ecgrib.DefaultTimeout, "Deadline for each ecCodes invocation.")
	compress   = flag.String("compress", "none", "Compression of the output: none, gzip, zstd or lz4.")
	output     = flag.String("output", "", "Output file; standard output when empty.")
)

func main() {
	flag.Parse()
	if err := run(context.Background()); err != nil {
		glog.Exitf("got fatal error: %v", err)
	}
}

func run(ctx context.Context) error {
	if *input == "" {
		return errors.New("-input is required")
	}
	opts := []ecgrib.Option{ecgrib.WithTimeout(*timeout)}
	if *gridMeta {
		opts = append(opts, ecgrib.WithGridFromMetadata())
	}
	client, err := ecgrib.New(*input, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	dst := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		dst = f
	}

	if *get != "" {
		out, err := client.Keys(ctx, splitList(*get)...)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(dst, out)
		return err
	}

	start := time.Now()
	msgs, err := query(ctx, client)
	if err != nil {
		return err
	}
	glog.Infof("decoded %d messages from %s in %v", len(msgs), *input, time.Since(start))

	w, err := newMessageWriter(dst, *compress)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if err := w.Write(m); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

func query(ctx context.Context, client *ecgrib.Client) ([]gribio.Message, error) {
	switch {
	case *all:
		return client.ReadAll(ctx, *latlon)
	case *metadata:
		return client.Metadata(ctx)
	}
	f, err := filterFromFlags()
	if err != nil {
		return nil, err
	}
	return client.ParametersByType(ctx, ecgrib.Query{
		Filter:    f,
		Keys:      splitList(*keys),
		AddLatLon: *latlon,
	})
}

func filterFromFlags() (ecgrib.Filter, error) {
	if *param != "" {
		p, ok := params.ByShortName(*param)
		if !ok {
			return ecgrib.Filter{}, errors.Errorf("unknown parameter %q; known parameters: %s", *param, knownShortNames())
		}
		return ecgrib.ForParameter(p.Discipline, p.Category, p.Number), nil
	}
	var f ecgrib.Filter
	if *discipline >= 0 {
		d := params.Discipline(*discipline)
		f.Discipline = &d
	}
	if *category >= 0 {
		c := params.Category(*category)
		f.Category = &c
	}
	if *number >= 0 {
		n := params.Number(*number)
		f.Number = &n
	}
	return f, nil
}

func knownShortNames() string {
	known := params.Known()
	names := make([]string, len(known))
	for i, p := range known {
		names[i] = p.ShortName
	}
	return strings.Join(names, ", ")
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
