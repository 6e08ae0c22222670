// Package grid maps flat GRIB value arrays onto latitude/longitude points.
//
// The geometry follows a GRIB2 regular latitude/longitude grid (grid definition
// template 3.0, https://codes.ecmwf.int/grib/format/grib2/templates/3/0/):
//
//	Key                                   Content
//	Ni                                    number of points along a parallel
//	Nj                                    number of points along a meridian
//	latitudeOfFirstGridPointInDegrees     La1 latitude of first grid point
//	longitudeOfFirstGridPointInDegrees    Lo1 longitude of first grid point
//	iDirectionIncrementInDegrees          Di i direction increment
//	jDirectionIncrementInDegrees          Dj j direction increment
//	iScansNegatively / jScansPositively   scanning mode flags
//
// Values are always assumed to be stored with adjacent points in the i
// direction consecutive, which is what ecCodes reports for every regular_ll
// field it decodes.
package grid

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// Grid is a regular latitude/longitude grid. Increments are signed: a negative
// JIncrement means rows are scanned from north to south.
type Grid struct {
	Ni, Nj           int
	LatitudeOfFirst  float64
	LongitudeOfFirst float64
	IIncrement       float64
	JIncrement       float64
}

// Global025 is the 0.25° global forecast grid: 721 rows from 90°N to 90°S and
// 1440 columns from 0° to 359.75°E.
var Global025 = Grid{
	Ni:               1440,
	Nj:               721,
	LatitudeOfFirst:  90,
	LongitudeOfFirst: 0,
	IIncrement:       0.25,
	JIncrement:       -0.25,
}

// Point is a value annotated with its position on a grid. A nil Value marks a
// missing data point.
type Point struct {
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lon"`
	Value     *float64 `json:"value"`
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	if p.Value == nil {
		return fmt.Sprintf("%f, %f: missing", p.Latitude, p.Longitude)
	}
	return fmt.Sprintf("%f, %f: %g", p.Latitude, p.Longitude, *p.Value)
}

// Size returns the number of points on the grid.
func (g Grid) Size() int {
	return g.Ni * g.Nj
}

// Validate reports whether the grid describes at least one point.
func (g Grid) Validate() error {
	if g.Ni <= 0 || g.Nj <= 0 {
		return errors.Errorf("grid must have positive dimensions, got Ni=%d Nj=%d", g.Ni, g.Nj)
	}
	if g.IIncrement == 0 || g.JIncrement == 0 {
		return errors.Errorf("grid increments must be non-zero, got Di=%g Dj=%g", g.IIncrement, g.JIncrement)
	}
	return nil
}

// NormalizeLongitude maps a longitude in [0, 360) to (-180, 180].
func NormalizeLongitude(raw float64) float64 {
	if raw > 180 {
		return raw - 360
	}
	return raw
}

// At returns the latitude and normalized longitude of the i-th point.
func (g Grid) At(i int) (lat, lon float64) {
	row, col := i/g.Ni, i%g.Ni
	lat = g.LatitudeOfFirst + float64(row)*g.JIncrement
	lon = NormalizeLongitude(g.LongitudeOfFirst + float64(col)*g.IIncrement)
	return lat, lon
}

// parallelThreshold is the number of points above which Project splits the
// work across goroutines.
const parallelThreshold = 1 << 16

// Project pairs each value with its grid position. The output has
// min(len(values), g.Size()) points; values beyond the grid are dropped and
// grid points beyond the values are not fabricated.
func (g Grid) Project(values []*float64) []Point {
	n := len(values)
	if size := g.Size(); size < n {
		n = size
	}
	if n <= 0 {
		return []Point{}
	}
	out := make([]Point, n)

	workers := runtime.GOMAXPROCS(0)
	if n < parallelThreshold || workers < 2 {
		g.projectRange(values, out, 0, n)
		return out
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			g.projectRange(values, out, start, end)
		}(start, end)
	}
	wg.Wait()
	return out
}

func (g Grid) projectRange(values []*float64, out []Point, start, end int) {
	for i := start; i < end; i++ {
		lat, lon := g.At(i)
		out[i] = Point{Latitude: lat, Longitude: lon, Value: values[i]}
	}
}

// Project maps values onto Global025.
func Project(values []*float64) []Point {
	return Global025.Project(values)
}
