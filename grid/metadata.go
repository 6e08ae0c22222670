package grid

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// Metadata keys read by FromMessage.
const (
	keyGridType  = "gridType"
	keyNi        = "Ni"
	keyNj        = "Nj"
	keyLatFirst  = "latitudeOfFirstGridPointInDegrees"
	keyLonFirst  = "longitudeOfFirstGridPointInDegrees"
	keyLatLast   = "latitudeOfLastGridPointInDegrees"
	keyDi        = "iDirectionIncrementInDegrees"
	keyDj        = "jDirectionIncrementInDegrees"
	keyINegative = "iScansNegatively"
	keyJPositive = "jScansPositively"
)

// FromMessage builds a Grid from the grid description keys of a decoded
// message. Only regular_ll grids are supported.
func FromMessage(m map[string]any) (Grid, error) {
	if t, ok := m[keyGridType]; ok {
		if s, _ := t.(string); s != "regular_ll" {
			return Grid{}, errors.Errorf("unsupported grid type %v, want regular_ll", t)
		}
	}

	var g Grid
	ni, err := lookup(m, keyNi)
	if err != nil {
		return Grid{}, err
	}
	nj, err := lookup(m, keyNj)
	if err != nil {
		return Grid{}, err
	}
	g.Ni, g.Nj = int(ni), int(nj)

	if g.LatitudeOfFirst, err = lookup(m, keyLatFirst); err != nil {
		return Grid{}, err
	}
	if g.LongitudeOfFirst, err = lookup(m, keyLonFirst); err != nil {
		return Grid{}, err
	}
	di, err := lookup(m, keyDi)
	if err != nil {
		return Grid{}, err
	}
	dj, err := lookup(m, keyDj)
	if err != nil {
		return Grid{}, err
	}
	g.IIncrement, g.JIncrement = math.Abs(di), math.Abs(dj)

	if v, ok := number(m[keyINegative]); ok && v != 0 {
		g.IIncrement = -g.IIncrement
	}
	if v, ok := number(m[keyJPositive]); ok {
		if v == 0 {
			g.JIncrement = -g.JIncrement
		}
	} else if last, ok := number(m[keyLatLast]); ok && last < g.LatitudeOfFirst {
		g.JIncrement = -g.JIncrement
	}

	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

func lookup(m map[string]any, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, errors.Errorf("missing grid key %q", key)
	}
	f, ok := number(v)
	if !ok {
		return 0, errors.Errorf("grid key %q has non-numeric value %v", key, v)
	}
	return f, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
