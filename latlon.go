package ecgrib

import (
	"github.com/golang/glog"

	"github.com/sdifrance/ecgrib/grid"
	"github.com/sdifrance/ecgrib/gribio"
)

// addLatLon replaces the values of every message with located points. A
// message whose values are not an array gets an empty slice of points.
func (c *Client) addLatLon(msgs []gribio.Message) {
	for i, m := range msgs {
		values, ok := valueArray(m[gribio.ValuesKey])
		if !ok {
			m[gribio.ValuesKey] = []grid.Point{}
			continue
		}
		m[gribio.ValuesKey] = c.gridFor(i, m).Project(values)
	}
}

func (c *Client) gridFor(i int, m gribio.Message) grid.Grid {
	if !c.gridFromMetadata {
		return grid.Global025
	}
	g, err := grid.FromMessage(m)
	if err != nil {
		glog.V(1).Infof("message %d: using the global 0.25° grid: %v", i, err)
		return grid.Global025
	}
	return g
}

// valueArray returns v as a value array. Entries of a mixed array that are
// not numbers are treated as missing.
func valueArray(v any) ([]*float64, bool) {
	switch a := v.(type) {
	case []*float64:
		return a, true
	case []any:
		out := make([]*float64, len(a))
		for i, e := range a {
			switch n := e.(type) {
			case float64:
				out[i] = &n
			case int64:
				f := float64(n)
				out[i] = &f
			}
		}
		return out, true
	}
	return nil, false
}
