package ecgrib

import (
	"context"
	"fmt"
	"strings"

	"github.com/sdifrance/ecgrib/gribio"
	"github.com/sdifrance/ecgrib/params"
)

// Filter selects messages by parameter. Nil members match anything.
type Filter struct {
	Discipline *params.Discipline
	Category   *params.Category
	Number     *params.Number
}

// ForParameter selects one parameter.
func ForParameter(d params.Discipline, c params.Category, n params.Number) Filter {
	return Filter{Discipline: &d, Category: &c, Number: &n}
}

// ForCategory selects every parameter of a category.
func ForCategory(d params.Discipline, c params.Category) Filter {
	return Filter{Discipline: &d, Category: &c}
}

// Clause returns the grib_dump -w clause for the filter, for example
// "discipline=10,parameterCategory=0,parameterNumber=3". It is empty when the
// filter matches everything.
func (f Filter) Clause() string {
	var parts []string
	if f.Discipline != nil {
		parts = append(parts, fmt.Sprintf("discipline=%d", *f.Discipline))
	}
	if f.Category != nil {
		parts = append(parts, fmt.Sprintf("parameterCategory=%d", *f.Category))
	}
	if f.Number != nil {
		parts = append(parts, fmt.Sprintf("parameterNumber=%d", *f.Number))
	}
	return strings.Join(parts, ",")
}

// Query describes a filtered extraction.
type Query struct {
	Filter Filter
	// Keys to request; EssentialKeys when empty.
	Keys []string
	// AddLatLon replaces each message's values with located points.
	AddLatLon bool
}

func (c *Client) parameter(ctx context.Context, f Filter, addLatLon bool) ([]gribio.Message, error) {
	return c.ParametersByType(ctx, Query{Filter: f, AddLatLon: addLatLon})
}

// SignificantWaveHeight returns significant height of combined wind waves and
// swell (swh).
//
// This and the other convenience queries also filter on discipline, so the
// grib_dump clause has the form
// "discipline=10,parameterCategory=0,parameterNumber=3" rather than naming the
// category and number alone. Without it a meteorological parameter with the
// same category and number would match too.
func (c *Client) SignificantWaveHeight(ctx context.Context, addLatLon bool) ([]gribio.Message, error) {
	return c.parameter(ctx, ForParameter(params.Oceanographic, params.OceanographicWaves, params.SignificantHeightCombined), addLatLon)
}

// PrimaryWavePeriod returns primary wave mean period (perpw).
func (c *Client) PrimaryWavePeriod(ctx context.Context, addLatLon bool) ([]gribio.Message, error) {
	return c.parameter(ctx, ForParameter(params.Oceanographic, params.OceanographicWaves, params.PrimaryWavePeriod), addLatLon)
}

// PrimaryWaveDirection returns primary wave direction (dirpw).
func (c *Client) PrimaryWaveDirection(ctx context.Context, addLatLon bool) ([]gribio.Message, error) {
	return c.parameter(ctx, ForParameter(params.Oceanographic, params.OceanographicWaves, params.PrimaryWaveDirection), addLatLon)
}

// WaveParameters returns every oceanographic wave parameter.
func (c *Client) WaveParameters(ctx context.Context, addLatLon bool) ([]gribio.Message, error) {
	return c.parameter(ctx, ForCategory(params.Oceanographic, params.OceanographicWaves), addLatLon)
}

// WindSpeed returns wind speed (ws). The clause is
// "discipline=0,parameterCategory=2,parameterNumber=1"; see
// SignificantWaveHeight.
func (c *Client) WindSpeed(ctx context.Context, addLatLon bool) ([]gribio.Message, error) {
	return c.parameter(ctx, ForParameter(params.Meteorological, params.MeteorologicalMomentum, params.WindSpeed), addLatLon)
}

// WindDirection returns wind direction (wdir).
func (c *Client) WindDirection(ctx context.Context, addLatLon bool) ([]gribio.Message, error) {
	return c.parameter(ctx, ForParameter(params.Meteorological, params.MeteorologicalMomentum, params.WindDirection), addLatLon)
}

// WindParameters returns every meteorological momentum parameter.
func (c *Client) WindParameters(ctx context.Context, addLatLon bool) ([]gribio.Message, error) {
	return c.parameter(ctx, ForCategory(params.Meteorological, params.MeteorologicalMomentum), addLatLon)
}
