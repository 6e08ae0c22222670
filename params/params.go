// Package params lists the GRIB2 code table entries used to select messages.
//
// Disciplines come from Code Table 0.0, categories from Code Table 4.1 and
// parameter numbers from Code Table 4.2 (https://codes.ecmwf.int/grib/format/grib2/ctables/4/2/).
// Only the entries the queries in this module need are listed.
package params

import "fmt"

// Discipline is a GRIB2 discipline (Code Table 0.0).
type Discipline int

const (
	Meteorological Discipline = 0
	Hydrological   Discipline = 1
	LandSurface    Discipline = 2
	Oceanographic  Discipline = 10
)

// Category is a parameter category within a discipline (Code Table 4.1).
type Category int

// Meteorological products (discipline 0).
const (
	MeteorologicalTemperature Category = 0
	MeteorologicalMoisture    Category = 1
	MeteorologicalMomentum    Category = 2
	MeteorologicalMass        Category = 3
	MeteorologicalCloud       Category = 6
)

// Oceanographic products (discipline 10).
const (
	OceanographicWaves                Category = 0
	OceanographicCurrents             Category = 1
	OceanographicIce                  Category = 2
	OceanographicSurfaceProperties    Category = 3
	OceanographicSubSurfaceProperties Category = 4
)

// Number is a parameter number within a category (Code Table 4.2).
type Number int

// Momentum (discipline 0, category 2).
const (
	WindDirection    Number = 0
	WindSpeed        Number = 1
	UComponentOfWind Number = 2
	VComponentOfWind Number = 3
)

// Waves (discipline 10, category 0).
const (
	SignificantHeightCombined Number = 3
	WindWaveDirection         Number = 4
	WindWaveHeight            Number = 5
	WindWavePeriod            Number = 6
	SwellDirection            Number = 7
	SwellHeight               Number = 8
	SwellPeriod               Number = 9
	PrimaryWaveDirection      Number = 10
	PrimaryWavePeriod         Number = 11
)

// Currents (discipline 10, category 1).
const (
	CurrentDirection  Number = 0
	CurrentSpeed      Number = 1
	UComponentCurrent Number = 2
	VComponentCurrent Number = 3
)

// Parameter identifies a physical quantity.
type Parameter struct {
	Discipline Discipline
	Category   Category
	Number     Number
	Name       string
	ShortName  string
	Units      string
}

func (p Parameter) String() string {
	return fmt.Sprintf("%s (%s) [%d/%d/%d]", p.Name, p.ShortName, p.Discipline, p.Category, p.Number)
}

var known = []Parameter{
	{Meteorological, MeteorologicalMomentum, WindDirection, "Wind direction (from which blowing)", "wdir", "degree true"},
	{Meteorological, MeteorologicalMomentum, WindSpeed, "Wind speed", "ws", "m s-1"},
	{Meteorological, MeteorologicalMomentum, UComponentOfWind, "U component of wind", "u", "m s-1"},
	{Meteorological, MeteorologicalMomentum, VComponentOfWind, "V component of wind", "v", "m s-1"},
	{Oceanographic, OceanographicWaves, SignificantHeightCombined, "Significant height of combined wind waves and swell", "swh", "m"},
	{Oceanographic, OceanographicWaves, WindWaveDirection, "Direction of wind waves", "wvdir", "degree true"},
	{Oceanographic, OceanographicWaves, WindWaveHeight, "Significant height of wind waves", "shww", "m"},
	{Oceanographic, OceanographicWaves, WindWavePeriod, "Mean period of wind waves", "mpww", "s"},
	{Oceanographic, OceanographicWaves, SwellDirection, "Direction of swell waves", "swdir", "degree true"},
	{Oceanographic, OceanographicWaves, SwellHeight, "Significant height of swell waves", "shts", "m"},
	{Oceanographic, OceanographicWaves, SwellPeriod, "Mean period of swell waves", "mpts", "s"},
	{Oceanographic, OceanographicWaves, PrimaryWaveDirection, "Primary wave direction", "dirpw", "degree true"},
	{Oceanographic, OceanographicWaves, PrimaryWavePeriod, "Primary wave mean period", "perpw", "s"},
	{Oceanographic, OceanographicCurrents, CurrentDirection, "Direction of current", "dirc", "degree true"},
	{Oceanographic, OceanographicCurrents, CurrentSpeed, "Speed of current", "spc", "m s-1"},
	{Oceanographic, OceanographicCurrents, UComponentCurrent, "U-component of current", "ucurr", "m s-1"},
	{Oceanographic, OceanographicCurrents, VComponentCurrent, "V-component of current", "vcurr", "m s-1"},
}

// ByShortName returns the parameter with the given ecCodes short name.
func ByShortName(shortName string) (Parameter, bool) {
	for _, p := range known {
		if p.ShortName == shortName {
			return p, true
		}
	}
	return Parameter{}, false
}

// Known returns the parameters listed in this package.
func Known() []Parameter {
	return append([]Parameter(nil), known...)
}
