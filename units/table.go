package units

import (
	"math"
	"strings"
)

// Unit is a unit of measure expressed as a factor to its table's base unit.
type Unit struct {
	Symbol  string
	Name    string
	Aliases []string
	Factor  float64
}

// Table is a family of units convertible by a constant factor.
type Table struct {
	Kind  string
	Name  string
	Base  string
	Units []Unit

	// Signed tables accept negative values.
	Signed bool
}

// Lookup finds a unit by symbol, name or alias, ignoring case and spaces.
func (t *Table) Lookup(s string) (Unit, bool) {
	key := normalizeUnit(s)
	for _, u := range t.Units {
		if normalizeUnit(u.Symbol) == key || normalizeUnit(u.Name) == key {
			return u, true
		}
		for _, a := range u.Aliases {
			if normalizeUnit(a) == key {
				return u, true
			}
		}
	}
	return Unit{}, false
}

// Symbols returns the unit symbols in table order.
func (t *Table) Symbols() []string {
	out := make([]string, len(t.Units))
	for i, u := range t.Units {
		out[i] = u.Symbol
	}
	return out
}

func normalizeUnit(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// Tables lists every linear unit table, in catalog order.
var Tables = []*Table{
	{
		Kind: "length", Name: "Length", Base: "m",
		Units: []Unit{
			{"nm", "nanometer", []string{"nanometers", "nanometre"}, 1e-9},
			{"um", "micrometer", []string{"micrometers", "micron", "µm"}, 1e-6},
			{"mm", "millimeter", []string{"millimeters", "millimetre"}, 0.001},
			{"cm", "centimeter", []string{"centimeters", "centimetre"}, 0.01},
			{"m", "meter", []string{"meters", "metre", "metres"}, 1},
			{"km", "kilometer", []string{"kilometers", "kilometre", "kilometres"}, 1000},
			{"in", "inch", []string{"inches", "\""}, 0.0254},
			{"ft", "foot", []string{"feet", "'"}, 0.3048},
			{"yd", "yard", []string{"yards"}, 0.9144},
			{"mi", "mile", []string{"miles"}, 1609.344},
			{"nmi", "nautical mile", []string{"nautical miles"}, 1852},
		},
	},
	{
		Kind: "mass", Name: "Mass", Base: "kg",
		Units: []Unit{
			{"ug", "microgram", []string{"micrograms", "µg", "mcg"}, 1e-9},
			{"mg", "milligram", []string{"milligrams"}, 1e-6},
			{"g", "gram", []string{"grams"}, 0.001},
			{"kg", "kilogram", []string{"kilograms", "kilo", "kilos"}, 1},
			{"t", "metric ton", []string{"tonne", "tonnes", "metric tons"}, 1000},
			{"oz", "ounce", []string{"ounces"}, 0.028349523125},
			{"lb", "pound", []string{"pounds", "lbs"}, 0.45359237},
			{"st", "stone", []string{"stones"}, 6.35029318},
			{"ton", "short ton", []string{"us ton", "short tons"}, 907.18474},
		},
	},
	{
		Kind: "volume", Name: "Volume", Base: "l",
		Units: []Unit{
			{"ml", "milliliter", []string{"milliliters", "millilitre", "cm3", "cc"}, 0.001},
			{"l", "liter", []string{"liters", "litre", "litres"}, 1},
			{"m3", "cubic meter", []string{"cubic meters", "m³"}, 1000},
			{"tsp", "teaspoon", []string{"teaspoons"}, 0.00492892159375},
			{"tbsp", "tablespoon", []string{"tablespoons"}, 0.01478676478125},
			{"floz", "fluid ounce", []string{"fl oz", "fluid ounces"}, 0.0295735295625},
			{"cup", "cup", []string{"cups"}, 0.2365882365},
			{"pt", "pint", []string{"pints"}, 0.473176473},
			{"qt", "quart", []string{"quarts"}, 0.946352946},
			{"gal", "gallon", []string{"gallons", "us gallon"}, 3.785411784},
			{"impgal", "imperial gallon", []string{"imperial gallons", "uk gallon"}, 4.54609},
		},
	},
	{
		Kind: "area", Name: "Area", Base: "m2",
		Units: []Unit{
			{"mm2", "square millimeter", []string{"square millimeters", "mm²"}, 1e-6},
			{"cm2", "square centimeter", []string{"square centimeters", "cm²"}, 1e-4},
			{"m2", "square meter", []string{"square meters", "m²", "sqm"}, 1},
			{"ha", "hectare", []string{"hectares"}, 1e4},
			{"km2", "square kilometer", []string{"square kilometers", "km²"}, 1e6},
			{"in2", "square inch", []string{"square inches", "in²"}, 0.00064516},
			{"ft2", "square foot", []string{"square feet", "ft²", "sqft"}, 0.09290304},
			{"yd2", "square yard", []string{"square yards", "yd²"}, 0.83612736},
			{"acre", "acre", []string{"acres", "ac"}, 4046.8564224},
			{"mi2", "square mile", []string{"square miles", "mi²"}, 2589988.110336},
		},
	},
	{
		Kind: "speed", Name: "Speed", Base: "m/s",
		Units: []Unit{
			{"m/s", "meter per second", []string{"meters per second", "mps"}, 1},
			{"km/h", "kilometer per hour", []string{"kilometers per hour", "kph", "kmh"}, 1 / 3.6},
			{"mph", "mile per hour", []string{"miles per hour", "mi/h"}, 0.44704},
			{"ft/s", "foot per second", []string{"feet per second", "fps"}, 0.3048},
			{"kn", "knot", []string{"knots", "kt"}, 1852.0 / 3600.0},
		},
	},
	{
		Kind: "time", Name: "Time", Base: "s",
		Units: []Unit{
			{"ns", "nanosecond", []string{"nanoseconds"}, 1e-9},
			{"us", "microsecond", []string{"microseconds", "µs"}, 1e-6},
			{"ms", "millisecond", []string{"milliseconds"}, 0.001},
			{"s", "second", []string{"seconds", "sec", "secs"}, 1},
			{"min", "minute", []string{"minutes", "mins"}, 60},
			{"h", "hour", []string{"hours", "hr", "hrs"}, 3600},
			{"d", "day", []string{"days"}, 86400},
			{"wk", "week", []string{"weeks"}, 604800},
			{"mo", "month", []string{"months"}, 2629746},
			{"yr", "year", []string{"years"}, 31556952},
		},
	},
	{
		Kind: "data-storage", Name: "Data Storage", Base: "B",
		Units: []Unit{
			{"bit", "bit", []string{"bits"}, 0.125},
			{"B", "byte", []string{"bytes"}, 1},
			{"KB", "kilobyte", []string{"kilobytes"}, 1e3},
			{"MB", "megabyte", []string{"megabytes"}, 1e6},
			{"GB", "gigabyte", []string{"gigabytes"}, 1e9},
			{"TB", "terabyte", []string{"terabytes"}, 1e12},
			{"PB", "petabyte", []string{"petabytes"}, 1e15},
			{"KiB", "kibibyte", []string{"kibibytes"}, 1 << 10},
			{"MiB", "mebibyte", []string{"mebibytes"}, 1 << 20},
			{"GiB", "gibibyte", []string{"gibibytes"}, 1 << 30},
			{"TiB", "tebibyte", []string{"tebibytes"}, 1 << 40},
		},
	},
	{
		Kind: "pressure", Name: "Pressure", Base: "Pa",
		Units: []Unit{
			{"Pa", "pascal", []string{"pascals"}, 1},
			{"hPa", "hectopascal", []string{"hectopascals"}, 100},
			{"kPa", "kilopascal", []string{"kilopascals"}, 1e3},
			{"MPa", "megapascal", []string{"megapascals"}, 1e6},
			{"mbar", "millibar", []string{"millibars"}, 100},
			{"bar", "bar", []string{"bars"}, 1e5},
			{"atm", "atmosphere", []string{"atmospheres"}, 101325},
			{"psi", "pound per square inch", []string{"pounds per square inch"}, 6894.757293168361},
			{"mmHg", "millimeter of mercury", []string{"millimeters of mercury"}, 133.322387415},
			{"torr", "torr", nil, 101325.0 / 760.0},
			{"inHg", "inch of mercury", []string{"inches of mercury"}, 3386.389},
		},
	},
	{
		Kind: "energy", Name: "Energy", Base: "J",
		Units: []Unit{
			{"eV", "electronvolt", []string{"electronvolts"}, 1.602176634e-19},
			{"J", "joule", []string{"joules"}, 1},
			{"kJ", "kilojoule", []string{"kilojoules"}, 1e3},
			{"cal", "calorie", []string{"calories"}, 4.184},
			{"kcal", "kilocalorie", []string{"kilocalories", "food calorie"}, 4184},
			{"Wh", "watt hour", []string{"watt hours"}, 3600},
			{"kWh", "kilowatt hour", []string{"kilowatt hours"}, 3.6e6},
			{"BTU", "british thermal unit", []string{"btus"}, 1055.05585262},
			{"ft-lb", "foot-pound", []string{"foot pounds", "ftlb"}, 1.3558179483314004},
		},
	},
	{
		Kind: "power", Name: "Power", Base: "W",
		Units: []Unit{
			{"W", "watt", []string{"watts"}, 1},
			{"kW", "kilowatt", []string{"kilowatts"}, 1e3},
			{"MW", "megawatt", []string{"megawatts"}, 1e6},
			{"hp", "horsepower", []string{"mechanical horsepower"}, 745.6998715822702},
			{"PS", "metric horsepower", []string{"ps", "cv"}, 735.49875},
			{"BTU/h", "btu per hour", []string{"btuh"}, 0.29307107017},
		},
	},
	{
		Kind: "angle", Name: "Angle", Base: "deg", Signed: true,
		Units: []Unit{
			{"deg", "degree", []string{"degrees", "°"}, 1},
			{"rad", "radian", []string{"radians"}, 180 / math.Pi},
			{"grad", "gradian", []string{"gradians", "gon"}, 0.9},
			{"arcmin", "arcminute", []string{"arcminutes"}, 1.0 / 60.0},
			{"arcsec", "arcsecond", []string{"arcseconds"}, 1.0 / 3600.0},
			{"turn", "turn", []string{"turns", "revolution", "revolutions"}, 360},
		},
	},
	{
		Kind: "frequency", Name: "Frequency", Base: "Hz",
		Units: []Unit{
			{"Hz", "hertz", nil, 1},
			{"kHz", "kilohertz", nil, 1e3},
			{"MHz", "megahertz", nil, 1e6},
			{"GHz", "gigahertz", nil, 1e9},
			{"rpm", "revolution per minute", []string{"revolutions per minute"}, 1.0 / 60.0},
		},
	},
}

// FindTable returns the linear table for kind.
func FindTable(kind string) (*Table, bool) {
	for _, t := range Tables {
		if t.Kind == kind {
			return t, true
		}
	}
	return nil, false
}
