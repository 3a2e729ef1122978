package units

import (
	"fmt"
	"math"
	"strconv"

	"github.com/fwojciec/webtools"
	"github.com/shopspring/decimal"
)

// KindTemperature is the kind of the formula based temperature converter.
const KindTemperature = "temperature"

// DefaultPrecision is the number of decimal places used when a request
// does not specify one.
const DefaultPrecision = 6

// MaxPrecision is the largest accepted precision.
const MaxPrecision = 15

// Convert converts value between two units of the same kind and returns the
// unrounded result with a human readable formula. Results that overflow
// float64 are EINVALID.
func Convert(kind string, value float64, from, to string) (float64, string, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, "", webtools.Errorf(webtools.EINVALID, "value must be a finite number")
	}
	result, formula, err := convert(kind, value, from, to)
	if err != nil {
		return 0, "", err
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, "", webtools.Errorf(webtools.EINVALID, "result out of range")
	}
	return result, formula, nil
}

func convert(kind string, value float64, from, to string) (float64, string, error) {
	if kind == KindTemperature {
		return convertTemperature(value, from, to)
	}

	t, ok := FindTable(kind)
	if !ok {
		return 0, "", webtools.Errorf(webtools.ENOTFOUND, "unknown unit type %q", kind)
	}
	if value < 0 && !t.Signed {
		return 0, "", webtools.Errorf(webtools.EINVALID, "%s value must not be negative", kind)
	}
	fu, ok := t.Lookup(from)
	if !ok {
		return 0, "", webtools.Errorf(webtools.EINVALID, "unknown %s unit %q", kind, from)
	}
	tu, ok := t.Lookup(to)
	if !ok {
		return 0, "", webtools.Errorf(webtools.EINVALID, "unknown %s unit %q", kind, to)
	}

	if fu.Symbol == tu.Symbol {
		return value, fmt.Sprintf("%s = %s", tu.Symbol, fu.Symbol), nil
	}
	factor := fu.Factor / tu.Factor
	formula := fmt.Sprintf("%s = %s × %s", tu.Symbol, fu.Symbol, formatFactor(factor))
	return value * factor, formula, nil
}

// Round rounds value half away from zero to precision decimal places.
func Round(value float64, precision int) float64 {
	f, _ := decimal.NewFromFloat(value).Round(int32(precision)).Float64()
	return f
}

func formatFactor(f float64) string {
	return strconv.FormatFloat(f, 'g', 10, 64)
}

type temperatureUnit struct {
	symbol  string
	label   string
	name    string
	aliases []string
	minimum float64

	// toC and fromC convert to and from degrees Celsius.
	toC      func(float64) float64
	fromC    func(float64) float64
	toCExpr  string
	fromCExp string
}

var temperatureUnits = []temperatureUnit{
	{
		symbol: "C", label: "°C", name: "celsius", aliases: []string{"°c", "centigrade", "degc"},
		minimum: -273.15,
		toC:     func(v float64) float64 { return v },
		fromC:   func(v float64) float64 { return v },
	},
	{
		symbol: "F", label: "°F", name: "fahrenheit", aliases: []string{"°f", "degf"},
		minimum: -459.67,
		toC:     func(v float64) float64 { return (v - 32) * 5 / 9 },
		fromC:   func(v float64) float64 { return v*9/5 + 32 },
		toCExpr: "(°F − 32) × 5/9", fromCExp: "°C × 9/5 + 32",
	},
	{
		symbol: "K", label: "K", name: "kelvin", aliases: []string{"kelvins"},
		minimum: 0,
		toC:     func(v float64) float64 { return v - 273.15 },
		fromC:   func(v float64) float64 { return v + 273.15 },
		toCExpr: "K − 273.15", fromCExp: "°C + 273.15",
	},
	{
		symbol: "R", label: "°R", name: "rankine", aliases: []string{"°r", "degr"},
		minimum: 0,
		toC:     func(v float64) float64 { return (v - 491.67) * 5 / 9 },
		fromC:   func(v float64) float64 { return (v + 273.15) * 9 / 5 },
		toCExpr: "(°R − 491.67) × 5/9", fromCExp: "(°C + 273.15) × 9/5",
	},
}

func lookupTemperature(s string) (temperatureUnit, bool) {
	key := normalizeUnit(s)
	for _, u := range temperatureUnits {
		if normalizeUnit(u.symbol) == key || u.name == key {
			return u, true
		}
		for _, a := range u.aliases {
			if a == key {
				return u, true
			}
		}
	}
	return temperatureUnit{}, false
}

// TemperatureSymbols returns the supported temperature unit symbols.
func TemperatureSymbols() []string {
	out := make([]string, len(temperatureUnits))
	for i, u := range temperatureUnits {
		out[i] = u.symbol
	}
	return out
}

func convertTemperature(value float64, from, to string) (float64, string, error) {
	fu, ok := lookupTemperature(from)
	if !ok {
		return 0, "", webtools.Errorf(webtools.EINVALID, "unknown temperature unit %q", from)
	}
	tu, ok := lookupTemperature(to)
	if !ok {
		return 0, "", webtools.Errorf(webtools.EINVALID, "unknown temperature unit %q", to)
	}
	// Tolerance lets rounded values at absolute zero through.
	if value < fu.minimum-1e-9 {
		return 0, "", webtools.Errorf(webtools.EINVALID, "%v %s is below absolute zero", value, fu.label)
	}

	var formula string
	switch {
	case fu.symbol == tu.symbol:
		formula = fmt.Sprintf("%s = %s", tu.label, fu.label)
	case fu.symbol == "C":
		formula = fmt.Sprintf("%s = %s", tu.label, tu.fromCExp)
	case tu.symbol == "C":
		formula = fmt.Sprintf("°C = %s", fu.toCExpr)
	default:
		formula = fmt.Sprintf("°C = %s; %s = %s", fu.toCExpr, tu.label, tu.fromCExp)
	}
	return tu.fromC(fu.toC(value)), formula, nil
}
