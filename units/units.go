// Package units implements the converter tools: linear unit tables,
// temperature, number bases, timestamps and colors.
package units

import (
	"context"
	"time"

	"github.com/fwojciec/webtools"
)

// Service builds the converter tools.
type Service struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewService creates a new converter service.
func NewService() *Service {
	return &Service{Now: time.Now}
}

// ConvertRequest is the request body of a unit converter tool.
type ConvertRequest struct {
	Value     *float64 `json:"value"`
	FromUnit  string   `json:"fromUnit"`
	ToUnit    string   `json:"toUnit"`
	Precision *int     `json:"precision,omitempty"`
}

// Quantity is a value paired with its unit.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Conversion describes a completed conversion.
type Conversion struct {
	From      Quantity  `json:"from"`
	To        Quantity  `json:"to"`
	Formula   string    `json:"formula"`
	Timestamp time.Time `json:"timestamp"`
}

// ConvertResponse is the result of a unit converter tool.
type ConvertResponse struct {
	Conversion     Conversion `json:"conversion"`
	Analysis       string     `json:"analysis"`
	SupportedUnits []string   `json:"supportedUnits"`
}

// SetAnalysis implements webtools.AnalysisSetter.
func (r *ConvertResponse) SetAnalysis(text string) {
	r.Analysis = text
}

// Tools returns every converter tool.
func (s *Service) Tools() []webtools.Tool {
	tools := make([]webtools.Tool, 0, len(Tables)+4)
	for _, t := range Tables {
		tools = append(tools, s.converter(t.Kind, t.Name, t.Symbols()))
	}
	tools = append(tools,
		s.converter(KindTemperature, "Temperature", TemperatureSymbols()),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "number-base-converter",
			Category:    webtools.CategoryConverters,
			Name:        "Number Base Converter",
			Description: "Convert integers between bases 2 to 36.",
		}, ConvertBase),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "timestamp-converter",
			Category:    webtools.CategoryConverters,
			Name:        "Timestamp Converter",
			Description: "Convert between Unix timestamps and calendar dates in any time zone.",
		}, s.ConvertTimestamp),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "color-converter",
			Category:    webtools.CategoryConverters,
			Name:        "Color Converter",
			Description: "Convert colors between HEX, RGB and HSL notations.",
		}, ConvertColor),
	)
	return tools
}

func (s *Service) converter(kind, name string, symbols []string) webtools.Tool {
	info := webtools.ToolInfo{
		Slug:        kind + "-converter",
		Category:    webtools.CategoryConverters,
		Name:        name + " Converter",
		Description: "Convert " + name + " values between units.",
	}
	return webtools.NewTool(info, func(_ context.Context, req ConvertRequest) (*ConvertResponse, error) {
		if req.Value == nil {
			return nil, webtools.Errorf(webtools.EINVALID, "value is required")
		}
		if req.FromUnit == "" || req.ToUnit == "" {
			return nil, webtools.Errorf(webtools.EINVALID, "fromUnit and toUnit are required")
		}
		precision := DefaultPrecision
		if req.Precision != nil {
			precision = *req.Precision
		}
		if precision < 0 || precision > MaxPrecision {
			return nil, webtools.Errorf(webtools.EINVALID, "precision must be between 0 and %d", MaxPrecision)
		}

		result, formula, err := Convert(kind, *req.Value, req.FromUnit, req.ToUnit)
		if err != nil {
			return nil, err
		}

		return &ConvertResponse{
			Conversion: Conversion{
				From:      Quantity{Value: *req.Value, Unit: req.FromUnit},
				To:        Quantity{Value: Round(result, precision), Unit: req.ToUnit},
				Formula:   formula,
				Timestamp: s.Now().UTC(),
			},
			SupportedUnits: symbols,
		}, nil
	})
}
