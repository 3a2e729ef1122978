package units

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/fwojciec/webtools"
)

// ColorRequest is the request body of the color-converter tool.
type ColorRequest struct {
	Color string `json:"color"`
}

// RGB is a color in the sRGB space.
type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// HSL is a color in hue, saturation, lightness notation.
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// ColorResponse is the result of the color-converter tool.
type ColorResponse struct {
	Hex       string  `json:"hex"`
	RGB       RGB     `json:"rgb"`
	HSL       HSL     `json:"hsl"`
	RGBString string  `json:"rgbString"`
	HSLString string  `json:"hslString"`
	Luminance float64 `json:"luminance"`
}

var (
	hexColorRe = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	rgbColorRe = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*[\d.]+\s*)?\)$`)
	hslColorRe = regexp.MustCompile(`^hsla?\(\s*([\d.]+)\s*,\s*([\d.]+)%\s*,\s*([\d.]+)%\s*(?:,\s*[\d.]+\s*)?\)$`)
)

// ConvertColor parses a HEX, rgb() or hsl() color and renders it in every notation.
func ConvertColor(_ context.Context, req ColorRequest) (*ColorResponse, error) {
	s := strings.ToLower(strings.TrimSpace(req.Color))
	if s == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "color is required")
	}

	var c RGB
	switch {
	case hexColorRe.MatchString(s):
		h := strings.TrimPrefix(s, "#")
		if len(h) == 3 {
			h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
		}
		v, _ := strconv.ParseUint(h, 16, 32)
		c = RGB{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}
	case rgbColorRe.MatchString(s):
		m := rgbColorRe.FindStringSubmatch(s)
		vals := make([]int, 3)
		for i := range vals {
			n, _ := strconv.Atoi(m[i+1])
			if n > 255 {
				return nil, webtools.Errorf(webtools.EINVALID, "rgb component %d out of range 0-255", n)
			}
			vals[i] = n
		}
		c = RGB{R: vals[0], G: vals[1], B: vals[2]}
	case hslColorRe.MatchString(s):
		m := hslColorRe.FindStringSubmatch(s)
		h, _ := strconv.ParseFloat(m[1], 64)
		sat, _ := strconv.ParseFloat(m[2], 64)
		l, _ := strconv.ParseFloat(m[3], 64)
		if sat > 100 || l > 100 {
			return nil, webtools.Errorf(webtools.EINVALID, "saturation and lightness must be at most 100%%")
		}
		c = hslToRGB(HSL{H: math.Mod(h, 360), S: sat, L: l})
	default:
		return nil, webtools.Errorf(webtools.EINVALID, "unrecognized color %q", req.Color)
	}

	hsl := rgbToHSL(c)
	return &ColorResponse{
		Hex:       fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B),
		RGB:       c,
		HSL:       hsl,
		RGBString: fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B),
		HSLString: fmt.Sprintf("hsl(%g, %g%%, %g%%)", hsl.H, hsl.S, hsl.L),
		Luminance: Round(luminance(c), 4),
	}, nil
}

func rgbToHSL(c RGB) HSL {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l := (maxC + minC) / 2

	var h, s float64
	if d := maxC - minC; d != 0 {
		if l > 0.5 {
			s = d / (2 - maxC - minC)
		} else {
			s = d / (maxC + minC)
		}
		switch maxC {
		case r:
			h = (g - b) / d
			if g < b {
				h += 6
			}
		case g:
			h = (b-r)/d + 2
		default:
			h = (r-g)/d + 4
		}
		h *= 60
	}
	return HSL{H: Round(h, 1), S: Round(s*100, 1), L: Round(l*100, 1)}
}

func hslToRGB(c HSL) RGB {
	h, s, l := c.H/360, c.S/100, c.L/100
	if s == 0 {
		v := int(math.Round(l * 255))
		return RGB{v, v, v}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	conv := func(t float64) int {
		if t < 0 {
			t++
		}
		if t > 1 {
			t--
		}
		var v float64
		switch {
		case t < 1.0/6:
			v = p + (q-p)*6*t
		case t < 0.5:
			v = q
		case t < 2.0/3:
			v = p + (q-p)*(2.0/3-t)*6
		default:
			v = p
		}
		return int(math.Round(v * 255))
	}
	return RGB{R: conv(h + 1.0/3), G: conv(h), B: conv(h - 1.0/3)}
}

// luminance is the WCAG relative luminance.
func luminance(c RGB) float64 {
	lin := func(v int) float64 {
		f := float64(v) / 255
		if f <= 0.03928 {
			return f / 12.92
		}
		return math.Pow((f+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}
