// Package jwt implements the JWT developer tools on top of
// github.com/golang-jwt/jwt/v5. Only HMAC algorithms are signed and verified.
package jwt

import (
	"time"

	"github.com/fwojciec/webtools"
	"github.com/golang-jwt/jwt/v5"
)

// MaxTokenBytes bounds the size of a token.
const MaxTokenBytes = 64 << 10

// hmacMethods are the algorithms that can be signed and verified.
var hmacMethods = map[string]*jwt.SigningMethodHMAC{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// Service implements the JWT tools.
type Service struct {
	Now func() time.Time
}

// NewService returns a Service using the wall clock.
func NewService() *Service {
	return &Service{Now: time.Now}
}

// Tools returns every JWT tool.
func (s *Service) Tools() []webtools.Tool {
	return []webtools.Tool{
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "jwt-decoder",
			Category:    webtools.CategoryDeveloperTools,
			Name:        "JWT Decoder",
			Description: "Decode a JSON Web Token and optionally verify its HMAC signature.",
		}, s.Decode),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "jwt-generator",
			Category:    webtools.CategoryDeveloperTools,
			Name:        "JWT Generator",
			Description: "Sign claims into a JSON Web Token with HS256, HS384 or HS512.",
		}, s.Generate),
	}
}

func numericTime(d *jwt.NumericDate) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time.UTC()
	return &t
}
