package generate

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"strings"

	"github.com/fwojciec/webtools"
)

// Character classes.
const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{};:,.<>?/~"

	// ambiguousChars look alike in many fonts.
	ambiguousChars = "Il1O0o"
)

// Password length bounds.
const (
	DefaultPasswordLength = 16
	MinPasswordLength     = 4
	MaxPasswordLength     = 256
)

// PasswordRequest is the request body of the password-generator tool. The
// class flags default to true when all of them are omitted.
type PasswordRequest struct {
	Length           int   `json:"length"`
	Count            int   `json:"count"`
	Lowercase        *bool `json:"lowercase"`
	Uppercase        *bool `json:"uppercase"`
	Digits           *bool `json:"digits"`
	Symbols          *bool `json:"symbols"`
	ExcludeAmbiguous bool  `json:"excludeAmbiguous"`
}

// PasswordResponse is the result of the password-generator tool.
type PasswordResponse struct {
	Passwords   []string `json:"passwords"`
	Length      int      `json:"length"`
	PoolSize    int      `json:"poolSize"`
	EntropyBits float64  `json:"entropyBits"`
	Strength    string   `json:"strength"`
}

// GeneratePasswords is the password-generator tool. Each password contains
// at least one character from every selected class.
func GeneratePasswords(_ context.Context, req PasswordRequest) (*PasswordResponse, error) {
	count, err := checkCount(req.Count)
	if err != nil {
		return nil, err
	}
	length := req.Length
	if length == 0 {
		length = DefaultPasswordLength
	}
	if length < MinPasswordLength || length > MaxPasswordLength {
		return nil, webtools.Errorf(webtools.EINVALID, "length must be between %d and %d", MinPasswordLength, MaxPasswordLength)
	}

	classes := selectClasses(req)
	if len(classes) == 0 {
		return nil, webtools.Errorf(webtools.EINVALID, "select at least one character class")
	}
	pool := strings.Join(classes, "")

	resp := &PasswordResponse{
		Passwords: make([]string, 0, count),
		Length:    length,
		PoolSize:  len(pool),
	}
	for range count {
		pw, err := password(length, pool, classes)
		if err != nil {
			return nil, webtools.Errorf(webtools.EUNAVAILABLE, "read random bytes: %v", err)
		}
		resp.Passwords = append(resp.Passwords, pw)
	}

	bits := float64(length) * math.Log2(float64(len(pool)))
	resp.EntropyBits = math.Round(bits*10) / 10
	resp.Strength = strength(bits)
	return resp, nil
}

func selectClasses(req PasswordRequest) []string {
	all := req.Lowercase == nil && req.Uppercase == nil && req.Digits == nil && req.Symbols == nil
	on := func(b *bool) bool { return all || (b != nil && *b) }

	var classes []string
	for _, c := range []struct {
		enabled bool
		chars   string
	}{
		{on(req.Lowercase), lowerChars},
		{on(req.Uppercase), upperChars},
		{on(req.Digits), digitChars},
		{on(req.Symbols), symbolChars},
	} {
		if !c.enabled {
			continue
		}
		chars := c.chars
		if req.ExcludeAmbiguous {
			chars = strings.Map(func(r rune) rune {
				if strings.ContainsRune(ambiguousChars, r) {
					return -1
				}
				return r
			}, chars)
		}
		classes = append(classes, chars)
	}
	return classes
}

// password draws one character from each class, fills the rest from the
// whole pool and shuffles the result.
func password(length int, pool string, classes []string) (string, error) {
	out := make([]byte, 0, length)
	for _, c := range classes {
		if len(out) == length {
			break
		}
		b, err := pick(c)
		if err != nil {
			return "", err
		}
		out = append(out, b)
	}
	for len(out) < length {
		b, err := pick(pool)
		if err != nil {
			return "", err
		}
		out = append(out, b)
	}
	for i := len(out) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

func pick(chars string) (byte, error) {
	i, err := randInt(len(chars))
	if err != nil {
		return 0, err
	}
	return chars[i], nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

func strength(bits float64) string {
	switch {
	case bits < 40:
		return "weak"
	case bits < 60:
		return "fair"
	case bits < 80:
		return "strong"
	default:
		return "very strong"
	}
}
