package jwt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/webtools"
	"github.com/golang-jwt/jwt/v5"
)

// maxExpiresIn caps generated token lifetimes at ten years.
const maxExpiresIn = 10 * 365 * 24 * 60 * 60

// GenerateRequest is the request body of the jwt-generator tool.
type GenerateRequest struct {
	Claims    map[string]any `json:"claims"`
	Secret    string         `json:"secret"`
	Algorithm string         `json:"algorithm"`
	ExpiresIn int64          `json:"expiresIn"`
	KeyID     string         `json:"keyId"`
	NoIssued  bool           `json:"noIssuedAt"`
}

// GenerateResponse is the result of the jwt-generator tool.
type GenerateResponse struct {
	Token     string         `json:"token"`
	Header    map[string]any `json:"header"`
	Claims    map[string]any `json:"claims"`
	Signature string         `json:"signature"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
}

// Generate is the jwt-generator tool. iat is set to the current time unless
// disabled or already present; exp is set when ExpiresIn is positive.
func (s *Service) Generate(_ context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if req.Secret == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "secret is required")
	}
	alg := req.Algorithm
	if alg == "" {
		alg = "HS256"
	}
	method, ok := hmacMethods[alg]
	if !ok {
		return nil, webtools.Errorf(webtools.EINVALID, "unsupported algorithm %q: use HS256, HS384 or HS512", req.Algorithm)
	}
	if req.ExpiresIn < 0 || req.ExpiresIn > maxExpiresIn {
		return nil, webtools.Errorf(webtools.EINVALID, "expiresIn must be between 0 and %d seconds", maxExpiresIn)
	}
	if b, err := json.Marshal(req.Claims); err != nil || len(b) > MaxTokenBytes {
		return nil, webtools.Errorf(webtools.EINVALID, "claims must be a JSON object under %d bytes", MaxTokenBytes)
	}

	claims := jwt.MapClaims{}
	for k, v := range req.Claims {
		claims[k] = v
	}
	now := s.Now().Truncate(time.Second)
	if _, ok := claims["iat"]; !ok && !req.NoIssued {
		claims["iat"] = now.Unix()
	}
	var expiresAt *time.Time
	if req.ExpiresIn > 0 {
		exp := now.Add(time.Duration(req.ExpiresIn) * time.Second).UTC()
		claims["exp"] = exp.Unix()
		expiresAt = &exp
	}

	token := jwt.NewWithClaims(method, claims)
	if req.KeyID != "" {
		token.Header["kid"] = req.KeyID
	}
	signed, err := token.SignedString([]byte(req.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &GenerateResponse{
		Token:     signed,
		Header:    token.Header,
		Claims:    claims,
		Signature: signed[strings.LastIndexByte(signed, '.')+1:],
		ExpiresAt: expiresAt,
	}, nil
}
