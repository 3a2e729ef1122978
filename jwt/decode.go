package jwt

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/webtools"
	"github.com/golang-jwt/jwt/v5"
)

// DecodeRequest is the request body of the jwt-decoder tool. The signature is
// only checked when Secret is set.
type DecodeRequest struct {
	Token  string `json:"token"`
	Secret string `json:"secret"`
}

// DecodeResponse is the result of the jwt-decoder tool. Header and claims
// are decoded without trusting them.
type DecodeResponse struct {
	Header            map[string]any `json:"header"`
	Claims            map[string]any `json:"claims"`
	Algorithm         string         `json:"algorithm"`
	Signature         string         `json:"signature"`
	SignatureChecked  bool           `json:"signatureChecked"`
	SignatureValid    bool           `json:"signatureValid"`
	VerificationError string         `json:"verificationError,omitempty"`
	Expired           bool           `json:"expired"`
	NotYetValid       bool           `json:"notYetValid"`
	ExpiresAt         *time.Time     `json:"expiresAt,omitempty"`
	IssuedAt          *time.Time     `json:"issuedAt,omitempty"`
	NotBefore         *time.Time     `json:"notBefore,omitempty"`
}

// Decode is the jwt-decoder tool.
func (s *Service) Decode(_ context.Context, req DecodeRequest) (*DecodeResponse, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(req.Token), "Bearer "))
	if raw == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "token is required")
	}
	if len(raw) > MaxTokenBytes {
		return nil, webtools.Errorf(webtools.EINVALID, "token exceeds %d bytes", MaxTokenBytes)
	}

	claims := jwt.MapClaims{}
	token, _, err := jwt.NewParser().ParseUnverified(raw, claims)
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid token: %v", err)
	}

	resp := &DecodeResponse{
		Header:    token.Header,
		Claims:    claims,
		Algorithm: token.Method.Alg(),
	}
	if i := strings.LastIndexByte(raw, '.'); i >= 0 {
		resp.Signature = raw[i+1:]
	}

	// Malformed registered claims are left for the caller to see in Claims.
	exp, _ := claims.GetExpirationTime()
	iat, _ := claims.GetIssuedAt()
	nbf, _ := claims.GetNotBefore()
	resp.ExpiresAt = numericTime(exp)
	resp.IssuedAt = numericTime(iat)
	resp.NotBefore = numericTime(nbf)

	now := s.Now()
	resp.Expired = exp != nil && !now.Before(exp.Time)
	resp.NotYetValid = nbf != nil && now.Before(nbf.Time)

	if req.Secret != "" {
		resp.SignatureChecked = true
		if err := verify(raw, req.Secret); err != nil {
			resp.VerificationError = err.Error()
		} else {
			resp.SignatureValid = true
		}
	}
	return resp, nil
}

// verify checks the HMAC signature only; time based claims are reported
// separately.
func verify(raw, secret string) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.Parse(raw, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.New("signature does not match the secret")
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return errors.New("only HS256, HS384 and HS512 signatures can be verified")
	default:
		return err
	}
}
