package digest

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fwojciec/webtools"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Password hashing algorithms.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// Argon2id parameter bounds. Memory is in KiB.
const (
	defaultArgonMemory uint32 = 19 * 1024
	minArgonMemory     uint32 = 8 * 1024
	maxArgonMemory     uint32 = 128 * 1024
	defaultArgonTime   uint32 = 2
	maxArgonTime       uint32 = 10
	defaultArgonThread uint8  = 1
	maxArgonThread     uint8  = 4
	argonSaltLength           = 16
	argonKeyLength            = 32
	maxPasswordBytes          = 1024
)

// bcrypt costs accepted by the tool.
const (
	defaultBcryptCost = 10
	maxBcryptCost     = 14
)

// HashPasswordRequest is the request body of the password-hash tool.
type HashPasswordRequest struct {
	Password  string `json:"password"`
	Algorithm string `json:"algorithm"`

	// argon2id parameters.
	Memory      uint32 `json:"memory"`
	Iterations  uint32 `json:"iterations"`
	Parallelism uint8  `json:"parallelism"`

	// bcrypt cost.
	Cost int `json:"cost"`
}

// HashPasswordResponse is the result of the password-hash tool.
type HashPasswordResponse struct {
	Algorithm  string            `json:"algorithm"`
	Hash       string            `json:"hash"`
	Parameters map[string]uint32 `json:"parameters"`
}

// HashPassword is the password-hash tool.
func HashPassword(_ context.Context, req HashPasswordRequest) (*HashPasswordResponse, error) {
	if req.Password == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "password is required")
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, webtools.Errorf(webtools.EINVALID, "password exceeds %d bytes", maxPasswordBytes)
	}

	switch strings.ToLower(req.Algorithm) {
	case "", AlgorithmArgon2id:
		p := argonParams{memory: req.Memory, time: req.Iterations, threads: req.Parallelism}
		if err := p.defaults(); err != nil {
			return nil, err
		}
		encoded, err := hashArgon2id(req.Password, p)
		if err != nil {
			return nil, err
		}
		return &HashPasswordResponse{
			Algorithm: AlgorithmArgon2id,
			Hash:      encoded,
			Parameters: map[string]uint32{
				"memory":      p.memory,
				"iterations":  p.time,
				"parallelism": uint32(p.threads),
			},
		}, nil

	case AlgorithmBcrypt:
		cost := req.Cost
		if cost == 0 {
			cost = defaultBcryptCost
		}
		if cost < bcrypt.MinCost || cost > maxBcryptCost {
			return nil, webtools.Errorf(webtools.EINVALID, "bcrypt cost must be between %d and %d", bcrypt.MinCost, maxBcryptCost)
		}
		if len(req.Password) > 72 {
			return nil, webtools.Errorf(webtools.EINVALID, "bcrypt passwords are limited to 72 bytes")
		}
		h, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("bcrypt: %w", err)
		}
		return &HashPasswordResponse{
			Algorithm:  AlgorithmBcrypt,
			Hash:       string(h),
			Parameters: map[string]uint32{"cost": uint32(cost)},
		}, nil

	default:
		return nil, webtools.Errorf(webtools.EINVALID, "unknown password algorithm %q", req.Algorithm)
	}
}

// VerifyPasswordRequest is the request body of the password-verify tool.
type VerifyPasswordRequest struct {
	Password string `json:"password"`
	Hash     string `json:"hash"`
}

// VerifyPasswordResponse is the result of the password-verify tool.
type VerifyPasswordResponse struct {
	Valid     bool   `json:"valid"`
	Algorithm string `json:"algorithm"`
}

// VerifyPassword is the password-verify tool. The algorithm is taken from
// the encoded hash.
func VerifyPassword(_ context.Context, req VerifyPasswordRequest) (*VerifyPasswordResponse, error) {
	if len(req.Password) > maxPasswordBytes {
		return nil, webtools.Errorf(webtools.EINVALID, "password exceeds %d bytes", maxPasswordBytes)
	}
	encoded := strings.TrimSpace(req.Hash)

	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		ok, err := verifyArgon2id(req.Password, encoded)
		if err != nil {
			return nil, err
		}
		return &VerifyPasswordResponse{Valid: ok, Algorithm: AlgorithmArgon2id}, nil

	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(req.Password))
		switch {
		case err == nil:
			return &VerifyPasswordResponse{Valid: true, Algorithm: AlgorithmBcrypt}, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return &VerifyPasswordResponse{Valid: false, Algorithm: AlgorithmBcrypt}, nil
		default:
			return nil, webtools.Errorf(webtools.EINVALID, "invalid bcrypt hash: %v", err)
		}

	default:
		return nil, webtools.Errorf(webtools.EINVALID, "unrecognized hash format, expected argon2id or bcrypt")
	}
}

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

func (p *argonParams) defaults() error {
	if p.memory == 0 {
		p.memory = defaultArgonMemory
	}
	if p.time == 0 {
		p.time = defaultArgonTime
	}
	if p.threads == 0 {
		p.threads = defaultArgonThread
	}
	if p.memory < minArgonMemory || p.memory > maxArgonMemory {
		return webtools.Errorf(webtools.EINVALID, "argon2id memory must be between %d and %d KiB", minArgonMemory, maxArgonMemory)
	}
	if p.time > maxArgonTime {
		return webtools.Errorf(webtools.EINVALID, "argon2id iterations must be at most %d", maxArgonTime)
	}
	if p.threads > maxArgonThread {
		return webtools.Errorf(webtools.EINVALID, "argon2id parallelism must be at most %d", maxArgonThread)
	}
	return nil
}

func hashArgon2id(password string, p argonParams) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, argonKeyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// verifyArgon2id checks a PHC encoded argon2id hash. Salt and hash may use
// padded or unpadded base64.
func verifyArgon2id(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != AlgorithmArgon2id {
		return false, webtools.Errorf(webtools.EINVALID, "invalid argon2id hash format")
	}
	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || version != argon2.Version {
		return false, webtools.Errorf(webtools.EINVALID, "unsupported argon2 version %q", parts[2])
	}

	var p argonParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return false, webtools.Errorf(webtools.EINVALID, "invalid argon2id parameters %q", parts[3])
	}
	if p.memory == 0 || p.time == 0 || p.threads == 0 {
		return false, webtools.Errorf(webtools.EINVALID, "invalid argon2id parameters %q", parts[3])
	}
	if p.memory > maxArgonMemory || p.time > maxArgonTime || p.threads > maxArgonThread {
		return false, webtools.Errorf(webtools.EINVALID, "argon2id parameters exceed the supported limits")
	}

	salt, err := decodeB64(parts[4])
	if err != nil {
		return false, webtools.Errorf(webtools.EINVALID, "invalid argon2id salt encoding")
	}
	want, err := decodeB64(parts[5])
	if err != nil || len(want) == 0 {
		return false, webtools.Errorf(webtools.EINVALID, "invalid argon2id hash encoding")
	}

	got := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func decodeB64(s string) ([]byte, error) {
	if strings.HasSuffix(s, "=") {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}
