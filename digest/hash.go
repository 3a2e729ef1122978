package digest

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/fwojciec/webtools"
)

// MaxInputBytes bounds the decoded size of hashed input.
const MaxInputBytes = 4 << 20

// HashRequest is the request body of the hash-generator tool.
type HashRequest struct {
	Input string `json:"input"`

	// InputEncoding is utf8 (default), hex or base64.
	InputEncoding string `json:"inputEncoding"`

	// Algorithms to compute. Empty means all.
	Algorithms []string `json:"algorithms"`

	// OutputEncoding is hex (default) or base64.
	OutputEncoding string `json:"outputEncoding"`

	// Key switches to HMAC, or keyed BLAKE2b.
	Key string `json:"key"`

	Uppercase bool `json:"uppercase"`
}

// HashResult is one computed digest.
type HashResult struct {
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
	Bits      int    `json:"bits"`
}

// HashResponse is the result of the hash-generator tool.
type HashResponse struct {
	Hashes     []HashResult `json:"hashes"`
	InputBytes int          `json:"inputBytes"`
	Keyed      bool         `json:"keyed"`
	Encoding   string       `json:"encoding"`
}

// GenerateHashes is the hash-generator tool.
func GenerateHashes(_ context.Context, req HashRequest) (*HashResponse, error) {
	input, err := decodeInput(req.Input, req.InputEncoding)
	if err != nil {
		return nil, err
	}
	if len(input) > MaxInputBytes {
		return nil, webtools.Errorf(webtools.EINVALID, "input exceeds %d bytes", MaxInputBytes)
	}

	encoding := req.OutputEncoding
	if encoding == "" {
		encoding = "hex"
	}
	if encoding != "hex" && encoding != "base64" {
		return nil, webtools.Errorf(webtools.EINVALID, "output encoding must be hex or base64")
	}

	names := req.Algorithms
	if len(names) == 0 {
		for _, a := range Algorithms {
			if req.Key == "" || a.NewKeyed != nil {
				names = append(names, a.Name)
			}
		}
	}

	resp := &HashResponse{
		Hashes:     make([]HashResult, 0, len(names)),
		InputBytes: len(input),
		Keyed:      req.Key != "",
		Encoding:   encoding,
	}
	for _, name := range names {
		alg, ok := FindAlgorithm(strings.ToLower(name))
		if !ok {
			return nil, webtools.Errorf(webtools.EINVALID, "unknown hash algorithm %q", name)
		}
		sum, err := Sum(alg, input, []byte(req.Key))
		if err != nil {
			return nil, err
		}

		var out string
		if encoding == "base64" {
			out = base64.StdEncoding.EncodeToString(sum)
		} else {
			out = hex.EncodeToString(sum)
			if req.Uppercase {
				out = strings.ToUpper(out)
			}
		}
		resp.Hashes = append(resp.Hashes, HashResult{Algorithm: alg.Name, Digest: out, Bits: len(sum) * 8})
	}
	return resp, nil
}

// Sum computes the digest of data. A non-empty key selects the keyed variant.
func Sum(alg Algorithm, data, key []byte) ([]byte, error) {
	if len(key) == 0 {
		h := alg.New()
		h.Write(data)
		return h.Sum(nil), nil
	}
	if alg.NewKeyed == nil {
		return nil, webtools.Errorf(webtools.EINVALID, "%s does not support a key", alg.Name)
	}
	h, err := alg.NewKeyed(key)
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid key for %s: %v", alg.Name, err)
	}
	h.Write(data)
	return h.Sum(nil), nil
}

func decodeInput(s, encoding string) ([]byte, error) {
	switch strings.ToLower(encoding) {
	case "", "utf8", "utf-8", "text":
		return []byte(s), nil
	case "hex":
		b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
		if err != nil {
			return nil, webtools.Errorf(webtools.EINVALID, "input is not valid hex: %v", err)
		}
		return b, nil
	case "base64":
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, webtools.Errorf(webtools.EINVALID, "input is not valid base64: %v", err)
		}
		return b, nil
	default:
		return nil, webtools.Errorf(webtools.EINVALID, "input encoding must be utf8, hex or base64")
	}
}
