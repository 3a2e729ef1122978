// Package digest implements the hash tools: message digests, HMACs and
// password hashing with argon2id and bcrypt.
package digest

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"hash/crc32"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/webtools"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Tools returns every hash tool.
func Tools() []webtools.Tool {
	return []webtools.Tool{
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "hash-generator",
			Category:    webtools.CategoryHashTools,
			Name:        "Hash Generator",
			Description: "Compute MD5, SHA, SHA-3, BLAKE2b, xxHash and CRC32 digests or HMACs.",
		}, GenerateHashes),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "password-hash",
			Category:    webtools.CategoryHashTools,
			Name:        "Password Hash",
			Description: "Hash a password with argon2id or bcrypt.",
		}, HashPassword),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "password-verify",
			Category:    webtools.CategoryHashTools,
			Name:        "Password Verify",
			Description: "Check a password against an argon2id or bcrypt hash.",
		}, VerifyPassword),
	}
}

// Algorithm describes a supported digest.
type Algorithm struct {
	Name string
	New  func() hash.Hash

	// NewKeyed returns a keyed hash. Nil if the algorithm takes no key.
	NewKeyed func(key []byte) (hash.Hash, error)
}

func hmacOf(h func() hash.Hash) func(key []byte) (hash.Hash, error) {
	return func(key []byte) (hash.Hash, error) {
		return hmac.New(h, key), nil
	}
}

func newBlake2b256() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

func newBlake2b512() hash.Hash {
	h, _ := blake2b.New512(nil)
	return h
}

func newXXHash() hash.Hash {
	return xxhash.New()
}

func newCRC32() hash.Hash {
	return crc32.NewIEEE()
}

// Algorithms lists the supported digests in report order.
var Algorithms = []Algorithm{
	{Name: "md5", New: md5.New, NewKeyed: hmacOf(md5.New)},
	{Name: "sha1", New: sha1.New, NewKeyed: hmacOf(sha1.New)},
	{Name: "sha224", New: sha256.New224, NewKeyed: hmacOf(sha256.New224)},
	{Name: "sha256", New: sha256.New, NewKeyed: hmacOf(sha256.New)},
	{Name: "sha384", New: sha512.New384, NewKeyed: hmacOf(sha512.New384)},
	{Name: "sha512", New: sha512.New, NewKeyed: hmacOf(sha512.New)},
	{Name: "sha3-256", New: sha3.New256, NewKeyed: hmacOf(sha3.New256)},
	{Name: "sha3-512", New: sha3.New512, NewKeyed: hmacOf(sha3.New512)},
	{Name: "blake2b-256", New: newBlake2b256, NewKeyed: blake2b.New256},
	{Name: "blake2b-512", New: newBlake2b512, NewKeyed: blake2b.New512},
	{Name: "xxhash64", New: newXXHash},
	{Name: "crc32", New: newCRC32},
}

// FindAlgorithm returns the named digest.
func FindAlgorithm(name string) (Algorithm, bool) {
	for _, a := range Algorithms {
		if a.Name == name {
			return a, true
		}
	}
	return Algorithm{}, false
}
