// Package generate implements the generator tools: UUIDs and random
// passwords.
package generate

import (
	"context"
	"strings"

	"github.com/fwojciec/webtools"
	"github.com/google/uuid"
)

// MaxCount bounds how many values a single request may generate.
const MaxCount = 100

// Tools returns every generator tool.
func Tools() []webtools.Tool {
	return []webtools.Tool{
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "uuid-generator",
			Category:    webtools.CategoryGenerators,
			Name:        "UUID Generator",
			Description: "Generate version 1, 4 or 7 UUIDs.",
		}, GenerateUUIDs),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "password-generator",
			Category:    webtools.CategoryGenerators,
			Name:        "Password Generator",
			Description: "Generate random passwords from selected character classes with an entropy estimate.",
		}, GeneratePasswords),
	}
}

// UUIDRequest is the request body of the uuid-generator tool.
type UUIDRequest struct {
	Version   int  `json:"version"`
	Count     int  `json:"count"`
	Uppercase bool `json:"uppercase"`
	NoHyphens bool `json:"noHyphens"`
}

// UUIDResponse is the result of the uuid-generator tool.
type UUIDResponse struct {
	Version int      `json:"version"`
	UUIDs   []string `json:"uuids"`
}

// GenerateUUIDs is the uuid-generator tool. Version defaults to 4 and count
// to 1.
func GenerateUUIDs(_ context.Context, req UUIDRequest) (*UUIDResponse, error) {
	count, err := checkCount(req.Count)
	if err != nil {
		return nil, err
	}

	var gen func() (uuid.UUID, error)
	switch req.Version {
	case 0, 4:
		req.Version = 4
		gen = uuid.NewRandom
	case 1:
		gen = uuid.NewUUID
	case 7:
		gen = uuid.NewV7
	default:
		return nil, webtools.Errorf(webtools.EINVALID, "unsupported UUID version %d: use 1, 4 or 7", req.Version)
	}

	resp := &UUIDResponse{Version: req.Version, UUIDs: make([]string, 0, count)}
	for range count {
		id, err := gen()
		if err != nil {
			return nil, webtools.Errorf(webtools.EUNAVAILABLE, "generate uuid: %v", err)
		}
		s := id.String()
		if req.NoHyphens {
			s = strings.ReplaceAll(s, "-", "")
		}
		if req.Uppercase {
			s = strings.ToUpper(s)
		}
		resp.UUIDs = append(resp.UUIDs, s)
	}
	return resp, nil
}

func checkCount(n int) (int, error) {
	if n == 0 {
		return 1, nil
	}
	if n < 0 || n > MaxCount {
		return 0, webtools.Errorf(webtools.EINVALID, "count must be between 1 and %d", MaxCount)
	}
	return n, nil
}
