package generate_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/generate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestGenerateUUIDs(t *testing.T) {
	t.Parallel()

	for _, version := range []int{1, 4, 7} {
		resp, err := generate.GenerateUUIDs(context.Background(), generate.UUIDRequest{Version: version, Count: 5})
		require.NoError(t, err)
		require.Len(t, resp.UUIDs, 5)

		seen := make(map[string]bool)
		for _, s := range resp.UUIDs {
			id, err := uuid.Parse(s)
			require.NoError(t, err)
			assert.Equal(t, uuid.Version(version), id.Version())
			assert.False(t, seen[s], "duplicate %s", s)
			seen[s] = true
		}
	}

	t.Run("defaults to one version 4", func(t *testing.T) {
		t.Parallel()

		resp, err := generate.GenerateUUIDs(context.Background(), generate.UUIDRequest{})

		require.NoError(t, err)
		assert.Equal(t, 4, resp.Version)
		assert.Len(t, resp.UUIDs, 1)
	})

	t.Run("formatting", func(t *testing.T) {
		t.Parallel()

		resp, err := generate.GenerateUUIDs(context.Background(), generate.UUIDRequest{Uppercase: true, NoHyphens: true})

		require.NoError(t, err)
		assert.Regexp(t, `^[0-9A-F]{32}$`, resp.UUIDs[0])
	})

	t.Run("version 7 sorts by creation time", func(t *testing.T) {
		t.Parallel()

		resp, err := generate.GenerateUUIDs(context.Background(), generate.UUIDRequest{Version: 7, Count: 20})

		require.NoError(t, err)
		for i := 1; i < len(resp.UUIDs); i++ {
			assert.Less(t, resp.UUIDs[i-1], resp.UUIDs[i])
		}
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		for _, req := range []generate.UUIDRequest{{Version: 3}, {Count: 101}, {Count: -1}} {
			_, err := generate.GenerateUUIDs(context.Background(), req)
			assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
		}
	})
}

func TestGeneratePasswords(t *testing.T) {
	t.Parallel()

	t.Run("defaults use every class", func(t *testing.T) {
		t.Parallel()

		resp, err := generate.GeneratePasswords(context.Background(), generate.PasswordRequest{Count: 20})

		require.NoError(t, err)
		require.Len(t, resp.Passwords, 20)
		assert.Equal(t, 16, resp.Length)
		assert.Equal(t, 26+26+10+27, resp.PoolSize)
		for _, pw := range resp.Passwords {
			assert.Len(t, pw, 16)
			assert.Regexp(t, `[a-z]`, pw)
			assert.Regexp(t, `[A-Z]`, pw)
			assert.Regexp(t, `[0-9]`, pw)
			assert.Regexp(t, `[^a-zA-Z0-9]`, pw)
		}
		assert.InDelta(t, 103.6, resp.EntropyBits, 0.1)
		assert.Equal(t, "very strong", resp.Strength)
	})

	t.Run("selected classes only", func(t *testing.T) {
		t.Parallel()

		resp, err := generate.GeneratePasswords(context.Background(), generate.PasswordRequest{Length: 8, Digits: boolPtr(true)})

		require.NoError(t, err)
		assert.Regexp(t, `^[0-9]{8}$`, resp.Passwords[0])
		assert.Equal(t, 10, resp.PoolSize)
		assert.Equal(t, "weak", resp.Strength)
	})

	t.Run("excludes ambiguous characters", func(t *testing.T) {
		t.Parallel()

		resp, err := generate.GeneratePasswords(context.Background(), generate.PasswordRequest{Length: 64, Count: 10, ExcludeAmbiguous: true})

		require.NoError(t, err)
		ambiguous := regexp.MustCompile(`[Il1O0o]`)
		for _, pw := range resp.Passwords {
			assert.False(t, ambiguous.MatchString(pw), pw)
		}
		assert.Equal(t, 89-6, resp.PoolSize)
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		for _, req := range []generate.PasswordRequest{
			{Length: 3},
			{Length: 257},
			{Lowercase: boolPtr(false)},
			{Count: 1000},
		} {
			_, err := generate.GeneratePasswords(context.Background(), req)
			assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
		}
	})
}
