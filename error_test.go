package webtools_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/webtools"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := webtools.Errorf(webtools.ENOTFOUND, "tool %q not found", "test")

	assert.Equal(t, webtools.ENOTFOUND, webtools.ErrorCode(err))
	assert.Equal(t, "tool \"test\" not found", webtools.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, webtools.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, webtools.ErrorMessage(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("decoding: %w", webtools.Errorf(webtools.EINVALID, "bad input"))

	assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
	assert.Equal(t, "bad input", webtools.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("disk on fire")

	assert.Equal(t, webtools.EINTERNAL, webtools.ErrorCode(err))
	assert.Equal(t, "Internal error.", webtools.ErrorMessage(err))
}
