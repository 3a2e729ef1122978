package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTool_ImplementsInterface(t *testing.T) {
	t.Parallel()

	// Verify mock can be used where Tool is expected
	var _ webtools.Tool = &mock.Tool{}
}

func TestTool_Run(t *testing.T) {
	t.Parallel()

	t.Run("delegates to RunFn", func(t *testing.T) {
		t.Parallel()

		var calledWith []byte
		tool := &mock.Tool{
			RunFn: func(_ context.Context, input []byte) (any, error) {
				calledWith = input
				return "ok", nil
			},
		}

		out, err := tool.Run(context.Background(), []byte(`{"a":1}`))

		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		assert.Equal(t, []byte(`{"a":1}`), calledWith)
	})
}
