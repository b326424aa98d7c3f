package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRotationSourceContract runs a suite of tests to verify that a RotationSource
// implementation adheres to the defined interface contract.
// The source must already hold exactly the given texts.
func RunRotationSourceContract(t *testing.T, source RotationSource, texts []string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Count", func(t *testing.T) {
		count, err := source.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, len(texts), count)
	})

	t.Run("Text In Range", func(t *testing.T) {
		for i, want := range texts {
			got, err := source.Text(ctx, i)
			require.NoError(t, err)
			value, ok := got.Value()
			assert.True(t, ok, "text %d should be present", i)
			assert.Equal(t, want, value)
		}
	})

	t.Run("Text Out Of Range", func(t *testing.T) {
		got, err := source.Text(ctx, len(texts))
		require.NoError(t, err)
		assert.True(t, got.IsNone())

		got, err = source.Text(ctx, -1)
		require.NoError(t, err)
		assert.True(t, got.IsNone())
	})

	t.Run("Interval", func(t *testing.T) {
		interval, err := source.Interval(ctx)
		require.NoError(t, err)
		assert.Positive(t, interval)
	})
}
