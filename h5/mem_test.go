package h5_test

import (
	"context"
	"testing"
	"time"

	"github.com/slhowardESR/sliderule/h5"
	"github.com/stretchr/testify/require"
)

func TestMemArrayJoinAndAt(t *testing.T) {
	a := h5.NewMemArray([]float64{1, 2, 3, 4, 5}, 1, 3)
	require.NoError(t, a.Join(context.Background(), time.Second, true))
	n, err := a.Size()
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
	v, err := a.At(0)
	require.NoError(t, err)
	require.Equal(t, 2.0, v)
}

func TestContextDedupesBlockFetches(t *testing.T) {
	hctx := h5.NewContext(8)
	asset := h5.NewMemAsset("test", map[string]any{
		"/gt1l/x": []float64{10, 20, 30},
	})
	a1, err := asset.Open(context.Background(), "r", "/gt1l/x", hctx, 0, h5.AllRows)
	require.NoError(t, err)
	a2, err := asset.Open(context.Background(), "r", "/gt1l/x", hctx, 0, h5.AllRows)
	require.NoError(t, err)
	require.Same(t, a1, a2)
}
