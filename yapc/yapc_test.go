package yapc_test

import (
	"testing"

	"github.com/slhowardESR/sliderule/parms"
	"github.com/slhowardESR/sliderule/yapc"
	"github.com/stretchr/testify/require"
)

func TestScoreV3DenserNeighborhoodScoresHigher(t *testing.T) {
	// One segment of 20 photons: first half tightly clustered in
	// height (dense), second half spread far apart (sparse).
	segmentPhotonCount := []int32{20}
	segmentDistX := []float64{0}
	distPhAlong := make([]float64, 20)
	hPh := make([]float64, 20)
	for i := 0; i < 10; i++ {
		distPhAlong[i] = float64(i)
		hPh[i] = 100.0 + float64(i%2)*0.01
	}
	for i := 10; i < 20; i++ {
		distPhAlong[i] = float64(i)
		hPh[i] = float64(i) * 50.0
	}

	settings := parms.YapcSettings{Version: 3, MinKNN: 3, WinX: 15, WinH: 6}
	scores, err := yapc.Score(3, settings, 0, segmentPhotonCount, segmentDistX, distPhAlong, hPh)
	require.NoError(t, err)
	require.Len(t, scores, 20)

	var denseAvg, sparseAvg float64
	for i := 0; i < 10; i++ {
		denseAvg += float64(scores[i])
	}
	for i := 10; i < 20; i++ {
		sparseAvg += float64(scores[i])
	}
	denseAvg /= 10
	sparseAvg /= 10
	require.Greater(t, denseAvg, sparseAvg)
}

func TestScoreUnsupportedVersion(t *testing.T) {
	_, err := yapc.Score(9, parms.YapcSettings{}, 0, nil, nil, nil, nil)
	require.Error(t, err)
}

func TestScoreV2SkipsSmallSegments(t *testing.T) {
	settings := parms.YapcSettings{Score: 42, KNN: 3}
	scores, err := yapc.Score(2, settings, 10, []int32{2}, nil, []float64{0, 1}, []float64{1, 2})
	require.NoError(t, err)
	require.Equal(t, []uint8{42, 42}, scores)
}
