package atl08_test

import (
	"testing"

	"github.com/slhowardESR/sliderule/atl08"
	"github.com/slhowardESR/sliderule/parms"
	"github.com/stretchr/testify/require"
)

func TestClassifyMatchesAndFillsUnclassifiedGaps(t *testing.T) {
	in := atl08.Input{
		Atl03SegmentID: []int32{100, 100, 100},
		Atl08SegmentID: []int32{100, 100},
		Atl08Index:     []int32{1, 3},
		Atl08Class:     []int8{parms.Atl08Ground, parms.Atl08TopOfCanopy},
	}
	points := atl08.Classify(in, atl08.Above{})
	require.Len(t, points, 3)
	require.EqualValues(t, parms.Atl08Ground, points[0].Class)
	require.EqualValues(t, parms.Atl08Unclassified, points[1].Class)
	require.EqualValues(t, parms.Atl08TopOfCanopy, points[2].Class)
	require.EqualValues(t, parms.InvalidIndice, points[1].AncillaryIndex)
}

func TestClassifySpansMultipleSegments(t *testing.T) {
	in := atl08.Input{
		Atl03SegmentID: []int32{100, 100, 101, 101},
		Atl08SegmentID: []int32{100, 101},
		Atl08Index:     []int32{2, 1},
		Atl08Class:     []int8{parms.Atl08Canopy, parms.Atl08Ground},
	}
	points := atl08.Classify(in, atl08.Above{})
	require.EqualValues(t, parms.Atl08Unclassified, points[0].Class)
	require.EqualValues(t, parms.Atl08Canopy, points[1].Class)
	require.EqualValues(t, parms.Atl08Ground, points[2].Class)
	require.EqualValues(t, parms.Atl08Unclassified, points[3].Class)
}

func TestClassifyPopulatesPhorealFields(t *testing.T) {
	in := atl08.Input{
		Atl03SegmentID:    []int32{200},
		Atl08SegmentID:    []int32{200},
		Atl08Index:        []int32{1},
		Atl08Class:        []int8{parms.Atl08TopOfCanopy},
		Atl08Relief:       []float64{4.5},
		Atl08SegmentIDBeg: []int32{196},
		Atl08LandCover:    []uint8{11},
		Atl08SnowCover:    []uint8{1},
	}
	points := atl08.Classify(in, atl08.Above{})
	require.Equal(t, 4.5, points[0].Relief)
	require.EqualValues(t, 11, points[0].LandCover)
	require.EqualValues(t, 1, points[0].SnowCover)
}

func TestClassifyAboveReclassifiesToTopOfCanopy(t *testing.T) {
	in := atl08.Input{
		Atl03SegmentID:    []int32{200},
		Atl08SegmentID:    []int32{200},
		Atl08Index:        []int32{1},
		Atl08Class:        []int8{parms.Atl08Canopy},
		Atl08Relief:       []float64{4.5},
		Atl08SegmentIDBeg: []int32{196},
		Atl08LandCover:    []uint8{11},
		Atl08SnowCover:    []uint8{1},
	}
	above := atl08.Above{
		Enabled:        true,
		SolarElevation: []float64{2.0},
		SignalConf:     []int8{parms.CnfSurfaceHigh},
		Spot:           1,
	}
	points := atl08.Classify(in, above)
	require.EqualValues(t, parms.Atl08TopOfCanopy, points[0].Class)
}

func TestClassifyAboveSkipsAlreadyTopOfCanopy(t *testing.T) {
	in := atl08.Input{
		Atl03SegmentID:    []int32{200},
		Atl08SegmentID:    []int32{200},
		Atl08Index:        []int32{1},
		Atl08Class:        []int8{parms.Atl08TopOfCanopy},
		Atl08Relief:       []float64{4.5},
		Atl08SegmentIDBeg: []int32{196},
		Atl08LandCover:    []uint8{11},
		Atl08SnowCover:    []uint8{1},
	}
	above := atl08.Above{
		Enabled:        true,
		SolarElevation: []float64{2.0},
		SignalConf:     []int8{parms.CnfSurfaceHigh},
		Spot:           1,
	}
	points := atl08.Classify(in, above)
	require.EqualValues(t, parms.Atl08TopOfCanopy, points[0].Class)
}
