package wire_test

import (
	"testing"

	"github.com/slhowardESR/sliderule/wire"
	"github.com/stretchr/testify/require"
)

func TestAtl03ExtentRoundTrip(t *testing.T) {
	e := wire.Atl03Extent{
		Track:              2,
		Pair:               1,
		ScOrient:           1,
		Valid:              true,
		Rgt:                123,
		Cycle:              7,
		SegmentID:          98765,
		SegmentDist:        1234.5,
		BackgroundRate:     170.0,
		SolarElevation:     12.5,
		ExtentLength:       20,
		SpacecraftVelocity: 7543.2,
		ExtentID:           0xdeadbeef,
		Photons: []wire.Photon{
			{
				TimeNs:     1700000000000000000,
				Latitude:   -80.123456,
				Longitude:  45.654321,
				XAtc:       -3.5,
				YAtc:       0.25,
				Height:     123.4,
				Relief:     1.2,
				Landcover:  3,
				Snowcover:  4,
				Atl08Class: 1,
				Atl03Cnf:   4,
				QualityPh:  0,
				YapcScore:  200,
			},
		},
	}

	got := wire.DecodeAtl03Extent(e.Encode())
	require.Equal(t, e.Track, got.Track)
	require.Equal(t, e.Pair, got.Pair)
	require.Equal(t, e.Valid, got.Valid)
	require.Equal(t, e.Rgt, got.Rgt)
	require.Equal(t, e.Cycle, got.Cycle)
	require.Equal(t, e.SegmentID, got.SegmentID)
	require.InDelta(t, e.SegmentDist, got.SegmentDist, 1e-9)
	require.InDelta(t, e.BackgroundRate, got.BackgroundRate, 1e-9)
	require.InDelta(t, float64(e.SolarElevation), float64(got.SolarElevation), 1e-4)
	require.Equal(t, e.ExtentID, got.ExtentID)
	require.Len(t, got.Photons, 1)
	require.Equal(t, e.Photons[0], got.Photons[0])
}
