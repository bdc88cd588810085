package bundle_test

import (
	"context"
	"testing"
	"time"

	"github.com/slhowardESR/sliderule/bundle"
	"github.com/slhowardESR/sliderule/h5"
	"github.com/stretchr/testify/require"
)

func TestNewJoinsAllDatasets(t *testing.T) {
	asset := h5.NewMemAsset("test", map[string]any{
		"/gt1l/geolocation/segment_id":         []int32{100, 101, 102},
		"/gt1l/geolocation/reference_photon_lat": []float64{1, 2, 3},
	})
	b, err := bundle.New(context.Background(), asset, "r", h5.NewContext(4), time.Second, []bundle.Spec{
		{Path: "/gt1l/geolocation/segment_id", NumRows: h5.AllRows},
		{Path: "/gt1l/geolocation/reference_photon_lat", NumRows: h5.AllRows},
	})
	require.NoError(t, err)

	ids, err := b.Int32("/gt1l/geolocation/segment_id")
	require.NoError(t, err)
	require.Equal(t, []int32{100, 101, 102}, ids)

	lats, err := b.Float64("/gt1l/geolocation/reference_photon_lat")
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, lats)
}

func TestNewFailsOnMissingDataset(t *testing.T) {
	asset := h5.NewMemAsset("test", map[string]any{})
	_, err := bundle.New(context.Background(), asset, "r", nil, time.Second, []bundle.Spec{
		{Path: "/gt1l/geolocation/segment_id", NumRows: h5.AllRows},
	})
	require.Error(t, err)
}

func TestAncillaryPathDispatchesOnPrefix(t *testing.T) {
	require.Equal(t, "gt1l/geolocation/geophys_corr/tide_ocean", bundle.AncillaryPath("gt1l", "tide_ocean"))
	require.Equal(t, "gt1l/geolocation/podppd_flag", bundle.AncillaryPath("gt1l", "podppd_flag"))
}
