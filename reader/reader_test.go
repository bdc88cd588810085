package reader_test

import (
	"context"
	"testing"
	"time"

	"github.com/slhowardESR/sliderule/h5"
	"github.com/slhowardESR/sliderule/msgq"
	"github.com/slhowardESR/sliderule/parms"
	"github.com/slhowardESR/sliderule/reader"
	"github.com/slhowardESR/sliderule/wire"
	"github.com/stretchr/testify/require"
)

func emptyBeamDatasets() map[string]any {
	return map[string]any{
		"geolocation/segment_id":         []int32{},
		"geolocation/segment_dist_x":     []float64{},
		"geolocation/segment_ph_cnt":     []int32{},
		"geolocation/reference_photon_lon": []float64{},
		"geolocation/reference_photon_lat": []float64{},
		"geolocation/solar_elevation":    []float64{},
		"geolocation/delta_time":         []float64{},
		"geolocation/velocity_sc":        []float64{},
		"bckgrd_atlas/bckgrd_rate":       []float64{1},
		"bckgrd_atlas/delta_time":        []float64{0},
		"heights/dist_ph_along":          []float64{},
		"heights/dist_ph_across":         []float64{},
		"heights/h_ph":                   []float64{},
		"heights/lat_ph":                 []float64{},
		"heights/lon_ph":                 []float64{},
		"heights/delta_time":             []float64{},
		"heights/signal_conf_ph":         []int8{},
		"heights/quality_ph":             []int8{},
	}
}

func withGT(gt string, ds map[string]any) map[string]any {
	out := make(map[string]any, len(ds))
	for k, v := range ds {
		out[gt+"/"+k] = v
	}
	return out
}

func mergeDatasets(maps ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func TestReaderSingleSegmentExtentNoSubsetting(t *testing.T) {
	n := 10
	signalConf := make([]int8, n*int(parms.NumSurfaceTypes))
	distPhAlong := make([]float64, n)
	distPhAcross := make([]float64, n)
	hPh := make([]float64, n)
	qualityPh := make([]int8, n)
	latPh := make([]float64, n)
	lonPh := make([]float64, n)
	phDelta := make([]float64, n)
	for i := 0; i < n; i++ {
		distPhAlong[i] = float64(i) * 3
		distPhAcross[i] = float64(i)
		hPh[i] = 100 + float64(i)
		signalConf[i*int(parms.NumSurfaceTypes)+int(parms.SurfaceLand)] = parms.CnfWithin10m
	}

	gt1l := withGT("gt1l", map[string]any{
		"geolocation/segment_id":         []int32{500},
		"geolocation/segment_dist_x":     []float64{0},
		"geolocation/segment_ph_cnt":     []int32{int32(n)},
		"geolocation/reference_photon_lon": []float64{0},
		"geolocation/reference_photon_lat": []float64{0},
		"geolocation/solar_elevation":    []float64{45},
		"geolocation/delta_time":         []float64{1000},
		"geolocation/velocity_sc":        []float64{7000, 0, 0},
		"bckgrd_atlas/bckgrd_rate":       []float64{1, 2},
		"bckgrd_atlas/delta_time":        []float64{0, 2000},
		"heights/dist_ph_along":          distPhAlong,
		"heights/dist_ph_across":         distPhAcross,
		"heights/h_ph":                   hPh,
		"heights/lat_ph":                 latPh,
		"heights/lon_ph":                 lonPh,
		"heights/delta_time":             phDelta,
		"heights/signal_conf_ph":         signalConf,
		"heights/quality_ph":             qualityPh,
	})
	gt1r := withGT("gt1r", emptyBeamDatasets())

	asset := h5.NewMemAsset("ATL03_20181017222812_02950102_005_01.h5", mergeDatasets(
		gt1l, gt1r, map[string]any{"orbit_info/sc_orient": []int8{0}}))

	cfg := parms.Default()
	cfg.Track = 1
	cfg.ExtentLength = 40
	cfg.ExtentStep = 40
	cfg.MinimumPhotonCount = 5
	cfg.AlongTrackSpread = 20

	out := msgq.NewChan("test", 8)
	rd, err := reader.New(asset, "ATL03_20181017222812_02950102_005_01.h5", cfg, out, nil, true)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rd.Run(ctx))

	var payloads [][]byte
	for {
		buf, ok := out.Receive()
		if !ok {
			break
		}
		payloads = append(payloads, buf)
	}
	require.Len(t, payloads, 1)

	ext := wire.DecodeAtl03Extent(payloads[0])
	require.True(t, ext.Valid)
	require.Len(t, ext.Photons, n)

	snap := rd.Stats().Snapshot(false)
	require.EqualValues(t, 1, snap.ExtentsSent)
}
