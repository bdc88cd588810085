package region_test

import (
	"testing"

	"github.com/slhowardESR/sliderule/geo"
	"github.com/slhowardESR/sliderule/parms"
	"github.com/slhowardESR/sliderule/region"
	"github.com/stretchr/testify/require"
)

func square(minX, minY, maxX, maxY float64) *geo.Polygon {
	return geo.NewPolygon([]geo.Point{
		{X: minX, Y: minY}, {X: maxX, Y: minY}, {X: maxX, Y: maxY}, {X: minX, Y: maxY},
	})
}

func TestCropNoFilterReturnsWholeGranule(t *testing.T) {
	lon := []float64{0, 1, 2, 3}
	lat := []float64{0, 1, 2, 3}
	counts := []int32{10, 10, 10, 10}
	res := region.Crop(parms.SpatialFilter{Kind: parms.FilterNone}, lon, lat, counts)
	require.EqualValues(t, 0, res.FirstSegment)
	require.EqualValues(t, 4, res.NumSegments)
	require.EqualValues(t, 40, res.NumPhotons)
}

func TestCropPolygonEmptyIntersectionYieldsZeroSegments(t *testing.T) {
	lon := []float64{100, 101, 102}
	lat := []float64{100, 101, 102}
	counts := []int32{10, 10, 10}
	poly := square(0, 0, 1, 1)
	res := region.Crop(parms.SpatialFilter{Kind: parms.FilterPolygon, Polygon: poly}, lon, lat, counts)
	require.EqualValues(t, 0, res.NumSegments)
	require.EqualValues(t, 0, res.NumPhotons)
}

func TestCropPolygonContiguousSpan(t *testing.T) {
	lon := []float64{-5, 0.2, 0.5, 0.8, 5}
	lat := []float64{-5, 0.2, 0.5, 0.8, 5}
	counts := []int32{5, 10, 10, 10, 5}
	poly := square(0, 0, 1, 1)
	res := region.Crop(parms.SpatialFilter{Kind: parms.FilterPolygon, Polygon: poly}, lon, lat, counts)
	require.EqualValues(t, 1, res.FirstSegment)
	require.EqualValues(t, 3, res.NumSegments)
	require.EqualValues(t, 5, res.FirstPhoton)
	require.EqualValues(t, 30, res.NumPhotons)
}

func TestCropRasterProducesTrimmedMask(t *testing.T) {
	lon := []float64{0.1, 0.2, 5.0, 0.3}
	lat := []float64{0.1, 0.2, 5.0, 0.3}
	counts := []int32{10, 10, 10, 10}
	mask := []bool{true, true, true, true, true, true, true, true, true, true}
	raster := geo.NewRaster(0, 0, 1, 10, 10, mask)
	res := region.Crop(parms.SpatialFilter{Kind: parms.FilterRaster, Raster: raster}, lon, lat, counts)
	require.EqualValues(t, 0, res.FirstSegment)
	require.EqualValues(t, 4, res.NumSegments)
	require.Len(t, res.InclusionMask, 4)
	require.EqualValues(t, 40, res.NumPhotons)
}
