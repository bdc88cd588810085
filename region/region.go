// Package region implements spatial cropping of an ATL03 granule's
// segment range against an optional polygon or raster filter, grounded
// on Region::polyregion and Region::rasterregion.
package region

import (
	"github.com/slhowardESR/sliderule/geo"
	"github.com/slhowardESR/sliderule/parms"
)

// Result is the segment/photon range a beam should read, plus, for a
// raster filter only, a per-segment inclusion mask trimmed to start at
// FirstSegment.
type Result struct {
	FirstSegment  int64
	NumSegments   int64
	FirstPhoton   int64
	NumPhotons    int64
	InclusionMask []bool
}

// Includer is satisfied by the polyIncluder and rasterIncluder adapters
// over geo.Polygon and geo.Raster.
type Includer interface {
	includes(lon, lat float64) bool
}

type polyIncluder struct{ p *geo.Polygon }

func (i polyIncluder) includes(lon, lat float64) bool {
	return i.p.Includes(geo.Coord{Lon: lon, Lat: lat})
}

type rasterIncluder struct{ r *geo.Raster }

func (i rasterIncluder) includes(lon, lat float64) bool { return i.r.Includes(lon, lat) }

// Crop computes the segment/photon range segLon/segLat/segPhotonCount
// (one entry per ATL03 geolocation segment, in granule order) reduce to
// under filter. A zero-value filter (parms.FilterNone) returns the
// whole granule with no mask.
func Crop(filter parms.SpatialFilter, segLon, segLat []float64, segPhotonCount []int32) Result {
	switch filter.Kind {
	case parms.FilterPolygon:
		return polyregion(polyIncluder{filter.Polygon}, segLon, segLat, segPhotonCount)
	case parms.FilterRaster:
		return rasterregion(rasterIncluder{filter.Raster}, segLon, segLat, segPhotonCount)
	default:
		total := int64(0)
		for _, c := range segPhotonCount {
			total += int64(c)
		}
		return Result{FirstSegment: 0, NumSegments: int64(len(segPhotonCount)), FirstPhoton: 0, NumPhotons: total}
	}
}

// polyregion scans forward until the first included segment, then
// accumulates photons until the first non-included non-empty segment
// breaks the run — a single contiguous span, no mask.
func polyregion(inc Includer, lon, lat []float64, photonCount []int32) Result {
	var (
		firstSegmentFound bool
		firstSegment      int64
		firstPhoton       int64
		numPhotons        int64
		segment           int64
		n                 = int64(len(lon))
	)
	for segment = 0; segment < n; segment++ {
		included := inc.includes(lon[segment], lat[segment])
		count := int64(photonCount[segment])
		if !firstSegmentFound {
			if included && count != 0 {
				firstSegmentFound = true
				firstSegment = segment
				numPhotons = count
			} else {
				firstPhoton += count
			}
			continue
		}
		if !included && count > 0 {
			break
		}
		numPhotons += count
	}
	numSegments := segment - firstSegment
	if !firstSegmentFound {
		numSegments = 0
	}
	return Result{FirstSegment: firstSegment, NumSegments: numSegments, FirstPhoton: firstPhoton, NumPhotons: numPhotons}
}

// rasterregion scans the entire granule (never breaks early) because it
// must produce an inclusion mask for every segment in [firstSegment,
// lastSegment]; the committed photon count and last included segment
// only advance on an included, non-empty segment, so non-included
// segments between included ones stay in the range (photons counted)
// while trailing non-included segments are dropped.
func rasterregion(inc Includer, lon, lat []float64, photonCount []int32) Result {
	n := int64(len(lon))
	mask := make([]bool, n)
	var (
		firstSegmentFound bool
		firstSegment      int64
		lastSegment        int64
		firstPhoton       int64
		currNumPhotons    int64
		numPhotons        int64
	)
	for segment := int64(0); segment < n; segment++ {
		included := inc.includes(lon[segment], lat[segment])
		mask[segment] = included
		count := int64(photonCount[segment])
		if !firstSegmentFound {
			if included && count != 0 {
				firstSegmentFound = true
				firstSegment = segment
				lastSegment = segment
				currNumPhotons = count
				numPhotons = count
			} else {
				firstPhoton += count
			}
			continue
		}
		currNumPhotons += count
		if included && count > 0 {
			numPhotons = currNumPhotons
			lastSegment = segment
		}
	}
	if !firstSegmentFound {
		return Result{InclusionMask: mask[:0]}
	}
	numSegments := lastSegment - firstSegment + 1
	return Result{
		FirstSegment:  firstSegment,
		NumSegments:   numSegments,
		FirstPhoton:   firstPhoton,
		NumPhotons:    numPhotons,
		InclusionMask: mask[firstSegment : firstSegment+numSegments],
	}
}
