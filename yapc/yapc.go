// Package yapc implements C5, the "Yet Another Photon Classifier"
// density scorer: a per-photon byte score derived from a k-nearest
// vertical-neighbor count, grounded on YapcScore::yapcV2/yapcV3.
package yapc

import (
	"fmt"
	"math"

	"github.com/slhowardESR/sliderule/parms"
)

// MaxKNN caps the configured or auto-computed k for V1/V2, mirroring
// YapcScore::MAX_KNN.
const MaxKNN = 25

// MaximumHspread and HspreadBinsize bound and quantize the V1/V2
// vertical-spread calculation.
const (
	MaximumHspread = 15000.0
	HspreadBinsize = 1.0
)

// Score computes one density byte per photon in hPh/distPhAlong, which
// must be ordered by segment and span exactly the segments described by
// segmentPhotonCount. Under versions 1 and 2, photons in a segment too
// small to score (fewer than minPhotonCount photons, or no more than k)
// keep settings.Score, the caller-configured fallback; version 3 does
// not use minPhotonCount.
func Score(version int, settings parms.YapcSettings, minPhotonCount int, segmentPhotonCount []int32, segmentDistX, distPhAlong, hPh []float64) ([]uint8, error) {
	switch version {
	case 1, 2:
		return scoreV2(settings, minPhotonCount, segmentPhotonCount, distPhAlong, hPh), nil
	case 3:
		return scoreV3(settings, segmentPhotonCount, segmentDistX, distPhAlong, hPh), nil
	default:
		return nil, fmt.Errorf("yapc: unsupported version: %d", version)
	}
}

// segmentBounds returns the [start, end) photon index range of segment
// i in a photon stream laid out per segmentPhotonCount.
func segmentBounds(segmentPhotonCount []int32, i int) (int, int) {
	start := 0
	for j := 0; j < i; j++ {
		start += int(segmentPhotonCount[j])
	}
	return start, start + int(segmentPhotonCount[i])
}

func knnFromCount(configured int, n int, cap int) int {
	if configured != 0 {
		return configured
	}
	k := int(math.Sqrt(float64(n))+0.5) / 2
	if k < 1 {
		k = 1
	}
	if k > cap {
		k = cap
	}
	return k
}
