package yapc

import (
	"math"
	"sort"

	"github.com/slhowardESR/sliderule/parms"
)

// scoreV3 implements the sorted-neighbor-list variant: every photon's
// proximity list is built from a symmetric along-track window, sorted,
// and an adaptive k = sqrt(len(proximities)) (floored at MinKNN) decides
// how many of the closest neighbors contribute to the density weight.
func scoreV3(settings parms.YapcSettings, segmentPhotonCount []int32, segmentDistX, distPhAlong, hPh []float64) []uint8 {
	n := len(hPh)
	scores := make([]uint8, n)
	for i := range scores {
		scores[i] = settings.Score
	}
	if n == 0 {
		return scores
	}

	halfWinX := settings.WinX / 2
	halfWinZ := settings.WinH / 2
	if halfWinX <= 0 || halfWinZ <= 0 {
		return scores
	}

	phDist := make([]float64, n)
	for seg := range segmentPhotonCount {
		start, end := segmentBounds(segmentPhotonCount, seg)
		for i := start; i < end; i++ {
			phDist[i] = segmentDistX[seg] + distPhAlong[i]
		}
	}

	weightSums := make([]float64, n)
	knnPerPhoton := make([]int, n)

	for i := 0; i < n; i++ {
		var proximities []float64

		for j := i - 1; j >= 0; j-- {
			xDist := phDist[i] - phDist[j]
			if xDist >= halfWinX+1.0 {
				break
			}
			if xDist > halfWinX {
				continue
			}
			if dz := math.Abs(hPh[i] - hPh[j]); dz <= halfWinZ {
				proximities = append(proximities, dz)
			}
		}
		for j := i + 1; j < n; j++ {
			xDist := phDist[j] - phDist[i]
			if xDist >= halfWinX+1.0 {
				break
			}
			if xDist > halfWinX {
				continue
			}
			if dz := math.Abs(hPh[i] - hPh[j]); dz <= halfWinZ {
				proximities = append(proximities, dz)
			}
		}

		sort.Float64s(proximities)

		knn := int(math.Sqrt(float64(len(proximities))))
		if knn < settings.MinKNN {
			knn = settings.MinKNN
		}
		knnPerPhoton[i] = knn

		limit := knn
		if limit > len(proximities) {
			limit = len(proximities)
		}
		sum := 0.0
		for _, p := range proximities[:limit] {
			sum += halfWinZ - p
		}
		weightSums[i] = sum
	}

	// max_knn resets at the start of each segment and normalizes only
	// that segment's photons, matching the original's per-segment
	// second pass.
	for seg := range segmentPhotonCount {
		start, end := segmentBounds(segmentPhotonCount, seg)
		maxKNN := settings.MinKNN
		for i := start; i < end; i++ {
			if knnPerPhoton[i] > maxKNN {
				maxKNN = knnPerPhoton[i]
			}
		}
		if maxKNN == 0 {
			continue
		}
		denom := halfWinZ * float64(maxKNN)
		for i := start; i < end; i++ {
			score := weightSums[i] / denom * 255.0
			if score > 255 {
				score = 255
			}
			if score < 0 {
				score = 0
			}
			scores[i] = uint8(math.Round(score))
		}
	}
	return scores
}
