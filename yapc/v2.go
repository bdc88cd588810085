package yapc

import (
	"math"

	"github.com/slhowardESR/sliderule/parms"
)

// scoreV2 implements the shared V1/V2 algorithm: a sliding buffer band
// around each segment's center band, scored with a fixed-size k-nearest
// vertical-neighbor list per center photon.
func scoreV2(settings parms.YapcSettings, minPhotonCount int, segmentPhotonCount []int32, distPhAlong, hPh []float64) []uint8 {
	scores := make([]uint8, len(hPh))
	for i := range scores {
		scores[i] = settings.Score
	}

	var prevCount int32
	for seg := range segmentPhotonCount {
		n := int(segmentPhotonCount[seg])
		segStart, segEnd := segmentBounds(segmentPhotonCount, seg)

		// Buffer/center band indices are advanced using the previous
		// segment's photon count, not this segment's own bounds;
		// preserved verbatim from the original reader.
		b0 := segStart - int(prevCount)
		b1 := segEnd + int(prevCount)
		if b0 < 0 {
			b0 = 0
		}
		if b1 > len(hPh) {
			b1 = len(hPh)
		}
		c0, c1 := segStart, segEnd
		prevCount = segmentPhotonCount[seg]

		knn := knnFromCount(settings.KNN, n, MaxKNN)
		if n <= knn || n < minPhotonCount {
			continue
		}

		// hspread/xspread are taken from the first n entries of the
		// whole photon axis, not this segment's own band; preserved
		// verbatim from the original reader.
		hspread := spread(hPh[:n])
		xspread := spread(distPhAlong[:n])
		if hspread <= 0 || hspread > MaximumHspread || xspread <= 0 {
			continue
		}

		hSpan := occupiedSpan(hPh[:n], hspread) / float64(n) * float64(knn)
		halfWinH := settings.WinH / 2
		if settings.WinH == 0 {
			halfWinH = hSpan / 2
		}
		if halfWinH <= 0 {
			continue
		}

		for c := c0; c < c1; c++ {
			kept := make([]float64, 0, knn)
			for b := b0; b < b1; b++ {
				if b == c {
					continue
				}
				d := math.Abs(hPh[c] - hPh[b])
				kept = insertKNN(kept, d, knn)
			}
			sum := 0.0
			for _, d := range kept {
				if w := halfWinH - d; w > 0 {
					sum += w
				}
			}
			score := sum / float64(knn) / halfWinH * 255.0
			if score > 255 {
				score = 255
			}
			scores[c] = uint8(score)
		}
	}
	return scores
}

// insertKNN keeps kept sorted ascending and bounded to cap entries,
// evicting the current maximum whenever a smaller distance arrives and
// the list is already full.
func insertKNN(kept []float64, d float64, cap int) []float64 {
	if len(kept) < cap {
		i := 0
		for i < len(kept) && kept[i] < d {
			i++
		}
		kept = append(kept, 0)
		copy(kept[i+1:], kept[i:len(kept)-1])
		kept[i] = d
		return kept
	}
	if len(kept) == 0 || d >= kept[len(kept)-1] {
		return kept
	}
	i := 0
	for i < len(kept) && kept[i] < d {
		i++
	}
	copy(kept[i+1:], kept[i:len(kept)-1])
	kept[i] = d
	return kept
}

func spread(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	min, max := v[0], v[0]
	for _, x := range v {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return max - min
}

// occupiedSpan counts distinct 1m height bins touched by v and returns
// that count scaled by HspreadBinsize, the quantized vertical span used
// in place of the raw min/max spread.
func occupiedSpan(v []float64, hspread float64) float64 {
	if hspread <= 0 {
		return 0
	}
	numBins := int(hspread/HspreadBinsize) + 1
	if numBins <= 0 {
		return 0
	}
	min := v[0]
	for _, x := range v {
		if x < min {
			min = x
		}
	}
	occupied := make(map[int]bool, numBins)
	for _, x := range v {
		bin := int((x - min) / HspreadBinsize)
		occupied[bin] = true
	}
	return float64(len(occupied)) * HspreadBinsize
}
