package extent

// CalculateBackground interpolates the background photon rate at
// segmentTime from the granule's background-rate time series,
// grounded on calculateBackground: linear interpolation between the
// two bracketing samples, falling back to the first sample with no
// interpolation when segmentTime precedes it, and to the last sample
// when segmentTime runs past the end of the series.
func CalculateBackground(bckgrdRate, bckgrdDeltaTime []float64, segmentTime float64) float64 {
	n := len(bckgrdRate)
	if n == 0 {
		return 0
	}
	result := bckgrdRate[n-1]
	for i := 0; i < n; i++ {
		if bckgrdDeltaTime[i] >= segmentTime {
			if i == 0 {
				return bckgrdRate[0]
			}
			t0, t1 := bckgrdDeltaTime[i-1], bckgrdDeltaTime[i]
			r0, r1 := bckgrdRate[i-1], bckgrdRate[i]
			if t1 == t0 {
				return r1
			}
			frac := (segmentTime - t0) / (t1 - t0)
			return r0 + frac*(r1-r0)
		}
	}
	return result
}
