package extent

// CalculateSegmentID derives the ATL06-style segment id an extent is
// reported under: the id of the extent's first segment, offset toward
// the extent's midpoint. In along-track-distance mode the offset is
// startSegPortion plus half the extent length counted in whole 20m
// segments (truncated); in along-track-segment-count mode it is half the
// configured extent length. Grounded on calculateSegmentId.
func CalculateSegmentID(segmentID []int32, extentSegmentIndex int, extentLength float64, startSegPortion float64, distInSeg bool) int32 {
	base := float64(segmentID[extentSegmentIndex])
	if distInSeg {
		base += extentLength / 2.0
	} else {
		base += startSegPortion + float64(int((extentLength/20.0)/2.0))
	}
	return int32(base + 0.5)
}
