// Package atl08 implements C4: the three-cursor merge-join of ATL03
// photons against ATL08 land-segment classifications, grounded on
// Atl08Class::classify.
package atl08

import "github.com/slhowardESR/sliderule/parms"

// Point is the per-ATL03-photon result of the join: a land-surface
// classification plus, when PhoREAL fields were requested, the
// companion canopy-relief and cover flags.
type Point struct {
	Class          int8
	Relief         float64
	LandCover      uint8
	SnowCover      uint8
	AncillaryIndex int32
}

// unclassified is the zero-value result for an ATL03 photon with no
// matching ATL08 classification.
var unclassified = Point{
	Class:          parms.Atl08Unclassified,
	Relief:         0.0,
	LandCover:      parms.InvalidFlag,
	SnowCover:      parms.InvalidFlag,
	AncillaryIndex: parms.InvalidIndice,
}

// Input bundles the ATL03 and ATL08 arrays the join cursors walk.
// Atl08Relief/Atl08SegmentIDBeg/LandCover/SnowCover are nil when
// PhoREAL fields were not requested; Above is the zero value when the
// ABoVE reclassifier is disabled.
type Input struct {
	// Atl03SegmentID is the segment id of each ATL03 photon, in the
	// same order as the photon stream being classified.
	Atl03SegmentID []int32

	// Atl08SegmentID/Atl08Index/Atl08Class are parallel arrays over
	// every classified ATL08 photon, ordered by (SegmentID, Index).
	Atl08SegmentID []int32
	Atl08Index     []int32
	Atl08Class     []int8

	// Atl08Relief is signal_photons/ph_h, parallel to Atl08SegmentID.
	Atl08Relief []float64

	// Atl08SegmentIDBeg is land_segments/segment_id_beg, one entry per
	// 100m ATL08 land segment (each spanning
	// parms.NumAtl03SegsInAtl08Seg ATL03 segments). Atl08LandCover and
	// Atl08SnowCover are land_segments/segment_landcover and
	// segment_snowcover, parallel to Atl08SegmentIDBeg.
	Atl08SegmentIDBeg []int32
	Atl08LandCover    []uint8
	Atl08SnowCover    []uint8
}

// Above configures the optional ABoVE classifier hook.
type Above struct {
	Enabled bool
	// SolarElevation/SignalConf are per-ATL03-photon, aligned with
	// Input.Atl03SegmentID.
	SolarElevation []float64
	SignalConf     []int8
	Spot           uint8
}

// Classify walks the three cursors (ATL03 photon, ATL08 photon, ATL08
// land-segment) in lockstep and returns one Point per ATL03 photon.
func Classify(in Input, above Above) []Point {
	out := make([]Point, len(in.Atl03SegmentID))

	var atl08Cursor int
	var atl08SegmentIndex int
	var photonCountInSegment int32
	var prevSegmentID int32 = -1
	haveLandSegments := len(in.Atl08SegmentIDBeg) > 0

	for i, segID := range in.Atl03SegmentID {
		if segID != prevSegmentID {
			photonCountInSegment = 0
			prevSegmentID = segID
			if haveLandSegments {
				for atl08SegmentIndex < len(in.Atl08SegmentIDBeg) &&
					in.Atl08SegmentIDBeg[atl08SegmentIndex]+parms.NumAtl03SegsInAtl08Seg <= segID {
					atl08SegmentIndex++
				}
			}
		}
		photonCountInSegment++
		atl03Count := photonCountInSegment

		for atl08Cursor < len(in.Atl08SegmentID) && in.Atl08SegmentID[atl08Cursor] < segID {
			atl08Cursor++
		}
		for atl08Cursor < len(in.Atl08SegmentID) &&
			in.Atl08SegmentID[atl08Cursor] == segID &&
			in.Atl08Index[atl08Cursor] < atl03Count {
			atl08Cursor++
		}

		if atl08Cursor < len(in.Atl08SegmentID) &&
			in.Atl08SegmentID[atl08Cursor] == segID &&
			in.Atl08Index[atl08Cursor] == atl03Count {
			p := Point{
				Class:          in.Atl08Class[atl08Cursor],
				LandCover:      parms.InvalidFlag,
				SnowCover:      parms.InvalidFlag,
				AncillaryIndex: int32(atl08Cursor),
			}
			if in.Atl08Relief != nil {
				p.Relief = in.Atl08Relief[atl08Cursor]
			}
			if haveLandSegments && atl08SegmentIndex < len(in.Atl08LandCover) {
				p.LandCover = in.Atl08LandCover[atl08SegmentIndex]
			}
			if haveLandSegments && atl08SegmentIndex < len(in.Atl08SnowCover) {
				p.SnowCover = in.Atl08SnowCover[atl08SegmentIndex]
			}
			if above.Enabled && p.Class != parms.Atl08TopOfCanopy {
				reclassifyAbove(&p, above, i)
			}
			out[i] = p
			atl08Cursor++
			continue
		}

		out[i] = unclassified
	}

	return out
}

// reclassifyAbove mirrors the ABoVE-campaign reclassification hook: a
// strong-beam (spot 1, 3 or 5), low-sun, high-confidence photon with a low canopy relief
// is reclassified as top-of-canopy rather than whatever ATL08 called
// it. Callers only invoke this when p.Class isn't already
// Atl08TopOfCanopy.
func reclassifyAbove(p *Point, above Above, photonIndex int) {
	if above.SolarElevation == nil || above.SignalConf == nil {
		return
	}
	solarElevation := above.SolarElevation[photonIndex]
	signalConf := above.SignalConf[photonIndex]
	gate := solarElevation <= 5.0 &&
		(above.Spot == 1 || above.Spot == 3 || above.Spot == 5) &&
		int(signalConf) == parms.CnfSurfaceHigh &&
		p.Relief >= 0 && p.Relief < 35.0
	if !gate {
		return
	}
	// TODO: only reclassify when the ATL08 land segment has valid ground photons.
	p.Class = parms.Atl08TopOfCanopy
}
