// Package extent implements C6: grouping a beam's accepted photons
// into fixed-length, fixed-step along-track extents, the state machine
// grounded on subsettingThread's stepping/inclusion/validity logic in
// the original reader.
package extent

import (
	"github.com/slhowardESR/sliderule/except"
	"github.com/slhowardESR/sliderule/parms"
)

// Photon is one beam photon already joined against ATL08 and scored by
// yapc, ready for the inclusion predicate and along-track grouping.
type Photon struct {
	SegmentIndex   int
	XATC           float64 // absolute along-track distance, meters
	YATC           float64 // dist_ph_across, uncentered
	Lat            float64
	Lon            float64
	Height         float64
	DeltaTime      float64
	Confidence     int8
	Quality        int8
	Class          int8 // ignored unless AcceptanceTables.Atl08Enabled
	Relief         float64
	LandCover      uint8
	SnowCover      uint8
	YapcScore      uint8
	RegionIncluded bool

	// GlobalIndex is this photon's position in the beam's own
	// heights/* arrays, used to key photon-level ancillary fields.
	GlobalIndex int
	// Atl08AncillaryIndex is this photon's matched row in the ATL08
	// companion arrays (parms.InvalidIndice if unmatched), used to key
	// ATL08-segment ancillary fields.
	Atl08AncillaryIndex int32
}

// AcceptanceTables is every per-photon acceptance check the inclusion
// predicate runs, mirroring the original's do{...}while(false) chain of
// signal-confidence, quality, class, YAPC-score, and region checks.
type AcceptanceTables struct {
	Atl03Cnf   [parms.NumCnfLevels]bool
	QualityPh  [parms.NumQualityLevels]bool
	Atl08Class [parms.NumAtl08Classes]bool

	Atl08Enabled bool
	YapcEnabled  bool
	YapcMinScore uint8
	RegionEnabled bool
}

// Included runs the inclusion predicate for a single photon. Each test
// can short-circuit the remaining ones without aborting the caller's
// scan of the rest of the photon stream. An out-of-range confidence,
// quality, or class value is not a filtering decision — it means the
// granule itself violates the dataset's documented value range, which
// is fatal at beam scope.
func Included(p Photon, t AcceptanceTables) (bool, error) {
	idx := int(p.Confidence) + parms.SignalConfOffset
	if idx < 0 || idx >= parms.NumCnfLevels {
		return false, except.DataInvariantf("extent: signal_conf_ph out of range: %d", p.Confidence)
	}
	if !t.Atl03Cnf[idx] {
		return false, nil
	}
	if int(p.Quality) < 0 || int(p.Quality) >= parms.NumQualityLevels {
		return false, except.DataInvariantf("extent: quality_ph out of range: %d", p.Quality)
	}
	if !t.QualityPh[p.Quality] {
		return false, nil
	}
	if t.Atl08Enabled {
		if int(p.Class) < 0 || int(p.Class) >= parms.NumAtl08Classes {
			return false, except.DataInvariantf("extent: atl08_class out of range: %d", p.Class)
		}
		if !t.Atl08Class[p.Class] {
			return false, nil
		}
	}
	if t.YapcEnabled && p.YapcScore < t.YapcMinScore {
		return false, nil
	}
	if t.RegionEnabled && !p.RegionIncluded {
		return false, nil
	}
	return true, nil
}

// Settings is the stepping/validity configuration for BuildExtents.
type Settings struct {
	ExtentLength       float64
	ExtentStep         float64
	DistInSeg          bool
	MinimumPhotonCount int
	AlongTrackSpread   float64
	PassInvalid        bool
}

// Candidate is one along-track window of accepted photons before
// validity filtering and record assembly.
type Candidate struct {
	StartXATC    float64
	EndXATC      float64
	SegmentIndex int // segment index of the first included photon
	Photons      []Photon
	Valid        bool
}

// BuildExtents slides a window of Settings.ExtentLength across photons
// (already sorted by XATC) in steps of Settings.ExtentStep, keeping
// only photons that pass Included in each window. A window's validity
// requires both a minimum photon count and a minimum along-track
// spread between its first and last accepted photon; an invalid
// extent is still returned (with Valid=false) so the caller can decide
// whether Settings.PassInvalid means posting it anyway. An out-of-range
// value from Included aborts the whole beam.
func BuildExtents(photons []Photon, t AcceptanceTables, s Settings) ([]Candidate, error) {
	if len(photons) == 0 {
		return nil, nil
	}
	length := windowMeters(s.ExtentLength, s.DistInSeg)
	step := windowMeters(s.ExtentStep, s.DistInSeg)
	var extents []Candidate
	last := photons[len(photons)-1].XATC
	for start := photons[0].XATC; start <= last; start += step {
		end := start + length
		c := Candidate{StartXATC: start, EndXATC: end, SegmentIndex: -1}
		for _, p := range photons {
			if p.XATC < start || p.XATC >= end {
				continue
			}
			included, err := Included(p, t)
			if err != nil {
				return nil, err
			}
			if !included {
				continue
			}
			if c.SegmentIndex < 0 {
				c.SegmentIndex = p.SegmentIndex
			}
			c.Photons = append(c.Photons, p)
		}
		c.Valid = isValid(c, s)
		extents = append(extents, c)
	}
	return extents, nil
}

func isValid(c Candidate, s Settings) bool {
	if len(c.Photons) < s.MinimumPhotonCount {
		return false
	}
	if len(c.Photons) == 0 {
		return false
	}
	minX, maxX := c.Photons[0].XATC, c.Photons[0].XATC
	for _, p := range c.Photons {
		if p.XATC < minX {
			minX = p.XATC
		}
		if p.XATC > maxX {
			maxX = p.XATC
		}
	}
	return maxX-minX >= s.AlongTrackSpread
}

// Centered returns p's along-track distance recentered on the middle
// of the extent, mirroring x_atc_out = x_atc - extent_length/2.
// extentLength must already be in meters (see windowMeters).
func Centered(p Photon, c Candidate, extentLength float64) float64 {
	return p.XATC - c.StartXATC - extentLength/2
}

// windowMeters converts a configured extent length/step to meters: in
// along-track-segment-count mode (DistInSeg) the configured value
// counts whole 20m ATL03 segments, so photon-domain windowing (which
// operates on absolute along-track meters) must scale it up.
func windowMeters(v float64, distInSeg bool) float64 {
	if distInSeg {
		return v * parms.Atl03SegmentLength
	}
	return v
}
