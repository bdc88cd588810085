package extent

import (
	"math"

	"github.com/slhowardESR/sliderule/wire"
)

// BeamInfo is the per-beam scalar context every extent record in this
// beam shares.
type BeamInfo struct {
	Track    uint8
	Pair     uint8
	ScOrient uint8
	Rgt      uint16
	Cycle    uint16
	Region   int
}

// SegmentContext supplies the per-segment arrays record assembly reads
// from, indexed by Candidate.SegmentIndex.
type SegmentContext struct {
	SegmentID          []int32
	SegmentDistX       []float64
	SolarElevation     []float32
	DeltaTime          []float64
	VelocitySC         [][3]float32
	BckgrdRate         []float64
	BckgrdDeltaTime    []float64
	StartSegPortion    []float64 // fractional offset into the first segment, per candidate use
}

// BuildAtl03Extent assembles the primary extent record for c, given the
// beam-wide context and a monotonically increasing per-beam counter
// used to derive ExtentID.
func BuildAtl03Extent(c Candidate, info BeamInfo, sctx SegmentContext, s Settings, counter uint64) wire.Atl03Extent {
	seg := c.SegmentIndex
	if seg < 0 {
		seg = 0
	}
	segmentID := CalculateSegmentID(sctx.SegmentID, seg, s.ExtentLength, safeAt(sctx.StartSegPortion, seg), s.DistInSeg)
	background := CalculateBackground(sctx.BckgrdRate, sctx.BckgrdDeltaTime, safeAt(sctx.DeltaTime, seg))
	vel := [3]float32{}
	if seg < len(sctx.VelocitySC) {
		vel = sctx.VelocitySC[seg]
	}
	speed := float32(math.Sqrt(float64(vel[0])*float64(vel[0]) + float64(vel[1])*float64(vel[1]) + float64(vel[2])*float64(vel[2])))

	extentLengthMeters := windowMeters(s.ExtentLength, s.DistInSeg)
	photons := make([]wire.Photon, len(c.Photons))
	for i, p := range c.Photons {
		photons[i] = wire.Photon{
			TimeNs:     int64(p.DeltaTime * 1e9),
			Latitude:   p.Lat,
			Longitude:  p.Lon,
			XAtc:       float32(Centered(p, c, extentLengthMeters)),
			YAtc:       float32(p.YATC),
			Height:     float32(p.Height),
			Relief:     float32(p.Relief),
			Landcover:  p.LandCover,
			Snowcover:  p.SnowCover,
			Atl03Cnf:   p.Confidence,
			QualityPh:  p.Quality,
			Atl08Class: uint8(p.Class),
			YapcScore:  p.YapcScore,
		}
	}

	return wire.Atl03Extent{
		Track:              info.Track,
		Pair:               info.Pair,
		ScOrient:           info.ScOrient,
		Valid:              c.Valid,
		Rgt:                info.Rgt,
		Cycle:              info.Cycle,
		SegmentID:          uint32(segmentID),
		SegmentDist:        safeAt(sctx.SegmentDistX, seg),
		BackgroundRate:     background,
		SolarElevation:     safeAtF32(sctx.SolarElevation, seg),
		ExtentLength:       s.ExtentLength,
		SpacecraftVelocity: speed,
		ExtentID:           GenerateID(int(info.Rgt), int(info.Cycle), info.Region, int(info.Track), int(info.Pair), counter),
		Photons:            photons,
	}
}

func safeAt(v []float64, i int) float64 {
	if i < 0 || i >= len(v) {
		return 0
	}
	return v[i]
}

func safeAtF32(v []float32, i int) float32 {
	if i < 0 || i >= len(v) {
		return 0
	}
	return v[i]
}
