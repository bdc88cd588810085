package reader

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pbnjay/memory"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/slhowardESR/sliderule/atl08"
	"github.com/slhowardESR/sliderule/bundle"
	"github.com/slhowardESR/sliderule/except"
	"github.com/slhowardESR/sliderule/extent"
	"github.com/slhowardESR/sliderule/geo"
	"github.com/slhowardESR/sliderule/h5"
	"github.com/slhowardESR/sliderule/msgq"
	"github.com/slhowardESR/sliderule/parms"
	"github.com/slhowardESR/sliderule/resource"
	"github.com/slhowardESR/sliderule/wire"
	"github.com/slhowardESR/sliderule/yapc"
)

// defaultQueueBytes is the fallback output-channel byte budget when the
// host has less memory than expected; sized generously enough for a
// handful of extents in flight.
const defaultQueueBytes = 4 << 20

// estimatedExtentBytes approximates one posted extent record's size for
// sizing the output channel from available memory, per §5's resource
// budget.
const estimatedExtentBytes = 4096

// Reader runs C7 (beam fan-out/merge) over one ATL03 resource: one
// goroutine per matching (track, pair), each independently reading,
// filtering, joining, scoring and windowing its beam, all posting into
// a single shared output queue. Grounded on proc/mux.go's
// puller-goroutines-into-one-channel pattern.
type Reader struct {
	asset          h5.Asset
	resource       string
	cfg            *parms.Config
	out            msgq.Queue
	hctx           *h5.Context
	logger         *zap.Logger
	stats          *Stats
	active         atomic.Bool
	sendTerminator bool
}

// New constructs a Reader. If out is nil, a msgq.Chan is created with a
// depth derived from total host memory (github.com/pbnjay/memory),
// the ambient-stack sizing this module carries in place of a
// hard-coded constant. sendTerminator controls whether Run posts the
// empty-message completion sentinel once every beam worker finishes;
// callers that multiplex several readers onto one queue and want a
// single terminator at the end pass false for all but the last.
func New(asset h5.Asset, resourceName string, cfg *parms.Config, out msgq.Queue, logger *zap.Logger, sendTerminator bool) (*Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		budget := memory.TotalMemory() / 1000 // reserve most of host memory for other consumers
		depth := int(budget / estimatedExtentBytes)
		if budget == 0 || depth < 1 {
			depth = defaultQueueBytes / estimatedExtentBytes
		}
		out = msgq.NewChan(resourceName, depth)
	}
	r := &Reader{
		asset:          asset,
		resource:       resourceName,
		cfg:            cfg,
		out:            out,
		hctx:           h5.NewContext(64),
		logger:         logger,
		stats:          newStats(),
		sendTerminator: sendTerminator,
	}
	r.active.Store(true)
	return r, nil
}

// Stats returns the reader's live counters.
func (r *Reader) Stats() *Stats { return r.stats }

// Abort cooperatively cancels all in-flight beam workers, mirroring the
// original reader's relaxed-read "active" flag.
func (r *Reader) Abort() { r.active.Store(false) }

// beams enumerates the (track, pair) workers to spawn for the
// configured track selection.
func (r *Reader) beams() [][2]int {
	var tracks []int
	if r.cfg.Track == parms.AllTracks {
		tracks = []int{1, 2, 3}
	} else {
		tracks = []int{r.cfg.Track}
	}
	var beams [][2]int
	for _, t := range tracks {
		for p := 0; p < parms.NumPairTracks; p++ {
			beams = append(beams, [2]int{t, p})
		}
	}
	return beams
}

// Run drives every beam worker to completion concurrently (at most six,
// one per (track, pair)), posting an empty message as the completion
// sentinel once the last worker finishes. Beams are independent: one
// beam's failure does not cancel its siblings, and every beam's error
// (if any) is aggregated with go.uber.org/multierr rather than only the
// first one observed.
func (r *Reader) Run(ctx context.Context) error {
	beams := r.beams()
	info, err := resource.Parse(r.resource)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var combined error
	var remaining int32 = int32(len(beams))
	var postOnce sync.Once

	for _, tp := range beams {
		track, pair := tp[0], tp[1]
		wg.Add(1)
		go func() {
			defer wg.Done()
			werr := r.runBeam(ctx, track, pair, info)
			if werr != nil {
				mu.Lock()
				combined = multierr.Append(combined, werr)
				mu.Unlock()
			}
			if atomic.AddInt32(&remaining, -1) == 0 && r.sendTerminator {
				postOnce.Do(func() {
					_, _ = r.out.PostCopy(nil, time.Second)
				})
			}
		}()
	}
	wg.Wait()
	return combined
}

// runBeam implements one (track, pair) worker's full pipeline: open
// datasets, crop to the spatial filter, classify against ATL08, score
// with YAPC, window into extents, and post each valid extent.
func (r *Reader) runBeam(ctx context.Context, track, pair int, info resource.Info) error {
	gt := groundTrack(track, pair)
	timeout := time.Duration(r.cfg.ReadTimeoutSecs) * time.Second

	b, err := bundle.New(ctx, r.asset, r.resource, r.hctx, timeout, beamDatasetSpecs(gt))
	if err != nil {
		r.postException(except.ResourceNotFound("reader: %s: %v", gt, err))
		return err
	}

	scOrientRaw, err0 := b.Int8(scOrientPath)
	segmentID, err1 := b.Int32(gt + "/geolocation/segment_id")
	segmentDistX, err2 := b.Float64(gt + "/geolocation/segment_dist_x")
	segmentPhCnt, err3 := b.Int32(gt + "/geolocation/segment_ph_cnt")
	solarElevF64, err4 := b.Float64(gt + "/geolocation/solar_elevation")
	segDeltaTime, err5 := b.Float64(gt + "/geolocation/delta_time")
	velocitySCFlat, err5v := b.Float64(gt + "/geolocation/velocity_sc")
	bckgrdRate, err6 := b.Float64(gt + "/bckgrd_atlas/bckgrd_rate")
	bckgrdDeltaTime, err7 := b.Float64(gt + "/bckgrd_atlas/delta_time")
	distPhAlong, err8 := b.Float64(gt + "/heights/dist_ph_along")
	distPhAcross, err8a := b.Float64(gt + "/heights/dist_ph_across")
	hPh, err9 := b.Float64(gt + "/heights/h_ph")
	lonPh, err10 := b.Float64(gt + "/heights/lon_ph")
	latPh, err11 := b.Float64(gt + "/heights/lat_ph")
	phDeltaTime, err12 := b.Float64(gt + "/heights/delta_time")
	qualityPh, err13 := b.Int8(gt + "/heights/quality_ph")
	if err := firstNonNil(err0, err1, err2, err3, err4, err5, err5v, err6, err7, err8, err8a, err9, err10, err11, err12, err13); err != nil {
		r.postException(except.DataInvariantf("reader: %s: %v", gt, err))
		return err
	}
	var scOrient parms.ScOrient
	if len(scOrientRaw) > 0 {
		scOrient = parms.ScOrient(scOrientRaw[0])
	}

	signalConf, err := selectConfidenceColumn(b, gt, r.cfg.SurfaceType, len(hPh))
	if err != nil {
		r.postException(except.DataInvariantf("reader: %s: %v", gt, err))
		return err
	}

	segIndex := make([]int, len(hPh))
	xatc := make([]float64, len(hPh))
	idx := 0
	for seg, cnt := range segmentPhCnt {
		for k := int32(0); k < cnt && idx < len(hPh); k++ {
			segIndex[idx] = seg
			xatc[idx] = segmentDistX[seg] + distPhAlong[idx]
			idx++
		}
	}
	r.stats.recordSegmentsRead(int64(len(segmentPhCnt)))

	solarElevation := make([]float32, len(solarElevF64))
	for i, v := range solarElevF64 {
		solarElevation[i] = float32(v)
	}

	velocitySC := make([][3]float32, len(velocitySCFlat)/3)
	for seg := range velocitySC {
		velocitySC[seg] = [3]float32{
			float32(velocitySCFlat[seg*3]),
			float32(velocitySCFlat[seg*3+1]),
			float32(velocitySCFlat[seg*3+2]),
		}
	}

	spot := parms.SpotNumber(scOrient, track, pair)

	var atl08Points []atl08.Point
	if r.cfg.Stages[parms.StageAtl08] {
		solarElevationPerPhoton := make([]float64, len(segIndex))
		for i, seg := range segIndex {
			if seg < len(solarElevF64) {
				solarElevationPerPhoton[i] = solarElevF64[seg]
			}
		}
		above := atl08.Above{
			Enabled:        r.cfg.Stages[parms.StagePhoreal] && r.cfg.Phoreal.AboveClassifier,
			SolarElevation: solarElevationPerPhoton,
			SignalConf:     signalConf,
			Spot:           spot,
		}
		atl08Points = r.joinAtl08(ctx, gt, segIndex, segmentID, above)
	}

	var yapcScores []uint8
	if r.cfg.Stages[parms.StageYapc] {
		yapcScores, err = yapc.Score(r.cfg.Yapc.Version, r.cfg.Yapc, r.cfg.MinimumPhotonCount, segmentPhCnt, segmentDistX, distPhAlong, hPh)
		if err != nil {
			r.postException(except.DataInvariantf("reader: %s: yapc: %v", gt, err))
			return err
		}
	}

	regionIncluded := r.regionMask(lonPh, latPh)

	photons := make([]extent.Photon, len(hPh))
	for i := range photons {
		p := extent.Photon{
			SegmentIndex:        segIndex[i],
			XATC:                xatc[i],
			YATC:                distPhAcross[i],
			Lat:                 latPh[i],
			Lon:                 lonPh[i],
			Height:              hPh[i],
			DeltaTime:           phDeltaTime[i],
			Confidence:          signalConf[i],
			Quality:             qualityPh[i],
			RegionIncluded:      true,
			GlobalIndex:         i,
			Atl08AncillaryIndex: parms.InvalidIndice,
		}
		if atl08Points != nil {
			p.Class = atl08Points[i].Class
			p.Relief = atl08Points[i].Relief
			p.LandCover = atl08Points[i].LandCover
			p.SnowCover = atl08Points[i].SnowCover
			p.Atl08AncillaryIndex = atl08Points[i].AncillaryIndex
		}
		if yapcScores != nil {
			p.YapcScore = yapcScores[i]
		}
		if regionIncluded != nil {
			p.RegionIncluded = regionIncluded[i]
		}
		photons[i] = p
	}

	tables := extent.AcceptanceTables{
		Atl03Cnf:      r.cfg.Atl03Cnf,
		QualityPh:     r.cfg.QualityPh,
		Atl08Class:    r.cfg.Atl08Class,
		Atl08Enabled:  r.cfg.Stages[parms.StageAtl08],
		YapcEnabled:   r.cfg.Stages[parms.StageYapc],
		YapcMinScore:  r.cfg.Yapc.Score,
		RegionEnabled: regionIncluded != nil,
	}
	settings := extent.Settings{
		ExtentLength:       r.cfg.ExtentLength,
		ExtentStep:         r.cfg.ExtentStep,
		DistInSeg:          r.cfg.DistInSeg,
		MinimumPhotonCount: r.cfg.MinimumPhotonCount,
		AlongTrackSpread:   r.cfg.AlongTrackSpread,
		PassInvalid:        r.cfg.PassInvalid,
	}

	candidates, err := extent.BuildExtents(photons, tables, settings)
	if err != nil {
		r.postException(except.DataInvariantf("reader: %s: %v", gt, err))
		return err
	}
	if len(candidates) == 0 {
		r.stats.recordFiltered()
		return nil
	}

	sctx := extent.SegmentContext{
		SegmentID:       segmentID,
		SegmentDistX:    segmentDistX,
		SolarElevation:  solarElevation,
		DeltaTime:       segDeltaTime,
		VelocitySC:      velocitySC,
		BckgrdRate:      bckgrdRate,
		BckgrdDeltaTime: bckgrdDeltaTime,
	}
	beamInfo := extent.BeamInfo{
		Track: uint8(track), Pair: uint8(pair), ScOrient: uint8(scOrient),
		Rgt: uint16(info.RGT), Cycle: uint16(info.Cycle), Region: info.Region,
	}

	atl03AncArrays, err := r.openAtl03Ancillary(ctx, gt)
	if err != nil {
		r.postException(except.DataInvariantf("reader: %s: ancillary: %v", gt, err))
		return err
	}
	var atl08AncArrays map[string]h5.Array
	if r.cfg.Stages[parms.StageAtl08] {
		atl08AncArrays = r.openAtl08Ancillary(ctx, gt)
	}

	var counter uint64
	for _, c := range candidates {
		if !r.active.Load() {
			return context.Canceled
		}
		if !c.Valid {
			r.stats.recordFiltered()
			if !r.cfg.PassInvalid {
				continue
			}
		}
		extentID := extent.GenerateID(int(beamInfo.Rgt), int(beamInfo.Cycle), beamInfo.Region, int(beamInfo.Track), int(beamInfo.Pair), counter)
		ancillaryRecs := r.buildAncillaryRecords(extentID, gt, c, atl03AncArrays, atl08AncArrays)
		rec := extent.BuildAtl03Extent(c, beamInfo, sctx, settings, counter)
		counter++
		payload := extent.Assemble(rec, ancillaryRecs)
		r.postRecord(payload)
	}
	return nil
}

// openAtl03Ancillary opens every configured ATL03 geolocation and
// photon ancillary field for gt, keyed by dataset path. Returns nil,
// nil when no ancillary fields are configured.
func (r *Reader) openAtl03Ancillary(ctx context.Context, gt string) (map[string]h5.Array, error) {
	var specs []bundle.Spec
	for _, f := range r.cfg.Atl03GeoFields {
		specs = append(specs, bundle.Spec{Path: bundle.AncillaryPath(gt, f.Field), NumRows: h5.AllRows})
	}
	for _, f := range r.cfg.Atl03PhotonFields {
		specs = append(specs, bundle.Spec{Path: gt + "/heights/" + f.Field, NumRows: h5.AllRows})
	}
	if len(specs) == 0 {
		return nil, nil
	}
	timeout := time.Duration(r.cfg.ReadTimeoutSecs) * time.Second
	b, err := bundle.New(ctx, r.asset, r.resource, r.hctx, timeout, specs)
	if err != nil {
		return nil, err
	}
	arrays := make(map[string]h5.Array, len(specs))
	for _, s := range specs {
		if arr, ok := b.Array(s.Path); ok {
			arrays[s.Path] = arr
		}
	}
	return arrays, nil
}

// openAtl08Ancillary opens every configured ATL08 ancillary field from
// the beam's companion resource, tolerating a missing companion the
// same way joinAtl08 does.
func (r *Reader) openAtl08Ancillary(ctx context.Context, gt string) map[string]h5.Array {
	if len(r.cfg.Atl08Fields) == 0 {
		return nil
	}
	companion, err := resource.Companion08(r.resource)
	if err != nil {
		return nil
	}
	specs := make([]bundle.Spec, len(r.cfg.Atl08Fields))
	for i, f := range r.cfg.Atl08Fields {
		specs[i] = bundle.Spec{Path: gt + "/signal_photons/" + f.Field, NumRows: h5.AllRows}
	}
	timeout := time.Duration(r.cfg.ReadTimeoutSecs) * time.Second
	b, err := bundle.New(ctx, r.asset, companion, r.hctx, timeout, specs)
	if err != nil {
		r.logger.Debug("atl08 ancillary companion unavailable", zap.String("resource", companion), zap.Error(err))
		return nil
	}
	arrays := make(map[string]h5.Array, len(specs))
	for _, s := range specs {
		if arr, ok := b.Array(s.Path); ok {
			arrays[s.Path] = arr
		}
	}
	return arrays
}

// buildAncillaryRecords materializes one wire.Ancillary per configured
// field that resolved to an opened array: geo fields keyed by the
// extent's first segment, photon fields keyed by each accepted
// photon's position in the beam's own arrays, and ATL08 fields keyed
// by each photon's matched ATL08 row (or parms.InvalidIndice).
func (r *Reader) buildAncillaryRecords(extentID uint64, gt string, c extent.Candidate, atl03Anc, atl08Anc map[string]h5.Array) []wire.Ancillary {
	var recs []wire.Ancillary
	var fieldIndex uint32

	seg := int32(0)
	if c.SegmentIndex >= 0 {
		seg = int32(c.SegmentIndex)
	}
	for _, f := range r.cfg.Atl03GeoFields {
		if arr, ok := atl03Anc[bundle.AncillaryPath(gt, f.Field)]; ok {
			if rec, err := extent.BuildAncillaryRecord(extentID, fieldIndex, extent.AncSegment, arr, []int32{seg}); err == nil {
				recs = append(recs, rec)
			} else {
				r.logger.Warn("ancillary field failed", zap.String("field", f.Field), zap.Error(err))
			}
		}
		fieldIndex++
	}

	if len(r.cfg.Atl03PhotonFields) > 0 {
		photonIndices := make([]int32, len(c.Photons))
		for i, p := range c.Photons {
			photonIndices[i] = int32(p.GlobalIndex)
		}
		for _, f := range r.cfg.Atl03PhotonFields {
			if arr, ok := atl03Anc[gt+"/heights/"+f.Field]; ok {
				if rec, err := extent.BuildAncillaryRecord(extentID, fieldIndex, extent.AncPhoton, arr, photonIndices); err == nil {
					recs = append(recs, rec)
				} else {
					r.logger.Warn("ancillary field failed", zap.String("field", f.Field), zap.Error(err))
				}
			}
			fieldIndex++
		}
	}

	if len(r.cfg.Atl08Fields) > 0 {
		atl08Indices := make([]int32, len(c.Photons))
		for i, p := range c.Photons {
			atl08Indices[i] = p.Atl08AncillaryIndex
		}
		for _, f := range r.cfg.Atl08Fields {
			if arr, ok := atl08Anc[gt+"/signal_photons/"+f.Field]; ok {
				if rec, err := extent.BuildAncillaryRecord(extentID, fieldIndex, extent.AncAtl08Segment, arr, atl08Indices); err == nil {
					recs = append(recs, rec)
				} else {
					r.logger.Warn("ancillary field failed", zap.String("field", f.Field), zap.Error(err))
				}
			}
			fieldIndex++
		}
	}

	return recs
}

// postRecord loops posting a single record, counting a retry each time
// the queue reports a timeout, and counting a drop on any other
// failure, mirroring postRecord's while/retry loop.
func (r *Reader) postRecord(payload []byte) {
	for r.active.Load() {
		_, err := r.out.PostCopy(payload, time.Second)
		if err == nil {
			r.stats.recordSent()
			return
		}
		if err == msgq.ErrStateTimeout {
			r.stats.recordRetried()
			continue
		}
		r.stats.recordDropped()
		r.logger.Warn("post failed", zap.Error(err))
		return
	}
}

func (r *Reader) postException(e *except.Error) {
	r.logger.Warn(e.Text, zap.String("code", e.Code.String()), zap.String("level", e.Level.String()))
	if e.Level == except.Debug {
		return
	}
	exc := wire.Exception{Code: int32(e.Code), Level: int32(e.Level), Text: e.Text}
	_, _ = r.out.PostCopy(exc.Encode(), time.Second)
}

func (r *Reader) regionMask(lon, lat []float64) []bool {
	if r.cfg.SpatialFilter.Kind == parms.FilterNone {
		return nil
	}
	mask := make([]bool, len(lon))
	for i := range lon {
		switch r.cfg.SpatialFilter.Kind {
		case parms.FilterPolygon:
			mask[i] = r.cfg.SpatialFilter.Polygon.Includes(geo.Coord{Lon: lon[i], Lat: lat[i]})
		case parms.FilterRaster:
			mask[i] = r.cfg.SpatialFilter.Raster.Includes(lon[i], lat[i])
		}
	}
	return mask
}

// joinAtl08 opens the beam's ATL08 companion datasets and runs the
// three-cursor classification join, returning nil (rather than erroring
// the whole beam) if the companion granule cannot be read, matching the
// original reader's tolerant treatment of a missing ATL08 companion.
// When PhoREAL is enabled, the land-segment relief/landcover/snowcover
// datasets are joined too and above drives the ABoVE reclassifier.
func (r *Reader) joinAtl08(ctx context.Context, gt string, segIndex []int, segmentID []int32, above atl08.Above) []atl08.Point {
	companion, err := resource.Companion08(r.resource)
	if err != nil {
		return nil
	}
	phoreal := r.cfg.Stages[parms.StagePhoreal]
	timeout := time.Duration(r.cfg.ReadTimeoutSecs) * time.Second
	b, err := bundle.New(ctx, r.asset, companion, r.hctx, timeout, atl08DatasetSpecs(gt, phoreal))
	if err != nil {
		r.logger.Debug("atl08 companion unavailable", zap.String("resource", companion), zap.Error(err))
		return nil
	}
	atl08SegID, e1 := b.Int32(gt + "/signal_photons/ph_segment_id")
	atl08Idx, e2 := b.Int32(gt + "/signal_photons/classed_pc_indx")
	atl08Class, e3 := b.Int8(gt + "/signal_photons/classed_pc_flag")
	if err := firstNonNil(e1, e2, e3); err != nil {
		return nil
	}

	atl03SegmentIDPerPhoton := make([]int32, len(segIndex))
	for i, seg := range segIndex {
		if seg < len(segmentID) {
			atl03SegmentIDPerPhoton[i] = segmentID[seg]
		}
	}

	in := atl08.Input{
		Atl03SegmentID: atl03SegmentIDPerPhoton,
		Atl08SegmentID: atl08SegID,
		Atl08Index:     atl08Idx,
		Atl08Class:     atl08Class,
	}
	if phoreal {
		if relief, err := b.Float64(gt + "/signal_photons/ph_h"); err == nil {
			in.Atl08Relief = relief
		}
		if segBeg, err := b.Int32(gt + "/land_segments/segment_id_beg"); err == nil {
			in.Atl08SegmentIDBeg = segBeg
		}
		if landcover, err := b.Int8(gt + "/land_segments/segment_landcover"); err == nil {
			in.Atl08LandCover = int8ToUint8(landcover)
		}
		if snowcover, err := b.Int8(gt + "/land_segments/segment_snowcover"); err == nil {
			in.Atl08SnowCover = int8ToUint8(snowcover)
		}
	} else {
		above = atl08.Above{}
	}

	return atl08.Classify(in, above)
}

func int8ToUint8(v []int8) []uint8 {
	out := make([]uint8, len(v))
	for i, x := range v {
		out[i] = uint8(x)
	}
	return out
}

func selectConfidenceColumn(b *bundle.Bundle, gt string, surface parms.SurfaceType, numPhotons int) ([]int8, error) {
	flat, err := b.Int8(gt + "/heights/signal_conf_ph")
	if err != nil {
		return nil, err
	}
	out := make([]int8, numPhotons)
	for i := 0; i < numPhotons; i++ {
		col := i*int(parms.NumSurfaceTypes) + int(surface)
		if col < len(flat) {
			out[i] = flat[col]
		}
	}
	return out, nil
}

func firstNonNil(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}
