package extent_test

import (
	"testing"

	"github.com/slhowardESR/sliderule/extent"
	"github.com/slhowardESR/sliderule/parms"
	"github.com/stretchr/testify/require"
)

func allTrue5() [parms.NumCnfLevels]bool {
	var t [parms.NumCnfLevels]bool
	for i := range t {
		t[i] = true
	}
	return t
}

func allTrue4() [parms.NumQualityLevels]bool {
	var t [parms.NumQualityLevels]bool
	for i := range t {
		t[i] = true
	}
	return t
}

func TestIncludedRejectsOnConfidence(t *testing.T) {
	tables := extent.AcceptanceTables{QualityPh: allTrue4()}
	tables.Atl03Cnf[parms.CnfSurfaceHigh+parms.SignalConfOffset] = false
	p := extent.Photon{Confidence: parms.CnfSurfaceHigh}
	included, err := extent.Included(p, tables)
	require.NoError(t, err)
	require.False(t, included)
}

func TestIncludedAcceptsWhenAllTablesOpen(t *testing.T) {
	tables := extent.AcceptanceTables{Atl03Cnf: allTrue5(), QualityPh: allTrue4()}
	p := extent.Photon{Confidence: parms.CnfWithin10m, Quality: parms.QualityNominal}
	included, err := extent.Included(p, tables)
	require.NoError(t, err)
	require.True(t, included)
}

func TestIncludedRejectsBelowYapcThreshold(t *testing.T) {
	tables := extent.AcceptanceTables{
		Atl03Cnf: allTrue5(), QualityPh: allTrue4(),
		YapcEnabled: true, YapcMinScore: 100,
	}
	p := extent.Photon{Confidence: parms.CnfWithin10m, YapcScore: 50}
	included, err := extent.Included(p, tables)
	require.NoError(t, err)
	require.False(t, included)
}

func TestIncludedFatalOnOutOfRangeConfidence(t *testing.T) {
	tables := extent.AcceptanceTables{Atl03Cnf: allTrue5(), QualityPh: allTrue4()}
	p := extent.Photon{Confidence: 99}
	_, err := extent.Included(p, tables)
	require.Error(t, err)
}

func TestBuildExtentsSingleWindowNoSubsetting(t *testing.T) {
	tables := extent.AcceptanceTables{Atl03Cnf: allTrue5(), QualityPh: allTrue4()}
	photons := make([]extent.Photon, 10)
	for i := range photons {
		photons[i] = extent.Photon{XATC: float64(i) * 2, Confidence: parms.CnfWithin10m}
	}
	s := extent.Settings{ExtentLength: 20, ExtentStep: 20, MinimumPhotonCount: 1, AlongTrackSpread: 0}
	extents, err := extent.BuildExtents(photons, tables, s)
	require.NoError(t, err)
	require.Len(t, extents, 1)
	require.True(t, extents[0].Valid)
	require.Len(t, extents[0].Photons, 10)
}

func TestBuildExtentsInvalidWhenBelowMinimumCount(t *testing.T) {
	tables := extent.AcceptanceTables{Atl03Cnf: allTrue5(), QualityPh: allTrue4()}
	photons := []extent.Photon{{XATC: 1, Confidence: parms.CnfWithin10m}}
	s := extent.Settings{ExtentLength: 20, ExtentStep: 20, MinimumPhotonCount: 5, AlongTrackSpread: 0}
	extents, err := extent.BuildExtents(photons, tables, s)
	require.NoError(t, err)
	require.Len(t, extents, 1)
	require.False(t, extents[0].Valid)
}

func TestBuildExtentsSegmentModeScalesToMeters(t *testing.T) {
	tables := extent.AcceptanceTables{Atl03Cnf: allTrue5(), QualityPh: allTrue4()}
	photons := make([]extent.Photon, 10)
	for i := range photons {
		photons[i] = extent.Photon{XATC: float64(i) * 2, Confidence: parms.CnfWithin10m}
	}
	s := extent.Settings{ExtentLength: 1, ExtentStep: 1, DistInSeg: true, MinimumPhotonCount: 1, AlongTrackSpread: 0}
	extents, err := extent.BuildExtents(photons, tables, s)
	require.NoError(t, err)
	require.NotEmpty(t, extents)
	require.Len(t, extents[0].Photons, 10)
}

func TestBuildExtentsEmptyWindowWithZeroMinimumDoesNotPanic(t *testing.T) {
	tables := extent.AcceptanceTables{}
	photons := []extent.Photon{{XATC: 100, Confidence: parms.CnfWithin10m}}
	s := extent.Settings{ExtentLength: 20, ExtentStep: 20, MinimumPhotonCount: 0, AlongTrackSpread: 0}
	require.NotPanics(t, func() {
		extents, err := extent.BuildExtents(photons, tables, s)
		require.NoError(t, err)
		require.Len(t, extents, 1)
		require.False(t, extents[0].Valid)
	})
}

func TestBuildExtentsAbortsOnOutOfRangeConfidence(t *testing.T) {
	tables := extent.AcceptanceTables{Atl03Cnf: allTrue5(), QualityPh: allTrue4()}
	photons := []extent.Photon{{XATC: 1, Confidence: 99}}
	s := extent.Settings{ExtentLength: 20, ExtentStep: 20, MinimumPhotonCount: 1, AlongTrackSpread: 0}
	_, err := extent.BuildExtents(photons, tables, s)
	require.Error(t, err)
}

func TestCalculateBackgroundInterpolatesLinearly(t *testing.T) {
	rate := []float64{10, 20, 30}
	dt := []float64{0, 10, 20}
	got := extent.CalculateBackground(rate, dt, 5)
	require.InDelta(t, 15.0, got, 1e-9)
}

func TestCalculateBackgroundBeforeFirstSampleUsesFirstNoInterpolation(t *testing.T) {
	rate := []float64{10, 20, 30}
	dt := []float64{5, 10, 20}
	got := extent.CalculateBackground(rate, dt, 0)
	require.Equal(t, 10.0, got)
}

func TestGenerateIDDeterministicAndDistinctByCounter(t *testing.T) {
	id1 := extent.GenerateID(2950, 1, 2, 1, 0, 0)
	id2 := extent.GenerateID(2950, 1, 2, 1, 0, 1)
	require.NotEqual(t, id1, id2)
	id3 := extent.GenerateID(2950, 1, 2, 1, 0, 0)
	require.Equal(t, id1, id3)
}
