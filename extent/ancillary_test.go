package extent_test

import (
	"context"
	"time"

	"testing"

	"github.com/slhowardESR/sliderule/extent"
	"github.com/slhowardESR/sliderule/h5"
	"github.com/slhowardESR/sliderule/parms"
	"github.com/slhowardESR/sliderule/wire"
	"github.com/stretchr/testify/require"
)

func joinedMemArray(t *testing.T, rows any) h5.Array {
	t.Helper()
	arr := h5.NewMemArray(rows, 0, h5.AllRows)
	require.NoError(t, arr.Join(context.Background(), time.Second, true))
	return arr
}

func TestBuildAncillaryRecordReadsConfiguredIndices(t *testing.T) {
	arr := joinedMemArray(t, []float64{10, 20, 30, 40})

	rec, err := extent.BuildAncillaryRecord(42, 3, extent.AncSegment, arr, []int32{1, 3})
	require.NoError(t, err)
	require.Equal(t, uint64(42), rec.ExtentID)
	require.Equal(t, uint32(3), rec.FieldIndex)
	require.Equal(t, uint8(extent.AncSegment), rec.AncType)
	require.Equal(t, uint32(2), rec.NumElements)
	require.Len(t, rec.Data, 16)
}

func TestBuildAncillaryRecordPadsInvalidIndices(t *testing.T) {
	arr := joinedMemArray(t, []int8{5, 6, 7})

	rec, err := extent.BuildAncillaryRecord(1, 0, extent.AncPhoton, arr, []int32{0, parms.InvalidIndice, 2})
	require.NoError(t, err)
	require.Equal(t, []byte{5, 0xFF, 7}, rec.Data)
}

func TestAssembleWrapsInContainerOnlyWithAncillaryRecords(t *testing.T) {
	extentRec := wire.Atl03Extent{ExtentID: 7}

	plain := extent.Assemble(extentRec, nil)
	require.Equal(t, extentRec.Encode(), plain)

	arr := joinedMemArray(t, []int32{100, 200})
	anc, err := extent.BuildAncillaryRecord(7, 1, extent.AncSegment, arr, []int32{0, 1})
	require.NoError(t, err)

	wrapped := extent.Assemble(extentRec, []wire.Ancillary{anc})
	require.NotEqual(t, plain, wrapped)
	require.Greater(t, len(wrapped), len(plain))
}
