package extent

import (
	"github.com/slhowardESR/sliderule/h5"
	"github.com/slhowardESR/sliderule/parms"
	"github.com/slhowardESR/sliderule/wire"
)

// AncType discriminates which index space an ancillary field's indices
// are drawn from.
type AncType uint8

const (
	AncPhoton AncType = iota
	AncSegment
	AncAtl08Segment
)

// BuildAncillaryRecord materializes one wire.Ancillary for a configured
// field: indices == parms.InvalidIndice are filled with 0xFF bytes
// (matching the source array's element size) instead of being read,
// grounded on generateAncillaryRecords.
func BuildAncillaryRecord(extentID uint64, fieldIndex uint32, ancType AncType, arr h5.Array, indices []int32) (wire.Ancillary, error) {
	elemSize := arr.ElementSize()
	data := make([]byte, 0, len(indices)*elemSize)
	for _, idx := range indices {
		if idx == parms.InvalidIndice {
			pad := make([]byte, elemSize)
			for i := range pad {
				pad[i] = 0xFF
			}
			data = append(data, pad...)
			continue
		}
		buf := make([]byte, elemSize)
		if _, err := arr.Serialize(buf, int(idx), 1); err != nil {
			return wire.Ancillary{}, err
		}
		data = append(data, buf...)
	}
	return wire.Ancillary{
		ExtentID:    extentID,
		AncType:     uint8(ancType),
		FieldIndex:  fieldIndex,
		DataType:    arr.ElementType(),
		NumElements: uint32(len(indices)),
		Data:        data,
	}, nil
}

// Assemble wraps a primary extent record and its ancillary records into
// a single posted payload: the extent alone when there are no
// ancillary records, or a wire.Container of both when there are.
func Assemble(extentRec wire.Atl03Extent, ancillaryRecs []wire.Ancillary) []byte {
	if len(ancillaryRecs) == 0 {
		return extentRec.Encode()
	}
	records := make([][]byte, 0, 1+len(ancillaryRecs))
	records = append(records, extentRec.Encode())
	for i := range ancillaryRecs {
		records = append(records, ancillaryRecs[i].Encode())
	}
	c := wire.Container{Records: records}
	return c.Encode()
}
