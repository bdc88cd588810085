// Package wire implements the fixed-layout binary encoding of the
// records this system emits: the primary "atl03rec" extent record (with
// its embedded variable-length photon array), the photon sub-record,
// ancillary element records, the container record that groups more than
// one record per extent, and the exception record. Encoding uses native
// byte order, which on the supported deployment targets (x86_64, arm64)
// is little-endian.
package wire

import (
	"bytes"
	"encoding/binary"
	"math"
)

var order = binary.LittleEndian

// Type enumerates the wire element type of an ancillary field, mirroring
// the subset of RecordObject field types ancillary data actually uses.
type Type uint8

const (
	TypeInt8 Type = iota
	TypeUint8
	TypeInt16
	TypeUint16
	TypeInt32
	TypeUint32
	TypeInt64
	TypeUint64
	TypeFloat32
	TypeFloat64
)

// Photon is the "atl03rec.photons" sub-record.
type Photon struct {
	TimeNs     int64
	Latitude   float64
	Longitude  float64
	XAtc       float32
	YAtc       float32
	Height     float32
	Relief     float32
	Landcover  uint8
	Snowcover  uint8
	Atl08Class uint8
	Atl03Cnf   int8
	QualityPh  int8
	YapcScore  uint8
}

const photonSize = 8 + 8 + 8 + 4 + 4 + 4 + 4 + 1 + 1 + 1 + 1 + 1 + 1

func (p *Photon) Encode(buf *bytes.Buffer) {
	binary.Write(buf, order, p.TimeNs)
	binary.Write(buf, order, p.Latitude)
	binary.Write(buf, order, p.Longitude)
	binary.Write(buf, order, p.XAtc)
	binary.Write(buf, order, p.YAtc)
	binary.Write(buf, order, p.Height)
	binary.Write(buf, order, p.Relief)
	buf.WriteByte(p.Landcover)
	buf.WriteByte(p.Snowcover)
	buf.WriteByte(p.Atl08Class)
	buf.WriteByte(byte(p.Atl03Cnf))
	buf.WriteByte(byte(p.QualityPh))
	buf.WriteByte(p.YapcScore)
}

func DecodePhoton(b []byte) Photon {
	var p Photon
	p.TimeNs = int64(order.Uint64(b[0:8]))
	p.Latitude = float64frombits(order.Uint64(b[8:16]))
	p.Longitude = float64frombits(order.Uint64(b[16:24]))
	p.XAtc = float32frombits(order.Uint32(b[24:28]))
	p.YAtc = float32frombits(order.Uint32(b[28:32]))
	p.Height = float32frombits(order.Uint32(b[32:36]))
	p.Relief = float32frombits(order.Uint32(b[36:40]))
	p.Landcover = b[40]
	p.Snowcover = b[41]
	p.Atl08Class = b[42]
	p.Atl03Cnf = int8(b[43])
	p.QualityPh = int8(b[44])
	p.YapcScore = b[45]
	return p
}

// Atl03Extent is the primary "atl03rec" record.
//
// ExtentLength, PhotonCount and SpacecraftVelocity are not part of
// spec.md's wire table but are carried by the original reader
// (Atl03Reader::generateExtentRecord) and preserved here; see
// SPEC_FULL.md §3/§9.
type Atl03Extent struct {
	Track               uint8
	Pair                uint8
	ScOrient            uint8
	Valid               bool
	Rgt                 uint16
	Cycle               uint16
	SegmentID           uint32
	SegmentDist         float64
	BackgroundRate      float64
	SolarElevation      float32
	ExtentLength        float64
	SpacecraftVelocity  float32
	ExtentID            uint64
	Photons             []Photon
}

func (e *Atl03Extent) RecordType() string { return "atl03rec" }

func (e *Atl03Extent) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteByte(e.Track)
	buf.WriteByte(e.Pair)
	buf.WriteByte(e.ScOrient)
	validByte := byte(0)
	if e.Valid {
		validByte = 1
	}
	buf.WriteByte(validByte)
	binary.Write(&buf, order, e.Rgt)
	binary.Write(&buf, order, e.Cycle)
	binary.Write(&buf, order, e.SegmentID)
	binary.Write(&buf, order, e.SegmentDist)
	binary.Write(&buf, order, e.BackgroundRate)
	binary.Write(&buf, order, e.SolarElevation)
	binary.Write(&buf, order, e.ExtentLength)
	binary.Write(&buf, order, e.SpacecraftVelocity)
	binary.Write(&buf, order, e.ExtentID)
	binary.Write(&buf, order, uint32(len(e.Photons)))
	for i := range e.Photons {
		e.Photons[i].Encode(&buf)
	}
	return buf.Bytes()
}

func DecodeAtl03Extent(b []byte) Atl03Extent {
	var e Atl03Extent
	e.Track = b[0]
	e.Pair = b[1]
	e.ScOrient = b[2]
	e.Valid = b[3] != 0
	off := 4
	e.Rgt = order.Uint16(b[off:])
	off += 2
	e.Cycle = order.Uint16(b[off:])
	off += 2
	e.SegmentID = order.Uint32(b[off:])
	off += 4
	e.SegmentDist = float64frombits(order.Uint64(b[off:]))
	off += 8
	e.BackgroundRate = float64frombits(order.Uint64(b[off:]))
	off += 8
	e.SolarElevation = float32frombits(order.Uint32(b[off:]))
	off += 4
	e.ExtentLength = float64frombits(order.Uint64(b[off:]))
	off += 8
	e.SpacecraftVelocity = float32frombits(order.Uint32(b[off:]))
	off += 4
	e.ExtentID = order.Uint64(b[off:])
	off += 8
	n := order.Uint32(b[off:])
	off += 4
	e.Photons = make([]Photon, n)
	for i := range e.Photons {
		e.Photons[i] = DecodePhoton(b[off : off+photonSize])
		off += photonSize
	}
	return e
}

// Ancillary carries one configured ancillary field's values for the
// photons, segments, or ATL08 segments associated with a single extent.
// Indices flagged invalid are filled with 0xFF bytes rather than being
// omitted, so NumElements always matches the requesting index list.
type Ancillary struct {
	ExtentID    uint64
	AncType     uint8
	FieldIndex  uint32
	DataType    Type
	NumElements uint32
	Data        []byte
}

func (a *Ancillary) RecordType() string { return "ancillaryrec" }

func (a *Ancillary) Encode() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, order, a.ExtentID)
	buf.WriteByte(a.AncType)
	binary.Write(&buf, order, a.FieldIndex)
	buf.WriteByte(uint8(a.DataType))
	binary.Write(&buf, order, a.NumElements)
	buf.Write(a.Data)
	return buf.Bytes()
}

// Container groups N records associated with a single extent.
type Container struct {
	Records [][]byte
}

func (c *Container) RecordType() string { return "container" }

func (c *Container) Encode() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, order, uint32(len(c.Records)))
	for _, r := range c.Records {
		binary.Write(&buf, order, uint32(len(r)))
		buf.Write(r)
	}
	return buf.Bytes()
}

// Exception is the "exceptrec" record.
type Exception struct {
	Code  int32
	Level int32
	Text  string
}

func (e *Exception) RecordType() string { return "exceptrec" }

const exceptionTextSize = 256

func (e *Exception) Encode() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, order, e.Code)
	binary.Write(&buf, order, e.Level)
	text := make([]byte, exceptionTextSize)
	copy(text, e.Text)
	buf.Write(text)
	return buf.Bytes()
}

func float64frombits(u uint64) float64 { return math.Float64frombits(u) }
func float32frombits(u uint32) float32 { return math.Float32frombits(u) }
