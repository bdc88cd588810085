package h5

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/slhowardESR/sliderule/wire"
)

// MemArray is an in-memory Array, the fixture type used by every test
// in this module. Rows is one of []float64, []float32, []int32, []uint32,
// []int8, []uint8, or []int64; NewMemArray infers ElementType from its
// concrete type.
type MemArray struct {
	typ  wire.Type
	rows any
	done chan struct{}
	err  error
}

// NewMemArray builds a joined-on-demand array over rows[first:first+n]
// (n<0 means to the end), simulating the async read with a goroutine so
// Join still observes ctx cancellation like a real array handle would.
func NewMemArray(rows any, first, n int64) *MemArray {
	a := &MemArray{done: make(chan struct{})}
	go func() {
		defer close(a.done)
		sliced, typ, err := sliceRows(rows, first, n)
		if err != nil {
			a.err = err
			return
		}
		a.rows = sliced
		a.typ = typ
	}()
	return a
}

func sliceRows(rows any, first, n int64) (any, wire.Type, error) {
	switch v := rows.(type) {
	case []float64:
		return sliceGeneric(v, first, n), wire.TypeFloat64, nil
	case []float32:
		return sliceGeneric(v, first, n), wire.TypeFloat32, nil
	case []int32:
		return sliceGeneric(v, first, n), wire.TypeInt32, nil
	case []uint32:
		return sliceGeneric(v, first, n), wire.TypeUint32, nil
	case []int8:
		return sliceGeneric(v, first, n), wire.TypeInt8, nil
	case []uint8:
		return sliceGeneric(v, first, n), wire.TypeUint8, nil
	case []int64:
		return sliceGeneric(v, first, n), wire.TypeInt64, nil
	default:
		return nil, 0, fmt.Errorf("h5: unsupported row type %T", rows)
	}
}

func sliceGeneric[T any](v []T, first, n int64) []T {
	if first < 0 {
		first = 0
	}
	if first > int64(len(v)) {
		first = int64(len(v))
	}
	end := int64(len(v))
	if n >= 0 && first+n < end {
		end = first + n
	}
	return v[first:end]
}

func (a *MemArray) Join(ctx context.Context, timeout time.Duration, throwOnError bool) error {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-a.done:
		if a.err != nil && throwOnError {
			return a.err
		}
		return a.err
	case <-t.C:
		return fmt.Errorf("h5: join timed out after %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *MemArray) Size() (int64, error) {
	if a.rows == nil {
		return 0, ErrNotJoined
	}
	return int64(reflectLen(a.rows)), nil
}

func (a *MemArray) ElementSize() int {
	switch a.typ {
	case wire.TypeInt8, wire.TypeUint8:
		return 1
	case wire.TypeInt16, wire.TypeUint16:
		return 2
	case wire.TypeInt32, wire.TypeUint32, wire.TypeFloat32:
		return 4
	default:
		return 8
	}
}

func (a *MemArray) ElementType() wire.Type { return a.typ }

func (a *MemArray) At(i int) (any, error) {
	if a.rows == nil {
		return nil, ErrNotJoined
	}
	switch v := a.rows.(type) {
	case []float64:
		return v[i], nil
	case []float32:
		return v[i], nil
	case []int32:
		return v[i], nil
	case []uint32:
		return v[i], nil
	case []int8:
		return v[i], nil
	case []uint8:
		return v[i], nil
	case []int64:
		return v[i], nil
	default:
		return nil, fmt.Errorf("h5: unsupported row type %T", a.rows)
	}
}

func (a *MemArray) Serialize(dst []byte, index, count int) (int, error) {
	written := 0
	for k := 0; k < count; k++ {
		val, err := a.At(index + k)
		if err != nil {
			return written, err
		}
		switch v := val.(type) {
		case float64:
			binary.LittleEndian.PutUint64(dst[written:], math.Float64bits(v))
			written += 8
		case float32:
			binary.LittleEndian.PutUint32(dst[written:], math.Float32bits(v))
			written += 4
		case int32:
			binary.LittleEndian.PutUint32(dst[written:], uint32(v))
			written += 4
		case uint32:
			binary.LittleEndian.PutUint32(dst[written:], v)
			written += 4
		case int8:
			dst[written] = byte(v)
			written++
		case uint8:
			dst[written] = v
			written++
		case int64:
			binary.LittleEndian.PutUint64(dst[written:], uint64(v))
			written += 8
		}
	}
	return written, nil
}

func reflectLen(v any) int {
	switch s := v.(type) {
	case []float64:
		return len(s)
	case []float32:
		return len(s)
	case []int32:
		return len(s)
	case []uint32:
		return len(s)
	case []int8:
		return len(s)
	case []uint8:
		return len(s)
	case []int64:
		return len(s)
	default:
		return 0
	}
}

// MemAsset serves MemArray handles from an in-memory dataset table,
// keyed by dataset path. Tests build one per fixture resource.
type MemAsset struct {
	name     string
	datasets map[string]any
}

func NewMemAsset(name string, datasets map[string]any) *MemAsset {
	return &MemAsset{name: name, datasets: datasets}
}

func (m *MemAsset) Name() string { return m.name }

func (m *MemAsset) Open(_ context.Context, _ string, datasetPath string, hctx *Context, firstRow, numRows int64) (Array, error) {
	rows, ok := m.datasets[datasetPath]
	if !ok {
		return nil, fmt.Errorf("h5: dataset not found: %s", datasetPath)
	}
	if hctx == nil {
		return NewMemArray(rows, firstRow, numRows), nil
	}
	v := hctx.GetOrCreate(m.name, datasetPath, firstRow, numRows, func() any {
		return NewMemArray(rows, firstRow, numRows)
	})
	return v.(*MemArray), nil
}

func (m *MemAsset) Close() error { return nil }
