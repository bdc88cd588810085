// Package bundle implements C3: opening a fixed set of named datasets
// concurrently as async h5.Array reads and joining all of them against
// one deadline, grounded on runtime/vcache's errgroup-based concurrent
// block loader.
package bundle

import (
	"context"
	"fmt"
	"time"

	"github.com/slhowardESR/sliderule/except"
	"github.com/slhowardESR/sliderule/h5"
	"golang.org/x/sync/errgroup"
)

// Spec names one dataset to open and the row range to read from it.
type Spec struct {
	Path     string
	FirstRow int64
	NumRows  int64 // h5.AllRows reads to the end
}

// Bundle is the joined result of opening every Spec in one call to New:
// every array in it has already completed Join successfully.
type Bundle struct {
	arrays map[string]h5.Array
}

// New opens every spec concurrently against asset, then joins all of
// them against a shared deadline derived from timeout. A failure or
// timeout on any one array aborts the whole bundle, since a beam cannot
// proceed with a partially read granule (§4.3).
func New(ctx context.Context, asset h5.Asset, resourceName string, hctx *h5.Context, timeout time.Duration, specs []Spec) (*Bundle, error) {
	g, gctx := errgroup.WithContext(ctx)
	arrays := make([]h5.Array, len(specs))
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			arr, err := asset.Open(gctx, resourceName, spec.Path, hctx, spec.FirstRow, spec.NumRows)
			if err != nil {
				return except.ResourceNotFound("bundle: opening %s/%s: %v", resourceName, spec.Path, err)
			}
			if err := arr.Join(gctx, timeout, true); err != nil {
				return except.Timeoutf("bundle: joining %s/%s: %v", resourceName, spec.Path, err)
			}
			arrays[i] = arr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	b := &Bundle{arrays: make(map[string]h5.Array, len(specs))}
	for i, spec := range specs {
		b.arrays[spec.Path] = arrays[i]
	}
	return b, nil
}

// Array returns the joined array opened for path.
func (b *Bundle) Array(path string) (h5.Array, bool) {
	a, ok := b.arrays[path]
	return a, ok
}

// MustArray is Array, panicking if path was never requested by the
// Spec list New was called with; used for datasets a caller knows it
// asked for and which must be a programmer error to miss.
func (b *Bundle) MustArray(path string) h5.Array {
	a, ok := b.arrays[path]
	if !ok {
		panic(fmt.Sprintf("bundle: dataset not opened: %s", path))
	}
	return a
}

// Float64 materializes path's array into a plain []float64.
func (b *Bundle) Float64(path string) ([]float64, error) {
	arr, ok := b.arrays[path]
	if !ok {
		return nil, fmt.Errorf("bundle: dataset not opened: %s", path)
	}
	n, err := arr.Size()
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		v, err := arr.At(i)
		if err != nil {
			return nil, err
		}
		out[i], err = toFloat64(v)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Int32 materializes path's array into a plain []int32.
func (b *Bundle) Int32(path string) ([]int32, error) {
	arr, ok := b.arrays[path]
	if !ok {
		return nil, fmt.Errorf("bundle: dataset not opened: %s", path)
	}
	n, err := arr.Size()
	if err != nil {
		return nil, err
	}
	out := make([]int32, n)
	for i := range out {
		v, err := arr.At(i)
		if err != nil {
			return nil, err
		}
		out[i], err = toInt32(v)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Int8 materializes path's array into a plain []int8.
func (b *Bundle) Int8(path string) ([]int8, error) {
	arr, ok := b.arrays[path]
	if !ok {
		return nil, fmt.Errorf("bundle: dataset not opened: %s", path)
	}
	n, err := arr.Size()
	if err != nil {
		return nil, err
	}
	out := make([]int8, n)
	for i := range out {
		v, err := arr.At(i)
		if err != nil {
			return nil, err
		}
		switch x := v.(type) {
		case int8:
			out[i] = x
		case uint8:
			out[i] = int8(x)
		default:
			return nil, fmt.Errorf("bundle: %s[%d]: unexpected type %T", path, i, v)
		}
	}
	return out, nil
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("bundle: unexpected type %T", v)
	}
}

func toInt32(v any) (int32, error) {
	switch x := v.(type) {
	case int32:
		return x, nil
	case uint32:
		return int32(x), nil
	case int8:
		return int32(x), nil
	case uint8:
		return int32(x), nil
	case float64:
		return int32(x), nil
	case float32:
		return int32(x), nil
	default:
		return 0, fmt.Errorf("bundle: unexpected type %T", v)
	}
}

// geophysCorrPrefixes is the set of ATL03 ancillary field name prefixes
// that live under .../geophys_corr/ rather than .../geolocation/; every
// other geolocation-group ancillary field is looked up directly.
var geophysCorrPrefixes = map[string]bool{
	"tid": true, // tide_ocean
	"geo": true, // geoid
	"dem": true, // dem_h
	"dac": true, // dac
}

// AncillaryPath resolves an ATL03 ancillary field name to its full
// dataset path under a ground-track group, dispatching on the field's
// 3-letter prefix to pick geolocation vs. geophys_corr.
func AncillaryPath(groundTrack, field string) string {
	prefix := field
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	if geophysCorrPrefixes[prefix] {
		return fmt.Sprintf("%s/geolocation/geophys_corr/%s", groundTrack, field)
	}
	return fmt.Sprintf("%s/geolocation/%s", groundTrack, field)
}
