// Package h5 defines the async array-handle contract this system
// consumes from the underlying block-oriented columnar reader (out of
// scope per spec.md §1) along with a dedup-caching read Context and two
// concrete Asset implementations: an in-memory one used throughout this
// module's tests, and an AWS S3 range-GET backed one for production
// deployments where ATL03/ATL08 granules live in object storage.
package h5

import (
	"context"
	"fmt"
	"time"

	"github.com/slhowardESR/sliderule/wire"
)

// Array is the async array handle consumed by bundle.Bundle: construct,
// Join (block until the read completes or the deadline expires), then
// read already-materialized elements.
type Array interface {
	// Join blocks until the underlying read completes or timeout
	// elapses. If throwOnError is false, a timeout is reported via the
	// returned error but the array may still be partially usable; the
	// bundle always calls with throwOnError=true since any failed read
	// is fatal for the beam (§4.3).
	Join(ctx context.Context, timeout time.Duration, throwOnError bool) error
	// Size returns the element count; valid only after Join succeeds.
	Size() (int64, error)
	ElementSize() int
	ElementType() wire.Type
	// At returns the boxed element value at i (float64, float32, int32,
	// uint32, int8, uint8, or int64 depending on ElementType).
	At(i int) (any, error)
	// Serialize writes count elements starting at index as raw bytes in
	// native byte order into dst, returning the number of bytes
	// written. Used when materializing ancillary records.
	Serialize(dst []byte, index, count int) (int, error)
}

// Asset is the acquired-at-construction, released-at-destruction handle
// to the storage location a resource's arrays are read from.
type Asset interface {
	Name() string
	// Open issues an async read for dataset rooted at datasetPath
	// (e.g. "/gt1l/geolocation/segment_id") within [firstRow,
	// firstRow+numRows); numRows < 0 means "all remaining rows".
	Open(ctx context.Context, resource, datasetPath string, hctx *Context, firstRow, numRows int64) (Array, error)
	Close() error
}

// ErrNotJoined is returned by Size/At/Serialize before Join completes.
var ErrNotJoined = fmt.Errorf("h5: array not joined")

// AllRows mirrors H5Coro::ALL_ROWS: read every row from firstRow on.
const AllRows int64 = -1
