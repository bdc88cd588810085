// Package geo implements the geometric primitives region.Crop consumes:
// point-in-polygon inclusion testing and raster bitmap inclusion
// testing. The true coordinate-projection and raster-decoding machinery
// is the out-of-scope "geometric primitives library" of spec.md §1; the
// implementations here are the minimal, self-contained versions needed
// to exercise region.Crop's algorithms and tests.
package geo

// Point is a coordinate in the caller-supplied projected plane.
type Point struct {
	X, Y float64
}

// Coord is a geographic (longitude, latitude) pair.
type Coord struct {
	Lon, Lat float64
}

// Projection converts a geographic coordinate into the projected plane
// the polygon was defined in. The zero value is the identity
// projection (lon/lat treated as a planar x/y), sufficient for small
// regions and for this module's tests; production deployments supply a
// real map projection (e.g. polar stereographic for polar orbits).
type Projection func(Coord) Point

// Identity is the zero-value Projection.
func Identity(c Coord) Point { return Point{X: c.Lon, Y: c.Lat} }

// Polygon is a closed, simple polygon in the projected plane tested via
// standard ray-casting inclusion, mirroring MathLib::inpoly.
type Polygon struct {
	Points     []Point
	Projection Projection
}

// NewPolygon builds a Polygon using the identity projection.
func NewPolygon(points []Point) *Polygon {
	return &Polygon{Points: points, Projection: Identity}
}

// Includes reports whether the geographic coordinate c, once projected,
// lies inside the polygon.
func (p *Polygon) Includes(c Coord) bool {
	proj := p.Projection
	if proj == nil {
		proj = Identity
	}
	pt := proj(c)
	return inpoly(p.Points, pt)
}

// inpoly implements the standard even-odd ray-casting test.
func inpoly(poly []Point, pt Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		pi, pj := poly[i], poly[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) {
			slopeX := pi.X + (pt.Y-pi.Y)/(pj.Y-pi.Y)*(pj.X-pi.X)
			if pt.X < slopeX {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Raster is a bitmap inclusion mask over a regular lon/lat grid,
// mirroring the raster-mask collaborator consumed by Region::rasterregion.
type Raster struct {
	MinLon, MinLat   float64
	CellSize         float64
	Cols, Rows       int
	Mask             []bool // row-major, length Cols*Rows
}

// NewRaster builds a Raster over the given grid and mask.
func NewRaster(minLon, minLat, cellSize float64, cols, rows int, mask []bool) *Raster {
	return &Raster{MinLon: minLon, MinLat: minLat, CellSize: cellSize, Cols: cols, Rows: rows, Mask: mask}
}

// Includes reports whether (lon, lat) falls in an included cell; points
// outside the grid are excluded.
func (r *Raster) Includes(lon, lat float64) bool {
	col := int((lon - r.MinLon) / r.CellSize)
	row := int((lat - r.MinLat) / r.CellSize)
	if col < 0 || row < 0 || col >= r.Cols || row >= r.Rows {
		return false
	}
	idx := row*r.Cols + col
	if idx < 0 || idx >= len(r.Mask) {
		return false
	}
	return r.Mask[idx]
}
