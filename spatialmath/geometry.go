package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Segment is a closed planar line segment between two points.
type Segment struct {
	Start r2.Point
	End   r2.Point
}

// Geometry is the predicate obstacle geometry must satisfy for collision
// checking. The kinematics model only ever asks whether a segment touches the
// geometry; it never constructs obstacle shapes itself.
type Geometry interface {
	IntersectsSegment(Segment) bool
}

// SegmentsIntersect reports whether two closed segments share at least one
// point, including endpoint touches and collinear overlap.
func SegmentsIntersect(a, b Segment) bool {
	d1 := orientation(b.Start, b.End, a.Start)
	d2 := orientation(b.Start, b.End, a.End)
	d3 := orientation(a.Start, a.End, b.Start)
	d4 := orientation(a.Start, a.End, b.End)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	switch {
	case d1 == 0 && onSegment(b, a.Start):
		return true
	case d2 == 0 && onSegment(b, a.End):
		return true
	case d3 == 0 && onSegment(a, b.Start):
		return true
	case d4 == 0 && onSegment(a, b.End):
		return true
	}
	return false
}

// orientation is the signed area of the triangle (a, b, c): positive for a
// counterclockwise turn, negative for clockwise, zero for collinear points.
func orientation(a, b, c r2.Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// onSegment assumes p is collinear with seg and reports whether it lies within
// the segment's bounding box.
func onSegment(seg Segment, p r2.Point) bool {
	return p.X >= math.Min(seg.Start.X, seg.End.X) && p.X <= math.Max(seg.Start.X, seg.End.X) &&
		p.Y >= math.Min(seg.Start.Y, seg.End.Y) && p.Y <= math.Max(seg.Start.Y, seg.End.Y)
}

// Polygon is a closed polygon described by its vertices in order. It satisfies
// Geometry; a segment intersects the polygon if it crosses an edge or lies
// entirely inside.
type Polygon struct {
	vertices []r2.Point
}

// NewPolygon creates a polygon from at least three vertices. The boundary is
// closed implicitly between the last and first vertex.
func NewPolygon(vertices []r2.Point) (*Polygon, error) {
	if len(vertices) < 3 {
		return nil, errors.Errorf("polygon needs at least 3 vertices, got %d", len(vertices))
	}
	owned := make([]r2.Point, len(vertices))
	copy(owned, vertices)
	return &Polygon{vertices: owned}, nil
}

// Vertices returns a copy of the polygon's vertices.
func (p *Polygon) Vertices() []r2.Point {
	out := make([]r2.Point, len(p.vertices))
	copy(out, p.vertices)
	return out
}

// IntersectsSegment reports whether the given segment touches the polygon.
func (p *Polygon) IntersectsSegment(seg Segment) bool {
	for i := range p.vertices {
		edge := Segment{Start: p.vertices[i], End: p.vertices[(i+1)%len(p.vertices)]}
		if SegmentsIntersect(edge, seg) {
			return true
		}
	}
	// No boundary crossing: the segment is either fully outside or fully inside.
	return p.ContainsPoint(seg.Start)
}

// ContainsPoint reports whether the point lies inside the polygon or on its
// boundary, by ray casting along +x.
func (p *Polygon) ContainsPoint(pt r2.Point) bool {
	inside := false
	n := len(p.vertices)
	for i := 0; i < n; i++ {
		a, b := p.vertices[i], p.vertices[(i+1)%n]
		if orientation(a, b, pt) == 0 && onSegment(Segment{Start: a, End: b}, pt) {
			return true
		}
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			xCross := a.X + (pt.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if pt.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// GeometrySet bundles multiple geometries into one, analogous to a multi-polygon
// obstacle field.
type GeometrySet []Geometry

// IntersectsSegment reports whether the segment touches any member geometry.
func (s GeometrySet) IntersectsSegment(seg Segment) bool {
	for _, g := range s {
		if g.IntersectsSegment(seg) {
			return true
		}
	}
	return false
}
