// Package spatialmath implements the rigid-body transformation groups used by the
// planar kinematics model: 2D rotations (SO(2)), planar rigid transforms (SE(2)) and
// 3D rotations (SO(3)), along with the obstacle geometry the collision checker consumes.
package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// defaultEqualityEpsilon is the elementwise tolerance used by the AlmostEqual methods.
const defaultEqualityEpsilon = 1e-6

// Rotation2D is an element of SO(2), stored internally as a 2x2 rotation matrix.
// It is an immutable value; every operation returns a new Rotation2D.
type Rotation2D struct {
	rot mgl64.Mat2
}

// NewZeroRotation2D returns the identity rotation.
func NewZeroRotation2D() Rotation2D {
	return Rotation2D{mgl64.Ident2()}
}

// NewRotation2D returns the counterclockwise rotation by theta radians.
func NewRotation2D(theta float64) Rotation2D {
	return Rotation2D{mgl64.Rotate2D(theta)}
}

// NewRotation2DFromMatrix builds a rotation from a 2x2 matrix. The matrix is expected
// to be orthonormal with determinant 1; only its dimensions are validated here, since
// composition and inversion preserve orthonormality from then on.
func NewRotation2DFromMatrix(m mat.Matrix) (Rotation2D, error) {
	rows, cols := m.Dims()
	if rows != 2 || cols != 2 {
		return Rotation2D{}, newDimensionsError("rotation matrix", 2, 2, rows, cols)
	}
	var rot mgl64.Mat2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			rot.Set(i, j, m.At(i, j))
		}
	}
	return Rotation2D{rot}, nil
}

// Compose returns the rotation equivalent to applying other first and r second.
func (r Rotation2D) Compose(other Rotation2D) Rotation2D {
	return Rotation2D{r.rot.Mul2(other.rot)}
}

// Inverse returns the inverse rotation. The transpose suffices since the matrix is orthonormal.
func (r Rotation2D) Inverse() Rotation2D {
	return Rotation2D{r.rot.Transpose()}
}

// Angle recovers the rotation angle in (-pi, pi]. The two-argument arctangent of the
// sine and cosine entries is stable across the full range, including near 0 and pi.
func (r Rotation2D) Angle() float64 {
	return math.Atan2(r.rot.At(1, 0), r.rot.At(0, 0))
}

// Act rotates the given vector.
func (r Rotation2D) Act(v r2.Point) r2.Point {
	rotated := r.rot.Mul2x1(mgl64.Vec2{v.X, v.Y})
	return r2.Point{X: rotated.X(), Y: rotated.Y()}
}

// Matrix returns a copy of the rotation matrix.
func (r Rotation2D) Matrix() *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		r.rot.At(0, 0), r.rot.At(0, 1),
		r.rot.At(1, 0), r.rot.At(1, 1),
	})
}

// AlmostEqual reports whether the two rotations match elementwise within tolerance.
func (r Rotation2D) AlmostEqual(other Rotation2D) bool {
	return r.rot.ApproxEqualThreshold(other.rot, defaultEqualityEpsilon)
}

// R2PointAlmostEqual compares two planar points elementwise.
func R2PointAlmostEqual(a, b r2.Point, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon
}
