package spatialmath

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// RigidTransform2D is an element of SE(2), a planar rigid motion composed of a
// rotation followed by a translation. It is an immutable value; every operation
// returns a new RigidTransform2D.
type RigidTransform2D struct {
	translation r2.Point
	rotation    Rotation2D
}

// NewZeroRigidTransform2D returns the identity transform.
func NewZeroRigidTransform2D() RigidTransform2D {
	return RigidTransform2D{rotation: NewZeroRotation2D()}
}

// NewRigidTransform2D creates a transform from a translation and a rotation.
func NewRigidTransform2D(translation r2.Point, rotation Rotation2D) RigidTransform2D {
	return RigidTransform2D{translation: translation, rotation: rotation}
}

// NewRigidTransform2DFromAngle creates a transform from a translation and a rotation angle in radians.
func NewRigidTransform2DFromAngle(translation r2.Point, theta float64) RigidTransform2D {
	return RigidTransform2D{translation: translation, rotation: NewRotation2D(theta)}
}

// NewRigidTransform2DFromTranslation creates a pure translation.
func NewRigidTransform2DFromTranslation(translation r2.Point) RigidTransform2D {
	return RigidTransform2D{translation: translation, rotation: NewZeroRotation2D()}
}

// NewRigidTransform2DFromHomogeneous builds a transform from a 3x3 homogeneous matrix
// whose top-left 2x2 block is the rotation and whose last column is the translation.
func NewRigidTransform2DFromHomogeneous(m mat.Matrix) (RigidTransform2D, error) {
	rows, cols := m.Dims()
	if rows != 3 || cols != 3 {
		return RigidTransform2D{}, newDimensionsError("homogeneous matrix", 3, 3, rows, cols)
	}
	rotation, err := NewRotation2DFromMatrix(mat.NewDense(2, 2, []float64{
		m.At(0, 0), m.At(0, 1),
		m.At(1, 0), m.At(1, 1),
	}))
	if err != nil {
		return RigidTransform2D{}, err
	}
	return RigidTransform2D{
		translation: r2.Point{X: m.At(0, 2), Y: m.At(1, 2)},
		rotation:    rotation,
	}, nil
}

// Translation returns the translation component.
func (t RigidTransform2D) Translation() r2.Point {
	return t.translation
}

// Rotation returns the rotation component.
func (t RigidTransform2D) Rotation() Rotation2D {
	return t.rotation
}

// Compose returns the transform equivalent to applying other first and t second.
func (t RigidTransform2D) Compose(other RigidTransform2D) RigidTransform2D {
	return RigidTransform2D{
		translation: t.translation.Add(t.rotation.Act(other.translation)),
		rotation:    t.rotation.Compose(other.rotation),
	}
}

// Inverse returns the inverse transform, derived from the group structure:
// (R, p)^-1 = (R^T, -R^T p). No generic matrix inversion is involved.
func (t RigidTransform2D) Inverse() RigidTransform2D {
	invRotation := t.rotation.Inverse()
	return RigidTransform2D{
		translation: invRotation.Act(t.translation).Mul(-1),
		rotation:    invRotation,
	}
}

// Act transforms the given point.
func (t RigidTransform2D) Act(v r2.Point) r2.Point {
	return t.rotation.Act(v).Add(t.translation)
}

// Homogeneous returns the 3x3 homogeneous matrix form of the transform.
func (t RigidTransform2D) Homogeneous() *mat.Dense {
	rot := t.rotation.rot
	return mat.NewDense(3, 3, []float64{
		rot.At(0, 0), rot.At(0, 1), t.translation.X,
		rot.At(1, 0), rot.At(1, 1), t.translation.Y,
		0, 0, 1,
	})
}

// AlmostEqual reports whether translation and rotation both match within tolerance.
func (t RigidTransform2D) AlmostEqual(other RigidTransform2D) bool {
	return R2PointAlmostEqual(t.translation, other.translation, defaultEqualityEpsilon) &&
		t.rotation.AlmostEqual(other.rotation)
}
