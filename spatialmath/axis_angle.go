package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// AxisAngle represents a rotation as a unit axis and an angle around it. It
// carries the same information as a rotation vector with the angle split out
// from the direction.
type AxisAngle struct {
	Theta float64
	Axis  r3.Vector
}

// AxisAngles returns the rotation in axis-angle form. The identity rotation has
// no distinguished axis; it is reported with a zero angle around z.
func (r Rotation3D) AxisAngles() AxisAngle {
	v := r.RotationVector()
	theta := v.Norm()
	if theta == 0 {
		return AxisAngle{Theta: 0, Axis: r3.Vector{Z: 1}}
	}
	return AxisAngle{Theta: theta, Axis: v.Mul(1 / theta)}
}

// Rotation builds the Rotation3D represented by this axis angle.
func (aa AxisAngle) Rotation() Rotation3D {
	return NewRotation3DFromAngleAxis(aa.Theta, aa.Axis)
}

// RotationVector collapses the axis angle into a single vector whose direction
// is the axis and whose length is the angle.
func (aa AxisAngle) RotationVector() r3.Vector {
	return aa.Axis.Mul(aa.Theta)
}

// Quaternion returns the axis angle as a unit quaternion.
func (aa AxisAngle) Quaternion() quat.Number {
	axis := aa.Axis
	if axis.Norm() != 0 {
		axis = axis.Normalize()
	}
	sinHalf := math.Sin(aa.Theta / 2)
	return quat.Number{
		Real: math.Cos(aa.Theta / 2),
		Imag: axis.X * sinHalf,
		Jmag: axis.Y * sinHalf,
		Kmag: axis.Z * sinHalf,
	}
}
