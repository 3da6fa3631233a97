package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/robolab-cz/toolbox/utils"
)

// Quaternion returns the rotation as a unit quaternion.
//
// Extraction pivots on the largest of w, x, y, z so that no branch divides by a
// vanishing quantity; the naive w-based formula breaks down when the trace
// approaches -1 (rotations by pi).
func (r Rotation3D) Quaternion() quat.Number {
	m := r.rot
	trace := r.trace()
	switch {
	case trace > 0:
		s := 2 * math.Sqrt(trace+1)
		return quat.Number{
			Real: s / 4,
			Imag: (m.At(2, 1) - m.At(1, 2)) / s,
			Jmag: (m.At(0, 2) - m.At(2, 0)) / s,
			Kmag: (m.At(1, 0) - m.At(0, 1)) / s,
		}
	case m.At(0, 0) > m.At(1, 1) && m.At(0, 0) > m.At(2, 2):
		s := 2 * math.Sqrt(1 + m.At(0, 0) - m.At(1, 1) - m.At(2, 2))
		return quat.Number{
			Real: (m.At(2, 1) - m.At(1, 2)) / s,
			Imag: s / 4,
			Jmag: (m.At(0, 1) + m.At(1, 0)) / s,
			Kmag: (m.At(0, 2) + m.At(2, 0)) / s,
		}
	case m.At(1, 1) > m.At(2, 2):
		s := 2 * math.Sqrt(1 + m.At(1, 1) - m.At(0, 0) - m.At(2, 2))
		return quat.Number{
			Real: (m.At(0, 2) - m.At(2, 0)) / s,
			Imag: (m.At(0, 1) + m.At(1, 0)) / s,
			Jmag: s / 4,
			Kmag: (m.At(1, 2) + m.At(2, 1)) / s,
		}
	default:
		s := 2 * math.Sqrt(1 + m.At(2, 2) - m.At(0, 0) - m.At(1, 1))
		return quat.Number{
			Real: (m.At(1, 0) - m.At(0, 1)) / s,
			Imag: (m.At(0, 2) + m.At(2, 0)) / s,
			Jmag: (m.At(1, 2) + m.At(2, 1)) / s,
			Kmag: s / 4,
		}
	}
}

// NewRotation3DFromQuaternion builds the rotation represented by the given
// quaternion. The quaternion need not be normalized.
func NewRotation3DFromQuaternion(q quat.Number) Rotation3D {
	norm := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if norm == 0 {
		return NewZeroRotation3D()
	}
	w := utils.Clamp(q.Real/norm, -1, 1)
	axis := r3.Vector{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	if axis.Norm() == 0 {
		return NewZeroRotation3D()
	}
	return NewRotation3DFromAngleAxis(2*math.Acos(w), axis.Normalize())
}

// NewRotation3DFromQuaternionVector builds a rotation from a quaternion given
// as a slice in [x, y, z, w] order.
func NewRotation3DFromQuaternionVector(q []float64) (Rotation3D, error) {
	if len(q) != 4 {
		return Rotation3D{}, newLengthError("quaternion", 4, len(q))
	}
	return NewRotation3DFromQuaternion(quat.Number{Real: q[3], Imag: q[0], Jmag: q[1], Kmag: q[2]}), nil
}

// QuaternionVector returns the rotation as a quaternion slice in [x, y, z, w] order.
func (r Rotation3D) QuaternionVector() []float64 {
	q := r.Quaternion()
	return []float64{q.Imag, q.Jmag, q.Kmag, q.Real}
}

// QuaternionAlmostEqual reports whether two quaternions represent nearly the
// same rotation. q and -q are the same rotation, so both signs are checked.
func QuaternionAlmostEqual(a, b quat.Number, epsilon float64) bool {
	same := utils.Float64AlmostEqual(a.Real, b.Real, epsilon) &&
		utils.Float64AlmostEqual(a.Imag, b.Imag, epsilon) &&
		utils.Float64AlmostEqual(a.Jmag, b.Jmag, epsilon) &&
		utils.Float64AlmostEqual(a.Kmag, b.Kmag, epsilon)
	flipped := utils.Float64AlmostEqual(a.Real, -b.Real, epsilon) &&
		utils.Float64AlmostEqual(a.Imag, -b.Imag, epsilon) &&
		utils.Float64AlmostEqual(a.Jmag, -b.Jmag, epsilon) &&
		utils.Float64AlmostEqual(a.Kmag, -b.Kmag, epsilon)
	return same || flipped
}
