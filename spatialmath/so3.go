package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/robolab-cz/toolbox/utils"
)

// piSingularityEpsilon bounds how close the trace may get to -1 before the
// logarithm switches to the angle-pi branch. Below this the general formula
// divides by a vanishing sine.
const piSingularityEpsilon = 1e-10

// Rotation3D is an element of SO(3), stored internally as a 3x3 rotation matrix.
// It is an immutable value; every operation returns a new Rotation3D. The
// rotation vector, quaternion and axis-angle forms are conversion views, not
// stored state.
type Rotation3D struct {
	rot mgl64.Mat3
}

// NewZeroRotation3D returns the identity rotation.
func NewZeroRotation3D() Rotation3D {
	return Rotation3D{mgl64.Ident3()}
}

// NewRotation3DFromMatrix builds a rotation from a 3x3 matrix. The matrix is
// expected to be orthonormal with determinant 1; only its dimensions are
// validated here.
func NewRotation3DFromMatrix(m mat.Matrix) (Rotation3D, error) {
	rows, cols := m.Dims()
	if rows != 3 || cols != 3 {
		return Rotation3D{}, newDimensionsError("rotation matrix", 3, 3, rows, cols)
	}
	var rot mgl64.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rot.Set(i, j, m.At(i, j))
		}
	}
	return Rotation3D{rot}, nil
}

// RX returns the rotation by theta radians around the x axis.
func RX(theta float64) Rotation3D {
	return Rotation3D{mgl64.Rotate3DX(theta)}
}

// RY returns the rotation by theta radians around the y axis.
func RY(theta float64) Rotation3D {
	return Rotation3D{mgl64.Rotate3DY(theta)}
}

// RZ returns the rotation by theta radians around the z axis.
func RZ(theta float64) Rotation3D {
	return Rotation3D{mgl64.Rotate3DZ(theta)}
}

// NewRotation3DFromRotationVector is the exponential map: it builds the rotation
// whose axis is the direction of v and whose angle is the norm of v. The zero
// vector maps to the identity.
func NewRotation3DFromRotationVector(v r3.Vector) Rotation3D {
	angle := v.Norm()
	if angle == 0 {
		return NewZeroRotation3D()
	}
	return NewRotation3DFromAngleAxis(angle, v.Mul(1/angle))
}

// NewRotation3DFromAngleAxis builds a rotation of angle radians around the given
// axis via the Rodrigues formula I + sin(t)K + (1-cos(t))K^2. The axis is
// normalized first; a zero axis yields the identity.
func NewRotation3DFromAngleAxis(angle float64, axis r3.Vector) Rotation3D {
	if axis.Norm() == 0 {
		return NewZeroRotation3D()
	}
	k := skewSymmetric(axis.Normalize())
	rot := mgl64.Ident3().
		Add(k.Mul(math.Sin(angle))).
		Add(k.Mul3(k).Mul(1 - math.Cos(angle)))
	return Rotation3D{rot}
}

// RotationVector is the logarithm map, the inverse of
// NewRotation3DFromRotationVector. Three regimes are handled in order: the
// identity, the angle-pi singularity where the skew-symmetric part vanishes,
// and the general case. They are kept as separate guard clauses since their
// numerical stability genuinely differs.
func (r Rotation3D) RotationVector() r3.Vector {
	if r.AlmostEqual(NewZeroRotation3D()) {
		return r3.Vector{}
	}

	trace := r.trace()
	if trace <= -1+piSingularityEpsilon {
		// Angle is pi; the axis is recovered from the largest safe diagonal
		// entry, since (R+I)/2 = aa^T there. Any diagonal entry above -1 works,
		// preferring the largest keeps the square root well away from zero.
		return r.piAxis().Mul(math.Pi)
	}

	angle := math.Acos(utils.Clamp(0.5*(trace-1), -1, 1))
	s := 2 * math.Sin(angle)
	axis := r3.Vector{
		X: (r.rot.At(2, 1) - r.rot.At(1, 2)) / s,
		Y: (r.rot.At(0, 2) - r.rot.At(2, 0)) / s,
		Z: (r.rot.At(1, 0) - r.rot.At(0, 1)) / s,
	}
	return axis.Mul(angle)
}

// piAxis recovers the unit rotation axis of a half-turn rotation.
func (r Rotation3D) piAxis() r3.Vector {
	for _, i := range []int{2, 1, 0} {
		d := r.rot.At(i, i)
		if d <= -1+piSingularityEpsilon {
			continue
		}
		axis := r3.Vector{
			X: r.rot.At(0, i),
			Y: r.rot.At(1, i),
			Z: r.rot.At(2, i),
		}
		switch i {
		case 0:
			axis.X++
		case 1:
			axis.Y++
		case 2:
			axis.Z++
		}
		return axis.Mul(1 / math.Sqrt(2*(1+d)))
	}
	// Unreachable for a valid rotation matrix: a half turn has diagonal
	// entries 2a_i^2-1 for unit axis a, and at least one of those exceeds -1.
	return r3.Vector{Z: 1}
}

func (r Rotation3D) trace() float64 {
	return r.rot.At(0, 0) + r.rot.At(1, 1) + r.rot.At(2, 2)
}

// Compose returns the rotation equivalent to applying other first and r second.
func (r Rotation3D) Compose(other Rotation3D) Rotation3D {
	return Rotation3D{r.rot.Mul3(other.rot)}
}

// Inverse returns the inverse rotation. The transpose suffices since the matrix is orthonormal.
func (r Rotation3D) Inverse() Rotation3D {
	return Rotation3D{r.rot.Transpose()}
}

// Act rotates the given vector.
func (r Rotation3D) Act(v r3.Vector) r3.Vector {
	rotated := r.rot.Mul3x1(mgl64.Vec3{v.X, v.Y, v.Z})
	return r3.Vector{X: rotated.X(), Y: rotated.Y(), Z: rotated.Z()}
}

// Matrix returns a copy of the rotation matrix.
func (r Rotation3D) Matrix() *mat.Dense {
	out := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, r.rot.At(i, j))
		}
	}
	return out
}

// AlmostEqual reports whether the two rotations match elementwise within tolerance.
func (r Rotation3D) AlmostEqual(other Rotation3D) bool {
	return r.rot.ApproxEqualThreshold(other.rot, defaultEqualityEpsilon)
}

// NewRotation3DFromEulerAngles composes the axis rotations named by seq, a
// three-letter sequence over {x, y, z}, applied in left-to-right group
// composition order: "xyz" yields RX(a0) * RY(a1) * RZ(a2).
func NewRotation3DFromEulerAngles(angles []float64, seq string) (Rotation3D, error) {
	if len(angles) != 3 {
		return Rotation3D{}, newLengthError("euler angles", 3, len(angles))
	}
	if len(seq) != 3 {
		return Rotation3D{}, newLengthError("euler axis sequence", 3, len(seq))
	}
	out := NewZeroRotation3D()
	for i, axis := range seq {
		switch axis {
		case 'x':
			out = out.Compose(RX(angles[i]))
		case 'y':
			out = out.Compose(RY(angles[i]))
		case 'z':
			out = out.Compose(RZ(angles[i]))
		default:
			return Rotation3D{}, errors.Errorf("euler axis sequence may only contain x, y, z, got %q", string(axis))
		}
	}
	return out, nil
}

// skewSymmetric returns the cross-product matrix K of the given vector, with
// Kv = axis x v.
func skewSymmetric(axis r3.Vector) mgl64.Mat3 {
	var k mgl64.Mat3
	k.Set(0, 1, -axis.Z)
	k.Set(0, 2, axis.Y)
	k.Set(1, 0, axis.Z)
	k.Set(1, 2, -axis.X)
	k.Set(2, 0, -axis.Y)
	k.Set(2, 1, axis.X)
	return k
}
