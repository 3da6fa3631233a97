package kinematics

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"github.com/robolab-cz/toolbox/spatialmath"
	"github.com/robolab-cz/toolbox/utils"
)

// defaultFiniteDifferenceStep is the perturbation used by
// JacobianFiniteDifference when no step is given.
const defaultFiniteDifferenceStep = 1e-5

// Jacobian computes the analytic 3xN end-effector Jacobian at the current
// configuration. Rows map joint velocities to (dx, dy, dtheta) of the flange,
// one column per joint.
//
// A prismatic column is the world-frame direction of the joint's translation
// axis with no angular part. A revolute column rotates the joint-to-flange
// offset by 90 degrees to get the velocity direction of the flange around that
// joint, expresses it in the world frame and contributes a unit angular part.
func (pm *PlanarManipulator) Jacobian() *mat.Dense {
	n := pm.JointCount()
	jac := mat.NewDense(3, n, nil)
	frames := pm.FKAllLinks()
	quarterTurn := spatialmath.NewRotation2D(math.Pi / 2)

	for i := 0; i < n; i++ {
		if pm.structure[i] == Prismatic {
			direction := frames[i+1].Rotation().Act(r2.Point{X: 1})
			jac.Set(0, i, direction.X)
			jac.Set(1, i, direction.Y)
			jac.Set(2, i, 0)
			continue
		}
		toEnd := pm.fkFromIndexToEnd(i)
		lever := quarterTurn.Act(toEnd.Translation())
		direction := frames[i].Rotation().Act(lever)
		jac.Set(0, i, direction.X)
		jac.Set(1, i, direction.Y)
		jac.Set(2, i, 1)
	}
	return jac
}

// JacobianFiniteDifference approximates the Jacobian by perturbing each joint
// of a cloned configuration by delta and differencing the flange pose. The
// live configuration is never touched. A non-positive delta falls back to the
// default step. This is the ground truth the analytic Jacobian is verified
// against.
func (pm *PlanarManipulator) JacobianFiniteDifference(delta float64) *mat.Dense {
	if delta <= 0 {
		delta = defaultFiniteDifferenceStep
	}
	n := pm.JointCount()
	jac := mat.NewDense(3, n, nil)

	pose := pm.FlangePose()
	baseX := pose.Translation().X
	baseY := pose.Translation().Y
	baseTheta := pose.Rotation().Angle()

	clone := pm.Clone()
	for j := 0; j < n; j++ {
		q := pm.Configuration()
		q[j] += delta
		clone.q = q
		perturbed := clone.FlangePose()
		jac.Set(0, j, (perturbed.Translation().X-baseX)/delta)
		jac.Set(1, j, (perturbed.Translation().Y-baseY)/delta)
		// Wrap the angular difference so configurations near the pi branch cut
		// do not produce a spurious 2*pi/delta entry.
		jac.Set(2, j, utils.WrapAngle(perturbed.Rotation().Angle()-baseTheta)/delta)
	}
	return jac
}
