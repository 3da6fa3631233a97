package kinematics

import (
	"context"
	"math"
	"math/rand"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/robolab-cz/toolbox/spatialmath"
	"github.com/robolab-cz/toolbox/utils"
)

// ErrPRRNotImplemented is returned by IKAnalytical for PRR chains.
var ErrPRRNotImplemented = errors.New("analytical IK for PRR structures is not implemented")

// JacobianIK solves planar IK iteratively by damped least squares on the
// analytic Jacobian.
type JacobianIK struct {
	model         *PlanarManipulator
	logger        golog.Logger
	epsilon       float64
	maxIterations int
	restartEvery  int
	lambda        float64
	randSeed      *rand.Rand
}

// CreateJacobianIKSolver creates an IK solver bound to the given manipulator.
func CreateJacobianIKSolver(model *PlanarManipulator, logger golog.Logger) *JacobianIK {
	ik := &JacobianIK{model: model, logger: logger}
	// How close we want to get to the goal, in pose-delta norm.
	ik.epsilon = 1e-4
	ik.maxIterations = 1000
	// Iterations before abandoning the current basin for a random restart.
	ik.restartEvery = 150
	// Damping keeps the step bounded near Jacobian singularities.
	ik.lambda = 0.05
	//nolint:gosec
	ik.randSeed = rand.New(rand.NewSource(1))
	return ik
}

// Solve attempts to reach the desired flange pose, using the model's current
// configuration as the initial guess. On success the model's configuration is
// updated to the solution and true is returned; on failure or cancellation the
// configuration is left untouched.
func (ik *JacobianIK) Solve(ctx context.Context, goal spatialmath.RigidTransform2D) bool {
	clone := ik.model.Clone()

	for iteration := 1; iteration <= ik.maxIterations; iteration++ {
		select {
		case <-ctx.Done():
			ik.logger.Debugw("IK solve cancelled", "iteration", iteration)
			return false
		default:
		}

		dx := poseDelta(clone.FlangePose(), goal)
		if normSquared(dx) < ik.epsilon*ik.epsilon {
			solution := clone.Configuration()
			for i, jt := range clone.structure {
				if jt == Revolute {
					solution[i] = utils.WrapAngle(solution[i])
				}
			}
			if withinLimits(solution, clone.limits) {
				if err := ik.model.SetConfiguration(solution); err != nil {
					// Clone and model always share DoF; reaching this is a bug.
					panic(err)
				}
				return true
			}
		}

		dq, err := dampedLeastSquares(clone.Jacobian(), dx, ik.lambda)
		if err != nil {
			ik.logger.Errorw("IK step solve failed", "error", err)
			return false
		}
		q := clone.Configuration()
		for i := range q {
			q[i] += dq[i]
		}
		clone.q = q

		if iteration%ik.restartEvery == 0 {
			clone.q = clone.SampleConfiguration(ik.randSeed)
		}
	}
	ik.logger.Debugw("IK did not converge", "iterations", ik.maxIterations)
	return false
}

// IKNumerical solves IK with the damped-least-squares solver, preserving the
// solver-on-model calling convention: the current configuration is the initial
// guess and is mutated only on success.
func (pm *PlanarManipulator) IKNumerical(
	ctx context.Context,
	desired spatialmath.RigidTransform2D,
	logger golog.Logger,
) bool {
	return CreateJacobianIKSolver(pm, logger).Solve(ctx, desired)
}

// IKAnalytical computes the closed-form solutions for an all-revolute
// three-joint (RRR) chain reaching the desired flange pose. All candidates
// inside the joint limits are returned, elbow-up and elbow-down; the
// configuration is not modified. PRR chains are recognized but not
// implemented; any other structure is unsupported.
func (pm *PlanarManipulator) IKAnalytical(desired spatialmath.RigidTransform2D) ([][]float64, error) {
	switch {
	case structureEquals(pm.structure, []JointType{Revolute, Revolute, Revolute}):
	case structureEquals(pm.structure, []JointType{Prismatic, Revolute, Revolute}):
		return nil, ErrPRRNotImplemented
	default:
		return nil, errors.Errorf("analytical IK supports only RRR structures, got %q", structureString(pm.structure))
	}

	l1, l2, l3 := pm.linkParameters[0], pm.linkParameters[1], pm.linkParameters[2]

	// Work in the base frame; the flange orientation fixes q1+q2+q3, so the
	// wrist (joint 3 origin) reduces the problem to a two-link chain.
	local := pm.basePose.Inverse().Compose(desired)
	phi := local.Rotation().Angle()
	wrist := local.Translation().Sub(local.Rotation().Act(r2.Point{X: l3}))

	reachSquared := wrist.X*wrist.X + wrist.Y*wrist.Y
	cosElbow := (reachSquared - l1*l1 - l2*l2) / (2 * l1 * l2)
	if math.Abs(cosElbow) > 1+defaultIKCosineSlack {
		return [][]float64{}, nil
	}
	cosElbow = utils.Clamp(cosElbow, -1, 1)

	var solutions [][]float64
	elbow := math.Acos(cosElbow)
	for _, q2 := range []float64{elbow, -elbow} {
		q1 := math.Atan2(wrist.Y, wrist.X) - math.Atan2(l2*math.Sin(q2), l1+l2*math.Cos(q2))
		q1 = utils.WrapAngle(q1)
		q3 := utils.WrapAngle(phi - q1 - q2)
		candidate := []float64{q1, q2, q3}
		if withinLimits(candidate, pm.limits) && !containsConfiguration(solutions, candidate) {
			solutions = append(solutions, candidate)
		}
	}
	return solutions, nil
}

// defaultIKCosineSlack tolerates targets a hair beyond the reachable boundary
// before declaring them unreachable.
const defaultIKCosineSlack = 1e-9

// poseDelta returns the (dx, dy, dtheta) difference carrying from to to, with
// the angular term wrapped to (-pi, pi].
func poseDelta(from, to spatialmath.RigidTransform2D) []float64 {
	return []float64{
		to.Translation().X - from.Translation().X,
		to.Translation().Y - from.Translation().Y,
		utils.WrapAngle(to.Rotation().Angle() - from.Rotation().Angle()),
	}
}

// dampedLeastSquares solves (J^T J + lambda^2 I) dq = J^T dx.
func dampedLeastSquares(jac *mat.Dense, dx []float64, lambda float64) ([]float64, error) {
	rows, n := jac.Dims()

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)
	for i := 0; i < n; i++ {
		jtj.Set(i, i, jtj.At(i, i)+lambda*lambda)
	}

	var jtdx mat.VecDense
	jtdx.MulVec(jac.T(), mat.NewVecDense(rows, dx))

	var dq mat.VecDense
	if err := dq.SolveVec(&jtj, &jtdx); err != nil {
		return nil, errors.Wrap(err, "failed to solve damped least squares step")
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = dq.AtVec(i)
	}
	return out, nil
}

func normSquared(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return sum
}

func withinLimits(q []float64, limits []Limit) bool {
	for i, value := range q {
		if value < limits[i].Min || value > limits[i].Max {
			return false
		}
	}
	return true
}

func structureEquals(a, b []JointType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func structureString(structure []JointType) string {
	out := make([]byte, len(structure))
	for i, jt := range structure {
		out[i] = jt[0]
	}
	return string(out)
}

func containsConfiguration(set [][]float64, q []float64) bool {
	for _, existing := range set {
		match := true
		for i := range existing {
			if !utils.Float64AlmostEqual(existing[i], q[i], 1e-9) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
