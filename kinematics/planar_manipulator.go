// Package kinematics implements a planar serial-manipulator model on top of the
// spatialmath transformation types: forward kinematics, analytic and
// finite-difference Jacobians, collision checking, configuration sampling and
// inverse kinematics.
package kinematics

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/robolab-cz/toolbox/spatialmath"
)

// JointType tags a joint as revolute or prismatic.
type JointType string

const (
	// Revolute joints rotate about their origin; their link parameter is the
	// length of the attached link.
	Revolute JointType = "R"
	// Prismatic joints extend along their axis; their link parameter is the
	// fixed rotation of that axis.
	Prismatic JointType = "P"
)

// Limit represents the limits of motion of a single joint.
type Limit struct {
	Min float64
	Max float64
}

// Defaults applied by NewDefaultPlanarManipulator, mirroring a small
// three-link tabletop arm.
const (
	defaultLinkLength     = 0.5
	defaultHomeAngle      = math.Pi / 8
	defaultGripperLength  = 0.2
	defaultGripperOpening = 0.2
)

// PlanarManipulator models a serial chain of revolute and prismatic joints
// mounted at a base pose. The flange pose follows the kinematic chain
//
//	T_flange = T_base * T_0(q_0) * T_1(q_1) * ... * T_n(q_n)
//
// where T_i = R(q_i) * Tx(l_i) for a revolute joint and T_i = R(l_i) * Tx(q_i)
// for a prismatic one, with l_i the joint's link parameter.
//
// Everything but the configuration q is fixed at construction. The
// configuration is mutable through SetConfiguration and the IK solvers;
// what-if computations (finite differences, IK iterations) always run on a
// clone so the live configuration is never perturbed.
type PlanarManipulator struct {
	name           string
	linkParameters []float64
	structure      []JointType
	basePose       spatialmath.RigidTransform2D
	limits         []Limit
	gripperLength  float64
	gripperOpening float64
	obstacles      spatialmath.Geometry

	q []float64
}

// NewPlanarManipulator creates a manipulator with the given per-joint link
// parameters and structure, mounted at basePose. The configuration starts at
// pi/8 for every joint with limits of +/- pi, matching the default tabletop
// arm; use SetConfiguration and SetLimits to override.
func NewPlanarManipulator(
	linkParameters []float64,
	structure []JointType,
	basePose spatialmath.RigidTransform2D,
) (*PlanarManipulator, error) {
	if len(linkParameters) == 0 {
		return nil, errors.New("manipulator needs at least one joint")
	}
	if len(structure) != len(linkParameters) {
		return nil, errors.Errorf(
			"structure length %d does not match link parameter length %d",
			len(structure), len(linkParameters),
		)
	}
	for i, jt := range structure {
		if jt != Revolute && jt != Prismatic {
			return nil, errors.Errorf("joint %d has unknown type %q", i, string(jt))
		}
	}

	n := len(linkParameters)
	pm := &PlanarManipulator{
		linkParameters: append([]float64{}, linkParameters...),
		structure:      append([]JointType{}, structure...),
		basePose:       basePose,
		limits:         make([]Limit, n),
		gripperLength:  defaultGripperLength,
		gripperOpening: defaultGripperOpening,
		q:              make([]float64, n),
	}
	for i := 0; i < n; i++ {
		pm.limits[i] = Limit{Min: -math.Pi, Max: math.Pi}
		pm.q[i] = defaultHomeAngle
	}
	return pm, nil
}

// NewDefaultPlanarManipulator returns a three-link all-revolute arm with half
// meter links mounted at the origin.
func NewDefaultPlanarManipulator() *PlanarManipulator {
	pm, err := NewPlanarManipulator(
		[]float64{defaultLinkLength, defaultLinkLength, defaultLinkLength},
		[]JointType{Revolute, Revolute, Revolute},
		spatialmath.NewZeroRigidTransform2D(),
	)
	if err != nil {
		// The fixed arguments above are valid; reaching this is a bug.
		panic(err)
	}
	return pm
}

// Name returns the model name, empty unless loaded from a model config.
func (pm *PlanarManipulator) Name() string {
	return pm.name
}

// DoF returns the number of degrees of freedom.
func (pm *PlanarManipulator) DoF() int {
	return len(pm.q)
}

// JointCount returns the number of joints in the chain.
func (pm *PlanarManipulator) JointCount() int {
	return len(pm.structure)
}

// Structure returns a copy of the per-joint type tags.
func (pm *PlanarManipulator) Structure() []JointType {
	return append([]JointType{}, pm.structure...)
}

// LinkParameters returns a copy of the per-joint link parameters.
func (pm *PlanarManipulator) LinkParameters() []float64 {
	return append([]float64{}, pm.linkParameters...)
}

// BasePose returns the mounting pose of the manipulator.
func (pm *PlanarManipulator) BasePose() spatialmath.RigidTransform2D {
	return pm.basePose
}

// Limits returns a copy of the per-joint limits.
func (pm *PlanarManipulator) Limits() []Limit {
	return append([]Limit{}, pm.limits...)
}

// SetLimits replaces the per-joint limits.
func (pm *PlanarManipulator) SetLimits(limits []Limit) error {
	if len(limits) != pm.DoF() {
		return newConfigurationLengthError(pm.DoF(), len(limits))
	}
	for i, lim := range limits {
		if lim.Min > lim.Max {
			return errors.Errorf("joint %d limit min %f exceeds max %f", i, lim.Min, lim.Max)
		}
	}
	pm.limits = append([]Limit{}, limits...)
	return nil
}

// Configuration returns a copy of the current joint configuration.
func (pm *PlanarManipulator) Configuration() []float64 {
	return append([]float64{}, pm.q...)
}

// SetConfiguration sets the joint configuration.
func (pm *PlanarManipulator) SetConfiguration(q []float64) error {
	if len(q) != pm.DoF() {
		return newConfigurationLengthError(pm.DoF(), len(q))
	}
	pm.q = append([]float64{}, q...)
	return nil
}

// Gripper returns the gripper length and opening.
func (pm *PlanarManipulator) Gripper() (length, opening float64) {
	return pm.gripperLength, pm.gripperOpening
}

// SetGripper sets the gripper length and opening.
func (pm *PlanarManipulator) SetGripper(length, opening float64) error {
	if length < 0 || opening < 0 {
		return errors.Errorf("gripper dimensions must be non-negative, got length %f opening %f", length, opening)
	}
	pm.gripperLength = length
	pm.gripperOpening = opening
	return nil
}

// SetObstacles installs the obstacle geometry used by InCollision. A nil
// geometry disables external collision checking.
func (pm *PlanarManipulator) SetObstacles(obstacles spatialmath.Geometry) {
	pm.obstacles = obstacles
}

// Clone returns a deep copy of the manipulator. The clone shares the obstacle
// geometry, which is read-only, and nothing else.
func (pm *PlanarManipulator) Clone() *PlanarManipulator {
	clone := *pm
	clone.linkParameters = append([]float64{}, pm.linkParameters...)
	clone.structure = append([]JointType{}, pm.structure...)
	clone.limits = append([]Limit{}, pm.limits...)
	clone.q = append([]float64{}, pm.q...)
	return &clone
}

// JointTransform returns the transform T_i carrying the frame of joint i to the
// frame of joint i+1 at the current configuration.
func (pm *PlanarManipulator) JointTransform(joint int) (spatialmath.RigidTransform2D, error) {
	if joint < 0 || joint >= pm.JointCount() {
		return spatialmath.RigidTransform2D{}, newJointIndexError(joint, pm.JointCount())
	}
	return pm.jointTransform(joint), nil
}

func (pm *PlanarManipulator) jointTransform(joint int) spatialmath.RigidTransform2D {
	q := pm.q[joint]
	param := pm.linkParameters[joint]
	if pm.structure[joint] == Prismatic {
		rotation := spatialmath.NewRotation2D(param)
		return spatialmath.NewRigidTransform2D(rotation.Act(r2.Point{X: q}), rotation)
	}
	rotation := spatialmath.NewRotation2D(q)
	return spatialmath.NewRigidTransform2D(rotation.Act(r2.Point{X: param}), rotation)
}

// FlangePose returns the pose of the flange in the reference frame.
func (pm *PlanarManipulator) FlangePose() spatialmath.RigidTransform2D {
	pose := pm.basePose
	for i := 0; i < pm.JointCount(); i++ {
		pose = pose.Compose(pm.jointTransform(i))
	}
	return pose
}

// FKAllLinks computes the frames attached to the links of the robot. The first
// frame is the base pose, frame k is the base composed with the first k joint
// transforms, and the last frame is the flange pose.
func (pm *PlanarManipulator) FKAllLinks() []spatialmath.RigidTransform2D {
	frames := make([]spatialmath.RigidTransform2D, 0, pm.JointCount()+1)
	pose := pm.basePose
	frames = append(frames, pose)
	for i := 0; i < pm.JointCount(); i++ {
		pose = pose.Compose(pm.jointTransform(i))
		frames = append(frames, pose)
	}
	return frames
}

// FKFromIndexToEnd composes the joint transforms from the given joint through
// the end of the chain, without the base pose. This is the partial chain the
// Jacobian uses as the lever arm of joint i.
func (pm *PlanarManipulator) FKFromIndexToEnd(joint int) (spatialmath.RigidTransform2D, error) {
	if joint < 0 || joint >= pm.JointCount() {
		return spatialmath.RigidTransform2D{}, newJointIndexError(joint, pm.JointCount())
	}
	return pm.fkFromIndexToEnd(joint), nil
}

func (pm *PlanarManipulator) fkFromIndexToEnd(joint int) spatialmath.RigidTransform2D {
	pose := spatialmath.NewZeroRigidTransform2D()
	for i := joint; i < pm.JointCount(); i++ {
		pose = pose.Compose(pm.jointTransform(i))
	}
	return pose
}

// SampleConfiguration draws a configuration uniformly from the joint limits.
// It does not modify the current configuration. A nil source seeds a
// deterministic one.
func (pm *PlanarManipulator) SampleConfiguration(rnd *rand.Rand) []float64 {
	if rnd == nil {
		//nolint:gosec
		rnd = rand.New(rand.NewSource(1))
	}
	sample := make([]float64, pm.DoF())
	for i, lim := range pm.limits {
		sample[i] = lim.Min + rnd.Float64()*(lim.Max-lim.Min)
	}
	return sample
}
