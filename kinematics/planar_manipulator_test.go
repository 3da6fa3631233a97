package kinematics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/robolab-cz/toolbox/spatialmath"
)

func threeLinkRRR(t *testing.T) *PlanarManipulator {
	t.Helper()
	pm, err := NewPlanarManipulator(
		[]float64{1, 1, 1},
		[]JointType{Revolute, Revolute, Revolute},
		spatialmath.NewZeroRigidTransform2D(),
	)
	test.That(t, err, test.ShouldBeNil)
	return pm
}

func TestNewPlanarManipulatorValidation(t *testing.T) {
	_, err := NewPlanarManipulator(nil, nil, spatialmath.NewZeroRigidTransform2D())
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewPlanarManipulator([]float64{1, 1}, []JointType{Revolute}, spatialmath.NewZeroRigidTransform2D())
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewPlanarManipulator([]float64{1}, []JointType{"Q"}, spatialmath.NewZeroRigidTransform2D())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "Q")
}

func TestDefaultPlanarManipulator(t *testing.T) {
	pm := NewDefaultPlanarManipulator()
	test.That(t, pm.DoF(), test.ShouldEqual, 3)
	test.That(t, pm.JointCount(), test.ShouldEqual, 3)
	test.That(t, pm.Structure(), test.ShouldResemble, []JointType{Revolute, Revolute, Revolute})
	test.That(t, pm.LinkParameters(), test.ShouldResemble, []float64{0.5, 0.5, 0.5})
	for _, q := range pm.Configuration() {
		test.That(t, q, test.ShouldAlmostEqual, math.Pi/8)
	}
	for _, lim := range pm.Limits() {
		test.That(t, lim.Min, test.ShouldAlmostEqual, -math.Pi)
		test.That(t, lim.Max, test.ShouldAlmostEqual, math.Pi)
	}
	length, opening := pm.Gripper()
	test.That(t, length, test.ShouldAlmostEqual, 0.2)
	test.That(t, opening, test.ShouldAlmostEqual, 0.2)
}

func TestFlangePoseExtended(t *testing.T) {
	pm := threeLinkRRR(t)
	test.That(t, pm.SetConfiguration([]float64{0, 0, 0}), test.ShouldBeNil)

	flange := pm.FlangePose()
	test.That(t, flange.Translation().X, test.ShouldAlmostEqual, 3)
	test.That(t, flange.Translation().Y, test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, flange.Rotation().Angle(), test.ShouldAlmostEqual, 0, 1e-12)
}

func TestFlangePoseBentChain(t *testing.T) {
	pm := threeLinkRRR(t)
	test.That(t, pm.SetConfiguration([]float64{math.Pi / 2, -math.Pi / 2, 0}), test.ShouldBeNil)

	// Up one link, then right two.
	flange := pm.FlangePose()
	test.That(t, flange.Translation().X, test.ShouldAlmostEqual, 2, 1e-12)
	test.That(t, flange.Translation().Y, test.ShouldAlmostEqual, 1)
	test.That(t, flange.Rotation().Angle(), test.ShouldAlmostEqual, 0, 1e-12)
}

func TestFlangePoseWithBase(t *testing.T) {
	base := spatialmath.NewRigidTransform2DFromAngle(r2.Point{X: 1, Y: -1}, math.Pi/2)
	pm, err := NewPlanarManipulator([]float64{1, 1, 1}, []JointType{Revolute, Revolute, Revolute}, base)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pm.SetConfiguration([]float64{0, 0, 0}), test.ShouldBeNil)

	flange := pm.FlangePose()
	test.That(t, flange.Translation().X, test.ShouldAlmostEqual, 1, 1e-12)
	test.That(t, flange.Translation().Y, test.ShouldAlmostEqual, 2)
	test.That(t, flange.Rotation().Angle(), test.ShouldAlmostEqual, math.Pi/2)
}

func TestPrismaticJoint(t *testing.T) {
	pm, err := NewPlanarManipulator(
		[]float64{math.Pi / 2},
		[]JointType{Prismatic},
		spatialmath.NewZeroRigidTransform2D(),
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pm.SetConfiguration([]float64{0.5}), test.ShouldBeNil)

	// Extension happens along the joint's rotated x axis.
	flange := pm.FlangePose()
	test.That(t, flange.Translation().X, test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, flange.Translation().Y, test.ShouldAlmostEqual, 0.5)
	test.That(t, flange.Rotation().Angle(), test.ShouldAlmostEqual, math.Pi/2)
}

func TestFKAllLinks(t *testing.T) {
	pm := threeLinkRRR(t)
	test.That(t, pm.SetConfiguration([]float64{0, 0, 0}), test.ShouldBeNil)

	frames := pm.FKAllLinks()
	test.That(t, frames, test.ShouldHaveLength, 4)
	for i, wantX := range []float64{0, 1, 2, 3} {
		test.That(t, frames[i].Translation().X, test.ShouldAlmostEqual, wantX)
		test.That(t, frames[i].Translation().Y, test.ShouldAlmostEqual, 0, 1e-12)
	}
	test.That(t, frames[len(frames)-1].AlmostEqual(pm.FlangePose()), test.ShouldBeTrue)
}

func TestFKFromIndexToEnd(t *testing.T) {
	pm := threeLinkRRR(t)
	test.That(t, pm.SetConfiguration([]float64{0.7, 0, 0}), test.ShouldBeNil)

	// The partial chain from joint 1 ignores joint 0 entirely.
	partial, err := pm.FKFromIndexToEnd(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, partial.Translation().X, test.ShouldAlmostEqual, 2)
	test.That(t, partial.Translation().Y, test.ShouldAlmostEqual, 0, 1e-12)

	_, err = pm.FKFromIndexToEnd(3)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = pm.FKFromIndexToEnd(-1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestJointTransformBounds(t *testing.T) {
	pm := threeLinkRRR(t)
	_, err := pm.JointTransform(0)
	test.That(t, err, test.ShouldBeNil)
	_, err = pm.JointTransform(3)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "out of range")
}

func TestConfigurationIsolation(t *testing.T) {
	pm := threeLinkRRR(t)
	test.That(t, pm.SetConfiguration([]float64{0.1, 0.2, 0.3}), test.ShouldBeNil)

	q := pm.Configuration()
	q[0] = 99
	test.That(t, pm.Configuration()[0], test.ShouldAlmostEqual, 0.1)

	err := pm.SetConfiguration([]float64{1, 2})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSampleConfiguration(t *testing.T) {
	pm := threeLinkRRR(t)
	test.That(t, pm.SetLimits([]Limit{{-1, 1}, {0, 0.5}, {-2, -1}}), test.ShouldBeNil)
	before := pm.Configuration()

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		sample := pm.SampleConfiguration(rnd)
		test.That(t, sample, test.ShouldHaveLength, 3)
		for j, lim := range pm.Limits() {
			test.That(t, sample[j], test.ShouldBeGreaterThanOrEqualTo, lim.Min)
			test.That(t, sample[j], test.ShouldBeLessThanOrEqualTo, lim.Max)
		}
	}
	// Sampling never touches the live configuration.
	test.That(t, pm.Configuration(), test.ShouldResemble, before)

	// A nil source falls back to a fixed seed.
	test.That(t, pm.SampleConfiguration(nil), test.ShouldResemble, pm.SampleConfiguration(nil))
}

func TestClone(t *testing.T) {
	pm := threeLinkRRR(t)
	test.That(t, pm.SetConfiguration([]float64{0.1, 0.2, 0.3}), test.ShouldBeNil)

	clone := pm.Clone()
	test.That(t, clone.SetConfiguration([]float64{1, 1, 1}), test.ShouldBeNil)
	test.That(t, pm.Configuration(), test.ShouldResemble, []float64{0.1, 0.2, 0.3})
	test.That(t, clone.FlangePose().AlmostEqual(pm.FlangePose()), test.ShouldBeFalse)
}

func TestSetLimitsValidation(t *testing.T) {
	pm := threeLinkRRR(t)
	err := pm.SetLimits([]Limit{{0, 1}})
	test.That(t, err, test.ShouldNotBeNil)
	err = pm.SetLimits([]Limit{{0, 1}, {1, 0}, {0, 1}})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSetGripperValidation(t *testing.T) {
	pm := threeLinkRRR(t)
	test.That(t, pm.SetGripper(0.3, 0.1), test.ShouldBeNil)
	length, opening := pm.Gripper()
	test.That(t, length, test.ShouldAlmostEqual, 0.3)
	test.That(t, opening, test.ShouldAlmostEqual, 0.1)
	test.That(t, pm.SetGripper(-0.1, 0.1), test.ShouldNotBeNil)
}
