package kinematics

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/robolab-cz/toolbox/spatialmath"
)

func squareObstacle(t *testing.T, cx, cy, half float64) *spatialmath.Polygon {
	t.Helper()
	poly, err := spatialmath.NewPolygon([]r2.Point{
		{X: cx - half, Y: cy - half},
		{X: cx + half, Y: cy - half},
		{X: cx + half, Y: cy + half},
		{X: cx - half, Y: cy + half},
	})
	test.That(t, err, test.ShouldBeNil)
	return poly
}

func TestInCollisionExtendedFree(t *testing.T) {
	pm := threeLinkRRR(t)
	test.That(t, pm.SetConfiguration([]float64{0, 0, 0}), test.ShouldBeNil)
	test.That(t, pm.InCollision(), test.ShouldBeFalse)
}

func TestInCollisionSelfFold(t *testing.T) {
	// Folding the second joint back lays the third link on top of the first.
	pm := threeLinkRRR(t)
	test.That(t, pm.SetConfiguration([]float64{0, math.Pi, 0}), test.ShouldBeNil)
	test.That(t, pm.InCollision(), test.ShouldBeTrue)
}

func TestInCollisionAdjacentLinksExempt(t *testing.T) {
	// A sharp bend makes consecutive links touch at their shared joint; that
	// never counts as self collision.
	pm := threeLinkRRR(t)
	test.That(t, pm.SetConfiguration([]float64{0, 3, 0}), test.ShouldBeNil)
	test.That(t, pm.InCollision(), test.ShouldBeFalse)
}

func TestInCollisionWithObstacle(t *testing.T) {
	pm := threeLinkRRR(t)
	test.That(t, pm.SetConfiguration([]float64{0, 0, 0}), test.ShouldBeNil)

	// Blocking the second link.
	pm.SetObstacles(squareObstacle(t, 1.5, 0, 0.25))
	test.That(t, pm.InCollision(), test.ShouldBeTrue)

	// Same obstacle, moved out of the way.
	pm.SetObstacles(squareObstacle(t, 1.5, 2, 0.25))
	test.That(t, pm.InCollision(), test.ShouldBeFalse)

	pm.SetObstacles(nil)
	test.That(t, pm.InCollision(), test.ShouldBeFalse)
}

func TestInCollisionGripperHitsObstacle(t *testing.T) {
	// The obstacle sits beyond the flange where only a gripper finger reaches.
	pm := threeLinkRRR(t)
	test.That(t, pm.SetConfiguration([]float64{0, 0, 0}), test.ShouldBeNil)
	pm.SetObstacles(squareObstacle(t, 3.15, 0.1, 0.03))
	test.That(t, pm.InCollision(), test.ShouldBeTrue)
}

func TestInCollisionObstacleSet(t *testing.T) {
	pm := threeLinkRRR(t)
	test.That(t, pm.SetConfiguration([]float64{0, 0, 0}), test.ShouldBeNil)
	pm.SetObstacles(spatialmath.GeometrySet{
		squareObstacle(t, -2, 0, 0.25),
		squareObstacle(t, 2.5, 0, 0.1),
	})
	test.That(t, pm.InCollision(), test.ShouldBeTrue)
}

func TestGripperSegments(t *testing.T) {
	pm := threeLinkRRR(t)
	test.That(t, pm.SetConfiguration([]float64{0, 0, 0}), test.ShouldBeNil)
	test.That(t, pm.SetGripper(0.2, 0.2), test.ShouldBeNil)

	segments := pm.GripperSegments(pm.FlangePose())
	// Crossbar spans the opening at the flange.
	test.That(t, segments[0].Start.X, test.ShouldAlmostEqual, 3)
	test.That(t, segments[0].Start.Y, test.ShouldAlmostEqual, -0.1)
	test.That(t, segments[0].End.Y, test.ShouldAlmostEqual, 0.1)
	// Fingers extend along the flange x axis.
	test.That(t, segments[1].End.X, test.ShouldAlmostEqual, 3.2)
	test.That(t, segments[1].End.Y, test.ShouldAlmostEqual, -0.1)
	test.That(t, segments[2].End.X, test.ShouldAlmostEqual, 3.2)
	test.That(t, segments[2].End.Y, test.ShouldAlmostEqual, 0.1)
}
