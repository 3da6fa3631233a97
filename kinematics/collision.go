package kinematics

import (
	"github.com/golang/geo/r2"

	"github.com/robolab-cz/toolbox/spatialmath"
)

// GripperSegments returns the three segments of the gripper drawn at the given
// flange pose: the crossbar between the fingertips' roots and the two fingers
// extending gripper length along the flange x axis. Renderers draw these and
// the collision checker tests them.
func (pm *PlanarManipulator) GripperSegments(flange spatialmath.RigidTransform2D) [3]spatialmath.Segment {
	half := pm.gripperOpening / 2
	lower := flange.Act(r2.Point{Y: -half})
	upper := flange.Act(r2.Point{Y: half})
	lowerTip := flange.Act(r2.Point{X: pm.gripperLength, Y: -half})
	upperTip := flange.Act(r2.Point{X: pm.gripperLength, Y: half})
	return [3]spatialmath.Segment{
		{Start: lower, End: upper},
		{Start: lower, End: lowerTip},
		{Start: upper, End: upperTip},
	}
}

// InCollision reports whether the manipulator at its current configuration
// collides with itself or with the installed obstacle geometry.
//
// The links are the segments between consecutive frame origins. For
// self-collision the final link and the gripper segments form one group, since
// they are rigidly attached to each other; only groups at index distance two
// or more are tested, as neighbors always touch at their shared joint.
func (pm *PlanarManipulator) InCollision() bool {
	frames := pm.FKAllLinks()
	points := make([]r2.Point, len(frames))
	for i, frame := range frames {
		points[i] = frame.Translation()
	}
	gripper := pm.GripperSegments(frames[len(frames)-1])

	var groups [][]spatialmath.Segment
	for i := 0; i+2 < len(points); i++ {
		groups = append(groups, []spatialmath.Segment{{Start: points[i], End: points[i+1]}})
	}
	endGroup := append([]spatialmath.Segment{}, gripper[:]...)
	endGroup = append(endGroup, spatialmath.Segment{
		Start: points[len(points)-2],
		End:   points[len(points)-1],
	})
	groups = append(groups, endGroup)

	for i := 0; i < len(groups); i++ {
		for j := i + 2; j < len(groups); j++ {
			if segmentGroupsIntersect(groups[i], groups[j]) {
				return true
			}
		}
	}

	if pm.obstacles == nil {
		return false
	}
	for i := 0; i+1 < len(points); i++ {
		if pm.obstacles.IntersectsSegment(spatialmath.Segment{Start: points[i], End: points[i+1]}) {
			return true
		}
	}
	for _, seg := range gripper {
		if pm.obstacles.IntersectsSegment(seg) {
			return true
		}
	}
	return false
}

func segmentGroupsIntersect(a, b []spatialmath.Segment) bool {
	for _, segA := range a {
		for _, segB := range b {
			if spatialmath.SegmentsIntersect(segA, segB) {
				return true
			}
		}
	}
	return false
}
