package kinematics

import (
	"encoding/json"
	"math"
	"os"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/robolab-cz/toolbox/spatialmath"
)

// ModelConfig represents all supported fields in a planar manipulator JSON file.
type ModelConfig struct {
	Name           string        `json:"name"`
	Joints         []JointConfig `json:"joints"`
	Base           *PoseConfig   `json:"base,omitempty"`
	GripperLength  *float64      `json:"gripper_length,omitempty"`
	GripperOpening *float64      `json:"gripper_opening,omitempty"`
}

// JointConfig describes one joint of the chain: its type, its link parameter
// (link length for revolute joints, fixed axis rotation for prismatic ones),
// optional motion limits and an optional home position. Omitted limits default
// to +/- pi.
type JointConfig struct {
	Type      string   `json:"type"`
	Parameter float64  `json:"parameter"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Home      float64  `json:"home,omitempty"`
}

// PoseConfig describes a planar pose as a translation and an angle in radians.
type PoseConfig struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// Pose converts the config into a RigidTransform2D.
func (pc *PoseConfig) Pose() spatialmath.RigidTransform2D {
	return spatialmath.NewRigidTransform2DFromAngle(r2.Point{X: pc.X, Y: pc.Y}, pc.Theta)
}

// UnmarshalModelJSON parses the given JSON data into a planar manipulator.
// modelName overrides the name from the JSON when non-empty.
func UnmarshalModelJSON(jsonData []byte, modelName string) (*PlanarManipulator, error) {
	// Empty data probably means the robot component carries no model information.
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}
	var cfg ModelConfig
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	return cfg.ParseConfig(modelName)
}

// ParseModelFile reads and parses a model config file.
func ParseModelFile(filename, modelName string) (*PlanarManipulator, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read model file")
	}
	return UnmarshalModelJSON(jsonData, modelName)
}

// ParseConfig converts the config into a full PlanarManipulator named modelName.
func (cfg *ModelConfig) ParseConfig(modelName string) (*PlanarManipulator, error) {
	if modelName == "" {
		modelName = cfg.Name
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	n := len(cfg.Joints)
	linkParameters := make([]float64, n)
	structure := make([]JointType, n)
	limits := make([]Limit, n)
	home := make([]float64, n)
	for i, joint := range cfg.Joints {
		linkParameters[i] = joint.Parameter
		structure[i] = JointType(joint.Type)
		limits[i] = Limit{Min: defaultFloat(joint.Min, -defaultJointLimit), Max: defaultFloat(joint.Max, defaultJointLimit)}
		home[i] = joint.Home
	}

	basePose := spatialmath.NewZeroRigidTransform2D()
	if cfg.Base != nil {
		basePose = cfg.Base.Pose()
	}

	pm, err := NewPlanarManipulator(linkParameters, structure, basePose)
	if err != nil {
		return nil, err
	}
	pm.name = modelName
	if err := pm.SetLimits(limits); err != nil {
		return nil, err
	}
	if err := pm.SetConfiguration(home); err != nil {
		return nil, err
	}
	if cfg.GripperLength != nil || cfg.GripperOpening != nil {
		length := defaultFloat(cfg.GripperLength, defaultGripperLength)
		opening := defaultFloat(cfg.GripperOpening, defaultGripperOpening)
		if err := pm.SetGripper(length, opening); err != nil {
			return nil, err
		}
	}
	return pm, nil
}

// validate accumulates every config problem rather than stopping at the first.
func (cfg *ModelConfig) validate() error {
	var err error
	if len(cfg.Joints) == 0 {
		err = multierr.Append(err, errors.New("model config has no joints"))
	}
	for i, joint := range cfg.Joints {
		jt := JointType(joint.Type)
		if jt != Revolute && jt != Prismatic {
			err = multierr.Append(err, errors.Errorf("joint %d has unknown type %q", i, joint.Type))
		}
		min := defaultFloat(joint.Min, -defaultJointLimit)
		max := defaultFloat(joint.Max, defaultJointLimit)
		if min > max {
			err = multierr.Append(err, errors.Errorf("joint %d limit min %f exceeds max %f", i, min, max))
		}
		if joint.Home < min || joint.Home > max {
			err = multierr.Append(err, errors.Errorf("joint %d home position %f outside limits [%f, %f]", i, joint.Home, min, max))
		}
	}
	return err
}

const defaultJointLimit = math.Pi

func defaultFloat(value *float64, fallback float64) float64 {
	if value == nil {
		return fallback
	}
	return *value
}
