package kinematics

import "github.com/pkg/errors"

// ErrNoModelInformation is used when there is no model information.
var ErrNoModelInformation = errors.New("no model information")

// newConfigurationLengthError returns an error for a configuration slice whose
// length does not match the manipulator's degrees of freedom.
func newConfigurationLengthError(dof, got int) error {
	return errors.Errorf("configuration must have one value per joint, want %d, got %d", dof, got)
}

// newJointIndexError returns an error for an out-of-range joint index.
func newJointIndexError(joint, count int) error {
	return errors.Errorf("joint index %d out of range for %d joints", joint, count)
}
