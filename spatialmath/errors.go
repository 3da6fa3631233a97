package spatialmath

import "github.com/pkg/errors"

// newDimensionsError returns an error for a matrix argument of the wrong shape.
func newDimensionsError(name string, wantRows, wantCols, gotRows, gotCols int) error {
	return errors.Errorf("%s must be a %dx%d matrix, got %dx%d", name, wantRows, wantCols, gotRows, gotCols)
}

// newLengthError returns an error for a slice argument of the wrong length.
func newLengthError(name string, want, got int) error {
	return errors.Errorf("%s must have length %d, got %d", name, want, got)
}
