package syncer

import "errors"

var (
	// ErrNoModes is returned when no discovered mode survives ordering and
	// validation. Nothing is written.
	ErrNoModes = errors.New("syncer: no valid modes to write")

	// ErrModesDirNotFound is returned when the modes directory is missing.
	ErrModesDirNotFound = errors.New("syncer: modes directory not found")

	// ErrInvalidTarget is returned for a target directory that does not
	// exist or is not a directory.
	ErrInvalidTarget = errors.New("syncer: invalid target directory")
)
