package course

import "errors"

// Validation errors for the course entity.
var (
	ErrInvalidID       = errors.New("course: invalid id")
	ErrNegativeModules = errors.New("course: total modules cannot be negative")
	ErrModulesRange    = errors.New("course: completed modules out of range")
	ErrProgressRange   = errors.New("course: progress out of range")
)
