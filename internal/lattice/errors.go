package lattice

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateBasis is matched by DegenerateBasisError.
	ErrDegenerateBasis = errors.New("degenerate lattice basis")

	// ErrInvalidBrillouinZone is matched by InvalidZoneError.
	ErrInvalidBrillouinZone = errors.New("invalid Brillouin zone")

	// ErrInvalidInput is matched by InputError.
	ErrInvalidInput = errors.New("invalid input")
)

// DegenerateBasisError reports lattice vectors that are coplanar or otherwise
// span zero volume, so the reciprocal basis is undefined.
type DegenerateBasisError struct {
	Volume float64
}

func (e *DegenerateBasisError) Error() string {
	return fmt.Sprintf("lattice vectors are coplanar or degenerate (cell volume %g)", e.Volume)
}

// Is makes errors.Is(err, ErrDegenerateBasis) hold.
func (e *DegenerateBasisError) Is(target error) bool {
	return target == ErrDegenerateBasis
}

// InvalidZoneError reports a Voronoi cell around the origin that is empty,
// unbounded, or could not be certified within the neighbour radius limit.
type InvalidZoneError struct {
	Radius int
	Reason string
}

func (e *InvalidZoneError) Error() string {
	return fmt.Sprintf("invalid Brillouin zone calculation at neighbor radius %d: %s", e.Radius, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidBrillouinZone) hold.
func (e *InvalidZoneError) Is(target error) bool {
	return target == ErrInvalidBrillouinZone
}

// InputError reports a malformed request field.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidInput) hold.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}
