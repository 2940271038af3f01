package sequencer

import (
	"fmt"

	"github.com/Southclaws/fault/ftag"

	"go-midicnc/config"
)

// EnvelopeViolation tags the fatal error raised when no direction of travel
// stays inside the safe envelope
const EnvelopeViolation ftag.Kind = "envelope_violation"

// Limit is the Envelope Guard's verdict on a proposed move
type Limit int

const (
	WithinLimits Limit = iota
	MustReverse
	Fatal
)

func (l Limit) String() string {
	switch l {
	case WithinLimits:
		return "within limits"
	case MustReverse:
		return "must reverse"
	default:
		return "fatal"
	}
}

// ReachedLimit decides whether moving distance from current stays strictly
// inside (min, max), would be safe only in reverse, or is impossible.
// Turn around BEFORE crossing the edge: reaching max or min exactly counts
// as crossing it.
func ReachedLimit(current, distance, min, max float64) Limit {
	ahead := current + distance
	back := current - distance

	switch {
	case ahead < max && ahead > min:
		return WithinLimits
	case ahead >= max && back > min:
		return MustReverse
	case ahead <= min && back < max:
		return MustReverse
	default:
		return Fatal
	}
}

// EnvelopeError describes the movement that could not be completed
type EnvelopeError struct {
	Time     int64
	Pitch    uint8
	Axis     config.Axis
	Position float64
	Distance float64
	Min      float64
	Max      float64
}

func (e *EnvelopeError) Error() string {
	return fmt.Sprintf("move of %.4f on %s from %.4f at tick %d (note %d) leaves envelope [%.3f, %.3f] in both directions",
		e.Distance, e.Axis, e.Position, e.Time, e.Pitch, e.Min, e.Max)
}
