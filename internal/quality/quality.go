// Package quality grades a reading against the threshold bands the API
// resolved for it.
package quality

import "AmbientSensors.api/internal/models"

// Status is the grade of a single reading.
type Status string

const (
	Good       Status = "good"
	Acceptable Status = "acceptable"
	Poor       Status = "poor"
	Unknown    Status = "unknown"
)

// Band is an inclusive range. A nil bound leaves that side open.
type Band struct {
	Min *float64
	Max *float64
}

// Defined reports whether at least one bound is set.
func (b Band) Defined() bool {
	return b.Min != nil || b.Max != nil
}

// Contains reports whether v lies in the band. An undefined band contains nothing.
func (b Band) Contains(v float64) bool {
	if !b.Defined() {
		return false
	}
	if b.Min != nil && v < *b.Min {
		return false
	}
	if b.Max != nil && v > *b.Max {
		return false
	}
	return true
}

// Classify grades r. The good band is checked before the acceptable band.
func Classify(r models.ReadingWithThresholds) Status {
	good := Band{Min: r.GoodMin, Max: r.GoodMax}
	acceptable := Band{Min: r.AcceptableMin, Max: r.AcceptableMax}

	switch {
	case !good.Defined() && !acceptable.Defined():
		return Unknown
	case good.Contains(r.Value):
		return Good
	case acceptable.Contains(r.Value):
		return Acceptable
	default:
		return Poor
	}
}
