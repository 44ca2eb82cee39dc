package timerange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("end time must be after start time")
	ErrNotInFuture  = errors.New("start time must be in the future")
)

// Normalize truncates t to whole-minute precision. All scheduling decisions
// are made on normalized values so that sub-minute noise in client input
// cannot produce ranges that look distinct but occupy the same minutes.
func Normalize(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// Validate checks a candidate half-open range [start, end) against now.
// Inputs are expected to be normalized with Normalize first. A range whose
// start equals now is not considered future.
func Validate(start, end, now time.Time) error {
	if !end.After(start) {
		return ErrInvalidRange
	}
	if !start.After(now) {
		return ErrNotInFuture
	}
	return nil
}

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) share any instant. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
