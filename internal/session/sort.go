package session

import (
	"errors"
	"strings"
)

var ErrInvalidSort = errors.New("sort must be one of start_time, end_time, id with optional asc/desc direction")

// Sort describes a listing order. Column is restricted to a whitelist so it
// can be interpolated into SQL.
type Sort struct {
	Column     string
	Descending bool
}

// DefaultSort orders listings by start time, soonest first.
var DefaultSort = Sort{Column: "start_time"}

var sortColumns = map[string]string{
	"start_time": "start_time",
	"end_time":   "end_time",
	"id":         "id",
}

// ParseSort reads a "field,direction" value as sent in the sort query param.
// An empty value yields DefaultSort; an unknown field or direction is
// rejected rather than silently reordered.
func ParseSort(raw string) (Sort, error) {
	if raw == "" {
		return DefaultSort, nil
	}

	field, direction, _ := strings.Cut(raw, ",")

	column, ok := sortColumns[field]
	if !ok {
		return Sort{}, ErrInvalidSort
	}

	switch direction {
	case "", "asc":
		return Sort{Column: column}, nil
	case "desc":
		return Sort{Column: column, Descending: true}, nil
	default:
		return Sort{}, ErrInvalidSort
	}
}

// OrderBy renders the ORDER BY expression, with id as tiebreaker for a
// stable page order.
func (s Sort) OrderBy() string {
	direction := "ASC"
	if s.Descending {
		direction = "DESC"
	}

	if s.Column == "id" {
		return "id " + direction
	}
	return s.Column + " " + direction + ", id ASC"
}
