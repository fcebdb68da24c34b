package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a query references an airport id absent from the graph.
	ErrNotFound = errors.New("airport not found")
	// ErrInvalidArgument is returned for self-loop routes, empty seed lists,
	// negative result sizes and malformed airport records.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSealed is returned when a Builder is used after Build.
	ErrSealed = errors.New("graph builder already sealed")
)

func notFound(id int) error {
	return fmt.Errorf("airport %d: %w", id, ErrNotFound)
}
