package search

import "errors"

var (
	// ErrInvalidQuery is returned when a query has neither text nor a
	// topography filter selection. Callers surface it, never retry it.
	ErrInvalidQuery = errors.New("query text and filter selection cannot both be empty")

	// ErrInvalidFilterSelection is returned when a Group or Site is
	// selected without its required ancestor, references an unknown
	// node, or does not belong to the selected parent.
	ErrInvalidFilterSelection = errors.New("invalid topography filter selection")
)
