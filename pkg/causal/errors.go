package causal

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	ErrUnknownNode        = errors.New("unknown node id")
	ErrInvalidPrior       = errors.New("prior failure probability must be in (0,1)")
	ErrInvalidBelief      = errors.New("belief must be in [0,1]")
	ErrEmptyID            = errors.New("node id is empty")
	ErrUnknownLayer       = errors.New("unknown layer")
	ErrUnknownObservation = errors.New("unknown observation")
)

// LinkError reports a parent->child link that could not be created because one
// or both endpoints are absent from the network. CreateLink swallows it; Link
// returns it.
type LinkError struct {
	ParentID string
	ChildID  string
	Missing  []string // ids not present in the network
	Cause    error
}

// Error implements the error interface.
func (e *LinkError) Error() string {
	return fmt.Sprintf("link %s -> %s: %v (%s)", e.ParentID, e.ChildID, e.Cause, strings.Join(e.Missing, ", "))
}

// Unwrap returns the underlying cause for error chain support.
func (e *LinkError) Unwrap() error {
	return e.Cause
}

// NodeError reports a problem with a single node's data.
type NodeError struct {
	Op    string
	ID    string
	Field string
	Cause error
}

func (e *NodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s node %q (field %s): %v", e.Op, e.ID, e.Field, e.Cause)
	}
	return fmt.Sprintf("%s node %q: %v", e.Op, e.ID, e.Cause)
}

func (e *NodeError) Unwrap() error {
	return e.Cause
}
