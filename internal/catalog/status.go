package catalog

import (
	"errors"
	"fmt"
)

// Status is a stage in the publication lifecycle.
type Status string

// Lifecycle stages. Items move forward through
// inbox, shortlisted, scheduled, posted, and may be dropped from any
// non-terminal stage. Creation normally starts at inbox; a driver may create
// directly at a later stage (issue ingestion creates at scheduled).
const (
	StatusInbox       Status = "inbox"
	StatusShortlisted Status = "shortlisted"
	StatusScheduled   Status = "scheduled"
	StatusPosted      Status = "posted"
	StatusDropped     Status = "dropped"
)

// ErrInvalidTransition is returned for any status edge not on the lifecycle
// graph.
var ErrInvalidTransition = errors.New("invalid status transition")

// stageOrder ranks the forward stages. Terminal states have no outgoing
// edges.
var stageOrder = map[Status]int{
	StatusInbox:       0,
	StatusShortlisted: 1,
	StatusScheduled:   2,
	StatusPosted:      3,
}

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusPosted || s == StatusDropped
}

// Valid reports whether s is one of the known lifecycle stages.
func (s Status) Valid() bool {
	if s == StatusDropped {
		return true
	}
	_, ok := stageOrder[s]
	return ok
}

// CanTransition reports whether the move from one stage to another is on
// the lifecycle graph: any
// strictly forward move between stages, or a drop from a non-terminal stage.
// Reversals and self-transitions are rejected.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if to == StatusDropped {
		return !from.IsTerminal()
	}
	if from.IsTerminal() {
		return false
	}
	return stageOrder[to] > stageOrder[from]
}

// Transition advances the item to the requested stage, rejecting any edge
// not on the lifecycle graph.
func (i *Item) Transition(to Status) error {
	if !CanTransition(i.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.Status, to)
	}
	i.Status = to
	return nil
}
