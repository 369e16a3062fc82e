package merge

import (
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/revise"
)

// Resolution errors.
var (
	ErrConflictNotFound = errors.New("conflict not found")
	ErrChoiceOutOfRange = errors.New("choice out of range")
)

// Resolve records a decision for conflict id. Choice 0 keeps the original
// text; 1..n picks that reviewer's alternative, numbered as Alternatives
// returns them.
func Resolve(record *revise.ConflictRecord, id string, choice int) error {
	c, err := find(record, id)
	if err != nil {
		return err
	}
	alts := c.Alternatives()
	if choice < 0 || choice > len(alts) {
		return fmt.Errorf("conflict %s: choice %d not in 0..%d: %w", id, choice, len(alts), ErrChoiceOutOfRange)
	}
	winner := revise.KeepOriginal
	if choice > 0 {
		winner = alts[choice-1].Reviewer
	}
	c.Resolved = &winner
	return nil
}

// Unresolve clears the decision for conflict id.
func Unresolve(record *revise.ConflictRecord, id string) error {
	c, err := find(record, id)
	if err != nil {
		return err
	}
	c.Resolved = nil
	return nil
}

// Choice returns the choice number recorded for c: 0 for the original,
// 1..n for an alternative, -1 when undecided.
func Choice(c revise.Conflict) int {
	if c.Resolved == nil {
		return -1
	}
	for i, a := range c.Alternatives() {
		if a.Reviewer == *c.Resolved {
			return i + 1
		}
	}
	return 0
}

func find(record *revise.ConflictRecord, id string) (*revise.Conflict, error) {
	for i := range record.Conflicts {
		if record.Conflicts[i].ID == id {
			return &record.Conflicts[i], nil
		}
	}
	return nil, fmt.Errorf("conflict %s: %w", id, ErrConflictNotFound)
}

// NewRecord builds the record persisted after a run: the conflicts left open.
func NewRecord(base string, result *revise.MergeResult, merged time.Time) *revise.ConflictRecord {
	conflicts := result.Conflicts
	if conflicts == nil {
		conflicts = []revise.Conflict{}
	}
	return &revise.ConflictRecord{
		Base:      base,
		Merged:    merged.UTC(),
		Conflicts: conflicts,
	}
}
