package revise

import "time"

// Reviewer is one independently edited copy of the base text.
type Reviewer struct {
	ID       string
	Text     string
	Comments []Comment
}

// Stats summarises a merge run. Every field is derived from the run's output.
type Stats struct {
	Reviewers      int `json:"reviewers"`
	Extracted      int `json:"extracted"` // Changes recovered before duplicates were collapsed
	Total          int `json:"total"`
	NonConflicting int `json:"non_conflicting"`
	Conflicts      int `json:"conflicts"`
	Resolved       int `json:"resolved"` // Persisted decisions applied during the run
}

// NewStats derives run statistics. Total always equals the non-conflicting
// count plus the members of every remaining conflict.
func NewStats(reviewers, extracted, resolved int, nonConflicting []Change, conflicts []Conflict) Stats {
	members := 0
	for _, c := range conflicts {
		members += len(c.Changes)
	}
	return Stats{
		Reviewers:      reviewers,
		Extracted:      extracted,
		Total:          len(nonConflicting) + members,
		NonConflicting: len(nonConflicting),
		Conflicts:      len(conflicts),
		Resolved:       resolved,
	}
}

// MergeResult is the output of one merge run. Offsets in Changes and
// Conflicts refer to the raw base text.
type MergeResult struct {
	MergedText string
	Changes    []Change
	Conflicts  []Conflict
	Stats      Stats
}

// JournalEntry records one merge run in the merge history.
type JournalEntry struct {
	RunID       string    `json:"run_id"`
	Base        string    `json:"base"`
	MergedAt    time.Time `json:"merged_at"`
	Granularity string    `json:"granularity"`
	Reviewers   []string  `json:"reviewers"`
	Stats       Stats     `json:"stats"`
}

// Journal persists and retrieves merge history.
type Journal interface {
	Append(path string, entry JournalEntry) error
	Load(path string) ([]JournalEntry, error)
}
