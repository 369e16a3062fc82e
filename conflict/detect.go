// Package conflict partitions reviewers' changes into conflicts and independent edits.
package conflict

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/fwojciec/revise"
)

// Detection is the outcome of one detection pass.
type Detection struct {
	// Conflicts are ordered by ascending Start with IDs c1, c2, ...
	Conflicts []revise.Conflict
	// NonConflicting are safe to apply together, ordered by (Start, End).
	NonConflicting []revise.Change
}

// Detector groups overlapping changes across reviewers.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect flattens the per-reviewer change lists and sweeps them in base order.
//
// Each unconsumed change seeds a group; later changes join while their start
// does not pass the group's running end and they overlap any member. A group
// left with a single distinct edit, or touched by a single reviewer, is not a
// conflict. Otherwise each reviewer's members form one proposal, and a
// reviewer proposing exactly what an earlier one did is dropped.
func (d *Detector) Detect(changeLists [][]revise.Change) Detection {
	var all []revise.Change
	for _, list := range changeLists {
		all = append(all, list...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Start != all[j].Start {
			return all[i].Start < all[j].Start
		}
		return all[i].End < all[j].End
	})

	var result Detection
	consumed := make([]bool, len(all))
	for i := range all {
		if consumed[i] {
			continue
		}
		consumed[i] = true
		group := grow(all, consumed, i)

		reviewers := mapset.NewThreadUnsafeSet[string]()
		for _, c := range group {
			reviewers.Add(c.Reviewer)
		}
		distinct := collapse(group)
		if len(distinct) == 1 || reviewers.Cardinality() < 2 {
			result.NonConflicting = append(result.NonConflicting, distinct...)
			continue
		}
		members, proposals := proposals(group)
		if proposals == 1 {
			result.NonConflicting = append(result.NonConflicting, members...)
			continue
		}
		result.Conflicts = append(result.Conflicts, newConflict(members))
	}

	sort.SliceStable(result.Conflicts, func(i, j int) bool {
		return result.Conflicts[i].Start < result.Conflicts[j].Start
	})
	for i := range result.Conflicts {
		result.Conflicts[i].ID = fmt.Sprintf("c%d", i+1)
	}
	result.NonConflicting = dedup(result.NonConflicting)
	return result
}

// grow collects the group seeded by all[seed], marking members consumed.
// The scan repeats until the group stops growing so that a change skipped
// early still joins through a member added after it.
func grow(all []revise.Change, consumed []bool, seed int) []revise.Change {
	group := []revise.Change{all[seed]}
	end := all[seed].End
	for grew := true; grew; {
		grew = false
		for j := seed + 1; j < len(all) && all[j].Start <= end; j++ {
			if consumed[j] || !overlapsAny(group, all[j]) {
				continue
			}
			consumed[j] = true
			group = append(group, all[j])
			end = max(end, all[j].End)
			grew = true
		}
	}
	return group
}

func overlapsAny(group []revise.Change, c revise.Change) bool {
	for _, m := range group {
		if m.Overlaps(c) {
			return true
		}
	}
	return false
}

// collapse keeps the first of every set of identical edits.
func collapse(group []revise.Change) []revise.Change {
	var out []revise.Change
	for _, c := range group {
		dup := false
		for _, kept := range out {
			if kept.SameEdit(c) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// proposals keeps the members of every reviewer whose edits differ from
// all earlier reviewers' in the group, in group order, and counts them.
func proposals(group []revise.Change) ([]revise.Change, int) {
	var order []string
	byReviewer := make(map[string][]revise.Change)
	for _, c := range group {
		if _, ok := byReviewer[c.Reviewer]; !ok {
			order = append(order, c.Reviewer)
		}
		byReviewer[c.Reviewer] = append(byReviewer[c.Reviewer], c)
	}

	kept := mapset.NewThreadUnsafeSet[string]()
	var keptLists [][]revise.Change
	for _, r := range order {
		list := byReviewer[r]
		dup := false
		for _, k := range keptLists {
			if sameEdits(k, list) {
				dup = true
				break
			}
		}
		if !dup {
			kept.Add(r)
			keptLists = append(keptLists, list)
		}
	}

	var members []revise.Change
	for _, c := range group {
		if kept.Contains(c.Reviewer) {
			members = append(members, c)
		}
	}
	return members, kept.Cardinality()
}

func sameEdits(a, b []revise.Change) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].SameEdit(b[i]) {
			return false
		}
	}
	return true
}

// newConflict builds a conflict spanning the union of its members. Members
// overlap pairwise through the group, so the union is contiguous and every
// byte of it is covered by some member's old text.
func newConflict(members []revise.Change) revise.Conflict {
	start, end := members[0].Start, members[0].End
	for _, m := range members[1:] {
		start = min(start, m.Start)
		end = max(end, m.End)
	}
	original := make([]byte, end-start)
	for _, m := range members {
		copy(original[m.Start-start:], m.OldText)
	}
	return revise.Conflict{
		Start:    start,
		End:      end,
		Original: string(original),
		Changes:  members,
	}
}

type signature struct {
	start, end int
	kind       revise.ChangeKind
	newText    string
}

// dedup drops repeated (start, end, kind, newText) edits and sorts the rest.
func dedup(changes []revise.Change) []revise.Change {
	seen := make(map[signature]bool, len(changes))
	var out []revise.Change
	for _, c := range changes {
		sig := signature{start: c.Start, end: c.End, kind: c.Kind, newText: c.NewText}
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}
