// Package merge orchestrates one merge run: mask, extract per reviewer,
// detect conflicts, render and unmask.
package merge

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/annotate"
	"github.com/fwojciec/revise/conflict"
	"github.com/fwojciec/revise/extract"
	"github.com/fwojciec/revise/protect"
	"github.com/fwojciec/revise/tokenize"
	"golang.org/x/sync/errgroup"
)

// Input errors, wrapped in a *revise.InputError naming the input.
var (
	ErrNoReviewers       = errors.New("no reviewer texts")
	ErrEmptyReviewerID   = errors.New("empty reviewer id")
	ErrDuplicateReviewer = errors.New("duplicate reviewer id")
	ErrInvalidUTF8       = errors.New("text is not valid UTF-8")
)

// State is a step of a merge run. A run only moves forward.
type State int

// Merge states.
const (
	Idle State = iota
	Masking
	Extracting
	Detecting
	Rendering
	Unmasking
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Masking:
		return "masking"
	case Extracting:
		return "extracting"
	case Detecting:
		return "detecting"
	case Rendering:
		return "rendering"
	case Unmasking:
		return "unmasking"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a merge run.
type Options struct {
	// Granularity defaults to sentences.
	Granularity revise.Granularity
	// Workers bounds parallel extraction. Zero means GOMAXPROCS.
	Workers int
	// Resolutions are conflicts from an earlier run. Resolved ones that
	// match a detected conflict are applied in its place.
	Resolutions []revise.Conflict
	// Accept applies non-conflicting changes without markup.
	Accept bool
	// Logger defaults to discarding output.
	Logger *slog.Logger
	// OnState is called on entry to every state after Idle.
	OnState func(State)
}

// Coordinator runs merges. It holds no per-run state and is safe for concurrent use.
type Coordinator struct {
	detector *conflict.Detector
}

// NewCoordinator creates a new Coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{detector: conflict.NewDetector()}
}

// Merge combines every reviewer's edits of base. Offsets in the result refer
// to the raw base text. Any failure aborts the run without a result.
func (c *Coordinator) Merge(base string, reviewers []revise.Reviewer, opts Options) (*revise.MergeResult, error) {
	if err := validate(base, reviewers); err != nil {
		return nil, err
	}
	r := newRun(opts)
	started := time.Now()

	r.enter(Masking)
	corpus := make([]string, 0, len(reviewers)+1)
	corpus = append(corpus, base)
	for _, rev := range reviewers {
		corpus = append(corpus, rev.Text)
	}
	guard := protect.NewGuard(corpus...)
	maskedBase, _ := guard.Mask(base)
	masked := make([]string, len(reviewers))
	for i, rev := range reviewers {
		masked[i], _ = guard.Mask(rev.Text)
	}
	spans := guard.Spans()
	mapper := guard.Mapper(maskedBase)
	r.logger.Debug("masked protected spans", "spans", len(spans))

	r.enter(Extracting)
	extractor := extract.NewExtractor(spans)
	lists := make([][]revise.Change, len(reviewers))
	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, rev := range reviewers {
		g.Go(func() error {
			lists[i] = extractor.Extract(maskedBase, masked[i], rev.ID, r.granularity)
			r.logger.Debug("extracted changes", "reviewer", rev.ID, "changes", len(lists[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	extracted := 0
	for _, list := range lists {
		extracted += len(list)
	}

	r.enter(Detecting)
	detection := c.detector.Detect(lists)
	changes, conflicts, resolved := r.applyResolutions(detection, mapper)
	for i := range conflicts {
		conflicts[i].ID = fmt.Sprintf("c%d", i+1)
	}

	r.enter(Rendering)
	var renderOpts []annotate.Option
	if opts.Accept {
		renderOpts = append(renderOpts, annotate.WithPlainChanges())
	}
	rendered, err := annotate.NewRenderer(renderOpts...).Render(maskedBase, changes, conflicts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	r.enter(Unmasking)
	merged := protect.Unmask(rendered, spans)
	merged = annotate.AttachComments(merged, comments(base, reviewers))

	result := &revise.MergeResult{
		MergedText: merged,
		Changes:    mapper.Changes(changes),
		Conflicts:  mapper.Conflicts(conflicts),
		Stats:      revise.NewStats(len(reviewers), extracted, resolved, changes, conflicts),
	}
	r.enter(Done)
	r.logger.Info("merge complete",
		"reviewers", result.Stats.Reviewers,
		"changes", result.Stats.NonConflicting,
		"conflicts", result.Stats.Conflicts,
		"resolved", result.Stats.Resolved,
		"elapsed", time.Since(started))
	return result, nil
}

// run carries the settings of one merge.
type run struct {
	granularity revise.Granularity
	workers     int
	resolutions []revise.Conflict
	logger      *slog.Logger
	onState     func(State)
}

func newRun(opts Options) *run {
	r := &run{
		granularity: opts.Granularity,
		workers:     opts.Workers,
		logger:      opts.Logger,
		onState:     opts.OnState,
	}
	if r.granularity == nil {
		r.granularity, _ = tokenize.Lookup(tokenize.Default)
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	for _, p := range opts.Resolutions {
		if p.IsResolved() {
			r.resolutions = append(r.resolutions, p)
		}
	}
	return r
}

func (r *run) enter(s State) {
	r.logger.Debug("merge state", "state", s)
	if r.onState != nil {
		r.onState(s)
	}
}

// applyResolutions replaces detected conflicts that an earlier run already
// resolved by their winning change. Conflicts are compared in raw base
// coordinates because masking may differ between runs.
func (r *run) applyResolutions(d conflict.Detection, mapper *protect.Mapper) ([]revise.Change, []revise.Conflict, int) {
	changes := d.NonConflicting
	if len(r.resolutions) == 0 {
		return changes, d.Conflicts, 0
	}

	used := make([]bool, len(r.resolutions))
	var remaining []revise.Conflict
	resolved := 0
	for _, detected := range d.Conflicts {
		raw := mapper.Conflict(detected)
		match := -1
		for i, p := range r.resolutions {
			if !used[i] && raw.SameAs(p) {
				match = i
				break
			}
		}
		if match < 0 {
			remaining = append(remaining, detected)
			continue
		}
		used[match] = true
		resolved++

		detected.Resolved = r.resolutions[match].Resolved
		changes = append(changes, detected.Winners()...)
		r.logger.Debug("applied resolution", "conflict", r.resolutions[match].ID, "winner", *detected.Resolved)
	}
	for i, p := range r.resolutions {
		if !used[i] {
			r.logger.Warn("resolution no longer matches a conflict", "conflict", p.ID)
		}
	}

	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Start != changes[j].Start {
			return changes[i].Start < changes[j].Start
		}
		return changes[i].End < changes[j].End
	})
	return changes, remaining, resolved
}

// validate rejects inputs the engine cannot merge, naming the offending one.
func validate(base string, reviewers []revise.Reviewer) error {
	if !utf8.ValidString(base) {
		return &revise.InputError{Input: "base", Err: ErrInvalidUTF8}
	}
	if len(reviewers) == 0 {
		return &revise.InputError{Input: "reviewers", Err: ErrNoReviewers}
	}
	seen := make(map[string]bool, len(reviewers))
	for i, rev := range reviewers {
		if rev.ID == "" {
			return &revise.InputError{Input: fmt.Sprintf("reviewer #%d", i+1), Err: ErrEmptyReviewerID}
		}
		if seen[rev.ID] {
			return &revise.InputError{Input: rev.ID, Err: ErrDuplicateReviewer}
		}
		seen[rev.ID] = true
		if !utf8.ValidString(rev.Text) {
			return &revise.InputError{Input: rev.ID, Err: ErrInvalidUTF8}
		}
	}
	return nil
}

// comments collects reviewer remarks, attributing unsigned ones to their
// reviewer. Remarks the base already carries are not attached again.
func comments(base string, reviewers []revise.Reviewer) []revise.Comment {
	var out []revise.Comment
	for _, rev := range reviewers {
		for _, c := range rev.Comments {
			if c.Author == "" {
				c.Author = rev.ID
			}
			if strings.Contains(base, annotate.Note(c)) {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}
