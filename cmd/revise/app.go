package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/config"
	"github.com/fwojciec/revise/fs"
	"github.com/fwojciec/revise/jsonl"
	"github.com/fwojciec/revise/merge"
	"github.com/fwojciec/revise/tokenize"
	"github.com/sanity-io/litter"
)

// Command errors.
var (
	ErrNoConflicts = errors.New("no conflicts recorded")
	ErrStaleRecord = errors.New("conflict record no longer matches the base")
	ErrBadPick     = errors.New("pick must look like c1=2")
)

// App encapsulates the application logic for testing.
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	Config      *config.Config
	Logger      *slog.Logger
	Coordinator *merge.Coordinator

	Extractor revise.TextExtractor // Reviewer copies in markdown or text
	// Patches builds the extractor for reviewer copies given as unified
	// diffs against base.
	Patches  func(base string) revise.TextExtractor
	Git      revise.GitRunner
	Store    revise.ConflictStore
	Journal  revise.Journal
	Resolver revise.ConflictResolver

	// Color enables coloured status output.
	Color bool
	Now   func() time.Time
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return a.Logger
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) config() *config.Config {
	if a.Config == nil {
		return config.NewDefaultConfig()
	}
	return a.Config
}

// MergeOptions holds command-line overrides for a merge.
type MergeOptions struct {
	// Accept applies non-conflicting changes without markup.
	Accept bool
	// NoRecord skips writing the conflict record and the journal.
	NoRecord bool
}

// Merge runs the merge job described by m. The merged text goes to
// m.Output, or to Stdout when no output is set.
func (a *App) Merge(ctx context.Context, m *config.Manifest, opts MergeOptions) (*revise.MergeResult, error) {
	log := a.logger()
	cfg := a.config()

	base, err := a.loadBase(ctx, m)
	if err != nil {
		return nil, err
	}
	basePath := m.Base
	if m.BaseRev != "" {
		basePath = filepath.Join(m.Repo, m.Base)
	}
	recordPath := m.Record
	if recordPath == "" {
		recordPath = fs.RecordPath(basePath)
	}

	previous, err := a.Store.Load(recordPath)
	if err != nil {
		return nil, fmt.Errorf("load conflict record: %w", err)
	}

	reviewers := make([]revise.Reviewer, 0, len(m.Reviewers))
	for _, r := range m.Reviewers {
		extractor := a.Extractor
		if r.IsPatch() {
			if a.Patches == nil {
				return nil, &revise.InputError{Input: r.ID, Err: errors.New("patch reviewers are not supported")}
			}
			extractor = a.Patches(base)
		}
		doc, err := extractor.Extract(ctx, r.Path)
		if err != nil {
			return nil, &revise.InputError{Input: r.ID, Err: err}
		}
		reviewers = append(reviewers, revise.Reviewer{ID: r.ID, Text: doc.Text, Comments: doc.Comments})
		log.Debug("loaded reviewer", "reviewer", r.ID, "path", r.Path, "comments", len(doc.Comments))
	}

	granularityName := m.Granularity
	if granularityName == "" {
		granularityName = cfg.Merge.Granularity
	}
	granularity, err := tokenize.Lookup(granularityName)
	if err != nil {
		return nil, err
	}

	result, err := a.Coordinator.Merge(base, reviewers, merge.Options{
		Granularity: granularity,
		Workers:     cfg.Merge.Workers,
		Resolutions: previous.Conflicts,
		Accept:      opts.Accept,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	if err := a.writeOutput(m.Output, result.MergedText); err != nil {
		return nil, err
	}

	if !opts.NoRecord {
		merged := a.now()
		if err := a.Store.Save(recordPath, merge.NewRecord(m.Base, result, merged)); err != nil {
			return nil, fmt.Errorf("save conflict record: %w", err)
		}
		ids := make([]string, len(reviewers))
		for i, r := range reviewers {
			ids[i] = r.ID
		}
		entry := jsonl.NewEntry(m.Base, granularity.Name(), ids, result.Stats, merged)
		if err := a.Journal.Append(jsonl.JournalPath(basePath), entry); err != nil {
			// The merged text is already written; history is best-effort.
			log.Warn("could not append to merge history", "error", err)
		}
	}

	s := result.Stats
	fmt.Fprintf(a.Stderr, "merged %d reviewers: %d changes, %d conflicts", s.Reviewers, s.NonConflicting, s.Conflicts)
	if s.Resolved > 0 {
		fmt.Fprintf(a.Stderr, " (%d resolved from record)", s.Resolved)
	}
	fmt.Fprintln(a.Stderr)
	return result, nil
}

func (a *App) loadBase(ctx context.Context, m *config.Manifest) (string, error) {
	if m.BaseRev != "" {
		text, err := a.Git.ShowFile(ctx, m.Repo, m.BaseRev, m.Base)
		if err != nil {
			return "", &revise.InputError{Input: "base", Err: err}
		}
		return text, nil
	}
	return readBase(m.Base)
}

// readBase reads a base text from disk. A leading byte order mark is dropped.
func readBase(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &revise.InputError{Input: "base", Err: err}
	}
	if !utf8.Valid(data) {
		return "", &revise.InputError{Input: "base", Err: merge.ErrInvalidUTF8}
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}

func (a *App) writeOutput(path, text string) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(a.Stdout, text)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

// Diff prints the changes one reviewer copy makes to base, without
// detecting conflicts or writing anything.
func (a *App) Diff(ctx context.Context, basePath string, review config.ManifestReview, granularity string, dump bool) error {
	result, err := a.Merge(ctx, &config.Manifest{
		Base:        basePath,
		Reviewers:   []config.ManifestReview{review},
		Granularity: granularity,
		Output:      os.DevNull,
	}, MergeOptions{NoRecord: true})
	if err != nil {
		return err
	}
	if dump {
		_, err := fmt.Fprintln(a.Stdout, litter.Sdump(result.Changes))
		return err
	}
	for _, ch := range result.Changes {
		fmt.Fprintf(a.Stdout, "%-7s %d-%d %s\n", ch.Kind, ch.Start, ch.End, describe(ch))
	}
	if len(result.Changes) == 0 {
		fmt.Fprintf(a.Stdout, "%s makes no changes to %s\n", review.ID, basePath)
	}
	return nil
}

func describe(ch revise.Change) string {
	switch ch.Kind {
	case revise.Insert:
		return fmt.Sprintf("%q", ch.NewText)
	case revise.Delete:
		return fmt.Sprintf("%q", ch.OldText)
	default:
		return fmt.Sprintf("%q → %q", ch.OldText, ch.NewText)
	}
}

// Status reports the decisions recorded for base and checks the record
// still fits the base text.
func (a *App) Status(basePath, recordPath string) error {
	base, record, err := a.loadRecord(basePath, recordPath)
	if err != nil {
		return err
	}

	open := color.New(color.FgYellow)
	done := color.New(color.FgGreen)
	bad := color.New(color.FgRed, color.Bold)
	for _, c := range []*color.Color{open, done, bad} {
		if a.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	if len(record.Conflicts) == 0 {
		fmt.Fprintf(a.Stdout, "%s: no open conflicts\n", basePath)
		return nil
	}
	for _, c := range record.Conflicts {
		state := open.Sprint("open")
		if c.IsResolved() {
			state = done.Sprintf("→ %s", *c.Resolved)
		}
		fmt.Fprintf(a.Stdout, "%-4s bytes %d-%d  %s  %s\n", c.ID, c.Start, c.End, strings.Join(c.Reviewers(), ", "), state)
	}
	fmt.Fprintf(a.Stdout, "%d of %d conflicts resolved\n", len(record.Resolved()), len(record.Conflicts))

	problems := revise.ValidateRecord(base, record)
	for _, p := range problems {
		fmt.Fprintln(a.Stdout, bad.Sprint(p.Error()))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", basePath, ErrStaleRecord)
	}
	return nil
}

// Resolve records decisions for the conflicts of base. Picks like "c1=2"
// are applied directly; without picks the interactive resolver is opened.
func (a *App) Resolve(ctx context.Context, basePath, recordPath string, picks []string) error {
	base, record, err := a.loadRecord(basePath, recordPath)
	if err != nil {
		return err
	}
	if len(record.Conflicts) == 0 {
		return fmt.Errorf("%s: %w", basePath, ErrNoConflicts)
	}
	if problems := revise.ValidateRecord(base, record); len(problems) > 0 {
		return fmt.Errorf("%s: %w: %v", basePath, ErrStaleRecord, problems[0])
	}

	if len(picks) > 0 {
		for _, p := range picks {
			id, choice, err := parsePick(p)
			if err != nil {
				return err
			}
			if err := merge.Resolve(record, id, choice); err != nil {
				return err
			}
		}
	} else {
		record, err = a.Resolver.Resolve(ctx, base, record)
		if err != nil {
			return err
		}
	}

	if recordPath == "" {
		recordPath = fs.RecordPath(basePath)
	}
	if err := a.Store.Save(recordPath, record); err != nil {
		return fmt.Errorf("save conflict record: %w", err)
	}
	fmt.Fprintf(a.Stderr, "%d of %d conflicts resolved; merge again to apply them\n", len(record.Resolved()), len(record.Conflicts))
	return nil
}

func parsePick(s string) (string, int, error) {
	id, n, ok := strings.Cut(s, "=")
	if !ok || id == "" {
		return "", 0, fmt.Errorf("%q: %w", s, ErrBadPick)
	}
	var choice int
	if _, err := fmt.Sscanf(n, "%d", &choice); err != nil {
		return "", 0, fmt.Errorf("%q: %w", s, ErrBadPick)
	}
	return strings.TrimSpace(id), choice, nil
}

func (a *App) loadRecord(basePath, recordPath string) (string, *revise.ConflictRecord, error) {
	base, err := readBase(basePath)
	if err != nil {
		return "", nil, err
	}
	if recordPath == "" {
		recordPath = fs.RecordPath(basePath)
	}
	record, err := a.Store.Load(recordPath)
	if err != nil {
		return "", nil, fmt.Errorf("load conflict record: %w", err)
	}
	return base, record, nil
}

// History prints the merge runs journalled for base, oldest first.
func (a *App) History(basePath string) error {
	entries, err := a.Journal.Load(jsonl.JournalPath(basePath))
	if err != nil {
		return fmt.Errorf("load merge history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintf(a.Stdout, "%s: no merges recorded\n", basePath)
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(a.Stdout, "%s  %s  %-8s  %s  changes=%d conflicts=%d resolved=%d\n",
			e.MergedAt.Format(time.DateTime), shortID(e.RunID), e.Granularity,
			strings.Join(e.Reviewers, ","), e.Stats.NonConflicting, e.Stats.Conflicts, e.Stats.Resolved)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
