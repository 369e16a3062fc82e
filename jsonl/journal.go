// Package jsonl keeps the merge history as JSON lines, one entry per run.
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/revise"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ revise.Journal = (*Journal)(nil)

// JournalSuffix is appended to a base document's path to name its history file.
const JournalSuffix = ".history.jsonl"

// JournalPath returns the history path stored next to base.
func JournalPath(base string) string {
	return base + JournalSuffix
}

// Journal appends and reads JournalEntry records.
type Journal struct{}

// NewJournal creates a new Journal.
func NewJournal() *Journal {
	return &Journal{}
}

// NewEntry returns an entry for a finished run with a fresh run id.
func NewEntry(base, granularity string, reviewers []string, stats revise.Stats, at time.Time) revise.JournalEntry {
	return revise.JournalEntry{
		RunID:       uuid.NewString(),
		Base:        base,
		MergedAt:    at.UTC(),
		Granularity: granularity,
		Reviewers:   reviewers,
		Stats:       stats,
	}
}

// Append adds entry to the JSONL file, creating parent directories if needed.
func (j *Journal) Append(path string, entry revise.JournalEntry) error {
	if entry.RunID == "" {
		return errors.New("journal entry has no run id")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}

	return nil
}

// Load reads every entry in file order. Returns empty slice if file doesn't exist.
func (j *Journal) Load(path string) ([]revise.JournalEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []revise.JournalEntry
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var e revise.JournalEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if _, err := uuid.Parse(e.RunID); err != nil {
			return nil, fmt.Errorf("line %d: run id: %w", lineNum, err)
		}
		entries = append(entries, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
