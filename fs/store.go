package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fwojciec/revise"
)

// Compile-time interface verification.
var _ revise.ConflictStore = (*ConflictStore)(nil)

// ErrMalformedRecord is returned by a strict store for a record that cannot be decoded.
var ErrMalformedRecord = errors.New("malformed conflict record")

// ConflictStore keeps conflict records as indented JSON files.
//
// A missing file is an empty record. A file that exists but cannot be
// decoded is also read as an empty record, with a warning, unless the store
// is strict, in which case Load fails so the unresolved state is not lost.
type ConflictStore struct {
	strict bool
	logger *slog.Logger
}

// StoreOption configures a ConflictStore.
type StoreOption func(*ConflictStore)

// WithStrict makes Load fail on malformed records.
func WithStrict(strict bool) StoreOption {
	return func(s *ConflictStore) {
		s.strict = strict
	}
}

// WithLogger sets the logger used for malformed-record warnings.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *ConflictStore) {
		s.logger = logger
	}
}

// NewConflictStore creates a new ConflictStore.
func NewConflictStore(opts ...StoreOption) *ConflictStore {
	s := &ConflictStore{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Load reads the record at path.
func (s *ConflictStore) Load(path string) (*revise.ConflictRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &revise.ConflictRecord{Conflicts: []revise.Conflict{}}, nil
	}
	if err != nil {
		return nil, err
	}

	var record revise.ConflictRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return s.malformed(path, err)
	}
	if err := validateChanges(&record); err != nil {
		return s.malformed(path, err)
	}
	if record.Conflicts == nil {
		record.Conflicts = []revise.Conflict{}
	}
	return &record, nil
}

func (s *ConflictStore) malformed(path string, err error) (*revise.ConflictRecord, error) {
	if s.strict {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrMalformedRecord, err)
	}
	s.logger.Warn("ignoring malformed conflict record", "path", path, "error", err)
	return &revise.ConflictRecord{Conflicts: []revise.Conflict{}}, nil
}

// validateChanges rejects members that violate the change invariants.
func validateChanges(record *revise.ConflictRecord) error {
	for _, c := range record.Conflicts {
		for _, ch := range c.Changes {
			if err := ch.Validate(); err != nil {
				return fmt.Errorf("conflict %s: %w", c.ID, err)
			}
		}
	}
	return nil
}

// Save writes record to path atomically.
func (s *ConflictStore) Save(path string, record *revise.ConflictRecord) error {
	out := *record
	if out.Conflicts == nil {
		out.Conflicts = []revise.Conflict{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(path, append(data, '\n'))
}
