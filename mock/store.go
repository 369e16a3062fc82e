package mock

import "github.com/fwojciec/revise"

// Compile-time interface verification.
var (
	_ revise.ConflictStore = (*ConflictStore)(nil)
	_ revise.Journal       = (*Journal)(nil)
)

// ConflictStore is a mock implementation of revise.ConflictStore.
type ConflictStore struct {
	LoadFn func(path string) (*revise.ConflictRecord, error)
	SaveFn func(path string, record *revise.ConflictRecord) error
}

func (s *ConflictStore) Load(path string) (*revise.ConflictRecord, error) {
	return s.LoadFn(path)
}

func (s *ConflictStore) Save(path string, record *revise.ConflictRecord) error {
	return s.SaveFn(path, record)
}

// Journal is a mock implementation of revise.Journal.
type Journal struct {
	AppendFn func(path string, entry revise.JournalEntry) error
	LoadFn   func(path string) ([]revise.JournalEntry, error)
}

func (j *Journal) Append(path string, entry revise.JournalEntry) error {
	return j.AppendFn(path, entry)
}

func (j *Journal) Load(path string) ([]revise.JournalEntry, error) {
	return j.LoadFn(path)
}
