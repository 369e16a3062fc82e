package main_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/revise"
	main "github.com/fwojciec/revise/cmd/revise"
	"github.com/fwojciec/revise/config"
	"github.com/fwojciec/revise/fs"
	"github.com/fwojciec/revise/jsonl"
	"github.com/fwojciec/revise/merge"
	"github.com/fwojciec/revise/mock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const foxBase = "The quick brown fox jumps over the lazy dog.\n"

var fixedNow = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

// workspace writes the base and reviewer copies into a temp dir and
// returns a manifest over them.
func workspace(t *testing.T, reviewers map[string]string) (string, *config.Manifest) {
	t.Helper()
	dir := t.TempDir()
	base := filepath.Join(dir, "paper.md")
	require.NoError(t, os.WriteFile(base, []byte(foxBase), 0o644))

	m := &config.Manifest{Base: base, Granularity: "word"}
	for _, id := range []string{"Alice", "Bob", "Carol"} {
		text, ok := reviewers[id]
		if !ok {
			continue
		}
		path := filepath.Join(dir, id+".md")
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
		m.Reviewers = append(m.Reviewers, config.ManifestReview{ID: id, Path: path})
	}
	return dir, m
}

func realApp(stdout, stderr *bytes.Buffer) *main.App {
	return &main.App{
		Stdout:      stdout,
		Stderr:      stderr,
		Coordinator: merge.NewCoordinator(),
		Extractor:   fs.NewExtractor(),
		Store:       fs.NewConflictStore(fs.WithStrict(true)),
		Journal:     jsonl.NewJournal(),
		Now:         func() time.Time { return fixedNow },
	}
}

var foxReviewers = map[string]string{
	"Alice": "The slow brown fox jumps over the lazy dog.\n",
	"Bob":   "The fast brown fox jumps over the lazy dog.\n",
	"Carol": "The quick brown fox jumps over the sleepy dog.\n",
}

func TestApp_Merge_WritesTextRecordAndHistory(t *testing.T) {
	t.Parallel()

	_, m := workspace(t, foxReviewers)
	var stdout, stderr bytes.Buffer
	app := realApp(&stdout, &stderr)

	result, err := app.Merge(context.Background(), m, main.MergeOptions{})
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "<<<<<<< c1 (original: quick)")
	assert.Contains(t, out, "======= Alice (replace)")
	assert.Contains(t, out, "======= Bob (replace)")
	assert.Contains(t, out, "{~~lazy~>sleepy~~}")
	assert.Equal(t, "merged 3 reviewers: 1 changes, 1 conflicts\n", stderr.String())

	record, err := fs.NewConflictStore().Load(fs.RecordPath(m.Base))
	require.NoError(t, err)
	require.Len(t, record.Conflicts, 1)
	assert.Equal(t, "c1", record.Conflicts[0].ID)
	assert.Equal(t, fixedNow, record.Merged)
	assert.Empty(t, cmp.Diff(result.Conflicts, record.Conflicts))

	history, err := jsonl.NewJournal().Load(jsonl.JournalPath(m.Base))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, history[0].Reviewers)
	assert.Equal(t, "word", history[0].Granularity)
	assert.Equal(t, result.Stats, history[0].Stats)
}

func TestApp_MergeResolveMerge(t *testing.T) {
	t.Parallel()

	_, m := workspace(t, foxReviewers)
	var stdout, stderr bytes.Buffer
	app := realApp(&stdout, &stderr)
	ctx := context.Background()

	_, err := app.Merge(ctx, m, main.MergeOptions{})
	require.NoError(t, err)

	require.NoError(t, app.Resolve(ctx, m.Base, "", []string{"c1=2"}))
	assert.Contains(t, stderr.String(), "1 of 1 conflicts resolved")

	stdout.Reset()
	stderr.Reset()
	result, err := app.Merge(ctx, m, main.MergeOptions{})
	require.NoError(t, err)

	assert.Equal(t, "The {~~quick~>fast~~} brown fox jumps over the {~~lazy~>sleepy~~} dog.\n", stdout.String())
	assert.Equal(t, 1, result.Stats.Resolved)
	assert.Contains(t, stderr.String(), "(1 resolved from record)")

	history, err := jsonl.NewJournal().Load(jsonl.JournalPath(m.Base))
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestApp_Merge_AcceptAndOutputFile(t *testing.T) {
	t.Parallel()

	dir, m := workspace(t, map[string]string{"Carol": foxReviewers["Carol"]})
	m.Output = filepath.Join(dir, "out", "merged.md")
	var stdout, stderr bytes.Buffer

	_, err := realApp(&stdout, &stderr).Merge(context.Background(), m, main.MergeOptions{Accept: true})
	require.NoError(t, err)

	assert.Empty(t, stdout.String())
	data, err := os.ReadFile(m.Output)
	require.NoError(t, err)
	assert.Equal(t, foxReviewers["Carol"], string(data))
}

func TestApp_Merge_BaseFromGit(t *testing.T) {
	t.Parallel()

	var savedPath, journalPath string
	app := &main.App{
		Stdout:      &bytes.Buffer{},
		Stderr:      &bytes.Buffer{},
		Coordinator: merge.NewCoordinator(),
		Extractor: &mock.TextExtractor{
			ExtractFn: func(ctx context.Context, path string) (*revise.Document, error) {
				return &revise.Document{Text: foxReviewers["Alice"]}, nil
			},
		},
		Git: &mock.GitRunner{
			ShowFileFn: func(ctx context.Context, repoPath, rev, path string) (string, error) {
				assert.Equal(t, "/repo", repoPath)
				assert.Equal(t, "v1", rev)
				assert.Equal(t, "drafts/paper.md", path)
				return foxBase, nil
			},
		},
		Store: &mock.ConflictStore{
			LoadFn: func(path string) (*revise.ConflictRecord, error) {
				return &revise.ConflictRecord{}, nil
			},
			SaveFn: func(path string, record *revise.ConflictRecord) error {
				savedPath = path
				assert.Equal(t, "drafts/paper.md", record.Base)
				return nil
			},
		},
		Journal: &mock.Journal{
			AppendFn: func(path string, entry revise.JournalEntry) error {
				journalPath = path
				return nil
			},
		},
	}

	m := &config.Manifest{
		Base: "drafts/paper.md", BaseRev: "v1", Repo: "/repo",
		Reviewers: []config.ManifestReview{{ID: "Alice", Path: "alice.md"}},
	}
	_, err := app.Merge(context.Background(), m, main.MergeOptions{})

	require.NoError(t, err)
	assert.Equal(t, "/repo/drafts/paper.md.conflicts.json", savedPath)
	assert.Equal(t, "/repo/drafts/paper.md.history.jsonl", journalPath)
}

func TestApp_Merge_PatchReviewer(t *testing.T) {
	t.Parallel()

	_, m := workspace(t, nil)
	m.Reviewers = []config.ManifestReview{{ID: "Dana", Path: "dana.patch"}}

	var patchBase, patchPath string
	var stdout bytes.Buffer
	app := realApp(&stdout, &bytes.Buffer{})
	app.Patches = func(base string) revise.TextExtractor {
		patchBase = base
		return &mock.TextExtractor{
			ExtractFn: func(ctx context.Context, path string) (*revise.Document, error) {
				patchPath = path
				return &revise.Document{Text: "The quick brown fox jumps.\n"}, nil
			},
		}
	}

	_, err := app.Merge(context.Background(), m, main.MergeOptions{NoRecord: true})

	require.NoError(t, err)
	assert.Equal(t, foxBase, patchBase)
	assert.Equal(t, "dana.patch", patchPath)
	assert.Contains(t, stdout.String(), "{-- over the lazy dog--}")
}

func TestApp_Merge_ExtractErrorNamesReviewer(t *testing.T) {
	t.Parallel()

	_, m := workspace(t, map[string]string{"Alice": foxReviewers["Alice"]})
	m.Reviewers = append(m.Reviewers, config.ManifestReview{ID: "Bob", Path: filepath.Join(t.TempDir(), "missing.md")})

	_, err := realApp(&bytes.Buffer{}, &bytes.Buffer{}).Merge(context.Background(), m, main.MergeOptions{})

	var inputErr *revise.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "Bob", inputErr.Input)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApp_Merge_NoRecordLeavesNoFiles(t *testing.T) {
	t.Parallel()

	dir, m := workspace(t, foxReviewers)

	_, err := realApp(&bytes.Buffer{}, &bytes.Buffer{}).Merge(context.Background(), m, main.MergeOptions{NoRecord: true})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "paper.md.conflicts.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(dir, "paper.md.history.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApp_Diff(t *testing.T) {
	t.Parallel()

	dir, m := workspace(t, nil)
	alice := filepath.Join(dir, "alice.md")
	require.NoError(t, os.WriteFile(alice, []byte(foxReviewers["Alice"]), 0o644))

	var stdout bytes.Buffer
	app := realApp(&stdout, &bytes.Buffer{})

	err := app.Diff(context.Background(), m.Base, config.ManifestReview{ID: "alice", Path: alice}, "word", false)
	require.NoError(t, err)
	assert.Equal(t, "replace 4-9 \"quick\" → \"slow\"\n", stdout.String())

	stdout.Reset()
	err = app.Diff(context.Background(), m.Base, config.ManifestReview{ID: "alice", Path: alice}, "word", true)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), `Reviewer: "alice"`)
	assert.Contains(t, stdout.String(), `NewText: "slow"`)

	_, err = os.Stat(fs.RecordPath(m.Base))
	assert.ErrorIs(t, err, os.ErrNotExist, "diff never writes a record")
}

func TestApp_Diff_NoChanges(t *testing.T) {
	t.Parallel()

	dir, m := workspace(t, nil)
	same := filepath.Join(dir, "same.md")
	require.NoError(t, os.WriteFile(same, []byte(foxBase), 0o644))

	var stdout bytes.Buffer
	err := realApp(&stdout, &bytes.Buffer{}).Diff(context.Background(), m.Base, config.ManifestReview{ID: "same", Path: same}, "", false)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "same makes no changes")
}

func storeWith(record *revise.ConflictRecord, saved **revise.ConflictRecord) *mock.ConflictStore {
	return &mock.ConflictStore{
		LoadFn: func(path string) (*revise.ConflictRecord, error) {
			return record, nil
		},
		SaveFn: func(path string, r *revise.ConflictRecord) error {
			if saved != nil {
				*saved = r
			}
			return nil
		},
	}
}

func foxRecord() *revise.ConflictRecord {
	bob := "Bob"
	return &revise.ConflictRecord{
		Base: "paper.md",
		Conflicts: []revise.Conflict{
			{
				ID: "c1", Start: 4, End: 9, Original: "quick", Resolved: &bob,
				Changes: []revise.Change{
					revise.NewReplace("Alice", 4, "quick", "slow"),
					revise.NewReplace("Bob", 4, "quick", "fast"),
				},
			},
			{
				ID: "c2", Start: 35, End: 39, Original: "lazy",
				Changes: []revise.Change{
					revise.NewDelete("Alice", 35, "lazy"),
					revise.NewReplace("Carol", 35, "lazy", "sleepy"),
				},
			},
		},
	}
}

func TestApp_Status(t *testing.T) {
	t.Parallel()

	_, m := workspace(t, nil)
	var stdout bytes.Buffer
	app := &main.App{Stdout: &stdout, Stderr: &bytes.Buffer{}, Store: storeWith(foxRecord(), nil)}

	require.NoError(t, app.Status(m.Base, ""))

	out := stdout.String()
	assert.Contains(t, out, "c1   bytes 4-9  Alice, Bob  → Bob\n")
	assert.Contains(t, out, "c2   bytes 35-39  Alice, Carol  open\n")
	assert.Contains(t, out, "1 of 2 conflicts resolved\n")
}

func TestApp_Status_StaleRecord(t *testing.T) {
	t.Parallel()

	_, m := workspace(t, nil)
	record := foxRecord()
	record.Conflicts[1].Original = "idle"
	var stdout bytes.Buffer
	app := &main.App{Stdout: &stdout, Stderr: &bytes.Buffer{}, Store: storeWith(record, nil)}

	err := app.Status(m.Base, "")

	assert.ErrorIs(t, err, main.ErrStaleRecord)
	assert.Contains(t, stdout.String(), "conflict c2: original no longer matches the base")
}

func TestApp_Status_Empty(t *testing.T) {
	t.Parallel()

	_, m := workspace(t, nil)
	var stdout bytes.Buffer
	app := &main.App{Stdout: &stdout, Stderr: &bytes.Buffer{}, Store: storeWith(&revise.ConflictRecord{}, nil)}

	require.NoError(t, app.Status(m.Base, ""))
	assert.Contains(t, stdout.String(), "no open conflicts")
}

func TestApp_Resolve_Picks(t *testing.T) {
	t.Parallel()

	_, m := workspace(t, nil)
	var saved *revise.ConflictRecord
	app := &main.App{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}, Store: storeWith(foxRecord(), &saved)}

	require.NoError(t, app.Resolve(context.Background(), m.Base, "", []string{"c1=0", "c2=2"}))

	require.NotNil(t, saved)
	assert.Equal(t, revise.KeepOriginal, *saved.Conflicts[0].Resolved)
	assert.Equal(t, "Carol", *saved.Conflicts[1].Resolved)
}

func TestApp_Resolve_Errors(t *testing.T) {
	t.Parallel()

	_, m := workspace(t, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		record *revise.ConflictRecord
		picks  []string
		want   error
	}{
		{name: "no conflicts", record: &revise.ConflictRecord{}, picks: []string{"c1=1"}, want: main.ErrNoConflicts},
		{name: "malformed pick", record: foxRecord(), picks: []string{"c1:1"}, want: main.ErrBadPick},
		{name: "non-numeric pick", record: foxRecord(), picks: []string{"c1=x"}, want: main.ErrBadPick},
		{name: "choice out of range", record: foxRecord(), picks: []string{"c2=3"}, want: merge.ErrChoiceOutOfRange},
		{name: "unknown conflict", record: foxRecord(), picks: []string{"c9=1"}, want: merge.ErrConflictNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := &main.App{
				Stdout: &bytes.Buffer{},
				Stderr: &bytes.Buffer{},
				Store: &mock.ConflictStore{
					LoadFn: func(path string) (*revise.ConflictRecord, error) { return tt.record, nil },
					SaveFn: func(path string, r *revise.ConflictRecord) error {
						t.Error("nothing should be saved")
						return nil
					},
				},
			}
			err := app.Resolve(ctx, m.Base, "", tt.picks)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApp_Resolve_Interactive(t *testing.T) {
	t.Parallel()

	_, m := workspace(t, nil)
	var saved *revise.ConflictRecord
	app := &main.App{
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
		Store:  storeWith(foxRecord(), &saved),
		Resolver: &mock.ConflictResolver{
			ResolveFn: func(ctx context.Context, base string, record *revise.ConflictRecord) (*revise.ConflictRecord, error) {
				assert.Equal(t, foxBase, base)
				require.NoError(t, merge.Resolve(record, "c2", 1))
				return record, nil
			},
		},
	}

	require.NoError(t, app.Resolve(context.Background(), m.Base, "", nil))

	require.NotNil(t, saved)
	assert.Equal(t, "Alice", *saved.Conflicts[1].Resolved)
}

func TestApp_Resolve_InteractiveError(t *testing.T) {
	t.Parallel()

	_, m := workspace(t, nil)
	app := &main.App{
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
		Store:  storeWith(foxRecord(), nil),
		Resolver: &mock.ConflictResolver{
			ResolveFn: func(ctx context.Context, base string, record *revise.ConflictRecord) (*revise.ConflictRecord, error) {
				return nil, errors.New("terminal lost")
			},
		},
	}

	err := app.Resolve(context.Background(), m.Base, "", nil)
	assert.EqualError(t, err, "terminal lost")
}

func TestApp_History(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	app := &main.App{
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
		Journal: &mock.Journal{
			LoadFn: func(path string) ([]revise.JournalEntry, error) {
				assert.Equal(t, "paper.md.history.jsonl", path)
				return []revise.JournalEntry{{
					RunID:       "3f2a1b4c-0000-4000-8000-000000000000",
					Base:        "paper.md",
					MergedAt:    fixedNow,
					Granularity: "word",
					Reviewers:   []string{"Alice", "Bob"},
					Stats:       revise.Stats{Reviewers: 2, NonConflicting: 5, Conflicts: 2, Resolved: 1},
				}}, nil
			},
		},
	}

	require.NoError(t, app.History("paper.md"))
	assert.Equal(t, "2026-05-04 10:30:00  3f2a1b4c  word      Alice,Bob  changes=5 conflicts=2 resolved=1\n", stdout.String())
}

func TestApp_History_Empty(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	app := &main.App{
		Stdout:  &stdout,
		Journal: &mock.Journal{LoadFn: func(path string) ([]revise.JournalEntry, error) { return nil, nil }},
	}

	require.NoError(t, app.History("paper.md"))
	assert.Equal(t, "paper.md: no merges recorded\n", stdout.String())
}
