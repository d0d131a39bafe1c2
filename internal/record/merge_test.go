package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocespace/server/internal/domain"
)

func todoEntry(id, title string) domain.TodoEntry {
	return domain.TodoEntry{EntryID: id, Title: title, Visible: true}
}

func TestMergeTodo(t *testing.T) {
	t.Run("no existing record returns incoming unchanged", func(t *testing.T) {
		incoming := domain.TodoRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.TodoEntry{todoEntry("a", "buy milk"), todoEntry("b", "walk dog")},
		}

		got := MergeTodo(nil, incoming)
		assert.Equal(t, incoming, got)
	})

	t.Run("matching key replaces stored entry in full", func(t *testing.T) {
		existing := &domain.TodoRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.TodoEntry{{EntryID: "a", Title: "old title", CompletedAt: ptr(int64(1)), Visible: true}},
		}
		incoming := domain.TodoRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.TodoEntry{{EntryID: "a", Title: "new title", Visible: false}},
		}

		got := MergeTodo(existing, incoming)
		require.Len(t, got.Entries, 1)
		// Whole-entry overwrite: no field survives from the stored version.
		assert.Equal(t, incoming.Entries[0], got.Entries[0])
	})

	t.Run("unseen keys are appended", func(t *testing.T) {
		existing := &domain.TodoRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.TodoEntry{todoEntry("a", "buy milk")},
		}
		incoming := domain.TodoRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.TodoEntry{todoEntry("b", "walk dog")},
		}

		got := MergeTodo(existing, incoming)
		require.Len(t, got.Entries, 2)
		assert.Equal(t, "a", got.Entries[0].EntryID)
		assert.Equal(t, "b", got.Entries[1].EntryID)
	})

	t.Run("no duplicate keys and bounded length", func(t *testing.T) {
		existing := &domain.TodoRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.TodoEntry{todoEntry("a", "one"), todoEntry("b", "two")},
		}
		incoming := domain.TodoRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.TodoEntry{todoEntry("b", "two updated"), todoEntry("c", "three")},
		}

		got := MergeTodo(existing, incoming)
		require.Len(t, got.Entries, 3)

		seen := map[string]bool{}
		for _, e := range got.Entries {
			assert.False(t, seen[e.EntryID], "duplicate key %s", e.EntryID)
			seen[e.EntryID] = true
		}
	})

	t.Run("first-seen order is preserved", func(t *testing.T) {
		existing := &domain.TodoRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.TodoEntry{todoEntry("a", "one"), todoEntry("b", "two"), todoEntry("c", "three")},
		}
		incoming := domain.TodoRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.TodoEntry{todoEntry("c", "three updated"), todoEntry("d", "four"), todoEntry("a", "one updated")},
		}

		got := MergeTodo(existing, incoming)
		var order []string
		for _, e := range got.Entries {
			order = append(order, e.EntryID)
		}
		assert.Equal(t, []string{"a", "b", "c", "d"}, order)
		assert.Equal(t, "one updated", got.Entries[0].Title)
		assert.Equal(t, "three updated", got.Entries[2].Title)
	})

	t.Run("duplicate incoming keys: last processed wins", func(t *testing.T) {
		existing := &domain.TodoRecord{OwnerID: "u1", Day: "2024-01-01"}
		incoming := domain.TodoRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.TodoEntry{todoEntry("a", "first"), todoEntry("a", "second")},
		}

		got := MergeTodo(existing, incoming)
		require.Len(t, got.Entries, 1)
		assert.Equal(t, "second", got.Entries[0].Title)
	})

	t.Run("owner and day come from existing record", func(t *testing.T) {
		existing := &domain.TodoRecord{OwnerID: "u1", Day: "2024-01-01"}
		incoming := domain.TodoRecord{OwnerID: "u1", Day: "2024-01-01", Entries: []domain.TodoEntry{todoEntry("a", "x")}}

		got := MergeTodo(existing, incoming)
		assert.Equal(t, "u1", got.OwnerID)
		assert.Equal(t, "2024-01-01", got.Day)
	})

	t.Run("completed flag upload end to end", func(t *testing.T) {
		existing := &domain.TodoRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.TodoEntry{{EntryID: "a", Title: "buy milk", Visible: true}},
		}
		incoming := domain.TodoRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.TodoEntry{
				{EntryID: "a", Title: "buy milk", CompletedAt: ptr(int64(1700000000)), Visible: true},
				{EntryID: "b", Title: "walk dog", Visible: true},
			},
		}

		got := MergeTodo(existing, incoming)
		require.Len(t, got.Entries, 2)
		require.NotNil(t, got.Entries[0].CompletedAt)
		assert.Equal(t, int64(1700000000), *got.Entries[0].CompletedAt)
		assert.Equal(t, "b", got.Entries[1].EntryID)
	})
}

func TestMergeAnalysis(t *testing.T) {
	line := func(ts int64, name string) domain.AnalysisEntry {
		return domain.AnalysisEntry{Timestamp: ts, Name: name, Content: name + " content", DurationMinutes: 5}
	}

	t.Run("keyed by timestamp", func(t *testing.T) {
		existing := &domain.AnalysisRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.AnalysisEntry{line(100, "coding"), line(200, "browsing")},
		}
		incoming := domain.AnalysisRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.AnalysisEntry{line(200, "reading"), line(300, "meeting")},
		}

		got := MergeAnalysis(existing, incoming)
		require.Len(t, got.Entries, 3)
		assert.Equal(t, "coding", got.Entries[0].Name)
		assert.Equal(t, "reading", got.Entries[1].Name)
		assert.Equal(t, "meeting", got.Entries[2].Name)
	})

	t.Run("no existing record returns incoming unchanged", func(t *testing.T) {
		incoming := domain.AnalysisRecord{
			OwnerID: "u1",
			Day:     "2024-01-01",
			Entries: []domain.AnalysisEntry{line(100, "coding")},
		}
		assert.Equal(t, incoming, MergeAnalysis(nil, incoming))
	})
}

func ptr[T any](v T) *T { return &v }
