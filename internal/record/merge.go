// Package record reconciles a newly submitted per-day record with the stored
// one for the same (owner, day) key.
package record

import "github.com/vocespace/server/internal/domain"

// Keyed is an entry that can be matched against a stored entry of the same kind.
type Keyed interface {
	MergeKey() string
}

// Merge combines stored and incoming entries. An incoming entry replaces the
// stored entry sharing its key in full (last write wins, whole entry); unseen
// keys are appended. Order is first-seen: existing entries keep their relative
// order, new entries follow in incoming order. If two incoming entries share a
// key the later one wins.
func Merge[E Keyed](existing, incoming []E) []E {
	merged := make([]E, len(existing), len(existing)+len(incoming))
	copy(merged, existing)

	index := make(map[string]int, len(existing))
	for i, e := range merged {
		index[e.MergeKey()] = i
	}

	for _, e := range incoming {
		if i, ok := index[e.MergeKey()]; ok {
			merged[i] = e
			continue
		}
		index[e.MergeKey()] = len(merged)
		merged = append(merged, e)
	}

	return merged
}

// MergeTodo merges an incoming todo record into the stored one for the same
// (owner, day). A nil existing record means first write; the incoming record
// is returned unchanged.
func MergeTodo(existing *domain.TodoRecord, incoming domain.TodoRecord) domain.TodoRecord {
	if existing == nil {
		return incoming
	}
	return domain.TodoRecord{
		OwnerID: existing.OwnerID,
		Day:     existing.Day,
		Entries: Merge(existing.Entries, incoming.Entries),
	}
}

// MergeAnalysis merges an incoming analysis record into the stored one for the
// same (owner, day), keyed by line timestamp.
func MergeAnalysis(existing *domain.AnalysisRecord, incoming domain.AnalysisRecord) domain.AnalysisRecord {
	if existing == nil {
		return incoming
	}
	return domain.AnalysisRecord{
		OwnerID: existing.OwnerID,
		Day:     existing.Day,
		Entries: Merge(existing.Entries, incoming.Entries),
	}
}
