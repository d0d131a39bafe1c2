package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vocespace/server/internal/domain"
)

//go:embed schema.sql
var schema string

// Store handles database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// getEntries returns the raw entries JSON for a record, or found=false when no
// row exists. A missing row is the "no existing record" case, not an error.
func (s *Store) getEntries(owner, day string, kind domain.RecordKind) ([]byte, bool, error) {
	var raw []byte
	err := s.db.QueryRow(
		"SELECT entries FROM daily_records WHERE owner_id = ? AND day = ? AND kind = ?",
		owner, day, kind,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get record: %w", err)
	}
	return raw, true, nil
}

// saveEntries replaces the whole entries payload for (owner, day, kind) in a
// single upsert. Readers racing a crash observe either the old or the new full
// record, never a partial one. The surrounding read-merge-write cycle is NOT
// serialized per key: two concurrent writers can lose an update.
func (s *Store) saveEntries(owner, day string, kind domain.RecordKind, entries []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO daily_records (owner_id, day, kind, entries, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, day, kind)
		DO UPDATE SET entries = excluded.entries, updated_at = excluded.updated_at
	`, owner, day, kind, entries, time.Now())
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// GetTodoRecord returns the stored todo record for (owner, day), or nil when
// none has been written yet.
func (s *Store) GetTodoRecord(owner, day string) (*domain.TodoRecord, error) {
	raw, found, err := s.getEntries(owner, day, domain.KindTodo)
	if err != nil || !found {
		return nil, err
	}

	var entries []domain.TodoEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode todo entries: %w", err)
	}
	return &domain.TodoRecord{OwnerID: owner, Day: day, Entries: entries}, nil
}

// SaveTodoRecord persists the full todo record for its (owner, day) key.
func (s *Store) SaveTodoRecord(rec domain.TodoRecord) error {
	raw, err := json.Marshal(rec.Entries)
	if err != nil {
		return fmt.Errorf("encode todo entries: %w", err)
	}
	return s.saveEntries(rec.OwnerID, rec.Day, domain.KindTodo, raw)
}

// GetAnalysisRecord returns the stored analysis record for (owner, day), or
// nil when none has been written yet.
func (s *Store) GetAnalysisRecord(owner, day string) (*domain.AnalysisRecord, error) {
	raw, found, err := s.getEntries(owner, day, domain.KindAnalysis)
	if err != nil || !found {
		return nil, err
	}

	var entries []domain.AnalysisEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode analysis entries: %w", err)
	}
	return &domain.AnalysisRecord{OwnerID: owner, Day: day, Entries: entries}, nil
}

// SaveAnalysisRecord persists the full analysis record for its (owner, day) key.
func (s *Store) SaveAnalysisRecord(rec domain.AnalysisRecord) error {
	raw, err := json.Marshal(rec.Entries)
	if err != nil {
		return fmt.Errorf("encode analysis entries: %w", err)
	}
	return s.saveEntries(rec.OwnerID, rec.Day, domain.KindAnalysis, raw)
}

// DeleteRecord removes the record for a single (owner, day, kind). Deleting a
// record that does not exist is a no-op.
func (s *Store) DeleteRecord(owner, day string, kind domain.RecordKind) error {
	_, err := s.db.Exec(
		"DELETE FROM daily_records WHERE owner_id = ? AND day = ? AND kind = ?",
		owner, day, kind,
	)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// DeleteOwnerRecords removes every daily record belonging to an owner,
// regardless of day or kind.
func (s *Store) DeleteOwnerRecords(owner string) error {
	_, err := s.db.Exec("DELETE FROM daily_records WHERE owner_id = ?", owner)
	if err != nil {
		return fmt.Errorf("delete owner records: %w", err)
	}
	return nil
}

// DeleteTodoEntry removes a single todo entry by its ID, rewriting the record
// without it. Missing record or missing entry is a no-op.
func (s *Store) DeleteTodoEntry(owner, day, entryID string) error {
	rec, err := s.GetTodoRecord(owner, day)
	if err != nil || rec == nil {
		return err
	}

	kept := rec.Entries[:0]
	for _, e := range rec.Entries {
		if e.EntryID != entryID {
			kept = append(kept, e)
		}
	}
	rec.Entries = kept
	return s.SaveTodoRecord(*rec)
}

// DeleteAnalysisEntry removes a single analysis line by its timestamp.
func (s *Store) DeleteAnalysisEntry(owner, day string, timestamp int64) error {
	rec, err := s.GetAnalysisRecord(owner, day)
	if err != nil || rec == nil {
		return err
	}

	kept := rec.Entries[:0]
	for _, e := range rec.Entries {
		if e.Timestamp != timestamp {
			kept = append(kept, e)
		}
	}
	rec.Entries = kept
	return s.SaveAnalysisRecord(*rec)
}

// CreateUser creates a new user profile and returns it
func (s *Store) CreateUser(username, avatar string) (*domain.User, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := s.db.Exec(
		"INSERT INTO users (id, username, avatar, created_at) VALUES (?, ?, ?, ?)",
		id, username, avatar, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &domain.User{
		ID:        id,
		Username:  username,
		Avatar:    avatar,
		CreatedAt: now,
	}, nil
}

// GetUser retrieves a user by ID. Returns nil when the user does not exist.
func (s *Store) GetUser(id string) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRow(
		"SELECT id, username, avatar, created_at FROM users WHERE id = ?",
		id,
	).Scan(&u.ID, &u.Username, &u.Avatar, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// DeleteUser removes a user together with their spaces and all their daily
// records (account deletion).
func (s *Store) DeleteUser(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM daily_records WHERE owner_id = ?", id); err != nil {
		return fmt.Errorf("delete user records: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM spaces WHERE owner_id = ?", id); err != nil {
		return fmt.Errorf("delete user spaces: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM users WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	return tx.Commit()
}

// PublishSpace creates a space entry in the discovery list and returns it
func (s *Store) PublishSpace(ownerID, name, description string, public bool) (*domain.Space, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := s.db.Exec(
		"INSERT INTO spaces (id, owner_id, name, description, public, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, ownerID, name, description, public, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert space: %w", err)
	}

	return &domain.Space{
		ID:          id,
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Public:      public,
		CreatedAt:   now,
	}, nil
}

// ListPublicSpaces returns publicly discoverable spaces, newest first
func (s *Store) ListPublicSpaces(limit, offset int) ([]domain.Space, error) {
	rows, err := s.db.Query(
		"SELECT id, owner_id, name, description, public, created_at FROM spaces WHERE public = 1 ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	defer rows.Close()

	var spaces []domain.Space
	for rows.Next() {
		var sp domain.Space
		if err := rows.Scan(&sp.ID, &sp.OwnerID, &sp.Name, &sp.Description, &sp.Public, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		spaces = append(spaces, sp)
	}

	return spaces, nil
}

// UnpublishSpace removes a space from the discovery list
func (s *Store) UnpublishSpace(id string) error {
	_, err := s.db.Exec("DELETE FROM spaces WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete space: %w", err)
	}
	return nil
}
