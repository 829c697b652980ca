// Package history persists the outcomes of completed practice
// attempts, newest first, capped at 50 records.
package history

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"parrot/score"
)

const (
	storageKey = "practiceSessions"
	maxRecords = 50
)

// Record is one completed, successfully scored attempt. Immutable
// after Append, except for deletion. Field names match the persisted
// JSON layout.
type Record struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Score      int               `json:"score"`
	Date       time.Time         `json:"date"`
	Feedback   string            `json:"feedback"`
	WordScores []score.WordScore `json:"wordScores,omitempty"`
}

// KV is the persistence collaborator: a single keyed blob holding the
// serialized collection. Get reports absence without error.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Store keeps the bounded, most-recent-first session history. Every
// mutation is a full read-modify-write of the keyed blob; the mutex
// serializes writers so concurrent mutations cannot lose updates.
type Store struct {
	kv KV
	mu sync.Mutex
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) load() ([]Record, error) {
	data, ok, err := s.kv.Get(storageKey)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	return recs, nil
}

func (s *Store) save(recs []Record) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := s.kv.Set(storageKey, data); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// Append inserts rec at the front and truncates the tail past the cap.
func (s *Store) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		return err
	}
	recs = append([]Record{rec}, recs...)
	if len(recs) > maxRecords {
		recs = recs[:maxRecords]
	}
	return s.save(recs)
}

// DeleteByID removes the matching record. An absent id is a no-op.
func (s *Store) DeleteByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		return err
	}
	kept := recs[:0]
	for _, r := range recs {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(recs) {
		return nil
	}
	return s.save(kept)
}

// Clear empties the history.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(storageKey); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// List returns all records, most recent first.
func (s *Store) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// AverageScore is the mean score over the stored records, 0 when the
// history is empty.
func (s *Store) AverageScore() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}
	total := 0
	for _, r := range recs {
		total += r.Score
	}
	return int(math.Round(float64(total) / float64(len(recs)))), nil
}
