// Package history stores finalized bills: append-only except for explicit
// deletes, most recent first. A saved bill owns its deep copy of the split
// results and only its paid flags may change afterwards.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bayadbuddy/server/internal/models"
	"github.com/bayadbuddy/server/internal/storage"
)

// ErrNothingToSave is returned when a save is attempted with no results.
var ErrNothingToSave = fmt.Errorf("nothing to save")

// Store keeps the bill history in memory and write-through persists it as a
// single blob. The in-memory slice stays authoritative when a write fails.
type Store struct {
	mu    sync.Mutex
	kv    storage.Store
	bills []models.Bill
}

// New loads the history from the store. An absent or corrupt blob falls back
// to an empty history.
func New(ctx context.Context, kv storage.Store) *Store {
	s := &Store{kv: kv}

	data, err := kv.Get(ctx, storage.KeyHistory)
	if err != nil {
		slog.Warn("Failed to read history, starting empty", "error", err)
		return s
	}
	if data == nil {
		return s
	}
	if err := json.Unmarshal(data, &s.bills); err != nil {
		slog.Warn("Corrupt history blob, starting empty", "error", err)
		s.bills = nil
	}
	return s
}

// Save snapshots the given results into a new bill and prepends it to the
// history. The results are deep-copied so later session mutation cannot
// touch the stored bill. The bill total is the sum of the result totals.
// A breakdown with no line items at all (a session with zero allocated
// items) is rejected: there is nothing to save.
func (s *Store) Save(ctx context.Context, results []models.PersonResult, title string) (models.Bill, error) {
	hasItems := false
	for _, r := range results {
		if len(r.Items) > 0 {
			hasItems = true
			break
		}
	}
	if !hasItems {
		return models.Bill{}, ErrNothingToSave
	}

	var total float64
	for _, r := range results {
		total += r.Total
	}

	bill := models.Bill{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().Unix(),
		Title:     title,
		Total:     total,
		Results:   models.CloneResults(results),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Most recent first.
	s.bills = append([]models.Bill{bill}, s.bills...)
	return bill.Clone(), s.persist(ctx)
}

// Remove deletes exactly one bill by id. An unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, billID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.bills {
		if s.bills[i].ID == billID {
			s.bills = append(s.bills[:i], s.bills[i+1:]...)
			return s.persist(ctx)
		}
	}
	return nil
}

// Clear deletes all bills and drops the blob.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bills = nil
	if err := s.kv.Delete(ctx, storage.KeyHistory); err != nil {
		slog.Error("Failed to delete history blob", "error", err)
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// List returns the bills in descending recency order (insertion order at
// save time, never re-sorted). Returned bills are clones.
func (s *Store) List() []models.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Bill, len(s.bills))
	for i, b := range s.bills {
		out[i] = b.Clone()
	}
	return out
}

// TogglePaid flips the paid flag inside the matching result of one specific
// bill. Other bills and the live session are unaffected. Unknown bill or
// person ids are no-ops.
func (s *Store) TogglePaid(ctx context.Context, billID, personID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.bills {
		if s.bills[i].ID != billID {
			continue
		}
		for j := range s.bills[i].Results {
			if s.bills[i].Results[j].Person.ID == personID {
				s.bills[i].Results[j].IsPaid = !s.bills[i].Results[j].IsPaid
				return s.persist(ctx)
			}
		}
		return nil
	}
	return nil
}

// persist writes the whole history blob. Callers hold the lock.
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.bills)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyHistory, data); err != nil {
		slog.Error("Failed to persist history", "error", err)
		return fmt.Errorf("failed to persist history: %w", err)
	}
	return nil
}
