// Package session holds the live bill state: people, items, discount and the
// paid map. All mutations are synchronous and serialized; the split breakdown
// is derived data, recomputed in full on every read.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bayadbuddy/server/internal/calculator"
	"github.com/bayadbuddy/server/internal/models"
	"github.com/bayadbuddy/server/internal/storage"
)

// avatarColors is the palette cycled as people are added.
var avatarColors = []string{
	"blue", "purple", "pink", "emerald", "orange", "indigo", "rose", "cyan",
}

// defaultPersonName is the single person every fresh session starts with.
const defaultPersonName = "Me"

// Session owns the live People/Items/Discount/paid state. Every mutation
// write-through persists the touched blobs; when persistence fails the
// in-memory state stays authoritative and the error is surfaced.
type Session struct {
	mu    sync.Mutex
	store storage.Store

	people   []models.Person
	items    []models.Item
	discount models.Discount
	paid     map[string]bool
}

// New loads session state from the store. Absent or corrupt blobs fall back
// to defaults (a single default person, no items, zero discount, nobody paid)
// instead of failing hard.
func New(ctx context.Context, store storage.Store) *Session {
	s := &Session{store: store}

	if !loadBlob(ctx, store, storage.KeyPeople, &s.people) || len(s.people) == 0 {
		s.people = []models.Person{newPerson(defaultPersonName, 0)}
	}
	loadBlob(ctx, store, storage.KeyItems, &s.items)
	loadBlob(ctx, store, storage.KeyDiscount, &s.discount)
	if !loadBlob(ctx, store, storage.KeyPaid, &s.paid) || s.paid == nil {
		s.paid = make(map[string]bool)
	}

	return s
}

// loadBlob reads and decodes one keyed blob. It reports whether a usable
// value was decoded; failures are logged and treated as absent.
func loadBlob(ctx context.Context, store storage.Store, key string, dest interface{}) bool {
	data, err := store.Get(ctx, key)
	if err != nil {
		slog.Warn("Failed to read blob, using defaults", "key", key, "error", err)
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		slog.Warn("Corrupt blob, using defaults", "key", key, "error", err)
		return false
	}
	return true
}

func newPerson(name string, ordinal int) models.Person {
	return models.Person{
		ID:    uuid.New().String(),
		Name:  name,
		Color: avatarColors[ordinal%len(avatarColors)],
	}
}

// persist writes one blob through to the store. In-memory state is already
// updated by the time this runs; a failure is logged and wrapped in ErrPersist.
func (s *Session) persist(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersist, key, err)
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		slog.Error("Write-through failed", "key", key, "error", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// AddPerson adds a participant with a fresh id and the next palette color.
func (s *Session) AddPerson(ctx context.Context, name string) (models.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Person{}, fmt.Errorf("%w: person name must not be blank", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := newPerson(name, len(s.people))
	s.people = append(s.people, p)
	return p, s.persist(ctx, storage.KeyPeople, s.people)
}

// RemovePerson removes a participant and strips their id from every item's
// assignment and from the paid map. Removing the last remaining person is
// rejected; an unknown id is a no-op.
func (s *Session) RemovePerson(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.people {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}
	if len(s.people) <= 1 {
		return fmt.Errorf("%w: a session must keep at least one person", ErrValidation)
	}

	s.people = append(s.people[:idx], s.people[idx+1:]...)
	for i := range s.items {
		assigned := s.items[i].AssignedPersonIDs[:0]
		for _, pid := range s.items[i].AssignedPersonIDs {
			if pid != id {
				assigned = append(assigned, pid)
			}
		}
		s.items[i].AssignedPersonIDs = assigned
	}
	delete(s.paid, id)

	if err := s.persist(ctx, storage.KeyPeople, s.people); err != nil {
		return err
	}
	if err := s.persist(ctx, storage.KeyItems, s.items); err != nil {
		return err
	}
	return s.persist(ctx, storage.KeyPaid, s.paid)
}

// validateItem rejects blank names and negative or non-finite prices.
func validateItem(name string, price float64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: item name must not be blank", ErrValidation)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return fmt.Errorf("%w: item price must be a non-negative number", ErrValidation)
	}
	return nil
}

// AddItem adds a priced item assigned to the first person, matching the
// behavior of adding an item by hand.
func (s *Session) AddItem(ctx context.Context, name string, price float64) (models.Item, error) {
	if err := validateItem(name, price); err != nil {
		return models.Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := models.Item{
		ID:                uuid.New().String(),
		Name:              strings.TrimSpace(name),
		Price:             price,
		AssignedPersonIDs: []string{s.people[0].ID},
	}
	s.items = append(s.items, item)
	return item.Clone(), s.persist(ctx, storage.KeyItems, s.items)
}

// UpdateItem replaces an item by id, keeping its position. An unknown id is
// a no-op.
func (s *Session) UpdateItem(ctx context.Context, item models.Item) error {
	if err := validateItem(item.Name, item.Price); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = item.Clone()
			return s.persist(ctx, storage.KeyItems, s.items)
		}
	}
	return nil
}

// RemoveItem removes an item by id. An unknown id is a no-op.
func (s *Session) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.persist(ctx, storage.KeyItems, s.items)
		}
	}
	return nil
}

// AddScannedItems bulk-adds candidates from the receipt-scan boundary.
// Every candidate is validated before any state changes: either the whole
// batch is added or none of it.
func (s *Session) AddScannedItems(ctx context.Context, candidates []models.ScannedItem) ([]models.Item, error) {
	for _, c := range candidates {
		if err := validateItem(c.Name, c.Price); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]models.Item, 0, len(candidates))
	for _, c := range candidates {
		item := models.Item{
			ID:                uuid.New().String(),
			Name:              strings.TrimSpace(c.Name),
			Price:             c.Price,
			AssignedPersonIDs: []string{s.people[0].ID},
		}
		s.items = append(s.items, item)
		added = append(added, item.Clone())
	}
	if len(added) == 0 {
		return added, nil
	}
	return added, s.persist(ctx, storage.KeyItems, s.items)
}

// SetDiscount replaces the discount specification.
func (s *Session) SetDiscount(ctx context.Context, d models.Discount) error {
	if d.Mode != models.DiscountModeEven && d.Mode != models.DiscountModeProportional {
		return fmt.Errorf("%w: unknown discount mode %q", ErrValidation, d.Mode)
	}
	if math.IsNaN(d.Amount) || math.IsInf(d.Amount, 0) || d.Amount < 0 {
		return fmt.Errorf("%w: discount amount must be a non-negative number", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.discount = d
	return s.persist(ctx, storage.KeyDiscount, s.discount)
}

// TogglePaid flips one person's paid flag. Calling it twice restores the
// original state; an unknown id is a no-op.
func (s *Session) TogglePaid(ctx context.Context, personID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := false
	for _, p := range s.people {
		if p.ID == personID {
			known = true
			break
		}
	}
	if !known {
		return nil
	}

	s.paid[personID] = !s.paid[personID]
	return s.persist(ctx, storage.KeyPaid, s.paid)
}

// Clear resets the session: no items, nobody paid, and the people list back
// to the single default person.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.people = []models.Person{newPerson(defaultPersonName, 0)}
	s.items = nil
	s.discount = models.Discount{}
	s.paid = make(map[string]bool)

	if err := s.persist(ctx, storage.KeyPeople, s.people); err != nil {
		return err
	}
	if err := s.persist(ctx, storage.KeyItems, s.items); err != nil {
		return err
	}
	if err := s.persist(ctx, storage.KeyDiscount, s.discount); err != nil {
		return err
	}
	return s.persist(ctx, storage.KeyPaid, s.paid)
}

// Results recomputes the live split breakdown from current state.
func (s *Session) Results() ([]models.PersonResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calculator.Split(s.people, s.items, s.discount, s.paid)
}

// People returns a snapshot of the participant list.
func (s *Session) People() []models.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Person(nil), s.people...)
}

// Items returns a snapshot of the item list.
func (s *Session) Items() []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Item, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

// Discount returns the current discount specification.
func (s *Session) Discount() models.Discount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discount
}
