package session

import (
	"context"
	"errors"
	"testing"

	"github.com/bayadbuddy/server/internal/models"
	"github.com/bayadbuddy/server/internal/storage"
)

// setFailStore reads normally but fails every write.
type setFailStore struct {
	*storage.MemStore
}

func (f *setFailStore) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func newTestSession(t *testing.T) (*Session, *storage.MemStore) {
	t.Helper()
	store := storage.NewMemStore()
	return New(context.Background(), store), store
}

func TestNewSessionDefaults(t *testing.T) {
	s, _ := newTestSession(t)

	people := s.People()
	if len(people) != 1 {
		t.Fatalf("expected 1 default person, got %d", len(people))
	}
	if people[0].Name != "Me" {
		t.Errorf("default person name = %q, want Me", people[0].Name)
	}
	if len(s.Items()) != 0 {
		t.Errorf("expected no items in a fresh session")
	}
}

func TestNewSessionCorruptBlobsFallBack(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	store.Set(ctx, storage.KeyPeople, []byte("{not json"))
	store.Set(ctx, storage.KeyItems, []byte("also not json"))
	store.Set(ctx, storage.KeyPaid, []byte("]["))

	s := New(ctx, store)

	if len(s.People()) != 1 {
		t.Errorf("expected fallback to single default person, got %d", len(s.People()))
	}
	if len(s.Items()) != 0 {
		t.Errorf("expected fallback to empty items, got %d", len(s.Items()))
	}
	if err := s.TogglePaid(ctx, s.People()[0].ID); err != nil {
		t.Errorf("paid map should be usable after fallback: %v", err)
	}
}

func TestSessionSurvivesReload(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	s := New(ctx, store)

	p, err := s.AddPerson(ctx, "Bob")
	if err != nil {
		t.Fatalf("AddPerson failed: %v", err)
	}
	if _, err := s.AddItem(ctx, "Adobo", 120); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := s.TogglePaid(ctx, p.ID); err != nil {
		t.Fatalf("TogglePaid failed: %v", err)
	}

	reloaded := New(ctx, store)
	if len(reloaded.People()) != 2 {
		t.Errorf("expected 2 people after reload, got %d", len(reloaded.People()))
	}
	if len(reloaded.Items()) != 1 {
		t.Errorf("expected 1 item after reload, got %d", len(reloaded.Items()))
	}

	results, err := reloaded.Results()
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	for _, res := range results {
		if res.Person.ID == p.ID && !res.IsPaid {
			t.Error("paid flag should survive reload")
		}
	}
}

func TestWriteThroughFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, &setFailStore{storage.NewMemStore()})

	p, err := s.AddPerson(ctx, "Bob")
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if p.ID == "" {
		t.Error("the added person should still be returned")
	}
	if len(s.People()) != 2 {
		t.Errorf("in-memory state must stay authoritative, got %d people", len(s.People()))
	}

	if _, err := s.AddItem(ctx, "Adobo", 120); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if len(s.Items()) != 1 {
		t.Errorf("in-memory item must be retained, got %d items", len(s.Items()))
	}

	if err := s.TogglePaid(ctx, p.ID); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	results, err := s.Results()
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	for _, res := range results {
		if res.Person.ID == p.ID && !res.IsPaid {
			t.Error("paid flag must be retained in memory after a failed write")
		}
	}
}

func TestAddPerson(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	t.Run("blank name rejected", func(t *testing.T) {
		if _, err := s.AddPerson(ctx, "   "); !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("colors cycle through the palette", func(t *testing.T) {
		a, _ := s.AddPerson(ctx, "Ana")
		b, _ := s.AddPerson(ctx, "Ben")
		if a.Color == "" || b.Color == "" {
			t.Error("expected palette colors to be assigned")
		}
		if a.ID == b.ID {
			t.Error("expected unique ids")
		}
	})
}

func TestRemovePerson(t *testing.T) {
	ctx := context.Background()

	t.Run("last person cannot be removed", func(t *testing.T) {
		s, _ := newTestSession(t)
		only := s.People()[0]
		if err := s.RemovePerson(ctx, only.ID); !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
		if len(s.People()) != 1 {
			t.Error("person list must be unchanged after rejected removal")
		}
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		s, _ := newTestSession(t)
		if err := s.RemovePerson(ctx, "nope"); err != nil {
			t.Errorf("expected no-op, got %v", err)
		}
	})

	t.Run("removal strips item assignments and paid flag", func(t *testing.T) {
		s, _ := newTestSession(t)
		me := s.People()[0]
		bob, _ := s.AddPerson(ctx, "Bob")

		item, _ := s.AddItem(ctx, "Pancit", 80)
		shared := item
		shared.AssignedPersonIDs = []string{me.ID, bob.ID}
		if err := s.UpdateItem(ctx, shared); err != nil {
			t.Fatalf("UpdateItem failed: %v", err)
		}
		if err := s.TogglePaid(ctx, bob.ID); err != nil {
			t.Fatalf("TogglePaid failed: %v", err)
		}

		if err := s.RemovePerson(ctx, bob.ID); err != nil {
			t.Fatalf("RemovePerson failed: %v", err)
		}

		items := s.Items()
		if len(items) != 1 {
			t.Fatalf("item should survive person removal, got %d items", len(items))
		}
		for _, pid := range items[0].AssignedPersonIDs {
			if pid == bob.ID {
				t.Error("removed person id must be stripped from assignments")
			}
		}

		results, _ := s.Results()
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].Subtotal != 80 {
			t.Errorf("remaining person subtotal = %v, want 80 (full item)", results[0].Subtotal)
		}
	})
}

func TestAddItemValidation(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	if _, err := s.AddItem(ctx, "", 10); !errors.Is(err, ErrValidation) {
		t.Errorf("blank name: expected ErrValidation, got %v", err)
	}
	if _, err := s.AddItem(ctx, "Beer", -5); !errors.Is(err, ErrValidation) {
		t.Errorf("negative price: expected ErrValidation, got %v", err)
	}

	item, err := s.AddItem(ctx, "Beer", 75)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if len(item.AssignedPersonIDs) != 1 || item.AssignedPersonIDs[0] != s.People()[0].ID {
		t.Error("new items should be assigned to the first person")
	}
}

func TestUpdateAndRemoveItem(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	item, _ := s.AddItem(ctx, "Sisig", 150)

	t.Run("unknown update id is a no-op", func(t *testing.T) {
		ghost := item
		ghost.ID = "ghost"
		if err := s.UpdateItem(ctx, ghost); err != nil {
			t.Errorf("expected no-op, got %v", err)
		}
	})

	t.Run("update replaces in place", func(t *testing.T) {
		changed := item
		changed.Price = 175
		if err := s.UpdateItem(ctx, changed); err != nil {
			t.Fatalf("UpdateItem failed: %v", err)
		}
		if got := s.Items()[0].Price; got != 175 {
			t.Errorf("price = %v, want 175", got)
		}
	})

	t.Run("remove by id", func(t *testing.T) {
		if err := s.RemoveItem(ctx, item.ID); err != nil {
			t.Fatalf("RemoveItem failed: %v", err)
		}
		if len(s.Items()) != 0 {
			t.Error("item should be gone")
		}
		if err := s.RemoveItem(ctx, item.ID); err != nil {
			t.Errorf("second remove should be a no-op, got %v", err)
		}
	})
}

func TestAddScannedItemsAllOrNone(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	_, err := s.AddScannedItems(ctx, []models.ScannedItem{
		{Name: "Kare-kare", Price: 220},
		{Name: "", Price: 60},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(s.Items()) != 0 {
		t.Error("no items may be committed when any candidate is invalid")
	}

	added, err := s.AddScannedItems(ctx, []models.ScannedItem{
		{Name: "Kare-kare", Price: 220},
		{Name: "Rice", Price: 60},
	})
	if err != nil {
		t.Fatalf("AddScannedItems failed: %v", err)
	}
	if len(added) != 2 || len(s.Items()) != 2 {
		t.Errorf("expected 2 items committed, got %d", len(s.Items()))
	}
}

func TestSetDiscount(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	if err := s.SetDiscount(ctx, models.Discount{Mode: "percent", Amount: 10, Target: models.DiscountTargetEveryone}); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown mode: expected ErrValidation, got %v", err)
	}
	if err := s.SetDiscount(ctx, models.Discount{Mode: models.DiscountModeEven, Amount: -1, Target: models.DiscountTargetEveryone}); !errors.Is(err, ErrValidation) {
		t.Errorf("negative amount: expected ErrValidation, got %v", err)
	}

	want := models.Discount{Mode: models.DiscountModeProportional, Amount: 50, Target: models.DiscountTargetEveryone}
	if err := s.SetDiscount(ctx, want); err != nil {
		t.Fatalf("SetDiscount failed: %v", err)
	}
	if got := s.Discount(); got != want {
		t.Errorf("Discount = %+v, want %+v", got, want)
	}
}

func TestTogglePaidIdempotentPair(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	me := s.People()[0]
	if _, err := s.AddItem(ctx, "Coffee", 10); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	paidState := func() bool {
		results, err := s.Results()
		if err != nil {
			t.Fatalf("Results failed: %v", err)
		}
		return results[0].IsPaid
	}

	if paidState() {
		t.Fatal("fresh session should be unpaid")
	}
	s.TogglePaid(ctx, me.ID)
	if !paidState() {
		t.Error("first toggle should mark paid")
	}
	s.TogglePaid(ctx, me.ID)
	if paidState() {
		t.Error("second toggle should restore unpaid")
	}

	if err := s.TogglePaid(ctx, "unknown"); err != nil {
		t.Errorf("unknown id should be a no-op, got %v", err)
	}
}

func TestClear(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	s.AddPerson(ctx, "Bob")
	s.AddItem(ctx, "Lechon", 500)
	s.SetDiscount(ctx, models.Discount{Mode: models.DiscountModeEven, Amount: 50, Target: models.DiscountTargetEveryone})

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if len(s.People()) != 1 || s.People()[0].Name != "Me" {
		t.Error("Clear should reset people to the single default person")
	}
	if len(s.Items()) != 0 {
		t.Error("Clear should drop all items")
	}
	if s.Discount().Amount != 0 {
		t.Error("Clear should reset the discount")
	}
}
