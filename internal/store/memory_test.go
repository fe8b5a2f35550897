package store

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if store == nil {
		t.Fatal("NewMemoryStore returned nil")
	}

	if store.builds == nil {
		t.Fatal("builds map not initialized")
	}

	if store.Count() != 0 {
		t.Errorf("expected empty store, got %d builds", store.Count())
	}
}

func TestSaveBuild(t *testing.T) {
	store := NewMemoryStore()

	t.Run("stores and retrieves by name", func(t *testing.T) {
		err := store.SaveBuild(&BuildRecord{ID: "b1", Name: "islands", DeckSize: 4})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rec, err := store.GetBuild("islands")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.ID != "b1" {
			t.Errorf("expected ID b1, got %s", rec.ID)
		}
		if rec.CreatedAt.IsZero() {
			t.Error("CreatedAt not set")
		}
	})

	t.Run("rebuild replaces the earlier record", func(t *testing.T) {
		store.SaveBuild(&BuildRecord{ID: "b2", Name: "islands", DeckSize: 8})

		rec, _ := store.GetBuild("islands")
		if rec.ID != "b2" || rec.DeckSize != 8 {
			t.Errorf("expected replaced record, got %+v", rec)
		}
		if store.Count() != 1 {
			t.Errorf("expected 1 build, got %d", store.Count())
		}
	})

	t.Run("rejects records without a name", func(t *testing.T) {
		if err := store.SaveBuild(&BuildRecord{ID: "b3"}); err == nil {
			t.Error("expected error for unnamed record")
		}
		if err := store.SaveBuild(nil); err == nil {
			t.Error("expected error for nil record")
		}
	})
}

func TestGetBuild(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.GetBuild("missing")
	if err == nil {
		t.Fatal("expected error for missing deck")
	}
	if err.Error() != "deck missing not found" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestListBuilds(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	store.SaveBuild(&BuildRecord{Name: "old", CreatedAt: base})
	store.SaveBuild(&BuildRecord{Name: "new", CreatedAt: base.Add(time.Hour)})
	store.SaveBuild(&BuildRecord{Name: "b-tie", CreatedAt: base})

	list := store.ListBuilds()
	if len(list) != 3 {
		t.Fatalf("expected 3 builds, got %d", len(list))
	}

	want := []string{"new", "b-tie", "old"}
	for i, name := range want {
		if list[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, list[i].Name)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			store.SaveBuild(&BuildRecord{Name: fmt.Sprintf("deck-%d", i)})
		}(i)
		go func() {
			defer wg.Done()
			store.ListBuilds()
		}()
	}
	wg.Wait()

	if store.Count() != 50 {
		t.Errorf("expected 50 builds, got %d", store.Count())
	}
}
