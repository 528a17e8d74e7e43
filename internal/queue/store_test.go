package queue

import (
	"context"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func TestStoreAddAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.Add(ctx, "session-1", "SOME_DISC", 3)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected nonzero ID")
	}
	if item.Status != StatusPending {
		t.Fatalf("status = %q, want %q", item.Status, StatusPending)
	}
	if item.TitleID != 3 {
		t.Fatalf("title ID = %d, want 3", item.TitleID)
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	got, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.DiscTitle != "SOME_DISC" {
		t.Fatalf("disc title = %q, want SOME_DISC", got.DiscTitle)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetByID(context.Background(), 42); err == nil {
		t.Fatal("expected error for missing job")
	}
}

func TestStoreUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.Add(ctx, "session-1", "SOME_DISC", 1)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	item.Status = StatusRipping
	item.ProgressPercent = 42
	item.ProgressMessage = "Saving to MKV file"
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusRipping {
		t.Fatalf("status = %q, want %q", got.Status, StatusRipping)
	}
	if got.ProgressPercent != 42 {
		t.Fatalf("progress = %d, want 42", got.ProgressPercent)
	}
	if got.ProgressMessage != "Saving to MKV file" {
		t.Fatalf("message = %q", got.ProgressMessage)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Fatal("expected UpdatedAt >= CreatedAt")
	}
}

func TestStoreListFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Add(ctx, "session-1", "DISC_A", 1)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	second, err := store.Add(ctx, "session-1", "DISC_A", 2)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	second.Status = StatusCompleted
	if err := store.Update(ctx, second); err != nil {
		t.Fatalf("Update: %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}
	if all[0].ID != second.ID {
		t.Fatal("expected newest job first")
	}

	pending, err := store.List(ctx, StatusPending)
	if err != nil {
		t.Fatalf("List pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != first.ID {
		t.Fatalf("pending filter returned %d items", len(pending))
	}

	done, err := store.List(ctx, StatusCompleted, StatusFailed)
	if err != nil {
		t.Fatalf("List completed/failed: %v", err)
	}
	if len(done) != 1 || done[0].ID != second.ID {
		t.Fatalf("completed filter returned %d items", len(done))
	}
}
