package storage

import (
	"testing"
	"time"
)

func TestBoltStoreMarksAndExpiresArticles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		SeenTTL:         1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(dir+"/trendlens.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	seen, err := store.SeenArticle("https://example.com/a")
	if err != nil || seen {
		t.Fatalf("expected unseen article, seen=%v err=%v", seen, err)
	}

	if err := store.MarkArticle("https://example.com/a"); err != nil {
		t.Fatalf("MarkArticle: %v", err)
	}

	seen, err = store.SeenArticle("https://example.com/a")
	if err != nil || !seen {
		t.Fatalf("expected article marked as seen, got seen=%v err=%v", seen, err)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	seen, err = store.SeenArticle("https://example.com/a")
	if err != nil {
		t.Fatalf("SeenArticle after expiry: %v", err)
	}
	if seen {
		t.Fatalf("expected entry to expire and be removed")
	}
}

func TestBoltStoreSavedIDsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := openBolt(dir+"/trendlens.db", normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer store.Close()

	ids, err := store.SavedIDs()
	if err != nil {
		t.Fatalf("SavedIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty saved set initially, got %v", ids)
	}

	want := []string{"id-1", "id-2"}
	if err := store.PutSavedIDs(want); err != nil {
		t.Fatalf("PutSavedIDs: %v", err)
	}

	ids, err = store.SavedIDs()
	if err != nil {
		t.Fatalf("SavedIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "id-1" || ids[1] != "id-2" {
		t.Fatalf("unexpected saved set: %v", ids)
	}

	// The set is rewritten in full on every save.
	if err := store.PutSavedIDs(nil); err != nil {
		t.Fatalf("PutSavedIDs clear: %v", err)
	}
	ids, err = store.SavedIDs()
	if err != nil {
		t.Fatalf("SavedIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected cleared saved set, got %v", ids)
	}
}

func TestNewStoreSupportsNone(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.MarkArticle("x"); err != nil {
		t.Fatalf("memory store MarkArticle: %v", err)
	}
	seen, err := store.SeenArticle("x")
	if err != nil || !seen {
		t.Fatalf("memory store should remember within the process, seen=%v err=%v", seen, err)
	}
}
