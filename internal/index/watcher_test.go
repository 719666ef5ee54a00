package index_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/mannaz/internal/index"
	"github.com/starford/mannaz/internal/testutil"
)

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func indexedPaths(t *testing.T, db *index.DB) map[string]string {
	t.Helper()
	all, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	return all
}

func TestWatch_IndexesNewDocument(t *testing.T) {
	db := testutil.TestDB(t)
	vaultDir, store := testutil.TestVault(t)
	if err := store.EnsureDir("Contacts"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- index.Watch(ctx, db, store, vaultDir, "Contacts", discard(), nil)
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	writeDoc(t, store, "Contacts/Ann.md", "Ann")

	if !eventually(t, 3*time.Second, func() bool {
		_, ok := indexedPaths(t, db)["Contacts/Ann.md"]
		return ok
	}) {
		t.Error("document was not indexed by the watcher")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watcher did not stop on cancel")
	}
}

func TestWatch_RemovesDeletedDocument(t *testing.T) {
	db := testutil.TestDB(t)
	vaultDir, store := testutil.TestVault(t)
	if err := store.EnsureDir("Contacts"); err != nil {
		t.Fatal(err)
	}
	writeDoc(t, store, "Contacts/Ann.md", "Ann")
	if err := index.Sync(db, store, "Contacts", discard()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go index.Watch(ctx, db, store, vaultDir, "Contacts", discard(), nil) //nolint:errcheck

	time.Sleep(100 * time.Millisecond)

	if err := os.Remove(filepath.Join(vaultDir, "Contacts", "Ann.md")); err != nil {
		t.Fatal(err)
	}

	if !eventually(t, 3*time.Second, func() bool {
		_, ok := indexedPaths(t, db)["Contacts/Ann.md"]
		return !ok
	}) {
		t.Error("deleted document still in the index")
	}
}

func TestWatch_ReportsEvents(t *testing.T) {
	db := testutil.TestDB(t)
	vaultDir, store := testutil.TestVault(t)
	if err := store.EnsureDir("Contacts"); err != nil {
		t.Fatal(err)
	}

	type event struct{ kind, path string }
	events := make(chan event, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go index.Watch(ctx, db, store, vaultDir, "Contacts", discard(), func(kind, path string) { //nolint:errcheck
		events <- event{kind, path}
	})

	time.Sleep(100 * time.Millisecond)

	writeDoc(t, store, "Contacts/Ann.md", "Ann")

	select {
	case ev := <-events:
		if ev.path != "Contacts/Ann.md" {
			t.Errorf("event path = %q", ev.path)
		}
		if ev.kind != "created" && ev.kind != "updated" {
			t.Errorf("event kind = %q", ev.kind)
		}
	case <-time.After(3 * time.Second):
		t.Error("no event received for new document")
	}
}
