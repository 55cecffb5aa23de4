package memory

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRoundtrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if _, found, err := store.Load(ctx, 1); err != nil || found {
		t.Fatalf("Load(missing) = found=%v err=%v, want false nil", found, err)
	}

	in := Record{Summary: "resumo", Window: []string{"a", "b"}}
	if err := store.Save(ctx, 1, in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, found, err := store.Load(ctx, 1)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !found {
		t.Fatal("expected record")
	}
	if out.Summary != "resumo" || len(out.Window) != 2 || out.Window[0] != "a" {
		t.Fatalf("got %+v", out)
	}

	// Overwrite wholesale.
	if err := store.Save(ctx, 1, Record{Summary: "novo", Window: []string{"c"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	out, _, err = store.Load(ctx, 1)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if out.Summary != "novo" || len(out.Window) != 1 {
		t.Fatalf("got %+v after overwrite", out)
	}
}
