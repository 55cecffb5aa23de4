package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileStoreRoundtrip(t *testing.T) {
	store := NewFileStore(t.TempDir())
	store.Now = func() time.Time {
		return time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	in := Record{
		Summary: "Saldo consultado.",
		Window:  []string{"oi", "quanto tem de cerveja?"},
	}
	if err := store.Save(ctx, 99, in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, found, err := store.Load(ctx, 99)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !found {
		t.Fatal("expected record")
	}
	if out.Summary != in.Summary {
		t.Fatalf("summary = %q, want %q", out.Summary, in.Summary)
	}
	if out.UpdatedAt != "2026-05-02T12:00:00Z" {
		t.Fatalf("updated_at = %q", out.UpdatedAt)
	}
	if len(out.Window) != 2 || out.Window[1] != "quanto tem de cerveja?" {
		t.Fatalf("window = %v", out.Window)
	}
}

func TestFileStoreDocumentShape(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	ctx := context.Background()

	if err := store.Save(ctx, 5, Record{Summary: "resumo", Window: []string{"linha\ncom quebra"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "user_5.md"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	contents := string(raw)
	if !strings.HasPrefix(contents, "---\n") {
		t.Fatalf("document missing frontmatter: %q", contents)
	}
	if !strings.Contains(contents, "summary: resumo") {
		t.Fatalf("frontmatter missing summary: %q", contents)
	}
	if strings.Contains(contents, "linha\ncom quebra") {
		t.Fatal("window items must be flattened to one line")
	}
	if !strings.Contains(contents, "- linha com quebra") {
		t.Fatalf("window item missing: %q", contents)
	}
}

func TestFileStoreMissingUser(t *testing.T) {
	store := NewFileStore(t.TempDir())
	_, found, err := store.Load(context.Background(), 123)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if found {
		t.Fatal("expected found=false")
	}
}

func TestFileStoreMangledDocumentTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "user_8.md"), []byte("no frontmatter here"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	_, found, err := store.Load(context.Background(), 8)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if found {
		t.Fatal("mangled document should read as absent")
	}
}
