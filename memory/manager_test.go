package memory

import (
	"context"
	"strings"
	"testing"
)

func TestRecordMessageTrimsWindow(t *testing.T) {
	store := NewFileStore(t.TempDir())
	mgr := NewManager(store, 3)
	ctx := context.Background()

	for _, msg := range []string{"um", "dois", "três", "quatro", "cinco"} {
		if err := mgr.RecordMessage(ctx, 42, msg); err != nil {
			t.Fatalf("RecordMessage(%q) error = %v", msg, err)
		}
	}

	rec, found, err := mgr.Recall(ctx, 42)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if !found {
		t.Fatal("expected record after writes")
	}
	want := []string{"três", "quatro", "cinco"}
	if len(rec.Window) != len(want) {
		t.Fatalf("window = %v, want %v", rec.Window, want)
	}
	for i := range want {
		if rec.Window[i] != want[i] {
			t.Fatalf("window[%d] = %q, want %q", i, rec.Window[i], want[i])
		}
	}
}

func TestSaveSummaryOverwrites(t *testing.T) {
	store := NewFileStore(t.TempDir())
	mgr := NewManager(store, 5)
	ctx := context.Background()

	if err := mgr.SaveSummary(ctx, 7, "Saldo da Vodka: 12 unidades.\nMais detalhes aqui."); err != nil {
		t.Fatalf("SaveSummary() error = %v", err)
	}
	if err := mgr.SaveSummary(ctx, 7, "Agendado evento para sexta."); err != nil {
		t.Fatalf("SaveSummary() error = %v", err)
	}

	rec, _, err := mgr.Recall(ctx, 7)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if rec.Summary != "Agendado evento para sexta." {
		t.Fatalf("summary = %q", rec.Summary)
	}
}

func TestOneLineTruncates(t *testing.T) {
	long := strings.Repeat("cerveja ", 40)
	got := OneLine(long)
	if len([]rune(got)) > 140 {
		t.Fatalf("OneLine length = %d, want <= 140", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncated line should end with ellipsis, got %q", got)
	}
}

func TestPrimingHintEmptyRecord(t *testing.T) {
	if got := PrimingHint(Record{}); got != "" {
		t.Fatalf("PrimingHint(empty) = %q, want empty", got)
	}
}

func TestPrimingHintIncludesSummaryAndWindow(t *testing.T) {
	got := PrimingHint(Record{
		Summary: "Saldo da Vodka: 12.",
		Window:  []string{"quanto tem de vodka?", "comprei 5 gelo"},
	})
	if !strings.Contains(got, "Saldo da Vodka: 12.") {
		t.Fatalf("hint missing summary: %q", got)
	}
	if !strings.Contains(got, "- comprei 5 gelo") {
		t.Fatalf("hint missing window item: %q", got)
	}
}
