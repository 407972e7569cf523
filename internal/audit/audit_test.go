package audit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSQLiteWriter_WriteAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	w, err := NewSQLiteWriter(path)
	if err != nil {
		t.Fatalf("new sqlite writer: %v", err)
	}
	t.Cleanup(func() {
		_ = w.Close()
	})

	now := time.Now().UTC()
	entries := []Entry{
		{
			TransactionID: "create_bet_tx-1",
			Operation:     OpCreateBet,
			Status:        StatusSuccess,
			EventID:       7,
			SelectedTeam:  "Real Madrid",
			Amount:        150,
			BetID:         42,
			TokenHash:     HashToken("tok-a"),
			ValidationMS:  3.5,
			BackendMS:     120.2,
			CreatedAt:     now.Add(-time.Hour),
		},
		{
			TransactionID: "create_bet_tx-2",
			Operation:     OpCreateBet,
			Status:        StatusFailed,
			EventID:       7,
			SelectedTeam:  "Real Madrid",
			Amount:        99999,
			ErrorMessage:  "amount exceeds limit",
			TokenHash:     HashToken("tok-a"),
			CreatedAt:     now,
		},
	}
	for _, e := range entries {
		if err := w.Write(context.Background(), e); err != nil {
			t.Fatalf("write audit entry: %v", err)
		}
	}

	recent, err := w.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].TransactionID != "create_bet_tx-2" {
		t.Errorf("expected newest first, got %s", recent[0].TransactionID)
	}
	if recent[0].Status != StatusFailed || recent[0].ErrorMessage != "amount exceeds limit" {
		t.Errorf("failed entry not preserved: %+v", recent[0])
	}
	if recent[1].BetID != 42 {
		t.Errorf("expected bet id 42, got %d", recent[1].BetID)
	}
}

func TestHashToken(t *testing.T) {
	h1 := HashToken("secret-token")
	h2 := HashToken("secret-token")
	if h1 != h2 {
		t.Error("hash must be deterministic")
	}
	if len(h1) != 16 {
		t.Errorf("expected 16 hex chars, got %d", len(h1))
	}
	if strings.Contains(h1, "secret") {
		t.Error("hash must not contain the token")
	}
	if HashToken("other-token") == h1 {
		t.Error("different tokens must hash differently")
	}
}

func TestNewTransactionID(t *testing.T) {
	id := NewTransactionID(OpCancelBet)
	if !strings.HasPrefix(id, "cancel_bet_") {
		t.Errorf("expected operation prefix, got %s", id)
	}
	if id == NewTransactionID(OpCancelBet) {
		t.Error("transaction ids must be unique")
	}
}

func TestPostgresWriterContract(t *testing.T) {
	dsn := os.Getenv("BFF_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("set BFF_TEST_POSTGRES_DSN to run Postgres audit integration tests")
	}

	w, err := NewPostgresWriter(dsn)
	if err != nil {
		t.Fatalf("new postgres writer: %v", err)
	}
	t.Cleanup(func() {
		_, _ = w.db.Exec("DELETE FROM audit_log")
		_ = w.Close()
	})

	_, _ = w.db.Exec("DELETE FROM audit_log")

	entry := Entry{
		TransactionID: "preview_bet_pg",
		Operation:     OpPreviewBet,
		Status:        StatusSuccess,
		EventID:       3,
		Amount:        25,
		TokenHash:     HashToken("pg-token"),
		CreatedAt:     time.Now().UTC(),
	}
	if err := w.Write(context.Background(), entry); err != nil {
		t.Fatalf("write postgres audit entry: %v", err)
	}

	recent, err := w.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent postgres entries: %v", err)
	}
	if len(recent) != 1 || recent[0].Operation != OpPreviewBet {
		t.Fatalf("unexpected postgres entries: %+v", recent)
	}
}
