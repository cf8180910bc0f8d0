package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(context.Background(), "file:"+filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteContractRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := &ContractRecord{
		ID:                uuid.New(),
		Title:             "Vendor Agreement",
		Counterparty:      "Globex",
		ContractType:      "Vendor Agreement",
		Status:            "Active",
		Value:             5000.50,
		Currency:          "EUR",
		EffectiveDate:     "2026-02-01",
		ExpirationDate:    "2027-02-01",
		RenewalNoticeDays: 60,
		Content:           "full text here",
		SourceFileName:    "globex_vendor.pdf",
	}
	if err := repo.CreateContract(ctx, rec); err != nil {
		t.Fatalf("CreateContract: %v", err)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt should be stamped on insert")
	}

	got, err := repo.ListContracts(ctx)
	if err != nil {
		t.Fatalf("ListContracts: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("contracts = %d, want 1", len(got))
	}
	if got[0].ID != rec.ID || got[0].Title != rec.Title || got[0].Value != rec.Value {
		t.Errorf("round trip mismatch: %+v", got[0])
	}
	if got[0].EffectiveDate != "2026-02-01" || got[0].ExpirationDate != "2027-02-01" {
		t.Errorf("dates mismatch: %+v", got[0])
	}
}

func TestSQLiteListOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := &ContractRecord{
		ID: uuid.New(), Title: "Older", Counterparty: "A", ContractType: "Other",
		Status: "Active", Currency: "USD",
		EffectiveDate: "2025-01-01", ExpirationDate: "2026-01-01",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	newer := &ContractRecord{
		ID: uuid.New(), Title: "Newer", Counterparty: "B", ContractType: "Other",
		Status: "Active", Currency: "USD",
		EffectiveDate: "2026-01-01", ExpirationDate: "2027-01-01",
		CreatedAt: time.Now().UTC(),
	}
	for _, rec := range []*ContractRecord{older, newer} {
		if err := repo.CreateContract(ctx, rec); err != nil {
			t.Fatalf("CreateContract: %v", err)
		}
	}

	got, err := repo.ListContracts(ctx)
	if err != nil {
		t.Fatalf("ListContracts: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Newer" {
		t.Errorf("expected newest first, got %v", []string{got[0].Title, got[1].Title})
	}
}

func TestSQLiteDeadlineAndInsight(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	contractID := uuid.New()
	if err := repo.CreateContract(ctx, &ContractRecord{
		ID: contractID, Title: "T", Counterparty: "C", ContractType: "Other",
		Status: "Active", Currency: "USD",
		EffectiveDate: "2026-01-01", ExpirationDate: "2027-01-01",
	}); err != nil {
		t.Fatalf("CreateContract: %v", err)
	}

	if err := repo.CreateDeadline(ctx, &Deadline{
		ID:          uuid.New(),
		ContractID:  contractID,
		Kind:        "expiration",
		DueDate:     "2027-01-01",
		Description: "T expires",
	}); err != nil {
		t.Errorf("CreateDeadline: %v", err)
	}
	if err := repo.CreateInsight(ctx, &Insight{
		ID:         uuid.New(),
		ContractID: contractID,
		Kind:       "completion",
		Summary:    "T with C runs 2026-01-01 to 2027-01-01",
	}); err != nil {
		t.Errorf("CreateInsight: %v", err)
	}
}

func TestDiskFileStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskFileStore(filepath.Join(dir, "files"), nil)
	if err != nil {
		t.Fatalf("NewDiskFileStore: %v", err)
	}

	src := filepath.Join(dir, "upload.pdf")
	if err := os.WriteFile(src, []byte("raw pdf bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	id := uuid.New()
	path, err := store.StoreRawFile(context.Background(), id, src)
	if err != nil {
		t.Fatalf("StoreRawFile: %v", err)
	}
	if filepath.Base(path) != id.String()+".pdf" {
		t.Errorf("stored as %q, want id-keyed name with extension", filepath.Base(path))
	}
	stored, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(stored) != "raw pdf bytes" {
		t.Errorf("stored content = %q", stored)
	}

	if _, err := store.StoreRawFile(context.Background(), uuid.New(), filepath.Join(dir, "missing.pdf")); err == nil {
		t.Error("expected error for a missing source file")
	}
}
