package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/davidmaina/contract-vault/constants"
	"github.com/davidmaina/contract-vault/internal/entity"
	"github.com/davidmaina/contract-vault/internal/extract"
	"github.com/davidmaina/contract-vault/internal/llm"
	"github.com/davidmaina/contract-vault/internal/repository"
)

// fakeExtractor returns a canned reply, or the context error if set.
type fakeExtractor struct {
	reply llm.ExtractionReply
}

func (f *fakeExtractor) ExtractContract(ctx context.Context, req llm.ExtractRequest) (llm.ExtractionReply, []byte, error) {
	if err := ctx.Err(); err != nil {
		return llm.ExtractionReply{}, nil, err
	}
	reply := f.reply
	if reply.ContractData.Content == "" {
		reply.ContractData.Content = req.FileContent
	}
	return reply, []byte("{}"), nil
}

// memRepo is an in-memory ContractRepository that can be told to fail.
type memRepo struct {
	mu        sync.Mutex
	contracts []*repository.ContractRecord
	deadlines []*repository.Deadline
	insights  []*repository.Insight
	failWith  error
}

func (m *memRepo) CreateContract(_ context.Context, rec *repository.ContractRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.contracts = append(m.contracts, rec)
	return nil
}

func (m *memRepo) CreateDeadline(_ context.Context, d *repository.Deadline) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deadlines = append(m.deadlines, d)
	return nil
}

func (m *memRepo) CreateInsight(_ context.Context, in *repository.Insight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insights = append(m.insights, in)
	return nil
}

func (m *memRepo) ListContracts(context.Context) ([]*repository.ContractRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*repository.ContractRecord(nil), m.contracts...), nil
}

func (m *memRepo) Close() error { return nil }

func completeReply() llm.ExtractionReply {
	title := "Master Services Agreement"
	counterparty := "Acme Corp"
	ctype := "Service Agreement"
	value := 12000.0
	currency := "USD"
	eff := "2026-01-01"
	exp := "2026-12-31"
	days := 30
	return llm.ExtractionReply{
		ContractData: entity.ContractCandidate{
			Title:             &title,
			Counterparty:      &counterparty,
			ContractType:      &ctype,
			Status:            "Active",
			Value:             &value,
			Currency:          &currency,
			EffectiveDate:     &eff,
			ExpirationDate:    &exp,
			RenewalNoticeDays: &days,
		},
		Confidence: entity.ConfidenceScores{constants.FieldTitle: 0.9},
	}
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestProcessor(t *testing.T, extractor llm.FieldExtractor, repo repository.ContractRepository) (*Processor, *JobStore) {
	t.Helper()
	store := NewJobStore(nil)
	engine := extract.NewEngine(extract.Config{}, nil)
	return NewProcessor(store, engine, extractor, repo, nil, nil), store
}

const goodText = "This agreement is made between Acme Corp and Contoso Ltd for services."

func TestProcessCompletesCleanJob(t *testing.T) {
	repo := &memRepo{}
	p, store := newTestProcessor(t, &fakeExtractor{reply: completeReply()}, repo)

	path := writeDoc(t, goodText)
	job := p.Submit("contract.txt", path, "text/plain", int64(len(goodText)))
	if job.Status != constants.JobStatusUploading {
		t.Fatalf("submitted status = %s", job.Status)
	}
	if job.Format != constants.TEXT {
		t.Fatalf("Format = %s, want TEXT", job.Format)
	}

	if err := p.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got, _ := store.Get(job.ID)
	if got.Status != constants.JobStatusCompleted {
		t.Fatalf("Status = %s, want COMPLETED; error=%q missing=%v warnings=%v",
			got.Status, got.ErrorMessage, got.MissingFields, got.Warnings)
	}
	if got.Progress != 100 {
		t.Errorf("Progress = %d, want 100", got.Progress)
	}
	if got.ContractID == uuid.Nil {
		t.Error("ContractID should be set on completion")
	}
	if len(repo.contracts) != 1 {
		t.Fatalf("contracts persisted = %d, want 1", len(repo.contracts))
	}
	rec := repo.contracts[0]
	if rec.Title != "Master Services Agreement" || rec.Counterparty != "Acme Corp" {
		t.Errorf("persisted record = %+v", rec)
	}
	if rec.Content != goodText {
		t.Errorf("persisted content = %q, want the extracted text", rec.Content)
	}
	if len(repo.deadlines) != 1 || repo.deadlines[0].DueDate != "2026-12-31" {
		t.Errorf("deadlines = %+v, want one at the expiration date", repo.deadlines)
	}
	if len(repo.insights) != 1 {
		t.Errorf("insights = %d, want 1", len(repo.insights))
	}
}

func TestProcessRoutesIncompleteCandidateToReview(t *testing.T) {
	reply := completeReply()
	reply.ContractData.Counterparty = nil
	p, store := newTestProcessor(t, &fakeExtractor{reply: reply}, &memRepo{})

	path := writeDoc(t, goodText)
	job := p.Submit("contract.txt", path, "text/plain", 0)
	if err := p.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got, _ := store.Get(job.ID)
	if got.Status != constants.JobStatusReviewing {
		t.Fatalf("Status = %s, want REVIEWING", got.Status)
	}
	if len(got.MissingFields) != 1 || got.MissingFields[0] != constants.FieldCounterparty {
		t.Errorf("MissingFields = %v, want [counterparty]", got.MissingFields)
	}
	if got.Candidate == nil {
		t.Fatal("candidate should be retained for review")
	}
	if got.Extraction == nil || got.Extraction.Text != goodText {
		t.Error("extraction result should be retained on the job")
	}
}

func TestProcessLowQualityWarnsAndContinues(t *testing.T) {
	p, store := newTestProcessor(t, &fakeExtractor{reply: completeReply()}, &memRepo{})

	path := writeDoc(t, "tiny") // under the acceptance length
	job := p.Submit("contract.txt", path, "text/plain", 0)
	if err := p.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got, _ := store.Get(job.ID)
	if got.Status != constants.JobStatusReviewing {
		t.Fatalf("Status = %s, want REVIEWING because of the quality warning", got.Status)
	}
	found := false
	for _, w := range got.Warnings {
		if w == QualityWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want the quality warning", got.Warnings)
	}
}

func TestProcessFailFastStopsOnLowQuality(t *testing.T) {
	p, store := newTestProcessor(t, &fakeExtractor{reply: completeReply()}, &memRepo{})
	p.FailFast = true

	path := writeDoc(t, "tiny")
	job := p.Submit("contract.txt", path, "text/plain", 0)
	if err := p.Process(context.Background(), job.ID); err == nil {
		t.Fatal("expected Process to report the quality failure")
	}

	got, _ := store.Get(job.ID)
	if got.Status != constants.JobStatusError {
		t.Fatalf("Status = %s, want ERROR", got.Status)
	}
	if !strings.Contains(got.ErrorMessage, "quality") {
		t.Errorf("ErrorMessage = %q, want a quality message", got.ErrorMessage)
	}
}

func TestProcessPersistenceFailure(t *testing.T) {
	repo := &memRepo{failWith: errors.New("connection refused: db01:5432")}
	p, store := newTestProcessor(t, &fakeExtractor{reply: completeReply()}, repo)

	path := writeDoc(t, goodText)
	job := p.Submit("contract.txt", path, "text/plain", 0)
	if err := p.Process(context.Background(), job.ID); err == nil {
		t.Fatal("expected persistence failure to surface")
	}

	got, _ := store.Get(job.ID)
	if got.Status != constants.JobStatusError {
		t.Fatalf("Status = %s, want ERROR", got.Status)
	}
	if got.ErrorMessage != "connection refused: db01:5432" {
		t.Errorf("ErrorMessage = %q, want the collaborator message verbatim", got.ErrorMessage)
	}
	if got.Candidate == nil {
		t.Error("candidate should be kept on the job for retry")
	}
}

func TestRetryAfterPersistenceFailure(t *testing.T) {
	repo := &memRepo{failWith: errors.New("db down")}
	p, store := newTestProcessor(t, &fakeExtractor{reply: completeReply()}, repo)

	path := writeDoc(t, goodText)
	job := p.Submit("contract.txt", path, "text/plain", 0)
	if err := p.Process(context.Background(), job.ID); err == nil {
		t.Fatal("expected first run to fail")
	}

	repo.mu.Lock()
	repo.failWith = nil
	repo.mu.Unlock()

	if _, err := store.Retry(job.ID); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if err := p.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("second Process: %v", err)
	}
	got, _ := store.Get(job.ID)
	if got.Status != constants.JobStatusCompleted {
		t.Errorf("Status = %s, want COMPLETED after retry", got.Status)
	}
}

func TestSaveReviewedCompletesJob(t *testing.T) {
	reply := completeReply()
	reply.ContractData.Counterparty = nil
	repo := &memRepo{}
	p, store := newTestProcessor(t, &fakeExtractor{reply: reply}, repo)

	path := writeDoc(t, goodText)
	job := p.Submit("contract.txt", path, "text/plain", 0)
	if err := p.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got, _ := store.Get(job.ID)
	edited := got.Candidate.Clone()
	cp := "Contoso Ltd"
	edited.Counterparty = &cp

	if err := p.SaveReviewed(context.Background(), job.ID, edited, got.Confidence); err != nil {
		t.Fatalf("SaveReviewed: %v", err)
	}
	got, _ = store.Get(job.ID)
	if got.Status != constants.JobStatusCompleted {
		t.Fatalf("Status = %s, want COMPLETED", got.Status)
	}
	if len(repo.contracts) != 1 || repo.contracts[0].Counterparty != "Contoso Ltd" {
		t.Errorf("persisted counterparty = %+v, want the reviewer's edit", repo.contracts)
	}
}

func TestSaveReviewedRejectsIncompleteEdit(t *testing.T) {
	reply := completeReply()
	reply.ContractData.Counterparty = nil
	p, store := newTestProcessor(t, &fakeExtractor{reply: reply}, &memRepo{})

	path := writeDoc(t, goodText)
	job := p.Submit("contract.txt", path, "text/plain", 0)
	if err := p.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got, _ := store.Get(job.ID)
	if err := p.SaveReviewed(context.Background(), job.ID, got.Candidate, got.Confidence); err == nil {
		t.Fatal("saving with missing counterparty should be rejected")
	}
	got, _ = store.Get(job.ID)
	if got.Status != constants.JobStatusReviewing {
		t.Errorf("Status = %s, job should stay in review", got.Status)
	}
}

func TestSaveReviewedRequiresReviewingStatus(t *testing.T) {
	p, _ := newTestProcessor(t, &fakeExtractor{reply: completeReply()}, &memRepo{})
	path := writeDoc(t, goodText)
	job := p.Submit("contract.txt", path, "text/plain", 0)

	if err := p.SaveReviewed(context.Background(), job.ID, &entity.ContractCandidate{}, nil); err == nil {
		t.Error("SaveReviewed on an UPLOADING job should be rejected")
	}
}

func TestProcessCancelledContext(t *testing.T) {
	p, store := newTestProcessor(t, &fakeExtractor{reply: completeReply()}, &memRepo{})
	path := writeDoc(t, goodText)
	job := p.Submit("contract.txt", path, "text/plain", 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Process(ctx, job.ID); err == nil {
		t.Fatal("expected cancellation to surface")
	}
	got, _ := store.Get(job.ID)
	if got.Status != constants.JobStatusError {
		t.Errorf("Status = %s, want ERROR after cancellation", got.Status)
	}
}
