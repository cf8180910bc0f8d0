package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/davidmaina/contract-vault/constants"
	"github.com/davidmaina/contract-vault/internal/common"
	"github.com/davidmaina/contract-vault/internal/entity"
	"github.com/davidmaina/contract-vault/internal/extract"
	"github.com/davidmaina/contract-vault/internal/llm"
	"github.com/davidmaina/contract-vault/internal/repository"
	"github.com/davidmaina/contract-vault/internal/validate"
)

// QualityWarning is attached when extraction output fails the quality gate
// but processing continues anyway.
const QualityWarning = "Extracted text quality is low - structured fields may be unreliable"

// Processor runs submitted files through extraction, structured field
// extraction, and validation, then persists accepted candidates. One
// Processor is shared by all queue workers; per-job state lives in the store.
type Processor struct {
	store     *JobStore
	engine    *extract.Engine
	extractor llm.FieldExtractor
	repo      repository.ContractRepository
	files     repository.FileStore
	logger    *slog.Logger

	// FailFast turns the quality gate into a hard stop instead of a warning.
	FailFast bool
}

func NewProcessor(
	store *JobStore,
	engine *extract.Engine,
	extractor llm.FieldExtractor,
	repo repository.ContractRepository,
	files repository.FileStore,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		store:     store,
		engine:    engine,
		extractor: extractor,
		repo:      repo,
		files:     files,
		logger:    logger,
	}
}

// Submit registers a new upload job and returns its snapshot. The caller is
// responsible for enqueueing the returned job id for processing.
func (p *Processor) Submit(fileName, path, mimeType string, size int64) *entity.UploadJob {
	job := &entity.UploadJob{
		ID:          uuid.New(),
		FileName:    fileName,
		Path:        path,
		Size:        size,
		MIMEType:    mimeType,
		Format:      constants.DetectFormat(mimeType, fileName),
		SubmittedAt: time.Now().UTC(),
	}
	p.store.Add(job)
	return job.Clone()
}

// Process runs the full pipeline for one job. Every failure path lands the
// job in ERROR with a message; Process itself returns an error only so the
// queue can log it.
func (p *Processor) Process(ctx context.Context, jobID uuid.UUID) error {
	ctx, cancel := context.WithCancel(ctx)
	p.store.BindCancel(jobID, cancel)
	defer func() {
		cancel()
		p.store.ReleaseCancel(jobID)
	}()

	job, err := p.store.Get(jobID)
	if err != nil {
		return err
	}
	p.logger.Info("pipeline.start",
		"job_id", jobID,
		"file_name", job.FileName,
		"format", string(job.Format),
	)

	if _, err := p.store.Update(jobID, func(j *entity.UploadJob) error {
		j.Status = constants.JobStatusExtracting
		j.Progress = 20
		return nil
	}); err != nil {
		return err
	}

	res, err := p.engine.Extract(ctx, job.Format, job.Path)
	if err != nil {
		p.store.Fail(jobID, fmt.Sprintf("text extraction failed: %v", err))
		return err
	}

	var qualityWarn []string
	if !extract.AcceptExtraction(res) {
		if p.FailFast {
			msg := fmt.Sprintf("extraction quality too low (confidence %.2f, %d chars)",
				res.Confidence, len(res.Text))
			p.store.Fail(jobID, msg)
			return common.NewAppError("QUALITY_GATE", msg, common.ErrQualityTooLow)
		}
		qualityWarn = append(qualityWarn, QualityWarning)
		p.logger.Warn("pipeline.quality_low",
			"job_id", jobID,
			"confidence", res.Confidence,
			"text_len", len(res.Text),
		)
	}

	if _, err := p.store.Update(jobID, func(j *entity.UploadJob) error {
		j.Extraction = &res
		j.Progress = 50
		return nil
	}); err != nil {
		return err
	}

	reply, _, err := p.extractor.ExtractContract(ctx, llm.ExtractRequest{
		FileName:    job.FileName,
		FileContent: res.Text,
	})
	if err != nil {
		// Only cancellation reaches here.
		p.store.Fail(jobID, fmt.Sprintf("structured extraction aborted: %v", err))
		return err
	}

	if _, err := p.store.Update(jobID, func(j *entity.UploadJob) error {
		j.Progress = 80
		return nil
	}); err != nil {
		return err
	}

	candidate := reply.ContractData.Clone()
	if candidate == nil {
		candidate = &entity.ContractCandidate{}
	}
	if candidate.Content == "" {
		candidate.Content = res.Text
	}

	warnings := append(append([]string{}, qualityWarn...), reply.Warnings...)
	result := validate.Normalize(candidate, reply.Confidence, warnings)

	if len(result.MissingFields) == 0 && len(result.Warnings) == 0 {
		return p.finalize(ctx, jobID, result)
	}

	if _, err := p.store.Update(jobID, func(j *entity.UploadJob) error {
		j.Status = constants.JobStatusReviewing
		j.Candidate = result.Candidate
		j.Confidence = result.Confidence
		j.MissingFields = result.MissingFields
		j.Warnings = result.Warnings
		return nil
	}); err != nil {
		return err
	}
	p.logger.Info("pipeline.reviewing",
		"job_id", jobID,
		"missing_fields", len(result.MissingFields),
		"warnings", len(result.Warnings),
		"title_confidence", constants.ConfidenceLabel(result.Confidence[constants.FieldTitle]),
	)
	return nil
}

// SaveReviewed applies a reviewer's edits to a REVIEWING job. The edited
// candidate is re-normalized; if critical fields are still missing the save
// is rejected and the job stays in review.
func (p *Processor) SaveReviewed(ctx context.Context, jobID uuid.UUID, candidate *entity.ContractCandidate, confidence entity.ConfidenceScores) error {
	job, err := p.store.Get(jobID)
	if err != nil {
		return err
	}
	if job.Status != constants.JobStatusReviewing {
		return common.NewAppError("INVALID_TRANSITION",
			"job is not awaiting review", common.ErrInvalidStatus)
	}

	result := validate.Normalize(candidate, confidence, nil)
	if len(result.MissingFields) > 0 {
		return common.NewAppError("INCOMPLETE_REVIEW",
			fmt.Sprintf("required fields still missing: %v", result.MissingFields),
			common.ErrInvalidInput)
	}
	return p.finalize(ctx, jobID, result)
}

// finalize persists the accepted candidate and moves the job to COMPLETED.
// A persistence failure lands the job in ERROR with the collaborator's
// message verbatim; the candidate stays on the job for retry.
func (p *Processor) finalize(ctx context.Context, jobID uuid.UUID, result validate.Result) error {
	job, err := p.store.Get(jobID)
	if err != nil {
		return err
	}

	contractID := uuid.New()
	rec := recordFromCandidate(contractID, job.FileName, result.Candidate)

	if err := p.persist(ctx, job, contractID, rec); err != nil {
		if _, uerr := p.store.Update(jobID, func(j *entity.UploadJob) error {
			j.Status = constants.JobStatusError
			j.Candidate = result.Candidate
			j.Confidence = result.Confidence
			j.MissingFields = result.MissingFields
			j.Warnings = result.Warnings
			j.ErrorMessage = err.Error()
			return nil
		}); uerr != nil {
			p.logger.Error("pipeline.error_update_rejected", "job_id", jobID, "error", uerr)
		}
		p.logger.Error("pipeline.persist_failed", "job_id", jobID, "error", err)
		return err
	}

	if _, err := p.store.Update(jobID, func(j *entity.UploadJob) error {
		j.Status = constants.JobStatusCompleted
		j.Progress = 100
		j.Candidate = result.Candidate
		j.Confidence = result.Confidence
		j.MissingFields = nil
		j.Warnings = result.Warnings
		j.ContractID = contractID
		return nil
	}); err != nil {
		return err
	}
	p.logger.Info("pipeline.completed", "job_id", jobID, "contract_id", contractID)
	return nil
}

func (p *Processor) persist(ctx context.Context, job *entity.UploadJob, contractID uuid.UUID, rec *repository.ContractRecord) error {
	if err := p.repo.CreateContract(ctx, rec); err != nil {
		return err
	}
	if p.files != nil {
		if _, err := p.files.StoreRawFile(ctx, contractID, job.Path); err != nil {
			return err
		}
	}
	if err := p.repo.CreateDeadline(ctx, &repository.Deadline{
		ID:          uuid.New(),
		ContractID:  contractID,
		Kind:        "expiration",
		DueDate:     rec.ExpirationDate,
		Description: fmt.Sprintf("%s expires; renewal notice %d days", rec.Title, rec.RenewalNoticeDays),
	}); err != nil {
		return err
	}
	return p.repo.CreateInsight(ctx, &repository.Insight{
		ID:         uuid.New(),
		ContractID: contractID,
		Kind:       "completion",
		Summary: fmt.Sprintf("%s with %s (%s, %s %.2f) runs %s to %s",
			rec.Title, rec.Counterparty, rec.ContractType,
			rec.Currency, rec.Value, rec.EffectiveDate, rec.ExpirationDate),
	})
}

// recordFromCandidate flattens a fully-normalized candidate. All pointer
// fields are non-nil by the time a candidate is accepted for persistence.
func recordFromCandidate(id uuid.UUID, fileName string, c *entity.ContractCandidate) *repository.ContractRecord {
	rec := &repository.ContractRecord{
		ID:             id,
		Status:         c.Status,
		Content:        c.Content,
		SourceFileName: fileName,
	}
	if c.Title != nil {
		rec.Title = *c.Title
	}
	if c.Counterparty != nil {
		rec.Counterparty = *c.Counterparty
	}
	if c.ContractType != nil {
		rec.ContractType = *c.ContractType
	}
	if c.Value != nil {
		rec.Value = *c.Value
	}
	if c.Currency != nil {
		rec.Currency = *c.Currency
	}
	if c.EffectiveDate != nil {
		rec.EffectiveDate = *c.EffectiveDate
	}
	if c.ExpirationDate != nil {
		rec.ExpirationDate = *c.ExpirationDate
	}
	if c.RenewalNoticeDays != nil {
		rec.RenewalNoticeDays = *c.RenewalNoticeDays
	}
	return rec
}
