package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/davidmaina/contract-vault/constants"
	"github.com/davidmaina/contract-vault/internal/common"
	"github.com/davidmaina/contract-vault/internal/entity"
)

// JobEvent is emitted on every observable job change.
type JobEvent struct {
	JobID    uuid.UUID
	Status   constants.JobStatus
	Progress int
}

// JobStore holds the in-flight upload jobs. All reads return deep snapshots;
// mutations go through Update so status transitions are validated in one
// place. The store also owns the per-job cancel functions so removing a job
// aborts any processing still running for it.
type JobStore struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]*entity.UploadJob
	cancels map[uuid.UUID]context.CancelFunc
	subs    []chan JobEvent
	logger  *slog.Logger
}

func NewJobStore(logger *slog.Logger) *JobStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobStore{
		jobs:    make(map[uuid.UUID]*entity.UploadJob),
		cancels: make(map[uuid.UUID]context.CancelFunc),
		logger:  logger,
	}
}

// Subscribe returns a channel receiving every job event. Events are dropped
// for subscribers that fall behind rather than blocking the pipeline.
func (s *JobStore) Subscribe() <-chan JobEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan JobEvent, 64)
	s.subs = append(s.subs, ch)
	return ch
}

func (s *JobStore) emit(ev JobEvent) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Add registers a new job in UPLOADING state.
func (s *JobStore) Add(job *entity.UploadJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.Status = constants.JobStatusUploading
	job.Progress = 0
	s.jobs[job.ID] = job
	s.logger.Info("job.added", "job_id", job.ID, "file_name", job.FileName)
	s.emit(JobEvent{JobID: job.ID, Status: job.Status, Progress: job.Progress})
}

// Get returns a snapshot of the job, or ErrNotFound.
func (s *JobStore) Get(id uuid.UUID) (*entity.UploadJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, common.NewAppError("JOB_NOT_FOUND", "no such upload job", common.ErrNotFound)
	}
	return job.Clone(), nil
}

// List returns snapshots of all known jobs.
func (s *JobStore) List() []*entity.UploadJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.UploadJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.Clone())
	}
	return out
}

// Update applies fn to the job under the store lock. Status changes made by
// fn are validated against the transition table; on violation the job is
// left untouched and the error is returned.
func (s *JobStore) Update(id uuid.UUID, fn func(*entity.UploadJob) error) (*entity.UploadJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, common.NewAppError("JOB_NOT_FOUND", "no such upload job", common.ErrNotFound)
	}
	draft := job.Clone()
	if err := fn(draft); err != nil {
		return nil, err
	}
	if draft.Status != job.Status {
		if err := ValidateTransition(job.Status, draft.Status); err != nil {
			return nil, err
		}
		if floor, ok := progressFor[draft.Status]; ok && draft.Status != constants.JobStatusUploading {
			draft.Progress = nextProgress(draft.Progress, floor)
		}
	}
	if draft.Status == job.Status {
		draft.Progress = nextProgress(job.Progress, draft.Progress)
	}
	s.jobs[id] = draft
	s.emit(JobEvent{JobID: id, Status: draft.Status, Progress: draft.Progress})
	return draft.Clone(), nil
}

// Fail moves the job to ERROR with the given message. The extraction result
// and candidate already on the job are kept for diagnosis.
func (s *JobStore) Fail(id uuid.UUID, msg string) {
	if _, err := s.Update(id, func(j *entity.UploadJob) error {
		j.Status = constants.JobStatusError
		j.ErrorMessage = msg
		return nil
	}); err != nil {
		s.logger.Error("job.fail_rejected", "job_id", id, "error", err)
		return
	}
	s.logger.Error("job.failed", "job_id", id, "message", msg)
}

// Retry moves an ERROR job back to UPLOADING and clears everything a fresh
// run will recompute. Any other starting status is rejected.
func (s *JobStore) Retry(id uuid.UUID) (*entity.UploadJob, error) {
	job, err := s.Update(id, func(j *entity.UploadJob) error {
		if j.Status != constants.JobStatusError {
			return common.NewAppError("INVALID_TRANSITION",
				"retry is only valid from ERROR", common.ErrInvalidStatus)
		}
		j.Status = constants.JobStatusUploading
		j.Progress = 0
		j.Extraction = nil
		j.Candidate = nil
		j.Confidence = nil
		j.MissingFields = nil
		j.Warnings = nil
		j.ErrorMessage = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("job.retry", "job_id", id)
	return job, nil
}

// BindCancel records the cancel function for the job's in-flight processing.
func (s *JobStore) BindCancel(id uuid.UUID, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels[id] = cancel
}

// ReleaseCancel drops the cancel binding once processing finishes.
func (s *JobStore) ReleaseCancel(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cancels, id)
}

// Remove deletes the job and cancels any processing still running for it.
func (s *JobStore) Remove(id uuid.UUID) error {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return common.NewAppError("JOB_NOT_FOUND", "no such upload job", common.ErrNotFound)
	}
	cancel := s.cancels[id]
	delete(s.jobs, id)
	delete(s.cancels, id)
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.logger.Info("job.removed", "job_id", id, "file_name", job.FileName)
	return nil
}
