package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidmaina/contract-vault/constants"
	"github.com/davidmaina/contract-vault/internal/extract"
)

// UploadJob tracks one submitted file through the pipeline. The processing
// task owns it exclusively until the job reaches REVIEWING; the review step
// then hands ownership to the user.
type UploadJob struct {
	ID          uuid.UUID
	FileName    string
	Path        string
	Size        int64
	MIMEType    string
	Format      constants.FileFormat
	Status      constants.JobStatus
	Progress    int // 0..100, monotonic while active
	SubmittedAt time.Time

	Extraction    *extract.ExtractionResult
	Candidate     *ContractCandidate
	Confidence    ConfidenceScores
	MissingFields []string
	Warnings      []string
	ErrorMessage  string

	// ContractID is set once the persistence collaborator accepts the record.
	ContractID uuid.UUID
}

// Clone returns a snapshot safe to hand outside the owning task.
func (j *UploadJob) Clone() *UploadJob {
	if j == nil {
		return nil
	}
	out := *j
	if j.Extraction != nil {
		ext := *j.Extraction
		ext.Warnings = append([]string(nil), j.Extraction.Warnings...)
		out.Extraction = &ext
	}
	out.Candidate = j.Candidate.Clone()
	out.Confidence = j.Confidence.Clone()
	out.MissingFields = append([]string(nil), j.MissingFields...)
	out.Warnings = append([]string(nil), j.Warnings...)
	return &out
}
