package constants

// JobStatus is the canonical status for an upload job.
type JobStatus string

// Stable values (stored and surfaced to the UI layer as-is).
const (
	JobStatusUploading  JobStatus = "UPLOADING"  // accepted, not yet extracting
	JobStatusExtracting JobStatus = "EXTRACTING" // text + structured extraction in progress
	JobStatusReviewing  JobStatus = "REVIEWING"  // candidate awaits human review
	JobStatusCompleted  JobStatus = "COMPLETED"  // terminal success
	JobStatusError      JobStatus = "ERROR"      // terminal failure; Retry is the only way out
)
