package pipeline

import (
	"fmt"

	"github.com/davidmaina/contract-vault/constants"
	"github.com/davidmaina/contract-vault/internal/common"
)

// transitions lists the legal forward moves for an upload job. ERROR is
// reachable from any non-terminal status; COMPLETED is terminal. Retry is the
// single exception and is handled by ValidateTransition directly because it
// also resets job data.
var transitions = map[constants.JobStatus][]constants.JobStatus{
	constants.JobStatusUploading:  {constants.JobStatusExtracting, constants.JobStatusError},
	constants.JobStatusExtracting: {constants.JobStatusReviewing, constants.JobStatusCompleted, constants.JobStatusError},
	constants.JobStatusReviewing:  {constants.JobStatusCompleted, constants.JobStatusError},
	constants.JobStatusCompleted:  {},
	constants.JobStatusError:      {constants.JobStatusUploading},
}

// ValidateTransition reports whether from -> to is a legal move. The only
// edge out of ERROR is back to UPLOADING (retry); COMPLETED has no edges.
func ValidateTransition(from, to constants.JobStatus) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return common.NewAppError("INVALID_TRANSITION",
		fmt.Sprintf("cannot move job from %s to %s", from, to),
		common.ErrInvalidStatus)
}

// progressFor maps each active status to its floor progress value.
var progressFor = map[constants.JobStatus]int{
	constants.JobStatusUploading:  0,
	constants.JobStatusExtracting: 20,
	constants.JobStatusReviewing:  90,
	constants.JobStatusCompleted:  100,
}

// nextProgress keeps progress monotonic within a processing run: a proposed
// value below the current one is ignored. A retry resets progress through
// the store, not through this helper.
func nextProgress(current, proposed int) int {
	if proposed < current {
		return current
	}
	if proposed > 100 {
		return 100
	}
	return proposed
}
