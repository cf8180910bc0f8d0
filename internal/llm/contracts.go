package llm

import (
	"context"

	"github.com/davidmaina/contract-vault/internal/entity"
)

// ExtractRequest is the fixed request shape sent to the analysis collaborator.
type ExtractRequest struct {
	FileName     string         `json:"fileName"`
	FileContent  string         `json:"fileContent"`
	ExistingData map[string]any `json:"existingData"`
}

// ExtractionReply is the fixed response shape expected back. The collaborator
// may wrap it in prose; FirstJSONObject digs it out.
type ExtractionReply struct {
	ContractData  entity.ContractCandidate `json:"contractData"`
	Confidence    entity.ConfidenceScores  `json:"confidence"`
	MissingFields []string                 `json:"missingFields"`
	Warnings      []string                 `json:"warnings"`
}

// FieldExtractor is the interface the pipeline depends on. Implementations
// must recover from collaborator failures with a deterministic fallback reply
// rather than returning an error; the only error they may surface is context
// cancellation.
type FieldExtractor interface {
	ExtractContract(ctx context.Context, req ExtractRequest) (ExtractionReply, []byte /*rawJSON*/, error)
}
