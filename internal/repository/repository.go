package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContractRecord is the persisted form of an accepted candidate. Dates are
// the normalized YYYY-MM-DD strings; both are guaranteed present by the time
// a record reaches persistence.
type ContractRecord struct {
	ID                uuid.UUID
	Title             string
	Counterparty      string
	ContractType      string
	Status            string
	Value             float64
	Currency          string
	EffectiveDate     string
	ExpirationDate    string
	RenewalNoticeDays int
	Content           string
	SourceFileName    string
	CreatedAt         time.Time
}

// Deadline is a dated obligation derived from a contract, e.g. its
// expiration.
type Deadline struct {
	ID          uuid.UUID
	ContractID  uuid.UUID
	Kind        string // "expiration"
	DueDate     string // YYYY-MM-DD
	Description string
	CreatedAt   time.Time
}

// Insight is a short generated note attached to a contract on completion.
type Insight struct {
	ID         uuid.UUID
	ContractID uuid.UUID
	Kind       string // "completion"
	Summary    string
	CreatedAt  time.Time
}

// ContractRepository persists accepted contracts and their derived records.
type ContractRepository interface {
	CreateContract(ctx context.Context, rec *ContractRecord) error
	CreateDeadline(ctx context.Context, d *Deadline) error
	CreateInsight(ctx context.Context, in *Insight) error
	ListContracts(ctx context.Context) ([]*ContractRecord, error)
	Close() error
}

// FileStore keeps the raw uploaded document for a persisted contract.
type FileStore interface {
	StoreRawFile(ctx context.Context, contractID uuid.UUID, srcPath string) (string, error)
}
