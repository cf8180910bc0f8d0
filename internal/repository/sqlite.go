package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/davidmaina/contract-vault/internal/common"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS contracts (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	counterparty TEXT NOT NULL,
	contract_type TEXT NOT NULL,
	status TEXT NOT NULL,
	contract_value REAL NOT NULL,
	currency TEXT NOT NULL,
	effective_date TEXT NOT NULL,
	expiration_date TEXT NOT NULL,
	renewal_notice_days INTEGER NOT NULL,
	content TEXT NOT NULL,
	source_file_name TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS deadlines (
	id TEXT PRIMARY KEY,
	contract_id TEXT NOT NULL REFERENCES contracts(id),
	kind TEXT NOT NULL,
	due_date TEXT NOT NULL,
	description TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS insights (
	id TEXT PRIMARY KEY,
	contract_id TEXT NOT NULL REFERENCES contracts(id),
	kind TEXT NOT NULL,
	summary TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// SQLiteRepository backs the batch tool and tests. "file::memory:?cache=shared"
// gives a throwaway in-memory database.
type SQLiteRepository struct {
	db     *sql.DB
	sb     sq.StatementBuilderType
	logger *slog.Logger
}

func NewSQLiteRepository(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, common.WrapError(err, "open sqlite")
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, common.WrapError(err, "ensure sqlite schema")
	}
	return &SQLiteRepository{
		db:     db,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Question),
		logger: logger,
	}, nil
}

func (r *SQLiteRepository) CreateContract(ctx context.Context, rec *ContractRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	query, args, err := r.sb.Insert("contracts").
		Columns("id", "title", "counterparty", "contract_type", "status",
			"contract_value", "currency", "effective_date", "expiration_date",
			"renewal_notice_days", "content", "source_file_name", "created_at").
		Values(rec.ID.String(), rec.Title, rec.Counterparty, rec.ContractType, rec.Status,
			rec.Value, rec.Currency, rec.EffectiveDate, rec.ExpirationDate,
			rec.RenewalNoticeDays, rec.Content, rec.SourceFileName, rec.CreatedAt).
		ToSql()
	if err != nil {
		return common.WrapError(err, "build contract insert")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return common.NewAppError("DB_ERROR", "insert contract", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateDeadline(ctx context.Context, d *Deadline) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	query, args, err := r.sb.Insert("deadlines").
		Columns("id", "contract_id", "kind", "due_date", "description", "created_at").
		Values(d.ID.String(), d.ContractID.String(), d.Kind, d.DueDate, d.Description, d.CreatedAt).
		ToSql()
	if err != nil {
		return common.WrapError(err, "build deadline insert")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return common.NewAppError("DB_ERROR", "insert deadline", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateInsight(ctx context.Context, in *Insight) error {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	query, args, err := r.sb.Insert("insights").
		Columns("id", "contract_id", "kind", "summary", "created_at").
		Values(in.ID.String(), in.ContractID.String(), in.Kind, in.Summary, in.CreatedAt).
		ToSql()
	if err != nil {
		return common.WrapError(err, "build insight insert")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return common.NewAppError("DB_ERROR", "insert insight", err)
	}
	return nil
}

func (r *SQLiteRepository) ListContracts(ctx context.Context) ([]*ContractRecord, error) {
	query, args, err := r.sb.Select("id", "title", "counterparty", "contract_type",
		"status", "contract_value", "currency", "effective_date", "expiration_date",
		"renewal_notice_days", "content", "source_file_name", "created_at").
		From("contracts").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, common.WrapError(err, "build contract select")
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "list contracts", err)
	}
	defer rows.Close()

	var out []*ContractRecord
	for rows.Next() {
		var (
			rec ContractRecord
			id  string
		)
		if err := rows.Scan(&id, &rec.Title, &rec.Counterparty, &rec.ContractType,
			&rec.Status, &rec.Value, &rec.Currency, &rec.EffectiveDate, &rec.ExpirationDate,
			&rec.RenewalNoticeDays, &rec.Content, &rec.SourceFileName, &rec.CreatedAt); err != nil {
			return nil, common.WrapError(err, "scan contract row")
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, common.WrapError(err, "parse contract id")
		}
		rec.ID = parsed
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
