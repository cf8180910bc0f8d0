package repository

import (
	"context"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidmaina/contract-vault/internal/common"
)

// PostgresRepository persists contracts through a pgx pool. Statements are
// built with squirrel using dollar placeholders.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	sb     sq.StatementBuilderType
	logger *slog.Logger
}

func NewPostgresRepository(pool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{
		pool:   pool,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger: logger,
	}
}

func (r *PostgresRepository) CreateContract(ctx context.Context, rec *ContractRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	query, args, err := r.sb.Insert("contracts").
		Columns("id", "title", "counterparty", "contract_type", "status",
			"contract_value", "currency", "effective_date", "expiration_date",
			"renewal_notice_days", "content", "source_file_name", "created_at").
		Values(rec.ID, rec.Title, rec.Counterparty, rec.ContractType, rec.Status,
			rec.Value, rec.Currency, rec.EffectiveDate, rec.ExpirationDate,
			rec.RenewalNoticeDays, rec.Content, rec.SourceFileName, rec.CreatedAt).
		ToSql()
	if err != nil {
		return common.WrapError(err, "build contract insert")
	}
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return common.NewAppError("DB_ERROR", "insert contract", err)
	}
	r.logger.Info("repo.contract_created", "contract_id", rec.ID, "title", rec.Title)
	return nil
}

func (r *PostgresRepository) CreateDeadline(ctx context.Context, d *Deadline) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	query, args, err := r.sb.Insert("deadlines").
		Columns("id", "contract_id", "kind", "due_date", "description", "created_at").
		Values(d.ID, d.ContractID, d.Kind, d.DueDate, d.Description, d.CreatedAt).
		ToSql()
	if err != nil {
		return common.WrapError(err, "build deadline insert")
	}
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return common.NewAppError("DB_ERROR", "insert deadline", err)
	}
	return nil
}

func (r *PostgresRepository) CreateInsight(ctx context.Context, in *Insight) error {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	query, args, err := r.sb.Insert("insights").
		Columns("id", "contract_id", "kind", "summary", "created_at").
		Values(in.ID, in.ContractID, in.Kind, in.Summary, in.CreatedAt).
		ToSql()
	if err != nil {
		return common.WrapError(err, "build insight insert")
	}
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return common.NewAppError("DB_ERROR", "insert insight", err)
	}
	return nil
}

func (r *PostgresRepository) ListContracts(ctx context.Context) ([]*ContractRecord, error) {
	query, args, err := r.sb.Select("id", "title", "counterparty", "contract_type",
		"status", "contract_value", "currency", "effective_date", "expiration_date",
		"renewal_notice_days", "content", "source_file_name", "created_at").
		From("contracts").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, common.WrapError(err, "build contract select")
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "list contracts", err)
	}
	defer rows.Close()

	var out []*ContractRecord
	for rows.Next() {
		var rec ContractRecord
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Counterparty, &rec.ContractType,
			&rec.Status, &rec.Value, &rec.Currency, &rec.EffectiveDate, &rec.ExpirationDate,
			&rec.RenewalNoticeDays, &rec.Content, &rec.SourceFileName, &rec.CreatedAt); err != nil {
			return nil, common.WrapError(err, "scan contract row")
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
