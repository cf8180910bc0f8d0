package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/davidmaina/contract-vault/internal/common"
	"github.com/davidmaina/contract-vault/internal/repository"
)

const sheetName = "Contracts"

var headers = []string{
	"ID", "Title", "Counterparty", "Type", "Status",
	"Value", "Currency", "Effective Date", "Expiration Date",
	"Renewal Notice (days)", "Source File", "Created At",
}

// Service writes the contract register to an XLSX workbook.
type Service struct {
	repo   repository.ContractRepository
	logger *slog.Logger
}

func NewService(repo repository.ContractRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Window filters exported contracts by effective date. Zero bounds are open.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) contains(effectiveDate string) bool {
	t, err := time.Parse("2006-01-02", effectiveDate)
	if err != nil {
		// Unparseable dates are kept rather than silently dropped.
		return true
	}
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To) {
		return false
	}
	return true
}

// WriteXLSX exports contracts inside the window to path.
func (s *Service) WriteXLSX(ctx context.Context, path string, win Window) (int, error) {
	contracts, err := s.repo.ListContracts(ctx)
	if err != nil {
		return 0, common.WrapError(err, "load contracts for export")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.workbook_close_error", "error", err)
		}
	}()
	f.SetSheetName(f.GetSheetName(0), sheetName)

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return 0, common.WrapError(err, "write header row")
		}
	}

	row := 2
	for _, rec := range contracts {
		if !win.contains(rec.EffectiveDate) {
			continue
		}
		values := []any{
			rec.ID.String(), rec.Title, rec.Counterparty, rec.ContractType, rec.Status,
			rec.Value, rec.Currency, rec.EffectiveDate, rec.ExpirationDate,
			rec.RenewalNoticeDays, rec.SourceFileName, rec.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return 0, common.WrapError(err, fmt.Sprintf("write row %d", row))
			}
		}
		row++
	}

	if err := f.SaveAs(path); err != nil {
		return 0, common.WrapError(err, "save workbook")
	}
	exported := row - 2
	s.logger.Info("export.done", "path", path, "contracts", exported)
	return exported, nil
}
