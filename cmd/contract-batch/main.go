package main

import (
	"context"
	"flag"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/davidmaina/contract-vault/constants"
	"github.com/davidmaina/contract-vault/internal/common"
	"github.com/davidmaina/contract-vault/internal/export"
	"github.com/davidmaina/contract-vault/internal/extract"
	"github.com/davidmaina/contract-vault/internal/llm/gemini"
	"github.com/davidmaina/contract-vault/internal/pipeline"
	"github.com/davidmaina/contract-vault/internal/repository"
)

// contract-batch processes a directory of documents once, synchronously, and
// writes the resulting contract register to an XLSX workbook. With --inmem it
// needs no database at all.
func main() {
	dir := flag.String("dir", ".", "directory of contract documents to process")
	inmem := flag.String("inmem", "", "use in-memory sqlite instead of DB_URL (any non-empty value)")
	out := flag.String("out", "contracts.xlsx", "output workbook path")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	ctx := context.Background()

	var repo repository.ContractRepository
	if *inmem != "" {
		r, err := repository.NewSQLiteRepository(ctx, "file::memory:?cache=shared", logger)
		if err != nil {
			logger.Error("sqlite init failed", "error", err)
			os.Exit(1)
		}
		repo = r
	} else {
		pool, err := repository.OpenPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		repo = repository.NewPostgresRepository(pool, logger)
	}
	defer repo.Close()

	engine := extract.NewEngine(extract.Config{
		Pdftotext:     cfg.Extract.Pdftotext,
		Tesseract:     cfg.Extract.Tesseract,
		TesseractLang: cfg.Extract.TesseractLang,
		TessdataDir:   cfg.Extract.TessdataDir,
		PSM:           cfg.Extract.PSM,
		OEM:           cfg.Extract.OEM,
	}, logger)

	extractor := gemini.NewClient(gemini.Config{
		APIKey:       cfg.LLM.APIKey,
		BaseURL:      cfg.LLM.BaseURL,
		Model:        cfg.LLM.Model,
		Temperature:  cfg.LLM.Temperature,
		Timeout:      cfg.LLM.Timeout,
		MaxRetries:   cfg.LLM.MaxRetries,
		RetryBackoff: cfg.LLM.RetryBackoff,
	}, logger)

	store := pipeline.NewJobStore(logger)
	processor := pipeline.NewProcessor(store, engine, extractor, repo, nil, logger)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Error("read directory failed", "dir", *dir, "error", err)
		os.Exit(1)
	}

	processed, review := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(*dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			logger.Error("stat failed", "file", entry.Name(), "error", err)
			continue
		}
		mimeType := mime.TypeByExtension(filepath.Ext(entry.Name()))
		job := processor.Submit(entry.Name(), path, mimeType, info.Size())
		if err := processor.Process(ctx, job.ID); err != nil {
			logger.Error("processing failed", "file", entry.Name(), "error", err)
			continue
		}
		snapshot, err := store.Get(job.ID)
		if err != nil {
			continue
		}
		switch snapshot.Status {
		case constants.JobStatusCompleted:
			processed++
		case constants.JobStatusReviewing:
			// Batch mode has no reviewer; accept the candidate as-is when the
			// critical fields are present.
			if len(snapshot.MissingFields) == 0 {
				if err := processor.SaveReviewed(ctx, job.ID, snapshot.Candidate, snapshot.Confidence); err != nil {
					logger.Error("auto-accept failed", "file", entry.Name(), "error", err)
					review++
					continue
				}
				processed++
			} else {
				logger.Warn("needs review", "file", entry.Name(),
					"missing_fields", strings.Join(snapshot.MissingFields, ","))
				review++
			}
		}
	}

	svc := export.NewService(repo, logger)
	exported, err := svc.WriteXLSX(ctx, *out, export.Window{})
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	logger.Info("batch done",
		"processed", processed,
		"needs_review", review,
		"exported", exported,
		"workbook", *out,
	)
}
