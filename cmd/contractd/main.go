package main

import (
	"context"
	"flag"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/davidmaina/contract-vault/internal/async"
	"github.com/davidmaina/contract-vault/internal/common"
	"github.com/davidmaina/contract-vault/internal/extract"
	"github.com/davidmaina/contract-vault/internal/llm/gemini"
	"github.com/davidmaina/contract-vault/internal/pipeline"
	"github.com/davidmaina/contract-vault/internal/repository"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file overlaying env vars")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *configPath != "" {
		if err := cfg.ApplyFile(*configPath); err != nil {
			logger.Error("config file failed", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.OpenPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := repository.NewPostgresRepository(pool, logger)
	files, err := repository.NewDiskFileStore(cfg.Storage.FileStoreDir, logger)
	if err != nil {
		logger.Error("file store init failed", "error", err)
		os.Exit(1)
	}

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
	processor := pipeline.NewProcessor(store, engine, extractor, repo, files, logger)
	processor.FailFast = cfg.Pipeline.FailFast

	queue := async.NewQueue(processor, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithProcessTimeout(cfg.Pipeline.JobTimeout),
	)
	queue.Start(ctx)

	archiveDir := cfg.Pipeline.ArchiveDir
	if archiveDir == "" {
		archiveDir = filepath.Join(cfg.Pipeline.InboxDir, "archive")
	}
	poller := &inboxPoller{
		dir:       cfg.Pipeline.InboxDir,
		archive:   archiveDir,
		interval:  cfg.Pipeline.PollInterval,
		processor: processor,
		queue:     queue,
		logger:    logger,
	}
	go poller.run(ctx)

	logger.Info("contractd started",
		"inbox", cfg.Pipeline.InboxDir,
		"workers", cfg.Pipeline.Workers,
		"model", cfg.LLM.Model,
	)

	<-ctx.Done()
	logger.Info("shutting down")
	queue.Shutdown(30 * time.Second)
}

// inboxPoller scans the inbox directory, moves each new file into an archive
// subdirectory, and submits the archived path for processing. The move keeps
// restarts from re-ingesting files already handed to the pipeline.
type inboxPoller struct {
	dir       string
	archive   string
	interval  time.Duration
	processor *pipeline.Processor
	queue     *async.Queue
	logger    *slog.Logger
}

func (p *inboxPoller) run(ctx context.Context) {
	if err := os.MkdirAll(p.archive, 0o755); err != nil {
		p.logger.Error("inbox.archive_dir_failed", "error", err)
		return
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		p.scan()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *inboxPoller) scan() {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		p.logger.Error("inbox.scan_failed", "dir", p.dir, "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		src := filepath.Join(p.dir, entry.Name())
		dst := filepath.Join(p.archive, entry.Name())
		if err := os.Rename(src, dst); err != nil {
			p.logger.Error("inbox.archive_failed", "file", entry.Name(), "error", err)
			continue
		}
		info, err := os.Stat(dst)
		if err != nil {
			p.logger.Error("inbox.stat_failed", "file", entry.Name(), "error", err)
			continue
		}
		mimeType := mime.TypeByExtension(filepath.Ext(entry.Name()))
		job := p.processor.Submit(entry.Name(), dst, mimeType, info.Size())
		if err := p.queue.Enqueue(job.ID); err != nil {
			p.logger.Error("inbox.enqueue_failed", "job_id", job.ID, "error", err)
			continue
		}
		p.logger.Info("inbox.ingested", "job_id", job.ID, "file_name", entry.Name())
	}
}
