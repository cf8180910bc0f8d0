package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/davidmaina/contract-vault/constants"
)

// Config holds the external binaries and tuning for the extraction strategies.
type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// Metadata carries byproducts of an extraction attempt.
type Metadata struct {
	PageCount int
	WordCount int
	Language  string
	FileSize  int64
}

// ExtractionResult is the output of one extraction strategy. Immutable once
// produced; a retry replaces it wholesale.
type ExtractionResult struct {
	Text       string
	Confidence float32 // 0..1
	Method     string  // which strategy produced it
	Duration   time.Duration
	Warnings   []string
	Metadata   Metadata
}

// Strategy turns raw file bytes into normalized plain text plus a confidence
// estimate. Implementations normalize their text before computing confidence.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, path string) (ExtractionResult, error)
}

// Engine dispatches to one strategy per format, with a fallback chain for
// unknown formats and failed strategies.
type Engine struct {
	cfg        Config
	logger     *slog.Logger
	strategies map[constants.FileFormat]Strategy
	fallback   Strategy
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	runner := execRunner{logger: logger}
	text := &PlainTextStrategy{}
	image := &ImageOcrStrategy{cfg: cfg, runner: runner}
	return &Engine{
		cfg:    cfg,
		logger: logger,
		strategies: map[constants.FileFormat]Strategy{
			constants.PDF:   &PdfStrategy{cfg: cfg, runner: runner},
			constants.DOCX:  &DocxStrategy{},
			constants.IMAGE: image,
			constants.TEXT:  text,
		},
		fallback: &FallbackStrategy{text: text, image: image, logger: logger},
	}
}

// NewEngineWithRunner is NewEngine with a stubbed command runner, for tests.
func NewEngineWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Engine {
	e := NewEngine(cfg, logger)
	text := &PlainTextStrategy{}
	image := &ImageOcrStrategy{cfg: e.cfg, runner: runner}
	e.strategies[constants.PDF] = &PdfStrategy{cfg: e.cfg, runner: runner}
	e.strategies[constants.IMAGE] = image
	e.fallback = &FallbackStrategy{text: text, image: image, logger: e.logger}
	return e
}

// Extract produces best-effort plain text for a file of the given format.
// UNKNOWN routes to the fallback chain, as does any primary strategy failure;
// the fallback itself only fails on context cancellation.
func (e *Engine) Extract(ctx context.Context, format constants.FileFormat, path string) (ExtractionResult, error) {
	start := time.Now()
	strat, ok := e.strategies[format]
	if !ok {
		strat = e.fallback
	}
	e.logger.Debug("extract.start", "path", path, "format", string(format), "strategy", strat.Name())

	res, err := strat.Extract(ctx, path)
	if err != nil && strat != e.fallback {
		if ctx.Err() != nil {
			return ExtractionResult{}, ctx.Err()
		}
		e.logger.Warn("extract.strategy_failed", "path", path, "strategy", strat.Name(), "error", err)
		res, err = e.fallback.Extract(ctx, path)
	}
	if err != nil {
		return ExtractionResult{}, err
	}
	res.Duration = time.Since(start)
	e.logger.Info("extract.ok",
		"path", path,
		"method", res.Method,
		"confidence", res.Confidence,
		"text_len", len(res.Text),
		"pages", res.Metadata.PageCount,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
