package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// FallbackStrategy is the end of the chain: plain-text read first, then OCR,
// then a low-confidence placeholder. This is the only strategy that swallows
// failures instead of surfacing them.
type FallbackStrategy struct {
	text   *PlainTextStrategy
	image  *ImageOcrStrategy
	logger *slog.Logger
}

func (s *FallbackStrategy) Name() string { return "fallback" }

func (s *FallbackStrategy) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	res, err := s.text.Extract(ctx, path)
	if err == nil {
		res.Method = s.Name()
		return res, nil
	}
	if ctx.Err() != nil {
		return ExtractionResult{}, ctx.Err()
	}
	s.logger.Warn("extract.fallback.text_failed", "path", path, "error", err)

	res, err = s.image.Extract(ctx, path)
	if err == nil {
		res.Method = s.Name()
		return res, nil
	}
	if ctx.Err() != nil {
		return ExtractionResult{}, ctx.Err()
	}
	s.logger.Warn("extract.fallback.ocr_failed", "path", path, "error", err)

	return ExtractionResult{
		Text:       fmt.Sprintf("Document content from %s", filepath.Base(path)),
		Confidence: 0.1,
		Method:     s.Name(),
		Metadata:   Metadata{FileSize: fileSize(path)},
	}, nil
}
