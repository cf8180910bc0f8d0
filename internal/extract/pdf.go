package extract

import (
	"context"
	"fmt"
	"strings"
)

// PdfStrategy extracts embedded text page-by-page via pdftotext. A very short
// result usually means a scanned, non-text PDF, so confidence drops.
type PdfStrategy struct {
	cfg    Config
	runner Runner
}

func (s *PdfStrategy) Name() string { return "pdf-text" }

func (s *PdfStrategy) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := s.runner.Run(ctx, s.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("pdftotext: %w (%s)", err, truncate(string(errb), 512))
	}

	// A form-feed \f is the page separator; pages are joined by newlines.
	raw := string(out)
	pages := 1 + strings.Count(raw, "\f")
	text := NormalizeText(strings.ReplaceAll(raw, "\f", "\n"))

	conf := float32(0.9)
	if len(text) <= 50 {
		conf = 0.6
	}
	return ExtractionResult{
		Text:       text,
		Confidence: conf,
		Method:     s.Name(),
		Metadata: Metadata{
			PageCount: pages,
			WordCount: WordCount(text),
			FileSize:  fileSize(path),
		},
	}, nil
}
