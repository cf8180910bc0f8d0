package extract

import (
	"context"
	"fmt"
	"os"
)

// PlainTextStrategy reads the file as text directly.
type PlainTextStrategy struct{}

func (s *PlainTextStrategy) Name() string { return "plain-text" }

func (s *PlainTextStrategy) Extract(_ context.Context, path string) (ExtractionResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("read text file: %w", err)
	}
	text := NormalizeText(string(raw))
	return ExtractionResult{
		Text:       text,
		Confidence: 0.99,
		Method:     s.Name(),
		Metadata: Metadata{
			WordCount: WordCount(text),
			FileSize:  int64(len(raw)),
		},
	}, nil
}
