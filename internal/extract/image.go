package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ImageOcrStrategy runs tesseract and reports the engine's own mean word
// confidence scaled from 0-100 into 0-1.
type ImageOcrStrategy struct {
	cfg    Config
	runner Runner
}

func (s *ImageOcrStrategy) Name() string { return "image-ocr" }

func (s *ImageOcrStrategy) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	txt, err := s.tesseractOCR(ctx, path)
	if err != nil {
		return ExtractionResult{}, err
	}
	text := NormalizeText(txt)

	conf, warns, err := s.tesseractTSVConfidence(ctx, path)
	var warnings []string
	warnings = append(warnings, warns...)
	if err != nil {
		// keep the text; the confidence pass is best-effort
		warnings = append(warnings, err.Error())
	}

	return ExtractionResult{
		Text:       text,
		Confidence: conf,
		Method:     s.Name(),
		Warnings:   warnings,
		Metadata: Metadata{
			PageCount: 1,
			WordCount: WordCount(text),
			Language:  s.cfg.TesseractLang,
			FileSize:  fileSize(path),
		},
	}, nil
}

func (s *ImageOcrStrategy) tesseractOCR(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", s.cfg.TesseractLang}
	if s.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", s.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := s.runner.Run(ctx, s.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (s *ImageOcrStrategy) tesseractTSVConfidence(ctx context.Context, path string) (float32, []string, error) {
	args := []string{path, "stdout", "-l", s.cfg.TesseractLang}
	if s.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", s.cfg.PSM))
	}
	if s.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", s.cfg.OEM))
	}
	if s.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", s.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := s.runner.Run(ctx, s.cfg.Tesseract, args...)
	if err != nil {
		return 0, []string{string(errb)}, fmt.Errorf("tesseract TSV: %w", err)
	}
	lines := strings.Split(string(out), "\n")
	// conf column is the last; header line includes "conf"
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue // skip header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[len(cols)-1]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil, nil
	}
	mean := sum / n // 0..100
	return float32(mean / 100.0), nil, nil
}
