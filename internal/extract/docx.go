package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DocxStrategy converts an Office Open XML document to raw text by walking
// word/document.xml. Confidence drops if the conversion produced warnings.
type DocxStrategy struct{}

func (s *DocxStrategy) Name() string { return "docx-text" }

func (s *DocxStrategy) Extract(_ context.Context, path string) (ExtractionResult, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("open docx: %w", err)
	}
	defer func() {
		_ = zr.Close()
	}()

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return ExtractionResult{}, fmt.Errorf("docx: word/document.xml not found")
	}

	rc, err := doc.Open()
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("docx: open document.xml: %w", err)
	}
	defer func() {
		_ = rc.Close()
	}()

	raw, warnings, err := decodeWordXML(rc)
	if err != nil {
		return ExtractionResult{}, err
	}

	text := NormalizeText(raw)
	conf := float32(0.95)
	if len(warnings) > 0 {
		conf = 0.8
	}
	return ExtractionResult{
		Text:       text,
		Confidence: conf,
		Method:     s.Name(),
		Warnings:   warnings,
		Metadata: Metadata{
			WordCount: WordCount(text),
			FileSize:  fileSize(path),
		},
	}, nil
}

// decodeWordXML collects run text (<w:t>) and emits a newline per paragraph
// (<w:p>) and explicit break (<w:br>). A decode error mid-document is recorded
// as a warning and the text gathered so far is kept.
func decodeWordXML(r io.Reader) (string, []string, error) {
	var (
		b        strings.Builder
		warnings []string
		inText   bool
	)
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if b.Len() == 0 {
				return "", nil, fmt.Errorf("docx: decode document.xml: %w", err)
			}
			warnings = append(warnings, fmt.Sprintf("document.xml truncated: %v", err))
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "br", "tab":
				b.WriteString(" ")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), warnings, nil
}
