package llm

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/davidmaina/contract-vault/constants"
	"github.com/davidmaina/contract-vault/internal/entity"
)

// FallbackWarning is the single warning attached when AI extraction did not run.
const FallbackWarning = "AI extraction failed, using fallback values"

var counterpartyStopwords = map[string]struct{}{
	"contract": {}, "agreement": {}, "document": {}, "final": {}, "draft": {}, "signed": {},
}

var titleSplit = regexp.MustCompile(`[\s_-]+`)

// FallbackReply builds a deterministic candidate from the file name and the
// extracted text when the collaborator is unavailable or returned garbage.
// Every required field gets a value, so missingFields is empty; the single
// warning tells the reviewer AI extraction did not run.
func FallbackReply(fileName, content string, now time.Time) ExtractionReply {
	title := TitleFromFileName(fileName)
	counterparty := CounterpartyFromTitle(title)
	contractType := TypeFromFileName(fileName)
	status := string(constants.StatusActive)
	currency := constants.DefaultCurrency
	notice := constants.DefaultRenewalNoticeDays
	effective := now.Format("2006-01-02")
	expiration := now.AddDate(0, 0, 365).Format("2006-01-02")

	return ExtractionReply{
		ContractData: entity.ContractCandidate{
			Title:             &title,
			Counterparty:      &counterparty,
			ContractType:      &contractType,
			Status:            status,
			Currency:          &currency,
			EffectiveDate:     &effective,
			ExpirationDate:    &expiration,
			RenewalNoticeDays: &notice,
			Content:           content,
		},
		Confidence: entity.ConfidenceScores{
			constants.FieldTitle:             0.7,
			constants.FieldCounterparty:      0.1,
			constants.FieldContractType:      0.1,
			constants.FieldStatus:            0.1,
			constants.FieldValue:             0.1,
			constants.FieldCurrency:          0.1,
			constants.FieldEffectiveDate:     0.1,
			constants.FieldExpirationDate:    0.1,
			constants.FieldRenewalNoticeDays: 0.1,
			constants.FieldContent:           1.0,
		},
		MissingFields: []string{},
		Warnings:      []string{FallbackWarning},
	}
}

// TitleFromFileName strips the extension from a file name.
func TitleFromFileName(fileName string) string {
	base := filepath.Base(fileName)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	if title == "" {
		return "Untitled Contract"
	}
	return title
}

// CounterpartyFromTitle picks the first word longer than 3 characters that is
// not a contract-document stopword.
func CounterpartyFromTitle(title string) string {
	for _, word := range titleSplit.Split(title, -1) {
		if len(word) <= 3 {
			continue
		}
		if _, stop := counterpartyStopwords[strings.ToLower(word)]; stop {
			continue
		}
		return word
	}
	return "Unknown Party"
}

// TypeFromFileName guesses a contract type from file-name keywords.
func TypeFromFileName(fileName string) string {
	name := strings.ToLower(fileName)
	switch {
	case strings.Contains(name, "service") || strings.Contains(name, "sla"):
		return "Service Agreement"
	case strings.Contains(name, "supply") || strings.Contains(name, "vendor"):
		return "Supply Contract"
	case strings.Contains(name, "license"):
		return "License Agreement"
	case strings.Contains(name, "lease") || strings.Contains(name, "rent"):
		return "Lease Agreement"
	case strings.Contains(name, "employment") || strings.Contains(name, "hire"):
		return "Employment Contract"
	case strings.Contains(name, "nda") || strings.Contains(name, "confidential"):
		return "NDA"
	case strings.Contains(name, "partnership"):
		return "Partnership Agreement"
	case strings.Contains(name, "sale") || strings.Contains(name, "purchase"):
		return "Sales Contract"
	default:
		return "General Contract"
	}
}
