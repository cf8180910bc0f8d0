package llm

import (
	"encoding/json"
	"strings"

	"github.com/davidmaina/contract-vault/constants"
)

// BuildExtractionPrompt composes the single-shot analysis prompt: reply
// contract first, then field guidance, then the document. The collaborator is
// told to answer with JSON only, but callers still run the reply through
// FirstJSONObject since models like to add prose anyway.
func BuildExtractionPrompt(req ExtractRequest) string {
	parts := []string{
		"You are an expert contract analysis assistant. Extract structured information from the following contract document.",
		"Return ONLY a JSON object matching this shape (schema " + SchemaVersion + "):",
		mustJSON(map[string]any{
			"contractData": map[string]any{
				constants.FieldTitle:             "Contract title or agreement name",
				constants.FieldCounterparty:      "The other party (exclude our organization)",
				constants.FieldContractType:      "One of: " + strings.Join(constants.ContractTypes(), ", "),
				constants.FieldStatus:            "One of: " + strings.Join(constants.ContractStatuses(), ", "),
				constants.FieldValue:             "Numeric value only, no currency symbols",
				constants.FieldCurrency:          "Three-letter currency code",
				constants.FieldEffectiveDate:     "YYYY-MM-DD",
				constants.FieldExpirationDate:    "YYYY-MM-DD",
				constants.FieldRenewalNoticeDays: "Days of renewal notice required",
				constants.FieldContent:           "Full contract text",
			},
			"confidence":    "object with a 0..1 score per contractData field",
			"missingFields": "fields you could not extract",
			"warnings":      "concerns or uncertainties about the extraction",
		}),
		"Guidance:",
		"- Title: main headings or phrases like 'Agreement', 'Contract'.",
		"- Counterparty: company or individual names other than our organization.",
		"- Dates: accept MM/DD/YYYY, written dates, or relative dates, but always answer in YYYY-MM-DD.",
		"- Value: look for total values, payment terms, salaries, fees.",
		"- Omit a field (and list it in missingFields) rather than guessing wildly.",
		"- Confidence: 0.9+ clearly stated, 0.7-0.8 inferred, below 0.5 needs review.",
		"- Never output anything but the JSON object.",
	}

	var b strings.Builder
	b.WriteString(strings.Join(parts, "\n"))
	b.WriteString("\n\nDocument to analyze:\nTitle: ")
	b.WriteString(req.FileName)
	if len(req.ExistingData) > 0 {
		b.WriteString("\nKnown data: ")
		b.WriteString(mustJSON(req.ExistingData))
	}
	b.WriteString("\nContent:\n")
	b.WriteString(req.FileContent)
	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
