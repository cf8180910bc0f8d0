package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/davidmaina/contract-vault/constants"
)

// SchemaVersion identifies the reply contract; bump it when the shape below
// changes so drift is a detectable breaking change.
const SchemaVersion = "contract-extraction.v1"

// BuildReplySchema returns the JSON-Schema (draft 2020-12 subset) the
// collaborator reply must satisfy, as a generic map. Enum values are part of
// the contract; NormalizeReplyJSON canonicalizes synonym labels before
// validation so only structural drift is fatal. Dates stay loose strings
// here: the normalizer downgrades an unparseable date to a warning with low
// confidence on that field rather than losing the rest of the reply.
func BuildReplySchema() map[string]any {
	dateProp := map[string]any{"type": []string{"string", "null"}}
	nullableString := map[string]any{"type": []string{"string", "null"}}

	contractData := map[string]any{
		"type": "object",
		"properties": map[string]any{
			constants.FieldTitle:        nullableString,
			constants.FieldCounterparty: nullableString,
			constants.FieldContractType: map[string]any{
				"type": []string{"string", "null"},
				"enum": append(toAnySlice(constants.ContractTypes()), nil),
			},
			constants.FieldStatus: map[string]any{
				"type": "string",
				"enum": toAnySlice(constants.ContractStatuses()),
			},
			constants.FieldValue:          map[string]any{"type": []string{"number", "null"}},
			constants.FieldCurrency:       nullableString,
			constants.FieldEffectiveDate:  dateProp,
			constants.FieldExpirationDate: dateProp,
			constants.FieldRenewalNoticeDays: map[string]any{
				"type":    []string{"integer", "null"},
				"minimum": 0,
			},
			constants.FieldContent: map[string]any{"type": "string"},
		},
		"additionalProperties": false,
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"contractData": contractData,
			"confidence": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":    "number",
					"minimum": 0.0,
					"maximum": 1.0,
				},
			},
			"missingFields": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"warnings": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"contractData", "confidence"},
	}
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// ValidateAgainstSchema validates "data" against "schemaMap".
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
