package constants

import "strings"

// ContractType is the closed taxonomy for extracted contracts.
type ContractType string

const (
	Employment        ContractType = "Employment"
	ServiceAgreement  ContractType = "Service Agreement"
	NDA               ContractType = "NDA"
	PurchaseAgreement ContractType = "Purchase Agreement"
	Lease             ContractType = "Lease"
	Partnership       ContractType = "Partnership"
	Consulting        ContractType = "Consulting"
	SoftwareLicense   ContractType = "Software License"
	VendorAgreement   ContractType = "Vendor Agreement"
	OtherType         ContractType = "Other"
)

var allContractTypes = []ContractType{
	Employment,
	ServiceAgreement,
	NDA,
	PurchaseAgreement,
	Lease,
	Partnership,
	Consulting,
	SoftwareLicense,
	VendorAgreement,
	OtherType,
}

// ContractTypes returns the taxonomy as strings, for schema enums and prompts.
func ContractTypes() []string {
	result := make([]string, len(allContractTypes))
	for i, ct := range allContractTypes {
		result[i] = string(ct)
	}
	return result
}

// CanonicalizeType maps a free-form label to the closed taxonomy.
// The boolean is false when the label did not resolve and Other was substituted.
func CanonicalizeType(input string) (ContractType, bool) {
	if input == "" {
		return OtherType, false
	}
	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]ContractType{
		"sla":                       ServiceAgreement,
		"service contract":          ServiceAgreement,
		"non-disclosure agreement":  NDA,
		"confidentiality agreement": NDA,
		"supply contract":           PurchaseAgreement,
		"sales contract":            PurchaseAgreement,
		"purchase order":            PurchaseAgreement,
		"lease agreement":           Lease,
		"rental agreement":          Lease,
		"employment contract":       Employment,
		"offer letter":              Employment,
		"license agreement":         SoftwareLicense,
		"saas agreement":            SoftwareLicense,
		"partnership agreement":     Partnership,
		"joint venture":             Partnership,
		"advisory agreement":        Consulting,
		"supplier agreement":        VendorAgreement,
	}
	if ct, ok := synonyms[normalized]; ok {
		return ct, true
	}
	for _, ct := range allContractTypes {
		if normalized == strings.ToLower(string(ct)) {
			return ct, true
		}
	}
	return OtherType, false
}

// ContractStatus is the lifecycle status of a contract record.
type ContractStatus string

const (
	StatusActive     ContractStatus = "Active"
	StatusPending    ContractStatus = "Pending"
	StatusExpired    ContractStatus = "Expired"
	StatusTerminated ContractStatus = "Terminated"
)

var allStatuses = []ContractStatus{StatusActive, StatusPending, StatusExpired, StatusTerminated}

// ContractStatuses returns the allowed statuses as strings.
func ContractStatuses() []string {
	result := make([]string, len(allStatuses))
	for i, s := range allStatuses {
		result[i] = string(s)
	}
	return result
}

// CanonicalizeStatus resolves a free-form status label, defaulting to Active.
func CanonicalizeStatus(input string) (ContractStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, s := range allStatuses {
		if normalized == strings.ToLower(string(s)) {
			return s, true
		}
	}
	return StatusActive, false
}

// Candidate field names. Wire names are shared between the collaborator schema,
// confidence scores, and the missing-field computation.
const (
	FieldTitle             = "title"
	FieldCounterparty      = "counterparty"
	FieldContractType      = "contract_type"
	FieldStatus            = "status"
	FieldValue             = "contract_value"
	FieldCurrency          = "currency"
	FieldEffectiveDate     = "effective_date"
	FieldExpirationDate    = "expiration_date"
	FieldRenewalNoticeDays = "renewal_notice_days"
	FieldContent           = "contract_content"
)

// RequiredFields is the fixed list a candidate is measured against; missingFields
// is always a subset of it.
var RequiredFields = []string{
	FieldTitle,
	FieldCounterparty,
	FieldContractType,
	FieldValue,
	FieldEffectiveDate,
	FieldExpirationDate,
}

const (
	DefaultCurrency          = "USD"
	DefaultRenewalNoticeDays = 30
)

// Confidence display bands.
const (
	MediumConfidence float32 = 0.6
	HighConfidence   float32 = 0.8
)

// ConfidenceLabel buckets a [0,1] score into the display bands.
func ConfidenceLabel(score float32) string {
	switch {
	case score >= HighConfidence:
		return "High"
	case score >= MediumConfidence:
		return "Medium"
	default:
		return "Low"
	}
}
