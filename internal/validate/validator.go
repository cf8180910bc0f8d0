package validate

import (
	"fmt"
	"time"

	"github.com/davidmaina/contract-vault/constants"
	"github.com/davidmaina/contract-vault/internal/entity"
)

// Warnings appended by the normalizer. Appends are deduplicated so running
// the normalizer twice produces identical output.
const (
	DateOrderWarning = "Effective date is on or after expiration date - please review"
)

const (
	lowConfidence = float32(0.1)
	defaultTitle  = "Untitled Contract"
	dateLayout    = "2006-01-02"
)

// Result is a normalized candidate with recomputed review metadata.
type Result struct {
	Candidate     *entity.ContractCandidate
	Confidence    entity.ConfidenceScores
	MissingFields []string
	Warnings      []string
}

// Normalize enforces enumerations, defaults the non-critical fields, checks
// date ordering, and recomputes missingFields. The three relationship-critical
// fields (counterparty, effective date, expiration date) are never defaulted;
// if absent they stay nil and are reported missing. Inputs are not mutated and
// the operation is idempotent.
func Normalize(candidate *entity.ContractCandidate, confidence entity.ConfidenceScores, warnings []string) Result {
	c := candidate.Clone()
	if c == nil {
		c = &entity.ContractCandidate{}
	}
	conf := confidence.Clone()
	if conf == nil {
		conf = entity.ConfidenceScores{}
	}
	warns := dedupe(warnings)

	// Title and type always end up non-null; coerced or defaulted values are
	// marked low confidence so the reviewer sees them as guesses.
	if c.Title == nil {
		t := defaultTitle
		c.Title = &t
		conf[constants.FieldTitle] = lowConfidence
	}

	status, ok := constants.CanonicalizeStatus(c.Status)
	if !ok {
		conf[constants.FieldStatus] = lowConfidence
	}
	c.Status = string(status)

	if c.ContractType == nil {
		ct := string(constants.OtherType)
		c.ContractType = &ct
		conf[constants.FieldContractType] = lowConfidence
	} else if ct, ok := constants.CanonicalizeType(*c.ContractType); !ok {
		s := string(ct)
		c.ContractType = &s
		conf[constants.FieldContractType] = lowConfidence
	} else {
		s := string(ct)
		c.ContractType = &s
	}

	if c.Value == nil {
		v := 0.0
		c.Value = &v
		conf[constants.FieldValue] = lowConfidence
	}

	if c.Currency == nil || *c.Currency == "" {
		cur := constants.DefaultCurrency
		c.Currency = &cur
		conf[constants.FieldCurrency] = lowConfidence
	}

	if c.RenewalNoticeDays == nil {
		d := constants.DefaultRenewalNoticeDays
		c.RenewalNoticeDays = &d
		conf[constants.FieldRenewalNoticeDays] = lowConfidence
	}

	// Date ordering is surfaced for human review, never auto-corrected.
	effective, effErr := parseDate(c.EffectiveDate)
	expiration, expErr := parseDate(c.ExpirationDate)
	if effErr != nil {
		warns = appendUnique(warns, fmt.Sprintf("unparseable effective date %q", *c.EffectiveDate))
		conf[constants.FieldEffectiveDate] = lowConfidence
	}
	if expErr != nil {
		warns = appendUnique(warns, fmt.Sprintf("unparseable expiration date %q", *c.ExpirationDate))
		conf[constants.FieldExpirationDate] = lowConfidence
	}
	if effErr == nil && expErr == nil && effective != nil && expiration != nil {
		if !effective.Before(*expiration) {
			warns = appendUnique(warns, DateOrderWarning)
		}
	}

	for k, v := range conf {
		if v < 0 {
			conf[k] = 0
		} else if v > 1 {
			conf[k] = 1
		}
	}

	return Result{
		Candidate:     c,
		Confidence:    conf,
		MissingFields: computeMissing(c),
		Warnings:      warns,
	}
}

// computeMissing returns the required fields still null after defaulting.
// Only the never-defaulted critical fields can appear here.
func computeMissing(c *entity.ContractCandidate) []string {
	missing := []string{}
	for _, field := range constants.RequiredFields {
		switch field {
		case constants.FieldCounterparty:
			if c.Counterparty == nil {
				missing = append(missing, field)
			}
		case constants.FieldEffectiveDate:
			if c.EffectiveDate == nil {
				missing = append(missing, field)
			}
		case constants.FieldExpirationDate:
			if c.ExpirationDate == nil {
				missing = append(missing, field)
			}
		case constants.FieldTitle:
			if c.Title == nil {
				missing = append(missing, field)
			}
		case constants.FieldContractType:
			if c.ContractType == nil {
				missing = append(missing, field)
			}
		case constants.FieldValue:
			if c.Value == nil {
				missing = append(missing, field)
			}
		}
	}
	return missing
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func dedupe(in []string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
