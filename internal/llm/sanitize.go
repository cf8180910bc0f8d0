package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/davidmaina/contract-vault/constants"
)

var contractDataKeys = map[string]struct{}{
	constants.FieldTitle:             {},
	constants.FieldCounterparty:      {},
	constants.FieldContractType:      {},
	constants.FieldStatus:            {},
	constants.FieldValue:             {},
	constants.FieldCurrency:          {},
	constants.FieldEffectiveDate:     {},
	constants.FieldExpirationDate:    {},
	constants.FieldRenewalNoticeDays: {},
	constants.FieldContent:           {},
}

// NormalizeReplyJSON makes a collaborator reply schema-friendly before
// validation:
//   - contract_value: "$1,000.00" and number-ish strings become numbers
//   - renewal_notice_days: numeric strings become integers
//   - empty strings and literal "null" become absent
//   - currency is uppercased, other strings trimmed
//   - contract_type and status are canonicalized into their closed sets;
//     labels that do not resolve are removed so the normalizer can default
//     them with low confidence instead of the whole reply being rejected
//   - unknown contractData keys are removed (additionalProperties = false)
//   - confidence entries are clamped into [0,1]
func NormalizeReplyJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var reply map[string]any
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string

	if cd, ok := reply["contractData"].(map[string]any); ok {
		for _, k := range []string{
			constants.FieldTitle, constants.FieldCounterparty, constants.FieldContractType,
			constants.FieldStatus, constants.FieldCurrency,
			constants.FieldEffectiveDate, constants.FieldExpirationDate,
		} {
			if v, present := cd[k]; present {
				s, isStr := v.(string)
				if !isStr {
					continue
				}
				s = strings.TrimSpace(s)
				if s == "" || strings.EqualFold(s, "null") {
					delete(cd, k)
					dropped = append(dropped, k+"(empty)")
					continue
				}
				if k == constants.FieldCurrency {
					s = strings.ToUpper(s)
				}
				cd[k] = s
			}
		}

		if v, present := cd[constants.FieldContractType]; present {
			if s, isStr := v.(string); isStr {
				if ct, ok := constants.CanonicalizeType(s); ok {
					cd[constants.FieldContractType] = string(ct)
				} else {
					delete(cd, constants.FieldContractType)
					dropped = append(dropped, constants.FieldContractType+"(unrecognized)")
				}
			}
		}

		if v, present := cd[constants.FieldStatus]; present {
			if s, isStr := v.(string); isStr {
				if st, ok := constants.CanonicalizeStatus(s); ok {
					cd[constants.FieldStatus] = string(st)
				} else {
					delete(cd, constants.FieldStatus)
					dropped = append(dropped, constants.FieldStatus+"(unrecognized)")
				}
			}
		}

		if v, present := cd[constants.FieldValue]; present {
			switch t := v.(type) {
			case string:
				if f, ok := parseMoney(t); ok {
					cd[constants.FieldValue] = f
				} else {
					delete(cd, constants.FieldValue)
					dropped = append(dropped, constants.FieldValue+"(unparseable)")
				}
			case float64, nil:
				// already schema-shaped
			default:
				delete(cd, constants.FieldValue)
				dropped = append(dropped, constants.FieldValue+"(type)")
			}
		}

		if v, present := cd[constants.FieldRenewalNoticeDays]; present {
			switch t := v.(type) {
			case string:
				if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil && n >= 0 {
					cd[constants.FieldRenewalNoticeDays] = n
				} else {
					delete(cd, constants.FieldRenewalNoticeDays)
					dropped = append(dropped, constants.FieldRenewalNoticeDays+"(unparseable)")
				}
			case float64, nil:
			default:
				delete(cd, constants.FieldRenewalNoticeDays)
				dropped = append(dropped, constants.FieldRenewalNoticeDays+"(type)")
			}
		}

		for k := range cd {
			if _, ok := contractDataKeys[k]; !ok {
				delete(cd, k)
				dropped = append(dropped, k+"(unknown)")
			}
		}
	}

	if conf, ok := reply["confidence"].(map[string]any); ok {
		for k, v := range conf {
			f, isNum := v.(float64)
			if !isNum {
				delete(conf, k)
				dropped = append(dropped, "confidence."+k+"(type)")
				continue
			}
			if f < 0 {
				conf[k] = 0.0
			} else if f > 1 {
				conf[k] = 1.0
			}
		}
	}

	out, err := json.Marshal(reply)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.sanitized", "dropped", strings.Join(dropped, ","))
	}
	return out, dropped, nil
}

// parseMoney parses "1000", "1,000.50", "$1,000", "USD 1000".
func parseMoney(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "$€£")
	s = strings.ReplaceAll(s, ",", "")
	fields := strings.Fields(s)
	if len(fields) > 1 {
		s = fields[len(fields)-1]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
