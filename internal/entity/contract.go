package entity

// ContractCandidate is a not-yet-persisted, possibly incomplete contract
// record awaiting review. Nil pointer fields were not extracted; Status and
// Content always hold a value after normalization.
type ContractCandidate struct {
	Title             *string  `json:"title"`
	Counterparty      *string  `json:"counterparty"`
	ContractType      *string  `json:"contract_type"`
	Status            string   `json:"status"`
	Value             *float64 `json:"contract_value"`
	Currency          *string  `json:"currency"`
	EffectiveDate     *string  `json:"effective_date"`  // YYYY-MM-DD
	ExpirationDate    *string  `json:"expiration_date"` // YYYY-MM-DD
	RenewalNoticeDays *int     `json:"renewal_notice_days"`
	Content           string   `json:"contract_content"`
}

// Clone returns a copy that shares no pointers with the receiver.
func (c *ContractCandidate) Clone() *ContractCandidate {
	if c == nil {
		return nil
	}
	out := *c
	out.Title = cloneStr(c.Title)
	out.Counterparty = cloneStr(c.Counterparty)
	out.ContractType = cloneStr(c.ContractType)
	out.Currency = cloneStr(c.Currency)
	out.EffectiveDate = cloneStr(c.EffectiveDate)
	out.ExpirationDate = cloneStr(c.ExpirationDate)
	if c.Value != nil {
		v := *c.Value
		out.Value = &v
	}
	if c.RenewalNoticeDays != nil {
		d := *c.RenewalNoticeDays
		out.RenewalNoticeDays = &d
	}
	return &out
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// ConfidenceScores holds one 0..1 score per candidate field, keyed by the
// wire field names in constants. Independent of extraction-level confidence.
type ConfidenceScores map[string]float32

// Clone returns a copy of the score map.
func (s ConfidenceScores) Clone() ConfidenceScores {
	if s == nil {
		return nil
	}
	out := make(ConfidenceScores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
