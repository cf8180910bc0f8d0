package constants

import "testing"

func TestCanonicalizeType(t *testing.T) {
	tests := []struct {
		input    string
		want     ContractType
		resolved bool
	}{
		{"NDA", NDA, true},
		{"nda", NDA, true},
		{"  Service Agreement  ", ServiceAgreement, true},
		{"sla", ServiceAgreement, true},
		{"supply contract", PurchaseAgreement, true},
		{"lease agreement", Lease, true},
		{"license agreement", SoftwareLicense, true},
		{"offer letter", Employment, true},
		{"joint venture", Partnership, true},
		{"something else entirely", OtherType, false},
		{"", OtherType, false},
	}
	for _, tt := range tests {
		got, ok := CanonicalizeType(tt.input)
		if got != tt.want || ok != tt.resolved {
			t.Errorf("CanonicalizeType(%q) = (%v, %v), want (%v, %v)",
				tt.input, got, ok, tt.want, tt.resolved)
		}
	}
}

func TestCanonicalizeStatus(t *testing.T) {
	if got, ok := CanonicalizeStatus("expired"); got != StatusExpired || !ok {
		t.Errorf("CanonicalizeStatus(expired) = (%v, %v)", got, ok)
	}
	if got, ok := CanonicalizeStatus("whatever"); got != StatusActive || ok {
		t.Errorf("CanonicalizeStatus(whatever) = (%v, %v), want default Active", got, ok)
	}
}

func TestConfidenceLabel(t *testing.T) {
	tests := []struct {
		score float32
		want  string
	}{
		{0.95, "High"},
		{0.8, "High"},
		{0.79, "Medium"},
		{0.6, "Medium"},
		{0.59, "Low"},
		{0, "Low"},
	}
	for _, tt := range tests {
		if got := ConfidenceLabel(tt.score); got != tt.want {
			t.Errorf("ConfidenceLabel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
