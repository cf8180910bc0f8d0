package llm

import (
	"encoding/json"
	"testing"
)

func normalizeToMap(t *testing.T, raw string) map[string]any {
	t.Helper()
	out, _, err := NormalizeReplyJSON([]byte(raw), nil)
	if err != nil {
		t.Fatalf("NormalizeReplyJSON: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("unmarshal sanitized: %v", err)
	}
	return m
}

func contractData(t *testing.T, m map[string]any) map[string]any {
	t.Helper()
	cd, ok := m["contractData"].(map[string]any)
	if !ok {
		t.Fatal("contractData missing")
	}
	return cd
}

func TestNormalizeReplyJSONMoneyStrings(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`"$1,000.50"`, 1000.50},
		{`"1000"`, 1000},
		{`"USD 2500"`, 2500},
		{`"€99.99"`, 99.99},
		{`12500.0`, 12500},
	}
	for _, tt := range tests {
		m := normalizeToMap(t, `{"contractData":{"contract_value":`+tt.raw+`},"confidence":{}}`)
		got, ok := contractData(t, m)["contract_value"].(float64)
		if !ok || got != tt.want {
			t.Errorf("contract_value %s -> %v, want %v", tt.raw, contractData(t, m)["contract_value"], tt.want)
		}
	}
}

func TestNormalizeReplyJSONUnparseableMoneyDropped(t *testing.T) {
	m := normalizeToMap(t, `{"contractData":{"contract_value":"about five grand"},"confidence":{}}`)
	if _, present := contractData(t, m)["contract_value"]; present {
		t.Error("unparseable contract_value should be dropped")
	}
}

func TestNormalizeReplyJSONEmptyAndNullStrings(t *testing.T) {
	m := normalizeToMap(t, `{"contractData":{"title":"  ","counterparty":"null","currency":"usd"},"confidence":{}}`)
	cd := contractData(t, m)
	if _, present := cd["title"]; present {
		t.Error("blank title should be dropped")
	}
	if _, present := cd["counterparty"]; present {
		t.Error("literal null string should be dropped")
	}
	if cd["currency"] != "USD" {
		t.Errorf("currency = %v, want uppercased USD", cd["currency"])
	}
}

func TestNormalizeReplyJSONCanonicalizesEnums(t *testing.T) {
	m := normalizeToMap(t, `{"contractData":{"contract_type":"Service Contract","status":"active"},"confidence":{}}`)
	cd := contractData(t, m)
	if cd["contract_type"] != "Service Agreement" {
		t.Errorf("contract_type = %v, want synonym resolved to Service Agreement", cd["contract_type"])
	}
	if cd["status"] != "Active" {
		t.Errorf("status = %v, want Active", cd["status"])
	}
}

func TestNormalizeReplyJSONUnrecognizedEnumsDropped(t *testing.T) {
	m := normalizeToMap(t, `{"contractData":{"contract_type":"Handshake Deal","status":"maybe"},"confidence":{}}`)
	cd := contractData(t, m)
	if _, present := cd["contract_type"]; present {
		t.Error("unrecognized contract_type should be dropped, not passed through")
	}
	if _, present := cd["status"]; present {
		t.Error("unrecognized status should be dropped, not passed through")
	}
}

func TestNormalizeReplyJSONUnknownKeysRemoved(t *testing.T) {
	m := normalizeToMap(t, `{"contractData":{"title":"X","parties":["a","b"],"notes":"y"},"confidence":{}}`)
	cd := contractData(t, m)
	if _, present := cd["parties"]; present {
		t.Error("unknown key parties should be removed")
	}
	if _, present := cd["notes"]; present {
		t.Error("unknown key notes should be removed")
	}
	if cd["title"] != "X" {
		t.Errorf("title = %v, want X", cd["title"])
	}
}

func TestNormalizeReplyJSONConfidenceClamped(t *testing.T) {
	m := normalizeToMap(t, `{"contractData":{},"confidence":{"title":1.4,"counterparty":-0.2,"status":"high"}}`)
	conf, ok := m["confidence"].(map[string]any)
	if !ok {
		t.Fatal("confidence missing")
	}
	if conf["title"] != 1.0 {
		t.Errorf("title confidence = %v, want clamped to 1", conf["title"])
	}
	if conf["counterparty"] != 0.0 {
		t.Errorf("counterparty confidence = %v, want clamped to 0", conf["counterparty"])
	}
	if _, present := conf["status"]; present {
		t.Error("non-numeric confidence entry should be removed")
	}
}

func TestNormalizeReplyJSONRenewalDays(t *testing.T) {
	m := normalizeToMap(t, `{"contractData":{"renewal_notice_days":"60"},"confidence":{}}`)
	if got := contractData(t, m)["renewal_notice_days"]; got != 60.0 {
		t.Errorf("renewal_notice_days = %v, want 60", got)
	}

	m = normalizeToMap(t, `{"contractData":{"renewal_notice_days":"-5"},"confidence":{}}`)
	if _, present := contractData(t, m)["renewal_notice_days"]; present {
		t.Error("negative renewal_notice_days should be dropped")
	}
}
