package ai

import (
	"strings"
	"testing"

	documentdomain "ladinglens-backend/internal/document/domain"
	emaildomain "ladinglens-backend/internal/email/domain"
)

func TestParseExtractionPlainJSON(t *testing.T) {
	raw := `{"doc_type":"hbl","bl_number":"HBL-123","email_status":"pre_alert","containers":[{"number":"TCLU1234567","weight":15777.6,"volume":42.3}],"shipper_name":"Acme"}`

	result, err := parseExtraction(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DocType != documentdomain.DocTypeHBL {
		t.Errorf("doc_type = %s", result.DocType)
	}
	if result.EmailStatus != emaildomain.StatusPreAlert {
		t.Errorf("email_status = %s", result.EmailStatus)
	}
	if result.BLNumber == nil || *result.BLNumber != "HBL-123" {
		t.Errorf("bl_number = %v", result.BLNumber)
	}
	if len(result.Containers) != 1 || result.Containers[0].Weight == nil || *result.Containers[0].Weight != 15777.6 {
		t.Errorf("containers = %+v", result.Containers)
	}
}

func TestParseExtractionStripsFencesAndProse(t *testing.T) {
	raw := "Here is the extracted data:\n```json\n{\"doc_type\": \"mbl\", \"email_status\": \"draft\"}\n```\nLet me know if you need anything else."

	result, err := parseExtraction(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DocType != documentdomain.DocTypeMBL {
		t.Errorf("doc_type = %s", result.DocType)
	}
	if result.EmailStatus != emaildomain.StatusDraft {
		t.Errorf("email_status = %s", result.EmailStatus)
	}
}

func TestParseExtractionRejectsInvalidEnums(t *testing.T) {
	if _, err := parseExtraction(`{"doc_type":"invoice"}`); err == nil {
		t.Error("expected error for invalid doc_type")
	}
	if _, err := parseExtraction(`{"doc_type":"hbl","email_status":"urgent"}`); err == nil {
		t.Error("expected error for invalid email_status")
	}
}

func TestParseExtractionRejectsNonJSON(t *testing.T) {
	if _, err := parseExtraction("I could not find any shipping document in the text."); err == nil {
		t.Error("expected error for prose-only output")
	}
	if _, err := parseExtraction(""); err == nil {
		t.Error("expected error for empty output")
	}
}

func TestParseExtractionNormalizesDates(t *testing.T) {
	result, err := parseExtraction(`{"doc_type":"hbl","etd":"15-Mar-2026","eta":"not a date"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ETD == nil || *result.ETD != "2026-03-15" {
		t.Errorf("etd = %v, want 2026-03-15", result.ETD)
	}
	if result.ETA != nil {
		t.Errorf("unparseable eta should be dropped, got %q", *result.ETA)
	}
}

func TestParseExtractionDefaultsEmptyEnums(t *testing.T) {
	result, err := parseExtraction(`{"bl_number":"MBL-7"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DocType != documentdomain.DocTypeUnknown {
		t.Errorf("doc_type = %s, want unknown", result.DocType)
	}
	if result.EmailStatus != emaildomain.StatusUnknown {
		t.Errorf("email_status = %s, want unknown", result.EmailStatus)
	}
}

func TestBuildPromptTruncatesInput(t *testing.T) {
	long := strings.Repeat("x", maxInputChars*2)
	prompt := buildPrompt(long)
	if len(prompt) >= len(systemPrompt)+maxInputChars*2 {
		t.Errorf("prompt was not truncated: %d chars", len(prompt))
	}
}
