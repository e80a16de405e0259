package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	documentdomain "ladinglens-backend/internal/document/domain"
	emaildomain "ladinglens-backend/internal/email/domain"
	"ladinglens-backend/internal/extraction"
)

// maxInputChars chops the segment text to keep well inside every
// provider's context window; a single BL document fits comfortably.
const maxInputChars = 15000

// maxAttempts is the retry ceiling per extraction call. Invalid model
// output is rejected and re-prompted up to this many times; this ceiling
// belongs to the capability, not to the extraction engine.
const maxAttempts = 3

const systemPrompt = `You are an expert logistics document analyzer. Extract key information from the Bill of Lading text provided. Determine if it is a Master Bill of Lading (MBL) or House Bill of Lading (HBL). Extract container details, parties, and routing info. If a field is not found, leave it null.

Respond with ONLY a JSON object, no prose, matching exactly this schema:
{
  "doc_type": "hbl" | "mbl" | "unknown",
  "bl_number": string | null,
  "email_status": "pre_alert" | "draft" | "unknown",
  "containers": [{"number": string, "weight": number | null, "volume": number | null}],
  "shipper_name": string | null,
  "consignee_name": string | null,
  "notify_party_name": string | null,
  "carrier_name": string | null,
  "port_of_loading": string | null,
  "port_of_discharge": string | null,
  "place_of_receipt": string | null,
  "place_of_delivery": string | null,
  "etd": "YYYY-MM-DD" | null,
  "eta": "YYYY-MM-DD" | null,
  "raw_text_excerpt": string | null
}
Weights are bare numbers in kgs and volumes bare numbers in CBM, never strings with units.`

// buildPrompt assembles the full extraction prompt for one segment.
func buildPrompt(text string) string {
	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}
	return fmt.Sprintf("%s\n\nExtract data from this document text:\n\n%s", systemPrompt, text)
}

// parseExtraction validates raw model output against the extraction
// schema. Any deviation is an error so the caller can re-prompt.
func parseExtraction(raw string) (*documentdomain.DocumentExtraction, error) {
	jsonText := stripToJSON(raw)
	if jsonText == "" {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var result documentdomain.DocumentExtraction
	decoder := json.NewDecoder(strings.NewReader(jsonText))
	if err := decoder.Decode(&result); err != nil {
		return nil, fmt.Errorf("model output is not valid extraction JSON: %w", err)
	}

	switch documentdomain.DocType(strings.ToLower(string(result.DocType))) {
	case documentdomain.DocTypeHBL:
		result.DocType = documentdomain.DocTypeHBL
	case documentdomain.DocTypeMBL:
		result.DocType = documentdomain.DocTypeMBL
	case documentdomain.DocTypeUnknown, "":
		result.DocType = documentdomain.DocTypeUnknown
	default:
		return nil, fmt.Errorf("invalid doc_type %q", result.DocType)
	}

	switch emaildomain.EmailStatus(strings.ToLower(string(result.EmailStatus))) {
	case emaildomain.StatusPreAlert:
		result.EmailStatus = emaildomain.StatusPreAlert
	case emaildomain.StatusDraft:
		result.EmailStatus = emaildomain.StatusDraft
	case emaildomain.StatusUnknown, "":
		result.EmailStatus = emaildomain.StatusUnknown
	default:
		return nil, fmt.Errorf("invalid email_status %q", result.EmailStatus)
	}

	// Dates the model returned in a non-ISO layout are re-normalized when
	// possible and dropped otherwise.
	result.ETD = normalizeDate(result.ETD)
	result.ETA = normalizeDate(result.ETA)

	return &result, nil
}

func normalizeDate(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return extraction.ParseDate(*value)
}

// stripToJSON removes markdown code fences and surrounding prose,
// returning the first top-level JSON object.
func stripToJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return ""
	}
	return cleaned[start : end+1]
}
