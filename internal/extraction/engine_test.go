package extraction

import (
	"context"
	"errors"
	"sync"
	"testing"

	documentdomain "ladinglens-backend/internal/document/domain"
	emaildomain "ladinglens-backend/internal/email/domain"
)

type mockGenerative struct {
	mu     sync.Mutex
	calls  int
	result *documentdomain.DocumentExtraction
	err    error
}

func (m *mockGenerative) ExtractDocument(ctx context.Context, text string) (*documentdomain.DocumentExtraction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.result, m.err
}

func (m *mockGenerative) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func segmentOf(docType documentdomain.DocType, text string) documentdomain.Segment {
	return documentdomain.Segment{
		StartPage: 0,
		EndPage:   0,
		DocType:   docType,
		Pages:     []documentdomain.PageText{{Index: 0, Text: text}},
	}
}

func TestExtractSkipsFallbackWhenComplete(t *testing.T) {
	mock := &mockGenerative{}
	engine := NewEngine(mock, Config{})

	result, err := engine.Extract(context.Background(), segmentOf(documentdomain.DocTypeHBL, sampleHBL), emaildomain.StatusPreAlert)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.callCount() != 0 {
		t.Errorf("fallback was invoked %d times for a complete deterministic result", mock.callCount())
	}
	if result.ExtractionConfidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", result.ExtractionConfidence)
	}
	if result.EmailStatus != emaildomain.StatusPreAlert {
		t.Errorf("email_status = %s, want pre_alert", result.EmailStatus)
	}
}

const partialHBL = `**SHIPPER**
Acme Exports Ltd, 12 Harbour Rd, Shanghai

HBL-5000001 cargo manifest, details to follow on the final document.
Booking confirmed with the carrier for next available sailing.
`

func TestExtractFallbackFillsBlanksOnly(t *testing.T) {
	mock := &mockGenerative{
		result: &documentdomain.DocumentExtraction{
			BLNumber:      str("HBL-9999999"),
			ShipperName:   str("Wrong Shipper Inc"),
			ConsigneeName: str("Globex Imports BV"),
			CarrierName:   str("Maersk Line"),
			Containers:    []documentdomain.ContainerInfo{{Number: "MSKU0000001"}},
		},
	}
	engine := NewEngine(mock, Config{})

	result, err := engine.Extract(context.Background(), segmentOf(documentdomain.DocTypeHBL, partialHBL), emaildomain.StatusDraft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.callCount() != 1 {
		t.Fatalf("fallback call count = %d, want 1", mock.callCount())
	}

	// Deterministic fields are trusted first and never overwritten.
	if result.BLNumber == nil || *result.BLNumber != "HBL-5000001" {
		t.Errorf("deterministic bl_number was overwritten: %v", result.BLNumber)
	}
	if result.ShipperName == nil || *result.ShipperName != "Acme Exports Ltd, 12 Harbour Rd, Shanghai" {
		t.Errorf("deterministic shipper_name was overwritten: %v", result.ShipperName)
	}

	// Blanks come from the fallback.
	if result.ConsigneeName == nil || *result.ConsigneeName != "Globex Imports BV" {
		t.Errorf("consignee_name = %v", result.ConsigneeName)
	}
	if result.CarrierName == nil || *result.CarrierName != "Maersk Line" {
		t.Errorf("carrier_name = %v", result.CarrierName)
	}
	if len(result.Containers) != 1 || result.Containers[0].Number != "MSKU0000001" {
		t.Errorf("containers = %+v", result.Containers)
	}
	if result.ExtractionConfidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0 after merge", result.ExtractionConfidence)
	}
}

func TestExtractFailsWhenFallbackFailsAndFieldsMissing(t *testing.T) {
	mock := &mockGenerative{err: errors.New("model unavailable")}
	engine := NewEngine(mock, Config{})

	_, err := engine.Extract(context.Background(), segmentOf(documentdomain.DocTypeHBL, partialHBL), emaildomain.StatusDraft)
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractKeepsCompleteResultWhenDensityFallbackFails(t *testing.T) {
	// With an absurd density floor every page looks scanned, so the fallback
	// runs even though the deterministic pass found everything. Its failure
	// must not discard a complete result.
	mock := &mockGenerative{err: errors.New("model unavailable")}
	engine := NewEngine(mock, Config{MinCharsPerPage: 100000})

	result, err := engine.Extract(context.Background(), segmentOf(documentdomain.DocTypeHBL, sampleHBL), emaildomain.StatusPreAlert)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.callCount() != 1 {
		t.Errorf("fallback call count = %d, want 1", mock.callCount())
	}
	if result.BLNumber == nil || *result.BLNumber != "HBL-2026001" {
		t.Errorf("deterministic result was lost: %v", result.BLNumber)
	}
}

func TestExtractWithoutGenerativeCapability(t *testing.T) {
	engine := NewEngine(nil, Config{})

	// Complete deterministic result needs no capability at all.
	if _, err := engine.Extract(context.Background(), segmentOf(documentdomain.DocTypeHBL, sampleHBL), emaildomain.StatusPreAlert); err != nil {
		t.Errorf("unexpected error on complete result: %v", err)
	}

	// An incomplete one has nowhere to go.
	if _, err := engine.Extract(context.Background(), segmentOf(documentdomain.DocTypeHBL, partialHBL), emaildomain.StatusDraft); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractSegmentDocTypeIsAuthoritative(t *testing.T) {
	engine := NewEngine(nil, Config{})

	// The page text says HOUSE BILL OF LADING but the segmenter assigned
	// mbl; the segment's marker wins.
	result, err := engine.Extract(context.Background(), segmentOf(documentdomain.DocTypeMBL, sampleHBL), emaildomain.StatusPreAlert)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DocType != documentdomain.DocTypeMBL {
		t.Errorf("doc_type = %s, want mbl from segment", result.DocType)
	}
}

func TestExtractUnknownSegmentInheritsDetectedType(t *testing.T) {
	engine := NewEngine(nil, Config{})

	result, err := engine.Extract(context.Background(), segmentOf(documentdomain.DocTypeUnknown, sampleHBL), emaildomain.StatusPreAlert)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DocType != documentdomain.DocTypeHBL {
		t.Errorf("doc_type = %s, want hbl detected from text", result.DocType)
	}
}
