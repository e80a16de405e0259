package extraction

import (
	"testing"

	documentdomain "ladinglens-backend/internal/document/domain"
)

func pages(texts ...string) []documentdomain.PageText {
	out := make([]documentdomain.PageText, len(texts))
	for i, text := range texts {
		out[i] = documentdomain.PageText{Index: i, Text: text}
	}
	return out
}

// Segments must be contiguous, disjoint, ordered, and together cover
// every input page.
func assertPartition(t *testing.T, input []documentdomain.PageText, segments []documentdomain.Segment) {
	t.Helper()
	next := 0
	for _, seg := range segments {
		if seg.StartPage != next {
			t.Fatalf("segment starts at page %d, expected %d", seg.StartPage, next)
		}
		if seg.EndPage < seg.StartPage {
			t.Fatalf("segment ends before it starts: %d-%d", seg.StartPage, seg.EndPage)
		}
		if len(seg.Pages) != seg.EndPage-seg.StartPage+1 {
			t.Fatalf("segment %d-%d holds %d pages", seg.StartPage, seg.EndPage, len(seg.Pages))
		}
		next = seg.EndPage + 1
	}
	if next != len(input) {
		t.Fatalf("segments cover %d pages, input has %d", next, len(input))
	}
}

func TestSegmentPagesSingleDocument(t *testing.T) {
	input := pages(
		"**MASTER BILL OF LADING**\nMBL-1000123",
		"continuation of cargo description MBL-1000123",
		"**TERMS & CONDITIONS**\nliability text",
	)

	segments := SegmentPages(input)
	assertPartition(t, input, segments)

	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].DocType != documentdomain.DocTypeMBL {
		t.Errorf("expected mbl, got %s", segments[0].DocType)
	}
	if segments[0].StartPage != 0 || segments[0].EndPage != 2 {
		t.Errorf("expected pages 0-2, got %d-%d", segments[0].StartPage, segments[0].EndPage)
	}
}

func TestSegmentPagesSplitsOnExplicitHeader(t *testing.T) {
	// Two HBLs back to back: the second explicit header must open a new
	// segment even though the doc type does not change.
	input := pages(
		"**HOUSE BILL OF LADING**\nHBL-2000001",
		"cargo details for HBL-2000001",
		"**HOUSE BILL OF LADING**\nHBL-2000002",
	)

	segments := SegmentPages(input)
	assertPartition(t, input, segments)

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].EndPage != 1 || segments[1].StartPage != 2 {
		t.Errorf("unexpected boundary: %v", segments)
	}
}

func TestSegmentPagesPrefixOnlySplitsOnTypeChange(t *testing.T) {
	// A bill-number prefix of the same type continues the open segment; a
	// prefix of the other type starts a new one.
	input := pages(
		"**MASTER BILL OF LADING**\nMBL-3000001",
		"marks and numbers, MBL-3000001 continued",
		"HBL-3000002 shipment details",
	)

	segments := SegmentPages(input)
	assertPartition(t, input, segments)

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].DocType != documentdomain.DocTypeMBL || segments[1].DocType != documentdomain.DocTypeHBL {
		t.Errorf("unexpected doc types: %s, %s", segments[0].DocType, segments[1].DocType)
	}
	if segments[1].StartPage != 2 {
		t.Errorf("expected HBL segment to start at page 2, got %d", segments[1].StartPage)
	}
}

func TestSegmentPagesNoMarkers(t *testing.T) {
	input := pages("an unrelated cover letter", "more prose without markers")

	segments := SegmentPages(input)
	assertPartition(t, input, segments)

	if len(segments) != 1 {
		t.Fatalf("expected single fallback segment, got %d", len(segments))
	}
	if segments[0].DocType != documentdomain.DocTypeUnknown {
		t.Errorf("expected unknown, got %s", segments[0].DocType)
	}
}

func TestSegmentPagesMarkerlessLeadingPage(t *testing.T) {
	// A cover page without markers opens an UNKNOWN segment; the explicit
	// header on page 1 closes it.
	input := pages(
		"cover letter, no markers",
		"**HOUSE BILL OF LADING**\nHBL-4000001",
	)

	segments := SegmentPages(input)
	assertPartition(t, input, segments)

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].DocType != documentdomain.DocTypeUnknown {
		t.Errorf("expected leading unknown segment, got %s", segments[0].DocType)
	}
	if segments[1].DocType != documentdomain.DocTypeHBL {
		t.Errorf("expected hbl, got %s", segments[1].DocType)
	}
}

func TestSegmentPagesEmpty(t *testing.T) {
	if got := SegmentPages(nil); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}
