package extraction

import (
	"regexp"
	"strings"

	documentdomain "ladinglens-backend/internal/document/domain"
)

var (
	hblPrefixPattern = regexp.MustCompile(`\bHBL-\d+`)
	mblPrefixPattern = regexp.MustCompile(`\bMBL-\d+`)
)

// detectMarker looks for a document-type signal on one page: either an
// explicit title header or a bill-number prefix. Explicit headers always
// open a new segment; prefixes only do so when they contradict the open
// segment's established type.
func detectMarker(text string) (docType documentdomain.DocType, explicit bool, found bool) {
	upper := strings.ToUpper(text)

	if strings.Contains(upper, "HOUSE BILL OF LADING") {
		return documentdomain.DocTypeHBL, true, true
	}
	if strings.Contains(upper, "MASTER BILL OF LADING") {
		return documentdomain.DocTypeMBL, true, true
	}
	if hblPrefixPattern.MatchString(text) {
		return documentdomain.DocTypeHBL, false, true
	}
	if mblPrefixPattern.MatchString(text) {
		return documentdomain.DocTypeMBL, false, true
	}
	return documentdomain.DocTypeUnknown, false, false
}

// SegmentPages groups the converter's per-page text into logical
// sub-documents. The output is a partition of the input: segments are
// page-contiguous, disjoint, ordered, and together cover every page.
// An attachment with no recognizable marker degrades to a single UNKNOWN
// segment rather than an error.
func SegmentPages(pages []documentdomain.PageText) []documentdomain.Segment {
	if len(pages) == 0 {
		return nil
	}

	var segments []documentdomain.Segment
	var current *documentdomain.Segment

	open := func(page documentdomain.PageText, docType documentdomain.DocType) {
		current = &documentdomain.Segment{
			StartPage: page.Index,
			EndPage:   page.Index,
			DocType:   docType,
			Pages:     []documentdomain.PageText{page},
		}
	}
	closeCurrent := func() {
		if current != nil {
			segments = append(segments, *current)
			current = nil
		}
	}

	for _, page := range pages {
		docType, explicit, found := detectMarker(page.Text)

		switch {
		case current == nil:
			if !found {
				docType = documentdomain.DocTypeUnknown
			}
			open(page, docType)
		case found && (explicit || docType != current.DocType):
			closeCurrent()
			open(page, docType)
		default:
			current.Pages = append(current.Pages, page)
			current.EndPage = page.Index
		}
	}
	closeCurrent()

	return segments
}
