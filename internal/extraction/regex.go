package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	documentdomain "ladinglens-backend/internal/document/domain"
)

// Deterministic field patterns, keyed on the structural cues the converter
// emits for Bill of Lading documents (bold section headers and pipe tables).
var (
	blNumberPattern      = regexp.MustCompile(`\b([HM]BL-\d+)\b`)
	blNumberLabelPattern = regexp.MustCompile(`(?i)B/L\s*(?:NO\.?|NUMBER)[:\s]*\n*([A-Z0-9-]+)`)

	shipperPattern     = regexp.MustCompile(`\*\*SHIPPER\*\*\s*\n(?:Shipper:?\s*\n)?([^\n*]+)`)
	consigneePattern   = regexp.MustCompile(`\*\*CONSIGNEE\*\*\s*\n(?:Consignee:?\s*\n)?([^\n*]+)`)
	notifyPartyPattern = regexp.MustCompile(`\*\*NOTIFY PARTY\*\*\s*\n(?:Notify Party:?\s*\n)?([^\n*]+)`)
	carrierPattern     = regexp.MustCompile(`Carrier:\s*\|?\s*([A-Za-z][^\n|]+)`)

	polPattern              = regexp.MustCompile(`\*\*PORT OF LOADING\*\*\s*\n([^\n*]+)`)
	podPattern              = regexp.MustCompile(`\*\*PORT OF DISCHARGE\*\*\s*\n([^\n*]+)`)
	placeOfReceiptPattern   = regexp.MustCompile(`\*\*PLACE OF RECEIPT\*\*\s*\n([^\n*]+)`)
	placeOfDeliveryPattern  = regexp.MustCompile(`\*\*PLACE OF DELIVERY\*\*\s*\n([^\n*]+)`)

	etdPattern = regexp.MustCompile(`ETD:\s*([^\n]+)`)
	etaPattern = regexp.MustCompile(`ETA:\s*([^\n]+)`)

	containerNumberPattern = regexp.MustCompile(`\b([A-Z]{4}\d{7})\b`)
	rowWeightPattern       = regexp.MustCompile(`(\d[\d\s,]*\.\d+)\|`)
	tableTotalsPattern     = regexp.MustCompile(`\|[\s\n]*(\d[\d\s,.]+)\s*\|[\s\n]*(\d+\.?\d*)\s*\|`)
	looseVolumePattern     = regexp.MustCompile(`\b(\d+\.\d{3})\b`)

	unitSuffixPattern = regexp.MustCompile(`(?i)\s*(kgs?|lbs?|cbm|m3|mt)\.?\s*$`)
	numericPattern    = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

	termsPattern        = regexp.MustCompile(`(?is)\*\*TERMS\s*(?:&|AND)\s*CONDITIONS[^\n*]*\*\*\n(.*?)(?:\n\*\*|$)`)
	legalHeadersPattern = regexp.MustCompile(`(?is)\*\*(?:RECEIVED BY|LIABILITY|CARRIER RESPONSIBILITY)[^\n*]*\*\*\n(.*?)(?:\n\*\*|$)`)
	newlineRunsPattern  = regexp.MustCompile(`\n+`)
)

// dateLayouts covers the formats seen on real BL documents.
var dateLayouts = []string{
	"02-Jan-2006",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
}

// minRowWeight filters table cell matches that are too small to be a gross
// weight in kgs (counts, seal numbers, volumes).
const minRowWeight = 50

// ParseNumeric normalizes a numeric-with-unit cell ("15,777.6 kgs",
// "45.2 CBM") to a bare float. Thousands separators, stray spaces and unit
// suffixes are stripped deterministically; anything that still fails to
// parse yields nil rather than an unparsed passthrough.
func ParseNumeric(value string) *float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return nil
	}
	cleaned = unitSuffixPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.NewReplacer(" ", "", ",", "", " ", "").Replace(cleaned)
	if !numericPattern.MatchString(cleaned) {
		return nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseDate tries the known BL date layouts and normalizes to YYYY-MM-DD.
func ParseDate(value string) *string {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			iso := t.Format("2006-01-02")
			return &iso
		}
	}
	return nil
}

// IsScannedText reports whether a segment's text looks like a scanned,
// non-text PDF: almost no content, or no markdown structure at all.
func IsScannedText(text string, minChars int) bool {
	stripped := strings.TrimSpace(text)
	if len(stripped) < minChars {
		return true
	}
	hasHeaders := strings.Contains(text, "**")
	hasTables := strings.Contains(text, "|") && strings.Contains(text, "---")
	return !hasHeaders && !hasTables
}

// extractDeterministic runs the full pattern battery over a segment's text.
// Every field is best-effort; absent fields stay nil for the fallback pass.
func extractDeterministic(text string) *documentdomain.DocumentExtraction {
	result := &documentdomain.DocumentExtraction{
		DocType:     extractDocType(text),
		BLNumber:    extractBLNumber(text),
		Containers:  extractContainers(text),
		CarrierName: extractCarrier(text),
	}

	result.ShipperName = extractParty(text, shipperPattern, "shipper:")
	result.ConsigneeName = extractParty(text, consigneePattern, "consignee:")
	result.NotifyPartyName = extractParty(text, notifyPartyPattern, "notify party:")

	result.PortOfLoading = extractPort(text, polPattern, "ETD")
	result.PortOfDischarge = extractPort(text, podPattern, "ETA")
	result.PlaceOfReceipt = extractPort(text, placeOfReceiptPattern, "")
	result.PlaceOfDelivery = extractPort(text, placeOfDeliveryPattern, "")

	if m := etdPattern.FindStringSubmatch(text); m != nil {
		result.ETD = ParseDate(m[1])
	}
	if m := etaPattern.FindStringSubmatch(text); m != nil {
		result.ETA = ParseDate(m[1])
	}

	result.RawTextExcerpt = extractRawTextExcerpt(text)

	return result
}

func extractDocType(text string) documentdomain.DocType {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "HOUSE BILL OF LADING"):
		return documentdomain.DocTypeHBL
	case strings.Contains(upper, "MASTER BILL OF LADING"):
		return documentdomain.DocTypeMBL
	case hblPrefixPattern.MatchString(text):
		return documentdomain.DocTypeHBL
	case mblPrefixPattern.MatchString(text):
		return documentdomain.DocTypeMBL
	default:
		return documentdomain.DocTypeUnknown
	}
}

func extractBLNumber(text string) *string {
	if m := blNumberPattern.FindStringSubmatch(text); m != nil {
		return strptr(m[1])
	}
	if m := blNumberLabelPattern.FindStringSubmatch(text); m != nil {
		return strptr(strings.TrimSpace(m[1]))
	}
	return nil
}

// extractParty pulls the first line after a bold party header, skipping
// redundant "Shipper:"-style label lines the converter sometimes repeats.
func extractParty(text string, pattern *regexp.Regexp, label string) *string {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	name := strings.TrimSpace(m[1])
	if name == "" || strings.ToLower(name) == label || len(name) <= 2 {
		return nil
	}
	return strptr(name)
}

func extractCarrier(text string) *string {
	m := carrierPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	carrier := strings.TrimRight(strings.TrimSpace(m[1]), "| \t")
	if carrier == "" {
		return nil
	}
	return strptr(carrier)
}

// extractPort guards against the ETD/ETA line directly under a port header
// being captured as the port name.
func extractPort(text string, pattern *regexp.Regexp, excludePrefix string) *string {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	port := strings.TrimSpace(m[1])
	if port == "" {
		return nil
	}
	if excludePrefix != "" && strings.HasPrefix(strings.ToUpper(port), excludePrefix) {
		return nil
	}
	return strptr(port)
}

// extractContainers finds container numbers and pairs each with a gross
// weight from its table row. Volume usually appears only as a total in the
// MARKS & NUMBERS table, so it is distributed evenly unless per-container
// volumes are listed loose between the two tables.
func extractContainers(text string) []documentdomain.ContainerInfo {
	numbers := containerNumberPattern.FindAllString(text, -1)
	if len(numbers) == 0 {
		return nil
	}

	weights := make([]*float64, len(numbers))
	for i, number := range numbers {
		pos := strings.Index(text, number)
		if pos < 0 {
			continue
		}
		window := text[pos:min(pos+200, len(text))]
		for _, m := range rowWeightPattern.FindAllStringSubmatch(window, -1) {
			if w := ParseNumeric(m[1]); w != nil && *w > minRowWeight {
				weights[i] = w
				break
			}
		}
	}

	volumes := distributeVolumes(text, numbers)

	containers := make([]documentdomain.ContainerInfo, len(numbers))
	for i, number := range numbers {
		containers[i] = documentdomain.ContainerInfo{
			Number: number,
			Weight: weights[i],
			Volume: volumes[i],
		}
	}
	return containers
}

func distributeVolumes(text string, numbers []string) []*float64 {
	volumes := make([]*float64, len(numbers))

	containerHeaderPos := strings.Index(text, "|CONTAINER NO.")
	searchText := text
	if containerHeaderPos >= 0 {
		searchText = text[:containerHeaderPos]
	}

	// Last totals row before the container table carries the total volume.
	var totalVolume *float64
	if matches := tableTotalsPattern.FindAllStringSubmatch(searchText, -1); len(matches) > 0 {
		totalVolume = ParseNumeric(matches[len(matches)-1][2])
	}

	// Single-container documents sometimes carry the volume directly in the
	// container row.
	if len(numbers) == 1 {
		if pos := strings.Index(text, numbers[0]); pos >= 0 {
			window := text[pos:min(pos+300, len(text))]
			if m := tableTotalsPattern.FindStringSubmatch(window); m != nil {
				if v := ParseNumeric(m[2]); v != nil && *v < 200 {
					totalVolume = v
				}
			}
		}
	}

	if totalVolume != nil {
		perContainer := *totalVolume / float64(len(numbers))
		for i := range volumes {
			v := perContainer
			volumes[i] = &v
		}
	}

	// Per-container volumes listed loose between the MARKS and CONTAINER
	// tables override the even split, matched from the end.
	marksHeaderPos := strings.Index(text, "|MARKS & NUMBERS")
	if marksHeaderPos >= 0 && containerHeaderPos >= 0 && marksHeaderPos < containerHeaderPos {
		gap := text[marksHeaderPos:containerHeaderPos]
		var loose []float64
		for _, m := range looseVolumePattern.FindAllStringSubmatch(gap, -1) {
			v := ParseNumeric(m[1])
			if v == nil {
				continue
			}
			if totalVolume != nil && abs(*v-*totalVolume) < 0.001 {
				continue
			}
			loose = append(loose, *v)
		}
		count := min(len(loose), len(volumes))
		for i := 1; i <= count; i++ {
			v := loose[len(loose)-i]
			volumes[len(volumes)-i] = &v
		}
	}

	return volumes
}

// extractRawTextExcerpt captures a short legal-text excerpt, preferring the
// terms-and-conditions block, for display alongside the structured fields.
func extractRawTextExcerpt(text string) *string {
	for _, pattern := range []*regexp.Regexp{termsPattern, legalHeadersPattern} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if excerpt := tidyExcerpt(m[1]); excerpt != nil {
				return excerpt
			}
		}
	}

	// Fallback: first substantial paragraph that is not a header or table.
	for _, p := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(p)
		if len(p) > 50 && !strings.HasPrefix(p, "|") && !strings.HasPrefix(p, "#") && !strings.HasPrefix(trimmed, "**") {
			return tidyExcerpt(trimmed)
		}
	}
	return nil
}

func tidyExcerpt(raw string) *string {
	excerpt := newlineRunsPattern.ReplaceAllString(strings.TrimSpace(raw), " ")
	if len(excerpt) > 200 {
		excerpt = excerpt[:197] + "..."
	}
	if len(excerpt) <= 10 {
		return nil
	}
	return &excerpt
}

func strptr(s string) *string { return &s }

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
