package domain

import (
	"time"

	emaildomain "ladinglens-backend/internal/email/domain"
)

// DocType is a closed set of shipping-document types. Kept as a typed
// constant set rather than an open string so per-type handling is matched
// exhaustively instead of by ad-hoc string checks.
type DocType string

const (
	DocTypeHBL     DocType = "hbl"
	DocTypeMBL     DocType = "mbl"
	DocTypeUnknown DocType = "unknown"
)

// PageText is the normalized markdown text of one physical PDF page,
// produced by the external converter. Index is 0-based.
type PageText struct {
	Index int    `json:"page_index"`
	Text  string `json:"normalized_text"`
}

// Segment is a contiguous run of pages belonging to one logical document.
// Segments within an attachment are disjoint and cover every page exactly
// once; pages that match no marker are emitted as UNKNOWN segments, never
// dropped.
type Segment struct {
	StartPage int
	EndPage   int
	DocType   DocType
	Pages     []PageText
}

// Text returns the concatenated normalized text of the segment's pages.
func (s Segment) Text() string {
	if len(s.Pages) == 1 {
		return s.Pages[0].Text
	}
	var out string
	for i, p := range s.Pages {
		if i > 0 {
			out += "\n\n"
		}
		out += p.Text
	}
	return out
}

// ContainerInfo holds per-container figures. Weight (kgs) and volume (CBM)
// are bare numerics: unit suffixes and thousands separators are stripped at
// parse time, never passed through unparsed.
type ContainerInfo struct {
	Number string   `json:"number"`
	Weight *float64 `json:"weight"`
	Volume *float64 `json:"volume"`
}

// DocumentExtraction is the field schema shared by the deterministic pass
// and the generative fallback. Pointer fields distinguish "absent" from
// "empty string" so the merge policy can tell whether the deterministic
// pass already filled a field.
type DocumentExtraction struct {
	DocType     DocType                 `json:"doc_type"`
	BLNumber    *string                 `json:"bl_number"`
	EmailStatus emaildomain.EmailStatus `json:"email_status"`
	Containers  []ContainerInfo         `json:"containers" gorm:"serializer:json"`

	// Parties
	ShipperName     *string `json:"shipper_name"`
	ConsigneeName   *string `json:"consignee_name"`
	NotifyPartyName *string `json:"notify_party_name"`
	CarrierName     *string `json:"carrier_name"`

	// Routing
	PortOfLoading   *string `json:"port_of_loading"`
	PortOfDischarge *string `json:"port_of_discharge"`
	PlaceOfReceipt  *string `json:"place_of_receipt"`
	PlaceOfDelivery *string `json:"place_of_delivery"`

	// Dates, normalized to YYYY-MM-DD
	ETD *string `json:"etd"`
	ETA *string `json:"eta"`

	ExtractionConfidence float64 `json:"extraction_confidence"`
	RawTextExcerpt       *string `json:"raw_text_excerpt"`
}

// ExtractionResult is the canonical persisted record: one per segment,
// immutable after creation. Field names are part of the external contract
// consumed by the dashboard and must not be renamed.
type ExtractionResult struct {
	DocumentExtraction

	SourceEmailID      string    `json:"source_email_id" gorm:"index"`
	SourceSubject      string    `json:"source_subject"`
	SourceFrom         string    `json:"source_from"`
	SourceReceivedAt   time.Time `json:"source_received_at"`
	AttachmentFilename string    `json:"attachment_filename"`
	PageRange          []int     `json:"page_range" gorm:"serializer:json"`
	DedupeKey          string    `json:"dedupe_key" gorm:"primaryKey"`
	CreatedAt          time.Time `json:"created_at" gorm:"index"`
}

// TableName specifies the table name for GORM
func (ExtractionResult) TableName() string {
	return "extraction_results"
}

// FailedExtraction records a dedupe key whose segment could not be
// extracted by either pass. Kept so broken pages are not re-attempted on
// every batch; cleared only by an explicit reset.
type FailedExtraction struct {
	DedupeKey          string    `json:"dedupe_key" gorm:"primaryKey"`
	Reason             string    `json:"reason" gorm:"type:text"`
	SourceEmailID      string    `json:"source_email_id"`
	AttachmentFilename string    `json:"attachment_filename"`
	CreatedAt          time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (FailedExtraction) TableName() string {
	return "failed_extractions"
}
