package extraction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	documentdomain "ladinglens-backend/internal/document/domain"
	emaildomain "ladinglens-backend/internal/email/domain"
)

// ErrExtractionFailed means neither the deterministic pass nor the
// generative fallback produced a usable result for a segment. The caller
// records this as a permanent dedupe failure.
var ErrExtractionFailed = errors.New("extraction failed for segment")

// GenerativeExtractor is the narrow capability behind the fallback pass.
// The implementation owns schema validation and its own retry ceiling;
// the engine only ever sees a schema-valid result or an error.
type GenerativeExtractor interface {
	ExtractDocument(ctx context.Context, text string) (*documentdomain.DocumentExtraction, error)
}

// Config tunes the engine. Zero values pick the defaults.
type Config struct {
	// CriticalFields drive both the fallback decision and the confidence
	// score. Defaults to DefaultCriticalFields.
	CriticalFields []string
	// MinCharsPerPage is the text-density floor below which a segment is
	// treated as a scanned PDF and sent to the fallback.
	MinCharsPerPage int
	// Concurrency bounds simultaneous generative calls across all
	// segments, respecting the backend's rate limits.
	Concurrency int
	// FallbackTimeout caps a single generative call. A timeout surfaces
	// as a per-segment error, never a batch-fatal one.
	FallbackTimeout time.Duration
}

// Engine runs the two-tier extraction: a deterministic pattern pass first,
// then a generative fallback only when critical fields are missing or the
// segment looks like a low-text scan.
type Engine struct {
	generative      GenerativeExtractor
	criticalFields  []string
	minCharsPerPage int
	fallbackTimeout time.Duration
	sem             chan struct{}
}

// NewEngine creates an extraction engine around an injected generative
// capability. A nil capability disables the fallback pass entirely.
func NewEngine(generative GenerativeExtractor, cfg Config) *Engine {
	if len(cfg.CriticalFields) == 0 {
		cfg.CriticalFields = DefaultCriticalFields
	}
	if cfg.MinCharsPerPage <= 0 {
		cfg.MinCharsPerPage = 100
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	if cfg.FallbackTimeout <= 0 {
		cfg.FallbackTimeout = 60 * time.Second
	}
	return &Engine{
		generative:      generative,
		criticalFields:  cfg.CriticalFields,
		minCharsPerPage: cfg.MinCharsPerPage,
		fallbackTimeout: cfg.FallbackTimeout,
		sem:             make(chan struct{}, cfg.Concurrency),
	}
}

// Extract produces the merged extraction for one segment. The deterministic
// pass is side-effect-free; only the fallback blocks, bounded by the
// engine's concurrency semaphore. doc_type is inherited from the segment
// and email_status from the parent message's classification.
func (e *Engine) Extract(ctx context.Context, segment documentdomain.Segment, status emaildomain.EmailStatus) (*documentdomain.DocumentExtraction, error) {
	text := segment.Text()

	result := extractDeterministic(text)
	missing := MissingCriticalFields(result, e.criticalFields)
	scanned := e.looksScanned(segment)

	if len(missing) > 0 || scanned {
		if err := e.runFallback(ctx, text, result); err != nil {
			// A complete deterministic result stands on its own even when
			// the density heuristic asked for a second opinion.
			if len(missing) > 0 {
				return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
			}
			log.Printf("[Extraction] fallback unavailable for pages %d-%d, keeping deterministic result: %v",
				segment.StartPage, segment.EndPage, err)
		}
	}

	// The segment's marker is authoritative for doc_type; either pass may
	// only fill it in when the segmenter found no marker.
	if segment.DocType != documentdomain.DocTypeUnknown {
		result.DocType = segment.DocType
	}
	if status != emaildomain.StatusUnknown {
		result.EmailStatus = status
	} else if result.EmailStatus == "" {
		result.EmailStatus = emaildomain.StatusUnknown
	}

	result.ExtractionConfidence = Score(result, e.criticalFields)
	return result, nil
}

func (e *Engine) looksScanned(segment documentdomain.Segment) bool {
	for _, page := range segment.Pages {
		if !IsScannedText(page.Text, e.minCharsPerPage) {
			return false
		}
	}
	return true
}

// runFallback calls the generative capability and merges its output into
// the deterministic result. Deterministic fields are trusted first and
// never overwritten; the fallback only fills blanks.
func (e *Engine) runFallback(ctx context.Context, text string, result *documentdomain.DocumentExtraction) error {
	if e.generative == nil {
		return errors.New("no generative extractor configured")
	}

	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	callCtx, cancel := context.WithTimeout(ctx, e.fallbackTimeout)
	defer cancel()

	fallback, err := e.generative.ExtractDocument(callCtx, text)
	if err != nil {
		return err
	}

	mergeExtraction(result, fallback)
	return nil
}

func mergeExtraction(dst, src *documentdomain.DocumentExtraction) {
	if src == nil {
		return
	}
	if dst.DocType == documentdomain.DocTypeUnknown && src.DocType != "" {
		dst.DocType = src.DocType
	}
	if dst.EmailStatus == "" || dst.EmailStatus == emaildomain.StatusUnknown {
		if src.EmailStatus != "" {
			dst.EmailStatus = src.EmailStatus
		}
	}
	if len(dst.Containers) == 0 {
		dst.Containers = src.Containers
	}

	fillStr(&dst.BLNumber, src.BLNumber)
	fillStr(&dst.ShipperName, src.ShipperName)
	fillStr(&dst.ConsigneeName, src.ConsigneeName)
	fillStr(&dst.NotifyPartyName, src.NotifyPartyName)
	fillStr(&dst.CarrierName, src.CarrierName)
	fillStr(&dst.PortOfLoading, src.PortOfLoading)
	fillStr(&dst.PortOfDischarge, src.PortOfDischarge)
	fillStr(&dst.PlaceOfReceipt, src.PlaceOfReceipt)
	fillStr(&dst.PlaceOfDelivery, src.PlaceOfDelivery)
	fillStr(&dst.ETD, src.ETD)
	fillStr(&dst.ETA, src.ETA)
	fillStr(&dst.RawTextExcerpt, src.RawTextExcerpt)
}

func fillStr(dst **string, src *string) {
	if (*dst == nil || **dst == "") && src != nil && *src != "" {
		*dst = src
	}
}
