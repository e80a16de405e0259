package repository

import (
	"time"

	documentdomain "ladinglens-backend/internal/document/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListParams filters and paginates a document listing.
type ListParams struct {
	DocType documentdomain.DocType
	Limit   int
	// Cursor is the dedupe_key of the last item of the previous page,
	// opaque to callers.
	Cursor  string
	Carrier string
	POL     string
	POD     string
}

// Page is one page of a cursor-paginated listing.
type Page struct {
	Items      []documentdomain.ExtractionResult `json:"items"`
	NextCursor *string                           `json:"next_cursor"`
	HasMore    bool                              `json:"has_more"`
}

// FilterOptions holds the distinct known values for the dashboard filters.
type FilterOptions struct {
	Carriers         []string `json:"carriers"`
	PortsOfLoading   []string `json:"ports_of_loading"`
	PortsOfDischarge []string `json:"ports_of_discharge"`
}

// Stats holds the aggregate counts for the dashboard summary cards.
type Stats struct {
	HBLCount          int64 `json:"hbl_count"`
	MBLCount          int64 `json:"mbl_count"`
	TotalDocuments    int64 `json:"total_documents"`
	FailedExtractions int64 `json:"failed_extractions"`
}

// DocumentRepository persists extraction results and enforces the
// at-most-once guarantee through conditional writes.
type DocumentRepository interface {
	// CreateIfAbsent inserts a result unless its dedupe key already
	// exists. Returns false without error on conflict. This is the only
	// commit path: the guarantee is the database constraint, never a
	// check-then-write.
	CreateIfAbsent(result *documentdomain.ExtractionResult) (bool, error)
	// CheckKey reports whether a key is fresh, already committed, or
	// recorded as permanently failed.
	CheckKey(key string) (documentdomain.DedupeStatus, error)
	// MarkFailed records a permanent extraction failure for a key.
	MarkFailed(failure *documentdomain.FailedExtraction) error
	// ResetFailure clears a permanent failure so the key can be retried.
	ResetFailure(key string) error
	// List returns a cursor-paginated page of results for one doc type.
	List(params ListParams) (*Page, error)
	// FilterOptions returns distinct carrier and port values.
	FilterOptions() (*FilterOptions, error)
	// Stats returns aggregate document counts.
	Stats() (*Stats, error)
}

// documentRepository implements DocumentRepository interface
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new instance of documentRepository
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{
		db: db,
	}
}

func (r *documentRepository) CreateIfAbsent(result *documentdomain.ExtractionResult) (bool, error) {
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedupe_key"}},
		DoNothing: true,
	}).Create(result)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *documentRepository) CheckKey(key string) (documentdomain.DedupeStatus, error) {
	var count int64
	if err := r.db.Model(&documentdomain.ExtractionResult{}).
		Where("dedupe_key = ?", key).Count(&count).Error; err != nil {
		return documentdomain.DedupeFresh, err
	}
	if count > 0 {
		return documentdomain.DedupeExists, nil
	}

	if err := r.db.Model(&documentdomain.FailedExtraction{}).
		Where("dedupe_key = ?", key).Count(&count).Error; err != nil {
		return documentdomain.DedupeFresh, err
	}
	if count > 0 {
		return documentdomain.DedupePermanentlyFailed, nil
	}
	return documentdomain.DedupeFresh, nil
}

func (r *documentRepository) MarkFailed(failure *documentdomain.FailedExtraction) error {
	if failure.CreatedAt.IsZero() {
		failure.CreatedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedupe_key"}},
		DoNothing: true,
	}).Create(failure).Error
}

func (r *documentRepository) ResetFailure(key string) error {
	return r.db.Where("dedupe_key = ?", key).
		Delete(&documentdomain.FailedExtraction{}).Error
}

func (r *documentRepository) List(params ListParams) (*Page, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 4
	}

	query := r.db.Model(&documentdomain.ExtractionResult{}).
		Where("doc_type = ?", params.DocType).
		Order("created_at DESC, dedupe_key DESC").
		Limit(limit + 1)

	if params.Carrier != "" {
		query = query.Where("carrier_name = ?", params.Carrier)
	}
	if params.POL != "" {
		query = query.Where("port_of_loading = ?", params.POL)
	}
	if params.POD != "" {
		query = query.Where("port_of_discharge = ?", params.POD)
	}

	if params.Cursor != "" {
		var anchor documentdomain.ExtractionResult
		err := r.db.Where("dedupe_key = ?", params.Cursor).First(&anchor).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}
		if err == nil {
			query = query.Where(
				"(created_at < ?) OR (created_at = ? AND dedupe_key < ?)",
				anchor.CreatedAt, anchor.CreatedAt, anchor.DedupeKey,
			)
		}
	}

	var items []documentdomain.ExtractionResult
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}

	// One extra row was requested to know whether another page exists.
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	page := &Page{Items: items, HasMore: hasMore}
	if hasMore && len(items) > 0 {
		cursor := items[len(items)-1].DedupeKey
		page.NextCursor = &cursor
	}
	return page, nil
}

func (r *documentRepository) FilterOptions() (*FilterOptions, error) {
	opts := &FilterOptions{}

	columns := []struct {
		name string
		dst  *[]string
	}{
		{"carrier_name", &opts.Carriers},
		{"port_of_loading", &opts.PortsOfLoading},
		{"port_of_discharge", &opts.PortsOfDischarge},
	}

	for _, col := range columns {
		var values []string
		err := r.db.Model(&documentdomain.ExtractionResult{}).
			Distinct(col.name).
			Where(col.name+" IS NOT NULL AND "+col.name+" <> ''").
			Order(col.name + " ASC").
			Pluck(col.name, &values).Error
		if err != nil {
			return nil, err
		}
		*col.dst = values
	}
	return opts, nil
}

func (r *documentRepository) Stats() (*Stats, error) {
	stats := &Stats{}

	if err := r.db.Model(&documentdomain.ExtractionResult{}).
		Where("doc_type = ?", documentdomain.DocTypeHBL).
		Count(&stats.HBLCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&documentdomain.ExtractionResult{}).
		Where("doc_type = ?", documentdomain.DocTypeMBL).
		Count(&stats.MBLCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&documentdomain.ExtractionResult{}).
		Count(&stats.TotalDocuments).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&documentdomain.FailedExtraction{}).
		Count(&stats.FailedExtractions).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
