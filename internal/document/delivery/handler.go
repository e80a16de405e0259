package delivery

import (
	"net/http"
	"strconv"

	documentdomain "ladinglens-backend/internal/document/domain"
	"ladinglens-backend/internal/document/repository"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 4
	maxPageSize     = 100
)

// DocumentHandler serves the read side: document listings, filter
// options, incidents, and aggregate stats.
type DocumentHandler struct {
	docRepo   repository.DocumentRepository
	incidents repository.IncidentRepository
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(docRepo repository.DocumentRepository, incidents repository.IncidentRepository) *DocumentHandler {
	return &DocumentHandler{
		docRepo:   docRepo,
		incidents: incidents,
	}
}

// GET /api/hbl
func (h *DocumentHandler) GetHBL(c *gin.Context) {
	h.list(c, documentdomain.DocTypeHBL)
}

// GET /api/mbl
func (h *DocumentHandler) GetMBL(c *gin.Context) {
	h.list(c, documentdomain.DocTypeMBL)
}

// list handles the shared pagination and filter parsing for both
// document listings. Query params: limit, cursor, carrier, pol, pod.
func (h *DocumentHandler) list(c *gin.Context, docType documentdomain.DocType) {
	limit := defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxPageSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	page, err := h.docRepo.List(repository.ListParams{
		DocType: docType,
		Limit:   limit,
		Cursor:  c.Query("cursor"),
		Carrier: c.Query("carrier"),
		POL:     c.Query("pol"),
		POD:     c.Query("pod"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/filter-options
func (h *DocumentHandler) GetFilterOptions(c *gin.Context) {
	opts, err := h.docRepo.FilterOptions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load filter options"})
		return
	}
	c.JSON(http.StatusOK, opts)
}

// GET /api/incidents?limit=<n>
func (h *DocumentHandler) GetIncidents(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	incidents, err := h.incidents.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load incidents"})
		return
	}
	if incidents == nil {
		incidents = []documentdomain.Incident{}
	}
	c.JSON(http.StatusOK, gin.H{"incidents": incidents})
}

// GET /api/stats
func (h *DocumentHandler) GetStats(c *gin.Context) {
	stats, err := h.docRepo.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
