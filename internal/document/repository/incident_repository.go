package repository

import (
	"time"

	documentdomain "ladinglens-backend/internal/document/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IncidentRepository persists per-item processing failures for the
// dashboard incidents panel.
type IncidentRepository interface {
	// Create records one incident.
	Create(incident *documentdomain.Incident) error
	// Recent returns the most recent incidents, newest first.
	Recent(limit int) ([]documentdomain.Incident, error)
}

// incidentRepository implements IncidentRepository interface
type incidentRepository struct {
	db *gorm.DB
}

// NewIncidentRepository creates a new instance of incidentRepository
func NewIncidentRepository(db *gorm.DB) IncidentRepository {
	return &incidentRepository{
		db: db,
	}
}

func (r *incidentRepository) Create(incident *documentdomain.Incident) error {
	if incident.ID == "" {
		incident.ID = uuid.New().String()
	}
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = time.Now()
	}
	return r.db.Create(incident).Error
}

func (r *incidentRepository) Recent(limit int) ([]documentdomain.Incident, error) {
	if limit <= 0 {
		limit = 20
	}
	var incidents []documentdomain.Incident
	err := r.db.Order("created_at DESC").Limit(limit).Find(&incidents).Error
	if err != nil {
		return nil, err
	}
	return incidents, nil
}
