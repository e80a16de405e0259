package repository

import (
	processingdomain "ladinglens-backend/internal/processing/domain"

	"gorm.io/gorm"
)

// JobRepository is the explicit store behind the orchestrator's job
// registry: jobs are created on trigger, updated only by the owning
// orchestrator, and evicted by the retention policy.
type JobRepository interface {
	Create(job *processingdomain.Job) error
	Update(job *processingdomain.Job) error
	GetByID(id string) (*processingdomain.Job, error)
	// Prune deletes finished jobs beyond the newest keep, oldest first.
	Prune(keep int) error
}

// jobRepository implements JobRepository interface
type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new instance of jobRepository
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{
		db: db,
	}
}

func (r *jobRepository) Create(job *processingdomain.Job) error {
	return r.db.Create(job).Error
}

func (r *jobRepository) Update(job *processingdomain.Job) error {
	return r.db.Save(job).Error
}

func (r *jobRepository) GetByID(id string) (*processingdomain.Job, error) {
	var job processingdomain.Job
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) Prune(keep int) error {
	if keep <= 0 {
		return nil
	}
	var ids []string
	err := r.db.Model(&processingdomain.Job{}).
		Where("state IN ?", []processingdomain.JobState{processingdomain.JobCompleted, processingdomain.JobFailed}).
		Order("started_at DESC").
		Offset(keep).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&processingdomain.Job{}).Error
}
