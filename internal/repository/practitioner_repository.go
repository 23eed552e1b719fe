package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wellnesshub/internal/model"
	"wellnesshub/internal/query"
)

// PractitionerRepository defines practitioner persistence operations.
type PractitionerRepository interface {
	Create(ctx context.Context, p *model.Practitioner) error
	Update(ctx context.Context, p *model.Practitioner) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Practitioner, error)
	List(ctx context.Context, f query.Filter) ([]model.Practitioner, int64, error)
}

type practitionerRepository struct {
	db *gorm.DB
}

// NewPractitionerRepository creates a new practitioner repository.
func NewPractitionerRepository(db *gorm.DB) PractitionerRepository {
	return &practitionerRepository{db: db}
}

func (r *practitionerRepository) Create(ctx context.Context, p *model.Practitioner) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *practitionerRepository) Update(ctx context.Context, p *model.Practitioner) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *practitionerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Practitioner{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *practitionerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Practitioner, error) {
	var p model.Practitioner
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *practitionerRepository) List(ctx context.Context, f query.Filter) ([]model.Practitioner, int64, error) {
	var items []model.Practitioner
	total, err := list(r.db.WithContext(ctx), &model.Practitioner{}, f, &items)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
