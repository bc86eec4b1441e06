package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cuentasclaras/payables-backend/pkg/db/models"
)

// Repository manages persistence for generated payment batches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, batch *models.PaymentBatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentBatch, error)
	List(ctx context.Context, limit int) ([]models.PaymentBatch, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payment batch repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, batch *models.PaymentBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentBatch, error) {
	var batch models.PaymentBatch
	err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

func (r *repository) List(ctx context.Context, limit int) ([]models.PaymentBatch, error) {
	var batches []models.PaymentBatch
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}
