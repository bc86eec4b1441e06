package recurring

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cuentasclaras/payables-backend/pkg/db/models"
)

// Repository manages persistence for recurring expenses.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, expense *models.RecurringExpense) error
	Update(ctx context.Context, expense *models.RecurringExpense) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RecurringExpense, error)
	ListAll(ctx context.Context) ([]models.RecurringExpense, error)
	ListActive(ctx context.Context) ([]models.RecurringExpense, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a recurring expense repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, expense *models.RecurringExpense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *repository) Update(ctx context.Context, expense *models.RecurringExpense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.RecurringExpense{}, "id = ?", id).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.RecurringExpense, error) {
	var expense models.RecurringExpense
	err := r.db.WithContext(ctx).First(&expense, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &expense, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.RecurringExpense, error) {
	var expenses []models.RecurringExpense
	if err := r.db.WithContext(ctx).Order("day_of_month ASC, name ASC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.RecurringExpense, error) {
	var expenses []models.RecurringExpense
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("day_of_month ASC, name ASC").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}
