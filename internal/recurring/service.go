package recurring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cuentasclaras/payables-backend/pkg/db/models"
	"github.com/cuentasclaras/payables-backend/pkg/enums"
	apperrors "github.com/cuentasclaras/payables-backend/pkg/errors"
)

// CreateExpenseInput carries the fields accepted when registering a recurring
// expense.
type CreateExpenseInput struct {
	Type               string          `json:"type" validate:"required,oneof=fixed_cost owner_withdrawal installment"`
	Name               string          `json:"name" validate:"required,max=200"`
	Amount             decimal.Decimal `json:"amount" validate:"required"`
	Currency           enums.Currency  `json:"currency" validate:"omitempty,oneof=UYU USD"`
	DayOfMonth         int             `json:"day_of_month" validate:"required,min=1,max=31"`
	Category           string          `json:"category" validate:"max=60"`
	Variable           bool            `json:"variable"`
	SupplierID         *uuid.UUID      `json:"supplier_id"`
	TotalInstallments  *int            `json:"total_installments" validate:"omitempty,min=1"`
	CurrentInstallment *int            `json:"current_installment" validate:"omitempty,min=0"`
	CardLast4          *string         `json:"card_last4" validate:"omitempty,len=4,numeric"`
}

// UpdateExpenseInput carries partial updates; nil pointers leave fields untouched.
type UpdateExpenseInput struct {
	Name               *string          `json:"name" validate:"omitempty,max=200"`
	Amount             *decimal.Decimal `json:"amount"`
	Currency           *string          `json:"currency" validate:"omitempty,oneof=UYU USD"`
	DayOfMonth         *int             `json:"day_of_month" validate:"omitempty,min=1,max=31"`
	Category           *string          `json:"category" validate:"omitempty,max=60"`
	Active             *bool            `json:"active"`
	Variable           *bool            `json:"variable"`
	TotalInstallments  *int             `json:"total_installments" validate:"omitempty,min=1"`
	CurrentInstallment *int             `json:"current_installment" validate:"omitempty,min=0"`
	CardLast4          *string          `json:"card_last4" validate:"omitempty,len=4,numeric"`
}

// DueItem is one projected obligation for a given month.
type DueItem struct {
	Expense               models.RecurringExpense `json:"expense"`
	DueDate               time.Time               `json:"due_date"`
	RemainingInstallments *int                    `json:"remaining_installments,omitempty"`
}

// Service manages the recurring expense register and its monthly projection.
type Service interface {
	Create(ctx context.Context, input CreateExpenseInput) (*models.RecurringExpense, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateExpenseInput) (*models.RecurringExpense, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.RecurringExpense, error)
	List(ctx context.Context) ([]models.RecurringExpense, error)
	DueThisMonth(ctx context.Context, ref time.Time) ([]DueItem, error)
	AdvanceInstallment(ctx context.Context, id uuid.UUID) (*models.RecurringExpense, error)
}

type service struct {
	repo Repository
}

// NewService wires a recurring expense service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("recurring expense repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateExpenseInput) (*models.RecurringExpense, error) {
	expenseType, err := enums.ParseRecurringExpenseType(input.Type)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid expense type")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "expense name is required")
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.New(apperrors.CodeValidation, "amount must be positive")
	}
	if input.DayOfMonth < 1 || input.DayOfMonth > 31 {
		return nil, apperrors.New(apperrors.CodeValidation, "day of month must be between 1 and 31")
	}
	if expenseType == enums.RecurringExpenseTypeInstallment && input.TotalInstallments == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "installments require a total count")
	}

	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUYU
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = "General"
	}

	expense := &models.RecurringExpense{
		Type:               expenseType,
		Name:               name,
		Amount:             input.Amount,
		Currency:           currency,
		DayOfMonth:         input.DayOfMonth,
		Category:           category,
		Active:             true,
		Variable:           input.Variable,
		SupplierID:         input.SupplierID,
		TotalInstallments:  input.TotalInstallments,
		CurrentInstallment: input.CurrentInstallment,
		CardLast4:          input.CardLast4,
	}
	if expenseType == enums.RecurringExpenseTypeInstallment && expense.CurrentInstallment == nil {
		zero := 0
		expense.CurrentInstallment = &zero
	}

	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateExpenseInput) (*models.RecurringExpense, error) {
	expense, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "expense name is required")
		}
		expense.Name = name
	}
	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, apperrors.New(apperrors.CodeValidation, "amount must be positive")
		}
		expense.Amount = *input.Amount
	}
	if input.Currency != nil {
		currency, err := enums.ParseCurrency(*input.Currency)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid currency")
		}
		expense.Currency = currency
	}
	if input.DayOfMonth != nil {
		if *input.DayOfMonth < 1 || *input.DayOfMonth > 31 {
			return nil, apperrors.New(apperrors.CodeValidation, "day of month must be between 1 and 31")
		}
		expense.DayOfMonth = *input.DayOfMonth
	}
	if input.Category != nil {
		expense.Category = strings.TrimSpace(*input.Category)
	}
	if input.Active != nil {
		expense.Active = *input.Active
	}
	if input.Variable != nil {
		expense.Variable = *input.Variable
	}
	if input.TotalInstallments != nil {
		expense.TotalInstallments = input.TotalInstallments
	}
	if input.CurrentInstallment != nil {
		expense.CurrentInstallment = input.CurrentInstallment
	}
	if input.CardLast4 != nil {
		expense.CardLast4 = input.CardLast4
	}

	if err := s.repo.Update(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getExisting(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.RecurringExpense, error) {
	return s.getExisting(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.RecurringExpense, error) {
	return s.repo.ListAll(ctx)
}

// DueThisMonth projects every active expense onto the reference month. A day
// past the month's end lands on the last day. Installment plans that already
// ran their course are left out.
func (s *service) DueThisMonth(ctx context.Context, ref time.Time) ([]DueItem, error) {
	expenses, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	lastDay := daysInMonth(ref)
	items := make([]DueItem, 0, len(expenses))
	for _, expense := range expenses {
		if installmentsExhausted(&expense) {
			continue
		}
		day := expense.DayOfMonth
		if day > lastDay {
			day = lastDay
		}
		item := DueItem{
			Expense: expense,
			DueDate: time.Date(ref.Year(), ref.Month(), day, 0, 0, 0, 0, time.UTC),
		}
		if expense.Type == enums.RecurringExpenseTypeInstallment &&
			expense.TotalInstallments != nil && expense.CurrentInstallment != nil {
			remaining := *expense.TotalInstallments - *expense.CurrentInstallment
			item.RemainingInstallments = &remaining
		}
		items = append(items, item)
	}
	return items, nil
}

// AdvanceInstallment marks one more installment as paid, deactivating the
// plan when it completes.
func (s *service) AdvanceInstallment(ctx context.Context, id uuid.UUID) (*models.RecurringExpense, error) {
	expense, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense.Type != enums.RecurringExpenseTypeInstallment {
		return nil, apperrors.New(apperrors.CodeStateConflict, "expense is not an installment plan")
	}
	if expense.TotalInstallments == nil {
		return nil, apperrors.New(apperrors.CodeStateConflict, "installment plan has no total count")
	}

	current := 0
	if expense.CurrentInstallment != nil {
		current = *expense.CurrentInstallment
	}
	if current >= *expense.TotalInstallments {
		return nil, apperrors.New(apperrors.CodeStateConflict, "installment plan already completed")
	}

	current++
	expense.CurrentInstallment = &current
	if current >= *expense.TotalInstallments {
		expense.Active = false
	}

	if err := s.repo.Update(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *service) getExisting(ctx context.Context, id uuid.UUID) (*models.RecurringExpense, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "expense id is required")
	}
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "recurring expense not found")
	}
	return expense, nil
}

func installmentsExhausted(expense *models.RecurringExpense) bool {
	if expense.Type != enums.RecurringExpenseTypeInstallment {
		return false
	}
	if expense.TotalInstallments == nil || expense.CurrentInstallment == nil {
		return false
	}
	return *expense.CurrentInstallment >= *expense.TotalInstallments
}

func daysInMonth(ref time.Time) int {
	firstOfNext := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}
