package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cuentasclaras/payables-backend/pkg/db/models"
	"github.com/cuentasclaras/payables-backend/pkg/enums"
	apperrors "github.com/cuentasclaras/payables-backend/pkg/errors"
)

// Service defines supplier registry operations.
type Service interface {
	Create(ctx context.Context, input CreateSupplierInput) (*models.Supplier, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateSupplierInput) (*models.Supplier, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	List(ctx context.Context) ([]models.Supplier, error)
	Resolve(ctx context.Context, tx *gorm.DB, input ResolveInput) (*ResolveResult, error)
}

type service struct {
	repo Repository
}

// NewService wires a supplier service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	return &service{repo: repo}, nil
}

// CreateSupplierInput carries the fields accepted when registering a supplier.
type CreateSupplierInput struct {
	Name          string             `json:"name" validate:"required,max=200"`
	Alias         string             `json:"alias" validate:"max=100"`
	TaxID         *string            `json:"tax_id" validate:"omitempty,max=30"`
	Category      string             `json:"category" validate:"max=60"`
	BankName      *string            `json:"bank_name" validate:"omitempty,max=60"`
	AccountType   *string            `json:"account_type" validate:"omitempty,oneof=CC CA"`
	AccountNumber *string            `json:"account_number" validate:"omitempty,max=21"`
	Currency      enums.Currency     `json:"currency" validate:"omitempty,oneof=UYU USD"`
	Phone         *string            `json:"phone" validate:"omitempty,max=30"`
	Email         *string            `json:"email" validate:"omitempty,email"`
	ContactName   *string            `json:"contact_name" validate:"omitempty,max=100"`
	PaymentTerms  string             `json:"payment_terms" validate:"max=60"`
	Notes         *string            `json:"notes" validate:"omitempty,max=500"`
}

// UpdateSupplierInput carries partial updates; nil pointers leave fields untouched.
type UpdateSupplierInput struct {
	Name          *string `json:"name" validate:"omitempty,max=200"`
	Alias         *string `json:"alias" validate:"omitempty,max=100"`
	TaxID         *string `json:"tax_id" validate:"omitempty,max=30"`
	Category      *string `json:"category" validate:"omitempty,max=60"`
	BankName      *string `json:"bank_name" validate:"omitempty,max=60"`
	AccountType   *string `json:"account_type" validate:"omitempty,oneof=CC CA"`
	AccountNumber *string `json:"account_number" validate:"omitempty,max=21"`
	Currency      *string `json:"currency" validate:"omitempty,oneof=UYU USD"`
	Phone         *string `json:"phone" validate:"omitempty,max=30"`
	Email         *string `json:"email" validate:"omitempty,email"`
	ContactName   *string `json:"contact_name" validate:"omitempty,max=100"`
	PaymentTerms  *string `json:"payment_terms" validate:"omitempty,max=60"`
	Notes         *string `json:"notes" validate:"omitempty,max=500"`
}

// ResolveInput is the extracted supplier reference from one invoice.
type ResolveInput struct {
	Name  string
	TaxID string
}

// ResolveResult reports the supplier a reference was settled to, if any.
type ResolveResult struct {
	Outcome  ResolveOutcome
	Supplier *models.Supplier
}

func (s *service) Create(ctx context.Context, input CreateSupplierInput) (*models.Supplier, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "supplier name is required")
	}

	alias := strings.TrimSpace(input.Alias)
	if alias == "" {
		alias = AliasFromName(name)
	}

	supplier := &models.Supplier{
		Name:          name,
		Alias:         alias,
		TaxID:         input.TaxID,
		Category:      defaultString(input.Category, "General"),
		BankName:      input.BankName,
		AccountNumber: input.AccountNumber,
		Currency:      defaultCurrency(input.Currency),
		Phone:         input.Phone,
		Email:         input.Email,
		ContactName:   input.ContactName,
		PaymentTerms:  defaultString(input.PaymentTerms, "Contado"),
		Notes:         input.Notes,
	}
	if input.AccountType != nil {
		accountType, err := enums.ParseAccountType(*input.AccountType)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid account type")
		}
		supplier.AccountType = &accountType
	}
	if input.TaxID != nil {
		if normalized := NormalizeTaxID(*input.TaxID); normalized != "" {
			supplier.TaxIDNormalized = &normalized
		}
	}

	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateSupplierInput) (*models.Supplier, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "supplier id is required")
	}
	supplier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "supplier not found")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "supplier name cannot be empty")
		}
		supplier.Name = name
	}
	if input.Alias != nil {
		supplier.Alias = strings.TrimSpace(*input.Alias)
	}
	if input.TaxID != nil {
		supplier.TaxID = input.TaxID
		if normalized := NormalizeTaxID(*input.TaxID); normalized != "" {
			supplier.TaxIDNormalized = &normalized
		} else {
			supplier.TaxIDNormalized = nil
		}
	}
	if input.Category != nil {
		supplier.Category = defaultString(*input.Category, "General")
	}
	if input.BankName != nil {
		supplier.BankName = input.BankName
	}
	if input.AccountType != nil {
		accountType, err := enums.ParseAccountType(*input.AccountType)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid account type")
		}
		supplier.AccountType = &accountType
	}
	if input.AccountNumber != nil {
		supplier.AccountNumber = input.AccountNumber
	}
	if input.Currency != nil {
		currency, err := enums.ParseCurrency(*input.Currency)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid currency")
		}
		supplier.Currency = currency
	}
	if input.Phone != nil {
		supplier.Phone = input.Phone
	}
	if input.Email != nil {
		supplier.Email = input.Email
	}
	if input.ContactName != nil {
		supplier.ContactName = input.ContactName
	}
	if input.PaymentTerms != nil {
		supplier.PaymentTerms = defaultString(*input.PaymentTerms, "Contado")
	}
	if input.Notes != nil {
		supplier.Notes = input.Notes
	}

	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "supplier id is required")
	}
	supplier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if supplier == nil {
		return apperrors.New(apperrors.CodeNotFound, "supplier not found")
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "supplier id is required")
	}
	supplier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "supplier not found")
	}
	return supplier, nil
}

func (s *service) List(ctx context.Context) ([]models.Supplier, error) {
	return s.repo.ListAll(ctx)
}

// Resolve settles an extracted supplier reference against the registry. A
// normalized tax id match wins outright; otherwise names are compared by
// containment; otherwise a draft supplier is auto-created from the extracted
// name so the invoice never dangles.
func (s *service) Resolve(ctx context.Context, tx *gorm.DB, input ResolveInput) (*ResolveResult, error) {
	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}

	if normalized := NormalizeTaxID(input.TaxID); normalized != "" {
		supplier, err := repo.GetByNormalizedTaxID(ctx, normalized)
		if err != nil {
			return nil, err
		}
		if supplier != nil {
			return &ResolveResult{Outcome: OutcomeMatched, Supplier: supplier}, nil
		}
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return &ResolveResult{Outcome: OutcomeUnresolved}, nil
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if nameMatches(name, all[i].Name) || nameMatches(name, all[i].Alias) {
			return &ResolveResult{Outcome: OutcomeMatched, Supplier: &all[i]}, nil
		}
	}

	draft := &models.Supplier{
		Name:         name,
		Alias:        AliasFromName(name),
		Category:     "General",
		Currency:     enums.CurrencyUYU,
		PaymentTerms: "Contado",
		AutoCreated:  true,
	}
	if input.TaxID != "" {
		taxID := input.TaxID
		draft.TaxID = &taxID
		if normalized := NormalizeTaxID(taxID); normalized != "" {
			draft.TaxIDNormalized = &normalized
		}
	}
	if err := repo.Create(ctx, draft); err != nil {
		return nil, err
	}
	return &ResolveResult{Outcome: OutcomeCreated, Supplier: draft}, nil
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func defaultCurrency(currency enums.Currency) enums.Currency {
	if currency == "" {
		return enums.CurrencyUYU
	}
	return currency
}
