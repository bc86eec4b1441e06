package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/cuentasclaras/payables-backend/internal/invoices"
	"github.com/cuentasclaras/payables-backend/internal/suppliers"
	"github.com/cuentasclaras/payables-backend/pkg/config"
	"github.com/cuentasclaras/payables-backend/pkg/db"
	"github.com/cuentasclaras/payables-backend/pkg/db/models"
	"github.com/cuentasclaras/payables-backend/pkg/enums"
	apperrors "github.com/cuentasclaras/payables-backend/pkg/errors"
	"github.com/cuentasclaras/payables-backend/pkg/itau"
	"github.com/cuentasclaras/payables-backend/pkg/logger"
	"github.com/cuentasclaras/payables-backend/pkg/metrics"
)

const (
	batchesPrefix   = "BATCHES"
	artifactMime    = "text/plain"
	layoutClassic   = "classic"
	layoutInterBank = "inter_bank"
)

// BlobStore is the storage surface batch artifacts need.
type BlobStore interface {
	WriteObject(ctx context.Context, bucket, object, contentType string, data []byte) error
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

// BuildInput selects the invoices to pay and the date the bank should apply.
type BuildInput struct {
	InvoiceIDs []uuid.UUID `json:"invoice_ids" validate:"required,min=1,dive,required"`
	ValueDate  time.Time   `json:"value_date"`
	Actor      string      `json:"-"`
}

// ExportRow is one encoded payment, shaped for the review sheet the operator
// checks against the bank upload.
type ExportRow struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	SupplierName  string          `json:"supplier_name"`
	BankName      string          `json:"bank_name"`
	AccountNumber string          `json:"account_number"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Currency      enums.Currency  `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	Layout        string          `json:"layout"`
}

// BuildResult is the partial-success outcome of one batch build.
type BuildResult struct {
	Batch    *models.PaymentBatch `json:"batch"`
	Content  string               `json:"-"`
	Rows     []ExportRow          `json:"rows"`
	Skipped  []string             `json:"skipped"`
	Warnings []string             `json:"warnings"`
}

// Service builds bank payment files from payable invoices.
type Service interface {
	Build(ctx context.Context, input BuildInput) (*BuildResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PaymentBatch, error)
	List(ctx context.Context, limit int) ([]models.PaymentBatch, error)
	FileURL(ctx context.Context, id uuid.UUID) (string, error)
}

type service struct {
	repo           Repository
	invoiceRepo    invoices.Repository
	supplierRepo   suppliers.Repository
	store          BlobStore
	dbClient       *db.Client
	metrics        *metrics.PipelineMetrics
	log            *logger.Logger
	bank           config.BankConfig
	downloadExpiry time.Duration
	now            func() time.Time
}

// NewService wires the payment batch service.
func NewService(
	repo Repository,
	invoiceRepo invoices.Repository,
	supplierRepo suppliers.Repository,
	store BlobStore,
	dbClient *db.Client,
	pipelineMetrics *metrics.PipelineMetrics,
	log *logger.Logger,
	bank config.BankConfig,
	downloadExpiry time.Duration,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment batch repository required")
	}
	if invoiceRepo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if supplierRepo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if bank.DebitAccount == "" {
		return nil, fmt.Errorf("debit account required")
	}
	return &service{
		repo:           repo,
		invoiceRepo:    invoiceRepo,
		supplierRepo:   supplierRepo,
		store:          store,
		dbClient:       dbClient,
		metrics:        pipelineMetrics,
		log:            log,
		bank:           bank,
		downloadExpiry: downloadExpiry,
		now:            time.Now,
	}, nil
}

// encodedLine pairs one rendered record with the invoice it came from so the
// post-encode bookkeeping can walk them together.
type encodedLine struct {
	invoice *models.Invoice
	row     ExportRow
	line    string
}

// Build encodes the selected invoices into one Itau upload file. The build is
// partial-success: invoices that cannot be encoded are reported as skipped and
// never abort the rest of the batch.
func (s *service) Build(ctx context.Context, input BuildInput) (*BuildResult, error) {
	if len(input.InvoiceIDs) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "at least one invoice is required")
	}

	valueDate := input.ValueDate
	if valueDate.IsZero() {
		valueDate = s.now()
	}

	var (
		encoded   []encodedLine
		skipErrs  []error
		warnings  []string
		totalUYU  = decimal.Zero
		totalUSD  = decimal.Zero
		classic   int
		interBank int
	)

	for _, id := range input.InvoiceIDs {
		item, err := s.encodeInvoice(ctx, id, valueDate)
		if err != nil {
			skipErrs = append(skipErrs, err)
			continue
		}
		for _, w := range item.rowWarnings {
			warnings = append(warnings, fmt.Sprintf("factura %s: %s", item.line.row.InvoiceNumber, w))
		}
		encoded = append(encoded, item.line)
		switch item.line.row.Layout {
		case layoutClassic:
			classic++
		default:
			interBank++
		}
		if item.line.row.Currency == enums.CurrencyUSD {
			totalUSD = totalUSD.Add(item.line.row.Amount)
		} else {
			totalUYU = totalUYU.Add(item.line.row.Amount)
		}
	}

	skipped := make([]string, 0, len(skipErrs))
	for _, err := range skipErrs {
		skipped = append(skipped, err.Error())
	}
	if combined := multierr.Combine(skipErrs...); combined != nil && s.log != nil {
		s.log.Warn(ctx, fmt.Sprintf("batch build skipped %d invoices: %v", len(skipErrs), combined))
	}

	// Nothing encodable still returns the skip reasons. No artifact is
	// written and no batch row is persisted for an empty file.
	if len(encoded) == 0 {
		return &BuildResult{Skipped: skipped, Warnings: warnings}, nil
	}

	lines := make([]string, 0, len(encoded))
	invoiceIDs := make([]uuid.UUID, 0, len(encoded))
	rows := make([]ExportRow, 0, len(encoded))
	for _, item := range encoded {
		lines = append(lines, item.line)
		invoiceIDs = append(invoiceIDs, item.invoice.ID)
		rows = append(rows, item.row)
	}

	batchID := uuid.New()
	fileName := itau.FileName(valueDate)
	objectKey := fmt.Sprintf("%s/%s/%s_%s", batchesPrefix, valueDate.Format("2006-01"), batchID.String()[:8], fileName)
	content := itau.JoinLines(lines)

	if err := s.store.WriteObject(ctx, "", objectKey, artifactMime, []byte(content)); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "storing batch artifact")
	}

	batch := &models.PaymentBatch{
		ID:             batchID,
		FileName:       fileName,
		FilePath:       objectKey,
		ValueDate:      valueDate,
		ClassicCount:   classic,
		InterBankCount: interBank,
		SkippedCount:   len(skipped),
		SkippedReasons: skipped,
		InvoiceIDs:     invoiceIDs,
		TotalUYU:       totalUYU,
		TotalUSD:       totalUSD,
		CreatedBy:      defaultActor(input.Actor),
	}

	if err := s.persist(ctx, batch, encoded, input.Actor); err != nil {
		return nil, err
	}

	s.metrics.AddBatchLines(layoutClassic, classic)
	s.metrics.AddBatchLines(layoutInterBank, interBank)

	return &BuildResult{
		Batch:    batch,
		Content:  content,
		Rows:     rows,
		Skipped:  skipped,
		Warnings: warnings,
	}, nil
}

type encodeResult struct {
	line        encodedLine
	rowWarnings []string
}

// encodeInvoice renders one invoice as a Classic or Inter-bank line. Every
// failure returns an error naming the invoice or supplier so the skip reason
// reads on its own.
func (s *service) encodeInvoice(ctx context.Context, id uuid.UUID, valueDate time.Time) (*encodeResult, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, fmt.Errorf("factura %s no encontrada", id)
	}
	if !invoice.Status.IsPayable() {
		return nil, fmt.Errorf("factura %s en estado %s no es pagable", displayNumber(invoice), invoice.Status)
	}
	if !invoice.Total.Valid || !invoice.Total.Decimal.IsPositive() {
		return nil, fmt.Errorf("factura %s sin importe valido", displayNumber(invoice))
	}
	if invoice.SupplierID == nil {
		return nil, fmt.Errorf("factura %s sin proveedor asignado", displayNumber(invoice))
	}

	supplier, err := s.supplierRepo.GetByID(ctx, *invoice.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("factura %s: proveedor inexistente", displayNumber(invoice))
	}

	bankName := deref(supplier.BankName)
	accountNumber := deref(supplier.AccountNumber)
	if bankName == "" || accountNumber == "" {
		return nil, fmt.Errorf("proveedor %s sin datos bancarios", supplier.Name)
	}

	number := displayNumber(invoice)
	row := ExportRow{
		InvoiceID:     invoice.ID,
		InvoiceNumber: number,
		SupplierName:  supplier.Name,
		BankName:      bankName,
		AccountNumber: accountNumber,
		DueDate:       invoice.DueDate,
		Currency:      invoice.Currency,
		Amount:        invoice.Total.Decimal,
	}

	var (
		line      string
		itauWarns []itau.Warning
		encodeErr error
	)
	if itau.IsOwnBank(bankName) {
		row.Layout = layoutClassic
		line, itauWarns, encodeErr = itau.EncodeClassicLine(itau.ClassicRecord{
			DebitAccount:  s.bank.DebitAccount,
			CreditAccount: accountNumber,
			Currency:      invoice.Currency,
			Amount:        invoice.Total.Decimal,
			ValueDate:     valueDate,
			Reference:     number,
			OfficeCode:    s.bank.OfficeCode,
		})
	} else {
		code, ok := itau.BankCode(bankName)
		if !ok {
			return nil, fmt.Errorf("proveedor %s: banco %q sin codigo conocido", supplier.Name, bankName)
		}
		row.Layout = layoutInterBank
		line, itauWarns, encodeErr = itau.EncodeInterBankLine(itau.InterBankRecord{
			BankCode:          code,
			AccountType:       accountType(supplier.AccountType),
			CreditAccount:     accountNumber,
			Currency:          invoice.Currency,
			Amount:            invoice.Total.Decimal,
			BeneficiaryName:   supplier.Name,
			BeneficiaryNumber: deref(supplier.TaxIDNormalized),
			Reference:         strings.TrimSpace(number + " " + supplier.Alias),
		})
	}
	if encodeErr != nil {
		return nil, fmt.Errorf("factura %s: %w", number, encodeErr)
	}

	warnings := make([]string, 0, len(itauWarns))
	for _, w := range itauWarns {
		warnings = append(warnings, w.String())
	}
	return &encodeResult{
		line:        encodedLine{invoice: invoice, row: row, line: line},
		rowWarnings: warnings,
	}, nil
}

// persist stores the batch row and moves every encoded APPROVED invoice to
// SCHEDULED inside one transaction, appending a batched event per invoice.
func (s *service) persist(ctx context.Context, batch *models.PaymentBatch, encoded []encodedLine, actor string) error {
	return s.withTx(ctx, func(tx *gorm.DB) error {
		batchRepo := s.repo.WithTx(tx)
		invoiceRepo := s.invoiceRepo.WithTx(tx)

		if err := batchRepo.Create(ctx, batch); err != nil {
			return err
		}

		for _, item := range encoded {
			invoice := item.invoice
			from := invoice.Status
			if invoice.Status == enums.InvoiceStatusApproved {
				invoice.Status = enums.InvoiceStatusScheduled
				if err := invoiceRepo.Update(ctx, invoice); err != nil {
					return err
				}
			}
			event := &models.InvoiceEvent{
				InvoiceID:  invoice.ID,
				Type:       enums.InvoiceEventTypeBatched,
				FromStatus: &from,
				ToStatus:   invoice.Status,
				Actor:      defaultActor(actor),
				Note:       fmt.Sprintf("Incluida en lote %s", batch.FileName),
			}
			if err := invoiceRepo.AddEvent(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PaymentBatch, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "batch id is required")
	}
	batch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "payment batch not found")
	}
	return batch, nil
}

func (s *service) List(ctx context.Context, limit int) ([]models.PaymentBatch, error) {
	return s.repo.List(ctx, limit)
}

// FileURL signs a short-lived download link for the stored artifact.
func (s *service) FileURL(ctx context.Context, id uuid.UUID) (string, error) {
	batch, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := s.store.SignedReadURL("", batch.FilePath, s.downloadExpiry)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeDependency, err, "signing batch download url")
	}
	return url, nil
}

func (s *service) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.dbClient == nil {
		return fn(nil)
	}
	return s.dbClient.WithTx(ctx, fn)
}

func accountType(t *enums.AccountType) enums.AccountType {
	if t == nil {
		return enums.AccountTypeChecking
	}
	return *t
}

func displayNumber(invoice *models.Invoice) string {
	if invoice.InvoiceNumber != nil && *invoice.InvoiceNumber != "" {
		return *invoice.InvoiceNumber
	}
	return invoice.ID.String()[:8]
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func defaultActor(actor string) string {
	if strings.TrimSpace(actor) == "" {
		return "sistema"
	}
	return actor
}
