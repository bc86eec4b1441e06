package extraction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cuentasclaras/payables-backend/internal/invoices"
	"github.com/cuentasclaras/payables-backend/internal/suppliers"
	"github.com/cuentasclaras/payables-backend/pkg/db/models"
	"github.com/cuentasclaras/payables-backend/pkg/enums"
	"github.com/cuentasclaras/payables-backend/pkg/pagination"
)

type fakeInvoiceRepo struct {
	invoice *models.Invoice
	updated *models.Invoice
	events  []models.InvoiceEvent
	items   []models.InvoiceItem
}

func (f *fakeInvoiceRepo) WithTx(tx *gorm.DB) invoices.Repository { return f }

func (f *fakeInvoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error { return nil }

func (f *fakeInvoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	copied := *invoice
	f.updated = &copied
	return nil
}

func (f *fakeInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	if f.invoice == nil || f.invoice.ID != id {
		return nil, nil
	}
	return f.invoice, nil
}

func (f *fakeInvoiceRepo) GetByFileHash(ctx context.Context, fileHash string) (*models.Invoice, error) {
	return nil, nil
}

func (f *fakeInvoiceRepo) List(ctx context.Context, filter invoices.ListFilter, limit int, cursor *pagination.Cursor) ([]models.Invoice, error) {
	return nil, nil
}

func (f *fakeInvoiceRepo) ListByStatuses(ctx context.Context, statuses []enums.InvoiceStatus) ([]models.Invoice, error) {
	return nil, nil
}

func (f *fakeInvoiceRepo) AddEvent(ctx context.Context, event *models.InvoiceEvent) error {
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeInvoiceRepo) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []models.InvoiceItem) error {
	f.items = items
	return nil
}

type fakeSupplierService struct {
	result *suppliers.ResolveResult
	input  suppliers.ResolveInput
}

func (f *fakeSupplierService) Create(ctx context.Context, input suppliers.CreateSupplierInput) (*models.Supplier, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSupplierService) Update(ctx context.Context, id uuid.UUID, input suppliers.UpdateSupplierInput) (*models.Supplier, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	return errors.New("not implemented")
}

func (f *fakeSupplierService) Get(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSupplierService) List(ctx context.Context) ([]models.Supplier, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSupplierService) Resolve(ctx context.Context, tx *gorm.DB, input suppliers.ResolveInput) (*suppliers.ResolveResult, error) {
	f.input = input
	if f.result != nil {
		return f.result, nil
	}
	return &suppliers.ResolveResult{Outcome: suppliers.OutcomeUnresolved}, nil
}

type fakeBlobReader struct {
	data []byte
	err  error
	key  string
}

func (f *fakeBlobReader) ReadObject(ctx context.Context, bucket, object string) ([]byte, error) {
	f.key = object
	return f.data, f.err
}

type fakeModel struct {
	payload  *Payload
	rawText  string
	err      error
	calls    int
	lastHint string
}

func (f *fakeModel) Extract(ctx context.Context, imageData []byte, mimeType, supplierHint string) (*Payload, string, error) {
	f.calls++
	f.lastHint = supplierHint
	return f.payload, f.rawText, f.err
}

func extractingInvoice() *models.Invoice {
	return &models.Invoice{
		ID:       uuid.New(),
		Status:   enums.InvoiceStatusExtracting,
		FilePath: "INBOX/2026-02/abcd1234_factura.jpg",
		MimeType: "image/jpeg",
		Currency: enums.CurrencyUYU,
	}
}

func newTestPipeline(t *testing.T, repo *fakeInvoiceRepo, supplierSvc suppliers.Service, store BlobReader, model Client) *Pipeline {
	t.Helper()
	p, err := NewPipeline(repo, supplierSvc, store, model, "claude-sonnet-4-20250514", nil, nil, nil)
	if err != nil {
		t.Fatalf("NewPipeline error: %v", err)
	}
	p.now = func() time.Time { return testNow }
	return p
}

func TestPipelineProcessHappyPath(t *testing.T) {
	invoice := extractingInvoice()
	repo := &fakeInvoiceRepo{invoice: invoice}
	supplierID := uuid.New()
	supplierSvc := &fakeSupplierService{result: &suppliers.ResolveResult{
		Outcome:  suppliers.OutcomeMatched,
		Supplier: &models.Supplier{ID: supplierID, Name: "Molinos del Este S.R.L."},
	}}
	store := &fakeBlobReader{data: []byte("jpeg-bytes")}
	model := &fakeModel{
		payload: &Payload{
			SupplierName:  "Molinos del Este S.R.L.",
			SupplierTaxID: "21.123.456.0017",
			InvoiceNumber: "A-0001234",
			IssueDate:     "2026-02-10",
			DueDate:       "2026-03-10",
			Currency:      "UYU",
			Total:         float(15230.50),
			Items: []PayloadItem{
				{Description: "Harina 000", Quantity: float(25), Unit: "kg", UnitPrice: float(42.5), LineTotal: float(1062.5)},
			},
			Confidence: map[string]float64{
				"supplier_name": 0.98, "invoice_number": 0.95, "issue_date": 0.92,
				"total": 0.99, "currency": 0.9,
			},
		},
		rawText: `{"supplier_name": "Molinos del Este S.R.L."}`,
	}

	p := newTestPipeline(t, repo, supplierSvc, store, model)
	if err := p.Process(context.Background(), invoice.ID); err != nil {
		t.Fatalf("Process error: %v", err)
	}

	if store.key != invoice.FilePath {
		t.Fatalf("read wrong object %q", store.key)
	}
	if repo.updated == nil {
		t.Fatal("invoice not persisted")
	}
	if repo.updated.Status != enums.InvoiceStatusExtracted {
		t.Fatalf("expected EXTRACTED, got %s", repo.updated.Status)
	}
	if repo.updated.SupplierID == nil || *repo.updated.SupplierID != supplierID {
		t.Fatal("resolved supplier not linked")
	}
	if repo.updated.Total.Decimal.String() != "15230.5" {
		t.Fatalf("unexpected total %s", repo.updated.Total.Decimal)
	}
	if repo.updated.ExtractedAt == nil {
		t.Fatal("extracted_at not set")
	}
	if len(repo.items) != 1 || repo.items[0].Description != "Harina 000" {
		t.Fatalf("items not replaced: %+v", repo.items)
	}
	if len(repo.events) != 1 || repo.events[0].Type != enums.InvoiceEventTypeExtracted {
		t.Fatalf("expected one extracted event, got %+v", repo.events)
	}
	if supplierSvc.input.TaxID != "21.123.456.0017" {
		t.Fatalf("supplier resolve input %+v", supplierSvc.input)
	}
}

func TestPipelineProcessModelFailureRoutesToReview(t *testing.T) {
	invoice := extractingInvoice()
	repo := &fakeInvoiceRepo{invoice: invoice}
	model := &fakeModel{err: errors.New("model timeout"), rawText: "partial output"}

	p := newTestPipeline(t, repo, &fakeSupplierService{}, &fakeBlobReader{data: []byte("x")}, model)
	if err := p.Process(context.Background(), invoice.ID); err != nil {
		t.Fatalf("Process error: %v", err)
	}

	if repo.updated == nil || repo.updated.Status != enums.InvoiceStatusReviewRequired {
		t.Fatalf("expected REVIEW_REQUIRED, got %+v", repo.updated)
	}
	if len(repo.updated.ExtractionErrors) != 1 || repo.updated.ExtractionErrors[0] != "model timeout" {
		t.Fatalf("failure cause not recorded: %v", repo.updated.ExtractionErrors)
	}
	if repo.updated.RawExtractedText == nil || *repo.updated.RawExtractedText != "partial output" {
		t.Fatal("raw model output should be kept for debugging")
	}
	if len(repo.events) != 1 || repo.events[0].Type != enums.InvoiceEventTypeExtractionFailed {
		t.Fatalf("expected extraction_failed event, got %+v", repo.events)
	}
}

func TestPipelineProcessPassesSupplierHintToModel(t *testing.T) {
	invoice := extractingInvoice()
	hint := "Molinos del Este"
	invoice.SupplierHint = &hint
	repo := &fakeInvoiceRepo{invoice: invoice}
	model := &fakeModel{err: errors.New("model timeout")}

	p := newTestPipeline(t, repo, &fakeSupplierService{}, &fakeBlobReader{data: []byte("x")}, model)
	if err := p.Process(context.Background(), invoice.ID); err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if model.lastHint != hint {
		t.Fatalf("supplier hint not forwarded, got %q", model.lastHint)
	}
}

func TestPipelineProcessSkipsNonExtractingStatus(t *testing.T) {
	invoice := extractingInvoice()
	invoice.Status = enums.InvoiceStatusExtracted
	repo := &fakeInvoiceRepo{invoice: invoice}
	model := &fakeModel{}

	p := newTestPipeline(t, repo, &fakeSupplierService{}, &fakeBlobReader{}, model)
	if err := p.Process(context.Background(), invoice.ID); err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if model.calls != 0 {
		t.Fatal("redelivered job must not call the model again")
	}
	if repo.updated != nil {
		t.Fatal("redelivered job must not touch the invoice")
	}
}

func TestPipelineProcessUnknownInvoice(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	p := newTestPipeline(t, repo, &fakeSupplierService{}, &fakeBlobReader{}, &fakeModel{})
	if err := p.Process(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error for unknown invoice")
	}
}
