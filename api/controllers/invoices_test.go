package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cuentasclaras/payables-backend/api/middleware"
	"github.com/cuentasclaras/payables-backend/internal/invoices"
	"github.com/cuentasclaras/payables-backend/pkg/db/models"
	"github.com/cuentasclaras/payables-backend/pkg/enums"
	"github.com/cuentasclaras/payables-backend/pkg/pagination"
)

type stubInvoiceService struct {
	invoice        *models.Invoice
	err            error
	lastIngest     invoices.IngestInput
	lastTransition enums.InvoiceStatus
	lastActor      string
	lastNote       string
}

func (s *stubInvoiceService) Ingest(ctx context.Context, input invoices.IngestInput) (*models.Invoice, error) {
	s.lastIngest = input
	return s.invoice, s.err
}

func (s *stubInvoiceService) RequeueExtraction(ctx context.Context, id uuid.UUID, actor string) (*models.Invoice, error) {
	s.lastActor = actor
	return s.invoice, s.err
}

func (s *stubInvoiceService) Transition(ctx context.Context, id uuid.UUID, to enums.InvoiceStatus, actor, note string) (*models.Invoice, error) {
	s.lastTransition = to
	s.lastActor = actor
	s.lastNote = note
	return s.invoice, s.err
}

func (s *stubInvoiceService) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	return s.invoice, s.err
}

func (s *stubInvoiceService) List(ctx context.Context, filter invoices.ListFilter, params pagination.Params) ([]models.Invoice, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	if s.invoice == nil {
		return []models.Invoice{}, "", nil
	}
	return []models.Invoice{*s.invoice}, "next", nil
}

func (s *stubInvoiceService) FileURL(ctx context.Context, id uuid.UUID, expires time.Duration) (string, error) {
	return "https://example.com/signed", s.err
}

func multipartUpload(t *testing.T, fields map[string]string, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func withRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestInvoiceUploadSuccess(t *testing.T) {
	invoiceID := uuid.New()
	svc := &stubInvoiceService{invoice: &models.Invoice{ID: invoiceID, Status: enums.InvoiceStatusExtracting}}
	handler := InvoiceUpload(svc, 10, nil)

	body, contentType := multipartUpload(t, map[string]string{
		"source":        "whatsapp",
		"supplier_hint": "Carniceria El Trebol",
	}, "factura.pdf", []byte("%PDF-1.4 test"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(middleware.WithUserName(req.Context(), "Ana"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body %s", rec.Code, rec.Body.String())
	}
	if svc.lastIngest.FileName != "factura.pdf" {
		t.Fatalf("expected file name factura.pdf got %q", svc.lastIngest.FileName)
	}
	if svc.lastIngest.MimeType != "application/pdf" {
		t.Fatalf("expected sniffed pdf mime got %q", svc.lastIngest.MimeType)
	}
	if svc.lastIngest.Source != enums.InvoiceSourceWhatsapp {
		t.Fatalf("expected whatsapp source got %q", svc.lastIngest.Source)
	}
	if svc.lastIngest.SupplierHint == nil || *svc.lastIngest.SupplierHint != "Carniceria El Trebol" {
		t.Fatalf("expected supplier hint got %v", svc.lastIngest.SupplierHint)
	}
	if svc.lastIngest.Actor != "Ana" {
		t.Fatalf("expected actor Ana got %q", svc.lastIngest.Actor)
	}

	var envelope struct {
		Data models.Invoice `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != invoiceID {
		t.Fatalf("expected id %s got %s", invoiceID, envelope.Data.ID)
	}
}

func TestInvoiceUploadMissingFile(t *testing.T) {
	handler := InvoiceUpload(&stubInvoiceService{}, 10, nil)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("source", "upload"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file got %d", rec.Code)
	}
}

func TestInvoiceUploadRejectsUnknownSource(t *testing.T) {
	handler := InvoiceUpload(&stubInvoiceService{}, 10, nil)

	body, contentType := multipartUpload(t, map[string]string{"source": "fax"}, "factura.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown source got %d", rec.Code)
	}
}

func TestInvoiceTransitionSuccess(t *testing.T) {
	invoiceID := uuid.New()
	svc := &stubInvoiceService{invoice: &models.Invoice{ID: invoiceID, Status: enums.InvoiceStatusApproved}}
	handler := InvoiceTransition(svc, nil)

	payload := `{"status":"APPROVED","note":"revisada contra remito"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/"+invoiceID.String()+"/transition", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserName(req.Context(), "Ana"))
	req = withRouteParam(req, "invoiceID", invoiceID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", rec.Code, rec.Body.String())
	}
	if svc.lastTransition != enums.InvoiceStatusApproved {
		t.Fatalf("expected APPROVED transition got %q", svc.lastTransition)
	}
	if svc.lastActor != "Ana" {
		t.Fatalf("expected actor Ana got %q", svc.lastActor)
	}
	if svc.lastNote != "revisada contra remito" {
		t.Fatalf("expected note captured got %q", svc.lastNote)
	}
}

func TestInvoiceTransitionRejectsUnknownStatus(t *testing.T) {
	invoiceID := uuid.New()
	handler := InvoiceTransition(&stubInvoiceService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/"+invoiceID.String()+"/transition", strings.NewReader(`{"status":"SHIPPED"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParam(req, "invoiceID", invoiceID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status got %d", rec.Code)
	}
}

func TestInvoiceTransitionRejectsBadID(t *testing.T) {
	handler := InvoiceTransition(&stubInvoiceService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/not-a-uuid/transition", strings.NewReader(`{"status":"APPROVED"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParam(req, "invoiceID", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id got %d", rec.Code)
	}
}

func TestInvoiceListRejectsBadStatusFilter(t *testing.T) {
	handler := InvoiceList(&stubInvoiceService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices?status=SHIPPED", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status filter got %d", rec.Code)
	}
}

func TestInvoiceListFilters(t *testing.T) {
	invoiceID := uuid.New()
	svc := &stubInvoiceService{invoice: &models.Invoice{ID: invoiceID, Status: enums.InvoiceStatusExtracted}}
	handler := InvoiceList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices?status=EXTRACTED&currency=UYU&limit=10", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			Items      []models.Invoice `json:"items"`
			NextCursor string           `json:"next_cursor"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("expected 1 item got %d", len(envelope.Data.Items))
	}
	if envelope.Data.NextCursor != "next" {
		t.Fatalf("expected next cursor got %q", envelope.Data.NextCursor)
	}
}

func TestInvoiceFileURL(t *testing.T) {
	invoiceID := uuid.New()
	handler := InvoiceFileURL(&stubInvoiceService{}, 15*time.Minute, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+invoiceID.String()+"/file", nil)
	req = withRouteParam(req, "invoiceID", invoiceID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "https://example.com/signed") {
		t.Fatalf("expected signed url in body got %s", rec.Body.String())
	}
}
