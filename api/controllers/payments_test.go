package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cuentasclaras/payables-backend/api/middleware"
	"github.com/cuentasclaras/payables-backend/internal/payments"
	"github.com/cuentasclaras/payables-backend/pkg/db/models"
)

type stubPaymentService struct {
	result    *payments.BuildResult
	batch     *models.PaymentBatch
	err       error
	lastBuild payments.BuildInput
}

func (s *stubPaymentService) Build(ctx context.Context, input payments.BuildInput) (*payments.BuildResult, error) {
	s.lastBuild = input
	return s.result, s.err
}

func (s *stubPaymentService) Get(ctx context.Context, id uuid.UUID) (*models.PaymentBatch, error) {
	return s.batch, s.err
}

func (s *stubPaymentService) List(ctx context.Context, limit int) ([]models.PaymentBatch, error) {
	if s.batch == nil {
		return []models.PaymentBatch{}, s.err
	}
	return []models.PaymentBatch{*s.batch}, s.err
}

func (s *stubPaymentService) FileURL(ctx context.Context, id uuid.UUID) (string, error) {
	return "https://example.com/batch", s.err
}

func TestPaymentBatchBuildSuccess(t *testing.T) {
	batchID := uuid.New()
	invoiceID := uuid.New()
	svc := &stubPaymentService{
		result: &payments.BuildResult{
			Batch:   &models.PaymentBatch{ID: batchID, FileName: "pago_proveedores_20260302.txt"},
			Skipped: []string{},
		},
	}
	handler := PaymentBatchBuild(svc, nil)

	payload := `{"invoice_ids":["` + invoiceID.String() + `"],"value_date":"2026-03-02"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/batches", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserName(req.Context(), "Ana"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body %s", rec.Code, rec.Body.String())
	}
	if len(svc.lastBuild.InvoiceIDs) != 1 || svc.lastBuild.InvoiceIDs[0] != invoiceID {
		t.Fatalf("expected invoice selection passed through got %v", svc.lastBuild.InvoiceIDs)
	}
	want := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	if !svc.lastBuild.ValueDate.Equal(want) {
		t.Fatalf("expected value date %s got %s", want, svc.lastBuild.ValueDate)
	}
	if svc.lastBuild.Actor != "Ana" {
		t.Fatalf("expected actor Ana got %q", svc.lastBuild.Actor)
	}

	var envelope struct {
		Data payments.BuildResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Batch == nil || envelope.Data.Batch.ID != batchID {
		t.Fatalf("expected batch %s in response got %+v", batchID, envelope.Data.Batch)
	}
}

func TestPaymentBatchBuildNothingEncodableReturnsOK(t *testing.T) {
	svc := &stubPaymentService{
		result: &payments.BuildResult{
			Skipped: []string{"Carniceria El Trebol: sin datos bancarios"},
		},
	}
	handler := PaymentBatchBuild(svc, nil)

	payload := `{"invoice_ids":["` + uuid.NewString() + `"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/batches", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when no batch was created got %d body %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data payments.BuildResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Batch != nil {
		t.Fatalf("expected no batch in response got %+v", envelope.Data.Batch)
	}
	if len(envelope.Data.Skipped) != 1 {
		t.Fatalf("expected skip reasons in response got %v", envelope.Data.Skipped)
	}
}

func TestPaymentBatchBuildRejectsEmptySelection(t *testing.T) {
	handler := PaymentBatchBuild(&stubPaymentService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/batches", strings.NewReader(`{"invoice_ids":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty selection got %d", rec.Code)
	}
}

func TestPaymentBatchBuildRejectsBadValueDate(t *testing.T) {
	handler := PaymentBatchBuild(&stubPaymentService{}, nil)

	payload := `{"invoice_ids":["` + uuid.NewString() + `"],"value_date":"02/03/2026"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/batches", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad value date got %d", rec.Code)
	}
}

func TestPaymentBatchGetRejectsBadID(t *testing.T) {
	handler := PaymentBatchGet(&stubPaymentService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/batches/not-a-uuid", nil)
	req = withRouteParam(req, "batchID", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id got %d", rec.Code)
	}
}

func TestPaymentBatchFileURL(t *testing.T) {
	batchID := uuid.New()
	handler := PaymentBatchFileURL(&stubPaymentService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/batches/"+batchID.String()+"/file", nil)
	req = withRouteParam(req, "batchID", batchID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "https://example.com/batch") {
		t.Fatalf("expected signed url in body got %s", rec.Body.String())
	}
}
