package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cuentasclaras/payables-backend/api/responses"
	"github.com/cuentasclaras/payables-backend/api/validators"
	"github.com/cuentasclaras/payables-backend/internal/payments"
	pkgerrors "github.com/cuentasclaras/payables-backend/pkg/errors"
	"github.com/cuentasclaras/payables-backend/pkg/logger"
)

type batchBuildRequest struct {
	InvoiceIDs []uuid.UUID `json:"invoice_ids" validate:"required,min=1,dive,required"`
	ValueDate  string      `json:"value_date" validate:"omitempty,datetime=2006-01-02"`
}

// PaymentBatchBuild encodes the selected invoices into one bank upload file.
func PaymentBatchBuild(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		var payload batchBuildRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := payments.BuildInput{
			InvoiceIDs: payload.InvoiceIDs,
			Actor:      actorFromContext(r),
		}
		if payload.ValueDate != "" {
			valueDate, err := time.Parse("2006-01-02", payload.ValueDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid value date"))
				return
			}
			input.ValueDate = valueDate
		}

		result, err := svc.Build(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := http.StatusCreated
		if result.Batch == nil {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

// PaymentBatchList returns recent batches, newest first.
func PaymentBatchList(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 25, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batches, err := svc.List(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": batches})
	}
}

// PaymentBatchGet returns one batch record.
func PaymentBatchGet(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "batchID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}

// PaymentBatchFileURL signs a download link for the batch artifact.
func PaymentBatchFileURL(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "batchID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := svc.FileURL(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"url": url})
	}
}
