package controllers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cuentasclaras/payables-backend/api/middleware"
	"github.com/cuentasclaras/payables-backend/api/responses"
	"github.com/cuentasclaras/payables-backend/api/validators"
	"github.com/cuentasclaras/payables-backend/internal/invoices"
	"github.com/cuentasclaras/payables-backend/pkg/enums"
	pkgerrors "github.com/cuentasclaras/payables-backend/pkg/errors"
	"github.com/cuentasclaras/payables-backend/pkg/logger"
	"github.com/cuentasclaras/payables-backend/pkg/pagination"
)

// InvoiceUpload receives one invoice document as multipart form data and
// starts the extraction pipeline.
func InvoiceUpload(svc invoices.Service, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		if err := r.ParseMultipartForm(int64(maxUploadMB) << 20); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field is required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading upload"))
			return
		}

		source := enums.InvoiceSourceUpload
		if raw := strings.TrimSpace(r.FormValue("source")); raw != "" {
			parsed, parseErr := enums.ParseInvoiceSource(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid source"))
				return
			}
			source = parsed
		}

		input := invoices.IngestInput{
			FileName: header.Filename,
			MimeType: contentTypeOf(header.Header.Get("Content-Type"), data),
			Data:     data,
			Source:   source,
			Actor:    actorFromContext(r),
		}
		if hint := validators.SanitizeString(r.FormValue("supplier_hint"), 200); hint != "" {
			input.SupplierHint = &hint
		}

		invoice, err := svc.Ingest(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

// InvoiceList returns a cursor page of invoices, optionally filtered.
func InvoiceList(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := invoiceListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, next, err := svc.List(r.Context(), filter, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"items":       items,
			"next_cursor": next,
		})
	}
}

// InvoiceGet returns one invoice with its items and event history.
func InvoiceGet(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

type invoiceTransitionRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}

// InvoiceTransition moves an invoice through its lifecycle.
func InvoiceTransition(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload invoiceTransitionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseInvoiceStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		invoice, err := svc.Transition(r.Context(), id, status, actorFromContext(r), payload.Note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

// InvoiceRequeue re-enqueues extraction for an invoice stuck in NEW.
func InvoiceRequeue(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.RequeueExtraction(r.Context(), id, actorFromContext(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

// InvoiceFileURL signs a short-lived download link for the stored document.
func InvoiceFileURL(svc invoices.Service, expiry time.Duration, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := svc.FileURL(r.Context(), id, expiry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"url": url})
	}
}

func invoiceListFilter(r *http.Request) (invoices.ListFilter, error) {
	var filter invoices.ListFilter
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseInvoiceStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("supplier_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id filter")
		}
		filter.SupplierID = &id
	}
	if raw := strings.TrimSpace(query.Get("source")); raw != "" {
		source, err := enums.ParseInvoiceSource(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source filter")
		}
		filter.Source = &source
	}
	if raw := strings.TrimSpace(query.Get("currency")); raw != "" {
		currency, err := enums.ParseCurrency(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency filter")
		}
		filter.Currency = &currency
	}
	if raw := strings.TrimSpace(query.Get("due_from")); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid due_from filter")
		}
		filter.DueFrom = &from
	}
	if raw := strings.TrimSpace(query.Get("due_to")); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid due_to filter")
		}
		filter.DueTo = &to
	}
	filter.Search = validators.SanitizeString(query.Get("q"), 120)
	return filter, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id")
	}
	return id, nil
}

// actorFromContext resolves the audit actor: display name when the token
// carries one, user id otherwise.
func actorFromContext(r *http.Request) string {
	if name := middleware.UserNameFromContext(r.Context()); name != "" {
		return name
	}
	return middleware.UserIDFromContext(r.Context())
}

// contentTypeOf trusts the client header when present and sniffs otherwise.
func contentTypeOf(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		if idx := strings.Index(declared, ";"); idx > 0 {
			declared = strings.TrimSpace(declared[:idx])
		}
		return declared
	}
	return http.DetectContentType(data)
}
