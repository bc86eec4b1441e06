package controllers

import (
	"net/http"
	"time"

	"github.com/cuentasclaras/payables-backend/api/responses"
	"github.com/cuentasclaras/payables-backend/api/validators"
	"github.com/cuentasclaras/payables-backend/internal/recurring"
	pkgerrors "github.com/cuentasclaras/payables-backend/pkg/errors"
	"github.com/cuentasclaras/payables-backend/pkg/logger"
)

// RecurringCreate registers a scheduled monthly obligation.
func RecurringCreate(svc recurring.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recurring service unavailable"))
			return
		}

		var payload recurring.CreateExpenseInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

// RecurringUpdate applies a partial update to one expense.
func RecurringUpdate(svc recurring.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "expenseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recurring.UpdateExpenseInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.Update(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expense)
	}
}

// RecurringDelete removes an expense from the register.
func RecurringDelete(svc recurring.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "expenseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// RecurringList returns the whole register ordered by day of month.
func RecurringList(svc recurring.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expenses, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": expenses})
	}
}

// RecurringDue projects active expenses onto the current month.
func RecurringDue(svc recurring.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := time.Now().UTC()
		if raw := r.URL.Query().Get("month"); raw != "" {
			parsed, err := time.Parse("2006-01", raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid month, expected YYYY-MM"))
				return
			}
			ref = parsed
		}

		items, err := svc.DueThisMonth(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// RecurringAdvance marks one more installment as paid.
func RecurringAdvance(svc recurring.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "expenseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.AdvanceInstallment(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expense)
	}
}
