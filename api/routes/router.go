package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cuentasclaras/payables-backend/api/controllers"
	"github.com/cuentasclaras/payables-backend/api/middleware"
	"github.com/cuentasclaras/payables-backend/internal/invoices"
	"github.com/cuentasclaras/payables-backend/internal/payments"
	"github.com/cuentasclaras/payables-backend/internal/recurring"
	"github.com/cuentasclaras/payables-backend/internal/suppliers"
	"github.com/cuentasclaras/payables-backend/pkg/config"
	"github.com/cuentasclaras/payables-backend/pkg/db"
	"github.com/cuentasclaras/payables-backend/pkg/logger"
	pkgredis "github.com/cuentasclaras/payables-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	idempotencyStore pkgredis.IdempotencyStore,
	invoiceService invoices.Service,
	supplierService suppliers.Service,
	paymentService payments.Service,
	recurringService recurring.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Post("/invoices", controllers.InvoiceUpload(invoiceService, cfg.Upload.MaxUploadMB, logg))
		r.Get("/invoices", controllers.InvoiceList(invoiceService, logg))
		r.Get("/invoices/{invoiceID}", controllers.InvoiceGet(invoiceService, logg))
		r.Post("/invoices/{invoiceID}/transition", controllers.InvoiceTransition(invoiceService, logg))
		r.Post("/invoices/{invoiceID}/requeue", controllers.InvoiceRequeue(invoiceService, logg))
		r.Get("/invoices/{invoiceID}/file", controllers.InvoiceFileURL(invoiceService, cfg.GCS.DownloadURLExpiry, logg))

		r.Post("/suppliers", controllers.SupplierCreate(supplierService, logg))
		r.Get("/suppliers", controllers.SupplierList(supplierService, logg))
		r.Get("/suppliers/{supplierID}", controllers.SupplierGet(supplierService, logg))
		r.Patch("/suppliers/{supplierID}", controllers.SupplierUpdate(supplierService, logg))
		r.With(middleware.RequireAdmin(logg)).Delete("/suppliers/{supplierID}", controllers.SupplierDelete(supplierService, logg))

		r.Post("/payments/batches", controllers.PaymentBatchBuild(paymentService, logg))
		r.Get("/payments/batches", controllers.PaymentBatchList(paymentService, logg))
		r.Get("/payments/batches/{batchID}", controllers.PaymentBatchGet(paymentService, logg))
		r.Get("/payments/batches/{batchID}/file", controllers.PaymentBatchFileURL(paymentService, logg))

		r.Post("/recurring", controllers.RecurringCreate(recurringService, logg))
		r.Get("/recurring", controllers.RecurringList(recurringService, logg))
		r.Get("/recurring/due", controllers.RecurringDue(recurringService, logg))
		r.Patch("/recurring/{expenseID}", controllers.RecurringUpdate(recurringService, logg))
		r.With(middleware.RequireAdmin(logg)).Delete("/recurring/{expenseID}", controllers.RecurringDelete(recurringService, logg))
		r.Post("/recurring/{expenseID}/advance", controllers.RecurringAdvance(recurringService, logg))
	})

	return r
}
