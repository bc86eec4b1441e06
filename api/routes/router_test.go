package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cuentasclaras/payables-backend/internal/invoices"
	"github.com/cuentasclaras/payables-backend/internal/payments"
	"github.com/cuentasclaras/payables-backend/internal/recurring"
	"github.com/cuentasclaras/payables-backend/internal/suppliers"
	pkgAuth "github.com/cuentasclaras/payables-backend/pkg/auth"
	"github.com/cuentasclaras/payables-backend/pkg/config"
	"github.com/cuentasclaras/payables-backend/pkg/db/models"
	"github.com/cuentasclaras/payables-backend/pkg/enums"
	"github.com/cuentasclaras/payables-backend/pkg/logger"
	"github.com/cuentasclaras/payables-backend/pkg/pagination"
)

type stubInvoiceService struct{}

func (stubInvoiceService) Ingest(ctx context.Context, input invoices.IngestInput) (*models.Invoice, error) {
	panic("unimplemented")
}

func (stubInvoiceService) RequeueExtraction(ctx context.Context, id uuid.UUID, actor string) (*models.Invoice, error) {
	panic("unimplemented")
}

func (stubInvoiceService) Transition(ctx context.Context, id uuid.UUID, to enums.InvoiceStatus, actor, note string) (*models.Invoice, error) {
	panic("unimplemented")
}

func (stubInvoiceService) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	return &models.Invoice{ID: id, Status: enums.InvoiceStatusNew}, nil
}

func (stubInvoiceService) List(ctx context.Context, filter invoices.ListFilter, params pagination.Params) ([]models.Invoice, string, error) {
	return []models.Invoice{}, "", nil
}

func (stubInvoiceService) FileURL(ctx context.Context, id uuid.UUID, expires time.Duration) (string, error) {
	return "https://example.com/signed", nil
}

type stubSupplierService struct{}

func (stubSupplierService) Create(ctx context.Context, input suppliers.CreateSupplierInput) (*models.Supplier, error) {
	panic("unimplemented")
}

func (stubSupplierService) Update(ctx context.Context, id uuid.UUID, input suppliers.UpdateSupplierInput) (*models.Supplier, error) {
	panic("unimplemented")
}

func (stubSupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubSupplierService) Get(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	return &models.Supplier{ID: id}, nil
}

func (stubSupplierService) List(ctx context.Context) ([]models.Supplier, error) {
	return []models.Supplier{}, nil
}

func (stubSupplierService) Resolve(ctx context.Context, tx *gorm.DB, input suppliers.ResolveInput) (*suppliers.ResolveResult, error) {
	panic("unimplemented")
}

type stubPaymentService struct{}

func (stubPaymentService) Build(ctx context.Context, input payments.BuildInput) (*payments.BuildResult, error) {
	panic("unimplemented")
}

func (stubPaymentService) Get(ctx context.Context, id uuid.UUID) (*models.PaymentBatch, error) {
	return &models.PaymentBatch{ID: id}, nil
}

func (stubPaymentService) List(ctx context.Context, limit int) ([]models.PaymentBatch, error) {
	return []models.PaymentBatch{}, nil
}

func (stubPaymentService) FileURL(ctx context.Context, id uuid.UUID) (string, error) {
	return "https://example.com/batch", nil
}

type stubRecurringService struct{}

func (stubRecurringService) Create(ctx context.Context, input recurring.CreateExpenseInput) (*models.RecurringExpense, error) {
	panic("unimplemented")
}

func (stubRecurringService) Update(ctx context.Context, id uuid.UUID, input recurring.UpdateExpenseInput) (*models.RecurringExpense, error) {
	panic("unimplemented")
}

func (stubRecurringService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubRecurringService) Get(ctx context.Context, id uuid.UUID) (*models.RecurringExpense, error) {
	return &models.RecurringExpense{ID: id}, nil
}

func (stubRecurringService) List(ctx context.Context) ([]models.RecurringExpense, error) {
	return []models.RecurringExpense{}, nil
}

func (stubRecurringService) DueThisMonth(ctx context.Context, ref time.Time) ([]recurring.DueItem, error) {
	return []recurring.DueItem{}, nil
}

func (stubRecurringService) AdvanceInstallment(ctx context.Context, id uuid.UUID) (*models.RecurringExpense, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
		Upload: config.UploadConfig{MaxUploadMB: 10},
		GCS:    config.GCSConfig{BucketName: "test-bucket", DownloadURLExpiry: 15 * time.Minute},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		nil, // *db.Client
		nil, // idempotency store
		stubInvoiceService{},
		stubSupplierService{},
		stubPaymentService{},
		stubRecurringService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role pkgAuth.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Name:   "Ana",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Payables-Env"); got != "test" {
		t.Fatalf("expected env header test got %q", got)
	}
}

func TestHealthReadyIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for readiness got %d", resp.Code)
	}
}

func TestAPIGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	for _, path := range []string{
		"/api/v1/invoices",
		"/api/v1/suppliers",
		"/api/v1/payments/batches",
		"/api/v1/recurring",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without token for %s got %d", path, resp.Code)
		}
	}
}

func TestAPIGroupAcceptsOperatorJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	for _, path := range []string{
		"/api/v1/invoices",
		"/api/v1/suppliers",
		"/api/v1/payments/batches",
		"/api/v1/recurring",
		"/api/v1/recurring/due",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, pkgAuth.RoleOperator))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 with token for %s got %d", path, resp.Code)
		}
	}
}

func TestSupplierDeleteRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/suppliers/" + uuid.NewString()

	operator := httptest.NewRequest(http.MethodDelete, target, nil)
	operator.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, pkgAuth.RoleOperator))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, operator)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for operator delete got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodDelete, target, nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, pkgAuth.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin delete got %d", resp.Code)
	}
}

func TestRecurringDeleteRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/recurring/" + uuid.NewString()

	operator := httptest.NewRequest(http.MethodDelete, target, nil)
	operator.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, pkgAuth.RoleOperator))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, operator)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for operator delete got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodDelete, target, nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, pkgAuth.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin delete got %d", resp.Code)
	}
}

func TestBatchDetailRoute(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/batches/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, pkgAuth.RoleOperator))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for batch detail got %d", resp.Code)
	}
}