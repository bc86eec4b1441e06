package invoices

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cuentasclaras/payables-backend/pkg/db"
	"github.com/cuentasclaras/payables-backend/pkg/db/models"
	"github.com/cuentasclaras/payables-backend/pkg/enums"
	apperrors "github.com/cuentasclaras/payables-backend/pkg/errors"
	"github.com/cuentasclaras/payables-backend/pkg/metrics"
	"github.com/cuentasclaras/payables-backend/pkg/pagination"
)

const (
	inboxPrefix = "INBOX"
	dedupTTL    = 30 * 24 * time.Hour
)

// allowedMimeTypes are the document formats the pipeline accepts.
var allowedMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
}

// BlobStore is the object storage surface the invoice service needs.
type BlobStore interface {
	WriteObject(ctx context.Context, bucket, object, contentType string, data []byte) error
	ReadObject(ctx context.Context, bucket, object string) ([]byte, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

// Enqueuer queues an invoice for asynchronous extraction.
type Enqueuer interface {
	Enqueue(ctx context.Context, invoiceID uuid.UUID) error
}

// DedupCache is the fast-path duplicate check. The invoices.file_hash unique
// index remains the correctness guarantee.
type DedupCache interface {
	MarkSeen(ctx context.Context, fileHash string, ttl time.Duration) (bool, error)
}

// Service defines invoice intake and lifecycle operations.
type Service interface {
	Ingest(ctx context.Context, input IngestInput) (*models.Invoice, error)
	RequeueExtraction(ctx context.Context, id uuid.UUID, actor string) (*models.Invoice, error)
	Transition(ctx context.Context, id uuid.UUID, to enums.InvoiceStatus, actor, note string) (*models.Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Invoice, string, error)
	FileURL(ctx context.Context, id uuid.UUID, expires time.Duration) (string, error)
}

type service struct {
	repo           Repository
	store          BlobStore
	queue          Enqueuer
	dedup          DedupCache
	metrics        *metrics.PipelineMetrics
	maxUploadBytes int64
}

// NewService wires the invoice service.
func NewService(repo Repository, store BlobStore, queue Enqueuer, dedup DedupCache, pipelineMetrics *metrics.PipelineMetrics, maxUploadMB int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if queue == nil {
		return nil, fmt.Errorf("extraction queue required")
	}
	if maxUploadMB <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{
		repo:           repo,
		store:          store,
		queue:          queue,
		dedup:          dedup,
		metrics:        pipelineMetrics,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}, nil
}

// IngestInput carries one uploaded document.
type IngestInput struct {
	FileName     string
	MimeType     string
	Data         []byte
	Source       enums.InvoiceSource
	SupplierHint *string
	Actor        string
}

func (s *service) Ingest(ctx context.Context, input IngestInput) (*models.Invoice, error) {
	if len(input.Data) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "file data is required")
	}
	if int64(len(input.Data)) > s.maxUploadBytes {
		return nil, apperrors.New(apperrors.CodeValidation, "file exceeds the upload size limit").
			WithDetails(map[string]any{"max_bytes": s.maxUploadBytes})
	}
	if _, ok := allowedMimeTypes[input.MimeType]; !ok {
		return nil, apperrors.New(apperrors.CodeValidation, "unsupported file type").
			WithDetails(map[string]any{"mime_type": input.MimeType})
	}
	if !input.Source.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid source %q", input.Source))
	}

	sum := sha256.Sum256(input.Data)
	fileHash := hex.EncodeToString(sum[:])

	// The cache can say "seen" after a failed ingest, so it only decides
	// when the row actually exists.
	if s.dedup != nil {
		if seen, err := s.dedup.MarkSeen(ctx, fileHash, dedupTTL); err == nil && seen {
			if existing, lookupErr := s.repo.GetByFileHash(ctx, fileHash); lookupErr == nil && existing != nil {
				s.metrics.IncDuplicateUpload()
				return nil, duplicateError(existing)
			}
		}
	}

	objectKey := blobKey(time.Now().UTC(), fileHash, input.FileName)
	if err := s.store.WriteObject(ctx, "", objectKey, input.MimeType, input.Data); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "storing invoice file")
	}

	actor := defaultActor(input.Actor)
	invoice := &models.Invoice{
		FileHash:     fileHash,
		FilePath:     objectKey,
		FileName:     input.FileName,
		MimeType:     input.MimeType,
		SizeBytes:    int64(len(input.Data)),
		Source:       input.Source,
		SupplierHint: input.SupplierHint,
		Status:       enums.InvoiceStatusNew,
		Events: []models.InvoiceEvent{{
			Type:     enums.InvoiceEventTypeCreated,
			ToStatus: enums.InvoiceStatusNew,
			Actor:    actor,
			Note:     fmt.Sprintf("Factura recibida via %s", input.Source),
		}},
	}

	if err := s.repo.Create(ctx, invoice); err != nil {
		if db.IsUniqueViolation(err, "idx_invoices_file_hash") {
			s.metrics.IncDuplicateUpload()
			if existing, lookupErr := s.repo.GetByFileHash(ctx, fileHash); lookupErr == nil && existing != nil {
				return nil, duplicateError(existing)
			}
			return nil, apperrors.Wrap(apperrors.CodeDuplicate, err, "invoice already ingested")
		}
		return nil, err
	}

	// Extraction is queued best effort. When the broker is down the invoice
	// stays NEW and RequeueExtraction picks it up later.
	if err := s.queue.Enqueue(ctx, invoice.ID); err == nil {
		if updated, transitionErr := s.applyTransition(ctx, invoice, enums.InvoiceStatusExtracting, actor, "Extraccion encolada"); transitionErr == nil {
			return updated, nil
		}
	}
	return invoice, nil
}

func (s *service) RequeueExtraction(ctx context.Context, id uuid.UUID, actor string) (*models.Invoice, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !invoice.Status.CanTransitionTo(enums.InvoiceStatusExtracting) {
		return nil, apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("cannot queue extraction from status %s", invoice.Status))
	}
	if err := s.queue.Enqueue(ctx, invoice.ID); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "queueing extraction")
	}
	return s.applyTransition(ctx, invoice, enums.InvoiceStatusExtracting, defaultActor(actor), "Extraccion reencolada")
}

func (s *service) Transition(ctx context.Context, id uuid.UUID, to enums.InvoiceStatus, actor, note string) (*models.Invoice, error) {
	if !to.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid status %q", to))
	}
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !invoice.Status.CanTransitionTo(to) {
		return nil, apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("transition %s -> %s is not allowed", invoice.Status, to)).
			WithDetails(map[string]any{"from": invoice.Status, "to": to})
	}
	if (to == enums.InvoiceStatusDispute || to == enums.InvoiceStatusRejected) && strings.TrimSpace(note) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("a note is required to move an invoice to %s", to))
	}
	return s.applyTransition(ctx, invoice, to, defaultActor(actor), note)
}

func (s *service) applyTransition(ctx context.Context, invoice *models.Invoice, to enums.InvoiceStatus, actor, note string) (*models.Invoice, error) {
	from := invoice.Status
	invoice.Status = to
	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	event := &models.InvoiceEvent{
		InvoiceID:  invoice.ID,
		Type:       enums.InvoiceEventTypeStatusChange,
		FromStatus: &from,
		ToStatus:   to,
		Actor:      actor,
		Note:       note,
	}
	if err := s.repo.AddEvent(ctx, event); err != nil {
		return nil, err
	}
	invoice.Events = append(invoice.Events, *event)
	return invoice, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "invoice id is required")
	}
	invoice, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "invoice not found")
	}
	return invoice, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Invoice, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	list, err := s.repo.List(ctx, filter, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(list) > limit {
		list = list[:limit]
		last := list[len(list)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, next, nil
}

func (s *service) FileURL(ctx context.Context, id uuid.UUID, expires time.Duration) (string, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := s.store.SignedReadURL("", invoice.FilePath, expires)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeDependency, err, "signing download url")
	}
	return url, nil
}

func duplicateError(existing *models.Invoice) error {
	return apperrors.New(apperrors.CodeDuplicate, "this document was already uploaded").
		WithDetails(map[string]any{"existing_invoice_id": existing.ID})
}

// blobKey builds INBOX/YYYY-MM/<hash8>_<safe-name>.
func blobKey(now time.Time, fileHash, fileName string) string {
	return fmt.Sprintf("%s/%s/%s_%s", inboxPrefix, now.Format("2006-01"), fileHash[:8], safeFileName(fileName))
}

func safeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "documento"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func defaultActor(actor string) string {
	if strings.TrimSpace(actor) == "" {
		return "sistema"
	}
	return strings.TrimSpace(actor)
}
