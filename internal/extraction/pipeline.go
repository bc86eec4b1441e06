package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cuentasclaras/payables-backend/internal/invoices"
	"github.com/cuentasclaras/payables-backend/internal/suppliers"
	"github.com/cuentasclaras/payables-backend/pkg/db"
	"github.com/cuentasclaras/payables-backend/pkg/db/models"
	"github.com/cuentasclaras/payables-backend/pkg/enums"
	"github.com/cuentasclaras/payables-backend/pkg/logger"
	"github.com/cuentasclaras/payables-backend/pkg/metrics"
)

// BlobReader is the storage surface the pipeline needs.
type BlobReader interface {
	ReadObject(ctx context.Context, bucket, object string) ([]byte, error)
}

// Pipeline runs one extraction end to end: fetch the file, call the model,
// normalize, decide the status, resolve the supplier and persist everything.
type Pipeline struct {
	invoiceRepo invoices.Repository
	supplierSvc suppliers.Service
	store       BlobReader
	model       Client
	modelName   string
	dbClient    *db.Client
	metrics     *metrics.PipelineMetrics
	log         *logger.Logger
	now         func() time.Time
}

// NewPipeline wires the extraction pipeline.
func NewPipeline(
	invoiceRepo invoices.Repository,
	supplierSvc suppliers.Service,
	store BlobReader,
	model Client,
	modelName string,
	dbClient *db.Client,
	pipelineMetrics *metrics.PipelineMetrics,
	log *logger.Logger,
) (*Pipeline, error) {
	if invoiceRepo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if supplierSvc == nil {
		return nil, fmt.Errorf("supplier service required")
	}
	if store == nil {
		return nil, fmt.Errorf("blob reader required")
	}
	if model == nil {
		return nil, fmt.Errorf("extraction client required")
	}
	return &Pipeline{
		invoiceRepo: invoiceRepo,
		supplierSvc: supplierSvc,
		store:       store,
		model:       model,
		modelName:   modelName,
		dbClient:    dbClient,
		metrics:     pipelineMetrics,
		log:         log,
		now:         time.Now,
	}, nil
}

// Process extracts one invoice. It is safe to deliver the same job more than
// once: invoices already past EXTRACTING are skipped.
func (p *Pipeline) Process(ctx context.Context, invoiceID uuid.UUID) error {
	invoice, err := p.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return fmt.Errorf("invoice %s not found", invoiceID)
	}
	if invoice.Status != enums.InvoiceStatusExtracting {
		p.info(ctx, fmt.Sprintf("skipping extraction for invoice in status %s", invoice.Status))
		return nil
	}

	data, err := p.store.ReadObject(ctx, "", invoice.FilePath)
	if err != nil {
		return fmt.Errorf("fetching invoice file: %w", err)
	}

	hint := ""
	if invoice.SupplierHint != nil {
		hint = *invoice.SupplierHint
	}

	started := p.now()
	payload, rawText, err := p.model.Extract(ctx, data, invoice.MimeType, hint)
	p.metrics.ObserveExtraction(p.modelName, p.now().Sub(started))
	if err != nil {
		p.metrics.IncExtractionOutcome("failed")
		return p.markFailed(ctx, invoice, rawText, err)
	}

	normalized := Normalize(payload, p.now())
	status := Decide(normalized)

	if err := p.persist(ctx, invoice, normalized, rawText, status); err != nil {
		return err
	}
	p.metrics.IncExtractionOutcome(string(status))
	return nil
}

// markFailed records the model failure and routes the invoice to review so a
// human can enter the data manually.
func (p *Pipeline) markFailed(ctx context.Context, invoice *models.Invoice, rawText string, cause error) error {
	return p.withTx(ctx, func(tx *gorm.DB) error {
		repo := p.invoiceRepo.WithTx(tx)

		from := invoice.Status
		invoice.Status = enums.InvoiceStatusReviewRequired
		invoice.ExtractionErrors = append(invoice.ExtractionErrors, cause.Error())
		if rawText != "" {
			invoice.RawExtractedText = &rawText
		}
		if err := repo.Update(ctx, invoice); err != nil {
			return err
		}
		return repo.AddEvent(ctx, &models.InvoiceEvent{
			InvoiceID:  invoice.ID,
			Type:       enums.InvoiceEventTypeExtractionFailed,
			FromStatus: &from,
			ToStatus:   enums.InvoiceStatusReviewRequired,
			Actor:      "sistema",
			Note:       fmt.Sprintf("Extraccion fallida: %v", cause),
		})
	})
}

func (p *Pipeline) persist(ctx context.Context, invoice *models.Invoice, n *Normalized, rawText string, status enums.InvoiceStatus) error {
	return p.withTx(ctx, func(tx *gorm.DB) error {
		repo := p.invoiceRepo.WithTx(tx)

		resolution, err := p.supplierSvc.Resolve(ctx, tx, suppliers.ResolveInput{
			Name:  n.SupplierName,
			TaxID: n.SupplierTaxID,
		})
		if err != nil {
			return err
		}

		from := invoice.Status
		now := p.now()

		invoice.Status = status
		if resolution.Supplier != nil {
			invoice.SupplierID = &resolution.Supplier.ID
		}
		invoice.SupplierNameRaw = optional(n.SupplierName)
		invoice.SupplierTaxIDRaw = optional(n.SupplierTaxID)
		invoice.InvoiceNumber = optional(n.InvoiceNumber)
		invoice.InvoiceSeries = optional(n.InvoiceSeries)
		invoice.IssueDate = n.IssueDate
		invoice.DueDate = n.DueDate
		invoice.Currency = n.Currency
		invoice.Subtotal = n.Subtotal
		invoice.TaxAmount = n.TaxAmount
		invoice.Total = n.Total
		invoice.PaymentTerms = optional(n.PaymentTerms)
		invoice.NotesExtracted = optional(n.Notes)
		invoice.RawExtractedText = optional(rawText)
		invoice.ExtractionErrors = n.Warnings
		invoice.ExtractionModel = optional(p.modelName)
		invoice.ExtractedAt = &now

		if scores, err := json.Marshal(n.Confidence); err == nil {
			invoice.ConfidenceScores = scores
		}

		if err := repo.Update(ctx, invoice); err != nil {
			return err
		}

		items := make([]models.InvoiceItem, 0, len(n.Items))
		for i, item := range n.Items {
			items = append(items, models.InvoiceItem{
				Description: item.Description,
				Quantity:    item.Quantity,
				Unit:        optional(item.Unit),
				UnitPrice:   item.UnitPrice,
				LineTotal:   item.LineTotal,
				SortOrder:   i,
			})
		}
		if err := repo.ReplaceItems(ctx, invoice.ID, items); err != nil {
			return err
		}

		note := fmt.Sprintf("Extraccion AI completada. Confianza promedio %.0f%%", averageConfidence(n.Confidence)*100)
		if resolution.Outcome == suppliers.OutcomeCreated {
			note += ". Proveedor creado automaticamente"
		}
		return repo.AddEvent(ctx, &models.InvoiceEvent{
			InvoiceID:  invoice.ID,
			Type:       enums.InvoiceEventTypeExtracted,
			FromStatus: &from,
			ToStatus:   status,
			Actor:      "sistema",
			Note:       note,
		})
	})
}

func (p *Pipeline) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if p.dbClient == nil {
		return fn(nil)
	}
	return p.dbClient.WithTx(ctx, fn)
}

func (p *Pipeline) info(ctx context.Context, msg string) {
	if p.log != nil {
		p.log.Info(ctx, msg)
	}
}

func averageConfidence(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, score := range scores {
		sum += score
	}
	return sum / float64(len(scores))
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
