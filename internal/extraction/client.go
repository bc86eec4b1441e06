package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cuentasclaras/payables-backend/pkg/config"
)

const (
	messagesEndpoint = "https://api.anthropic.com/v1/messages"
	apiVersion       = "2023-06-01"
)

const extractionPrompt = `Analiza esta factura de un proveedor uruguayo y extrae los datos en JSON.

Responde SOLO con un objeto JSON valido, sin texto adicional, con esta estructura:
{
  "supplier_name": "razon social del proveedor",
  "supplier_tax_id": "RUT del proveedor",
  "invoice_number": "numero de factura",
  "invoice_series": "serie (ej: A)",
  "issue_date": "fecha de emision en formato YYYY-MM-DD",
  "due_date": "fecha de vencimiento en formato YYYY-MM-DD o null",
  "currency": "UYU o USD",
  "subtotal": 0.0,
  "tax_amount": 0.0,
  "total": 0.0,
  "payment_terms": "contado o credito",
  "notes": "observaciones relevantes",
  "items": [{"description": "", "quantity": 0, "unit": "", "unit_price": 0.0, "line_total": 0.0}],
  "confidence": {"supplier_name": 0.0, "invoice_number": 0.0, "issue_date": 0.0, "due_date": 0.0, "total": 0.0, "currency": 0.0, "supplier_tax_id": 0.0}
}

Reglas:
- Los montos usan coma decimal en Uruguay; conviertelos a numeros con punto decimal.
- "confidence" va de 0 a 1 por campo segun que tan legible este el dato.
- Si un campo no aparece en el documento, usa null y confianza 0.
- El total debe incluir IVA.`

// Client calls the vision model to read invoice documents.
type Client interface {
	Extract(ctx context.Context, imageData []byte, mimeType, supplierHint string) (*Payload, string, error)
}

type client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	maxTokens  int
}

// NewClient builds the extraction model client from configuration.
func NewClient(cfg config.AnthropicConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("anthropic model is required")
	}
	return &client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
	}, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *blockSource `json:"source,omitempty"`
}

type blockSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// buildContent assembles the user message blocks. PDFs go as a document
// block, everything else as an image block. A supplier hint from the upload
// is appended to the prompt so the model can disambiguate a blurry header.
func buildContent(imageData []byte, mimeType, supplierHint string) []contentBlock {
	blockType := "image"
	if mimeType == "application/pdf" {
		blockType = "document"
	}
	prompt := extractionPrompt
	if supplierHint != "" {
		prompt += fmt.Sprintf("\n\nPista: el proveedor probablemente es %q.", supplierHint)
	}
	return []contentBlock{
		{
			Type: blockType,
			Source: &blockSource{
				Type:      "base64",
				MediaType: mimeType,
				Data:      base64.StdEncoding.EncodeToString(imageData),
			},
		},
		{Type: "text", Text: prompt},
	}
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Extract sends the document to the model and parses the JSON reply.
// It returns the payload plus the raw model text for auditing.
func (c *client) Extract(ctx context.Context, imageData []byte, mimeType, supplierHint string) (*Payload, string, error) {
	blocks := buildContent(imageData, mimeType, supplierHint)

	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []message{{Role: "user", Content: blocks}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("marshaling extraction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, messagesEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("calling extraction model: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, "", fmt.Errorf("reading extraction response: %w", err)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, "", fmt.Errorf("decoding extraction response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, "", fmt.Errorf("extraction model error: %s: %s", parsed.Error.Type, parsed.Error.Message)
		}
		return nil, "", fmt.Errorf("extraction model returned %s", resp.Status)
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, "", fmt.Errorf("extraction model returned no text content")
	}

	result, err := ParseModelJSON(text)
	if err != nil {
		return nil, text, err
	}
	return result, text, nil
}

// ParseModelJSON strips markdown fences the model sometimes wraps the JSON in
// and unmarshals the result.
func ParseModelJSON(text string) (*Payload, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	var payload Payload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parsing model JSON: %w", err)
	}
	return &payload, nil
}
