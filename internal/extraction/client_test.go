package extraction

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestBuildContentPDFUsesDocumentBlock(t *testing.T) {
	blocks := buildContent([]byte("%PDF-1.4 test"), "application/pdf", "")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Type != "document" {
		t.Fatalf("pdf must be sent as a document block, got %q", blocks[0].Type)
	}
	if blocks[0].Source == nil || blocks[0].Source.MediaType != "application/pdf" {
		t.Fatalf("unexpected source %+v", blocks[0].Source)
	}
	if blocks[0].Source.Data != base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 test")) {
		t.Fatal("document bytes not base64 encoded")
	}
}

func TestBuildContentImageUsesImageBlock(t *testing.T) {
	blocks := buildContent([]byte("jpeg-bytes"), "image/jpeg", "")
	if blocks[0].Type != "image" {
		t.Fatalf("image must be sent as an image block, got %q", blocks[0].Type)
	}
	if blocks[1].Type != "text" || blocks[1].Text != extractionPrompt {
		t.Fatal("prompt block missing or altered without a hint")
	}
}

func TestBuildContentAppendsSupplierHint(t *testing.T) {
	blocks := buildContent([]byte("jpeg-bytes"), "image/jpeg", "Molinos del Este")
	prompt := blocks[1].Text
	if !strings.HasPrefix(prompt, extractionPrompt) {
		t.Fatal("hint must extend the base prompt, not replace it")
	}
	if !strings.Contains(prompt, "Molinos del Este") {
		t.Fatalf("supplier hint missing from prompt: %q", prompt)
	}
}
