// Package docs turns uploaded study documents into plain text: the document
// is converted to page images by an external conversion service, each page is
// OCRed by an external vision service, and the page texts are concatenated.
package docs

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
)

// PageSeparator joins the non-empty page texts in the final result.
const PageSeparator = "\n\n"

var (
	// ErrUnsupportedType means the upload's MIME type has no conversion
	// target. Detected before any network call.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrNoText means the pipeline ran but every page came back empty, which
	// callers must be able to distinguish from a pipeline failure.
	ErrNoText = errors.New("no text found in document")
	// ErrConversionFailed wraps any conversion-service failure.
	ErrConversionFailed = errors.New("document conversion failed")
)

// conversionTargets maps upload MIME types to the conversion service's source
// format identifier.
var conversionTargets = map[string]string{
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/vnd.ms-powerpoint":                                           "ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
}

// TargetFor returns the conversion source format for a MIME type.
func TargetFor(mimeType string) (string, bool) {
	base := mimeType
	if i := strings.Index(base, ";"); i >= 0 {
		base = base[:i]
	}
	target, ok := conversionTargets[strings.TrimSpace(strings.ToLower(base))]
	return target, ok
}

// Converter turns a document into base64-encoded page images.
type Converter interface {
	Convert(ctx context.Context, filename, sourceFormat string, data []byte) ([]string, error)
}

// OCRClient extracts text from one base64-encoded page image.
type OCRClient interface {
	DetectText(ctx context.Context, imageB64 string) (string, error)
}

// Pipeline wires the two services together.
type Pipeline struct {
	converter Converter
	ocr       OCRClient
}

func NewPipeline(converter Converter, ocr OCRClient) *Pipeline {
	return &Pipeline{converter: converter, ocr: ocr}
}

// Extract runs the full document-to-text pipeline. Pages are OCRed in
// parallel; a failed page degrades to an empty string rather than aborting
// the batch. Returns ErrUnsupportedType, ErrConversionFailed or ErrNoText as
// appropriate.
func (p *Pipeline) Extract(ctx context.Context, filename, mimeType string, data []byte) (string, error) {
	sourceFormat, ok := TargetFor(mimeType)
	if !ok {
		return "", ErrUnsupportedType
	}

	pages, err := p.converter.Convert(ctx, filename, sourceFormat, data)
	if err != nil {
		log.Printf("[DOCS] conversion of %q failed: %v", filename, err)
		return "", ErrConversionFailed
	}

	texts := make([]string, len(pages))
	var wg sync.WaitGroup
	for i, page := range pages {
		wg.Add(1)
		go func(i int, page string) {
			defer wg.Done()
			text, err := p.ocr.DetectText(ctx, page)
			if err != nil {
				log.Printf("[DOCS] OCR of page %d failed: %v", i+1, err)
				return
			}
			texts[i] = strings.TrimSpace(text)
		}(i, page)
	}
	wg.Wait()

	var nonEmpty []string
	for _, t := range texts {
		if t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	if len(nonEmpty) == 0 {
		return "", ErrNoText
	}
	return strings.Join(nonEmpty, PageSeparator), nil
}
