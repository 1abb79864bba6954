package resume

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DocumentKind identifies the uploaded document format.
type DocumentKind string

const (
	KindPDF  DocumentKind = "pdf"
	KindDOCX DocumentKind = "docx"
	KindText DocumentKind = "txt"
)

// KindFromFilename maps a filename to its document kind.
func KindFromFilename(name string) (DocumentKind, bool) {
	switch {
	case strings.HasSuffix(strings.ToLower(name), ".pdf"):
		return KindPDF, true
	case strings.HasSuffix(strings.ToLower(name), ".docx"):
		return KindDOCX, true
	case strings.HasSuffix(strings.ToLower(name), ".txt"):
		return KindText, true
	default:
		return "", false
	}
}

// TextExtractor turns an uploaded document into raw text. PDF and DOCX
// decoding is deployment-specific; implementations for those formats plug in
// here without touching the rest of the pipeline.
type TextExtractor interface {
	ExtractText(data []byte, kind DocumentKind) (string, error)
}

// PlainTextExtractor handles plain-text uploads. Binary document kinds are
// rejected rather than half-decoded.
type PlainTextExtractor struct{}

func (PlainTextExtractor) ExtractText(data []byte, kind DocumentKind) (string, error) {
	if kind != KindText {
		return "", fmt.Errorf("%w: no decoder configured for %s documents", ErrExtractionFailed, kind)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: document is not valid UTF-8 text", ErrExtractionFailed)
	}
	return string(data), nil
}
