package extract

import "errors"

var (
	// ErrToolNotFound is returned when an external OCR binary is not on PATH.
	ErrToolNotFound = errors.New("ocr tool not found: install poppler-utils (pdftoppm) and tesseract-ocr")

	// ErrInvalidDPI is returned when the rasterization resolution is not positive.
	ErrInvalidDPI = errors.New("dpi must be greater than 0")

	// ErrLanguageRequired is returned when no OCR language is configured.
	ErrLanguageRequired = errors.New("ocr language required")

	// ErrNoDocumentBody is returned when a DOCX archive has no word/document.xml.
	ErrNoDocumentBody = errors.New("docx has no word/document.xml")
)
