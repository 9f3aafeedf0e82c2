package core

import (
	"encoding/binary"
	"path/filepath"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Format identifies how a document carries its text.
type Format string

const (
	// FormatUnknown is the zero value and is never accepted by an extractor.
	FormatUnknown Format = ""
	// FormatPDF is a paginated container whose pages may or may not carry
	// a text layer (scanned papers usually don't).
	FormatPDF Format = "pdf"
	// FormatDOCX is a structured word-processing document made of paragraphs.
	FormatDOCX Format = "docx"
)

// SupportedFormats lists every format the extractors understand.
var SupportedFormats = []Format{FormatPDF, FormatDOCX}

// FormatFromPath derives a Format from a file extension (case-insensitive).
// Returns FormatUnknown for anything unsupported.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range SupportedFormats {
		if string(f) == ext {
			return f
		}
	}
	return FormatUnknown
}

// Document is an opaque byte source with a declared format.
// Data may be supplied in memory; otherwise the extractor reads Path.
type Document struct {
	Path   string
	Format Format
	Data   []byte
}

// NewDocument creates a Document for a file on disk, deriving its format
// from the extension.
func NewDocument(path string) Document {
	return Document{
		Path:   path,
		Format: FormatFromPath(path),
	}
}

// Name returns the base name of the document path, for logging and reports.
func (d Document) Name() string {
	if d.Path == "" {
		return "<memory>"
	}
	return filepath.Base(d.Path)
}

// QuestionGroup is a cluster of paraphrased questions.
// The field names are the persisted snapshot contract and must not change.
type QuestionGroup struct {
	// Question is the representative: always the first discovered variant.
	Question string `json:"question"`
	// Variants are the cluster members in discovery order, Variants[0] == Question.
	Variants []string `json:"similar_variants"`
	// Frequency is the summed occurrence count of all variants.
	Frequency int `json:"frequency"`
}

// ResultSet is the ordered output of one analysis run.
type ResultSet []QuestionGroup

// TotalFrequency sums the frequency of every group.
func (rs ResultSet) TotalFrequency() int {
	total := 0
	for _, g := range rs {
		total += g.Frequency
	}
	return total
}

// DocumentResult is the extraction outcome for a single document.
// Exactly one of Text (possibly empty) or Err is meaningful.
type DocumentResult struct {
	Document   Document
	Text       string
	Candidates int
	Err        error
}

// OK reports whether the document was extracted without error.
func (r DocumentResult) OK() bool {
	return r.Err == nil
}

// BatchReport collects per-document results for one analysis run.
type BatchReport struct {
	Documents  []DocumentResult
	Candidates int // qualifying sentences, counting repeats
	Distinct   int // distinct normalized candidates
}

// Failed returns the results whose extraction failed, in input order.
func (b *BatchReport) Failed() []DocumentResult {
	var failed []DocumentResult
	for _, d := range b.Documents {
		if !d.OK() {
			failed = append(failed, d)
		}
	}
	return failed
}
