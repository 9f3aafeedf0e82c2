package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageSource exposes the pages of an opened PDF. Pages are numbered from 1.
type PageSource interface {
	NumPages() int

	// PageText returns the text layer of a page, possibly empty.
	PageText(page int) (string, error)

	// Annotations returns the number of annotations on a page.
	Annotations(page int) int
}

// PageOpener opens PDF bytes as a PageSource.
type PageOpener func(data []byte) (PageSource, error)

// ledongthucSource reads the PDF text layer with github.com/ledongthuc/pdf.
type ledongthucSource struct {
	reader *pdf.Reader
}

var _ PageSource = (*ledongthucSource)(nil)

// OpenPDF is the default PageOpener.
func OpenPDF(data []byte) (src PageSource, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			src, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &ledongthucSource{reader: reader}, nil
}

func (s *ledongthucSource) NumPages() int {
	return s.reader.NumPage()
}

func (s *ledongthucSource) PageText(n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d: %v", n, r)
		}
	}()

	page := s.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (s *ledongthucSource) Annotations(n int) (count int) {
	defer func() {
		if recover() != nil {
			count = 0
		}
	}()

	page := s.reader.Page(n)
	if page.V.IsNull() {
		return 0
	}
	return page.V.Key("Annots").Len()
}

var errNilSource = errors.New("page opener returned no source")
