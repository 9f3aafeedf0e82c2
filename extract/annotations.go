package extract

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// AnnotationStripper removes every page annotation from a PDF.
type AnnotationStripper interface {
	StripAnnotations(data []byte) ([]byte, error)
}

// pdfcpuStripper rewrites the PDF without annotations using pdfcpu.
type pdfcpuStripper struct{}

var _ AnnotationStripper = pdfcpuStripper{}

var disableConfigDir sync.Once

// StripAnnotations returns data unchanged when no page carries an
// annotation; pdfcpu treats removing nothing as an error.
func (pdfcpuStripper) StripAnnotations(data []byte) ([]byte, error) {
	if src, err := OpenPDF(data); err == nil && annotationCount(src) == 0 {
		return data, nil
	}

	// pdfcpu otherwise writes a config.yml under the user config dir.
	disableConfigDir.Do(api.DisableConfigDir)

	var out bytes.Buffer
	conf := model.NewDefaultConfiguration()
	// nil page selection, ids and object numbers select every annotation.
	if err := api.RemoveAnnotations(bytes.NewReader(data), &out, nil, nil, nil, conf); err != nil {
		return nil, fmt.Errorf("removing annotations: %w", err)
	}
	return out.Bytes(), nil
}

// annotationCount sums annotations over every page of src.
func annotationCount(src PageSource) int {
	total := 0
	for n := 1; n <= src.NumPages(); n++ {
		total += src.Annotations(n)
	}
	return total
}
