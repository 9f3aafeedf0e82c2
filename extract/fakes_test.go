package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSource serves fixed page texts and annotation counts.
type fakeSource struct {
	texts  []string
	annots []int
	errs   map[int]error
}

func (f *fakeSource) NumPages() int { return len(f.texts) }

func (f *fakeSource) PageText(n int) (string, error) {
	if err := f.errs[n]; err != nil {
		return "", err
	}
	return f.texts[n-1], nil
}

func (f *fakeSource) Annotations(n int) int {
	if n-1 < len(f.annots) {
		return f.annots[n-1]
	}
	return 0
}

// openerFor maps document bytes to sources, so cleaned bytes can have their
// own pages.
func openerFor(sources map[string]*fakeSource) PageOpener {
	return func(data []byte) (PageSource, error) {
		src, ok := sources[string(data)]
		if !ok {
			return nil, fmt.Errorf("unknown pdf %q", data)
		}
		return src, nil
	}
}

type fakeStripper struct {
	out   []byte
	err   error
	calls int
}

func (f *fakeStripper) StripAnnotations(_ []byte) ([]byte, error) {
	f.calls++
	return f.out, f.err
}

// fakeRecognizer returns per-page text and records which pages it saw.
type fakeRecognizer struct {
	mu    sync.Mutex
	text  map[int]string
	errs  map[int]error
	pages []int
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ string, page int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, page)
	if err := f.errs[page]; err != nil {
		return "", err
	}
	return f.text[page], nil
}

// call is one recorded CommandRunner invocation.
type call struct {
	stdin []byte
	name  string
	args  []string
}

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	outputs map[string][]byte
	errs    map[string]error
	calls   []call
}

func (m *mockRunner) Run(_ context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, call{stdin: stdin, name: name, args: args})
	if err := m.errs[name]; err != nil {
		return nil, err
	}
	return m.outputs[name], nil
}

var errBoom = errors.New("boom")

// buildDOCX zips the given parts into a minimal DOCX archive.
func buildDOCX(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	// fixed order keeps archives comparable
	for _, name := range []string{"[Content_Types].xml", "word/document.xml", "word/header1.xml", "word/header2.xml", "word/footer1.xml"} {
		content, ok := parts[name]
		if !ok {
			continue
		}
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func docXML(paragraphs ...string) string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		fmt.Fprintf(&b, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func headerXML(paragraphs ...string) string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	for _, p := range paragraphs {
		fmt.Fprintf(&b, `<w:p w:rsidR="00AB12CD"><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, p)
	}
	b.WriteString(`</w:hdr>`)
	return b.String()
}
