package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

var headerPart = regexp.MustCompile(`^word/header\d*\.xml$`)

const watermarkWord = "watermark"

// CleanDOCXHeaders empties every header paragraph whose text mentions
// "watermark", case-insensitively. Paragraph properties are kept so the
// header layout does not shift. The original bytes are returned unchanged,
// with changed false, when no paragraph matched.
func CleanDOCXHeaders(data []byte) (cleaned []byte, changed bool, err error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, false, fmt.Errorf("opening docx: %w", err)
	}

	rewritten := make(map[string][]byte)
	for _, file := range reader.File {
		if !headerPart.MatchString(file.Name) {
			continue
		}
		content, err := readZipFile(file)
		if err != nil {
			return nil, false, err
		}
		if out, ok := clearWatermarkParagraphs(content); ok {
			rewritten[file.Name] = out
		}
	}
	if len(rewritten) == 0 {
		return data, false, nil
	}

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, file := range reader.File {
		content, ok := rewritten[file.Name]
		if !ok {
			if err := writer.Copy(file); err != nil {
				return nil, false, fmt.Errorf("copying %s: %w", file.Name, err)
			}
			continue
		}
		w, err := writer.CreateHeader(&zip.FileHeader{
			Name:     file.Name,
			Method:   zip.Deflate,
			Modified: file.Modified,
		})
		if err != nil {
			return nil, false, fmt.Errorf("writing %s: %w", file.Name, err)
		}
		if _, err := w.Write(content); err != nil {
			return nil, false, fmt.Errorf("writing %s: %w", file.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, false, fmt.Errorf("closing docx: %w", err)
	}
	return buf.Bytes(), true, nil
}

// headerParagraph is the byte range of a top-level w:p element and of its w:pPr.
type headerParagraph struct {
	start, openEnd, end int64
	propStart, propEnd  int64
	text                strings.Builder
}

// clearWatermarkParagraphs rewrites matching top-level paragraphs of one
// header part. Nested paragraphs, as in text boxes, belong to the enclosing
// paragraph. A part that does not parse is left as it is.
func clearWatermarkParagraphs(content []byte) ([]byte, bool) {
	matches, err := watermarkParagraphs(content)
	if err != nil || len(matches) == 0 {
		return content, false
	}

	var b bytes.Buffer
	b.Grow(len(content))
	last := int64(0)
	for _, p := range matches {
		b.Write(content[last:p.start])
		b.Write(content[p.start:p.openEnd])
		b.Write(content[p.propStart:p.propEnd])
		b.WriteString("</w:p>")
		last = p.end
	}
	b.Write(content[last:])
	return b.Bytes(), true
}

// watermarkParagraphs walks the part and returns the top-level paragraphs
// whose text mentions the watermark word, in document order.
func watermarkParagraphs(content []byte) ([]*headerParagraph, error) {
	d := xml.NewDecoder(bytes.NewReader(content))

	var (
		matches []*headerParagraph
		cur     *headerParagraph
		depth   int // open w:p elements
		inner   int // open elements below the top-level paragraph
		inText  int // open w:t elements
	)
	for {
		before := d.InputOffset()
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if cur != nil {
				if inner == 0 && isWord(t.Name, "pPr") {
					cur.propStart = before
				}
				inner++
			}
			if isWord(t.Name, "p") {
				depth++
				if depth == 1 {
					cur = &headerParagraph{start: before, openEnd: d.InputOffset()}
					inner = 0
				}
			}
			if isWord(t.Name, "t") {
				inText++
			}
		case xml.CharData:
			if cur != nil && inText > 0 {
				cur.text.Write(t)
			}
		case xml.EndElement:
			if isWord(t.Name, "t") && inText > 0 {
				inText--
			}
			if isWord(t.Name, "p") && depth > 0 {
				depth--
				if depth == 0 && cur != nil {
					cur.end = d.InputOffset()
					if strings.Contains(strings.ToLower(cur.text.String()), watermarkWord) {
						matches = append(matches, cur)
					}
					cur = nil
					continue
				}
			}
			if cur != nil {
				inner--
				if inner == 0 && isWord(t.Name, "pPr") {
					cur.propEnd = d.InputOffset()
				}
			}
		}
	}
	return matches, nil
}

func isWord(name xml.Name, local string) bool {
	return name.Space == "w" && name.Local == local
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file.Name, err)
	}
	return content, nil
}

// cleanedName returns <dir>/<name>_cleaned<ext> for p.
func cleanedName(p string) string {
	ext := filepath.Ext(p)
	return strings.TrimSuffix(p, ext) + "_cleaned" + ext
}
