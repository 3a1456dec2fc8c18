package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/lumenboard/lumenboard/internal/domain"
)

// docxDocumentXMLPath is the path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// wtTag matches <w:t>text</w:t> including variants carrying attributes
// such as xml:space="preserve".
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// paragraphSplit separates the document XML on paragraph close tags so text
// runs stay grouped by their original paragraph.
var paragraphSplit = regexp.MustCompile(`</w:p>`)

// extractDOCXParagraphs extracts paragraph text from OOXML word-processor
// bytes. Text is read from <w:t> runs so content survives regardless of
// paragraph/run attributes. Legacy binary .doc payloads are not zip
// containers and fail with an unsupported-format error.
func extractDOCXParagraphs(content []byte) ([]string, error) {
	if len(content) == 0 {
		return nil, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(
			domain.ErrCodeUnsupportedFormat,
			"document is not an OOXML container",
			err,
		)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxDocumentXMLPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("extract DOCX: open %s: %w", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("extract DOCX: read %s: %w", f.Name, err)
		}
		_ = rc.Close()
		docXML = buf.Bytes()
		break
	}
	if docXML == nil {
		return nil, fmt.Errorf("extract DOCX: %s not found", docxDocumentXMLPath)
	}

	rawParagraphs := paragraphSplit.Split(string(docXML), -1)
	paragraphs := make([]string, 0, len(rawParagraphs))
	for _, p := range rawParagraphs {
		runs := wtTag.FindAllStringSubmatch(p, -1)
		if len(runs) == 0 {
			continue
		}
		var b strings.Builder
		for i, r := range runs {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.TrimSpace(r[1]))
		}
		text := strings.TrimSpace(b.String())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	return paragraphs, nil
}
