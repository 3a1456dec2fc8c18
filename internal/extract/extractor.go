// Package extract converts uploaded documents into ordered text chunks
// sized for embedding.
package extract

import (
	"path/filepath"
	"strings"

	"github.com/lumenboard/lumenboard/internal/domain"
)

// Format identifies a supported document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatDOC  Format = "doc"
)

// ParseFormat maps a filename (or bare extension) to a Format.
// Returns ErrUnsupportedFormat for anything outside pdf/docx/doc.
func ParseFormat(filename string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		ext = strings.ToLower(filename)
	}
	switch ext {
	case "pdf":
		return FormatPDF, nil
	case "docx":
		return FormatDOCX, nil
	case "doc":
		return FormatDOC, nil
	default:
		return "", domain.NewDomainErrorWithCause(
			domain.ErrCodeUnsupportedFormat,
			"unsupported document format",
			domain.ErrUnsupportedFormat,
		)
	}
}

// Extractor extracts chunked plain text from document bytes. Extraction is a
// pure transformation: no I/O beyond reading the given content.
type Extractor struct {
	chunkCfg ChunkConfig
}

// NewExtractor returns an Extractor with default chunking.
func NewExtractor() *Extractor {
	return NewExtractorWithConfig(DefaultChunkConfig())
}

// NewExtractorWithConfig returns an Extractor with explicit chunking configuration.
func NewExtractorWithConfig(cfg ChunkConfig) *Extractor {
	return &Extractor{chunkCfg: cfg}
}

// ExtractChunks converts document content into ordered text chunks split on
// semantic boundaries (pages for PDF, paragraphs for DOCX) with a maximum
// chunk length. An empty document yields zero chunks and no error.
func (e *Extractor) ExtractChunks(content []byte, format Format) ([]string, error) {
	var blocks []string
	var err error

	switch format {
	case FormatPDF:
		blocks, err = extractPDFPages(content)
	case FormatDOCX, FormatDOC:
		blocks, err = extractDOCXParagraphs(content)
	default:
		return nil, domain.ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	return chunkBlocks(blocks, e.chunkCfg), nil
}
