// Package extract turns uploaded documents into ordered chunk sequences.
// Three strategies cover the supported formats: line-oriented plain text,
// rich structured documents (DOCX/HTML), and fixed-layout PDFs.
package extract

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Prakash793/ReTrans/internal/chunk"
	"github.com/Prakash793/ReTrans/internal/logger"
)

// Format identifies the extraction strategy for an input document.
type Format string

const (
	FormatLineText     Format = "line-text"
	FormatRichDocument Format = "rich-document"
	FormatFixedLayout  Format = "fixed-layout"
)

// mime types accepted alongside extension-based detection.
const (
	mimePDF   = "application/pdf"
	mimeDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeHTML  = "text/html"
	mimePlain = "text/plain"
)

// DetectFormat maps a filename and optional MIME type to an extraction
// format. Unknown inputs return an UNSUPPORTED_FORMAT error.
func DetectFormat(filename, mimeType string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".text", ".md":
		return FormatLineText, nil
	case ".docx", ".html", ".htm":
		return FormatRichDocument, nil
	case ".pdf":
		return FormatFixedLayout, nil
	}

	switch mimeType {
	case mimePlain:
		return FormatLineText, nil
	case mimeDocx, mimeHTML:
		return FormatRichDocument, nil
	case mimePDF:
		return FormatFixedLayout, nil
	}

	return "", chunk.NewErrorWithDetails(chunk.ErrUnsupportedFormat,
		"unsupported document format", filename, nil)
}

// Result is the extraction output handed to the translation stage. The
// original file bytes are retained (base64) so the vision path can process
// documents that yielded no chunks.
type Result struct {
	Chunks     []chunk.Chunk
	FileBase64 string
	MIMEType   string
}

// IsEmpty reports whether extraction produced no chunks. An empty result is
// not an error; it signals the scanned-document vision path.
func (r *Result) IsEmpty() bool {
	return len(r.Chunks) == 0
}

// DocumentConverter converts a word-processor document to semantic HTML.
// The rich-document extractor depends on it; a nil converter means the
// conversion engine is not available.
type DocumentConverter interface {
	Convert(data []byte) ([]byte, error)
}

// Service dispatches documents to the right extraction strategy.
type Service struct {
	converter DocumentConverter
}

// NewService creates an extraction Service. The converter handles DOCX
// inputs; pass nil when no conversion engine is available, in which case
// DOCX extraction fails with CONVERTER_NOT_READY.
func NewService(converter DocumentConverter) *Service {
	return &Service{converter: converter}
}

// Extract detects the document format and runs the matching strategy.
// Extraction is synchronous and deterministic: the same input yields the
// same chunk sequence with the same IDs.
func (s *Service) Extract(filename, mimeType string, data []byte) (*Result, error) {
	format, err := DetectFormat(filename, mimeType)
	if err != nil {
		return nil, err
	}

	logger.Info("extracting document",
		logger.String("filename", filename),
		logger.String("format", string(format)),
		logger.Int("bytes", len(data)))

	var chunks []chunk.Chunk
	switch format {
	case FormatLineText:
		chunks, err = extractLineText(data)
	case FormatRichDocument:
		chunks, err = s.extractRichDocument(filename, data)
	case FormatFixedLayout:
		chunks, err = extractFixedLayout(data)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("extraction complete",
		logger.String("filename", filename),
		logger.Int("chunks", len(chunks)))

	return &Result{
		Chunks:     chunks,
		FileBase64: base64.StdEncoding.EncodeToString(data),
		MIMEType:   resolveMIME(filename, mimeType),
	}, nil
}

// resolveMIME picks a MIME type for the retained file bytes, preferring the
// caller-supplied one.
func resolveMIME(filename, mimeType string) string {
	if mimeType != "" {
		return mimeType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDocx
	case ".html", ".htm":
		return mimeHTML
	default:
		return mimePlain
	}
}

// assignIDs gives chunks their stable sequential IDs.
func assignIDs(chunks []chunk.Chunk) []chunk.Chunk {
	for i := range chunks {
		chunks[i].ID = fmt.Sprintf("c%d", i+1)
	}
	return chunks
}
