package extract

import (
	"bytes"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Prakash793/ReTrans/internal/chunk"
	"github.com/Prakash793/ReTrans/internal/logger"
)

// lineGroupTolerance is the maximum Y delta (in PDF points) between two
// fragments still considered part of the same line.
const lineGroupTolerance = 5.0

// extractFixedLayout extracts positioned text from a PDF and rebuilds lines
// from the fragment coordinates. A structurally valid PDF that yields no
// fragments returns an empty chunk slice and no error; that case is the
// scanned-document signal handled by the vision path.
func extractFixedLayout(data []byte) ([]chunk.Chunk, error) {
	// Validate the document first so corrupted or encrypted files fail
	// with a clear error instead of a garbled extraction.
	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, chunk.NewErrorWithDetails(chunk.ErrExtractFailed,
			"failed to extract document structure",
			"file may be corrupted or password protected", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, chunk.NewErrorWithDetails(chunk.ErrExtractFailed,
			"failed to extract document structure",
			"file may be corrupted or password protected", err)
	}

	logger.Debug("reading fixed-layout document",
		logger.Int("pages", pdfCtx.PageCount))

	var chunks []chunk.Chunk
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		lines := groupFragments(page.Content().Text)
		if len(lines) == 0 {
			continue
		}

		// Page boundaries show up as empty-line chunks so document flow
		// survives translation.
		if len(chunks) > 0 {
			chunks = append(chunks, chunk.Chunk{Kind: chunk.KindEmptyLine})
		}

		for _, line := range lines {
			text := strings.TrimSpace(line.text)
			if text == "" {
				chunks = append(chunks, chunk.Chunk{Kind: chunk.KindEmptyLine})
				continue
			}
			if checked, ok := chunk.DetectCheckbox(text); ok {
				chunks = append(chunks, chunk.Chunk{
					Kind:         chunk.KindCheckbox,
					OriginalText: text,
					Style:        &chunk.Style{Checked: checked},
				})
				continue
			}
			var style *chunk.Style
			if line.bold || line.italic {
				style = &chunk.Style{Bold: line.bold, Italic: line.italic}
			}
			chunks = append(chunks, chunk.Chunk{
				Kind:         chunk.KindParagraph,
				OriginalText: text,
				Style:        style,
			})
		}
	}

	return assignIDs(chunks), nil
}

// textLine is one reconstructed line of page text.
type textLine struct {
	y      float64
	text   string
	bold   bool
	italic bool
}

// groupFragments sorts positioned fragments into reading order and merges
// fragments whose Y coordinates fall within lineGroupTolerance into lines.
// PDF coordinates grow upward, so reading order is descending Y.
func groupFragments(fragments []pdf.Text) []textLine {
	if len(fragments) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if abs(sorted[i].Y-sorted[j].Y) < lineGroupTolerance {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y > sorted[j].Y
	})

	var lines []textLine
	var sb strings.Builder
	var current textLine
	lineOpen := false

	flush := func() {
		if lineOpen {
			current.text = sb.String()
			lines = append(lines, current)
			sb.Reset()
			lineOpen = false
		}
	}

	for _, frag := range sorted {
		if frag.S == "" {
			continue
		}

		if !lineOpen || abs(frag.Y-current.y) > lineGroupTolerance {
			flush()
			current = textLine{y: frag.Y}
			lineOpen = true
		}

		sb.WriteString(frag.S)

		fontLower := strings.ToLower(frag.Font)
		if strings.Contains(fontLower, "bold") {
			current.bold = true
		}
		if strings.Contains(fontLower, "italic") || strings.Contains(fontLower, "oblique") {
			current.italic = true
		}
	}
	flush()

	return lines
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
