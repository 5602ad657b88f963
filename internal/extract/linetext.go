package extract

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/Prakash793/ReTrans/internal/chunk"
)

// extractLineText chunks plain text line by line. The first non-trivial
// line becomes a level-1 heading, blank lines become empty-line chunks, and
// everything else is a paragraph.
func extractLineText(data []byte) ([]chunk.Chunk, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, chunk.NewError(chunk.ErrExtractFailed, "failed to decode text file", err)
	}

	return ChunksFromText(text), nil
}

// ChunksFromText applies the line-text heuristic to an already decoded
// string. It backs both file extraction and the pasted-text input path.
func ChunksFromText(text string) []chunk.Chunk {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var chunks []chunk.Chunk
	headingSeen := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			chunks = append(chunks, chunk.Chunk{Kind: chunk.KindEmptyLine})
			continue
		}

		if checked, ok := chunk.DetectCheckbox(trimmed); ok {
			chunks = append(chunks, chunk.Chunk{
				Kind:         chunk.KindCheckbox,
				OriginalText: trimmed,
				Style:        &chunk.Style{Checked: checked},
			})
			continue
		}

		if !headingSeen {
			headingSeen = true
			chunks = append(chunks, chunk.Chunk{
				Kind:         chunk.KindHeading,
				OriginalText: trimmed,
				Style:        &chunk.Style{HeadingLevel: 1, Bold: true},
			})
			continue
		}

		chunks = append(chunks, chunk.Chunk{
			Kind:         chunk.KindParagraph,
			OriginalText: trimmed,
		})
	}

	// Drop trailing empty lines so a final newline does not add a chunk.
	for len(chunks) > 0 && chunks[len(chunks)-1].Kind == chunk.KindEmptyLine {
		chunks = chunks[:len(chunks)-1]
	}

	return assignIDs(chunks)
}

// BOM markers for the encodings we detect.
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText converts file bytes to a UTF-8 string, honoring BOM markers
// for UTF-8 and UTF-16 variants. Unmarked input is assumed to be UTF-8.
func decodeText(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), nil
	case bytes.HasPrefix(data, bomUTF16LE):
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	case bytes.HasPrefix(data, bomUTF16BE):
		decoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	default:
		return string(data), nil
	}
}
