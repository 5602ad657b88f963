package extract

import (
	"testing"

	"golang.org/x/text/encoding/unicode"

	"github.com/Prakash793/ReTrans/internal/chunk"
)

func TestChunksFromText(t *testing.T) {
	text := "Quarterly Report\n\nRevenue grew by 12%.\n[ ] Review appendix\n[x] Approve budget\n\nFinal remarks."
	chunks := ChunksFromText(text)

	wantKinds := []chunk.Kind{
		chunk.KindHeading,
		chunk.KindEmptyLine,
		chunk.KindParagraph,
		chunk.KindCheckbox,
		chunk.KindCheckbox,
		chunk.KindEmptyLine,
		chunk.KindParagraph,
	}
	if len(chunks) != len(wantKinds) {
		t.Fatalf("got %d chunks, want %d: %+v", len(chunks), len(wantKinds), chunks)
	}
	for i, kind := range wantKinds {
		if chunks[i].Kind != kind {
			t.Errorf("chunk %d kind = %q, want %q", i, chunks[i].Kind, kind)
		}
	}

	if chunks[0].Style == nil || chunks[0].Style.HeadingLevel != 1 || !chunks[0].Style.Bold {
		t.Errorf("heading style = %+v, want level 1 bold", chunks[0].Style)
	}
	if chunks[3].Style == nil || chunks[3].Style.Checked {
		t.Errorf("open checkbox style = %+v, want unchecked", chunks[3].Style)
	}
	if chunks[4].Style == nil || !chunks[4].Style.Checked {
		t.Errorf("filled checkbox style = %+v, want checked", chunks[4].Style)
	}
}

func TestChunksFromTextCRLFAndTrailingNewlines(t *testing.T) {
	chunks := ChunksFromText("Title\r\nBody\r\n\r\n\r\n")

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2 (trailing blanks dropped): %+v", len(chunks), chunks)
	}
	if chunks[0].OriginalText != "Title" || chunks[1].OriginalText != "Body" {
		t.Errorf("texts = %q, %q", chunks[0].OriginalText, chunks[1].OriginalText)
	}
}

func TestChunksFromTextEmpty(t *testing.T) {
	if got := ChunksFromText(""); len(got) != 0 {
		t.Errorf("expected no chunks for empty text, got %+v", got)
	}
	if got := ChunksFromText("\n\n\n"); len(got) != 0 {
		t.Errorf("expected no chunks for blank text, got %+v", got)
	}
}

func TestDecodeTextBOMs(t *testing.T) {
	plain := "Héllo wörld"

	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(plain))
	if err != nil {
		t.Fatal(err)
	}
	utf16be, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(plain))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"plain utf-8", []byte(plain)},
		{"utf-8 with BOM", append([]byte{0xEF, 0xBB, 0xBF}, []byte(plain)...)},
		{"utf-16 LE", utf16le},
		{"utf-16 BE", utf16be},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeText(tt.data)
			if err != nil {
				t.Fatalf("decodeText: %v", err)
			}
			if got != plain {
				t.Errorf("decoded = %q, want %q", got, plain)
			}
		})
	}
}
