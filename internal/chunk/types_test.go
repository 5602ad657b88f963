package chunk

import (
	"errors"
	"testing"
)

func TestKindIsValid(t *testing.T) {
	tests := []struct {
		kind  Kind
		valid bool
	}{
		{KindHeading, true},
		{KindParagraph, true},
		{KindTableCell, true},
		{KindCheckbox, true},
		{KindEmptyLine, true},
		{Kind("footnote"), false},
		{Kind(""), false},
	}

	for _, tt := range tests {
		if got := tt.kind.IsValid(); got != tt.valid {
			t.Errorf("Kind(%q).IsValid() = %v, want %v", tt.kind, got, tt.valid)
		}
	}
}

func TestChunkIsTranslatable(t *testing.T) {
	tests := []struct {
		name string
		c    Chunk
		want bool
	}{
		{"paragraph with text", Chunk{Kind: KindParagraph, OriginalText: "Hello"}, true},
		{"empty line", Chunk{Kind: KindEmptyLine, OriginalText: ""}, false},
		{"whitespace only paragraph", Chunk{Kind: KindParagraph, OriginalText: "   "}, false},
		{"checkbox", Chunk{Kind: KindCheckbox, OriginalText: "[x] Done"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.IsTranslatable(); got != tt.want {
				t.Errorf("IsTranslatable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToneIsValid(t *testing.T) {
	for _, tone := range Tones() {
		if !tone.IsValid() {
			t.Errorf("Tone(%q).IsValid() = false, want true", tone)
		}
		if tone.Instruction() == "" {
			t.Errorf("Tone(%q).Instruction() is empty", tone)
		}
	}

	if Tone("casual").IsValid() {
		t.Error("Tone(\"casual\").IsValid() = true, want false")
	}
	// Unknown tones fall back to the professional instruction.
	if Tone("casual").Instruction() != ToneProfessional.Instruction() {
		t.Error("unknown tone should fall back to professional instruction")
	}
}

func TestDetectCheckbox(t *testing.T) {
	tests := []struct {
		text    string
		checked bool
		ok      bool
	}{
		{"[ ] open item", false, true},
		{"[x] done item", true, true},
		{"[X] done item", true, true},
		{"(x) done item", true, true},
		{"☐ open item", false, true},
		{"☑ done item", true, true},
		{"☒ done item", true, true},
		{"  [x] leading space", true, true},
		{"plain paragraph", false, false},
		{"x marks the spot", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		checked, ok := DetectCheckbox(tt.text)
		if checked != tt.checked || ok != tt.ok {
			t.Errorf("DetectCheckbox(%q) = (%v, %v), want (%v, %v)",
				tt.text, checked, ok, tt.checked, tt.ok)
		}
	}
}

func TestGroupTableRuns(t *testing.T) {
	cell := func(id, text string) Chunk {
		return Chunk{ID: id, Kind: KindTableCell, OriginalText: text}
	}
	para := func(id, text string) Chunk {
		return Chunk{ID: id, Kind: KindParagraph, OriginalText: text}
	}

	t.Run("no cells", func(t *testing.T) {
		runs := GroupTableRuns([]Chunk{para("c1", "a"), para("c2", "b")})
		if len(runs) != 0 {
			t.Fatalf("expected 0 runs, got %d", len(runs))
		}
	})

	t.Run("single run", func(t *testing.T) {
		runs := GroupTableRuns([]Chunk{
			para("c1", "intro"),
			cell("c2", "a"), cell("c3", "b"), cell("c4", "c"),
			para("c5", "outro"),
		})
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
		if runs[0].Start != 1 || len(runs[0].Cells) != 3 {
			t.Errorf("run = {Start:%d, len:%d}, want {Start:1, len:3}", runs[0].Start, len(runs[0].Cells))
		}
	})

	t.Run("interrupted runs stay distinct", func(t *testing.T) {
		runs := GroupTableRuns([]Chunk{
			cell("c1", "a"), cell("c2", "b"),
			{ID: "c3", Kind: KindEmptyLine},
			cell("c4", "c"),
		})
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if len(runs[0].Cells) != 2 || len(runs[1].Cells) != 1 {
			t.Errorf("run sizes = %d, %d; want 2, 1", len(runs[0].Cells), len(runs[1].Cells))
		}
		if runs[1].Start != 3 {
			t.Errorf("second run start = %d, want 3", runs[1].Start)
		}
	})
}

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("boom")
	e := NewErrorWithDetails(ErrExtractFailed, "extraction failed", "possibly corrupted", cause)

	if e.Error() != "extraction failed: possibly corrupted" {
		t.Errorf("Error() = %q", e.Error())
	}
	if !errors.Is(e, cause) {
		t.Error("errors.Is should find the cause")
	}

	plain := NewError(ErrAPIFailed, "request failed", nil)
	if plain.Error() != "request failed" {
		t.Errorf("Error() = %q", plain.Error())
	}
}

func TestCodeOf(t *testing.T) {
	e := NewError(ErrAuthFailed, "bad key", nil)

	code, ok := CodeOf(e)
	if !ok || code != ErrAuthFailed {
		t.Errorf("CodeOf = (%q, %v), want (AUTH_FAILED, true)", code, ok)
	}

	if _, ok := CodeOf(errors.New("plain")); ok {
		t.Error("CodeOf(plain error) should report false")
	}
	if _, ok := CodeOf(nil); ok {
		t.Error("CodeOf(nil) should report false")
	}
}
