// Package chunk defines the document chunk model shared by extraction and
// translation: typed text chunks with style metadata, the tone enum,
// glossary entries, and the processing error taxonomy.
package chunk

import "strings"

// Kind classifies a chunk of document text.
type Kind string

const (
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindTableCell Kind = "table-cell"
	KindCheckbox  Kind = "checkbox"
	KindEmptyLine Kind = "empty-line"
)

// IsValid reports whether the kind is one of the known chunk kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindHeading, KindParagraph, KindTableCell, KindCheckbox, KindEmptyLine:
		return true
	default:
		return false
	}
}

// Style carries the presentation attributes recovered during extraction.
// Fields are zero-valued when they do not apply to the chunk's kind.
type Style struct {
	HeadingLevel int    `json:"heading_level,omitempty"`
	Bold         bool   `json:"bold,omitempty"`
	Italic       bool   `json:"italic,omitempty"`
	Underline    bool   `json:"underline,omitempty"`
	Alignment    string `json:"alignment,omitempty"`
	TableRow     int    `json:"table_row,omitempty"`
	TableCol     int    `json:"table_col,omitempty"`
	RowSpan      int    `json:"row_span,omitempty"`
	ColSpan      int    `json:"col_span,omitempty"`
	Checked      bool   `json:"checked,omitempty"`
}

// Chunk is one ordered unit of document text. IDs are assigned sequentially
// at extraction time and stay stable for the lifetime of a job.
type Chunk struct {
	ID             string `json:"id"`
	Kind           Kind   `json:"kind"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text,omitempty"`
	Style          *Style `json:"style,omitempty"`
}

// IsTranslatable reports whether the chunk carries text the model should
// translate. Empty lines are placeholders and pass through untouched.
func (c *Chunk) IsTranslatable() bool {
	return c.Kind != KindEmptyLine && strings.TrimSpace(c.OriginalText) != ""
}

// GlossaryItem pins a source term to a required target term. Glossary
// entries are advisory instructions to the model, not post-hoc rewrites.
type GlossaryItem struct {
	OriginalTerm string `json:"original_term"`
	TargetTerm   string `json:"target_term"`
}

// Tone selects the register the translation should be written in.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneLegal        Tone = "legal"
	ToneTechnical    Tone = "technical"
	ToneMedical      Tone = "medical"
	ToneCreative     Tone = "creative"
)

// toneInstructions maps each tone to the register instruction embedded in
// translation prompts. The set is closed; unknown tones fail validation.
var toneInstructions = map[Tone]string{
	ToneProfessional: "Use a polished business register suitable for corporate correspondence and reports.",
	ToneLegal:        "Use precise legal terminology and preserve the formal register of contractual language.",
	ToneTechnical:    "Use exact technical vocabulary and keep product names, units, and code identifiers unchanged.",
	ToneMedical:      "Use standard clinical terminology as found in medical records and patient documentation.",
	ToneCreative:     "Favor natural, expressive phrasing that preserves the voice and rhythm of the original.",
}

// IsValid reports whether the tone is one of the supported registers.
func (t Tone) IsValid() bool {
	_, ok := toneInstructions[t]
	return ok
}

// Instruction returns the prompt instruction for the tone. Unknown tones
// fall back to the professional register.
func (t Tone) Instruction() string {
	if s, ok := toneInstructions[t]; ok {
		return s
	}
	return toneInstructions[ToneProfessional]
}

// Tones lists the supported tones in a stable order.
func Tones() []Tone {
	return []Tone{ToneProfessional, ToneLegal, ToneTechnical, ToneMedical, ToneCreative}
}

// checkboxGlyphs maps every recognized checkbox marker to its checked state.
var checkboxGlyphs = map[string]bool{
	"[ ]": false,
	"[x]": true,
	"[X]": true,
	"(x)": true,
	"☐":   false,
	"☑":   true,
	"☒":   true,
}

// DetectCheckbox reports whether text begins with a recognized checkbox
// glyph and, if so, whether that glyph marks a checked box.
func DetectCheckbox(text string) (checked bool, ok bool) {
	trimmed := strings.TrimSpace(text)
	for glyph, state := range checkboxGlyphs {
		if strings.HasPrefix(trimmed, glyph) {
			return state, true
		}
	}
	return false, false
}

// TableRun is a maximal run of consecutive table-cell chunks, treated as a
// single logical table by export consumers.
type TableRun struct {
	Start int     // index of the first cell in the source slice
	Cells []Chunk // the cells, in document order
}

// GroupTableRuns scans the chunk sequence and returns every maximal run of
// consecutive table-cell chunks. Non-table chunks break runs; two tables
// separated by any other chunk stay distinct.
func GroupTableRuns(chunks []Chunk) []TableRun {
	var runs []TableRun
	var current *TableRun

	for i, c := range chunks {
		if c.Kind == KindTableCell {
			if current == nil {
				runs = append(runs, TableRun{Start: i})
				current = &runs[len(runs)-1]
			}
			current.Cells = append(current.Cells, c)
		} else {
			current = nil
		}
	}

	return runs
}
