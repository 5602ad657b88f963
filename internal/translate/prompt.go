// Package translate drives the model-backed translation stages: batched
// chunk translation, source language detection, and the vision path for
// scanned documents.
package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Prakash793/ReTrans/internal/chunk"
)

// Sentinel stands in for empty-line chunks inside translation batches so
// positions survive the round trip. The model must echo it verbatim.
// A document containing this exact string as real content would collide
// with the placeholder; that is an accepted limitation.
const Sentinel = "⟦BLANK⟧"

// abstract limits: the context summary shown to the model ahead of each
// batch uses at most this many chunks and characters.
const (
	abstractMaxChunks = 12
	abstractMaxChars  = 600
)

// Options carries the per-job translation parameters.
type Options struct {
	SourceLang string
	TargetLang string
	Tone       chunk.Tone
	Glossary   []chunk.GlossaryItem
	Grounding  bool
}

// buildAbstract assembles a short summary of the document opening. It gives
// every batch the same surrounding context so terminology stays consistent
// across batch boundaries.
func buildAbstract(chunks []chunk.Chunk) string {
	var sb strings.Builder
	count := 0
	for _, c := range chunks {
		if !c.IsTranslatable() {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.OriginalText)
		count++
		if count >= abstractMaxChunks || sb.Len() >= abstractMaxChars {
			break
		}
	}

	abstract := sb.String()
	if len(abstract) > abstractMaxChars {
		abstract = truncateUTF8(abstract, abstractMaxChars)
	}
	return abstract
}

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !isRuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// buildBatchSystemPrompt creates the system prompt for a translation batch.
func buildBatchSystemPrompt(opts Options, abstract string) string {
	source := opts.SourceLang
	if source == "" || source == "auto" {
		source = "the source language"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `You are a professional document translator. Translate text segments from %s to %s.

RULES:
1. Translate each segment independently and accurately.
2. Preserve numbers, dates, product codes, and proper nouns unless the glossary says otherwise.
3. The placeholder "%s" marks an intentionally blank segment. Echo it back EXACTLY, untranslated.
4. Segments may begin with a checkbox marker such as "[ ]", "[x]", or "☑". Keep the marker exactly as it appears and translate only the label after it.
5. %s
6. Output ONLY a JSON array of strings, one translated string per input segment, in the same order. No commentary, no markdown.`,
		source, opts.TargetLang, Sentinel, opts.Tone.Instruction())

	if len(opts.Glossary) > 0 {
		sb.WriteString("\n\nGLOSSARY (always use these exact target terms):\n")
		for _, g := range opts.Glossary {
			fmt.Fprintf(&sb, "- %q -> %q\n", g.OriginalTerm, g.TargetTerm)
		}
	}

	if abstract != "" {
		fmt.Fprintf(&sb, "\nDOCUMENT CONTEXT (for terminology only, do not translate):\n%s", abstract)
	}

	return sb.String()
}

// buildBatchUserPrompt serializes the batch segments as a JSON array.
func buildBatchUserPrompt(texts []string) (string, error) {
	payload, err := json.Marshal(texts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Translate the following %d segments. Respond with a JSON array of exactly %d strings.\n\n%s",
		len(texts), len(texts), payload), nil
}

// markdownCodeBlock matches a fenced code block so responses wrapped in
// markdown can still be parsed.
var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// parseTranslations extracts a JSON array of strings from the model
// response and enforces the expected element count.
func parseTranslations(content string, expected int) ([]string, error) {
	content = strings.TrimSpace(content)

	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}

	startIdx := strings.Index(content, "[")
	endIdx := strings.LastIndex(content, "]")
	if startIdx >= 0 && endIdx > startIdx {
		content = content[startIdx : endIdx+1]
	}

	var translations []string
	if err := json.Unmarshal([]byte(content), &translations); err != nil {
		return nil, fmt.Errorf("parse translation response as JSON array: %w", err)
	}

	if len(translations) != expected {
		return nil, fmt.Errorf("got %d translations, expected %d", len(translations), expected)
	}

	return translations, nil
}
