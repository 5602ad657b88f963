package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Prakash793/ReTrans/internal/chunk"
	"github.com/Prakash793/ReTrans/internal/llm"
	"github.com/Prakash793/ReTrans/internal/logger"
)

// VisionConfig holds configuration options for creating a VisionTranslator.
type VisionConfig struct {
	Client *llm.Client
	Model  string
}

// VisionTranslator handles documents whose text extraction came back empty,
// typically scans. It sends the raw document to a multimodal model, which
// reads the page images and returns recognized and translated chunks in
// one pass.
type VisionTranslator struct {
	client *llm.Client
	model  string
}

// NewVisionTranslator creates a VisionTranslator.
func NewVisionTranslator(cfg VisionConfig) *VisionTranslator {
	return &VisionTranslator{client: cfg.Client, model: cfg.Model}
}

// visionItem is one recognized chunk in the model's JSON response.
type visionItem struct {
	Kind       string `json:"kind"`
	Original   string `json:"original"`
	Translated string `json:"translated"`
}

// TranslateDocument sends the document inline to the multimodal model and
// parses the combined recognition and translation result. Any failure is
// fatal for the job; there is no further fallback behind the vision path.
func (v *VisionTranslator) TranslateDocument(ctx context.Context, filename, mimeType, fileBase64 string, opts Options) ([]chunk.Chunk, error) {
	if fileBase64 == "" {
		return nil, chunk.NewError(chunk.ErrVisionFailed, "no document content available for vision translation", nil)
	}

	logger.Info("starting vision translation",
		logger.String("filename", filename),
		logger.String("mimeType", mimeType),
		logger.String("targetLang", opts.TargetLang))

	parts := []llm.ContentPart{
		llm.TextPart(buildVisionUserPrompt(opts)),
	}
	if strings.HasPrefix(mimeType, "image/") {
		parts = append(parts, llm.ImagePart(mimeType, fileBase64))
	} else {
		parts = append(parts, llm.FilePart(filename, mimeType, fileBase64))
	}

	req := &llm.ChatRequest{
		Model: v.model,
		Messages: []llm.Message{
			llm.SystemMessage(buildVisionSystemPrompt(opts)),
			llm.UserParts(parts...),
		},
		Temperature: 0,
	}
	if opts.Grounding {
		req.WebSearchOptions = &llm.WebSearchOptions{}
	}

	content, err := v.client.Complete(ctx, req)
	if err != nil {
		if code, _ := chunk.CodeOf(err); code == chunk.ErrCancelled || code == chunk.ErrAuthFailed {
			return nil, err
		}
		return nil, chunk.NewError(chunk.ErrVisionFailed, "vision translation failed", err)
	}

	chunks, err := parseVisionResponse(content)
	if err != nil {
		return nil, chunk.NewErrorWithDetails(chunk.ErrVisionFailed,
			"vision translation failed", "model returned an unparseable result", err)
	}

	logger.Info("vision translation completed", logger.Int("chunks", len(chunks)))
	return chunks, nil
}

// buildVisionSystemPrompt describes the recognition-plus-translation task
// and the JSON schema of the expected answer.
func buildVisionSystemPrompt(opts Options) string {
	return fmt.Sprintf(`You read scanned documents and translate them to %s.

Recognize every piece of text in the document, in reading order, and translate it. %s

Output ONLY a JSON array of objects, one per text unit, each with:
- "kind": one of "heading", "paragraph", "table-cell", "checkbox", "empty-line"
- "original": the recognized source text (empty string for empty-line)
- "translated": the translation (empty string for empty-line)

Checkbox units keep their marker ("[ ]", "[x]", "☐", "☑") in both fields. Blank gaps between blocks become empty-line units. No commentary, no markdown.`,
		opts.TargetLang, opts.Tone.Instruction())
}

// buildVisionUserPrompt is the text part accompanying the inline document.
func buildVisionUserPrompt(opts Options) string {
	if len(opts.Glossary) == 0 {
		return "Recognize and translate the attached document."
	}
	var sb strings.Builder
	sb.WriteString("Recognize and translate the attached document. Always use these exact target terms:\n")
	for _, g := range opts.Glossary {
		fmt.Fprintf(&sb, "- %q -> %q\n", g.OriginalTerm, g.TargetTerm)
	}
	return sb.String()
}

// parseVisionResponse converts the model's JSON answer into a chunk
// sequence with fresh sequential IDs.
func parseVisionResponse(content string) ([]chunk.Chunk, error) {
	content = strings.TrimSpace(content)
	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}
	startIdx := strings.Index(content, "[")
	endIdx := strings.LastIndex(content, "]")
	if startIdx >= 0 && endIdx > startIdx {
		content = content[startIdx : endIdx+1]
	}

	var items []visionItem
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("parse vision response as JSON array: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("vision response contained no text units")
	}

	chunks := make([]chunk.Chunk, 0, len(items))
	for i, item := range items {
		kind := chunk.Kind(item.Kind)
		if !kind.IsValid() {
			kind = chunk.KindParagraph
		}

		c := chunk.Chunk{
			ID:             fmt.Sprintf("c%d", i+1),
			Kind:           kind,
			OriginalText:   item.Original,
			TranslatedText: item.Translated,
		}
		if kind == chunk.KindEmptyLine {
			c.OriginalText = ""
			c.TranslatedText = ""
		}
		if kind == chunk.KindCheckbox {
			if checked, ok := chunk.DetectCheckbox(item.Original); ok {
				c.Style = &chunk.Style{Checked: checked}
			}
		}
		chunks = append(chunks, c)
	}

	return chunks, nil
}
