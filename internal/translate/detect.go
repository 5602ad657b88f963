package translate

import (
	"context"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/text/language"

	"github.com/Prakash793/ReTrans/internal/chunk"
	"github.com/Prakash793/ReTrans/internal/logger"
)

// DefaultSourceLanguage is returned whenever detection cannot produce a
// usable answer. Detection is advisory: it never blocks a job.
const DefaultSourceLanguage = "en"

// sample limits for the detection prompt.
const (
	sampleMaxChunks = 5
	sampleMaxChars  = 300
)

// chatGenerator is the slice of the eino chat model the detector needs.
type chatGenerator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// DetectorConfig holds configuration options for creating a Detector.
type DetectorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Detector identifies the dominant source language of a chunk sequence by
// asking a chat model for a bare ISO 639-1 code.
type Detector struct {
	chat chatGenerator
}

// NewDetector creates a Detector backed by an OpenAI-compatible chat model.
func NewDetector(ctx context.Context, cfg DetectorConfig) (*Detector, error) {
	modelCfg := &openai.ChatModelConfig{
		Model:  cfg.Model,
		APIKey: cfg.APIKey,
	}
	if cfg.BaseURL != "" {
		modelCfg.BaseURL = cfg.BaseURL
	}

	chatModel, err := openai.NewChatModel(ctx, modelCfg)
	if err != nil {
		return nil, chunk.NewError(chunk.ErrAPIFailed, "failed to create detection model", err)
	}

	return &Detector{chat: chatModel}, nil
}

// NewDetectorWithModel creates a Detector around an existing chat model.
func NewDetectorWithModel(chat chatGenerator) *Detector {
	return &Detector{chat: chat}
}

// Detect returns the ISO 639-1 code of the dominant language in the chunk
// sequence. Every failure mode, including an empty sample, falls back to
// DefaultSourceLanguage with no error.
func (d *Detector) Detect(ctx context.Context, chunks []chunk.Chunk) string {
	sample := buildSample(chunks)
	if sample == "" {
		return DefaultSourceLanguage
	}

	response, err := d.chat.Generate(ctx, []*schema.Message{
		schema.SystemMessage("You identify languages. Reply with only the two-letter ISO 639-1 code of the text's dominant language. No other words."),
		schema.UserMessage(sample),
	})
	if err != nil {
		logger.Warn("language detection failed, using default",
			logger.String("default", DefaultSourceLanguage),
			logger.Err(err))
		return DefaultSourceLanguage
	}

	code := normalizeLanguageCode(response.Content)
	if code == "" {
		logger.Warn("language detection returned unusable answer, using default",
			logger.String("answer", response.Content),
			logger.String("default", DefaultSourceLanguage))
		return DefaultSourceLanguage
	}

	logger.Info("detected source language", logger.String("lang", code))
	return code
}

// buildSample joins the first few translatable chunks into a detection
// sample, capped in both chunk count and characters.
func buildSample(chunks []chunk.Chunk) string {
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
		if count >= sampleMaxChunks || sb.Len() >= sampleMaxChars {
			break
		}
	}
	return truncateUTF8(sb.String(), sampleMaxChars)
}

// normalizeLanguageCode validates a model answer as an ISO 639-1 code and
// returns it lowercased, or "" when the answer is unusable.
func normalizeLanguageCode(answer string) string {
	code := strings.ToLower(strings.TrimSpace(answer))
	code = strings.Trim(code, "\"'.`")

	if len(code) != 2 {
		return ""
	}
	if _, err := language.Parse(code); err != nil {
		return ""
	}
	return code
}
