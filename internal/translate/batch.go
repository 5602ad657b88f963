package translate

import (
	"context"
	"fmt"

	"github.com/Prakash793/ReTrans/internal/chunk"
	"github.com/Prakash793/ReTrans/internal/llm"
	"github.com/Prakash793/ReTrans/internal/logger"
)

// DefaultBatchSize is the default number of chunks per translation batch.
const DefaultBatchSize = 20

// ProgressCallback reports batch translation progress.
// completed: chunks translated so far. total: chunks in the job.
type ProgressCallback func(completed, total int)

// BatcherConfig holds configuration options for creating a Batcher.
type BatcherConfig struct {
	Client    *llm.Client
	Model     string
	BatchSize int
}

// Batcher translates chunk sequences in fixed-size contiguous batches,
// preserving order and count.
type Batcher struct {
	client    *llm.Client
	model     string
	batchSize int
}

// NewBatcher creates a Batcher, applying defaults for zero values.
func NewBatcher(cfg BatcherConfig) *Batcher {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Batcher{
		client:    cfg.Client,
		model:     cfg.Model,
		batchSize: batchSize,
	}
}

// TranslateChunks translates every chunk in order and returns a new slice
// with TranslatedText filled in. Empty-line chunks ride through batches as
// sentinels and always come back with an empty translation. Any batch
// failure aborts the whole job; partial results are never returned.
func (b *Batcher) TranslateChunks(ctx context.Context, chunks []chunk.Chunk, opts Options, progress ProgressCallback) ([]chunk.Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	abstract := buildAbstract(chunks)
	systemPrompt := buildBatchSystemPrompt(opts, abstract)

	results := make([]chunk.Chunk, len(chunks))
	copy(results, chunks)

	total := len(chunks)
	completed := 0

	logger.Info("starting batch translation",
		logger.Int("chunks", total),
		logger.Int("batchSize", b.batchSize),
		logger.String("targetLang", opts.TargetLang))

	for start := 0; start < len(chunks); start += b.batchSize {
		end := start + b.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := results[start:end]

		translations, err := b.translateBatch(ctx, batch, systemPrompt, opts)
		if err != nil {
			logger.Error("batch translation failed", err,
				logger.Int("batchStart", start),
				logger.Int("batchSize", len(batch)))
			if code, _ := chunk.CodeOf(err); code == chunk.ErrCancelled || code == chunk.ErrAuthFailed {
				return nil, err
			}
			return nil, chunk.NewErrorWithDetails(chunk.ErrTranslateFailed,
				"translation failed",
				fmt.Sprintf("batch starting at chunk %d", start+1), err)
		}

		for i := range batch {
			if !batch[i].IsTranslatable() {
				// Only positions sent as the sentinel map back to empty.
				batch[i].TranslatedText = ""
				continue
			}
			if translations[i] == Sentinel {
				return nil, chunk.NewErrorWithDetails(chunk.ErrTranslateFailed,
					"translation failed",
					fmt.Sprintf("model returned the blank placeholder for chunk %d", start+i+1), nil)
			}
			batch[i].TranslatedText = translations[i]
		}

		completed += len(batch)
		if progress != nil {
			progress(completed, total)
		}
	}

	logger.Info("batch translation completed", logger.Int("chunks", total))
	return results, nil
}

// translateBatch runs one model call for a contiguous slice of chunks.
func (b *Batcher) translateBatch(ctx context.Context, batch []chunk.Chunk, systemPrompt string, opts Options) ([]string, error) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		if c.IsTranslatable() {
			texts[i] = c.OriginalText
		} else {
			texts[i] = Sentinel
		}
	}

	userPrompt, err := buildBatchUserPrompt(texts)
	if err != nil {
		return nil, err
	}

	req := &llm.ChatRequest{
		Model: b.model,
		Messages: []llm.Message{
			llm.SystemMessage(systemPrompt),
			llm.UserMessage(userPrompt),
		},
		Temperature: 0,
	}
	if opts.Grounding {
		req.WebSearchOptions = &llm.WebSearchOptions{}
	}

	content, err := b.client.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	return parseTranslations(content, len(batch))
}
