package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/Prakash793/ReTrans/internal/chunk"
)

type fakeChat struct {
	answer string
	err    error
	input  []*schema.Message
}

func (f *fakeChat) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.answer, nil), nil
}

func TestDetect(t *testing.T) {
	chunks := []chunk.Chunk{
		{Kind: chunk.KindParagraph, OriginalText: "Der Vertrag beginnt am ersten Januar."},
	}

	tests := []struct {
		name   string
		answer string
		err    error
		want   string
	}{
		{name: "clean code", answer: "de", want: "de"},
		{name: "uppercase with period", answer: "DE.", want: "de"},
		{name: "quoted", answer: `"fr"`, want: "fr"},
		{name: "prose answer", answer: "The language is German.", want: DefaultSourceLanguage},
		{name: "not a language", answer: "zz", want: DefaultSourceLanguage},
		{name: "model error", err: errors.New("boom"), want: DefaultSourceLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetectorWithModel(&fakeChat{answer: tt.answer, err: tt.err})
			if got := d.Detect(context.Background(), chunks); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectEmptyChunks(t *testing.T) {
	chat := &fakeChat{answer: "de"}
	d := NewDetectorWithModel(chat)

	got := d.Detect(context.Background(), []chunk.Chunk{
		{Kind: chunk.KindEmptyLine},
		{Kind: chunk.KindParagraph, OriginalText: "   "},
	})
	if got != DefaultSourceLanguage {
		t.Errorf("Detect() = %q, want %q", got, DefaultSourceLanguage)
	}
	if chat.input != nil {
		t.Error("empty sample should not call the model")
	}
}

func TestBuildSampleCaps(t *testing.T) {
	var chunks []chunk.Chunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, chunk.Chunk{
			Kind:         chunk.KindParagraph,
			OriginalText: strings.Repeat("word ", 20),
		})
	}

	sample := buildSample(chunks)
	if len(sample) > sampleMaxChars {
		t.Errorf("sample length = %d, want <= %d", len(sample), sampleMaxChars)
	}
}

func TestNormalizeLanguageCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"de", "de"},
		{" ja \n", "ja"},
		{"`es`", "es"},
		{"EN", "en"},
		{"deu", ""},
		{"d", ""},
		{"", ""},
		{"qq", ""},
	}
	for _, tt := range tests {
		if got := normalizeLanguageCode(tt.in); got != tt.want {
			t.Errorf("normalizeLanguageCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
