package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/Prakash793/ReTrans/internal/chunk"
	"github.com/Prakash793/ReTrans/internal/config"
	"github.com/Prakash793/ReTrans/internal/extract"
	"github.com/Prakash793/ReTrans/internal/llm"
	"github.com/Prakash793/ReTrans/internal/logger"
	"github.com/Prakash793/ReTrans/internal/translate"
)

// Phase describes where a job currently is in its lifecycle.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseExtracting  Phase = "extracting"
	PhaseTranslating Phase = "translating"
	PhaseComplete    Phase = "complete"
	PhaseError       Phase = "error"
)

// Status is a snapshot of the session state for host applications.
type Status struct {
	Phase    Phase  `json:"phase"`
	Progress int    `json:"progress"` // 0-100
	Message  string `json:"message"`
}

// StatusCallback is invoked whenever the session status changes.
type StatusCallback func(status Status)

// Job holds everything belonging to one document translation: the source
// material, the chunk sequence, and the translation parameters. A session
// owns at most one job at a time; jobs share no mutable state.
type Job struct {
	Filename   string
	SourceLang string
	TargetLang string
	Tone       chunk.Tone
	Grounding  bool
	Glossary   []chunk.GlossaryItem

	Chunks     []chunk.Chunk
	FileBase64 string
	MIMEType   string
}

// Session orchestrates the document translation pipeline: extraction,
// optional language detection, batched translation, and the vision
// fallback for documents whose structural extraction comes back empty.
type Session struct {
	cfg       *config.Manager
	extractor *extract.Service
	client    *llm.Client

	mu             sync.RWMutex
	job            *Job
	detector       languageDetector
	status         Status
	cancelFunc     context.CancelFunc
	statusCallback StatusCallback
}

// languageDetector is the slice of translate.Detector the session needs.
type languageDetector interface {
	Detect(ctx context.Context, chunks []chunk.Chunk) string
}

// NewSession creates a Session from a loaded configuration manager.
func NewSession(cfg *config.Manager) *Session {
	c := cfg.Config()
	client := llm.NewClient(llm.ClientConfig{
		APIKey:     cfg.APIKey(),
		BaseURL:    cfg.BaseURL(),
		Timeout:    c.Timeout(),
		MaxRetries: c.MaxRetries,
	})
	return &Session{
		cfg:       cfg,
		extractor: extract.NewService(extract.NewDocxConverter()),
		client:    client,
		status:    Status{Phase: PhaseIdle},
	}
}

// NewSessionFromFile loads configuration from configPath (or the default
// location when empty) and creates a Session around it.
func NewSessionFromFile(configPath string) (*Session, error) {
	mgr, err := config.NewManager(configPath)
	if err != nil {
		return nil, err
	}
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	return NewSession(mgr), nil
}

// SetStatusCallback registers a callback invoked on every status change.
func (s *Session) SetStatusCallback(cb StatusCallback) {
	s.mu.Lock()
	s.statusCallback = cb
	s.mu.Unlock()
}

// Status returns the current session status snapshot.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Chunks returns a copy of the current job's chunk sequence, or nil when
// no job is loaded.
func (s *Session) Chunks() []chunk.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.job == nil {
		return nil
	}
	out := make([]chunk.Chunk, len(s.job.Chunks))
	copy(out, s.job.Chunks)
	return out
}

func (s *Session) setStatus(phase Phase, progress int, message string) {
	s.mu.Lock()
	s.status = Status{Phase: phase, Progress: progress, Message: message}
	cb := s.statusCallback
	status := s.status
	s.mu.Unlock()
	if cb != nil {
		cb(status)
	}
}

// LoadDocument extracts a document into a new job. Extraction runs
// synchronously; translation never starts before it completes. Any
// previous job is discarded.
func (s *Session) LoadDocument(ctx context.Context, filename, mimeType string, data []byte) error {
	s.setStatus(PhaseExtracting, 0, fmt.Sprintf("extracting %s", filename))

	result, err := s.extractor.Extract(filename, mimeType, data)
	if err != nil {
		s.setStatus(PhaseError, 0, err.Error())
		return err
	}

	cfg := s.cfg.Config()
	job := &Job{
		Filename:   filename,
		SourceLang: "auto",
		TargetLang: cfg.TargetLanguage,
		Tone:       cfg.Tone,
		Grounding:  cfg.Grounding,
		Chunks:     result.Chunks,
		FileBase64: result.FileBase64,
		MIMEType:   result.MIMEType,
	}

	s.mu.Lock()
	s.job = job
	s.mu.Unlock()

	if result.IsEmpty() {
		logger.Info("extraction produced no chunks, vision fallback armed",
			logger.String("filename", filename))
		s.setStatus(PhaseIdle, 0, "document loaded (no extractable text)")
		return nil
	}

	s.setStatus(PhaseIdle, 0, fmt.Sprintf("document loaded, %d chunks", len(result.Chunks)))
	return nil
}

// LoadText builds a job directly from pasted text. The text goes through
// the same line heuristics as plain text files; there is no file payload,
// so the vision path never applies.
func (s *Session) LoadText(text string) {
	s.setStatus(PhaseExtracting, 0, "extracting pasted text")

	chunks := extract.ChunksFromText(text)

	cfg := s.cfg.Config()
	job := &Job{
		SourceLang: "auto",
		TargetLang: cfg.TargetLanguage,
		Tone:       cfg.Tone,
		Grounding:  cfg.Grounding,
		Chunks:     chunks,
	}

	s.mu.Lock()
	s.job = job
	s.mu.Unlock()

	s.setStatus(PhaseIdle, 0, fmt.Sprintf("text loaded, %d chunks", len(chunks)))
}

// SetLanguages sets the job's source and target languages. Source "auto"
// defers to the language detector at translation time.
func (s *Session) SetLanguages(source, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return fmt.Errorf("no document loaded")
	}
	if source != "" {
		s.job.SourceLang = source
	}
	if target != "" {
		s.job.TargetLang = target
	}
	return nil
}

// SetTone sets the job's translation tone.
func (s *Session) SetTone(tone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return fmt.Errorf("no document loaded")
	}
	t := chunk.Tone(tone)
	if tone != "" && !t.IsValid() {
		return fmt.Errorf("unknown tone %q", tone)
	}
	s.job.Tone = t
	return nil
}

// SetGlossary replaces the job's glossary.
func (s *Session) SetGlossary(items []chunk.GlossaryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return fmt.Errorf("no document loaded")
	}
	s.job.Glossary = items
	return nil
}

// SetGrounding toggles web-grounded translation for the job.
func (s *Session) SetGrounding(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return fmt.Errorf("no document loaded")
	}
	s.job.Grounding = enabled
	return nil
}

// Translate runs the translation stage for the loaded job. With source
// language "auto" it first asks the detector. Jobs whose extraction came
// back empty but that still carry file bytes take the vision path, which
// replaces the chunk sequence wholesale; everything else goes through the
// batch translator. A cancelled job keeps its pre-translation state.
func (s *Session) Translate(ctx context.Context, onProgress translate.ProgressCallback) error {
	s.mu.Lock()
	if s.job == nil {
		s.mu.Unlock()
		return fmt.Errorf("no document loaded")
	}
	if s.status.Phase == PhaseTranslating {
		s.mu.Unlock()
		return fmt.Errorf("translation already in progress")
	}
	jobRef := s.job
	job := *s.job
	glossary := make([]chunk.GlossaryItem, len(s.job.Glossary))
	copy(glossary, s.job.Glossary)
	chunks := make([]chunk.Chunk, len(s.job.Chunks))
	copy(chunks, s.job.Chunks)

	ctx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel
	// The phase flips inside the same critical section as the re-entry
	// check above, so a second Translate can never slip past the guard.
	s.status = Status{Phase: PhaseTranslating, Message: "translating"}
	cb := s.statusCallback
	started := s.status
	s.mu.Unlock()
	defer cancel()

	if cb != nil {
		cb(started)
	}

	opts := translate.Options{
		SourceLang: job.SourceLang,
		TargetLang: job.TargetLang,
		Tone:       job.Tone,
		Glossary:   glossary,
		Grounding:  job.Grounding,
	}

	if opts.SourceLang == "" || opts.SourceLang == "auto" {
		opts.SourceLang = s.detectLanguage(ctx, chunks)
	}

	cfg := s.cfg.Config()
	var translated []chunk.Chunk
	var err error

	if len(chunks) == 0 && job.FileBase64 != "" {
		vt := translate.NewVisionTranslator(translate.VisionConfig{
			Client: s.client,
			Model:  cfg.VisionModel,
		})
		translated, err = vt.TranslateDocument(ctx, job.Filename, job.MIMEType, job.FileBase64, opts)
	} else {
		b := translate.NewBatcher(translate.BatcherConfig{
			Client:    s.client,
			Model:     cfg.TextModel,
			BatchSize: cfg.BatchSize,
		})
		translated, err = b.TranslateChunks(ctx, chunks, opts, func(completed, total int) {
			progress := 0
			if total > 0 {
				progress = completed * 100 / total
			}
			s.setStatus(PhaseTranslating, progress, fmt.Sprintf("translated %d of %d chunks", completed, total))
			if onProgress != nil {
				onProgress(completed, total)
			}
		})
	}

	if err != nil {
		if !s.stillCurrent(jobRef) {
			logger.Info("translation result discarded, job was replaced",
				logger.String("filename", job.Filename))
			return err
		}
		if code, _ := chunk.CodeOf(err); code == chunk.ErrCancelled {
			logger.Info("translation cancelled", logger.String("filename", job.Filename))
			s.setStatus(PhaseIdle, 0, "translation cancelled")
			return err
		}
		s.setStatus(PhaseError, 0, err.Error())
		return err
	}

	// Commit only onto the job this translation started from. A job loaded
	// mid-flight owns its own chunk sequence and must not inherit results
	// from a discarded one.
	s.mu.Lock()
	if s.job != jobRef {
		s.mu.Unlock()
		logger.Info("translation result discarded, job was replaced",
			logger.String("filename", job.Filename))
		return nil
	}
	s.job.Chunks = translated
	s.job.SourceLang = opts.SourceLang
	s.mu.Unlock()

	s.setStatus(PhaseComplete, 100, "translation complete")
	return nil
}

// stillCurrent reports whether job is still the session's active job.
func (s *Session) stillCurrent(job *Job) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.job == job
}

// detectLanguage resolves the source language for a job, building the
// detector lazily. Detection is advisory and never fails the job.
func (s *Session) detectLanguage(ctx context.Context, chunks []chunk.Chunk) string {
	s.mu.Lock()
	detector := s.detector
	s.mu.Unlock()

	if detector == nil {
		cfg := s.cfg.Config()
		d, err := translate.NewDetector(ctx, translate.DetectorConfig{
			APIKey:  s.cfg.APIKey(),
			BaseURL: s.cfg.BaseURL(),
			Model:   cfg.TextModel,
		})
		if err != nil {
			logger.Warn("language detector unavailable, using default",
				logger.String("default", translate.DefaultSourceLanguage),
				logger.Err(err))
			return translate.DefaultSourceLanguage
		}
		s.mu.Lock()
		s.detector = d
		detector = d
		s.mu.Unlock()
	}

	return detector.Detect(ctx, chunks)
}

// Cancel aborts an in-flight translation. In-flight network calls are
// abandoned; the job keeps the state it had before Translate started.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancelFunc
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Reset discards the current job and returns the session to idle.
func (s *Session) Reset() {
	s.Cancel()
	s.mu.Lock()
	s.job = nil
	s.mu.Unlock()
	s.setStatus(PhaseIdle, 0, "")
}
