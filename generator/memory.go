package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MemoryStore persists memory notes.
type MemoryStore interface {
	SaveMemory(ctx context.Context, note MemoryNote) error
}

// MemoryRecorder 把已发布的博客压缩成一条记忆摘要，供之后的提示词参考。
type MemoryRecorder struct {
	llm    LLMClient
	store  MemoryStore
	model  string
	logger *zap.Logger
}

// NewMemoryRecorder builds a recorder. An empty model uses the client default.
func NewMemoryRecorder(llm LLMClient, store MemoryStore, model string, logger *zap.Logger) (*MemoryRecorder, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if store == nil {
		return nil, errors.New("memory store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryRecorder{llm: llm, store: store, model: model, logger: logger}, nil
}

// Record summarizes c, trims the summary to MemoryWordLimit words and stores
// it under the week starting at windowStart.
func (r *MemoryRecorder) Record(ctx context.Context, c GeneratedContent, windowStart time.Time) (MemoryNote, error) {
	prompt := BuildMemoryPrompt(c, windowStart)
	prompt.Model = r.model

	raw, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		return MemoryNote{}, fmt.Errorf("summarize post: %w", err)
	}
	summary, err := ParsePlainText(raw)
	if err != nil {
		return MemoryNote{}, err
	}
	if flat := PlainText(summary); flat != "" {
		summary = flat
	}

	note := MemoryNote{
		WeekStart:  windowStart.UnixMilli(),
		MemoryText: truncateWords(summary, MemoryWordLimit),
		Title:      c.Title,
	}
	if err := r.store.SaveMemory(ctx, note); err != nil {
		return MemoryNote{}, fmt.Errorf("save memory: %w", err)
	}
	r.logger.Debug("memory recorded",
		zap.Int64("week_start", note.WeekStart),
		zap.String("title", note.Title))
	return note, nil
}
