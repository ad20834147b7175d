package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Tracker is the tracking API as the agents use it.
type Tracker interface {
	MemoryStore
	BestTracks(ctx context.Context, from, to time.Time, limit int) (TrackPage, error)
	RecentMemories(ctx context.Context, limit int) ([]MemoryNote, error)
	PublishBlog(ctx context.Context, post BlogPost) (json.RawMessage, error)
	PostTrackComment(ctx context.Context, trackID, comment string) error
	PostTrackBrief(ctx context.Context, trackID, brief string) error
}

// AgentConfig tunes the pipelines.
type AgentConfig struct {
	Author       string
	FetchLimit   int
	Highlights   int
	MemoryLimit  int
	MemoryModel  string
	MemoryStrict bool
	Links        Links
}

// DefaultAgentConfig mirrors the production weekly blog.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Author:      "Volandoo AI",
		FetchLimit:  12,
		Highlights:  6,
		MemoryLimit: 3,
		Links:       DefaultLinks,
	}
}

// Agent 负责拉取数据、生成提示词、校验模型输出并发布。
// 不保存任何单次运行的状态，同一个 Agent 可服务任意多次调用。
type Agent struct {
	llm    LLMClient
	api    Tracker
	memory *MemoryRecorder
	cfg    AgentConfig
	logger *zap.Logger
}

func NewAgent(llm LLMClient, api Tracker, cfg AgentConfig, logger *zap.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if api == nil {
		return nil, errors.New("tracking api client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	memory, err := NewMemoryRecorder(llm, api, cfg.MemoryModel, logger)
	if err != nil {
		return nil, err
	}
	return &Agent{llm: llm, api: api, memory: memory, cfg: cfg, logger: logger}, nil
}

// BlogOutcome reports a blog run. When the model output is rejected,
// Published is false and Message holds FallbackMessage.
type BlogOutcome struct {
	Published   bool
	Response    json.RawMessage
	Content     GeneratedContent
	Message     string
	Rejection   error
	Memory      *MemoryNote
	MemoryError error
}

// Window returns the reporting window for now: from the start of the day a
// week earlier to the end of today, in now's location.
func Window(now time.Time) (from, to time.Time) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	from = today.AddDate(0, 0, -7)
	to = today.AddDate(0, 0, 1).Add(-time.Millisecond)
	return from, to
}

// WriteBlog 生成并发布截至今天的周报博客，随后记录一条记忆摘要。
func (a *Agent) WriteBlog(ctx context.Context, now time.Time) (BlogOutcome, error) {
	from, to := Window(now)
	log := a.logger.With(zap.Time("from", from), zap.Time("to", to))

	page, err := a.api.BestTracks(ctx, from, to, a.cfg.FetchLimit)
	if err != nil {
		return BlogOutcome{}, fmt.Errorf("fetch best tracks: %w", err)
	}
	tracks := NormalizeAll(page.Tracks, a.cfg.Links)
	log.Info("tracks fetched",
		zap.Int("returned", len(page.Tracks)),
		zap.Int("normalized", len(tracks)),
		zap.Int("total", page.Total))

	var memories []string
	if a.cfg.MemoryLimit > 0 {
		notes, err := a.api.RecentMemories(ctx, a.cfg.MemoryLimit)
		if err != nil {
			return BlogOutcome{}, fmt.Errorf("fetch memories: %w", err)
		}
		for _, n := range notes {
			if n.MemoryText != "" {
				memories = append(memories, n.MemoryText)
			}
		}
	}

	prompt, err := BuildBlogPrompt(BlogInput{
		WindowStart: from,
		Total:       page.Total,
		Highlights:  a.cfg.Highlights,
		Tracks:      tracks,
		Memories:    memories,
	})
	if err != nil {
		return BlogOutcome{}, err
	}
	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return BlogOutcome{}, fmt.Errorf("generate blog: %w", err)
	}

	content, err := ParseBlogContent(raw)
	if err != nil {
		log.Warn("blog output rejected", zap.Error(err))
		return BlogOutcome{Message: FallbackMessage, Rejection: err}, nil
	}

	resp, err := a.api.PublishBlog(ctx, BlogPost{GeneratedContent: content, Author: a.cfg.Author})
	if err != nil {
		return BlogOutcome{}, fmt.Errorf("publish blog: %w", err)
	}
	log.Info("blog published", zap.String("title", content.Title))
	out := BlogOutcome{Published: true, Response: resp, Content: content}

	note, err := a.memory.Record(ctx, content, from)
	if err != nil {
		if a.cfg.MemoryStrict {
			return out, fmt.Errorf("record memory: %w", err)
		}
		log.Warn("memory not recorded", zap.Error(err))
		out.MemoryError = err
		return out, nil
	}
	out.Memory = &note
	return out, nil
}

// Reply is the response of the track and SMS agents.
type Reply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CommentTrack writes an AI comment for a finished track and posts it.
// Publish failures are returned as errors.
func (a *Agent) CommentTrack(ctx context.Context, t TrackSummary) (Reply, error) {
	if t.ID == "" {
		return Reply{}, errors.New("track id is required")
	}
	prompt, err := BuildTrackCommentPrompt(t)
	if err != nil {
		return Reply{}, err
	}
	text, ok, err := a.completeText(ctx, prompt)
	if err != nil || !ok {
		return Reply{Message: FallbackMessage}, err
	}
	if err := a.api.PostTrackComment(ctx, t.ID, text); err != nil {
		return Reply{}, fmt.Errorf("post comment: %w", err)
	}
	a.logger.Info("track comment posted", zap.String("track", t.ID))
	return Reply{Success: true, Message: text}, nil
}

// BriefTrack writes a short brief for a finished track and posts it. A
// failed post is reported in the reply rather than returned.
func (a *Agent) BriefTrack(ctx context.Context, t TrackSummary) (Reply, error) {
	if t.ID == "" {
		return Reply{}, errors.New("track id is required")
	}
	prompt, err := BuildTrackBriefPrompt(t)
	if err != nil {
		return Reply{}, err
	}
	text, ok, err := a.completeText(ctx, prompt)
	if err != nil || !ok {
		return Reply{Message: FallbackMessage}, err
	}
	if err := a.api.PostTrackBrief(ctx, t.ID, text); err != nil {
		a.logger.Warn("track brief not posted", zap.String("track", t.ID), zap.Error(err))
		return Reply{Success: false, Message: err.Error()}, nil
	}
	a.logger.Info("track brief posted", zap.String("track", t.ID))
	return Reply{Success: true, Message: text}, nil
}

// NoMessageReply answers an SMS trigger that carried no text.
const NoMessageReply = "Hello! Send a message to get a reply."

// ReplySMS answers a text message in plain text.
func (a *Agent) ReplySMS(ctx context.Context, text string) (Reply, error) {
	if text == "" {
		return Reply{Success: true, Message: NoMessageReply}, nil
	}
	out, ok, err := a.completeText(ctx, BuildSMSPrompt(text))
	if err != nil || !ok {
		return Reply{Message: FallbackMessage}, err
	}
	if flat := PlainText(out); flat != "" {
		out = flat
	}
	return Reply{Success: true, Message: out}, nil
}

// completeText 执行纯文本提示词；输出被拒绝时 ok 为 false。
func (a *Agent) completeText(ctx context.Context, prompt Prompt) (string, bool, error) {
	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return "", false, fmt.Errorf("generate text: %w", err)
	}
	text, err := ParsePlainText(raw)
	if err != nil {
		a.logger.Warn("text output rejected", zap.Error(err))
		return "", false, nil
	}
	return text, true, nil
}
