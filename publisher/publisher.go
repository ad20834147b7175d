package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"track_agents/generator"
)

const (
	bestTracksPath = "/v1/tracks/best"
	blogPath       = "/v1/blog"
	memoryPath     = "/v1/blog/memory"
	trackPathFmt   = "/v1/tracks/%s/%s"

	secretHeader = "x-secret-key"
)

// APIError is returned for non-2xx responses from the tracking API.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

type bestTracksResp struct {
	Success bool                `json:"success"`
	Data    generator.TrackPage `json:"data"`
}

type memoriesResp struct {
	Data []generator.MemoryNote `json:"data"`
}

type commentPayload struct {
	Comment string `json:"comment"`
}

type briefPayload struct {
	Brief string `json:"brief"`
}

// Publisher reads tracks and memories from the tracking API and writes blog
// posts, memory notes, comments and briefs back to it.
type Publisher struct {
	cfg    APIConfig
	base   *url.URL
	client *http.Client
	logger *zap.Logger
}

// New creates a Publisher for cfg.API.
func New(cfg Config, client *http.Client, logger *zap.Logger) (*Publisher, error) {
	if cfg.API.BaseURL == "" || cfg.API.SecretKey == "" {
		return nil, errors.New("config must include api.base_url and api.secret_key")
	}
	base, err := url.Parse(strings.TrimRight(cfg.API.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api.base_url: %w", err)
	}
	if client == nil {
		timeout := cfg.API.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		cfg:    cfg.API,
		base:   base,
		client: client,
		logger: logger.Named("publisher"),
	}, nil
}

// BestTracks fetches the best tracks between from and to.
func (p *Publisher) BestTracks(ctx context.Context, from, to time.Time, limit int) (generator.TrackPage, error) {
	q := url.Values{}
	q.Set("from", strconv.FormatInt(from.UnixMilli(), 10))
	q.Set("to", strconv.FormatInt(to.UnixMilli(), 10))
	q.Set("limit", strconv.Itoa(limit))

	var data bestTracksResp
	if err := p.do(ctx, http.MethodGet, bestTracksPath, q, nil, &data); err != nil {
		return generator.TrackPage{}, err
	}
	p.logger.Debug("fetched best tracks",
		zap.Int("tracks", len(data.Data.Tracks)),
		zap.Int("total", data.Data.Total))
	return data.Data, nil
}

// RecentMemories fetches the most recent memory notes.
func (p *Publisher) RecentMemories(ctx context.Context, limit int) ([]generator.MemoryNote, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var data memoriesResp
	if err := p.do(ctx, http.MethodGet, memoryPath, q, nil, &data); err != nil {
		return nil, err
	}
	return data.Data, nil
}

// PublishBlog creates a blog post and returns the API response untouched.
func (p *Publisher) PublishBlog(ctx context.Context, post generator.BlogPost) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := p.do(ctx, http.MethodPost, blogPath, nil, post, &raw); err != nil {
		return nil, err
	}
	p.logger.Info("blog post created", zap.String("title", post.Title))
	return raw, nil
}

// SaveMemory stores a memory note.
func (p *Publisher) SaveMemory(ctx context.Context, note generator.MemoryNote) error {
	return p.do(ctx, http.MethodPost, memoryPath, nil, note, nil)
}

// PostTrackComment attaches an AI comment to a track.
func (p *Publisher) PostTrackComment(ctx context.Context, trackID, comment string) error {
	path := fmt.Sprintf(trackPathFmt, url.PathEscape(trackID), "ai")
	return p.do(ctx, http.MethodPost, path, nil, commentPayload{Comment: comment}, nil)
}

// PostTrackBrief attaches a brief to a track.
func (p *Publisher) PostTrackBrief(ctx context.Context, trackID, brief string) error {
	path := fmt.Sprintf(trackPathFmt, url.PathEscape(trackID), "brief")
	return p.do(ctx, http.MethodPost, path, nil, briefPayload{Brief: brief}, nil)
}

// do sends one request. in is JSON encoded when non-nil; out is decoded from
// the response body when non-nil.
func (p *Publisher) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	u := *p.base
	u.Path = p.base.Path + path
	if q != nil {
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set(secretHeader, p.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	p.logger.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(msg)),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
