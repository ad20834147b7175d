package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"track_agents/generator"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Secret string
	Body   string
}

// newTestPublisher starts a fake tracking API answering with handler and
// returns a Publisher pointed at it plus the requests it saw.
func newTestPublisher(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Publisher, *[]recordedRequest) {
	t.Helper()

	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Secret: r.Header.Get("x-secret-key"),
			Body:   string(body),
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := Config{API: APIConfig{BaseURL: srv.URL + "/", SecretKey: "s3cret"}}
	p, err := New(cfg, srv.Client(), nil)
	require.NoError(t, err)
	return p, &seen
}

func TestBestTracks(t *testing.T) {
	p, seen := newTestPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"total": 42,
				"date": "2025-06-24",
				"tracks": [{
					"id": "trk1",
					"pilot": {"id": "p1", "name": "Jane", "username": "jane"},
					"started": 1000, "ended": 5000,
					"hikes": [{"id": "h1", "distance": 2.5, "gain": 300, "started": 0, "ended": 1}],
					"flights": [{"id": "f1", "distance": 40, "score": 50, "type": "xc", "started": 1, "ended": 2, "site": {"id": 7, "name": "annecy"}}],
					"wing": "Zeno", "mode": "h&f", "comments": 3, "likes": 9,
					"atGoal": 0, "wpts": 0, "thermalCount": 12
				}]
			}
		}`))
	})

	from := time.UnixMilli(1_718_000_000_000)
	to := time.UnixMilli(1_718_600_000_000)
	page, err := p.BestTracks(context.Background(), from, to, 12)
	require.NoError(t, err)

	require.Equal(t, 42, page.Total)
	require.Len(t, page.Tracks, 1)
	track := page.Tracks[0]
	require.Equal(t, "trk1", track.ID)
	require.Equal(t, "Jane", track.Pilot.Name)
	require.Equal(t, generator.ModeHikeAndFly, track.Mode)
	require.Equal(t, 12, track.ThermalCount)
	require.Equal(t, "annecy", track.Flights[0].Site.Name)
	require.Equal(t, 2.5, track.Hikes[0].Distance)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	require.Equal(t, http.MethodGet, req.Method)
	require.Equal(t, "/v1/tracks/best", req.Path)
	require.Equal(t, "from=1718000000000&limit=12&to=1718600000000", req.Query)
	require.Equal(t, "s3cret", req.Secret)
}

func TestRecentMemories(t *testing.T) {
	p, seen := newTestPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"memory_text": "one"}, {"memory_text": "two"}]}`))
	})

	notes, err := p.RecentMemories(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, []generator.MemoryNote{{MemoryText: "one"}, {MemoryText: "two"}}, notes)
	require.Equal(t, "/v1/blog/memory", (*seen)[0].Path)
	require.Equal(t, "limit=3", (*seen)[0].Query)
}

func TestWrites(t *testing.T) {
	p, seen := newTestPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/blog" {
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":"b1"}}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	resp, err := p.PublishBlog(ctx, generator.BlogPost{
		GeneratedContent: generator.GeneratedContent{Title: "T", Brief: "B", Content: "C", Image: "I"},
		Author:           "Volandoo AI",
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"success":true,"data":{"id":"b1"}}`, string(resp))

	require.NoError(t, p.SaveMemory(ctx, generator.MemoryNote{WeekStart: 99, MemoryText: "m", Title: "T"}))
	require.NoError(t, p.PostTrackComment(ctx, "trk1", "nice"))
	require.NoError(t, p.PostTrackBrief(ctx, "trk1", "short"))

	want := []struct {
		path string
		body string
	}{
		{"/v1/blog", `{"title":"T","brief":"B","content":"C","image":"I","author":"Volandoo AI"}`},
		{"/v1/blog/memory", `{"week_start":99,"memory_text":"m","title":"T"}`},
		{"/v1/tracks/trk1/ai", `{"comment":"nice"}`},
		{"/v1/tracks/trk1/brief", `{"brief":"short"}`},
	}
	require.Len(t, *seen, len(want))
	for i, w := range want {
		got := (*seen)[i]
		assert.Equal(t, http.MethodPost, got.Method)
		assert.Equal(t, w.path, got.Path)
		assert.Equal(t, "s3cret", got.Secret)
		assert.JSONEq(t, w.body, got.Body)
	}
}

func TestAPIError(t *testing.T) {
	p, _ := newTestPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad secret", http.StatusUnauthorized)
	})

	_, err := p.BestTracks(context.Background(), time.Now(), time.Now(), 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "/v1/tracks/best", apiErr.Path)
	require.Equal(t, "bad secret", apiErr.Body)

	err = p.PostTrackBrief(context.Background(), "trk1", "x")
	require.ErrorAs(t, err, &apiErr)
}

func TestMalformedResponse(t *testing.T) {
	p, _ := newTestPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"tracks": "nope"}}`))
	})

	_, err := p.BestTracks(context.Background(), time.Now(), time.Now(), 1)
	require.ErrorContains(t, err, "decode response")
}

func TestPublisherSatisfiesTracker(t *testing.T) {
	var _ generator.Tracker = (*Publisher)(nil)

	_, err := New(Config{}, nil, nil)
	require.Error(t, err)

	raw, err := json.Marshal(generator.BlogPost{Author: "a"})
	require.NoError(t, err)
	require.Contains(t, string(raw), `"author":"a"`)
}
