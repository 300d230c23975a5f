package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elsanchez/linkgrab/internal/domain"
)

type fakeGenerator struct {
	text   string
	err    error
	prompt string
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

type failingLookup struct{}

func (failingLookup) Lookup(context.Context, string) ([]byte, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func newTestLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

type capturedRequest struct {
	mu     sync.Mutex
	method string
	header http.Header
	body   []byte
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()

	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		captured.mu.Lock()
		captured.method = r.Method
		captured.header = r.Header.Clone()
		captured.body = data
		captured.mu.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestClient_LookupSendsCredentials(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusOK, `{"medias":[]}`)

	c := NewClient(ClientConfig{Endpoint: srv.URL, APIKey: "secret", APIHost: "api.example"}, newTestLogger())
	raw, err := c.Lookup(context.Background(), "https://tiktok.com/x")
	require.NoError(t, err)
	assert.JSONEq(t, `{"medias":[]}`, string(raw))

	captured.mu.Lock()
	defer captured.mu.Unlock()
	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "application/json", captured.header.Get("Content-Type"))
	assert.Equal(t, "secret", captured.header.Get("x-rapidapi-key"))
	assert.Equal(t, "api.example", captured.header.Get("x-rapidapi-host"))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(captured.body, &payload))
	assert.Equal(t, "https://tiktok.com/x", payload["url"])
}

func TestClient_LookupNonSuccessStatus(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusTooManyRequests, `{"message":"quota"}`)

	c := NewClient(ClientConfig{Endpoint: srv.URL}, newTestLogger())
	_, err := c.Lookup(context.Background(), "https://x.com/a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLookupStatus)
}

func TestResolver_PrimarySuccess(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{
		"title": "Funny cat",
		"thumbnail": "https://cdn/thumb.jpg",
		"duration": 42,
		"platform": "youtube",
		"medias": [
			{"url": "https://cdn/audio.m4a", "quality": "audio", "type": "audio"},
			{"url": "https://cdn/360.mp4", "quality": "360p"},
			{"url": "https://cdn/1080.mp4", "quality": "hd_1080"}
		]
	}`)

	gen := &fakeGenerator{}
	r := New(
		NewClient(ClientConfig{Endpoint: srv.URL}, newTestLogger()),
		NewFallback(gen, newTestLogger()),
		newTestLogger(),
	)

	info, err := r.Resolve(context.Background(), "  https://www.instagram.com/reel/abc  ")
	require.NoError(t, err)

	assert.Equal(t, "Funny cat", info.Title)
	assert.Equal(t, domain.PlatformInstagram, info.Platform, "classifier beats response hint")
	assert.Equal(t, "https://cdn/thumb.jpg", info.Thumbnail)
	assert.Equal(t, "42s", info.Duration)
	assert.Equal(t, "https://www.instagram.com/reel/abc", info.OriginalURL)
	assert.Equal(t, domain.SourcePrimary, info.Source)
	require.Len(t, info.Medias, 3)
	assert.Equal(t, "https://cdn/1080.mp4", info.Medias[0].URL)
	assert.Equal(t, "https://cdn/360.mp4", info.Medias[1].URL)
	assert.Equal(t, domain.KindAudio, info.Medias[2].Kind)
	assert.Empty(t, gen.prompt, "fallback must not be called")
}

func TestResolver_PrimaryDefaults(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"medias":[{"url":"https://cdn/v.mp4"}]}`)

	r := New(NewClient(ClientConfig{Endpoint: srv.URL}, newTestLogger()), NewFallback(nil, newTestLogger()), newTestLogger())
	info, err := r.Resolve(context.Background(), "https://example.org/v")
	require.NoError(t, err)

	assert.Equal(t, defaultTitle, info.Title)
	assert.Equal(t, StockThumbnail, info.Thumbnail)
	assert.Equal(t, "HD", info.Duration)
	assert.Equal(t, domain.PlatformGeneric, info.Platform)
}

func TestResolver_NetworkErrorFallsBack(t *testing.T) {
	gen := &fakeGenerator{text: `{"title": "Dance trend", "platform": "TikTok"}`}
	r := New(failingLookup{}, NewFallback(gen, newTestLogger()), newTestLogger())

	info, err := r.Resolve(context.Background(), "https://tiktok.com/x")
	require.NoError(t, err)

	assert.Equal(t, domain.PlatformTikTok, info.Platform)
	assert.Empty(t, info.Medias)
	assert.Equal(t, "Dance trend", info.Title)
	assert.Equal(t, domain.SourceFallback, info.Source)
	assert.Contains(t, gen.prompt, "https://tiktok.com/x")
}

func TestResolver_NetworkErrorWithBrokenFallback(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	r := New(failingLookup{}, NewFallback(gen, newTestLogger()), newTestLogger())

	info, err := r.Resolve(context.Background(), "https://tiktok.com/x")
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformTikTok, info.Platform)
	assert.Empty(t, info.Medias)
	assert.Equal(t, placeholderTitle, info.Title)
}

func TestResolver_EmptyMediaFallsBack(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"title":"nothing here","medias":[]}`)

	gen := &fakeGenerator{text: `{"title": "Guessed", "platform": "Vimeo"}`}
	r := New(NewClient(ClientConfig{Endpoint: srv.URL}, newTestLogger()), NewFallback(gen, newTestLogger()), newTestLogger())

	info, err := r.Resolve(context.Background(), "https://unknown.example/v/1")
	require.NoError(t, err)
	assert.Equal(t, "Guessed", info.Title)
	assert.Equal(t, domain.PlatformVimeo, info.Platform, "hint is classified when the URL is generic")
	assert.Empty(t, info.Medias)
}

func TestResolver_ServerErrorFallsBack(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, `oops`)

	r := New(NewClient(ClientConfig{Endpoint: srv.URL}, newTestLogger()), NewFallback(nil, newTestLogger()), newTestLogger())
	info, err := r.Resolve(context.Background(), "https://www.reddit.com/r/a")
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformReddit, info.Platform)
	assert.Equal(t, placeholderTitle, info.Title)
}

func TestResolver_NoPrimaryConfigured(t *testing.T) {
	r := New(nil, NewFallback(nil, newTestLogger()), newTestLogger())
	info, err := r.Resolve(context.Background(), "https://example.org/a")
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformGeneric, info.Platform)
	assert.Empty(t, info.Medias)
}

func TestResolver_EmptyURL(t *testing.T) {
	r := New(failingLookup{}, NewFallback(nil, newTestLogger()), newTestLogger())

	for _, in := range []string{"", "   ", "\n\t"} {
		info, err := r.Resolve(context.Background(), in)
		assert.ErrorIs(t, err, ErrEmptyURL)
		assert.Nil(t, info)
	}
}
