package downloader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elsanchez/linkgrab/internal/domain"
)

type fakeOpener struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (f *fakeOpener) Open(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	return f.err
}

func (f *fakeOpener) opened() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

func newTestLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func newTestEngine(t *testing.T, opener Opener) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	e := NewEngine(Config{OutputDir: dir, FilePrefix: "linkgrab_", ChunkSize: 1024}, NewSession(), opener, newTestLogger())
	return e, dir
}

// collect consume los eventos hasta que el canal se cierra
func collect(t *testing.T, tr *Transfer) ([]Event, domain.DownloadOutcome) {
	t.Helper()

	var events []Event
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-tr.Events():
			if !ok {
				return events, tr.Wait()
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("transfer did not finish")
		}
	}
}

func assertMonotonic(t *testing.T, events []Event) {
	t.Helper()
	prev := 0
	for _, ev := range events {
		assert.GreaterOrEqual(t, ev.Percent, prev, "progress went backwards")
		assert.GreaterOrEqual(t, ev.Percent, 0)
		assert.LessOrEqual(t, ev.Percent, 100)
		prev = ev.Percent
	}
}

func TestEngine_KnownSizeDownload(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 64*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		for i := 0; i < len(payload); i += 4096 {
			_, _ = w.Write(payload[i : i+4096])
			w.(http.Flusher).Flush()
		}
	}))
	defer srv.Close()

	opener := &fakeOpener{}
	e, dir := newTestEngine(t, opener)

	media := domain.MediaDescriptor{URL: srv.URL + "/v.mp4", Quality: "720p HD", Kind: domain.KindVideo}
	tr, err := e.Download(context.Background(), media, "My Cool Video!")
	require.NoError(t, err)

	events, outcome := collect(t, tr)
	require.NotEmpty(t, events)
	assertMonotonic(t, events)
	assert.Equal(t, 100, events[len(events)-1].Percent)

	assert.Equal(t, domain.OutcomeCompleted, outcome.Status)
	assert.Equal(t, "video/mp4", outcome.MIMEType)
	assert.Equal(t, int64(len(payload)), outcome.Bytes)
	assert.Equal(t, 2*time.Second, outcome.ResetAfter)
	assert.Equal(t, filepath.Join(dir, "linkgrab_My_Cool_Video_.mp4"), outcome.Path)

	data, err := os.ReadFile(outcome.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	// el temporal fue liberado
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Empty(t, opener.opened())
	assert.Equal(t, domain.PhaseCompleted, e.Session().State().Phase)
}

func TestEngine_UnknownSizeProgressCapsAt90(t *testing.T) {
	chunk := bytes.Repeat([]byte("a"), 512)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 40; i++ {
			_, _ = w.Write(chunk)
			w.(http.Flusher).Flush()
		}
	}))
	defer srv.Close()

	e, _ := newTestEngine(t, &fakeOpener{})
	media := domain.MediaDescriptor{URL: srv.URL, Quality: "320kbps Audio", Kind: domain.KindAudio}
	tr, err := e.Download(context.Background(), media, "song")
	require.NoError(t, err)

	events, outcome := collect(t, tr)
	require.NotEmpty(t, events)
	assertMonotonic(t, events)

	for _, ev := range events[:len(events)-1] {
		assert.LessOrEqual(t, ev.Percent, 90)
		assert.Nil(t, ev.TotalBytes)
	}
	assert.Equal(t, 100, events[len(events)-1].Percent)

	assert.Equal(t, domain.OutcomeCompleted, outcome.Status)
	assert.Equal(t, "audio/mpeg", outcome.MIMEType)
	assert.Equal(t, ".mp3", filepath.Ext(outcome.Path))
}

func TestEngine_ServerErrorOpensExternally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	opener := &fakeOpener{}
	e, dir := newTestEngine(t, opener)

	media := domain.MediaDescriptor{URL: srv.URL + "/blocked.mp4", Kind: domain.KindVideo}
	tr, err := e.Download(context.Background(), media, "x")
	require.NoError(t, err)

	_, outcome := collect(t, tr)
	assert.Equal(t, domain.OutcomeOpenedExternally, outcome.Status)
	assert.ErrorIs(t, outcome.Cause, ErrStreamStatus)
	assert.Equal(t, 1500*time.Millisecond, outcome.ResetAfter)
	assert.Equal(t, []string{media.URL}, opener.opened())
	assert.Equal(t, domain.PhaseFailedFallback, e.Session().State().Phase)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEngine_TransportErrorAndBlockedOpener(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL + "/gone.mp4"
	srv.Close()

	opener := &fakeOpener{err: ErrOpenBlocked}
	e, _ := newTestEngine(t, opener)

	media := domain.MediaDescriptor{URL: url, Kind: domain.KindVideo}
	tr, err := e.Download(context.Background(), media, "x")
	require.NoError(t, err)

	_, outcome := collect(t, tr)
	assert.Equal(t, domain.OutcomeBlocked, outcome.Status)
	assert.Contains(t, outcome.Notice, url)
	assert.ErrorIs(t, outcome.Cause, ErrOpenBlocked)
	assert.False(t, outcome.IsSuccess())
	assert.Equal(t, []string{url}, opener.opened())

	// el flag quedó liberado: se puede iniciar otra transferencia
	state := e.Session().State()
	assert.False(t, state.IsActive())

	tr2, err := e.Download(context.Background(), media, "x")
	require.NoError(t, err)
	tr2.Wait()
}

func TestEngine_SecondDownloadIsNoOp(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write([]byte("data"))
	}))
	defer srv.Close()

	e, _ := newTestEngine(t, &fakeOpener{})
	media := domain.MediaDescriptor{URL: srv.URL, Kind: domain.KindVideo}

	first, err := e.Download(context.Background(), media, "one")
	require.NoError(t, err)
	assert.True(t, e.Session().State().IsActive())

	second, err := e.Download(context.Background(), media, "two")
	assert.ErrorIs(t, err, ErrTransferInFlight)
	assert.Nil(t, second)

	close(release)
	outcome := first.Wait()
	assert.Equal(t, domain.OutcomeCompleted, outcome.Status)
	assert.Equal(t, "linkgrab_one.mp4", filepath.Base(outcome.Path))
}

func TestEngine_CancelAbandonsWithoutFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100000")
		_, _ = w.Write(bytes.Repeat([]byte("z"), 1000))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	opener := &fakeOpener{}
	e, dir := newTestEngine(t, opener)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr, err := e.Download(ctx, domain.MediaDescriptor{URL: srv.URL, Kind: domain.KindVideo}, "slow")
	require.NoError(t, err)

	select {
	case <-tr.Events():
	case <-time.After(5 * time.Second):
		t.Fatal("no progress received")
	}
	cancel()

	outcome := tr.Wait()
	assert.Equal(t, domain.OutcomeAbandoned, outcome.Status)
	assert.True(t, errors.Is(outcome.Cause, context.Canceled))
	assert.Empty(t, opener.opened())
	assert.Equal(t, domain.PhaseIdle, e.Session().State().Phase)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be removed")
}

func TestEngine_ResetDuringTransferDiscardsResult(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	e, _ := newTestEngine(t, &fakeOpener{})
	tr, err := e.Download(context.Background(), domain.MediaDescriptor{URL: srv.URL, Kind: domain.KindVideo}, "late")
	require.NoError(t, err)

	e.Session().Reset()
	assert.True(t, e.Session().Stale(tr.Generation))

	close(release)
	tr.Wait()

	// el resultado tardío no resucita el estado
	assert.Equal(t, domain.PhaseIdle, e.Session().State().Phase)
}

func TestProgressTracker(t *testing.T) {
	total := int64(1000)
	known := newProgressTracker(&total)
	assert.Equal(t, 0, known.next(9))
	assert.Equal(t, 33, known.next(333))
	assert.Equal(t, 100, known.next(1000))
	assert.Equal(t, 100, known.next(2000), "clamped")

	unknown := newProgressTracker(nil)
	var last int
	for i := 0; i < 30; i++ {
		last = unknown.next(int64(i))
	}
	assert.Equal(t, 90, last)
}
