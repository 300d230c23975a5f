package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/elsanchez/linkgrab/internal/domain"
)

const (
	defaultChunkSize = 32 * 1024

	// Progreso sin tamaño conocido: pasos fijos sin llegar a 100
	unknownSizeStep = 5
	unknownSizeCap  = 90

	resetAfterStream   = 2 * time.Second
	resetAfterFallback = 1500 * time.Millisecond
)

// Config contiene las opciones del motor de descargas
type Config struct {
	OutputDir  string
	FilePrefix string
	ChunkSize  int
	HTTPClient *http.Client
}

// Engine descarga medias al disco con progreso y fallback al navegador
type Engine struct {
	session    *Session
	opener     Opener
	httpClient *http.Client
	outputDir  string
	prefix     string
	chunkSize  int
	logger     *logrus.Logger
}

// NewEngine crea un motor atado a una sesión
func NewEngine(cfg Config, session *Session, opener Opener, logger *logrus.Logger) *Engine {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// sin timeout global: las descargas largas se cortan vía ctx
		httpClient = &http.Client{}
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	return &Engine{
		session:    session,
		opener:     opener,
		httpClient: httpClient,
		outputDir:  cfg.OutputDir,
		prefix:     cfg.FilePrefix,
		chunkSize:  chunkSize,
		logger:     logger,
	}
}

// Session retorna la sesión del motor
func (e *Engine) Session() *Session {
	return e.session
}

// Download arranca la transferencia de media. Si ya hay una en streaming
// retorna ErrTransferInFlight sin hacer nada.
func (e *Engine) Download(ctx context.Context, media domain.MediaDescriptor, title string) (*Transfer, error) {
	id := uuid.NewString()

	l, err := e.session.acquire(id)
	if err != nil {
		return nil, err
	}

	t := newTransfer(id, l.gen, media)
	go e.run(ctx, l, t, title)

	return t, nil
}

func (e *Engine) run(ctx context.Context, l *lease, t *Transfer, title string) {
	defer l.release()

	log := e.logger.WithFields(logrus.Fields{
		"transfer": t.ID,
		"kind":     t.Media.Kind,
		"quality":  t.Media.Quality,
	})

	outcome := e.stream(ctx, l, t, title, log)
	if outcome.Status == domain.OutcomeFallback {
		outcome = e.openExternally(ctx, t, outcome.Cause, log)
	}

	l.finish(phaseFor(outcome.Status))
	t.finish(outcome)

	log.WithField("status", outcome.Status).Info("Transfer finished")
}

// stream descarga el cuerpo. Cualquier fallo de transporte se marca como
// fallback para que run abra la URL externamente, sin reintentar.
func (e *Engine) stream(ctx context.Context, l *lease, t *Transfer, title string, log *logrus.Entry) domain.DownloadOutcome {
	media := t.Media

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, media.URL, nil)
	if err != nil {
		return fallbackNeeded(fmt.Errorf("create request: %w", err))
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return abandoned(ctx.Err())
		}
		return fallbackNeeded(fmt.Errorf("fetch media: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fallbackNeeded(fmt.Errorf("%w: %d", ErrStreamStatus, resp.StatusCode))
	}

	var total *int64
	if resp.ContentLength > 0 {
		size := resp.ContentLength
		total = &size
	}

	b, err := newBlob(e.outputDir)
	if err != nil {
		return fallbackNeeded(err)
	}
	defer b.Release()

	log.WithField("total", resp.ContentLength).Debug("Streaming media")

	progress := newProgressTracker(total)
	buf := make([]byte, e.chunkSize)
	var received int64

	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := b.Write(buf[:n]); werr != nil {
				return fallbackNeeded(fmt.Errorf("write temp file: %w", werr))
			}
			received += int64(n)
			l.progress(received, total)
			t.emit(Event{
				Percent:       progress.next(received),
				ReceivedBytes: received,
				TotalBytes:    total,
				Phase:         domain.PhaseStreaming,
			})
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			if ctx.Err() != nil {
				return abandoned(ctx.Err())
			}
			return fallbackNeeded(fmt.Errorf("read media: %w", rerr))
		}
	}

	path, err := b.Commit(FileName(e.prefix, title, media.Kind))
	if err != nil {
		return fallbackNeeded(err)
	}

	t.emit(Event{Percent: 100, ReceivedBytes: received, TotalBytes: total, Phase: domain.PhaseCompleted})
	log.WithField("path", path).Info("Media saved")

	return domain.DownloadOutcome{
		Status:     domain.OutcomeCompleted,
		Path:       path,
		MIMEType:   media.Kind.MIMEType(),
		Bytes:      received,
		ResetAfter: resetAfterStream,
	}
}

// openExternally es el camino de fallback: abrir la URL cruda en el navegador
func (e *Engine) openExternally(ctx context.Context, t *Transfer, cause error, log *logrus.Entry) domain.DownloadOutcome {
	log.WithError(cause).Warn("Streaming failed, opening media in browser")

	if ctx.Err() != nil {
		return abandoned(ctx.Err())
	}

	if err := e.opener.Open(ctx, t.Media.URL); err != nil {
		log.WithError(err).Error("Browser open blocked")
		return domain.DownloadOutcome{
			Status:   domain.OutcomeBlocked,
			MIMEType: t.Media.Kind.MIMEType(),
			Notice:   BlockedNotice(t.Media.URL),
			Cause:    errors.Join(cause, err),
		}
	}

	t.emit(Event{Percent: 100, Phase: domain.PhaseFailedFallback})

	return domain.DownloadOutcome{
		Status:     domain.OutcomeOpenedExternally,
		MIMEType:   t.Media.Kind.MIMEType(),
		Cause:      cause,
		ResetAfter: resetAfterFallback,
	}
}

// BlockedNotice es el aviso cuando tampoco se pudo abrir el navegador
func BlockedNotice(url string) string {
	return "Browser blocked! Open this link manually to download the file: " + url
}

func fallbackNeeded(cause error) domain.DownloadOutcome {
	return domain.DownloadOutcome{Status: domain.OutcomeFallback, Cause: cause}
}

func abandoned(cause error) domain.DownloadOutcome {
	return domain.DownloadOutcome{Status: domain.OutcomeAbandoned, Cause: cause}
}

func phaseFor(status domain.OutcomeStatus) domain.DownloadPhase {
	switch status {
	case domain.OutcomeCompleted:
		return domain.PhaseCompleted
	case domain.OutcomeOpenedExternally, domain.OutcomeBlocked:
		return domain.PhaseFailedFallback
	default:
		return domain.PhaseIdle
	}
}

// progressTracker calcula porcentajes monótonos
type progressTracker struct {
	total   *int64
	percent int
}

func newProgressTracker(total *int64) *progressTracker {
	return &progressTracker{total: total}
}

func (p *progressTracker) next(received int64) int {
	var pct int
	if p.total != nil && *p.total > 0 {
		pct = int(received * 100 / *p.total)
		if pct > 100 {
			pct = 100
		}
	} else {
		pct = p.percent + unknownSizeStep
		if pct > unknownSizeCap {
			pct = unknownSizeCap
		}
	}

	if pct > p.percent {
		p.percent = pct
	}
	return p.percent
}
