package downloader

import (
	"context"
	"errors"

	"github.com/elsanchez/linkgrab/internal/domain"
)

var (
	// ErrTransferInFlight indica que ya hay una transferencia en curso
	ErrTransferInFlight = errors.New("a download is already in progress")

	// ErrStreamStatus indica que el servidor de medios no entregó el archivo
	ErrStreamStatus = errors.New("media server returned non-success status")

	// ErrOpenBlocked indica que no se pudo abrir el navegador
	ErrOpenBlocked = errors.New("could not open media in browser")
)

// Opener abre una URL fuera del proceso, normalmente en el navegador
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Event es una actualización de progreso de una transferencia
type Event struct {
	Percent       int
	ReceivedBytes int64
	TotalBytes    *int64
	Phase         domain.DownloadPhase
}

// Transfer es una descarga en curso. Events se cierra cuando termina y
// Wait retorna el único resultado.
type Transfer struct {
	ID         string
	Generation uint64
	Media      domain.MediaDescriptor

	events  chan Event
	done    chan struct{}
	outcome domain.DownloadOutcome
}

func newTransfer(id string, gen uint64, media domain.MediaDescriptor) *Transfer {
	return &Transfer{
		ID:         id,
		Generation: gen,
		Media:      media,
		events:     make(chan Event, 1),
		done:       make(chan struct{}),
	}
}

// Events retorna el canal de progreso. Solo retiene el evento más reciente:
// un consumidor lento ve saltos pero nunca retrocesos.
func (t *Transfer) Events() <-chan Event {
	return t.events
}

// Done se cierra cuando el resultado está disponible
func (t *Transfer) Done() <-chan struct{} {
	return t.done
}

// Wait bloquea hasta el final de la transferencia
func (t *Transfer) Wait() domain.DownloadOutcome {
	<-t.done
	return t.outcome
}

// emit publica sin bloquear, reemplazando el evento pendiente si lo hay
func (t *Transfer) emit(ev Event) {
	for {
		select {
		case t.events <- ev:
			return
		default:
		}
		select {
		case <-t.events:
		default:
		}
	}
}

func (t *Transfer) finish(outcome domain.DownloadOutcome) {
	close(t.events)
	t.outcome = outcome
	close(t.done)
}
