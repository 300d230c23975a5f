package downloader

import (
	"sync"

	"github.com/elsanchez/linkgrab/internal/domain"
)

// Session es el token de estado compartido por todas las descargas de una
// misma pantalla. Solo un dueño puede estar en streaming a la vez.
type Session struct {
	mu       sync.Mutex
	phase    domain.DownloadPhase
	owner    string
	gen      uint64
	received int64
	total    *int64
}

// NewSession crea una sesión en idle
func NewSession() *Session {
	return &Session{phase: domain.PhaseIdle}
}

// lease es la posesión del token por una transferencia
type lease struct {
	s     *Session
	owner string
	gen   uint64
}

func (s *Session) acquire(owner string) (*lease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == domain.PhaseStreaming {
		return nil, ErrTransferInFlight
	}

	s.phase = domain.PhaseStreaming
	s.owner = owner
	s.received = 0
	s.total = nil

	return &lease{s: s, owner: owner, gen: s.gen}, nil
}

// State retorna una copia del estado actual
func (s *Session) State() domain.DownloadState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.DownloadState{
		Phase:         s.phase,
		ReceivedBytes: s.received,
		TotalBytes:    s.total,
	}
}

// Generation identifica la búsqueda actual. Cambia con cada Reset.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Stale retorna true si gen pertenece a una búsqueda ya descartada
func (s *Session) Stale(gen uint64) bool {
	return s.Generation() != gen
}

// Reset descarta la búsqueda actual. Una transferencia en curso sigue
// teniendo el token hasta terminar, pero su resultado queda obsoleto.
func (s *Session) Reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resetLocked()
}

// ResetIf resetea solo si nadie empezó otra búsqueda desde gen
func (s *Session) ResetIf(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen || s.phase == domain.PhaseStreaming {
		return false
	}
	s.resetLocked()
	return true
}

func (s *Session) resetLocked() uint64 {
	s.gen++
	if s.phase != domain.PhaseStreaming {
		s.phase = domain.PhaseIdle
		s.received = 0
		s.total = nil
	}
	return s.gen
}

func (l *lease) progress(received int64, total *int64) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	if l.s.owner != l.owner {
		return
	}
	l.s.received = received
	l.s.total = total
}

// finish deja el estado terminal. Si la búsqueda fue reseteada mientras
// tanto, la sesión vuelve a idle en lugar de mostrar un resultado viejo.
func (l *lease) finish(phase domain.DownloadPhase) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	if l.s.owner != l.owner {
		return
	}
	l.s.owner = ""
	if l.s.gen != l.gen {
		phase = domain.PhaseIdle
	}
	l.s.phase = phase
}

// release libera el token si finish no llegó a ejecutarse
func (l *lease) release() {
	l.finish(domain.PhaseIdle)
}
