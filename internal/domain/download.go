package domain

import "time"

// DownloadPhase representa los estados posibles de una transferencia
type DownloadPhase string

const (
	PhaseIdle           DownloadPhase = "idle"
	PhaseStreaming      DownloadPhase = "streaming"
	PhaseCompleted      DownloadPhase = "completed"
	PhaseFailedFallback DownloadPhase = "failed-fallback"
)

// DownloadState es la foto del estado de la sesión de descarga
type DownloadState struct {
	Phase         DownloadPhase
	ReceivedBytes int64
	TotalBytes    *int64 // nil si el servidor no anuncia el tamaño
}

// IsActive retorna true si hay bytes en vuelo
func (s DownloadState) IsActive() bool {
	return s.Phase == PhaseStreaming
}

// OutcomeStatus es el resultado terminal de una transferencia
type OutcomeStatus string

const (
	OutcomeCompleted        OutcomeStatus = "completed"
	OutcomeFallback         OutcomeStatus = "fallback-needed"
	OutcomeOpenedExternally OutcomeStatus = "opened-externally"
	OutcomeBlocked          OutcomeStatus = "blocked"
	OutcomeAbandoned        OutcomeStatus = "abandoned"
)

// DownloadOutcome es el único valor con el que termina una transferencia
type DownloadOutcome struct {
	Status   OutcomeStatus
	Path     string // archivo guardado, solo en OutcomeCompleted
	MIMEType string
	Bytes    int64

	// Notice es el aviso para el usuario cuando no hay más recuperación posible
	Notice string

	// Cause es el error del stream que disparó el fallback, si lo hubo
	Cause error

	// ResetAfter es la espera antes de volver a idle
	ResetAfter time.Duration
}

// IsSuccess retorna true para completado o apertura externa
func (o DownloadOutcome) IsSuccess() bool {
	return o.Status == OutcomeCompleted || o.Status == OutcomeOpenedExternally
}
