package repository

import (
	"context"

	"github.com/elsanchez/linkgrab/internal/domain"
)

// HistoryRepository define las operaciones sobre el historial de la sesión
type HistoryRepository interface {
	Create(ctx context.Context, item *domain.HistoryItem) (string, error)
	GetRecent(ctx context.Context, limit int) ([]*domain.HistoryItem, error)
	Clear(ctx context.Context) error
	CountTotal(ctx context.Context) (int, error)
}
