package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/elsanchez/linkgrab/internal/domain"
	"github.com/elsanchez/linkgrab/internal/repository"
)

// HistoryRepository implementa repository.HistoryRepository usando SQLite
type HistoryRepository struct {
	db *sqlx.DB
}

// Compiletime check: asegura que implementa la interfaz
var _ repository.HistoryRepository = (*HistoryRepository)(nil)

// NewHistoryRepository crea un nuevo repositorio de historial
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// historyRow mapea la tabla SQL a struct Go
type historyRow struct {
	ID        string         `db:"id"`
	Title     string         `db:"title"`
	URL       string         `db:"url"`
	Platform  string         `db:"platform"`
	Quality   sql.NullString `db:"quality"`
	Thumbnail sql.NullString `db:"thumbnail"`
	CreatedAt int64          `db:"created_at"` // unix millis
}

// Create inserta un item y retorna su ID. Si el item no trae ID ni
// timestamp se generan aquí.
func (r *HistoryRepository) Create(ctx context.Context, item *domain.HistoryItem) (string, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}

	query := `
		INSERT INTO history (id, title, url, platform, quality, thumbnail, created_at)
		VALUES (:id, :title, :url, :platform, :quality, :thumbnail, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":         item.ID,
		"title":      item.Title,
		"url":        item.URL,
		"platform":   item.Platform,
		"quality":    item.Quality,
		"thumbnail":  item.Thumbnail,
		"created_at": item.Timestamp.UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("insert history item: %w", err)
	}

	return item.ID, nil
}

// GetRecent obtiene los items más recientes primero
func (r *HistoryRepository) GetRecent(ctx context.Context, limit int) ([]*domain.HistoryItem, error) {
	var rows []historyRow

	query := `
		SELECT * FROM history
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("get recent history: %w", err)
	}

	items := make([]*domain.HistoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, &domain.HistoryItem{
			ID:        row.ID,
			Title:     row.Title,
			URL:       row.URL,
			Platform:  row.Platform,
			Quality:   row.Quality.String,
			Thumbnail: row.Thumbnail.String,
			Timestamp: time.UnixMilli(row.CreatedAt),
		})
	}

	return items, nil
}

// Clear borra todo el historial
func (r *HistoryRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM history`)
	return err
}

// CountTotal cuenta todos los items
func (r *HistoryRepository) CountTotal(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM history`
	err := r.db.GetContext(ctx, &count, query)
	return count, err
}
