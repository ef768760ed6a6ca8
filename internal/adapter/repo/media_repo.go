package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shortreel/internal/domain"
	"shortreel/internal/infra"
)

// MediaRepositoryPG implements domain.MediaRepository on PostgreSQL.
type MediaRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewMediaRepository creates an uploaded-media repository backed by PostgreSQL.
func NewMediaRepository(pool *pgxpool.Pool) *MediaRepositoryPG {
	return &MediaRepositoryPG{pool: pool}
}

// Create inserts metadata for an uploaded narration file.
func (r *MediaRepositoryPG) Create(ctx context.Context, media domain.UploadedMedia) error {
	query := `
INSERT INTO uploaded_media (id, filename, duration)
VALUES ($1, $2, $3);
`
	_, err := r.pool.Exec(ctx, query, media.ID, media.Filename, media.Duration)
	return err
}

// Get fetches uploaded-media metadata by its generated identifier.
func (r *MediaRepositoryPG) Get(ctx context.Context, id string) (*domain.UploadedMedia, error) {
	query := `
SELECT id, filename, duration, created_at
FROM uploaded_media
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, id)
	var media domain.UploadedMedia
	if err := row.Scan(&media.ID, &media.Filename, &media.Duration, &media.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &media, nil
}
