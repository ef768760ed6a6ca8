package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shortreel/internal/domain"
	"shortreel/internal/infra"
)

// VideoRepositoryPG implements domain.VideoRepository on PostgreSQL.
// Writes are last-write-wins per video id, which is all the queue needs.
type VideoRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a video repository backed by PostgreSQL.
func NewVideoRepository(pool *pgxpool.Pool) *VideoRepositoryPG {
	return &VideoRepositoryPG{pool: pool}
}

// Upsert writes the full status record for a video id.
func (r *VideoRepositoryPG) Upsert(ctx context.Context, video domain.Video) error {
	query := `
INSERT INTO videos (id, status, progress, title)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET status = EXCLUDED.status,
    progress = EXCLUDED.progress,
    title = EXCLUDED.title,
    updated_at = NOW();
`
	_, err := r.pool.Exec(ctx, query, video.ID, video.Status, video.Progress, video.Title)
	return err
}

// Get fetches a video record by its identifier.
func (r *VideoRepositoryPG) Get(ctx context.Context, id string) (*domain.Video, error) {
	query := `
SELECT id, status, progress, title, created_at, updated_at
FROM videos
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, id)
	var video domain.Video
	if err := row.Scan(
		&video.ID,
		&video.Status,
		&video.Progress,
		&video.Title,
		&video.CreatedAt,
		&video.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// List returns every video record, newest first.
func (r *VideoRepositoryPG) List(ctx context.Context) ([]domain.Video, error) {
	query := `
SELECT id, status, progress, title, created_at, updated_at
FROM videos
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []domain.Video
	for rows.Next() {
		var video domain.Video
		if err := rows.Scan(
			&video.ID,
			&video.Status,
			&video.Progress,
			&video.Title,
			&video.CreatedAt,
			&video.UpdatedAt,
		); err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// Delete removes a video record. Deleting an absent id is not an error.
func (r *VideoRepositoryPG) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1;`, id)
	return err
}
