package domain

import "context"

// VideoRepository persists job status and progress keyed by video id.
// Writes are last-write-wins; no transactional guarantees are required.
type VideoRepository interface {
	Upsert(ctx context.Context, video Video) error
	Get(ctx context.Context, id string) (*Video, error)
	List(ctx context.Context) ([]Video, error)
	Delete(ctx context.Context, id string) error
}

// MediaRepository persists uploaded-narration metadata keyed by a
// generated identifier.
type MediaRepository interface {
	Create(ctx context.Context, media UploadedMedia) error
	Get(ctx context.Context, id string) (*UploadedMedia, error)
}
