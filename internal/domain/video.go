package domain

import "time"

// VideoStatus enumerates the lifecycle states of a queued video.
type VideoStatus string

const (
	StatusProcessing VideoStatus = "processing"
	StatusReady      VideoStatus = "ready"
	StatusFailed     VideoStatus = "failed"
)

// Video is the persisted record of one render job. The persisted record is
// the durable source of truth; the queue's progress map is a cache only.
type Video struct {
	ID        string
	Status    VideoStatus
	Progress  int
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Orientation selects the output frame geometry.
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// Dimensions returns the target pixel size for the orientation.
func (o Orientation) Dimensions() (width, height int) {
	if o == OrientationLandscape {
		return 1920, 1080
	}
	return 1080, 1920
}

// RenderConfig carries the per-video presentation options supplied by the
// caller alongside the scene list.
type RenderConfig struct {
	PaddingBackMs   int64       `json:"paddingBack,omitempty"`
	Music           string      `json:"music,omitempty"`
	Orientation     Orientation `json:"orientation,omitempty"`
	CaptionPosition string      `json:"captionPosition,omitempty"`
	CaptionColor    string      `json:"captionBackgroundColor,omitempty"`
	Voice           string      `json:"voice,omitempty"`
	Language        string      `json:"language,omitempty"`
	MusicVolume     float64     `json:"musicVolume,omitempty"`
}

// UploadedMedia is the persisted metadata of a caller-provided narration
// file, keyed by a generated identifier.
type UploadedMedia struct {
	ID        string
	Filename  string
	Duration  float64
	CreatedAt time.Time
}
