package domain

// SegmentAudio references the narration slice backing one segment.
type SegmentAudio struct {
	URL      string  `json:"url"`
	Duration float64 `json:"duration"`
}

// Segment is one renderable unit of the final composition: a visual
// background, its narration audio and the captions burned over it.
type Segment struct {
	Captions []Caption    `json:"captions"`
	VideoURL string       `json:"video"`
	IsImage  bool         `json:"isImage,omitempty"`
	Audio    SegmentAudio `json:"audio"`
}
