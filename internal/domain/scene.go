package domain

import "fmt"

// NarrationKind discriminates where a scene's narration audio comes from.
type NarrationKind int

const (
	NarrationSynthesized NarrationKind = iota
	NarrationUploaded
)

// VisualKind discriminates how a scene's background visual is obtained.
type VisualKind int

const (
	VisualSearched VisualKind = iota
	VisualStaticImage
)

// Scene is one entry of a video request. Exactly one narration source
// (Text or AudioID) and exactly one visual source (SearchTerms or ImageID)
// must be set.
type Scene struct {
	Text        string   `json:"text,omitempty"`
	AudioID     string   `json:"audioId,omitempty"`
	SearchTerms []string `json:"searchTerms,omitempty"`
	ImageID     string   `json:"imageId,omitempty"`
}

// Validate enforces the narration and visual XOR invariants.
func (s Scene) Validate() error {
	hasText := s.Text != ""
	hasAudio := s.AudioID != ""
	if hasText == hasAudio {
		return fmt.Errorf("%w: exactly one of text or audioId is required", ErrInvalidScene)
	}
	hasTerms := len(s.SearchTerms) > 0
	hasImage := s.ImageID != ""
	if hasTerms == hasImage {
		return fmt.Errorf("%w: exactly one of searchTerms or imageId is required", ErrInvalidScene)
	}
	return nil
}

// Narration reports the scene's narration source. The scene must have been
// validated first.
func (s Scene) Narration() NarrationKind {
	if s.AudioID != "" {
		return NarrationUploaded
	}
	return NarrationSynthesized
}

// Visual reports the scene's visual source. The scene must have been
// validated first.
func (s Scene) Visual() VisualKind {
	if s.ImageID != "" {
		return VisualStaticImage
	}
	return VisualSearched
}
