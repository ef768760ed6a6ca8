package domain

// ClipFile is one encoded variant of a catalog clip.
type ClipFile struct {
	Quality string
	Width   int
	Height  int
	Link    string
}

// ClipCandidate is a catalog search result before selection.
type ClipCandidate struct {
	ID       int64
	Duration float64
	FPS      float64
	Files    []ClipFile
}

// ClipDescriptor is a selected background clip ready for composition.
type ClipDescriptor struct {
	ID     int64
	URL    string
	Width  int
	Height int
}
