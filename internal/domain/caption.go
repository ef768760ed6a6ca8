package domain

// Caption is one caption unit, timed relative to its owning segment.
// Captions are ordered ascending by StartMs and never overlap.
type Caption struct {
	Text    string `json:"text"`
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
}

// TranscriptToken is a sub-word token emitted by the transcription engine.
type TranscriptToken struct {
	Text   string
	FromMs int64
	ToMs   int64
}

// TranscriptRecord is one transcription span with its token decomposition.
type TranscriptRecord struct {
	Text   string
	FromMs int64
	ToMs   int64
	Tokens []TranscriptToken
}
