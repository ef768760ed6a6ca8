package creator

import (
	"reflect"
	"testing"

	"shortreel/internal/domain"
)

func record(tokens ...domain.TranscriptToken) domain.TranscriptRecord {
	return domain.TranscriptRecord{Tokens: tokens}
}

func TestAlignCaptionsDropsControlTokens(t *testing.T) {
	records := []domain.TranscriptRecord{
		record(
			domain.TranscriptToken{Text: "[_BEG_]", FromMs: 0, ToMs: 0},
			domain.TranscriptToken{Text: " Hello", FromMs: 0, ToMs: 400},
			domain.TranscriptToken{Text: "[_TT_42]", FromMs: 400, ToMs: 400},
			domain.TranscriptToken{Text: " world", FromMs: 400, ToMs: 900},
		),
	}

	captions := AlignCaptions(records, 10)
	if len(captions) != 2 {
		t.Fatalf("captions = %d, want 2", len(captions))
	}
	if captions[0].Text != "Hello" || captions[1].Text != "world" {
		t.Fatalf("texts = %q, %q", captions[0].Text, captions[1].Text)
	}
}

func TestAlignCaptionsMergesSplitWords(t *testing.T) {
	records := []domain.TranscriptRecord{
		record(
			domain.TranscriptToken{Text: " extra", FromMs: 0, ToMs: 300},
			domain.TranscriptToken{Text: "ordinary", FromMs: 300, ToMs: 700},
			domain.TranscriptToken{Text: " day", FromMs: 750, ToMs: 1000},
		),
	}

	captions := AlignCaptions(records, 10)
	want := []domain.Caption{
		{Text: "extraordinary", StartMs: 0, EndMs: 700},
		{Text: "day", StartMs: 750, EndMs: 1000},
	}
	if !reflect.DeepEqual(captions, want) {
		t.Fatalf("captions = %+v, want %+v", captions, want)
	}
}

func TestAlignCaptionsNoMergeAfterTrailingSpace(t *testing.T) {
	records := []domain.TranscriptRecord{
		record(
			domain.TranscriptToken{Text: " one ", FromMs: 0, ToMs: 300},
			domain.TranscriptToken{Text: "two", FromMs: 300, ToMs: 600},
		),
	}

	captions := AlignCaptions(records, 10)
	if len(captions) != 2 {
		t.Fatalf("captions = %d, want 2 (previous token already complete)", len(captions))
	}
	if captions[0].Text != "one" || captions[1].Text != "two" {
		t.Fatalf("texts = %q, %q", captions[0].Text, captions[1].Text)
	}
}

func TestAlignCaptionsClampsToAudioDuration(t *testing.T) {
	records := []domain.TranscriptRecord{
		record(
			domain.TranscriptToken{Text: " end", FromMs: 4800, ToMs: 5600},
		),
	}

	captions := AlignCaptions(records, 5)
	if len(captions) != 1 {
		t.Fatalf("captions = %d, want 1", len(captions))
	}
	if captions[0].EndMs != 5000 {
		t.Fatalf("EndMs = %d, want 5000", captions[0].EndMs)
	}
	if captions[0].StartMs != 4800 {
		t.Fatalf("StartMs = %d, want 4800", captions[0].StartMs)
	}
}

func TestAlignCaptionsMonotonicTimestamps(t *testing.T) {
	records := []domain.TranscriptRecord{
		record(
			domain.TranscriptToken{Text: " a", FromMs: 0, ToMs: 200},
			domain.TranscriptToken{Text: " b", FromMs: 250, ToMs: 500},
			domain.TranscriptToken{Text: "c", FromMs: 500, ToMs: 800},
			domain.TranscriptToken{Text: " d", FromMs: 900, ToMs: 1200},
		),
	}

	captions := AlignCaptions(records, 10)
	for i := 1; i < len(captions); i++ {
		if captions[i].StartMs < captions[i-1].EndMs {
			t.Fatalf("caption %d starts at %d before previous ends at %d",
				i, captions[i].StartMs, captions[i-1].EndMs)
		}
	}
	for i, c := range captions {
		if c.StartMs > c.EndMs {
			t.Fatalf("caption %d has StartMs %d > EndMs %d", i, c.StartMs, c.EndMs)
		}
	}
}

func TestRebaseCaptionsWindow(t *testing.T) {
	captions := []domain.Caption{
		{Text: "before", StartMs: 1000, EndMs: 2000},
		{Text: "spans", StartMs: 4500, EndMs: 5500},
		{Text: "inside", StartMs: 6000, EndMs: 7000},
		{Text: "after", StartMs: 11000, EndMs: 12000},
	}

	out := RebaseCaptions(captions, 5, 10)
	want := []domain.Caption{
		{Text: "spans", StartMs: 0, EndMs: 500},
		{Text: "inside", StartMs: 1000, EndMs: 2000},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("rebased = %+v, want %+v", out, want)
	}
}

func TestRebaseCaptionsClampsTail(t *testing.T) {
	captions := []domain.Caption{
		{Text: "tail", StartMs: 9500, EndMs: 10800},
	}

	out := RebaseCaptions(captions, 5, 10)
	if len(out) != 1 {
		t.Fatalf("rebased = %d, want 1", len(out))
	}
	if out[0].StartMs != 4500 || out[0].EndMs != 5000 {
		t.Fatalf("window = [%d, %d], want [4500, 5000]", out[0].StartMs, out[0].EndMs)
	}
}
