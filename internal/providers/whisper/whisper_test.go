package whisper

import "testing"

const sampleOutput = `{
  "systeminfo": "AVX = 1",
  "model": {"type": "base"},
  "result": {"language": "en"},
  "transcription": [
    {
      "timestamps": {"from": "00:00:00,000", "to": "00:00:02,400"},
      "offsets": {"from": 0, "to": 2400},
      "text": " Hello world.",
      "tokens": [
        {"text": "[_BEG_]", "offsets": {"from": 0, "to": 0}},
        {"text": " Hello", "offsets": {"from": 0, "to": 1100}},
        {"text": " world", "offsets": {"from": 1100, "to": 2100}},
        {"text": ".", "offsets": {"from": 2100, "to": 2400}}
      ]
    },
    {
      "offsets": {"from": 2900, "to": 4200},
      "text": " Goodbye.",
      "tokens": [
        {"text": " Goodbye.", "offsets": {"from": 2900, "to": 4200}}
      ]
    }
  ]
}`

func TestParseTranscript(t *testing.T) {
	records, err := ParseTranscript([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("ParseTranscript: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	first := records[0]
	if first.Text != " Hello world." {
		t.Fatalf("text = %q", first.Text)
	}
	if first.FromMs != 0 || first.ToMs != 2400 {
		t.Fatalf("offsets = [%d, %d], want [0, 2400]", first.FromMs, first.ToMs)
	}
	if len(first.Tokens) != 4 {
		t.Fatalf("tokens = %d, want 4 (control tokens included verbatim)", len(first.Tokens))
	}
	if first.Tokens[1].Text != " Hello" || first.Tokens[1].ToMs != 1100 {
		t.Fatalf("token = %+v", first.Tokens[1])
	}

	second := records[1]
	if second.FromMs != 2900 || len(second.Tokens) != 1 {
		t.Fatalf("second record = %+v", second)
	}
}

func TestParseTranscriptMissingArray(t *testing.T) {
	if _, err := ParseTranscript([]byte(`{"result": {}}`)); err == nil {
		t.Fatalf("expected error for output without transcription array")
	}
}

func TestParseTranscriptEmptyArray(t *testing.T) {
	records, err := ParseTranscript([]byte(`{"transcription": []}`))
	if err != nil {
		t.Fatalf("ParseTranscript: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %d, want 0", len(records))
	}
}
