package music

import (
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testTracks() []Track {
	return []Track{
		{File: "music/calm1.mp3", Mood: "calm"},
		{File: "music/calm2.mp3", Mood: "calm"},
		{File: "music/epic1.mp3", Mood: "epic"},
	}
}

func testLibrary() *Library {
	return New(testTracks(), rand.New(rand.NewSource(1)))
}

func TestTagsSortedAndDistinct(t *testing.T) {
	tags := testLibrary().Tags()
	want := []string{"calm", "epic"}
	if !reflect.DeepEqual(tags, want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
}

func TestForMoodStaysInPool(t *testing.T) {
	lib := testLibrary()
	for i := 0; i < 20; i++ {
		track, err := lib.ForMood("calm")
		if err != nil {
			t.Fatalf("ForMood: %v", err)
		}
		if track.Mood != "calm" {
			t.Fatalf("picked %+v, want mood calm", track)
		}
	}
}

func TestForMoodUnknownFallsBack(t *testing.T) {
	track, err := testLibrary().ForMood("polka")
	if err != nil {
		t.Fatalf("ForMood: %v", err)
	}
	if track.File == "" {
		t.Fatalf("fallback returned an empty track")
	}
}

func TestForMoodEmptyLibraryErrors(t *testing.T) {
	lib := New(nil, rand.New(rand.NewSource(1)))
	if _, err := lib.ForMood("calm"); err == nil {
		t.Fatalf("expected error from empty library")
	}
}

func TestLoadManifest(t *testing.T) {
	manifest := `tracks:
  - file: music/sunny.mp3
    mood: happy
  - file: music/dark.mp3
    mood: dramatic
`
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	lib, err := Load(path, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"dramatic", "happy"}
	if got := lib.Tags(); !reflect.DeepEqual(got, want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), rand.New(rand.NewSource(1))); err == nil {
		t.Fatalf("expected error for missing manifest")
	}
}
