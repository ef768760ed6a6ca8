// Package music selects mood-tagged background tracks from a YAML manifest.
package music

import (
	"fmt"
	"math/rand"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Track is one background music file with its mood tag.
type Track struct {
	File string `yaml:"file"`
	Mood string `yaml:"mood"`
}

type manifest struct {
	Tracks []Track `yaml:"tracks"`
}

// Library holds the loaded music manifest. Selection among equally tagged
// tracks is random but driven by an injected source so tests can seed it.
type Library struct {
	tracks []Track
	rng    *rand.Rand
}

// Load reads the manifest at path.
func Load(path string, rng *rand.Rand) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("music: read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("music: parse manifest: %w", err)
	}
	return New(m.Tracks, rng), nil
}

// New builds a library from an explicit track list.
func New(tracks []Track, rng *rand.Rand) *Library {
	return &Library{tracks: tracks, rng: rng}
}

// Tags returns the distinct mood tags, sorted.
func (l *Library) Tags() []string {
	seen := map[string]bool{}
	for _, t := range l.tracks {
		seen[t.Mood] = true
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ForMood picks a random track with the given mood tag. An empty mood, or a
// mood with no tracks, falls back to a random track from the whole library.
func (l *Library) ForMood(mood string) (Track, error) {
	if len(l.tracks) == 0 {
		return Track{}, fmt.Errorf("music: library is empty")
	}
	var pool []Track
	if mood != "" {
		for _, t := range l.tracks {
			if t.Mood == mood {
				pool = append(pool, t)
			}
		}
	}
	if len(pool) == 0 {
		pool = l.tracks
	}
	return pool[l.rng.Intn(len(pool))], nil
}
