// Package voices maps requested languages to the narration voices the
// synthesis engine supports. The mapping is configuration, not pipeline
// logic: the assembler only ever sees the resolved voice and lang code.
package voices

import (
	"fmt"

	"golang.org/x/text/language"
)

// Voice is one synthesizer voice with the engine's language code.
type Voice struct {
	Name     string `json:"name"`
	LangCode string `json:"langCode"`
	Gender   string `json:"gender"`
}

// catalog lists the Kokoro voices the service exposes, grouped by BCP-47
// language tag. Kokoro uses single-letter pipeline codes ("a" American
// English, "b" British English, "e" Spanish, ...).
var catalog = map[language.Tag][]Voice{
	language.AmericanEnglish: {
		{Name: "af_heart", LangCode: "a", Gender: "female"},
		{Name: "af_bella", LangCode: "a", Gender: "female"},
		{Name: "af_nicole", LangCode: "a", Gender: "female"},
		{Name: "am_adam", LangCode: "a", Gender: "male"},
		{Name: "am_michael", LangCode: "a", Gender: "male"},
	},
	language.BritishEnglish: {
		{Name: "bf_emma", LangCode: "b", Gender: "female"},
		{Name: "bm_george", LangCode: "b", Gender: "male"},
	},
	language.Spanish: {
		{Name: "ef_dora", LangCode: "e", Gender: "female"},
		{Name: "em_alex", LangCode: "e", Gender: "male"},
	},
	language.French: {
		{Name: "ff_siwis", LangCode: "f", Gender: "female"},
	},
}

var (
	supported []language.Tag
	matcher   language.Matcher
)

func init() {
	// English first so it wins as the matcher's fallback.
	supported = []language.Tag{language.AmericanEnglish, language.BritishEnglish, language.Spanish, language.French}
	matcher = language.NewMatcher(supported)
}

// DefaultVoice is used when a request names neither a voice nor a language.
const DefaultVoice = "af_heart"

// All returns every exposed voice.
func All() []Voice {
	var out []Voice
	for _, tag := range supported {
		out = append(out, catalog[tag]...)
	}
	return out
}

// ByName looks a voice up by its engine name.
func ByName(name string) (Voice, bool) {
	for _, voices := range catalog {
		for _, v := range voices {
			if v.Name == name {
				return v, true
			}
		}
	}
	return Voice{}, false
}

// Resolve picks the voice for a request. An explicit voice name wins, but it
// must belong to the requested language when one is given. Otherwise the
// language is matched against the supported tags and the first voice for the
// best match is returned.
func Resolve(name, lang string) (Voice, error) {
	if name != "" {
		v, ok := ByName(name)
		if !ok {
			return Voice{}, fmt.Errorf("unknown voice %q", name)
		}
		if lang != "" {
			tag, err := matchTag(lang)
			if err != nil {
				return Voice{}, err
			}
			if v.LangCode != catalog[tag][0].LangCode {
				return Voice{}, fmt.Errorf("voice %q does not speak %q", name, lang)
			}
		}
		return v, nil
	}
	if lang == "" {
		v, _ := ByName(DefaultVoice)
		return v, nil
	}
	tag, err := matchTag(lang)
	if err != nil {
		return Voice{}, err
	}
	return catalog[tag][0], nil
}

func matchTag(lang string) (language.Tag, error) {
	requested, err := language.Parse(lang)
	if err != nil {
		return language.Tag{}, fmt.Errorf("parse language %q: %w", lang, err)
	}
	_, idx, conf := matcher.Match(requested)
	if conf == language.No {
		return language.Tag{}, fmt.Errorf("language %q is not supported", lang)
	}
	return supported[idx], nil
}
