package audio_service

import (
	"strings"

	"github.com/serisow/storystudio/pipeline_type"
)

type MusicTheme struct {
	Key         string
	Description string
}

// MusicThemes is matched in this order.
var MusicThemes = []MusicTheme{
	{"adventure", "Epic orchestral adventure music with heroic brass and strings"},
	{"mysterious", "Dark ambient mysterious music with subtle piano and ethereal pads"},
	{"happy", "Cheerful uplifting music with acoustic guitar and light percussion"},
	{"sad", "Melancholic piano music with soft strings and gentle melody"},
	{"tense", "Suspenseful music with rising tension and dramatic percussion"},
	{"romantic", "Emotional romantic music with sweeping strings and piano"},
	{"magical", "Magical fantasy music with harp arpeggios and light bells"},
	{"neutral", "Gentle ambient background music with subtle piano"},
}

const neutralThemeKey = "neutral"

// DominantTone returns the most frequent lower-cased tone across scenes.
// Empty tones count as neutral and ties go to the tone seen first.
func DominantTone(scenes []pipeline_type.Scene) string {
	if len(scenes) == 0 {
		return pipeline_type.ToneNeutral
	}

	counts := make(map[string]int)
	var order []string
	for _, s := range scenes {
		tone := strings.ToLower(strings.TrimSpace(s.Tone))
		if tone == "" {
			tone = pipeline_type.ToneNeutral
		}
		if counts[tone] == 0 {
			order = append(order, tone)
		}
		counts[tone]++
	}

	best := order[0]
	for _, tone := range order[1:] {
		if counts[tone] > counts[best] {
			best = tone
		}
	}
	return best
}

// ThemeForTone maps a tone to a theme description. A theme matches when its
// key contains the tone or the tone contains the key.
func ThemeForTone(tone string) string {
	tone = strings.ToLower(tone)
	for _, theme := range MusicThemes {
		if strings.Contains(tone, theme.Key) || strings.Contains(theme.Key, tone) {
			return theme.Description
		}
	}
	return themeDescription(neutralThemeKey)
}

// ThemeForScenes picks the music theme for a whole story.
func ThemeForScenes(scenes []pipeline_type.Scene) string {
	return ThemeForTone(DominantTone(scenes))
}

func themeDescription(key string) string {
	for _, theme := range MusicThemes {
		if theme.Key == key {
			return theme.Description
		}
	}
	return ""
}
