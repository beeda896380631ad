package pipeline_type

import "strings"

// Scene is one narrative unit of a story. Its index in the scene list ties
// together the image, narration and caption produced for it.
type Scene struct {
	Description string `json:"description"`
	Narration   string `json:"narration"`
	Tone        string `json:"tone"`
	ImagePrompt string `json:"image_prompt"`
}

const (
	ToneMysterious  = "mysterious"
	ToneJoyful      = "joyful"
	ToneSomber      = "somber"
	ToneTense       = "tense"
	ToneRomantic    = "romantic"
	ToneAdventurous = "adventurous"
	ToneDramatic    = "dramatic"
	TonePeaceful    = "peaceful"

	// ToneNeutral is assigned when a scene carries no recognised tone.
	ToneNeutral = "neutral"
)

// Tones is the ordered tone cycle used by the segmenter.
var Tones = []string{
	ToneMysterious,
	ToneJoyful,
	ToneSomber,
	ToneTense,
	ToneRomantic,
	ToneAdventurous,
	ToneDramatic,
	TonePeaceful,
}

// IsKnownTone reports whether tone belongs to the vocabulary, sentinel included.
func IsKnownTone(tone string) bool {
	if tone == ToneNeutral {
		return true
	}
	for _, t := range Tones {
		if t == tone {
			return true
		}
	}
	return false
}

// NormalizeTone lowercases tone and maps anything outside the vocabulary to
// ToneNeutral.
func NormalizeTone(tone string) string {
	t := strings.ToLower(strings.TrimSpace(tone))
	if IsKnownTone(t) {
		return t
	}
	return ToneNeutral
}

// ToneFromText returns the first vocabulary tone mentioned in text, or
// fallback when none is found.
func ToneFromText(text, fallback string) string {
	lower := strings.ToLower(text)
	for _, t := range Tones {
		if strings.Contains(lower, t) {
			return t
		}
	}
	return fallback
}

// PromptText is the text image synthesis works from.
func (s Scene) PromptText() string {
	if strings.TrimSpace(s.ImagePrompt) != "" {
		return s.ImagePrompt
	}
	return s.Description
}

func (s Scene) ResolvedTone() string {
	return NormalizeTone(s.Tone)
}

// NormalizeScenes fills in the tone sentinel so every scene leaving a scene
// source has a tone from the vocabulary.
func NormalizeScenes(scenes []Scene) []Scene {
	out := make([]Scene, len(scenes))
	for i, s := range scenes {
		s.Tone = s.ResolvedTone()
		out[i] = s
	}
	return out
}
