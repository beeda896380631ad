package image_service

import (
	"strings"
)

// SettingKind is the backdrop family a prompt is drawn with.
type SettingKind int

const (
	SettingInterior SettingKind = iota
	SettingExterior
	SettingMagical
	SettingAbstract
)

func (k SettingKind) String() string {
	switch k {
	case SettingExterior:
		return "exterior"
	case SettingMagical:
		return "magical"
	case SettingAbstract:
		return "abstract"
	default:
		return "interior"
	}
}

type Posture int

const (
	PostureStanding Posture = iota
	PostureSitting
	PostureAction
)

func (p Posture) String() string {
	switch p {
	case PostureSitting:
		return "sitting"
	case PostureAction:
		return "action"
	default:
		return "standing"
	}
}

// classifierWindow bounds how much of the prompt the classifiers read.
const classifierWindow = 100

type keywordRule[T any] struct {
	variant  T
	keywords []string
}

var settingRules = []keywordRule[SettingKind]{
	{SettingExterior, []string{"exterior", "outside", "outdoor", "nature", "forest", "mountain", "field", "landscape"}},
	{SettingMagical, []string{"magical", "fantasy", "mystical", "ethereal", "otherworldly"}},
}

var postureRules = []keywordRule[Posture]{
	{PostureAction, []string{"action", "running", "fight", "battle", "moving"}},
	{PostureSitting, []string{"sitting", "seated", "resting"}},
}

var (
	noCharacterKeywords = []string{"landscape", "empty", "deserted", "abandoned", "still life"}
	natureKeywords      = []string{"mountain", "forest", "nature"}
	forestKeywords      = []string{"forest", "nature"}
)

// Layout is everything the renderer needs to know about a prompt.
type Layout struct {
	Setting      SettingKind
	Posture      Posture
	HasCharacter bool
	CloseUp      bool
	Group        bool
	// Mountains replace buildings on the exterior skyline.
	Mountains bool
	Trees     bool
	Window    bool
}

func classifierText(prompt string) string {
	r := []rune(strings.ToLower(prompt))
	if len(r) > classifierWindow {
		r = r[:classifierWindow]
	}
	return string(r)
}

func classify[T any](text string, rules []keywordRule[T], fallback T) T {
	for _, rule := range rules {
		if containsAny(text, rule.keywords) {
			return rule.variant
		}
	}
	return fallback
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ClassifySetting maps a prompt to its setting. Empty prompts are abstract.
func ClassifySetting(prompt string) SettingKind {
	text := classifierText(prompt)
	if strings.TrimSpace(text) == "" {
		return SettingAbstract
	}
	return classify(text, settingRules, SettingInterior)
}

func ClassifyPosture(prompt string) Posture {
	return classify(classifierText(prompt), postureRules, PostureStanding)
}

// HasCharacter is false for prompts describing empty scenery.
func HasCharacter(prompt string) bool {
	return !containsAny(classifierText(prompt), noCharacterKeywords)
}

// LayoutFor runs every classifier over the prompt.
func LayoutFor(prompt string) Layout {
	text := classifierText(prompt)
	return Layout{
		Setting:      ClassifySetting(prompt),
		Posture:      ClassifyPosture(prompt),
		HasCharacter: HasCharacter(prompt),
		CloseUp:      strings.Contains(text, "close-up"),
		Group:        strings.Contains(text, "group"),
		Mountains:    containsAny(text, natureKeywords),
		Trees:        containsAny(text, forestKeywords),
		Window:       strings.Contains(text, "window"),
	}
}
