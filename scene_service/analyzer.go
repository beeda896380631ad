package scene_service

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Analysis holds the lightweight story signals used to write scene
// descriptions. Every list except Objects is guaranteed non-empty.
type Analysis struct {
	Characters []string
	Settings   []string
	Objects    []string
	Themes     []string
	Emotions   []string
}

type keywordBucket struct {
	label    string
	keywords []string
}

var locationKeywords = []string{
	"room", "house", "city", "forest", "mountain", "sea", "ocean",
	"building", "castle", "village", "town", "office", "school",
	"garden", "park", "street", "road", "path", "kitchen", "bedroom",
}

var objectKeywords = []string{
	"book", "letter", "key", "door", "window", "phone", "sword",
	"ring", "necklace", "clock", "watch", "gun", "knife", "car",
	"photograph", "picture", "painting", "box", "chair", "table",
	"bed", "lamp", "light", "fire", "water", "food", "drink",
}

var themeBuckets = []keywordBucket{
	{"love", []string{"love", "heart", "romance", "affection", "passion"}},
	{"friendship", []string{"friend", "friendship", "companion", "ally", "comrade"}},
	{"betrayal", []string{"betray", "deception", "dishonesty", "treachery"}},
	{"revenge", []string{"revenge", "vengeance", "retribution", "payback"}},
	{"mystery", []string{"mystery", "enigma", "puzzle", "secret", "clue"}},
	{"adventure", []string{"adventure", "journey", "quest", "expedition"}},
	{"conflict", []string{"conflict", "struggle", "battle", "fight", "war"}},
	{"transformation", []string{"change", "transform", "evolve", "metamorphosis"}},
	{"redemption", []string{"redemption", "forgiveness", "atonement"}},
	{"loss", []string{"loss", "grief", "mourning", "sorrow", "death"}},
}

var emotionBuckets = []keywordBucket{
	{"happy", []string{"happy", "joy", "delight", "pleased", "smile", "laugh"}},
	{"sad", []string{"sad", "sorrow", "unhappy", "miserable", "cry", "tear"}},
	{"angry", []string{"angry", "fury", "rage", "mad", "irritated", "annoyed"}},
	{"afraid", []string{"fear", "afraid", "scared", "terrified", "dread"}},
	{"surprised", []string{"surprise", "astonished", "amazed", "shocked"}},
	{"disgust", []string{"disgust", "repulsed", "revolted"}},
	{"anticipation", []string{"anticipation", "expectation", "excitement"}},
	{"trust", []string{"trust", "belief", "faith", "confidence"}},
	{"curious", []string{"curious", "intrigued", "interested"}},
	{"confused", []string{"confused", "perplexed", "puzzled", "bewildered"}},
}

const (
	maxCharacters = 5
	maxSettings   = 3
	maxObjects    = 5
	maxThemes     = 3
	maxEmotions   = 5
)

var (
	settingPatterns = contextPatterns(locationKeywords, 3)
	objectPatterns  = contextPatterns(objectKeywords, 2)
)

// contextPatterns builds one case-insensitive regexp per keyword capturing up
// to window words on each side of it.
func contextPatterns(keywords []string, window int) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		patterns[i] = regexp.MustCompile(
			`(?i)(?:\w+\s){0,` + strconv.Itoa(window) + `}` + regexp.QuoteMeta(kw) + `(?:\s\w+){0,` + strconv.Itoa(window) + `}`)
	}
	return patterns
}

// Analyze extracts characters, settings, objects, themes and emotions from
// text using keyword and capitalisation heuristics only.
func Analyze(text string) Analysis {
	return Analysis{
		Characters: ExtractCharacters(text),
		Settings:   ExtractSettings(text),
		Objects:    ExtractObjects(text),
		Themes:     ExtractThemes(text),
		Emotions:   ExtractEmotions(text),
	}
}

// ExtractCharacters treats capitalised words that do not open a sentence as
// likely names.
func ExtractCharacters(text string) []string {
	words := strings.Fields(text)
	seen := make(map[string]bool)
	var characters []string

	for i := 1; i < len(words) && len(characters) < maxCharacters; i++ {
		first := []rune(words[i])[0]
		if !unicode.IsUpper(first) {
			continue
		}
		if strings.ContainsAny(lastRune(words[i-1]), ".!?") {
			continue
		}
		clean := stripPunctuation(words[i])
		if len([]rune(clean)) <= 1 || seen[clean] {
			continue
		}
		seen[clean] = true
		characters = append(characters, clean)
	}

	if len(characters) == 0 {
		return []string{"Protagonist", "Character"}
	}
	return characters
}

func ExtractSettings(text string) []string {
	settings := matchAll(settingPatterns, text, maxSettings)
	if len(settings) == 0 {
		return []string{"interior location", "exterior location"}
	}
	return settings
}

func ExtractObjects(text string) []string {
	return matchAll(objectPatterns, text, maxObjects)
}

func ExtractThemes(text string) []string {
	themes := matchBuckets(themeBuckets, text, maxThemes)
	if len(themes) == 0 {
		return []string{"discovery", "challenge"}
	}
	return themes
}

func ExtractEmotions(text string) []string {
	emotions := matchBuckets(emotionBuckets, text, maxEmotions)
	if len(emotions) == 0 {
		return []string{"curious", "determined"}
	}
	return emotions
}

func matchAll(patterns []*regexp.Regexp, text string, limit int) []string {
	var out []string
	for _, p := range patterns {
		for _, m := range p.FindAllString(text, -1) {
			out = append(out, m)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

func matchBuckets(buckets []keywordBucket, text string, limit int) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, b := range buckets {
		for _, kw := range b.keywords {
			if strings.Contains(lower, kw) {
				out = append(out, b.label)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

func stripPunctuation(word string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, word)
}

func lastRune(word string) string {
	r := []rune(word)
	return string(r[len(r)-1])
}
