package scene_service

import (
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/serisow/storystudio/pipeline_type"
)

const (
	DefaultSceneCount = 3

	// Stories shorter than this become a single scene.
	shortStoryThreshold  = 100
	narrationFallbackLen = 100
)

// span is a unit of story text addressed by byte offsets into the trimmed story.
type span struct {
	start, end int
}

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*`)

// Segmenter splits a story into scenes offline. It stands in for the remote
// scene source and is also the fallback when that source fails.
type Segmenter struct {
	logger *slog.Logger
	rng    *rand.Rand
}

// NewSegmenter builds a Segmenter. A nil rng gets a time-seeded source.
func NewSegmenter(logger *slog.Logger, rng *rand.Rand) *Segmenter {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Segmenter{
		logger: logger,
		rng:    rng,
	}
}

// Segment returns exactly n scenes for text, or a single scene when the
// story is too short to split.
func (s *Segmenter) Segment(text string, n int) []pipeline_type.Scene {
	if n <= 0 {
		n = DefaultSceneCount
	}
	text = strings.TrimSpace(text)

	if len([]rune(text)) < shortStoryThreshold {
		return []pipeline_type.Scene{shortStoryScene(text)}
	}

	analysis := Analyze(text)
	chunks := s.chunk(text, n)

	sceneTypes := s.sample(SceneTypes, n)
	styles := s.sample(CinematicStyles, n)
	shots := s.sample(CameraShots, n)

	scenes := make([]pipeline_type.Scene, n)
	for i := 0; i < n; i++ {
		character := analysis.Characters[i%len(analysis.Characters)]
		setting := analysis.Settings[i%len(analysis.Settings)]
		emotion := analysis.Emotions[i%len(analysis.Emotions)]
		theme := analysis.Themes[i%len(analysis.Themes)]
		tone := pipeline_type.Tones[i%len(pipeline_type.Tones)]

		var sceneObjects []string
		for j, obj := range analysis.Objects {
			if j%n == i {
				sceneObjects = append(sceneObjects, obj)
			}
		}
		objectText := ""
		if len(sceneObjects) > 0 {
			objectText = ", featuring " + strings.Join(sceneObjects, " and ")
		}

		narration := chunks[i]
		if narration == "" {
			narration = strings.TrimSpace(truncateRunes(text, narrationFallbackLen))
		}

		scenes[i] = pipeline_type.Scene{
			Description: fmt.Sprintf(
				"Scene %d: A %s of %s in the %s, during a %s moment. %s%s. The atmosphere conveys a %s and %s feeling, emphasizing the theme of %s.",
				i+1, shots[i], character, setting, sceneTypes[i], styles[i], objectText, tone, emotion, theme),
			Narration: narration,
			Tone:      tone,
			ImagePrompt: fmt.Sprintf(
				"A %s scene showing %s in %s with %s. %s perspective%s. Cinematic lighting, detailed, artistic composition with professional film quality.",
				tone, character, setting, styles[i], shots[i], objectText),
		}
	}

	if s.logger != nil {
		s.logger.Debug("Segmented story",
			slog.Int("scene_count", n),
			slog.Int("characters", len(analysis.Characters)),
			slog.Int("objects", len(analysis.Objects)))
	}
	return scenes
}

func shortStoryScene(text string) pipeline_type.Scene {
	head := truncateRunes(text, 50)
	return pipeline_type.Scene{
		Description: fmt.Sprintf("A visualization of the story: %s...", head),
		Narration:   text,
		Tone:        pipeline_type.ToneNeutral,
		ImagePrompt: fmt.Sprintf("A cinematic scene depicting: %s... with artistic lighting and detailed visuals.", head),
	}
}

// chunk partitions text into n verbatim substrings: paragraphs first, then
// sentences when there are fewer paragraphs than scenes. Missing chunks are "".
func (s *Segmenter) chunk(text string, n int) []string {
	units := paragraphSpans(text)
	if len(units) < n {
		units = sentenceSpans(text)
	}

	chunks := make([]string, n)
	if len(units) == 0 {
		return chunks
	}
	if len(units) < n {
		for i, u := range units {
			chunks[i] = text[u.start:u.end]
		}
		return chunks
	}

	per := len(units) / n
	if per < 1 {
		per = 1
	}
	for i := 0; i < n; i++ {
		first := i * per
		last := first + per - 1
		if i == n-1 {
			last = len(units) - 1
		}
		chunks[i] = text[units[first].start:units[last].end]
	}
	return chunks
}

func paragraphSpans(text string) []span {
	var spans []span
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		if sp, ok := trimSpan(text, offset, offset+len(line)); ok {
			spans = append(spans, sp)
		}
		offset += len(line) + 1
	}
	return spans
}

func sentenceSpans(text string) []span {
	var spans []span
	for _, loc := range sentencePattern.FindAllStringIndex(text, -1) {
		if sp, ok := trimSpan(text, loc[0], loc[1]); ok {
			// Skip fragments made only of punctuation.
			if strings.TrimFunc(text[sp.start:sp.end], unicode.IsPunct) == "" {
				continue
			}
			spans = append(spans, sp)
		}
	}
	return spans
}

// trimSpan narrows [start,end) to exclude surrounding whitespace.
func trimSpan(text string, start, end int) (span, bool) {
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return span{start, end}, end > start
}

// sample draws n entries without replacement, wrapping around the catalog
// when n exceeds its size.
func (s *Segmenter) sample(catalog []string, n int) []string {
	perm := s.rng.Perm(len(catalog))
	out := make([]string, n)
	for i := range out {
		out[i] = catalog[perm[i%len(perm)]]
	}
	return out
}

func truncateRunes(text string, limit int) string {
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit])
}
