package audio_service

import (
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// MusicMood is the bucket a theme description falls into.
type MusicMood int

const (
	MoodAmbient MusicMood = iota
	MoodHappy
	MoodSad
	MoodMysterious
	MoodAdventure
)

func (m MusicMood) String() string {
	switch m {
	case MoodHappy:
		return "happy"
	case MoodSad:
		return "sad"
	case MoodMysterious:
		return "mysterious"
	case MoodAdventure:
		return "adventure"
	default:
		return "ambient"
	}
}

type musicPattern int

const (
	patternChord musicPattern = iota
	patternArpeggio
	patternMixed
)

var (
	cMajor      = []float64{261.63, 293.66, 329.63, 349.23, 392.00, 440.00, 493.88}
	cMinor      = []float64{261.63, 293.66, 311.13, 349.23, 392.00, 415.30, 466.16}
	cPentatonic = []float64{261.63, 293.66, 329.63, 392.00, 440.00}
)

// moodParams fixes how a mood is rendered. Progression entries are scale
// degree indices.
type moodParams struct {
	scale       []float64
	tempo       [2]float64 // notes per second
	pattern     musicPattern
	progression [4][3]int
}

var moodRules = []struct {
	mood     MusicMood
	keywords []string
}{
	{MoodHappy, []string{"happy", "cheerful", "uplifting"}},
	{MoodSad, []string{"sad", "melancholic", "sorrow"}},
	{MoodMysterious, []string{"mysterious", "dark", "tension", "suspense"}},
	{MoodAdventure, []string{"adventure", "epic", "heroic"}},
}

var moodTable = map[MusicMood]moodParams{
	MoodHappy: {
		scale: cMajor, tempo: [2]float64{2.5, 4.0}, pattern: patternArpeggio,
		progression: [4][3]int{{0, 2, 4}, {3, 5, 0}, {4, 6, 1}, {0, 2, 4}},
	},
	MoodSad: {
		scale: cMinor, tempo: [2]float64{1.5, 2.5}, pattern: patternChord,
		progression: [4][3]int{{0, 2, 4}, {5, 0, 2}, {3, 5, 0}, {4, 6, 1}},
	},
	MoodMysterious: {
		scale: cMinor, tempo: [2]float64{1.0, 2.0}, pattern: patternArpeggio,
		progression: [4][3]int{{0, 3, 6}, {1, 4, 6}, {0, 3, 6}, {4, 0, 2}},
	},
	MoodAdventure: {
		scale: cMajor, tempo: [2]float64{3.0, 4.0}, pattern: patternMixed,
		progression: [4][3]int{{0, 2, 4}, {0, 2, 4}, {3, 5, 0}, {4, 6, 1}},
	},
	MoodAmbient: {
		scale: cPentatonic, tempo: [2]float64{2.0, 3.0}, pattern: patternChord,
		progression: [4][3]int{{0, 2, 4}, {1, 3, 0}, {4, 1, 3}, {0, 2, 4}},
	},
}

const (
	DefaultMusicSeconds = 15.0

	reverbDelay = 0.1
	reverbDecay = 0.6
	normalPeak  = 32000.0

	bassOctave = 0.5
)

func ClassifyMood(theme string) MusicMood {
	lower := strings.ToLower(theme)
	for _, rule := range moodRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.mood
			}
		}
	}
	return MoodAmbient
}

// MusicSynthesizer renders background music from a theme description.
type MusicSynthesizer struct {
	logger *slog.Logger
	mu     sync.Mutex
	rng    *rand.Rand
}

func NewMusicSynthesizer(logger *slog.Logger, rng *rand.Rand) *MusicSynthesizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &MusicSynthesizer{logger: logger, rng: rng}
}

// Synthesize renders a mono waveform of roughly duration seconds whose peak
// never exceeds the 16-bit range.
func (m *MusicSynthesizer) Synthesize(theme string, duration float64) Waveform {
	if duration <= 0 {
		duration = DefaultMusicSeconds
	}
	mood := ClassifyMood(theme)
	params := moodTable[mood]

	m.mu.Lock()
	tempo := params.tempo[0] + m.rng.Float64()*(params.tempo[1]-params.tempo[0])
	m.mu.Unlock()

	sectionSeconds := duration / float64(len(params.progression))
	var dry []float64
	for _, degrees := range params.progression {
		chord := make([]float64, len(degrees))
		for i, d := range degrees {
			chord[i] = params.scale[d]
		}
		dry = append(dry, renderSection(params.pattern, chord, sectionSeconds, tempo)...)
	}

	m.logger.Debug("Music rendered",
		slog.String("mood", mood.String()),
		slog.Float64("tempo", tempo),
		slog.Float64("duration", float64(len(dry))/SampleRate))

	return Waveform{SampleRate: SampleRate, Channels: 1, Samples: normalize(reverb(dry))}
}

func renderSection(pattern musicPattern, chord []float64, seconds, tempo float64) []float64 {
	arpNotes := append(append([]float64(nil), chord...), chord[0]*2)

	switch pattern {
	case patternArpeggio:
		section := arpeggio(arpNotes, seconds, tempo)
		mixInto(section, note(chord[0]*bassOctave, seconds, 5000, 0.2), 0)
		return section

	case patternChord:
		section := chordTone(chord, seconds, 4000, 0.3)
		pulse := seconds / 4
		for i := 0; i < 4; i++ {
			mixInto(section, note(chord[0]*bassOctave, pulse, 6000, 0.1), int(float64(i)*pulse*SampleRate))
		}
		return section

	default:
		section := chordTone(chord, seconds/2, 4000, 0.2)
		return append(section, arpeggio(arpNotes, seconds/2, tempo)...)
	}
}

// note is a sine tone with linear fade in and out over fade seconds.
func note(freq, seconds, amplitude, fade float64) []float64 {
	frames := int(SampleRate * seconds)
	fadeFrames := int(fade * SampleRate)
	out := make([]float64, frames)
	for i := range out {
		s := amplitude * math.Sin(2*math.Pi*freq*float64(i)/SampleRate)
		if fadeFrames > 0 {
			if i < fadeFrames {
				s *= float64(i) / float64(fadeFrames)
			} else if i > frames-fadeFrames {
				s *= float64(frames-i) / float64(fadeFrames)
			}
		}
		out[i] = s
	}
	return out
}

func chordTone(freqs []float64, seconds, amplitude, fade float64) []float64 {
	out := make([]float64, int(SampleRate*seconds))
	for _, f := range freqs {
		mixInto(out, note(f, seconds, amplitude, fade), 0)
	}
	return out
}

// arpeggio plays freqs in turn at tempo notes per second, each note ringing
// slightly into the next.
func arpeggio(freqs []float64, seconds, tempo float64) []float64 {
	out := make([]float64, int(SampleRate*seconds))
	noteSeconds := 1 / tempo
	total := int(seconds * tempo)
	for i := 0; i < total; i++ {
		start := int(float64(i) * noteSeconds * SampleRate)
		mixInto(out, note(freqs[i%len(freqs)], noteSeconds*1.2, 8000, 0.05), start)
	}
	return out
}

// mixInto adds src into dst starting at offset, dropping what overflows.
func mixInto(dst, src []float64, offset int) {
	for j, v := range src {
		k := offset + j
		if k >= len(dst) {
			return
		}
		dst[k] += v
	}
}

// reverb adds one decayed echo of the dry signal.
func reverb(dry []float64) []float64 {
	delay := int(reverbDelay * SampleRate)
	out := make([]float64, len(dry))
	for i, v := range dry {
		out[i] = v
		if i >= delay {
			out[i] += dry[i-delay] * reverbDecay
		}
	}
	return out
}

// normalize scales the buffer so its peak sits at normalPeak.
func normalize(buf []float64) []int {
	peak := 0.0
	for _, v := range buf {
		peak = math.Max(peak, math.Abs(v))
	}
	scale := 1.0
	if peak > 0 {
		scale = normalPeak / peak
	}
	out := make([]int, len(buf))
	for i, v := range buf {
		out[i] = clampSample(v * scale)
	}
	return out
}
