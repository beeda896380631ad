package audio_service

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"

	"github.com/serisow/storystudio/pipeline_type"
)

// VoicePattern is the pitch contour of a synthesized narration.
type VoicePattern int

const (
	PatternNeutral VoicePattern = iota
	PatternRising
	PatternFalling
	PatternWavering
)

func (p VoicePattern) String() string {
	switch p {
	case PatternRising:
		return "rising"
	case PatternFalling:
		return "falling"
	case PatternWavering:
		return "wavering"
	default:
		return "neutral"
	}
}

type voiceRule struct {
	pattern  VoicePattern
	keywords []string
}

var voiceRules = []voiceRule{
	{PatternRising, []string{"happy", "joy", "exciting", "thrill"}},
	{PatternFalling, []string{"sad", "sorrow", "tragic", "gloomy"}},
	{PatternWavering, []string{"tension", "fear", "scary", "danger"}},
}

// base frequency band per pattern, in Hz
var voiceBands = map[VoicePattern][2]float64{
	PatternRising:   {350, 440},
	PatternFalling:  {200, 280},
	PatternWavering: {300, 350},
	PatternNeutral:  {280, 320},
}

const (
	MinVoiceSeconds    = 3.0
	SilentVoiceSeconds = 3.0
	wordsPerMinute     = 150.0
	voiceAmplitude     = 20000.0
	seedRunes          = 20

	syllableRate     = 4.0
	vibratoRate      = 5.0
	vibratoDepth     = 0.01
	articulationRate = 12.0
	articulationGain = 0.15
	noiseGain        = 0.03
	wavePeriod       = 1.5
	maxFade          = 0.3
)

// ClassifyVoice picks the pitch pattern from emotional keywords.
func ClassifyVoice(text string) VoicePattern {
	lower := strings.ToLower(text)
	for _, rule := range voiceRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.pattern
			}
		}
	}
	return PatternNeutral
}

// EstimateDuration is the reading time at 150 words per minute, at least
// three seconds.
func EstimateDuration(text string) float64 {
	words := float64(len(strings.Fields(text)))
	return math.Max(MinVoiceSeconds, words/wordsPerMinute*60)
}

// voiceSeed sums the code points of the first runes of text.
func voiceSeed(text string) int64 {
	var seed int64
	for i, r := range []rune(text) {
		if i >= seedRunes {
			break
		}
		seed += int64(r)
	}
	return seed
}

// VoiceSynthesizer renders speech-like tones. Output depends only on the
// text and duration.
type VoiceSynthesizer struct {
	logger *slog.Logger
}

func NewVoiceSynthesizer(logger *slog.Logger) *VoiceSynthesizer {
	return &VoiceSynthesizer{logger: logger}
}

// Synthesize renders text as a stereo waveform. A non-positive duration is
// replaced by the reading-time estimate.
func (v *VoiceSynthesizer) Synthesize(text string, duration float64) Waveform {
	if duration <= 0 {
		duration = EstimateDuration(text)
	}

	rng := rand.New(rand.NewSource(voiceSeed(text)))
	pattern := ClassifyVoice(text)
	band := voiceBands[pattern]
	baseFreq := band[0] + rng.Float64()*(band[1]-band[0])

	frames := int(SampleRate * duration)
	fade := math.Min(maxFade, duration/10)
	mono := make([]int, frames)

	for i := range mono {
		t := float64(i) / SampleRate

		var amp float64
		pos := math.Mod(t*syllableRate, 1.0)
		if pos < 0.4 {
			amp = 0.95 + 0.05*math.Sin(pos*2*math.Pi/0.4)
		} else {
			amp = 0.85 * (1 - (pos-0.4)/0.6)
		}

		freq := baseFreq
		switch pattern {
		case PatternRising:
			freq = baseFreq * (1 + 0.1*t/duration)
		case PatternFalling:
			freq = baseFreq * (1 + 0.1*(1-t/duration))
		case PatternWavering:
			freq = baseFreq * (1 + 0.1*math.Sin(2*math.Pi*t/wavePeriod))
		}
		freq *= 1 + vibratoDepth*math.Sin(2*math.Pi*vibratoRate*t)

		sample := amp * voiceAmplitude * math.Sin(2*math.Pi*freq*t)
		// Articulation bursts on every other half second.
		if int(t*2)%2 == 0 {
			sample += articulationGain * math.Sin(2*math.Pi*articulationRate*t) * voiceAmplitude
		}
		sample += (rng.Float64()*2 - 1) * noiseGain * voiceAmplitude

		switch {
		case t < fade:
			sample *= t / fade
		case t > duration-fade:
			sample *= (duration - t) / fade
		}
		mono[i] = clampSample(sample)
	}

	return Waveform{SampleRate: SampleRate, Channels: 1, Samples: mono}.Stereo()
}

// Generate writes the narration for text to outputPath. Empty text yields no
// audio. When synthesis fails a silent clip is written instead.
func (v *VoiceSynthesizer) Generate(text, outputPath string) pipeline_type.MediaResult {
	if strings.TrimSpace(text) == "" {
		return pipeline_type.NoMedia()
	}

	err := v.synthesizeTo(text, outputPath)
	if err == nil {
		return pipeline_type.ProducedAt(outputPath)
	}
	v.logger.Warn("Voice synthesis failed, writing silence",
		slog.String("path", outputPath),
		slog.String("error", err.Error()))

	if err := WriteWAV(outputPath, Silence(SilentVoiceSeconds, 2)); err != nil {
		v.logger.Error("Silent voice fallback failed",
			slog.String("path", outputPath),
			slog.String("error", err.Error()))
		return pipeline_type.NoMedia()
	}
	return pipeline_type.PlaceholderAt(outputPath)
}

func (v *VoiceSynthesizer) synthesizeTo(text, outputPath string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("voice synthesis panicked: %v", r)
		}
	}()
	return WriteWAV(outputPath, v.Synthesize(text, 0))
}
