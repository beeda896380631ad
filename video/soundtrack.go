package video

import (
	"github.com/serisow/storystudio/audio_service"
)

const (
	NarrationGain = 1.5
	stereo        = 2
)

// normalizeTrack brings any waveform to 44.1 kHz stereo.
func normalizeTrack(w audio_service.Waveform) audio_service.Waveform {
	return w.Resample(audio_service.SampleRate).Stereo()
}

// frameCount converts seconds to frames at the mixing rate.
func frameCount(seconds float64) int {
	n := int(seconds*audio_service.SampleRate + 0.5)
	if n < 0 {
		return 0
	}
	return n
}

// FitToDuration pads w with silence or trims it so it lasts exactly seconds.
func FitToDuration(w audio_service.Waveform, seconds float64) audio_service.Waveform {
	w = normalizeTrack(w)
	want := frameCount(seconds) * stereo
	out := make([]int, want)
	copy(out, w.Samples)
	return audio_service.Waveform{SampleRate: audio_service.SampleRate, Channels: stereo, Samples: out}
}

// ApplyGain scales every sample, clamping to the 16-bit range.
func ApplyGain(w audio_service.Waveform, gain float64) audio_service.Waveform {
	out := make([]int, len(w.Samples))
	for i, s := range w.Samples {
		out[i] = clamp16(float64(s) * gain)
	}
	w.Samples = out
	return w
}

// LoopTo repeats w until it lasts exactly seconds. An empty waveform gives
// silence.
func LoopTo(w audio_service.Waveform, seconds float64) audio_service.Waveform {
	w = normalizeTrack(w)
	want := frameCount(seconds) * stereo
	out := make([]int, want)
	if len(w.Samples) > 0 {
		for i := 0; i < want; i += len(w.Samples) {
			copy(out[i:], w.Samples)
		}
	}
	return audio_service.Waveform{SampleRate: audio_service.SampleRate, Channels: stereo, Samples: out}
}

// Concatenate joins tracks end to end. All tracks must be 44.1 kHz stereo.
func Concatenate(tracks ...audio_service.Waveform) audio_service.Waveform {
	total := 0
	for _, t := range tracks {
		total += len(t.Samples)
	}
	out := make([]int, 0, total)
	for _, t := range tracks {
		out = append(out, t.Samples...)
	}
	return audio_service.Waveform{SampleRate: audio_service.SampleRate, Channels: stereo, Samples: out}
}

// MixMusic loops the music over the narration, scales it by volume and adds
// it sample by sample.
func MixMusic(narration, music audio_service.Waveform, volume float64) audio_service.Waveform {
	bed := ApplyGain(LoopTo(music, narration.Duration()), volume)
	out := make([]int, len(narration.Samples))
	for i, s := range narration.Samples {
		m := 0
		if i < len(bed.Samples) {
			m = bed.Samples[i]
		}
		out[i] = clamp16(float64(s + m))
	}
	narration.Samples = out
	return narration
}

func clamp16(v float64) int {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int(v)
	}
}
