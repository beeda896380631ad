package audio_service

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	SampleRate = 44100
	bitDepth   = 16
	pcmFormat  = 1
	maxSample  = math.MaxInt16
	minSample  = math.MinInt16
)

// Waveform is signed 16-bit PCM held in memory. Samples are interleaved
// when Channels > 1.
type Waveform struct {
	SampleRate int
	Channels   int
	Samples    []int
}

// Frames is the number of sample frames, i.e. samples per channel.
func (w Waveform) Frames() int {
	if w.Channels <= 0 {
		return 0
	}
	return len(w.Samples) / w.Channels
}

// Duration in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(w.Frames()) / float64(w.SampleRate)
}

// Stereo duplicates a mono waveform into interleaved left/right channels.
// Stereo input is returned as is.
func (w Waveform) Stereo() Waveform {
	if w.Channels == 2 {
		return w
	}
	out := make([]int, 0, w.Frames()*2)
	for f := 0; f < w.Frames(); f++ {
		v := w.Samples[f*w.Channels]
		out = append(out, v, v)
	}
	return Waveform{SampleRate: w.SampleRate, Channels: 2, Samples: out}
}

// Peak is the largest absolute sample value.
func (w Waveform) Peak() int {
	peak := 0
	for _, s := range w.Samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// Silence returns a zeroed waveform of the given length.
func Silence(duration float64, channels int) Waveform {
	frames := int(duration * SampleRate)
	if frames < 0 {
		frames = 0
	}
	return Waveform{SampleRate: SampleRate, Channels: channels, Samples: make([]int, frames*channels)}
}

func clampSample(v float64) int {
	if v > maxSample {
		return maxSample
	}
	if v < minSample {
		return minSample
	}
	return int(v)
}

// WriteWAV encodes w as 16-bit PCM. The file is written next to path and
// renamed over it, so readers never see a partial file.
func WriteWAV(path string, w Waveform) error {
	if w.Channels <= 0 || w.SampleRate <= 0 {
		return fmt.Errorf("invalid waveform format: %d channels at %d Hz", w.Channels, w.SampleRate)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create temp audio file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := wav.NewEncoder(tmp, w.SampleRate, bitDepth, w.Channels, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: w.Channels, SampleRate: w.SampleRate},
		Data:           w.Samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode audio: %w", err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to finalize audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close audio file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move audio into place: %w", err)
	}
	return nil
}

// ReadWAV decodes a PCM WAV file, rescaling other bit depths to 16 bits.
func ReadWAV(path string) (Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Waveform{}, fmt.Errorf("%s is not a valid WAV file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to decode audio: %w", err)
	}

	samples := buf.Data
	switch depth := int(dec.BitDepth); {
	case depth == 8:
		for i, v := range samples {
			samples[i] = (v - 128) << 8
		}
	case depth > bitDepth:
		shift := uint(depth - bitDepth)
		for i, v := range samples {
			samples[i] = v >> shift
		}
	}

	return Waveform{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		Samples:    samples,
	}, nil
}

// PCMToWaveform interprets little-endian signed 16-bit PCM bytes.
func PCMToWaveform(pcm []byte, sampleRate, channels int) Waveform {
	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8))
	}
	return Waveform{SampleRate: sampleRate, Channels: channels, Samples: samples}
}

// Resample converts w to rate by linear interpolation, per channel.
func (w Waveform) Resample(rate int) Waveform {
	if rate <= 0 || w.SampleRate == rate {
		return w
	}
	if w.SampleRate <= 0 || w.Frames() == 0 {
		w.SampleRate = rate
		return w
	}

	frames := int(int64(w.Frames()) * int64(rate) / int64(w.SampleRate))
	ratio := float64(w.SampleRate) / float64(rate)
	last := w.Frames() - 1
	out := make([]int, frames*w.Channels)
	for f := 0; f < frames; f++ {
		pos := float64(f) * ratio
		i := int(pos)
		frac := pos - float64(i)
		j := min(i+1, last)
		for c := 0; c < w.Channels; c++ {
			a := float64(w.Samples[i*w.Channels+c])
			b := float64(w.Samples[j*w.Channels+c])
			out[f*w.Channels+c] = clampSample(a + (b-a)*frac)
		}
	}
	return Waveform{SampleRate: rate, Channels: w.Channels, Samples: out}
}
