package video

import (
	"testing"

	"github.com/serisow/storystudio/audio_service"
)

func constantTrack(rate, channels, frames, value int) audio_service.Waveform {
	samples := make([]int, frames*channels)
	for i := range samples {
		samples[i] = value
	}
	return audio_service.Waveform{SampleRate: rate, Channels: channels, Samples: samples}
}

func TestFitToDuration(t *testing.T) {
	tests := []struct {
		name       string
		in         audio_service.Waveform
		seconds    float64
		wantFrames int
	}{
		{"pads short audio", constantTrack(audio_service.SampleRate, 2, 100, 7), 0.01, 441},
		{"trims long audio", constantTrack(audio_service.SampleRate, 2, 1000, 7), 0.01, 441},
		{"mono becomes stereo", constantTrack(audio_service.SampleRate, 1, 441, 7), 0.01, 441},
		{"resamples", constantTrack(22050, 1, 2205, 7), 0.1, 4410},
		{"empty audio is silence", audio_service.Waveform{}, 0.01, 441},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitToDuration(tt.in, tt.seconds)
			if got.Channels != 2 || got.SampleRate != audio_service.SampleRate {
				t.Fatalf("unexpected format %d ch @ %d Hz", got.Channels, got.SampleRate)
			}
			if got.Frames() != tt.wantFrames {
				t.Errorf("frames = %d, want %d", got.Frames(), tt.wantFrames)
			}
		})
	}

	padded := FitToDuration(constantTrack(audio_service.SampleRate, 2, 100, 7), 0.01)
	if padded.Samples[199] != 7 || padded.Samples[200] != 0 {
		t.Error("padding should follow the original audio")
	}
}

func TestApplyGain(t *testing.T) {
	w := audio_service.Waveform{SampleRate: audio_service.SampleRate, Channels: 1, Samples: []int{100, -100, 30000, -30000}}
	got := ApplyGain(w, NarrationGain)
	want := []int{150, -150, 32767, -32768}
	for i := range want {
		if got.Samples[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got.Samples[i], want[i])
		}
	}
	if w.Samples[0] != 100 {
		t.Error("input waveform was modified")
	}
}

func TestLoopTo(t *testing.T) {
	src := audio_service.Waveform{SampleRate: audio_service.SampleRate, Channels: 2, Samples: []int{1, 1, 2, 2, 3, 3}}
	got := LoopTo(src, 7.0/audio_service.SampleRate)
	want := []int{1, 1, 2, 2, 3, 3, 1, 1, 2, 2, 3, 3, 1, 1}
	if len(got.Samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got.Samples), len(want))
	}
	for i := range want {
		if got.Samples[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, got.Samples[i], want[i])
		}
	}
}

func TestMixMusic(t *testing.T) {
	narration := constantTrack(audio_service.SampleRate, 2, 441, 32000)
	music := constantTrack(audio_service.SampleRate, 1, 100, 10000)

	mixed := MixMusic(narration, music, DefaultMusicVolume)
	if mixed.Frames() != 441 {
		t.Fatalf("mix changed the length: %d frames", mixed.Frames())
	}
	if mixed.Samples[0] != 32767 {
		t.Errorf("mix should clamp, got %d", mixed.Samples[0])
	}

	quiet := MixMusic(constantTrack(audio_service.SampleRate, 2, 441, 0), music, DefaultMusicVolume)
	if quiet.Samples[len(quiet.Samples)-1] != 2000 {
		t.Errorf("music bed = %d, want 2000", quiet.Samples[len(quiet.Samples)-1])
	}
}

func TestConcatenate(t *testing.T) {
	a := constantTrack(audio_service.SampleRate, 2, 10, 1)
	b := constantTrack(audio_service.SampleRate, 2, 5, 2)
	got := Concatenate(a, b)
	if got.Frames() != 15 || got.Samples[19] != 1 || got.Samples[20] != 2 {
		t.Errorf("unexpected concatenation %v", got.Samples)
	}
}
