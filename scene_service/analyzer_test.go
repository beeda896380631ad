package scene_service

import (
	"reflect"
	"testing"
)

func TestExtractCharacters(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "names inside sentences",
			text: "Yesterday Mara met Jonas at the market. Then Mara, tired, went home.",
			want: []string{"Mara", "Jonas"},
		},
		{
			name: "sentence openers are ignored",
			text: "the night was long. Nobody came. Everyone slept.",
			want: []string{"Protagonist", "Character"},
		},
		{
			name: "single letters are dropped",
			text: "and then I said hello to Eve",
			want: []string{"Eve"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCharacters(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractCharacters() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractCharacters_Capped(t *testing.T) {
	text := "and Alba and Bruno and Carla and Dario and Elena and Fabio and Gina"
	got := ExtractCharacters(text)
	if len(got) != maxCharacters {
		t.Errorf("expected %d characters, got %v", maxCharacters, got)
	}
}

func TestExtractSettings(t *testing.T) {
	got := ExtractSettings("They crossed the dark forest near the old village at night.")
	if len(got) == 0 || len(got) > maxSettings {
		t.Fatalf("unexpected settings: %v", got)
	}
	if got[0] != "crossed the dark forest near the old" {
		t.Errorf("unexpected context window: %q", got[0])
	}

	fallback := ExtractSettings("Nothing to see.")
	if !reflect.DeepEqual(fallback, []string{"interior location", "exterior location"}) {
		t.Errorf("unexpected fallback: %v", fallback)
	}
}

func TestExtractObjects(t *testing.T) {
	got := ExtractObjects("She picked up the old brass key and opened it.")
	if len(got) != 1 || got[0] != "old brass key and opened" {
		t.Errorf("unexpected objects: %v", got)
	}
	if objs := ExtractObjects("Nothing here."); len(objs) != 0 {
		t.Errorf("expected no objects, got %v", objs)
	}
}

func TestExtractThemesAndEmotions(t *testing.T) {
	text := "A journey of love and grief, full of fear and joy, with a secret clue."
	themes := ExtractThemes(text)
	if !reflect.DeepEqual(themes, []string{"love", "mystery", "adventure"}) {
		t.Errorf("unexpected themes: %v", themes)
	}
	emotions := ExtractEmotions(text)
	if !reflect.DeepEqual(emotions, []string{"happy", "afraid"}) {
		t.Errorf("unexpected emotions: %v", emotions)
	}

	if got := ExtractThemes("plain words"); !reflect.DeepEqual(got, []string{"discovery", "challenge"}) {
		t.Errorf("unexpected theme fallback: %v", got)
	}
	if got := ExtractEmotions("plain words"); !reflect.DeepEqual(got, []string{"curious", "determined"}) {
		t.Errorf("unexpected emotion fallback: %v", got)
	}
}
