package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("SCENE_COUNT", "5")
	t.Setenv("MUSIC_VOLUME", "0.35")
	t.Setenv("TITLE_SCREEN", "true")
	t.Setenv("VIDEO_FPS", "not-a-number")
	t.Setenv("EXTERNAL_CALL_DELAY_MS", "250")
	t.Setenv("DOMAIN", "stories.example.com, www.stories.example.com")

	cfg := Load()

	if cfg.SceneCount != 5 {
		t.Errorf("SceneCount = %d, want 5", cfg.SceneCount)
	}
	if cfg.MusicVolume != 0.35 {
		t.Errorf("MusicVolume = %v, want 0.35", cfg.MusicVolume)
	}
	if !cfg.TitleScreen {
		t.Error("expected TitleScreen to be enabled")
	}
	if cfg.VideoFPS != 24 {
		t.Errorf("VideoFPS = %d, want fallback 24", cfg.VideoFPS)
	}
	if cfg.ExternalCallDelay != 250*time.Millisecond {
		t.Errorf("ExternalCallDelay = %v", cfg.ExternalCallDelay)
	}
	if want := []string{"stories.example.com", "www.stories.example.com"}; !reflect.DeepEqual(cfg.Domains, want) {
		t.Errorf("Domains = %v, want %v", cfg.Domains, want)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("STORYSTUDIO_TEST_BOOL", "maybe")
	t.Setenv("STORYSTUDIO_TEST_FLOAT", "1.5")
	t.Setenv("STORYSTUDIO_TEST_LIST", " , ")

	if getEnvAsBool("STORYSTUDIO_TEST_BOOL", true) != true {
		t.Error("expected fallback for an unparsable bool")
	}
	if getEnvAsFloat("STORYSTUDIO_TEST_FLOAT", 0) != 1.5 {
		t.Error("expected parsed float")
	}
	if got := getEnvAsList("STORYSTUDIO_TEST_LIST", []string{"a"}); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("expected fallback list, got %v", got)
	}
	if getEnv("STORYSTUDIO_TEST_UNSET", "fallback") != "fallback" {
		t.Error("expected fallback for an unset key")
	}
}
