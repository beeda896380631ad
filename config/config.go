package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	Domains      []string
	CertCacheDir string
	HTTPPort     string
	HTTPSPort    string
	OutputDir    string
	LogDir       string
	DatabaseURL  string

	SceneCount         int
	ImageWidth         int
	ImageHeight        int
	DefaultClipSeconds float64
	FadeSeconds        float64
	MusicVolume        float64
	VideoFPS           int
	TitleScreen        bool
	ExternalCallDelay  time.Duration
	VideoRetentionDays int

	OpenAIAPIKey      string
	OpenAIModel       string
	ImageBackend      string
	VoiceBackend      string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	AWSRegion         string
	AWSAccessKeyID    string
	AWSAPISecret      string
	PollyVoiceID      string

	TwilioAccountSid string
	TwilioAuthToken  string
	TwilioFromNumber string
	NotifyToNumber   string
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		Domains:      getEnvAsList("DOMAIN", []string{"example.com"}),
		CertCacheDir: getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),
		HTTPPort:     getEnv("HTTP_PORT", "8086"),
		HTTPSPort:    getEnv("HTTPS_PORT", "443"),
		OutputDir:    getEnv("OUTPUT_DIR", "outputs"),
		LogDir:       getEnv("LOG_DIR", "logs"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		SceneCount:         getEnvAsInt("SCENE_COUNT", 3),
		ImageWidth:         getEnvAsInt("IMAGE_WIDTH", 1024),
		ImageHeight:        getEnvAsInt("IMAGE_HEIGHT", 1024),
		DefaultClipSeconds: getEnvAsFloat("DEFAULT_CLIP_SECONDS", 8),
		FadeSeconds:        getEnvAsFloat("FADE_SECONDS", 1),
		MusicVolume:        getEnvAsFloat("MUSIC_VOLUME", 0.2),
		VideoFPS:           getEnvAsInt("VIDEO_FPS", 24),
		TitleScreen:        getEnvAsBool("TITLE_SCREEN", false),
		ExternalCallDelay:  time.Duration(getEnvAsInt("EXTERNAL_CALL_DELAY_MS", 1000)) * time.Millisecond,
		VideoRetentionDays: getEnvAsInt("VIDEO_RETENTION_DAYS", 7),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ImageBackend:      getEnv("IMAGE_BACKEND", ""),
		VoiceBackend:      getEnv("VOICE_BACKEND", ""),
		ElevenLabsAPIKey:  getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID: getEnv("ELEVENLABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:    getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSAPISecret:      getEnv("AWS_API_SECRET", ""),
		PollyVoiceID:      getEnv("POLLY_VOICE_ID", "Joanna"),

		TwilioAccountSid: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		NotifyToNumber:   getEnv("NOTIFY_TO_NUMBER", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, so several domains can share
// one certificate manager.
func getEnvAsList(key string, fallback []string) []string {
	var values []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
