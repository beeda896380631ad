package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/serisow/storystudio/audio_service"
	"github.com/serisow/storystudio/config"
	"github.com/serisow/storystudio/db"
	"github.com/serisow/storystudio/handlers"
	"github.com/serisow/storystudio/image_service"
	"github.com/serisow/storystudio/logging"
	"github.com/serisow/storystudio/media_step"
	"github.com/serisow/storystudio/notify_service"
	"github.com/serisow/storystudio/pipeline"
	"github.com/serisow/storystudio/pipeline_type"
	"github.com/serisow/storystudio/plugin_registry"
	"github.com/serisow/storystudio/scene_service"
	"github.com/serisow/storystudio/server"
	"github.com/serisow/storystudio/step"
	"github.com/serisow/storystudio/story_loader"
	"github.com/serisow/storystudio/video"
)

const (
	executionRetention       = 24 * time.Hour
	executionCleanupInterval = 10 * time.Minute
	videoCleanupInterval     = 24 * time.Hour
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup finishes first.
func run(args []string) int {
	flags := flag.NewFlagSet("storystudio", flag.ContinueOnError)
	storyFile := flags.String("story", "", "story file to turn into a video (txt, pdf, docx, html)")
	scenesFile := flags.String("scenes", "", "approved scenes.json to render media from")
	title := flags.String("title", "", "story title for the title screen")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg := config.Load()

	fileHandler, err := logging.NewDailyFileHandler(cfg.LogDir, &slog.HandlerOptions{Level: slog.LevelInfo})
	if err != nil {
		log.Printf("Failed to create log handler: %v", err)
		return 1
	}
	defer fileHandler.Close()
	logger := slog.New(fileHandler)

	layout := pipeline_type.NewLayout(cfg.OutputDir)
	registry := plugin_registry.NewPluginRegistry()
	registerBackends(registry, cfg, logger)
	registerStepTypes(registry, cfg, logger, layout)

	cleanup := video.NewCleanupService(logger, cfg.OutputDir, cfg.VideoRetentionDays)
	service := pipeline.NewService(logger, registry, cleanup, layout, cfg.SceneCount)
	store := pipeline.NewExecutionStore(logger, pipeline.RealTimeProvider{})

	var notifier pipeline.Notifier
	credentials := notify_service.TwilioCredentials{
		AccountSid: cfg.TwilioAccountSid,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioFromNumber,
		ToNumber:   cfg.NotifyToNumber,
	}
	if credentials.Configured() {
		notifier = notify_service.NewSMSNotifier(logger, credentials)
	}

	ctx := context.Background()
	var recorder pipeline.RunRecorder
	var history handlers.RunLister
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, logger, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("Run history disabled", slog.String("error", err.Error()))
		} else {
			defer pool.Close()
			runHistory := db.NewRunHistory(pool)
			if err := runHistory.EnsureSchema(ctx); err != nil {
				logger.Warn("Run history disabled", slog.String("error", err.Error()))
			} else {
				recorder, history = runHistory, runHistory
			}
		}
	}

	runner := pipeline.NewRunner(logger, service, store, recorder, notifier)
	loader := story_loader.NewStoryLoader(logger)

	if *storyFile != "" || *scenesFile != "" {
		return runOnce(ctx, logger, runner, loader, cfg, *storyFile, *scenesFile, *title)
	}

	store.StartCleanup(executionRetention, executionCleanupInterval)
	defer store.StopCleanup()
	cleanup.StartCleanupSchedule(ctx, videoCleanupInterval)

	storyHandler := handlers.NewStoryHandler(logger, runner, runner, store, history, loader)
	r := server.SetupRoutes(storyHandler)
	n := server.SetupNegroni(r)

	serverCfg := server.Config{
		Domains:      cfg.Domains,
		CertCacheDir: cfg.CertCacheDir,
		HTTPPort:     cfg.HTTPPort,
		HTTPSPort:    cfg.HTTPSPort,
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Minute,
	}

	logger.Info("Starting server",
		slog.String("environment", cfg.Environment),
		slog.String("output_dir", cfg.OutputDir))

	if cfg.Environment == "production" {
		server.ServeProduction(serverCfg, n)
	} else {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      n,
			IdleTimeout:  serverCfg.IdleTimeout,
			ReadTimeout:  serverCfg.ReadTimeout,
			WriteTimeout: serverCfg.WriteTimeout,
		}
		server.ServeDevelopment(srv)
	}
	return 0
}

// runOnce processes a single story or scene file and prints the outputs.
func runOnce(ctx context.Context, logger *slog.Logger, runner *pipeline.Runner, loader *story_loader.StoryLoader, cfg config.Config, storyFile, scenesFile, title string) int {
	var result pipeline.ExecutionResult
	if scenesFile != "" {
		scenes, err := media_step.LoadScenes(scenesFile)
		if err != nil {
			logger.Error("Scene file unreadable", slog.String("path", scenesFile), slog.String("error", err.Error()))
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		result = runner.RunMedia(ctx, scenes, title)
	} else {
		story, err := loader.LoadFile(storyFile)
		if err != nil {
			logger.Error("Story file unreadable", slog.String("path", storyFile), slog.String("error", err.Error()))
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		result = runner.RunStory(ctx, story, title, cfg.SceneCount)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(string(out))

	if result.Status != pipeline.StatusCompleted {
		return 1
	}
	return 0
}

func registerBackends(registry *plugin_registry.PluginRegistry, cfg config.Config, logger *slog.Logger) {
	if cfg.OpenAIAPIKey != "" {
		registry.RegisterImageBackend("openai", image_service.NewOpenAIImageBackend(logger, cfg.OpenAIAPIKey))
	}
	if cfg.ElevenLabsAPIKey != "" {
		registry.RegisterVoiceBackend("elevenlabs", audio_service.NewElevenLabsBackend(logger, cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID))
	}
	if cfg.AWSAccessKeyID != "" {
		polly, err := audio_service.NewPollyBackend(logger, cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSAPISecret, cfg.PollyVoiceID)
		if err != nil {
			logger.Warn("Polly backend unavailable", slog.String("error", err.Error()))
		} else {
			registry.RegisterVoiceBackend("polly", polly)
		}
	}
}

func registerStepTypes(registry *plugin_registry.PluginRegistry, cfg config.Config, logger *slog.Logger, layout pipeline_type.Layout) {
	var sceneSource scene_service.SceneSource
	if cfg.OpenAIAPIKey != "" {
		sceneSource = scene_service.NewOpenAISceneSource(logger, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	scenes := scene_service.NewSceneService(logger, sceneSource, scene_service.NewSegmenter(logger, nil))

	var imageBackend image_service.ImageBackend
	if b, ok := registry.GetImageBackend(cfg.ImageBackend); ok {
		imageBackend = b
	}
	images := image_service.NewImageService(logger, imageBackend, image_service.NewSynthesizer(logger, nil),
		cfg.ImageWidth, cfg.ImageHeight, cfg.ExternalCallDelay)

	var voiceBackend audio_service.VoiceBackend
	if b, ok := registry.GetVoiceBackend(cfg.VoiceBackend); ok {
		voiceBackend = b
	}
	voice := audio_service.NewVoiceService(logger, voiceBackend, audio_service.NewVoiceSynthesizer(logger), cfg.ExternalCallDelay)

	musicSynth := audio_service.NewMusicSynthesizer(logger, nil)
	cache := audio_service.NewFallbackCache(logger, layout.FallbackMusicDir(), musicSynth, audio_service.DefaultMusicSeconds, nil)
	music := audio_service.NewMusicService(logger, nil, cache, musicSynth, audio_service.DefaultMusicSeconds)

	assembler := video.NewAssembler(logger, video.NewFFmpegExecutor(logger), video.Options{
		Width:              cfg.ImageWidth,
		Height:             cfg.ImageHeight,
		FPS:                cfg.VideoFPS,
		DefaultClipSeconds: cfg.DefaultClipSeconds,
		FadeSeconds:        cfg.FadeSeconds,
		MusicVolume:        cfg.MusicVolume,
		TitleScreen:        cfg.TitleScreen,
	})

	registry.RegisterStepType(media_step.SegmentStepType, func() step.Step {
		return media_step.NewSegmentStep(logger, scenes, layout)
	})
	registry.RegisterStepType(media_step.ImageStepType, func() step.Step {
		return media_step.NewImageStep(images, layout)
	})
	registry.RegisterStepType(media_step.VoiceStepType, func() step.Step {
		return media_step.NewVoiceStep(voice, layout)
	})
	registry.RegisterStepType(media_step.MusicStepType, func() step.Step {
		return media_step.NewMusicStep(music, layout)
	})
	registry.RegisterStepType(media_step.VideoStepType, func() step.Step {
		return media_step.NewVideoStep(assembler, layout)
	})
}
