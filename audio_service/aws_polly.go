package audio_service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/polly"
	"github.com/aws/aws-sdk-go/service/polly/pollyiface"
)

// Polly only serves PCM at 8 or 16 kHz.
const pollySampleRate = 16000

type PollyBackend struct {
	client  pollyiface.PollyAPI
	logger  *slog.Logger
	voiceID string
	engine  string
}

func NewPollyBackend(logger *slog.Logger, region, accessKey, secret, voiceID string) (*PollyBackend, error) {
	if region == "" {
		region = "us-west-2"
	}
	if voiceID == "" {
		voiceID = "Joanna"
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secret, ""),
		MaxRetries:  aws.Int(0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return newPollyBackend(logger, polly.New(sess), voiceID), nil
}

func newPollyBackend(logger *slog.Logger, client pollyiface.PollyAPI, voiceID string) *PollyBackend {
	return &PollyBackend{
		client:  client,
		logger:  logger,
		voiceID: voiceID,
		engine:  polly.EngineStandard,
	}
}

func (b *PollyBackend) Speak(ctx context.Context, text string) (Waveform, error) {
	output, err := b.client.SynthesizeSpeechWithContext(ctx, &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		OutputFormat: aws.String(polly.OutputFormatPcm),
		VoiceId:      aws.String(b.voiceID),
		Engine:       aws.String(b.engine),
		SampleRate:   aws.String(fmt.Sprint(pollySampleRate)),
	})
	if err != nil {
		return Waveform{}, fmt.Errorf("error calling AWS Polly SynthesizeSpeech: %w", err)
	}
	defer output.AudioStream.Close()

	pcm, err := io.ReadAll(output.AudioStream)
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to read Polly audio: %w", err)
	}
	if len(pcm) < 2 {
		return Waveform{}, fmt.Errorf("AWS Polly returned no audio")
	}

	b.logger.Debug("Polly audio received", slog.Int("bytes", len(pcm)))
	return PCMToWaveform(pcm, pollySampleRate, 1), nil
}
