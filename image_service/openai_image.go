package image_service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ImageBackend is an optional generative image service.
type ImageBackend interface {
	GenerateImage(ctx context.Context, prompt string, w, h int) ([]byte, error)
}

const promptSuffix = " High quality, detailed, cinematic lighting."

type OpenAIImageBackend struct {
	client openai.Client
	logger *slog.Logger
}

func NewOpenAIImageBackend(logger *slog.Logger, apiKey string, opts ...option.RequestOption) *OpenAIImageBackend {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &OpenAIImageBackend{
		client: openai.NewClient(opts...),
		logger: logger,
	}
}

func (b *OpenAIImageBackend) GenerateImage(ctx context.Context, prompt string, w, h int) ([]byte, error) {
	resp, err := b.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt + promptSuffix,
		Model:          openai.ImageModelDallE3,
		Size:           openai.ImageGenerateParamsSize(fmt.Sprintf("%dx%d", w, h)),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
		N:              openai.Int(1),
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI image API error: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("no image data in OpenAI response")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	b.logger.Debug("Image received from OpenAI", slog.Int("bytes", len(data)))
	return data, nil
}
