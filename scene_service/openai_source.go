package scene_service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/serisow/storystudio/pipeline_type"
)

// sceneScript is the structured output requested from the chat model.
type sceneScript struct {
	Scenes []scriptScene `json:"scenes" jsonschema_description:"The visual scenes of the story in narrative order."`
}

type scriptScene struct {
	Description string `json:"description" jsonschema_description:"Detailed visual description for image generation, no text in the image."`
	Narration   string `json:"narration" jsonschema_description:"The exact text from the story read during this scene."`
	Tone        string `json:"tone" jsonschema:"enum=mysterious,enum=joyful,enum=somber,enum=tense,enum=romantic,enum=adventurous,enum=dramatic,enum=peaceful" jsonschema_description:"Emotional tone of the scene."`
	ImagePrompt string `json:"image_prompt" jsonschema_description:"Optimized prompt for image generation with artistic style guidance."`
}

// GenerateSchema reflects T into an inline JSON schema suitable for strict
// structured outputs.
func GenerateSchema[T any]() interface{} {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var sceneScriptSchema = GenerateSchema[sceneScript]()

const scenePromptTemplate = `Break down the following short story into %d distinct visual scenes for a narrated slideshow.

STORY:
%s

For each scene:
1. Create a detailed visual description for image generation
2. Extract the narration text that should accompany this visual
3. Pick the emotional tone of the scene
4. Write an image prompt with artistic style guidance

Guidelines:
- Make each scene visually distinct
- The description focuses on what should be SEEN in the image
- The narration is the exact text from the story for this scene
- Do not include text overlay instructions in image descriptions
- Keep the original story's emotional tone`

// OpenAISceneSource asks a chat model for the scene list. It makes a single
// attempt per call; the caller falls back to the Segmenter on error.
type OpenAISceneSource struct {
	client openai.Client
	model  openai.ChatModel
	logger *slog.Logger
}

func NewOpenAISceneSource(logger *slog.Logger, apiKey, model string, opts ...option.RequestOption) *OpenAISceneSource {
	chatModel := openai.ChatModel(model)
	if model == "" {
		chatModel = openai.ChatModelGPT4oMini
	}
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &OpenAISceneSource{
		client: openai.NewClient(opts...),
		model:  chatModel,
		logger: logger,
	}
}

func (s *OpenAISceneSource) GenerateScenes(ctx context.Context, story string, n int) ([]pipeline_type.Scene, error) {
	if n <= 0 {
		n = DefaultSceneCount
	}

	chatCompletion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an expert storyteller and visual designer breaking stories into compelling scenes."),
			openai.UserMessage(fmt.Sprintf(scenePromptTemplate, n, story)),
		},
		Model: s.model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "scene_script",
					Description: openai.String("Scenes of a narrated story slideshow"),
					Schema:      sceneScriptSchema,
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	raw := chatCompletion.Choices[0].Message.Content
	var script sceneScript
	if err := json.Unmarshal([]byte(raw), &script); err != nil {
		return nil, fmt.Errorf("failed to parse scene script: %w", err)
	}
	if len(script.Scenes) == 0 {
		return nil, fmt.Errorf("model returned no scenes")
	}

	scenes := make([]pipeline_type.Scene, len(script.Scenes))
	for i, sc := range script.Scenes {
		scenes[i] = pipeline_type.Scene{
			Description: sc.Description,
			Narration:   sc.Narration,
			Tone:        sc.Tone,
			ImagePrompt: sc.ImagePrompt,
		}
	}

	s.logger.Debug("Scene script received",
		slog.String("model", string(s.model)),
		slog.Int("scene_count", len(scenes)))
	return scenes, nil
}
