package scene_service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/v3/option"

	"github.com/serisow/storystudio/pipeline_type"
)

type mockSceneSource struct {
	GenerateScenesFunc func(ctx context.Context, story string, n int) ([]pipeline_type.Scene, error)
	calls              int
}

func (m *mockSceneSource) GenerateScenes(ctx context.Context, story string, n int) ([]pipeline_type.Scene, error) {
	m.calls++
	if m.GenerateScenesFunc != nil {
		return m.GenerateScenesFunc(ctx, story, n)
	}
	return nil, nil
}

func TestSceneService_Scenes(t *testing.T) {
	tests := []struct {
		name        string
		remote      *mockSceneSource
		wantCount   int
		wantTone    string
		wantSegment bool
	}{
		{
			name:        "no remote uses segmenter",
			remote:      nil,
			wantCount:   2,
			wantTone:    pipeline_type.ToneMysterious,
			wantSegment: true,
		},
		{
			name: "remote failure falls back once",
			remote: &mockSceneSource{GenerateScenesFunc: func(ctx context.Context, story string, n int) ([]pipeline_type.Scene, error) {
				return nil, errors.New("quota exceeded")
			}},
			wantCount:   2,
			wantTone:    pipeline_type.ToneMysterious,
			wantSegment: true,
		},
		{
			name: "remote scenes get a normalized tone",
			remote: &mockSceneSource{GenerateScenesFunc: func(ctx context.Context, story string, n int) ([]pipeline_type.Scene, error) {
				return []pipeline_type.Scene{{Description: "cave", Narration: "Once upon a time", Tone: "Eerie"}}, nil
			}},
			wantCount: 1,
			wantTone:  pipeline_type.ToneNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var remote SceneSource
			if tt.remote != nil {
				remote = tt.remote
			}
			svc := NewSceneService(testLogger(), remote, newTestSegmenter())

			scenes := svc.Scenes(context.Background(), lanternStory, 2)
			if len(scenes) != tt.wantCount {
				t.Fatalf("expected %d scenes, got %d", tt.wantCount, len(scenes))
			}
			if scenes[0].Tone != tt.wantTone {
				t.Errorf("tone = %q, want %q", scenes[0].Tone, tt.wantTone)
			}
			if tt.wantSegment && !strings.HasPrefix(scenes[0].Description, "Scene 1:") {
				t.Errorf("expected segmenter output, got %q", scenes[0].Description)
			}
			if tt.remote != nil && tt.remote.calls != 1 {
				t.Errorf("expected exactly one remote call, got %d", tt.remote.calls)
			}
		})
	}
}

func TestOpenAISceneSource_GenerateScenes(t *testing.T) {
	script := `{"scenes":[{"description":"A dark cave lit by a lantern","narration":"Once upon a time, a lantern flickered in the dark cave.","tone":"mysterious","image_prompt":"A mysterious cave"},{"description":"A door of light","narration":"Suddenly, a shimmering door of light appeared.","tone":"joyful","image_prompt":"A joyful portal"}]}`

	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		gotModel, _ = body["model"].(string)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]interface{}{
						"role":    "assistant",
						"content": script,
					},
				},
			},
		})
	}))
	defer server.Close()

	source := NewOpenAISceneSource(testLogger(), "test-key", "", option.WithBaseURL(server.URL+"/"))
	scenes, err := source.GenerateScenes(context.Background(), lanternStory, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotModel != "gpt-4o-mini" {
		t.Errorf("model = %q", gotModel)
	}
	if len(scenes) != 2 || scenes[1].Tone != "joyful" {
		t.Errorf("unexpected scenes: %+v", scenes)
	}
}

func TestOpenAISceneSource_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota","type":"insufficient_quota"}}`))
	}))
	defer server.Close()

	source := NewOpenAISceneSource(testLogger(), "test-key", "", option.WithBaseURL(server.URL+"/"))
	if _, err := source.GenerateScenes(context.Background(), lanternStory, 2); err == nil {
		t.Fatal("expected an error")
	}
}
