package pipeline_type

import "time"

// StageRecord is the log entry a step leaves behind when it finishes.
type StageRecord struct {
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Duration time.Duration `json:"duration"`
}

// State carries a story through the pipeline. Steps receive a State and
// return the updated copy; nothing is shared between runs.
type State struct {
	ExecutionID string        `json:"execution_id"`
	Story       string        `json:"-"`
	Title       string        `json:"title,omitempty"`
	SceneCount  int           `json:"scene_count"`
	StoryPath   string        `json:"story_path,omitempty"`
	ScenesPath  string        `json:"scenes_path,omitempty"`
	Scenes      []Scene       `json:"scenes"`
	Images      []MediaResult `json:"images"`
	Voice       []MediaResult `json:"voice"`
	Music       MediaResult   `json:"music"`
	Video       MediaResult   `json:"video"`
	Stages      []StageRecord `json:"stages"`
}

func NewState(executionID, story string, sceneCount int) State {
	return State{
		ExecutionID: executionID,
		Story:       story,
		SceneCount:  sceneCount,
	}
}

func (s State) WithScenes(scenes []Scene, scenesPath string) State {
	s.Scenes = append([]Scene(nil), scenes...)
	s.ScenesPath = scenesPath
	return s
}

func (s State) WithImages(images []MediaResult) State {
	s.Images = append([]MediaResult(nil), images...)
	return s
}

func (s State) WithVoice(voice []MediaResult) State {
	s.Voice = append([]MediaResult(nil), voice...)
	return s
}

func (s State) WithMusic(music MediaResult) State {
	s.Music = music
	return s
}

func (s State) WithVideo(video MediaResult) State {
	s.Video = video
	return s
}

// RecordStage appends a stage entry without touching the caller's slice.
func (s State) RecordStage(name, status, detail string, d time.Duration) State {
	stages := make([]StageRecord, len(s.Stages), len(s.Stages)+1)
	copy(stages, s.Stages)
	s.Stages = append(stages, StageRecord{Name: name, Status: status, Detail: detail, Duration: d})
	return s
}

// OutputPaths flattens the state into the artifact paths a caller sees.
func (s State) OutputPaths() OutputPaths {
	return OutputPaths{
		Story:  s.StoryPath,
		Scenes: s.ScenesPath,
		Images: AvailablePaths(s.Images),
		Voice:  AvailablePaths(s.Voice),
		Music:  s.Music.Path,
		Video:  s.Video.Path,
	}
}
