package video

// ClipSpec describes one still-image clip of the final timeline.
type ClipSpec struct {
	ImagePath   string
	OverlayPath string // optional caption strip, drawn at the bottom edge
	OutputPath  string
	Duration    float64
	FadeIn      float64
	FadeOut     float64
	Width       int
	Height      int
	FPS         int
}

// MuxSpec pairs the silent timeline with its soundtrack.
type MuxSpec struct {
	VideoPath  string
	AudioPath  string
	OutputPath string
}

// FFmpegExecutor handles the video side of assembly. Audio is prepared in
// memory and only muxed in at the end.
type FFmpegExecutor interface {
	RenderClip(spec ClipSpec) error
	Concat(clipPaths []string, outputPath string) error
	Mux(spec MuxSpec) error
	GetDuration(filePath string) (float64, error)
}

// VideoGenerationError represents errors in the video generation process
type VideoGenerationError struct {
	Stage string
	Err   error
}

func (e *VideoGenerationError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *VideoGenerationError) Unwrap() error {
	return e.Err
}

func stageError(stage string, err error) error {
	return &VideoGenerationError{Stage: stage, Err: err}
}
