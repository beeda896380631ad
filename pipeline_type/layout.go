package pipeline_type

import "path/filepath"

// Layout maps run artifacts onto the output directory.
type Layout struct {
	Root string
}

func NewLayout(root string) Layout {
	if root == "" {
		root = "outputs"
	}
	return Layout{Root: root}
}

func (l Layout) StoryPath() string  { return filepath.Join(l.Root, "story.txt") }
func (l Layout) ScenesPath() string { return filepath.Join(l.Root, "scenes.json") }
func (l Layout) ImagesDir() string  { return filepath.Join(l.Root, "images") }
func (l Layout) VoiceDir() string   { return filepath.Join(l.Root, "voice") }
func (l Layout) MusicDir() string   { return filepath.Join(l.Root, "music") }
func (l Layout) VideoPath() string  { return filepath.Join(l.Root, "final_video.mp4") }

// FallbackMusicDir holds the cached background tracks reused across runs.
func (l Layout) FallbackMusicDir() string {
	return filepath.Join(l.MusicDir(), "fallbacks")
}
