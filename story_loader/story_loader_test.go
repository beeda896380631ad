package story_loader

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func newTestLoader() *StoryLoader {
	return NewStoryLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		want     string
		wantErr  bool
	}{
		{
			name:     "plain text keeps paragraphs",
			filename: "story.txt",
			data:     "  The keeper   climbed.\r\n\r\n\r\n\r\nThe storm came.  ",
			want:     "The keeper climbed.\n\nThe storm came.",
		},
		{
			name:     "html paragraphs in article",
			filename: "story.HTML",
			data: `<html><head><style>p{}</style></head><body>
				<nav><p>Home</p></nav>
				<article><h1>Title</h1><p>First  paragraph.</p><p> </p><p>Second paragraph.</p></article>
				<footer><p>Copyright</p></footer></body></html>`,
			want: "First paragraph.\n\nSecond paragraph.",
		},
		{
			name:     "html without paragraphs",
			filename: "story.htm",
			data:     `<html><body><div>Only a line of text.</div><script>var x = 1;</script></body></html>`,
			want:     "Only a line of text.",
		},
		{
			name:     "unsupported extension",
			filename: "story.exe",
			data:     "binary",
			wantErr:  true,
		},
		{
			name:     "empty text",
			filename: "story.txt",
			data:     " \n\n ",
			wantErr:  true,
		},
		{
			name:     "invalid pdf",
			filename: "story.pdf",
			data:     "not a pdf",
			wantErr:  true,
		},
	}

	loader := newTestLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loader.Load(tt.filename, []byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Load() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.md")
	if err := os.WriteFile(path, []byte("Once upon a time."), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := newTestLoader().LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Once upon a time." {
		t.Errorf("unexpected text %q", got)
	}

	if _, err := newTestLoader().LoadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
