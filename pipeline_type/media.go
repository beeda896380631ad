package pipeline_type

import "encoding/json"

// MediaKind tells how a media artifact came to exist.
type MediaKind int

const (
	// Absent means nothing usable was produced.
	Absent MediaKind = iota
	// Produced is the artifact from the main path (backend or full synthesis).
	Produced
	// Placeholder is a degraded but valid artifact.
	Placeholder
)

func (k MediaKind) String() string {
	switch k {
	case Produced:
		return "produced"
	case Placeholder:
		return "placeholder"
	default:
		return "absent"
	}
}

func (k MediaKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

type MediaResult struct {
	Kind MediaKind `json:"kind"`
	Path string    `json:"path,omitempty"`
}

func ProducedAt(path string) MediaResult {
	return MediaResult{Kind: Produced, Path: path}
}

func PlaceholderAt(path string) MediaResult {
	return MediaResult{Kind: Placeholder, Path: path}
}

func NoMedia() MediaResult {
	return MediaResult{Kind: Absent}
}

// Available reports whether the result points at a usable file.
func (m MediaResult) Available() bool {
	return m.Kind != Absent && m.Path != ""
}

// OutputPaths is what a run hands back to its caller.
type OutputPaths struct {
	Story  string   `json:"story,omitempty"`
	Scenes string   `json:"scenes,omitempty"`
	Images []string `json:"images"`
	Voice  []string `json:"voice"`
	Music  string   `json:"music"`
	Video  string   `json:"video"`
}

// AvailablePaths keeps the paths of usable results, in order.
func AvailablePaths(results []MediaResult) []string {
	paths := make([]string, 0, len(results))
	for _, r := range results {
		if r.Available() {
			paths = append(paths, r.Path)
		}
	}
	return paths
}
