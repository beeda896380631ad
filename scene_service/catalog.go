package scene_service

var SceneTypes = []string{
	"establishing shot", "character introduction", "dialogue scene",
	"action sequence", "emotional moment", "revelation", "montage",
	"flashback", "conflict", "resolution",
}

var CinematicStyles = []string{
	"golden hour lighting with warm tones",
	"dramatic chiaroscuro with high contrast",
	"soft ethereal lighting with dreamy atmosphere",
	"vibrant color palette with rich saturation",
	"moody low-key lighting with deep shadows",
	"bright high-key lighting with minimal shadows",
	"noir-inspired with stark contrast",
	"vintage film look with muted colors",
	"neon-lit cyberpunk aesthetic",
	"earthy natural lighting",
}

var CameraShots = []string{
	"close-up", "extreme close-up", "medium shot", "wide shot",
	"overhead shot", "low angle", "high angle", "tracking shot",
	"dolly zoom", "long shot",
}
