// Package voice holds per-user TTS output preferences: speaker choice
// plus speed/pitch/volume levels adjusted by relative deltas and
// clamped to a fixed range. Records live in an expiring key-value
// store under a namespaced key; everything else is stateless.
package voice

// Level bounds for speed, pitch, and volume. Every update clamps the
// stored value back into this range after the delta is applied.
const (
	MinLevel = -5
	MaxLevel = 5
)

// Settings is one user's voice configuration.
type Settings struct {
	Speaker string `json:"speaker"`
	Speed   int    `json:"speed"`
	Pitch   int    `json:"pitch"`
	Volume  int    `json:"volume"`
	Format  string `json:"format"`
}

// Defaults returns the settings a user gets before their first update.
func Defaults() Settings {
	return Settings{
		Speaker: "nara",
		Speed:   0,
		Pitch:   0,
		Volume:  0,
		Format:  "mp3",
	}
}

// AvailableSpeakers maps selectable speaker ids to their descriptions.
var AvailableSpeakers = map[string]string{
	"nara":      "여성 음성 (기본)",
	"vara":      "여성 음성 (밝은 톤)",
	"vdaeseong": "남성 음성",
}

// SpeakerIDs returns the selectable speaker ids in a stable order.
func SpeakerIDs() []string {
	return []string{"nara", "vara", "vdaeseong"}
}

// clamp bounds v to [MinLevel, MaxLevel].
func clamp(v int) int {
	if v < MinLevel {
		return MinLevel
	}
	if v > MaxLevel {
		return MaxLevel
	}
	return v
}
