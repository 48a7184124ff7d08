package llm

import (
	"moodtune/internal/core"
)

// defaultFallbackMood is used for moods without their own fallback list.
const defaultFallbackMood = "잔잔한"

var fallbackSongs = map[string][]core.SongSuggestion{
	"잔잔한": {
		{Title: "River", Artist: "Joni Mitchell"},
		{Title: "Mad World", Artist: "Gary Jules"},
		{Title: "봄날", Artist: "BTS"},
	},
	"신나는": {
		{Title: "Uptown Funk", Artist: "Mark Ronson ft. Bruno Mars"},
		{Title: "Dynamite", Artist: "BTS"},
		{Title: "Can't Stop the Feeling!", Artist: "Justin Timberlake"},
	},
	"우울한": {
		{Title: "Hurt", Artist: "Johnny Cash"},
		{Title: "Black", Artist: "Pearl Jam"},
		{Title: "그대라는 사치", Artist: "한효주"},
	},
}

// FallbackSongs returns the static list for mood. The lookup is exact; unknown moods get the
// calm list. The returned slice is a copy.
func FallbackSongs(mood string) []core.SongSuggestion {
	songs, ok := fallbackSongs[mood]
	if !ok {
		songs = fallbackSongs[defaultFallbackMood]
	}
	return append([]core.SongSuggestion(nil), songs...)
}
