package llm

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a music curator. Given a mood or feeling, you recommend songs that match its vibe.

Respond with a JSON array only, in this exact format:
[
  {"title": "Song Title", "artist": "Artist Name"}
]

Guidelines:
- Include popular songs that are easy to find on YouTube
- Mix different genres and time periods
- Make sure every song genuinely matches the mood
- Use the exact song title as it appears on music platforms
- Include both Korean and international songs when appropriate
- Return only the JSON array, no additional text`

func buildUserPrompt(mood string, count int, exclude []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mood: %q\n\n", mood)
	fmt.Fprintf(&b, "Recommend %d diverse, well-known songs that match this mood. "+
		"Mix genres, eras and artists, but every song should fit the emotional tone.", count)

	if len(exclude) > 0 {
		b.WriteString("\n\nDo NOT include these songs that were already recommended: ")
		b.WriteString(strings.Join(exclude, ", "))
	}

	return b.String()
}
