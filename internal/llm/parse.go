package llm

import (
	"encoding/json"
	"errors"
	"strings"

	"moodtune/internal/core"
)

// maxRawSuggestions bounds how many array elements of a response are looked at.
const maxRawSuggestions = 100

var (
	// ErrNoJSONArray is returned when a response holds no parsable JSON array.
	ErrNoJSONArray = errors.New("no JSON array in response")
	// ErrNoValidSongs is returned when the array holds no usable title/artist pair.
	ErrNoValidSongs = errors.New("no valid songs in response")
)

// parseSuggestions extracts the first JSON array from content, ignoring any commentary around
// it, and keeps the elements with a non-empty string title and artist.
func parseSuggestions(content string) ([]core.SongSuggestion, error) {
	raw, err := firstJSONArray(content)
	if err != nil {
		return nil, err
	}
	if len(raw) > maxRawSuggestions {
		raw = raw[:maxRawSuggestions]
	}

	songs := make([]core.SongSuggestion, 0, len(raw))
	for _, element := range raw {
		var fields map[string]any
		if err := json.Unmarshal(element, &fields); err != nil {
			continue
		}
		title, _ := fields["title"].(string)
		artist, _ := fields["artist"].(string)
		title = strings.TrimSpace(title)
		artist = strings.TrimSpace(artist)
		if title == "" || artist == "" {
			continue
		}
		songs = append(songs, core.SongSuggestion{Title: title, Artist: artist})
	}

	if len(songs) == 0 {
		return nil, ErrNoValidSongs
	}
	return songs, nil
}

func firstJSONArray(content string) ([]json.RawMessage, error) {
	for offset := 0; offset < len(content); {
		start := strings.IndexByte(content[offset:], '[')
		if start < 0 {
			break
		}
		start += offset

		var raw []json.RawMessage
		decoder := json.NewDecoder(strings.NewReader(content[start:]))
		if err := decoder.Decode(&raw); err == nil {
			return raw, nil
		}
		offset = start + 1
	}
	return nil, ErrNoJSONArray
}
