package core

// MoodPreset is a one-tap mood offered by the client next to free-text input.
type MoodPreset struct {
	Emoji string `json:"emoji"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// PresetMoods are the moods shown on the start screen, in display order.
var PresetMoods = []MoodPreset{
	{Emoji: "🌊", Label: "잔잔한", Value: "잔잔한"},
	{Emoji: "🔥", Label: "신나는", Value: "신나는"},
	{Emoji: "🌧️", Label: "우울한", Value: "우울한"},
	{Emoji: "🎯", Label: "집중", Value: "집중"},
	{Emoji: "💕", Label: "로맨틱", Value: "로맨틱"},
	{Emoji: "🚗", Label: "드라이브", Value: "드라이브"},
	{Emoji: "💪", Label: "운동", Value: "운동"},
	{Emoji: "🌙", Label: "새벽감성", Value: "새벽감성"},
	{Emoji: "☕", Label: "카페", Value: "카페"},
	{Emoji: "🎉", Label: "파티", Value: "파티"},
	{Emoji: "🍂", Label: "가을감성", Value: "가을감성"},
	{Emoji: "🎸", Label: "록", Value: "록"},
}
