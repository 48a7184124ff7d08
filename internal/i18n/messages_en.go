package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Error messages
	"error.mood_required":      "Mood is required",
	"error.query_required":     "Query is required",
	"error.invalid_request":    "Invalid request body",
	"error.no_recommendations": "No songs could be recommended for this mood",
	"error.no_playable":        "Could not find any playable music.",
	"error.search_no_results":  "No results found",
	"error.search_failed":      "Failed to search YouTube",
	"error.session_not_found":  "Session not found",
	"error.session_busy":       "The queue is still being built. Please wait a moment.",
	"error.session_not_ready":  "The queue is not ready yet",
	"error.index_out_of_range": "Track %d is not in the queue",
	"error.rate_limited":       "Too many requests. Please try again in %d seconds.",
	"error.generic":            "Something went wrong. Please try again.",

	// Warnings
	"warning.fallback": "Using fallback songs due to API error",

	// Index page
	"page.title":    "MoodTune",
	"page.tagline":  "How are you feeling today?",
	"page.presets":  "Pick a mood",
	"page.recent":   "Recent moods",
	"page.endpoint": "API endpoints",
}
