package i18n

// koreanMessages contains all Korean translations.
var koreanMessages = map[string]string{
	// Error messages
	"error.mood_required":      "기분을 입력해 주세요",
	"error.query_required":     "검색어를 입력해 주세요",
	"error.invalid_request":    "잘못된 요청입니다",
	"error.no_recommendations": "이 기분에 맞는 곡을 추천하지 못했습니다",
	"error.no_playable":        "재생할 수 있는 음악을 찾을 수 없습니다.",
	"error.search_no_results":  "검색 결과가 없습니다",
	"error.search_failed":      "YouTube 검색에 실패했습니다",
	"error.session_not_found":  "세션을 찾을 수 없습니다",
	"error.session_busy":       "재생 목록을 만드는 중입니다. 잠시만 기다려 주세요.",
	"error.session_not_ready":  "재생 목록이 아직 준비되지 않았습니다",
	"error.index_out_of_range": "%d번 곡은 재생 목록에 없습니다",
	"error.rate_limited":       "요청이 너무 많습니다. %d초 후에 다시 시도해 주세요.",
	"error.generic":            "문제가 발생했습니다. 다시 시도해 주세요.",

	// Warnings
	"warning.fallback": "API 오류로 기본 추천곡을 사용합니다",

	// Index page
	"page.title":    "MoodTune",
	"page.tagline":  "오늘 기분이 어때요?",
	"page.presets":  "기분 선택",
	"page.recent":   "최근 기분",
	"page.endpoint": "API 엔드포인트",
}
