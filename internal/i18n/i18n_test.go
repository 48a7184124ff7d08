package i18n

import (
	"slices"
	"sort"
	"testing"
)

func TestLanguagesShareKeys(t *testing.T) {
	reference := getMessages(DefaultLanguage)
	if len(reference) == 0 {
		t.Fatal("No reference messages found in default language")
	}

	for _, lang := range GetSupportedLanguages() {
		t.Run(lang, func(t *testing.T) {
			messages := getMessages(lang)

			var missing, extra []string
			for key := range reference {
				if _, ok := messages[key]; !ok {
					missing = append(missing, key)
				}
			}
			for key := range messages {
				if _, ok := reference[key]; !ok {
					extra = append(extra, key)
				}
			}
			sort.Strings(missing)
			sort.Strings(extra)

			if len(missing) > 0 {
				t.Errorf("%s is missing keys: %v", lang, missing)
			}
			if len(extra) > 0 {
				t.Errorf("%s has keys unknown to %s: %v", lang, DefaultLanguage, extra)
			}
		})
	}
}

// TestI18nKeyConsistency verifies that all message keys follow expected patterns
func TestI18nKeyConsistency(t *testing.T) {
	expectedPrefixes := []string{
		"error.",
		"warning.",
		"page.",
	}

	referenceMessages := getMessages(DefaultLanguage)

	for key := range referenceMessages {
		hasValidPrefix := false
		for _, prefix := range expectedPrefixes {
			if len(key) > len(prefix) && key[:len(prefix)] == prefix {
				hasValidPrefix = true
				break
			}
		}

		if !hasValidPrefix {
			t.Errorf("Message key '%s' does not follow expected naming convention (should start with one of: %v)", key, expectedPrefixes)
		}
	}
}

// TestI18nMessageValues verifies that messages contain expected placeholders
func TestI18nMessageValues(t *testing.T) {
	// Test specific keys that should have placeholders
	testsWithPlaceholders := map[string]int{
		"error.index_out_of_range": 1, // index
		"error.rate_limited":       1, // seconds
		"error.mood_required":      0,
		"warning.fallback":         0,
	}

	for _, lang := range GetSupportedLanguages() {
		messages := getMessages(lang)
		for key, expectedPlaceholders := range testsWithPlaceholders {
			message, exists := messages[key]
			if !exists {
				t.Errorf("Expected message key '%s' not found in %s", key, lang)
				continue
			}

			placeholderCount := 0
			// Count %s and %d placeholders
			for i := 0; i < len(message)-1; i++ {
				if message[i] == '%' && (message[i+1] == 's' || message[i+1] == 'd') {
					placeholderCount++
				}
			}

			if placeholderCount != expectedPlaceholders {
				t.Errorf("Message key '%s' (%s) should have %d placeholders but has %d: %s",
					key, lang, expectedPlaceholders, placeholderCount, message)
			}
		}
	}
}

func TestLocalizer_T(t *testing.T) {
	localizer := NewLocalizer(DefaultLanguage)

	tests := []struct {
		name     string
		key      string
		args     []any
		expected string
	}{
		{name: "plain", key: "error.mood_required", expected: "Mood is required"},
		{name: "with argument", key: "error.rate_limited", args: []any{42},
			expected: "Too many requests. Please try again in 42 seconds."},
		{name: "unknown key", key: "this.key.does.not.exist", expected: "this.key.does.not.exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := localizer.T(tt.key, tt.args...); got != tt.expected {
				t.Errorf("T(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestLocalizer_FallsBackToEnglish(t *testing.T) {
	localizer := NewLocalizer(KoreanMessages)
	localizer.messages = map[string]string{}

	if got := localizer.T("error.mood_required"); got != "Mood is required" {
		t.Errorf("Expected English fallback, got: %s", got)
	}
}

func TestNewLocalizer_UnknownLanguage(t *testing.T) {
	localizer := NewLocalizer("xx")

	if got := localizer.T("error.mood_required"); got != "Mood is required" {
		t.Errorf("Expected English messages for unknown language, got: %s", got)
	}
}

func TestGetSupportedLanguages(t *testing.T) {
	languages := GetSupportedLanguages()

	if !slices.Contains(languages, DefaultLanguage) || !slices.Contains(languages, KoreanMessages) {
		t.Errorf("Expected %s and %s in supported languages, got %v", DefaultLanguage, KoreanMessages, languages)
	}
	if !slices.IsSorted(languages) {
		t.Errorf("Expected sorted languages, got %v", languages)
	}
}

func TestKoreanMessages(t *testing.T) {
	localizer := NewLocalizer(KoreanMessages)

	if got := localizer.T("error.no_playable"); got != "재생할 수 있는 음악을 찾을 수 없습니다." {
		t.Errorf("Unexpected Korean message: %s", got)
	}
	if localizer.Language() != KoreanMessages {
		t.Errorf("Expected language %s, got %s", KoreanMessages, localizer.Language())
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		language string
		expected bool
	}{
		{"en", true},
		{"ko", true},
		{"ch_be", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsSupported(tt.language); got != tt.expected {
			t.Errorf("IsSupported(%q) = %v, want %v", tt.language, got, tt.expected)
		}
	}
}

func TestMatchAcceptLanguage(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		fallback string
		expected string
	}{
		{name: "empty header", header: "", fallback: "ko", expected: "ko"},
		{name: "korean", header: "ko-KR,ko;q=0.9,en-US;q=0.8", fallback: "en", expected: "ko"},
		{name: "english", header: "en-US,en;q=0.9", fallback: "ko", expected: "en"},
		{name: "english preferred", header: "en;q=0.9,ko;q=0.5", fallback: "ko", expected: "en"},
		{name: "malformed", header: "=;;", fallback: "ko", expected: "ko"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchAcceptLanguage(tt.header, tt.fallback); got != tt.expected {
				t.Errorf("MatchAcceptLanguage(%q) = %s, want %s", tt.header, got, tt.expected)
			}
		})
	}
}

func BenchmarkLocalizer(b *testing.B) {
	localizer := NewLocalizer(KoreanMessages)

	b.ResetTimer()
	for range b.N {
		_ = localizer.T("error.rate_limited", 30)
	}
}
