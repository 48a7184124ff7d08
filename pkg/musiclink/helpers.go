package musiclink

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// commonUserAgent is the user agent string used for all HTTP requests.
	commonUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// commonAcceptHeader is the accept header used for HTML requests.
	commonAcceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	// defaultHTTPTimeout is the default timeout for HTTP requests.
	defaultHTTPTimeout = 10 * time.Second
	// maxHTTPRedirects is the maximum number of HTTP redirects to follow.
	maxHTTPRedirects = 3
)

var (
	isoDurationRegex = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)
	digitsRegex      = regexp.MustCompile(`\d+`)
)

// newRESTClient creates a resty client with standard settings and redirect validation.
func newRESTClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", commonUserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxHTTPRedirects))
}

// parseISODuration parses the ISO 8601 durations the Data API returns, such as "PT4M13S".
func parseISODuration(s string) (time.Duration, error) {
	matches := isoDurationRegex.FindStringSubmatch(s)
	if matches == nil || s == "P" || s == "PT" {
		return 0, errors.New("invalid ISO 8601 duration: " + s)
	}

	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, unit := range units {
		if matches[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(matches[i+1])
		if err != nil {
			return 0, err
		}
		total += time.Duration(n) * unit
	}
	return total, nil
}

// parseClockDuration parses the "h:mm:ss" or "m:ss" length text shown on result pages.
func parseClockDuration(s string) time.Duration {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0
	}

	var total time.Duration
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + time.Duration(n)
	}
	return total * time.Second
}

// parseViewCount extracts the number from view texts like "1,234,567 views" or "조회수 1,234회".
func parseViewCount(s string) int64 {
	digits := strings.Join(digitsRegex.FindAllString(s, -1), "")
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
