package http

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"moodtune/internal/i18n"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument counts and times requests under the route pattern, which keeps label cardinality
// independent of session IDs.
func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		duration := time.Since(start)
		s.metrics.RecordRequest(route, recorder.status, duration)
		s.logger.Debug("Request served",
			zap.String("route", route),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", duration))
	})
}

// limit rejects clients that exceed the per-minute request budget of scope.
func (a *API) limit(scope string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.floodgate == nil {
			next.ServeHTTP(w, r)
			return
		}

		client := clientIP(r)
		if a.floodgate.Allow(scope, client) {
			next.ServeHTTP(w, r)
			return
		}

		seconds := int(math.Ceil(a.floodgate.RetryAfter(scope, client).Seconds()))
		seconds = max(seconds, 1)

		a.metrics.RecordFloodRejection(scope)
		a.logger.Info("Request rejected by flood limiter",
			zap.String("scope", scope),
			zap.String("client", client))

		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		a.writeError(w, http.StatusTooManyRequests, a.localizer(r).T("error.rate_limited", seconds))
	})
}

// clientIP returns the remote address of r without its port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// localizer picks the message language from the Accept-Language header.
func (a *API) localizer(r *http.Request) *i18n.Localizer {
	return i18n.NewLocalizer(i18n.MatchAcceptLanguage(r.Header.Get("Accept-Language"), a.language))
}
