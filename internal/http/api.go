package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"moodtune/internal/core"
	"moodtune/internal/flood"
	"moodtune/internal/i18n"
)

// maxBodyBytes bounds request bodies; every request is a small JSON object.
const maxBodyBytes = 64 << 10

// Dependencies are the services behind the API.
type Dependencies struct {
	Recommender core.Recommender
	Searcher    core.VideoSearcher
	Sessions    *core.SessionManager
	Floodgate   *flood.Floodgate // nil disables flood limiting
	Language    string           // default message language
}

// API implements the HTTP handlers.
type API struct {
	recommender core.Recommender
	searcher    core.VideoSearcher
	sessions    *core.SessionManager
	floodgate   *flood.Floodgate
	language    string
	metrics     *Metrics
	logger      *zap.Logger
}

func NewAPI(deps Dependencies, metrics *Metrics, logger *zap.Logger) *API {
	language := deps.Language
	if !i18n.IsSupported(language) {
		language = i18n.DefaultLanguage
	}
	return &API{
		recommender: deps.Recommender,
		searcher:    deps.Searcher,
		sessions:    deps.Sessions,
		floodgate:   deps.Floodgate,
		language:    language,
		metrics:     metrics,
		logger:      logger,
	}
}

type recommendRequest struct {
	Mood    string   `json:"mood"`
	Count   int      `json:"count,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

type recommendResponse struct {
	Songs   []core.SongSuggestion `json:"songs"`
	Warning string                `json:"warning,omitempty"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	VideoID   string `json:"videoId"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Duration  int64  `json:"duration"` // seconds
	Channel   string `json:"channel"`
	Views     int64  `json:"views"`
}

type moodRequest struct {
	Mood string `json:"mood"`
}

type seekRequest struct {
	Index *int `json:"index"`
}

type endedRequest struct {
	TrackID string `json:"trackId"`
}

type endedResponse struct {
	Advanced bool          `json:"advanced"`
	Session  core.Snapshot `json:"session"`
}

type extendResponse struct {
	Appended []core.ResolvedTrack `json:"appended"`
	Session  core.Snapshot        `json:"session"`
}

type failedSessionResponse struct {
	Error   string        `json:"error"`
	Session core.Snapshot `json:"session"`
}

type moodsResponse struct {
	Presets []core.MoodPreset `json:"presets"`
	Recent  []core.RecentMood `json:"recent"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Recommend handles POST /recommend. Recommendation faults never surface here: they come back
// as the fallback list with a warning. The recommender bounds the count.
func (a *API) Recommend(w http.ResponseWriter, r *http.Request) {
	loc := a.localizer(r)

	var req recommendRequest
	if !a.decode(w, r, &req, loc) {
		return
	}

	mood := strings.TrimSpace(req.Mood)
	if mood == "" {
		a.writeError(w, http.StatusBadRequest, loc.T("error.mood_required"))
		return
	}
	rec := a.recommender.Recommend(r.Context(), mood, req.Count, req.Exclude)
	if len(rec.Songs) == 0 {
		a.writeError(w, http.StatusInternalServerError, loc.T("error.no_recommendations"))
		return
	}

	resp := recommendResponse{Songs: rec.Songs}
	if rec.Fallback {
		a.metrics.RecordFallback()
		resp.Warning = loc.T("warning.fallback")
	}
	writeJSON(w, http.StatusOK, resp)
}

// Search handles POST /search with the top video for a free-text query or a YouTube link.
func (a *API) Search(w http.ResponseWriter, r *http.Request) {
	loc := a.localizer(r)

	var req searchRequest
	if !a.decode(w, r, &req, loc) {
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		a.writeError(w, http.StatusBadRequest, loc.T("error.query_required"))
		return
	}

	video, err := a.searcher.Search(r.Context(), query)
	if err != nil {
		a.logger.Error("Search failed", zap.String("query", query), zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, loc.T("error.search_failed"))
		return
	}
	if video == nil {
		a.writeError(w, http.StatusNotFound, loc.T("error.search_no_results"))
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		VideoID:   video.VideoID,
		Title:     video.Title,
		Thumbnail: video.Thumbnail,
		Duration:  int64(video.Duration.Seconds()),
		Channel:   video.Channel,
		Views:     video.Views,
	})
}

// CreateSession handles POST /sessions. The queue is built before the response is written.
func (a *API) CreateSession(w http.ResponseWriter, r *http.Request) {
	loc := a.localizer(r)

	var req moodRequest
	if !a.decode(w, r, &req, loc) {
		return
	}

	session, err := a.sessions.Create(r.Context(), req.Mood)
	a.writeBuildResult(w, loc, session, err, http.StatusCreated)
}

// RestartSession handles POST /sessions/{id}/mood, rebuilding the queue for a new mood.
func (a *API) RestartSession(w http.ResponseWriter, r *http.Request) {
	loc := a.localizer(r)

	var req moodRequest
	if !a.decode(w, r, &req, loc) {
		return
	}

	session, err := a.sessions.Restart(r.Context(), r.PathValue("id"), req.Mood)
	a.writeBuildResult(w, loc, session, err, http.StatusOK)
}

func (a *API) writeBuildResult(w http.ResponseWriter, loc *i18n.Localizer, session *core.Session, err error,
	successStatus int) {
	switch {
	case errors.Is(err, core.ErrEmptyMood):
		a.writeError(w, http.StatusBadRequest, loc.T("error.mood_required"))
	case errors.Is(err, core.ErrSessionNotFound):
		a.writeError(w, http.StatusNotFound, loc.T("error.session_not_found"))
	case err != nil && session != nil:
		snap := present(loc, session)
		writeJSON(w, http.StatusUnprocessableEntity, failedSessionResponse{Error: snap.Error, Session: snap})
	case err != nil:
		a.logger.Error("Session build failed", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, loc.T("error.generic"))
	default:
		writeJSON(w, successStatus, present(loc, session))
	}
}

// GetSession handles GET /sessions/{id}.
func (a *API) GetSession(w http.ResponseWriter, r *http.Request) {
	loc := a.localizer(r)
	session, ok := a.session(w, r, loc)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, present(loc, session))
}

// DeleteSession handles DELETE /sessions/{id}.
func (a *API) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Delete(r.PathValue("id")); err != nil {
		a.writeError(w, http.StatusNotFound, a.localizer(r).T("error.session_not_found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Next handles POST /sessions/{id}/next.
func (a *API) Next(w http.ResponseWriter, r *http.Request) {
	loc := a.localizer(r)
	session, ok := a.session(w, r, loc)
	if !ok {
		return
	}
	session.Next()
	writeJSON(w, http.StatusOK, present(loc, session))
}

// Previous handles POST /sessions/{id}/previous.
func (a *API) Previous(w http.ResponseWriter, r *http.Request) {
	loc := a.localizer(r)
	session, ok := a.session(w, r, loc)
	if !ok {
		return
	}
	session.Previous()
	writeJSON(w, http.StatusOK, present(loc, session))
}

// Seek handles POST /sessions/{id}/seek with body {"index": n}.
func (a *API) Seek(w http.ResponseWriter, r *http.Request) {
	loc := a.localizer(r)
	session, ok := a.session(w, r, loc)
	if !ok {
		return
	}

	var req seekRequest
	if !a.decode(w, r, &req, loc) {
		return
	}
	if req.Index == nil {
		a.writeError(w, http.StatusBadRequest, loc.T("error.invalid_request"))
		return
	}

	if _, err := session.Seek(*req.Index); err != nil {
		a.writeError(w, http.StatusBadRequest, loc.T("error.index_out_of_range", *req.Index))
		return
	}
	writeJSON(w, http.StatusOK, present(loc, session))
}

// TrackEnded handles POST /sessions/{id}/ended, the player's end-of-track signal. An empty body
// refers to the current track and is ignored right after an advance.
func (a *API) TrackEnded(w http.ResponseWriter, r *http.Request) {
	loc := a.localizer(r)
	session, ok := a.session(w, r, loc)
	if !ok {
		return
	}

	var req endedRequest
	if !a.decode(w, r, &req, loc) {
		return
	}

	_, advanced := session.TrackEnded(req.TrackID)
	writeJSON(w, http.StatusOK, endedResponse{Advanced: advanced, Session: present(loc, session)})
}

// Extend handles POST /sessions/{id}/extend, appending more songs for the session mood.
func (a *API) Extend(w http.ResponseWriter, r *http.Request) {
	loc := a.localizer(r)
	session, ok := a.session(w, r, loc)
	if !ok {
		return
	}

	appended, err := session.Extend(r.Context())
	switch {
	case errors.Is(err, core.ErrSessionBusy):
		a.writeError(w, http.StatusConflict, loc.T("error.session_busy"))
		return
	case errors.Is(err, core.ErrSessionNotReady):
		a.writeError(w, http.StatusConflict, loc.T("error.session_not_ready"))
		return
	case err != nil:
		a.logger.Warn("Queue extension failed", zap.String("session", session.ID()), zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, loc.T("error.generic"))
		return
	}

	if appended == nil {
		appended = []core.ResolvedTrack{}
	}
	writeJSON(w, http.StatusOK, extendResponse{Appended: appended, Session: present(loc, session)})
}

// Moods handles GET /moods with the preset moods and the recently used ones.
func (a *API) Moods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, moodsResponse{
		Presets: core.PresetMoods,
		Recent:  a.sessions.RecentMoods(r.Context()),
	})
}

func (a *API) session(w http.ResponseWriter, r *http.Request, loc *i18n.Localizer) (*core.Session, bool) {
	session, err := a.sessions.Get(r.PathValue("id"))
	if err != nil {
		a.writeError(w, http.StatusNotFound, loc.T("error.session_not_found"))
		return nil, false
	}
	return session, true
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func (a *API) decode(w http.ResponseWriter, r *http.Request, v any, loc *i18n.Localizer) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	a.writeError(w, http.StatusBadRequest, loc.T("error.invalid_request"))
	return false
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// present snapshots session with its warning and failure in the client's language.
func present(loc *i18n.Localizer, session *core.Session) core.Snapshot {
	snap := session.Snapshot()
	if snap.Queue == nil {
		snap.Queue = []core.ResolvedTrack{}
	}
	if snap.Warning != "" {
		snap.Warning = loc.T("warning.fallback")
	}
	if snap.Status == core.StatusFailed {
		if errors.Is(session.Err(), core.ErrNoPlayableTracks) {
			snap.Error = loc.T("error.no_playable")
		} else {
			snap.Error = loc.T("error.generic")
		}
	}
	return snap
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
