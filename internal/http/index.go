package http

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"moodtune/internal/core"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .mood { display: inline-block; margin: 4px; padding: 6px 12px; border-radius: 16px; background: #f0f0f5; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1 class="header">🎵 {{.Title}}</h1>
    <p>{{.Tagline}}</p>

    <h2>{{.PresetsLabel}}</h2>
    <div>{{range .Presets}}<span class="mood">{{.Emoji}} {{.Label}}</span>{{end}}</div>
{{if .Recent}}
    <h2>{{.RecentLabel}}</h2>
    <div>{{range .Recent}}<span class="mood">{{.Mood}}</span>{{end}}</div>
{{end}}
    <h2>{{.EndpointsLabel}}</h2>
    <div class="endpoint">🎧 POST /recommend, POST /search</div>
    <div class="endpoint">▶️ POST /sessions, GET /sessions/{id}</div>
    <div class="endpoint">🌈 <a href="/moods">/moods</a></div>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Readiness check</div>
</body>
</html>
`))

type indexPage struct {
	Lang           string
	Title          string
	Tagline        string
	PresetsLabel   string
	RecentLabel    string
	EndpointsLabel string
	Presets        []core.MoodPreset
	Recent         []core.RecentMood
}

// Index handles GET / with a small localized overview page.
func (a *API) Index(w http.ResponseWriter, r *http.Request) {
	loc := a.localizer(r)

	page := indexPage{
		Lang:           loc.Language(),
		Title:          loc.T("page.title"),
		Tagline:        loc.T("page.tagline"),
		PresetsLabel:   loc.T("page.presets"),
		RecentLabel:    loc.T("page.recent"),
		EndpointsLabel: loc.T("page.endpoint"),
		Presets:        core.PresetMoods,
		Recent:         a.sessions.RecentMoods(r.Context()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := indexTemplate.Execute(w, page); err != nil {
		a.logger.Warn("Failed to render index page", zap.Error(err))
	}
}
