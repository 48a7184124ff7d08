package musiclink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	// YouTubeResultsURL is the public search results page.
	YouTubeResultsURL = "https://www.youtube.com/results"
	// videoOnlyFilter restricts the results page to videos.
	videoOnlyFilter = "EgIQAQ=="
)

var initialDataMarkers = []string{"var ytInitialData = ", `window["ytInitialData"] = `}

// ErrNoInitialData is returned when the results page carries no parsable result data.
var ErrNoInitialData = errors.New("no ytInitialData in results page")

// WebSearcher searches videos by reading the data embedded in the public results page. It needs
// no credentials.
type WebSearcher struct {
	client     *resty.Client
	resultsURL string
}

// NewWebSearcher creates a results-page backend.
func NewWebSearcher(timeout time.Duration) *WebSearcher {
	return &WebSearcher{
		client:     newRESTClient(timeout),
		resultsURL: YouTubeResultsURL,
	}
}

// Name identifies the backend.
func (s *WebSearcher) Name() string {
	return "youtube-web"
}

// Search fetches the results page for query and returns its first video.
func (s *WebSearcher) Search(ctx context.Context, query string) (*Video, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", commonAcceptHeader).
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetQueryParams(map[string]string{
			"search_query": query,
			"sp":           videoOnlyFilter,
		}).
		Get(s.resultsURL)
	if err != nil {
		return nil, fmt.Errorf("results page request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("results page returned status %d", resp.StatusCode())
	}

	data, err := extractInitialData(resp.String())
	if err != nil {
		return nil, err
	}

	return firstVideo(data)
}

// extractInitialData cuts the ytInitialData JSON object out of a results page.
func extractInitialData(html string) (string, error) {
	for _, marker := range initialDataMarkers {
		start := strings.Index(html, marker)
		if start < 0 {
			continue
		}
		rest := html[start+len(marker):]
		end := strings.Index(rest, ";</script>")
		if end < 0 {
			continue
		}
		data := strings.TrimSpace(rest[:end])
		if gjson.Valid(data) {
			return data, nil
		}
	}
	return "", ErrNoInitialData
}

// firstVideo returns the first videoRenderer of the primary results, skipping ads, shelves
// and channels.
func firstVideo(data string) (*Video, error) {
	sections := gjson.Get(data, "contents.twoColumnSearchResultsRenderer.primaryContents.sectionListRenderer.contents")

	var video *Video
	sections.ForEach(func(_, section gjson.Result) bool {
		section.Get("itemSectionRenderer.contents").ForEach(func(_, item gjson.Result) bool {
			renderer := item.Get("videoRenderer")
			if !renderer.Exists() || renderer.Get("videoId").String() == "" {
				return true
			}
			video = videoFromRenderer(renderer)
			return false
		})
		return video == nil
	})

	if video == nil {
		return nil, ErrNotFound
	}
	return video, nil
}

func videoFromRenderer(renderer gjson.Result) *Video {
	videoID := renderer.Get("videoId").String()

	thumbnail := ThumbnailURL(videoID)
	if thumbs := renderer.Get("thumbnail.thumbnails").Array(); len(thumbs) > 0 {
		if url := thumbs[len(thumbs)-1].Get("url").String(); url != "" {
			thumbnail = url
		}
	}

	title := renderer.Get("title.runs.0.text").String()
	if title == "" {
		title = renderer.Get("title.simpleText").String()
	}

	return &Video{
		ID:        videoID,
		Title:     title,
		Thumbnail: thumbnail,
		Channel:   renderer.Get("ownerText.runs.0.text").String(),
		Duration:  parseClockDuration(renderer.Get("lengthText.simpleText").String()),
		Views:     parseViewCount(renderer.Get("viewCountText.simpleText").String()),
	}
}
