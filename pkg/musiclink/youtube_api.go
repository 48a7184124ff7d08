package musiclink

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// YouTubeDataAPIURL is the base URL of the YouTube Data API v3.
const YouTubeDataAPIURL = "https://www.googleapis.com/youtube/v3"

// ErrQuotaExceeded is returned when the Data API rejects a call for quota reasons.
var ErrQuotaExceeded = errors.New("YouTube Data API quota exceeded")

type apiThumbnail struct {
	URL string `json:"url"`
}

type apiSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string                  `json:"title"`
			ChannelTitle string                  `json:"channelTitle"`
			Thumbnails   map[string]apiThumbnail `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type apiVideosResponse struct {
	Items []struct {
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// DataAPISearcher searches videos through the YouTube Data API v3.
type DataAPISearcher struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

// NewDataAPISearcher creates a Data API backend authenticated with apiKey.
func NewDataAPISearcher(apiKey string, timeout time.Duration) *DataAPISearcher {
	return &DataAPISearcher{
		client:  newRESTClient(timeout),
		apiKey:  apiKey,
		baseURL: YouTubeDataAPIURL,
	}
}

// Name identifies the backend.
func (s *DataAPISearcher) Name() string {
	return "youtube-api"
}

// Search runs a single video search limited to one result and enriches it with duration and views.
func (s *DataAPISearcher) Search(ctx context.Context, query string) (*Video, error) {
	var result apiSearchResponse
	var apiErr apiErrorResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"part":       "snippet",
			"type":       "video",
			"maxResults": "1",
			"q":          query,
			"key":        s.apiKey,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Get(s.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp.StatusCode(), &apiErr)
	}

	if len(result.Items) == 0 || result.Items[0].ID.VideoID == "" {
		return nil, ErrNotFound
	}

	item := result.Items[0]
	video := &Video{
		ID:        item.ID.VideoID,
		Title:     item.Snippet.Title,
		Channel:   item.Snippet.ChannelTitle,
		Thumbnail: pickThumbnail(item.Snippet.Thumbnails, item.ID.VideoID),
	}

	// Duration and views are cosmetic; a failing details call keeps the hit.
	_ = s.fillDetails(ctx, video)

	return video, nil
}

func (s *DataAPISearcher) fillDetails(ctx context.Context, video *Video) error {
	var result apiVideosResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"part": "contentDetails,statistics",
			"id":   video.ID,
			"key":  s.apiKey,
		}).
		SetResult(&result).
		Get(s.baseURL + "/videos")
	if err != nil {
		return err
	}
	if resp.IsError() || len(result.Items) == 0 {
		return fmt.Errorf("videos request returned status %d", resp.StatusCode())
	}

	item := result.Items[0]
	if d, err := parseISODuration(item.ContentDetails.Duration); err == nil {
		video.Duration = d
	}
	if n, err := strconv.ParseInt(item.Statistics.ViewCount, 10, 64); err == nil {
		video.Views = n
	}
	return nil
}

func pickThumbnail(thumbnails map[string]apiThumbnail, videoID string) string {
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := thumbnails[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ThumbnailURL(videoID)
}

func apiError(status int, body *apiErrorResponse) error {
	for _, e := range body.Error.Errors {
		if e.Reason == "quotaExceeded" || e.Reason == "dailyLimitExceeded" {
			return ErrQuotaExceeded
		}
	}
	if body.Error.Message != "" {
		return fmt.Errorf("YouTube Data API returned status %d: %s", status, body.Error.Message)
	}
	return fmt.Errorf("YouTube Data API returned status %d", status)
}
