package musiclink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// YouTubeOEmbedURL is the YouTube oEmbed API endpoint.
	YouTubeOEmbedURL = "https://www.youtube.com/oembed"
	// YouTubeRequestTimeout is the timeout for YouTube requests.
	YouTubeRequestTimeout = 10 * time.Second
)

var videoIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// YouTubeOEmbedResponse represents the response from YouTube's oEmbed API.
type YouTubeOEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// LinkResolver resolves YouTube and YouTube Music links to video metadata.
type LinkResolver struct {
	client    *resty.Client
	oembedURL string
}

// NewLinkResolver creates a new YouTube link resolver.
func NewLinkResolver(timeout time.Duration) *LinkResolver {
	if timeout <= 0 {
		timeout = YouTubeRequestTimeout
	}
	return &LinkResolver{
		client:    newRESTClient(timeout),
		oembedURL: YouTubeOEmbedURL,
	}
}

// CanResolve checks if the text is a YouTube or YouTube Music link.
func (r *LinkResolver) CanResolve(rawURL string) bool {
	return IsYouTubeURL(rawURL)
}

// Resolve fetches video metadata for a YouTube link using the oEmbed API.
func (r *LinkResolver) Resolve(ctx context.Context, rawURL string) (*Video, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract video ID: %w", err)
	}

	var oembed YouTubeOEmbedResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"url":    WatchURL(videoID),
			"format": "json",
		}).
		SetResult(&oembed).
		Get(r.oembedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch oEmbed data: %w", err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound || resp.StatusCode() == http.StatusUnauthorized:
		// oEmbed answers 401 for private and 404 for removed videos.
		return nil, ErrNotFound
	case resp.IsError():
		return nil, fmt.Errorf("oEmbed API returned status %d", resp.StatusCode())
	}

	thumbnail := oembed.ThumbnailURL
	if thumbnail == "" {
		thumbnail = ThumbnailURL(videoID)
	}

	return &Video{
		ID:        videoID,
		Title:     oembed.Title,
		Thumbnail: thumbnail,
		Channel:   oembed.AuthorName,
	}, nil
}

// IsYouTubeURL reports whether rawURL points at a YouTube host.
func IsYouTubeURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" {
		return false
	}

	switch strings.ToLower(u.Hostname()) {
	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be":
		return true
	}
	return false
}

// ExtractVideoID extracts the YouTube video ID from the common URL formats.
func ExtractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}

	var videoID string
	switch {
	case strings.EqualFold(u.Hostname(), "youtu.be"):
		videoID = strings.Trim(u.Path, "/")
	case strings.HasPrefix(u.Path, "/shorts/"), strings.HasPrefix(u.Path, "/embed/"):
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) > 1 {
			videoID = parts[1]
		}
	default:
		videoID = u.Query().Get("v")
	}

	if videoID == "" {
		return "", errors.New("no video ID in YouTube URL")
	}
	if !videoIDRegex.MatchString(videoID) {
		return "", fmt.Errorf("malformed video ID %q", videoID)
	}
	return videoID, nil
}

// WatchURL returns the canonical watch page URL of a video.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// ThumbnailURL returns the high quality thumbnail URL of a video.
func ThumbnailURL(videoID string) string {
	return "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg"
}
