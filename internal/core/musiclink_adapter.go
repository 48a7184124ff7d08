package core

import (
	"context"
	"errors"

	"moodtune/pkg/musiclink"
)

// musicLinkSearcher adapts pkg/musiclink.Manager to core.VideoSearcher.
type musicLinkSearcher struct {
	manager *musiclink.Manager
}

// NewMusicLinkSearcher creates a VideoSearcher backed by the music link manager.
func NewMusicLinkSearcher(manager *musiclink.Manager) VideoSearcher {
	return &musicLinkSearcher{manager: manager}
}

// Search resolves query to its top video. A query without hits yields nil and no error.
func (a *musicLinkSearcher) Search(ctx context.Context, query string) (*VideoResult, error) {
	video, err := a.manager.Search(ctx, query)
	if errors.Is(err, musiclink.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &VideoResult{
		VideoID:   video.ID,
		Title:     video.Title,
		Thumbnail: video.Thumbnail,
		Channel:   video.Channel,
		Duration:  video.Duration,
		Views:     video.Views,
	}, nil
}
