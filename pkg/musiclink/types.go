// Package musiclink resolves free-text song queries and YouTube links to playable YouTube videos.
package musiclink

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a search produced no playable video.
var ErrNotFound = errors.New("no video found")

// Video holds the metadata of the top search hit.
type Video struct {
	ID        string        // YouTube video ID.
	Title     string        // Video title as published.
	Thumbnail string        // Thumbnail image URL.
	Channel   string        // Uploading channel name.
	Duration  time.Duration // Zero when the backend does not report it.
	Views     int64         // Zero when the backend does not report it.
}

// Searcher defines the interface for looking up the top video for a query.
type Searcher interface {
	// Search returns the first video result for query, or ErrNotFound.
	Search(ctx context.Context, query string) (*Video, error)

	// Name identifies the backend in logs and errors.
	Name() string
}
