package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	resolveStatusOK       = "ok"
	resolveStatusNotFound = "not_found"
	resolveStatusError    = "error"
)

// ProgressFunc is called after every resolution batch with the number of
// tracks resolved so far and the number of suggestions in the build.
type ProgressFunc func(resolved, total int)

// QueueBuilder turns suggestions into playable tracks, resolving them in
// fixed-size batches.
type QueueBuilder struct {
	searcher       VideoSearcher
	batchSize      int
	resolveTimeout time.Duration
	metrics        Metrics
	logger         *zap.Logger
	now            func() time.Time
}

func NewQueueBuilder(searcher VideoSearcher, batchSize int, resolveTimeout time.Duration,
	metrics Metrics, logger *zap.Logger) *QueueBuilder {
	if batchSize <= 0 {
		batchSize = DefaultResolveBatchSize
	}
	if metrics == nil {
		metrics = NopMetrics
	}
	return &QueueBuilder{
		searcher:       searcher,
		batchSize:      batchSize,
		resolveTimeout: resolveTimeout,
		metrics:        metrics,
		logger:         logger,
		now:            time.Now,
	}
}

// BuildQueue resolves suggestions batch by batch. Batch N+1 starts only after
// every search of batch N has settled. Suggestions that cannot be resolved are
// dropped; the order of the remaining tracks follows the input order.
// ErrNoPlayableTracks is returned when nothing resolved.
func (b *QueueBuilder) BuildQueue(ctx context.Context, suggestions []SongSuggestion,
	onProgress ProgressFunc) ([]ResolvedTrack, error) {
	started := b.now()
	total := len(suggestions)
	tracks := make([]ResolvedTrack, 0, total)

	for start := 0; start < total; start += b.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("queue build aborted: %w", err)
		}

		end := min(start+b.batchSize, total)
		batch := suggestions[start:end]
		tracks = append(tracks, b.resolveBatch(ctx, batch)...)

		b.logger.Debug("Resolution batch completed",
			zap.Int("batch_start", start),
			zap.Int("batch_size", len(batch)),
			zap.Int("resolved", len(tracks)),
			zap.Int("total", total))

		if onProgress != nil {
			onProgress(len(tracks), total)
		}
	}

	b.metrics.ObserveQueueBuild(b.now().Sub(started), len(tracks))

	if len(tracks) == 0 {
		return nil, ErrNoPlayableTracks
	}

	return tracks, nil
}

// resolveBatch runs one search per suggestion concurrently and returns the
// successful ones in input order.
func (b *QueueBuilder) resolveBatch(ctx context.Context, batch []SongSuggestion) []ResolvedTrack {
	slots := make([]*ResolvedTrack, len(batch))

	var g errgroup.Group
	for i, song := range batch {
		g.Go(func() error {
			slots[i] = b.resolve(ctx, song)
			return nil
		})
	}
	_ = g.Wait()

	resolved := make([]ResolvedTrack, 0, len(batch))
	for _, slot := range slots {
		if slot != nil {
			resolved = append(resolved, *slot)
		}
	}
	return resolved
}

func (b *QueueBuilder) resolve(ctx context.Context, song SongSuggestion) *ResolvedTrack {
	if b.resolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.resolveTimeout)
		defer cancel()
	}

	query := song.Query()
	video, err := b.searcher.Search(ctx, query)
	if err != nil {
		b.metrics.RecordResolve(resolveStatusError)
		b.logger.Warn("Dropping song that could not be resolved",
			zap.String("query", query),
			zap.Error(err))
		return nil
	}
	if video == nil || video.VideoID == "" {
		b.metrics.RecordResolve(resolveStatusNotFound)
		b.logger.Debug("Dropping song without video", zap.String("query", query))
		return nil
	}

	b.metrics.RecordResolve(resolveStatusOK)
	return &ResolvedTrack{
		ID:         b.trackID(song),
		Title:      song.Title,
		Artist:     song.Artist,
		VideoID:    video.VideoID,
		Thumbnail:  video.Thumbnail,
		VideoTitle: video.Title,
		Channel:    video.Channel,
		Duration:   video.Duration,
	}
}

// trackID stays unique even when a queue holds the same song twice.
func (b *QueueBuilder) trackID(song SongSuggestion) string {
	random := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s-%s-%d-%s", song.Artist, song.Title, b.now().UnixMilli(), random)
}
