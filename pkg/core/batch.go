package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Laky-64/gologging"

	"github.com/nkoryagin/tgaudio/pkg/config"
	"github.com/nkoryagin/tgaudio/pkg/core/cache"
	"github.com/nkoryagin/tgaudio/pkg/core/dl"
	"github.com/nkoryagin/tgaudio/pkg/core/tags"
)

// ErrTooLarge indicates that a downloaded file exceeds the delivery size
// limit. The file is removed before the error is returned.
var ErrTooLarge = errors.New("file exceeds the size limit")

// TrackSource produces metadata and audio for individual tracks.
type TrackSource interface {
	Resolve(ctx context.Context, videoID string) (cache.TrackInfo, error)
	Fetch(ctx context.Context, track cache.TrackInfo, onProgress dl.ProgressFunc) (string, error)
}

// Reporter receives batch lifecycle events. Deliver hands over a finished
// file; the batch removes the file afterwards regardless of the outcome.
type Reporter interface {
	Step(index, total int, title string)
	Progress(index, total int, title string, percent int)
	Deliver(track cache.TrackInfo, meta tags.TrackMeta, path string) error
	ItemFailed(index, total int, title string, err error)
}

// ItemResult records the outcome of one batch item.
type ItemResult struct {
	Entry cache.PlaylistEntry
	Err   error
}

// BatchResult summarizes a finished batch run.
type BatchResult struct {
	Delivered int
	Skipped   int
	Failed    int
	Results   []ItemResult
}

// Batch drives the download, enrichment and delivery of a set of tracks.
// One failing item never aborts the rest of the run.
type Batch struct {
	Source  TrackSource
	Report  Reporter
	MaxSize int64

	// Enrich and Embed default to the tags package and exist as fields so
	// tests can run a batch without touching the network.
	Enrich func(ctx context.Context, track cache.TrackInfo) tags.TrackMeta
	Embed  func(path string, meta tags.TrackMeta) error
}

// NewBatch creates a batch wired to the given source and reporter, using the
// configured size limit and the default enrichment pipeline.
func NewBatch(source TrackSource, report Reporter) *Batch {
	return &Batch{
		Source:  source,
		Report:  report,
		MaxSize: config.Conf.MaxFileSize,
		Enrich:  tags.Enrich,
		Embed:   tags.Embed,
	}
}

// Run processes every entry in order, reporting progress and delivering each
// finished file. It stops early only when the context is canceled; all other
// failures are recorded per item and the run continues.
func (b *Batch) Run(ctx context.Context, entries []cache.PlaylistEntry) BatchResult {
	total := len(entries)
	result := BatchResult{Results: make([]ItemResult, 0, total)}

	for i, entry := range entries {
		if ctx.Err() != nil {
			break
		}

		b.Report.Step(i+1, total, entry.Title)
		err := b.runOne(ctx, i+1, total, entry)

		result.Results = append(result.Results, ItemResult{Entry: entry, Err: err})
		switch {
		case err == nil:
			result.Delivered++
		case errors.Is(err, ErrTooLarge):
			result.Skipped++
			b.Report.ItemFailed(i+1, total, entry.Title, err)
		default:
			result.Failed++
			b.Report.ItemFailed(i+1, total, entry.Title, err)
			gologging.WarnF("batch item %d/%d failed: %v", i+1, total, err)
		}
	}

	return result
}

// runOne takes a single entry through resolve, fetch, enrich, embed and
// deliver.
func (b *Batch) runOne(ctx context.Context, index, total int, entry cache.PlaylistEntry) error {
	track, err := b.Source.Resolve(ctx, entry.ID)
	if err != nil {
		return err
	}

	path, err := b.Source.Fetch(ctx, track, func(percent int) {
		b.Report.Progress(index, total, entry.Title, percent)
	})
	if err != nil {
		return err
	}
	defer removeQuietly(path)

	meta := b.Enrich(ctx, track)
	if isMP4Container(path) {
		if err := b.Embed(path, meta); err != nil {
			return err
		}
	}

	// The limit applies to the finished file, embedded cover and lyrics
	// included.
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", dl.ErrAcquisition, err)
	}
	if b.MaxSize > 0 && info.Size() > b.MaxSize {
		return fmt.Errorf("%w (%d MB)", ErrTooLarge, info.Size()>>20)
	}

	return b.Report.Deliver(track, meta, path)
}

// isMP4Container reports whether the file can carry MP4 tag atoms.
func isMP4Container(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m4a", ".m4b", ".mp4":
		return true
	}
	return false
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		gologging.WarnF("failed to remove %s: %v", path, err)
	}
}

// YtSource is the production TrackSource backed by yt-dlp.
type YtSource struct{}

// Resolve fetches metadata for a video ID.
func (YtSource) Resolve(ctx context.Context, videoID string) (cache.TrackInfo, error) {
	yt := dl.NewYouTubeData("https://www.youtube.com/watch?v=" + videoID)
	return yt.GetTrack(ctx)
}

// Fetch downloads the audio for an already resolved track.
func (YtSource) Fetch(ctx context.Context, track cache.TrackInfo, onProgress dl.ProgressFunc) (string, error) {
	yt := dl.NewYouTubeData(track.URL)
	return yt.Download(ctx, onProgress)
}
