package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkoryagin/tgaudio/pkg/core/cache"
	"github.com/nkoryagin/tgaudio/pkg/core/dl"
	"github.com/nkoryagin/tgaudio/pkg/core/tags"
)

// fakeSource serves tracks from a map; file sizes are materialized as real
// temp files so the size check runs against the filesystem.
type fakeSource struct {
	t          *testing.T
	dir        string
	sizes      map[string]int
	resolveErr map[string]error
	fetched    []string
}

func (f *fakeSource) Resolve(_ context.Context, videoID string) (cache.TrackInfo, error) {
	if err := f.resolveErr[videoID]; err != nil {
		return cache.TrackInfo{}, err
	}
	return cache.TrackInfo{ID: videoID, Title: "Artist - " + videoID, Uploader: "Uploader"}, nil
}

func (f *fakeSource) Fetch(_ context.Context, track cache.TrackInfo, onProgress dl.ProgressFunc) (string, error) {
	f.fetched = append(f.fetched, track.ID)
	if onProgress != nil {
		onProgress(50)
		onProgress(100)
	}
	path := filepath.Join(f.dir, track.ID+".m4a")
	require.NoError(f.t, os.WriteFile(path, make([]byte, f.sizes[track.ID]), 0o644))
	return path, nil
}

// recordingReporter captures every event the batch emits.
type recordingReporter struct {
	steps     []string
	progress  []int
	delivered []string
	failures  []string
	paths     []string
}

func (r *recordingReporter) Step(_, _ int, title string)              { r.steps = append(r.steps, title) }
func (r *recordingReporter) Progress(_, _ int, _ string, percent int) { r.progress = append(r.progress, percent) }
func (r *recordingReporter) ItemFailed(_, _ int, title string, _ error) {
	r.failures = append(r.failures, title)
}
func (r *recordingReporter) Deliver(track cache.TrackInfo, _ tags.TrackMeta, path string) error {
	r.delivered = append(r.delivered, track.ID)
	r.paths = append(r.paths, path)
	return nil
}

func newTestBatch(source TrackSource, report Reporter, maxSize int64) *Batch {
	return &Batch{
		Source:  source,
		Report:  report,
		MaxSize: maxSize,
		Enrich: func(_ context.Context, track cache.TrackInfo) tags.TrackMeta {
			performer, title := tags.SplitTitle(track.Title, track.Uploader)
			return tags.TrackMeta{Performer: performer, Title: title}
		},
		Embed: func(string, tags.TrackMeta) error { return nil },
	}
}

func entriesFor(ids ...string) []cache.PlaylistEntry {
	entries := make([]cache.PlaylistEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, cache.PlaylistEntry{ID: id, Title: id})
	}
	return entries
}

func TestBatchSkipsOversizedAndContinues(t *testing.T) {
	dir := t.TempDir()
	source := &fakeSource{t: t, dir: dir, sizes: map[string]int{
		"aaaaaaaaaaa": 100,
		"bbbbbbbbbbb": 5000,
		"ccccccccccc": 100,
	}}
	report := &recordingReporter{}
	batch := newTestBatch(source, report, 1000)

	result := batch.Run(context.Background(), entriesFor("aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc"))

	assert.Equal(t, 2, result.Delivered)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Failed)
	assert.Equal(t, []string{"aaaaaaaaaaa", "ccccccccccc"}, report.delivered)
	assert.Equal(t, []string{"bbbbbbbbbbb"}, report.failures)

	// The third item must have been attempted after the oversized one.
	assert.Equal(t, []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc"}, source.fetched)

	require.Len(t, result.Results, 3)
	assert.ErrorIs(t, result.Results[1].Err, ErrTooLarge)

	// Every file, delivered or skipped, is gone afterwards.
	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestBatchSizeLimitCountsEmbeddedTags(t *testing.T) {
	dir := t.TempDir()
	source := &fakeSource{t: t, dir: dir, sizes: map[string]int{"ddddddddddd": 900}}
	report := &recordingReporter{}
	batch := newTestBatch(source, report, 1000)
	batch.Embed = func(path string, _ tags.TrackMeta) error {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		require.NoError(t, err)
		defer f.Close()
		_, err = f.Write(make([]byte, 200))
		return err
	}

	result := batch.Run(context.Background(), entriesFor("ddddddddddd"))

	// 900 bytes fit the limit on their own; the written tags push the
	// finished file past it.
	assert.Zero(t, result.Delivered)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, report.delivered)
	require.Len(t, result.Results, 1)
	assert.ErrorIs(t, result.Results[0].Err, ErrTooLarge)
}

func TestBatchIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	source := &fakeSource{
		t:          t,
		dir:        t.TempDir(),
		sizes:      map[string]int{"ggggggggggg": 10},
		resolveErr: map[string]error{"fffffffffff": fmt.Errorf("%w: %v", dl.ErrResolution, boom)},
	}
	report := &recordingReporter{}
	batch := newTestBatch(source, report, 1000)

	result := batch.Run(context.Background(), entriesFor("fffffffffff", "ggggggggggg"))

	assert.Equal(t, 1, result.Delivered)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"ggggggggggg"}, report.delivered)
	assert.ErrorIs(t, result.Results[0].Err, dl.ErrResolution)
}

func TestBatchReportsProgressPerItem(t *testing.T) {
	source := &fakeSource{t: t, dir: t.TempDir(), sizes: map[string]int{"hhhhhhhhhhh": 10}}
	report := &recordingReporter{}
	batch := newTestBatch(source, report, 0)

	batch.Run(context.Background(), entriesFor("hhhhhhhhhhh"))

	assert.Equal(t, []string{"hhhhhhhhhhh"}, report.steps)
	assert.Equal(t, []int{50, 100}, report.progress)
}

func TestBatchStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{t: t, dir: t.TempDir(), sizes: map[string]int{}}
	report := &recordingReporter{}
	batch := newTestBatch(source, report, 0)

	result := batch.Run(ctx, entriesFor("iiiiiiiiiii", "jjjjjjjjjjj"))
	assert.Empty(t, result.Results)
	assert.Empty(t, source.fetched)
}
