package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Laky-64/gologging"
	"github.com/amarnathcjd/gogram/telegram"

	"github.com/nkoryagin/tgaudio/pkg/core"
	"github.com/nkoryagin/tgaudio/pkg/core/cache"
	"github.com/nkoryagin/tgaudio/pkg/core/dl"
	"github.com/nkoryagin/tgaudio/pkg/core/tags"
)

const (
	resolveTimeout = 30 * time.Second
	batchTimeout   = 2 * time.Hour
)

// urlWatcher reacts to YouTube links sent in private chat. Video links go
// straight into the download pipeline; playlist links open a track
// selection.
func urlWatcher(m *telegram.NewMessage) error {
	if !m.IsPrivate() {
		return nil
	}

	input := coalesce(getUrl(m, false), strings.TrimSpace(m.Text()))
	if input == "" || strings.HasPrefix(input, "/") {
		return nil
	}

	yt := dl.NewYouTubeData(input)
	if !yt.IsValid() {
		_, err := m.Reply("Send me a YouTube video or playlist link.")
		return err
	}

	if yt.IsPlaylist() {
		return handlePlaylistLink(m, yt)
	}
	return handleTrackLink(m, yt)
}

// handleTrackLink downloads a single video and delivers the tagged audio.
func handleTrackLink(m *telegram.NewMessage, yt *dl.YouTubeData) error {
	updater, err := newStatusUpdater(m, "🔍 Fetching track info...")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	track, err := yt.GetTrack(ctx)
	cancel()
	if err != nil {
		gologging.WarnF("failed to resolve %s: %v", yt.Query, err)
		_, err = updater.Edit("❌ Could not fetch info for this link.")
		return err
	}

	entry := cache.PlaylistEntry{ID: track.ID, Title: track.Title, Duration: track.Duration}
	return runBatch(m.Client, updater, m.ChatID(), []cache.PlaylistEntry{entry})
}

// runBatch executes the download batch for the given entries and posts the
// summary when more than one track was requested.
func runBatch(c *telegram.Client, updater *statusUpdater, chatID int64, entries []cache.PlaylistEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	reporter := &deliveryReporter{updater: updater, client: c, chatID: chatID}
	result := core.NewBatch(core.YtSource{}, reporter).Run(ctx, entries)

	if len(entries) == 1 && result.Delivered == 1 {
		_, err := updater.Delete()
		return err
	}

	summary := fmt.Sprintf("Done: %d delivered", result.Delivered)
	if result.Skipped > 0 {
		summary += fmt.Sprintf(", %d too large", result.Skipped)
	}
	if result.Failed > 0 {
		summary += fmt.Sprintf(", %d failed", result.Failed)
	}
	_, err := updater.Edit(summary)
	return err
}

// deliveryReporter renders batch progress into the status message and sends
// finished files into the chat.
type deliveryReporter struct {
	updater *statusUpdater
	client  *telegram.Client
	chatID  int64
}

func (r *deliveryReporter) Step(index, total int, title string) {
	_, _ = r.updater.Edit(fmt.Sprintf("⬇️ [%d/%d] %s", index, total, truncate(title, 60)))
}

func (r *deliveryReporter) Progress(index, total int, title string, percent int) {
	_, _ = r.updater.Edit(fmt.Sprintf("⬇️ [%d/%d] %s — %d%%", index, total, truncate(title, 60), percent))
}

func (r *deliveryReporter) ItemFailed(index, total int, title string, err error) {
	reason := "download failed"
	switch {
	case errors.Is(err, core.ErrTooLarge):
		reason = "file is too large to send"
	case errors.Is(err, dl.ErrResolution):
		reason = "could not fetch info"
	case errors.Is(err, tags.ErrEmbedding):
		reason = "could not tag the file"
	}
	_, _ = r.client.SendMessage(r.chatID,
		fmt.Sprintf("⚠️ [%d/%d] Skipped %s: %s.", index, total, truncate(title, 60), reason),
		&telegram.SendOptions{LinkPreview: false})
}

func (r *deliveryReporter) Deliver(track cache.TrackInfo, meta tags.TrackMeta, path string) error {
	_, _ = r.updater.Edit(fmt.Sprintf("📤 Uploading %s...", truncate(meta.Title, 60)))

	_, err := r.client.SendMedia(r.chatID, path, &telegram.MediaOptions{
		Caption: fmtTrackLine(meta.Performer, meta.Title),
		Attributes: []telegram.DocumentAttribute{
			&telegram.DocumentAttributeAudio{
				Duration:  int32(track.Duration),
				Title:     meta.Title,
				Performer: meta.Performer,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send the audio: %w", err)
	}

	if tags.IsSynced(meta.Lyrics) {
		r.sendLyricsFile(path, meta)
	}
	return nil
}

// sendLyricsFile ships synced lyrics as a companion .lrc document. Failures
// here never fail the track.
func (r *deliveryReporter) sendLyricsFile(audioPath string, meta tags.TrackMeta) {
	lrcPath, err := tags.WriteLRC(audioPath, meta.Lyrics)
	if err != nil {
		gologging.WarnF("failed to write lyrics for %s: %v", meta.Title, err)
		return
	}
	defer func() {
		if err := os.Remove(lrcPath); err != nil {
			gologging.WarnF("failed to remove %s: %v", lrcPath, err)
		}
	}()

	_, err = r.client.SendMedia(r.chatID, lrcPath, &telegram.MediaOptions{
		Caption:       fmtTrackLine(meta.Performer, meta.Title) + " (lyrics)",
		ForceDocument: true,
	})
	if err != nil {
		gologging.WarnF("failed to send lyrics for %s: %v", meta.Title, err)
	}
}
