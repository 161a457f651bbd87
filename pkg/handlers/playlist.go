package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Laky-64/gologging"
	"github.com/amarnathcjd/gogram/telegram"

	"github.com/nkoryagin/tgaudio/pkg/config"
	"github.com/nkoryagin/tgaudio/pkg/core"
	"github.com/nkoryagin/tgaudio/pkg/core/cache"
	"github.com/nkoryagin/tgaudio/pkg/core/dl"
)

const sessionExpiredText = "This selection has expired. Send the playlist link again."

// handlePlaylistLink resolves a playlist, opens a selection session for the
// sender and shows the first page of tracks.
func handlePlaylistLink(m *telegram.NewMessage, yt *dl.YouTubeData) error {
	updater, err := newStatusUpdater(m, "🔍 Fetching playlist...")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	info, err := yt.GetPlaylist(ctx)
	cancel()
	if err != nil {
		gologging.WarnF("failed to resolve playlist %s: %v", yt.Query, err)
		_, err = updater.Edit("❌ Could not fetch this playlist.")
		return err
	}

	session := cache.NewPlaylistSession(info, yt.Query)
	cache.Sessions.Put(m.Sender.ID, session)

	text, keyboard, err := renderSelection(session)
	if err != nil {
		cache.Sessions.Delete(m.Sender.ID)
		_, err = updater.Edit("❌ The playlist entries are too large to display.")
		return err
	}

	_, err = updater.Edit(text, telegram.SendOptions{ReplyMarkup: keyboard})
	return err
}

// renderSelection produces the selection message text and keyboard for the
// session's current page, fitting as many tracks as the payload limit
// allows.
func renderSelection(s *cache.PlaylistSession) (string, *telegram.ReplyInlineMarkup, error) {
	entries := s.Entries()
	window := entries[s.PageStart():]

	pageLen, _, err := core.FitPage(window, config.Conf.MaxPayloadLen)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎵 %s\n", s.Title))
	sb.WriteString(fmt.Sprintf("%d tracks", len(entries)))
	if s.DeclaredTotal > len(entries) {
		sb.WriteString(fmt.Sprintf(" (of %d, list truncated)", s.DeclaredTotal))
	}
	if n := s.SelectedCount(); n > 0 {
		sb.WriteString(fmt.Sprintf(", %d selected", n))
	}
	sb.WriteString("\n\nTap tracks to select them, then press Download.")

	return sb.String(), core.SelectionKeyboard(s, pageLen, config.Conf.MaxPayloadLen), nil
}

// selectionSession fetches the sender's active session or tells them it is
// gone.
func selectionSession(cb *telegram.CallbackQuery) (*cache.PlaylistSession, bool) {
	session, ok := cache.Sessions.Get(cb.SenderID)
	if !ok {
		_, _ = cb.Answer(sessionExpiredText, &telegram.CallbackOptions{Alert: true})
		_, _ = cb.Delete()
	}
	return session, ok
}

// toggleTrackHandler flips one track's selection state.
func toggleTrackHandler(cb *telegram.CallbackQuery) error {
	session, ok := selectionSession(cb)
	if !ok {
		return nil
	}

	id := strings.TrimPrefix(cb.DataString(), "sel_")
	if _, known := session.Entry(id); !known {
		_, _ = cb.Answer("Unknown track.", &telegram.CallbackOptions{Alert: true})
		return nil
	}
	session.ToggleSelect(id)

	return refreshSelection(cb, session)
}

// turnPageHandler moves the selection window to another page.
func turnPageHandler(cb *telegram.CallbackQuery) error {
	session, ok := selectionSession(cb)
	if !ok {
		return nil
	}

	start, err := strconv.Atoi(strings.TrimPrefix(cb.DataString(), "page_"))
	if err != nil {
		return nil
	}
	session.SetPageStart(start)

	return refreshSelection(cb, session)
}

// refreshSelection re-renders the selection message in place.
func refreshSelection(cb *telegram.CallbackQuery, session *cache.PlaylistSession) error {
	text, keyboard, err := renderSelection(session)
	if err != nil {
		if errors.Is(err, core.ErrPageOverflow) {
			_, _ = cb.Answer("This page does not fit; try another one.", &telegram.CallbackOptions{Alert: true})
			return nil
		}
		return err
	}

	_, err = cb.Edit(text, &telegram.SendOptions{ReplyMarkup: keyboard})
	return err
}

// startBatchHandler consumes the session and downloads the selected tracks.
func startBatchHandler(cb *telegram.CallbackQuery) error {
	session, ok := selectionSession(cb)
	if !ok {
		return nil
	}

	selected := session.Selected()
	if len(selected) == 0 {
		_, _ = cb.Answer("Select at least one track first.", &telegram.CallbackOptions{Alert: true})
		return nil
	}

	// The session is consumed; a stale keyboard after this point answers
	// with the expiry notice.
	cache.Sessions.Delete(cb.SenderID)
	_, _ = cb.Answer(fmt.Sprintf("Downloading %d track(s)...", len(selected)), &telegram.CallbackOptions{})

	msg, err := cb.Edit(fmt.Sprintf("⬇️ Downloading %d track(s)...", len(selected)))
	if err != nil {
		return err
	}

	updater := &statusUpdater{NewMessage: msg}
	return runBatch(cb.Client, updater, cb.ChatID, selected)
}

// cancelSelectionHandler drops the session and removes the keyboard.
func cancelSelectionHandler(cb *telegram.CallbackQuery) error {
	cache.Sessions.Delete(cb.SenderID)
	_, _ = cb.Answer("Canceled.", &telegram.CallbackOptions{})
	_, err := cb.Delete()
	return err
}
