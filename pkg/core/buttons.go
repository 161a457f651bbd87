package core

import (
	"fmt"

	"github.com/amarnathcjd/gogram/telegram"

	"github.com/nkoryagin/tgaudio/pkg/core/cache"
)

// CancelBtn aborts a playlist selection and drops the session.
var CancelBtn = telegram.Button.Data("Cancel", "dl_cancel")

// DownloadBtn starts the batch download of the selected tracks.
var DownloadBtn = telegram.Button.Data("Download", "dl_go")

// SelectionKeyboard builds the inline keyboard for the current page of a
// playlist selection: one toggle row per visible track, a navigation row
// when more pages exist, and the action row. Pages fit a varying number of
// tracks, so the Prev target comes from refitting the window that ends at
// the current start.
func SelectionKeyboard(s *cache.PlaylistSession, pageLen, maxLen int) *telegram.ReplyInlineMarkup {
	keyboard := telegram.NewKeyboard()

	entries := s.Entries()
	start := s.PageStart()
	end := min(start+pageLen, len(entries))

	for _, entry := range entries[start:end] {
		label := entry.Title
		if s.IsSelected(entry.ID) {
			label = "✅ " + label
		}
		if entry.Duration > 0 {
			label = fmt.Sprintf("%s (%s)", label, cache.FormatDuration(entry.Duration))
		}
		keyboard.AddRow(telegram.Button.Data(label, "sel_"+entry.ID))
	}

	var nav []telegram.KeyboardButton
	if start > 0 {
		prevLen := FitPageEnd(entries, start, maxLen)
		if prevLen == 0 {
			prevLen = 1
		}
		nav = append(nav, telegram.Button.Data("« Prev", fmt.Sprintf("page_%d", start-prevLen)))
	}
	if end < len(entries) {
		nav = append(nav, telegram.Button.Data("Next »", fmt.Sprintf("page_%d", end)))
	}
	if len(nav) > 0 {
		keyboard.AddRow(nav...)
	}

	download := DownloadBtn
	if n := s.SelectedCount(); n > 0 {
		download = telegram.Button.Data(fmt.Sprintf("Download (%d)", n), "dl_go")
	}
	keyboard.AddRow(download, CancelBtn)

	return keyboard.Build()
}
