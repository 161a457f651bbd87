package core

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/nkoryagin/tgaudio/pkg/core/cache"
)

// ErrPageOverflow indicates that not even a single entry fits within the
// payload limit.
var ErrPageOverflow = errors.New("selection page does not fit the payload limit")

const entryThumbnail = "https://i.ytimg.com/vi/%s/default.jpg"

type pageTrack struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Thumb    string `json:"thumb"`
}

type pagePayload struct {
	Tracks []pageTrack `json:"tracks"`
}

// EncodePage serializes a run of playlist entries into the URL-safe payload
// attached to a selection view.
func EncodePage(entries []cache.PlaylistEntry) (string, error) {
	payload := pagePayload{Tracks: make([]pageTrack, 0, len(entries))}
	for _, e := range entries {
		payload.Tracks = append(payload.Tracks, pageTrack{
			ID:       e.ID,
			Title:    e.Title,
			Duration: cache.FormatDuration(e.Duration),
			Thumb:    fmt.Sprintf(entryThumbnail, e.ID),
		})
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode the page: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// FitPage finds the largest page starting at the front of entries whose
// encoded payload stays within maxLen. Encoded length grows with every
// appended entry, so a binary search over the page size is exact. It returns
// the page size and its payload, or ErrPageOverflow when even a single entry
// is too large.
func FitPage(entries []cache.PlaylistEntry, maxLen int) (int, string, error) {
	if len(entries) == 0 || maxLen <= 0 {
		return 0, "", ErrPageOverflow
	}

	// sort.Search finds the smallest size that overflows; everything below
	// it fits.
	overflowAt := sort.Search(len(entries), func(i int) bool {
		encoded, err := EncodePage(entries[:i+1])
		return err != nil || len(encoded) > maxLen
	})
	if overflowAt == 0 {
		return 0, "", ErrPageOverflow
	}

	payload, err := EncodePage(entries[:overflowAt])
	if err != nil {
		return 0, "", err
	}
	return overflowAt, payload, nil
}

// FitPageEnd is the backward counterpart of FitPage: it returns the largest
// count of entries ending just before end whose encoded payload stays within
// maxLen. It steps the page start back so the previous page is as full as
// the limit allows.
func FitPageEnd(entries []cache.PlaylistEntry, end, maxLen int) int {
	if end <= 0 || maxLen <= 0 {
		return 0
	}
	if end > len(entries) {
		end = len(entries)
	}

	overflowAt := sort.Search(end, func(i int) bool {
		encoded, err := EncodePage(entries[end-i-1 : end])
		return err != nil || len(encoded) > maxLen
	})
	return overflowAt
}
