package tags

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Laky-64/gologging"

	"github.com/nkoryagin/tgaudio/pkg/config"
	"github.com/nkoryagin/tgaudio/pkg/core/dl"
)

const lyricsTimeout = 10 * time.Second

// bracketRe strips parenthesized and bracketed noise such as "(Official
// Video)" before querying the lyrics catalog.
var bracketRe = regexp.MustCompile(`\s*[\(\[].*?[\)\]]`)

type lrclibResponse struct {
	PlainLyrics  string `json:"plainLyrics"`
	SyncedLyrics string `json:"syncedLyrics"`
	Instrumental bool   `json:"instrumental"`
}

// cleanLyricsQuery normalizes a tag value for the lyrics lookup.
func cleanLyricsQuery(s string) string {
	return strings.TrimSpace(bracketRe.ReplaceAllString(s, ""))
}

// GetLyrics looks up lyrics for a track on lrclib, preferring time-synced
// lyrics over plain ones. Lyrics are strictly best-effort: any miss, network
// failure or malformed response yields an empty string.
func GetLyrics(ctx context.Context, artist, title string) string {
	artist = cleanLyricsQuery(artist)
	title = cleanLyricsQuery(title)
	if artist == "" || title == "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, lyricsTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("artist_name", artist)
	query.Set("track_name", title)
	endpoint := strings.TrimRight(config.Conf.LrclibUrl, "/") + "/api/get?" + query.Encode()

	resp, err := dl.SendRequest(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		gologging.DebugF("lyrics lookup failed for %s - %s: %v", artist, title, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var body lrclibResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		gologging.DebugF("lyrics decode failed for %s - %s: %v", artist, title, err)
		return ""
	}

	if body.SyncedLyrics != "" {
		return body.SyncedLyrics
	}
	return body.PlainLyrics
}

// IsSynced reports whether lyrics carry LRC timestamps.
func IsSynced(lyrics string) bool {
	return strings.HasPrefix(strings.TrimSpace(lyrics), "[")
}

// WriteLRC stores synced lyrics in a companion .lrc file next to the audio
// file and returns its path.
func WriteLRC(audioPath, lyrics string) (string, error) {
	lrcPath := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".lrc"
	if err := os.WriteFile(lrcPath, []byte(lyrics), 0o644); err != nil {
		return "", fmt.Errorf("failed to write the lyrics file: %w", err)
	}
	return lrcPath, nil
}
