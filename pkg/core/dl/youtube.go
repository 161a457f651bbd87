package dl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nkoryagin/tgaudio/pkg/config"
	"github.com/nkoryagin/tgaudio/pkg/core/cache"
)

var (
	// ErrResolution indicates that track or playlist metadata could not be
	// fetched for a link.
	ErrResolution = errors.New("could not resolve link")

	// ErrAcquisition indicates that the audio payload could not be
	// downloaded for an already resolved track.
	ErrAcquisition = errors.New("download failed")
)

const (
	audioFormat        = "bestaudio[ext=m4a]/bestaudio/best"
	outputTemplate     = "%(id)s.%(ext)s"
	progressLinePrefix = "progress "
	progressTemplate   = "download:progress %(progress.downloaded_bytes)s %(progress.total_bytes)s"

	thumbnailURL = "https://i.ytimg.com/vi/%s/maxresdefault.jpg"

	// Flat playlist extraction can return thousands of entries; everything
	// past this cap is dropped while DeclaredCount keeps the real total.
	maxPlaylistEntries = 500
)

// YouTubeData resolves and downloads YouTube tracks through the yt-dlp
// subprocess.
type YouTubeData struct {
	Query    string
	Patterns map[string]*regexp.Regexp
}

// NewYouTubeData initializes a YouTubeData instance with pre-compiled regex patterns and a cleaned query.
func NewYouTubeData(query string) *YouTubeData {
	return &YouTubeData{
		Query: clearQuery(query),
		Patterns: map[string]*regexp.Regexp{
			"youtube":   regexp.MustCompile(`^(?:https?://)?(?:www\.|music\.)?youtube\.com/watch\?v=([\w-]{11})(?:[&#?].*)?$`),
			"youtu_be":  regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/([\w-]{11})(?:[?#].*)?$`),
			"yt_shorts": regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/shorts/([\w-]{11})(?:[?#].*)?$`),
			"playlist":  regexp.MustCompile(`^(?:https?://)?(?:www\.|music\.)?youtube\.com/playlist\?list=([\w-]+)(?:[&#?].*)?$`),
		},
	}
}

// clearQuery trims whitespace and strips URL fragments from a given query string.
func clearQuery(query string) string {
	query = strings.SplitN(query, "#", 2)[0]
	return strings.TrimSpace(query)
}

// extractVideoID returns the eleven-character video ID when the query is a
// recognized single-video URL.
func (y *YouTubeData) extractVideoID() string {
	for name, re := range y.Patterns {
		if name == "playlist" {
			continue
		}
		if match := re.FindStringSubmatch(y.Query); match != nil {
			return match[1]
		}
	}
	return ""
}

// IsValid reports whether the query is a recognized YouTube video or
// playlist URL.
func (y *YouTubeData) IsValid() bool {
	if y.Query == "" {
		return false
	}
	for _, re := range y.Patterns {
		if re.MatchString(y.Query) {
			return true
		}
	}
	return false
}

// IsPlaylist reports whether the query should take the playlist flow. Any
// recognized YouTube URL carrying a list parameter counts, watch URLs
// included.
func (y *YouTubeData) IsPlaylist() bool {
	if y.Patterns["playlist"].MatchString(y.Query) {
		return true
	}
	return strings.Contains(y.Query, "list=") && y.IsValid()
}

// normalizeYouTubeURL converts various YouTube URL formats (e.g., youtu.be, shorts) into a standard watch URL.
func (y *YouTubeData) normalizeYouTubeURL() string {
	if id := y.extractVideoID(); id != "" {
		return "https://www.youtube.com/watch?v=" + id
	}
	return y.Query
}

// ytdlpTrack mirrors the subset of the yt-dlp JSON dump used for tagging.
type ytdlpTrack struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Uploader string  `json:"uploader"`
	Channel  string  `json:"channel"`
	Duration float64 `json:"duration"`
}

type ytdlpPlaylist struct {
	Title         string       `json:"title"`
	PlaylistCount int          `json:"playlist_count"`
	Entries       []ytdlpTrack `json:"entries"`
}

// GetTrack resolves metadata for a single video without downloading it. It
// returns the track info or an error if the link cannot be resolved.
func (y *YouTubeData) GetTrack(ctx context.Context) (cache.TrackInfo, error) {
	url := y.normalizeYouTubeURL()
	args := append(baseYtdlpArgs(), "--no-playlist", "--no-download", "--dump-json", url)

	out, err := runYtdlp(ctx, args)
	if err != nil {
		return cache.TrackInfo{}, fmt.Errorf("%w: %v", ErrResolution, err)
	}

	var track ytdlpTrack
	if err := json.Unmarshal(out, &track); err != nil {
		return cache.TrackInfo{}, fmt.Errorf("%w: bad metadata: %v", ErrResolution, err)
	}
	if track.ID == "" {
		return cache.TrackInfo{}, fmt.Errorf("%w: empty metadata", ErrResolution)
	}

	return cache.TrackInfo{
		ID:        track.ID,
		Title:     coalesce(track.Title, track.ID),
		Uploader:  coalesce(track.Uploader, track.Channel, "Unknown"),
		Duration:  int(track.Duration),
		Thumbnail: fmt.Sprintf(thumbnailURL, track.ID),
		URL:       "https://www.youtube.com/watch?v=" + track.ID,
	}, nil
}

// GetPlaylist resolves a playlist's title and entry list via flat extraction,
// so no per-entry page fetches take place. Entries past the internal cap are
// dropped; DeclaredCount keeps the playlist's reported total.
func (y *YouTubeData) GetPlaylist(ctx context.Context) (cache.PlaylistInfo, error) {
	args := append(baseYtdlpArgs(), "--flat-playlist", "--dump-single-json", y.Query)

	out, err := runYtdlp(ctx, args)
	if err != nil {
		return cache.PlaylistInfo{}, fmt.Errorf("%w: %v", ErrResolution, err)
	}

	var pl ytdlpPlaylist
	if err := json.Unmarshal(out, &pl); err != nil {
		return cache.PlaylistInfo{}, fmt.Errorf("%w: bad metadata: %v", ErrResolution, err)
	}
	if len(pl.Entries) == 0 {
		return cache.PlaylistInfo{}, fmt.Errorf("%w: playlist has no entries", ErrResolution)
	}

	info := cache.PlaylistInfo{
		Title:         coalesce(pl.Title, "Playlist"),
		DeclaredCount: pl.PlaylistCount,
	}
	if info.DeclaredCount == 0 {
		info.DeclaredCount = len(pl.Entries)
	}

	for _, entry := range pl.Entries {
		if entry.ID == "" {
			continue
		}
		info.Entries = append(info.Entries, cache.PlaylistEntry{
			ID:       entry.ID,
			Title:    coalesce(entry.Title, entry.ID),
			Duration: int(entry.Duration),
		})
		if len(info.Entries) == maxPlaylistEntries {
			break
		}
	}

	return info, nil
}

// Download fetches the best available audio stream for a single video into
// the downloads directory and returns the final file path. onProgress may be
// nil; when set it receives throttled whole-percent updates.
func (y *YouTubeData) Download(ctx context.Context, onProgress ProgressFunc) (string, error) {
	cmd := exec.CommandContext(ctx, "yt-dlp", downloadArgs(y.normalizeYouTubeURL())...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAcquisition, err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAcquisition, err)
	}

	var (
		gate     progressGate
		filePath string
	)
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if down, total, ok := parseProgressLine(line); ok {
			percent := int(down * 100 / total)
			if onProgress != nil && gate.advance(percent) {
				onProgress(percent)
			}
			continue
		}
		filePath = line
	}

	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("%w: %s", ErrAcquisition, ytdlpFailure(err, stderr.Bytes()))
	}
	if filePath == "" {
		return "", fmt.Errorf("%w: no output file reported", ErrAcquisition)
	}
	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAcquisition, err)
	}

	return filePath, nil
}

// downloadArgs returns the yt-dlp invocation that fetches a track's audio.
// --progress keeps the template lines flowing on stdout, which --quiet
// would otherwise suppress.
func downloadArgs(url string) []string {
	return append(baseYtdlpArgs(),
		"--newline",
		"--progress",
		"--no-playlist",
		"--continue",
		"--no-part",
		"--retries", "2",
		"-f", audioFormat,
		"-o", filepath.Join(config.Conf.DownloadsDir, outputTemplate),
		"--progress-template", progressTemplate,
		"--print", "after_move:filepath",
		url,
	)
}

// baseYtdlpArgs returns the flags shared by every yt-dlp invocation.
func baseYtdlpArgs() []string {
	args := []string{
		"--no-warnings",
		"--quiet",
		"--geo-bypass",
		"--socket-timeout", "10",
	}
	if config.Conf.Proxy != "" {
		args = append(args, "--proxy", config.Conf.Proxy)
	}
	return args
}

// runYtdlp executes yt-dlp with the given arguments and returns its stdout.
func runYtdlp(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "yt-dlp", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, errors.New(ytdlpFailure(err, stderr.Bytes()))
	}
	return out, nil
}

// ytdlpFailure condenses a subprocess failure into a single log-safe line,
// preferring the last line of stderr over the bare exit status.
func ytdlpFailure(err error, stderr []byte) string {
	lines := strings.Split(strings.TrimSpace(string(stderr)), "\n")
	if last := strings.TrimSpace(lines[len(lines)-1]); last != "" {
		return last
	}
	return err.Error()
}

// coalesce returns the first non-empty string from the given values.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
