package dl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nkoryagin/tgaudio/pkg/config"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"watch url without scheme", "youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"music url", "https://music.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", true},
		{"short link with params", "https://youtu.be/dQw4w9WgXcQ?si=abc", true},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", true},
		{"playlist", "https://www.youtube.com/playlist?list=PLabc123_-xyz", true},
		{"bad id length", "https://www.youtube.com/watch?v=short", false},
		{"other site", "https://example.com/watch?v=dQw4w9WgXcQ", false},
		{"plain text", "never gonna give you up", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewYouTubeData(tt.query).IsValid())
		})
	}
}

func TestIsPlaylist(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"playlist url", "https://www.youtube.com/playlist?list=PLabc123", true},
		{"music playlist", "https://music.youtube.com/playlist?list=PLabc123", true},
		{"watch url with list param", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLabc123", true},
		{"plain video", "https://youtu.be/dQw4w9WgXcQ", false},
		{"list on another site", "https://example.com/watch?list=PLabc123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewYouTubeData(tt.query).IsPlaylist())
		})
	}
}

func TestNormalizeYouTubeURL(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"watch url with tracking", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"fragment is stripped", "https://youtu.be/dQw4w9WgXcQ#t=1", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewYouTubeData(tt.query).normalizeYouTubeURL())
		})
	}
}

func TestDownloadArgsKeepProgressVisible(t *testing.T) {
	prev := config.Conf
	config.Conf = &config.BotConfig{DownloadsDir: t.TempDir()}
	defer func() { config.Conf = prev }()

	args := downloadArgs("https://www.youtube.com/watch?v=dQw4w9WgXcQ")

	// --quiet alone silences the progress stream the scanner depends on.
	assert.Contains(t, args, "--quiet")
	assert.Contains(t, args, "--progress")
	assert.Contains(t, args, "--progress-template")
	assert.Contains(t, args, progressTemplate)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", args[len(args)-1])
}

func TestExtractVideoID(t *testing.T) {
	yt := NewYouTubeData("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.Equal(t, "dQw4w9WgXcQ", yt.extractVideoID())

	playlist := NewYouTubeData("https://www.youtube.com/playlist?list=PLabc123")
	assert.Empty(t, playlist.extractVideoID())
}
