package tags

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkoryagin/tgaudio/pkg/config"
)

func withLyricsServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	prev := config.Conf
	config.Conf = &config.BotConfig{LrclibUrl: srv.URL}
	t.Cleanup(func() { config.Conf = prev })
}

func TestGetLyricsPrefersSynced(t *testing.T) {
	withLyricsServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get", r.URL.Path)
		assert.Equal(t, "Rick Astley", r.URL.Query().Get("artist_name"))
		assert.Equal(t, "Never Gonna Give You Up", r.URL.Query().Get("track_name"))
		_, _ = w.Write([]byte(`{"plainLyrics":"plain","syncedLyrics":"[00:01.00] synced"}`))
	})

	got := GetLyrics(context.Background(), "Rick Astley", "Never Gonna Give You Up")
	assert.Equal(t, "[00:01.00] synced", got)
}

func TestGetLyricsFallsBackToPlain(t *testing.T) {
	withLyricsServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"plainLyrics":"plain only","syncedLyrics":""}`))
	})

	got := GetLyrics(context.Background(), "Artist", "Title")
	assert.Equal(t, "plain only", got)
}

func TestGetLyricsStripsBrackets(t *testing.T) {
	var gotArtist, gotTrack string
	withLyricsServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotArtist = r.URL.Query().Get("artist_name")
		gotTrack = r.URL.Query().Get("track_name")
		_, _ = w.Write([]byte(`{"plainLyrics":"x"}`))
	})

	_ = GetLyrics(context.Background(), "Artist (Official)", "Title [Remastered] (Live)")
	assert.Equal(t, "Artist", gotArtist)
	assert.Equal(t, "Title", gotTrack)
}

func TestGetLyricsMissAndFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withLyricsServer(t, tt.handler)
			assert.Empty(t, GetLyrics(context.Background(), "Artist", "Title"))
		})
	}
}

func TestGetLyricsEmptyQuery(t *testing.T) {
	// No server is registered: empty inputs must short-circuit before any
	// request is made.
	prev := config.Conf
	config.Conf = &config.BotConfig{LrclibUrl: "http://127.0.0.1:0"}
	t.Cleanup(func() { config.Conf = prev })

	assert.Empty(t, GetLyrics(context.Background(), "", "Title"))
	assert.Empty(t, GetLyrics(context.Background(), "Artist", "(Live)"))
}

func TestIsSynced(t *testing.T) {
	assert.True(t, IsSynced("[00:01.00] line"))
	assert.False(t, IsSynced("plain words"))
	assert.False(t, IsSynced(""))
}

func TestWriteLRC(t *testing.T) {
	dir := t.TempDir()
	audio := dir + "/track.m4a"

	path, err := WriteLRC(audio, "[00:01.00] line")
	require.NoError(t, err)
	assert.Equal(t, dir+"/track.lrc", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[00:01.00] line", string(data))
}
