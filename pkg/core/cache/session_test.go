package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlaylist() PlaylistInfo {
	return PlaylistInfo{
		Title:         "Mix",
		DeclaredCount: 4,
		Entries: []PlaylistEntry{
			{ID: "aaaaaaaaaaa", Title: "First", Duration: 100},
			{ID: "bbbbbbbbbbb", Title: "Second", Duration: 200},
			{ID: "ccccccccccc", Title: "Third", Duration: 300},
			{ID: "aaaaaaaaaaa", Title: "First again", Duration: 100},
		},
	}
}

func TestNewPlaylistSessionDeduplicates(t *testing.T) {
	s := NewPlaylistSession(testPlaylist(), "https://example.invalid/list")

	assert.Equal(t, 3, s.Len())
	entry, ok := s.Entry("aaaaaaaaaaa")
	require.True(t, ok)
	assert.Equal(t, "First", entry.Title, "the first occurrence wins")
}

func TestToggleSelect(t *testing.T) {
	s := NewPlaylistSession(testPlaylist(), "")

	assert.True(t, s.ToggleSelect("bbbbbbbbbbb"))
	assert.True(t, s.IsSelected("bbbbbbbbbbb"))
	assert.Equal(t, 1, s.SelectedCount())

	assert.False(t, s.ToggleSelect("bbbbbbbbbbb"))
	assert.False(t, s.IsSelected("bbbbbbbbbbb"))
	assert.Zero(t, s.SelectedCount())
}

func TestSelectedPreservesPlaylistOrder(t *testing.T) {
	s := NewPlaylistSession(testPlaylist(), "")

	s.ToggleSelect("ccccccccccc")
	s.ToggleSelect("aaaaaaaaaaa")

	selected := s.Selected()
	require.Len(t, selected, 2)
	assert.Equal(t, "aaaaaaaaaaa", selected[0].ID)
	assert.Equal(t, "ccccccccccc", selected[1].ID)
}

func TestSetPageStartClamps(t *testing.T) {
	s := NewPlaylistSession(testPlaylist(), "")

	s.SetPageStart(2)
	assert.Equal(t, 2, s.PageStart())

	s.SetPageStart(-5)
	assert.Zero(t, s.PageStart())

	s.SetPageStart(99)
	assert.Equal(t, s.Len()-1, s.PageStart())
}

func TestSessionStorePutOverwrites(t *testing.T) {
	store := NewSessionStore(time.Hour)

	first := NewPlaylistSession(testPlaylist(), "first")
	second := NewPlaylistSession(testPlaylist(), "second")

	store.Put(7, first)
	store.Put(7, second)

	got, ok := store.Get(7)
	require.True(t, ok)
	assert.Equal(t, "second", got.SourceURL)
}

func TestSessionStoreExpiry(t *testing.T) {
	store := NewSessionStore(10 * time.Millisecond)
	store.Put(1, NewPlaylistSession(testPlaylist(), ""))

	_, ok := store.Get(1)
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = store.Get(1)
	assert.False(t, ok)
}

func TestSessionStoreDelete(t *testing.T) {
	store := NewSessionStore(time.Hour)
	store.Put(2, NewPlaylistSession(testPlaylist(), ""))

	store.Delete(2)
	_, ok := store.Get(2)
	assert.False(t, ok)

	// Deleting an absent session is a no-op.
	store.Delete(2)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "--:--"},
		{-3, "--:--"},
		{59, "0:59"},
		{61, "1:01"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds), "seconds=%d", tt.seconds)
	}
}
