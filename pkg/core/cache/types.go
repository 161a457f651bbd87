package cache

// TrackInfo holds the fully resolved metadata for a single video, as needed
// to download, tag and deliver its audio.
type TrackInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Uploader  string `json:"uploader"`
	Duration  int    `json:"duration"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
}

// PlaylistEntry is one playlist element before full resolution. Only the id,
// title and duration are known at this stage.
type PlaylistEntry struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration int    `json:"duration"`
}

// PlaylistInfo is the flat enumeration of a playlist. DeclaredCount is what
// the source claims the playlist holds and may exceed len(Entries) when the
// enumeration was truncated; callers must surface the difference.
type PlaylistInfo struct {
	Title         string          `json:"title"`
	DeclaredCount int             `json:"declared_count"`
	Entries       []PlaylistEntry `json:"entries"`
}
