package tags

import (
	"context"
	"errors"
	"fmt"

	mp4tag "github.com/zhaarey/go-mp4tag"

	"github.com/nkoryagin/tgaudio/pkg/core/cache"
)

// ErrEmbedding indicates that tags could not be written into a downloaded
// audio file.
var ErrEmbedding = errors.New("could not write tags")

// TrackMeta is the fully enriched metadata for a downloaded track.
type TrackMeta struct {
	Performer string
	Title     string
	Lyrics    string
	Cover     []byte
}

// Enrich gathers optional metadata for a track: the split performer/title
// pair always succeeds, while lyrics and cover art are best-effort.
func Enrich(ctx context.Context, track cache.TrackInfo) TrackMeta {
	performer, title := SplitTitle(track.Title, track.Uploader)
	return TrackMeta{
		Performer: performer,
		Title:     title,
		Lyrics:    GetLyrics(ctx, performer, title),
		Cover:     GetCover(ctx, track.Thumbnail),
	}
}

// Embed writes the enriched metadata into an M4A file in place. It returns
// an error when the container cannot be opened or written; unlike lyrics and
// cover lookups, a failed write is fatal for the track.
func Embed(path string, meta TrackMeta) error {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	defer mp4.Close()

	t := &mp4tag.MP4Tags{
		Title:       meta.Title,
		Artist:      meta.Performer,
		Album:       meta.Title,
		AlbumArtist: meta.Performer,
		CustomGenre: "Music",
		Lyrics:      meta.Lyrics,
	}
	if len(meta.Cover) > 0 {
		t.Pictures = []*mp4tag.MP4Picture{
			{Format: mp4tag.ImageTypeJPEG, Data: meta.Cover},
		}
	}

	if err := mp4.Write(t, []string{}); err != nil {
		return fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	return nil
}
