package tags

import "strings"

// SplitTitle derives a performer and a track title from a raw video title.
// Only the first " - " separator is significant, so dashes inside the track
// title survive; a title like " - Song" therefore yields an empty performer.
// Only when no separator is present at all does the uploader become the
// performer.
func SplitTitle(raw, uploader string) (performer, title string) {
	if before, after, found := strings.Cut(raw, " - "); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return strings.TrimSpace(uploader), strings.TrimSpace(raw)
}
