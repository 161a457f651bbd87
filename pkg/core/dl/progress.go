package dl

import (
	"strconv"
	"strings"
)

// ProgressFunc receives download progress as a whole percent in [0, 100].
type ProgressFunc func(percent int)

// progressGate throttles progress reports so that downstream status edits
// stay within the transport's edit-rate limits. A percent passes the gate
// only when it has crossed into a ten-percent decade above the last reported
// value; anything below 10 never passes.
type progressGate struct {
	lastDecade int
}

// advance reports whether the given percent should be forwarded, updating the
// gate state when it is.
func (g *progressGate) advance(percent int) bool {
	if percent < 0 {
		return false
	}
	if percent > 100 {
		percent = 100
	}
	decade := percent / 10
	if decade > g.lastDecade {
		g.lastDecade = decade
		return true
	}
	return false
}

// parseProgressLine parses one "progress <downloaded> <total>" line emitted
// by the download progress template. Totals reported as "NA" (size unknown)
// yield ok=false; such downloads produce no progress callbacks.
func parseProgressLine(line string) (downloaded, total int64, ok bool) {
	rest, found := strings.CutPrefix(line, progressLinePrefix)
	if !found {
		return 0, 0, false
	}

	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return 0, 0, false
	}

	down, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, false
	}
	tot, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || tot <= 0 {
		return 0, 0, false
	}

	return int64(down), int64(tot), true
}
