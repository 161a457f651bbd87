// Package cleanup removes stale downloads and log files on a daily schedule.
package cleanup

import (
	"os"
	"path/filepath"
	"time"

	"github.com/Laky-64/gologging"

	"github.com/nkoryagin/tgaudio/pkg/config"
)

const sweepInterval = 24 * time.Hour

// Task sweeps the downloads and logs directories, deleting files older than
// the configured age.
type Task struct {
	dirs   []string
	maxAge time.Duration
	stop   chan struct{}
	done   chan struct{}
}

// NewTask creates a sweeper over the configured directories.
func NewTask() *Task {
	return &Task{
		dirs:   []string{config.Conf.DownloadsDir, config.Conf.LogsDir},
		maxAge: time.Duration(config.Conf.MaxFileAgeDays) * 24 * time.Hour,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs one immediate sweep and then keeps sweeping daily until Stop is
// called.
func (t *Task) Start() {
	go func() {
		defer close(t.done)

		t.sweep()
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.sweep()
			case <-t.stop:
				return
			}
		}
	}()
}

// Stop ends the schedule and waits for an in-flight sweep to finish.
func (t *Task) Stop() {
	close(t.stop)
	<-t.done
}

// sweep deletes expired regular files from every watched directory.
// Subdirectories are left alone.
func (t *Task) sweep() {
	cutoff := time.Now().Add(-t.maxAge)
	removed := 0

	for _, dir := range t.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			gologging.WarnF("cleanup: failed to read %s: %v", dir, err)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				gologging.WarnF("cleanup: failed to remove %s: %v", path, err)
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		gologging.InfoF("cleanup: removed %d stale file(s)", removed)
	}
}
