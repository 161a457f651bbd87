package cache

import (
	"sync"
	"time"
)

// PlaylistSession holds one user's resolved playlist while they pick tracks.
// Entries are kept both as an id-keyed map for O(1) lookup and as an ordered
// slice for pagination; the two always contain the same set of ids.
type PlaylistSession struct {
	Title         string
	DeclaredTotal int
	SourceURL     string

	mu        sync.Mutex
	pageStart int
	byID      map[string]PlaylistEntry
	ordered   []PlaylistEntry
	selected  map[string]bool
}

// NewPlaylistSession builds a session from a resolved playlist. Entries with
// duplicate ids collapse to the first occurrence so the map and slice stay in
// step.
func NewPlaylistSession(info PlaylistInfo, sourceURL string) *PlaylistSession {
	s := &PlaylistSession{
		Title:         info.Title,
		DeclaredTotal: info.DeclaredCount,
		SourceURL:     sourceURL,
		byID:          make(map[string]PlaylistEntry, len(info.Entries)),
		selected:      make(map[string]bool),
	}
	for _, e := range info.Entries {
		if _, ok := s.byID[e.ID]; ok {
			continue
		}
		s.byID[e.ID] = e
		s.ordered = append(s.ordered, e)
	}
	return s
}

// Len returns the number of entries in the session.
func (s *PlaylistSession) Len() int {
	return len(s.ordered)
}

// Entries returns the ordered playlist entries.
func (s *PlaylistSession) Entries() []PlaylistEntry {
	return s.ordered
}

// Entry looks up an entry by id.
// It returns the entry and true if present, otherwise the zero value and false.
func (s *PlaylistSession) Entry(id string) (PlaylistEntry, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// PageStart returns the index of the first entry on the current page.
func (s *PlaylistSession) PageStart() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageStart
}

// SetPageStart moves the pagination window, clamped to [0, Len).
func (s *PlaylistSession) SetPageStart(start int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if start < 0 {
		start = 0
	}
	if start >= len(s.ordered) {
		start = max(0, len(s.ordered)-1)
	}
	s.pageStart = start
}

// ToggleSelect flips the selection state of an entry.
// It returns the new state, or false if the id is not part of the session.
func (s *PlaylistSession) ToggleSelect(id string) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected[id] {
		delete(s.selected, id)
		return false
	}
	s.selected[id] = true
	return true
}

// IsSelected reports whether an entry is currently selected.
func (s *PlaylistSession) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[id]
}

// SelectedCount returns the number of selected entries.
func (s *PlaylistSession) SelectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected)
}

// Selected returns the selected entries in playlist order.
func (s *PlaylistSession) Selected() []PlaylistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []PlaylistEntry
	for _, e := range s.ordered {
		if s.selected[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

// sessionEntry pairs a session with its expiry time.
type sessionEntry struct {
	session *PlaylistSession
	expires time.Time
}

// SessionStore is a thread-safe per-user store of pending playlist
// selections. A Put for a user replaces whatever session was there before;
// nothing is merged. Entries expire after the store TTL so abandoned
// selections do not pile up for the life of the process.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]sessionEntry
	ttl      time.Duration
}

// NewSessionStore initializes a SessionStore with the given TTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]sessionEntry),
		ttl:      ttl,
	}
}

// Get retrieves the pending session for a user.
// It returns the session and true, or nil and false if absent or expired.
func (st *SessionStore) Get(userID int64) (*PlaylistSession, bool) {
	st.mu.RLock()
	entry, ok := st.sessions[userID]
	st.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		st.Delete(userID)
		return nil, false
	}
	return entry.session, true
}

// Put stores a session for a user, overwriting any existing one.
func (st *SessionStore) Put(userID int64, s *PlaylistSession) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[userID] = sessionEntry{session: s, expires: time.Now().Add(st.ttl)}
}

// Delete removes a user's session, if any.
func (st *SessionStore) Delete(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}

// Sessions is the global session store.
var Sessions = NewSessionStore(24 * time.Hour)
