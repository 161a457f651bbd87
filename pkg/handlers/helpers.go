package handlers

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Laky-64/gologging"
	"github.com/amarnathcjd/gogram/telegram"
)

// statusUpdater is a wrapper around telegram.NewMessage to prevent flood waits.
type statusUpdater struct {
	*telegram.NewMessage
	mu          sync.Mutex
	lastMessage string
	lastSent    time.Time
}

// Edit edits the message, but only if the content has changed, and it has been more than 500ms since the last edit.
func (su *statusUpdater) Edit(text string, opts ...telegram.SendOptions) (*telegram.NewMessage, error) {
	su.mu.Lock()
	defer su.mu.Unlock()

	if text == su.lastMessage {
		return su.NewMessage, nil
	}

	if time.Since(su.lastSent) < 500*time.Millisecond {
		time.Sleep(500*time.Millisecond - time.Since(su.lastSent))
	}

	msg, err := su.NewMessage.Edit(text, opts...)
	if err == nil {
		su.lastMessage = text
		su.lastSent = time.Now()
	}
	return msg, err
}

// newStatusUpdater replies with an initial status line and wraps the sent
// message for rate-limited edits.
func newStatusUpdater(m *telegram.NewMessage, text string) (*statusUpdater, error) {
	statusMsg, err := m.Reply(text)
	if err != nil {
		gologging.WarnF("failed to send message: %v", err)
		return nil, err
	}
	return &statusUpdater{NewMessage: statusMsg, lastMessage: text, lastSent: time.Now()}, nil
}

// getUrl gets a URL from a message.
// It takes a telegram.NewMessage object and a boolean indicating whether it is a reply.
// It returns the URL from the message.
func getUrl(m *telegram.NewMessage, isReply bool) string {
	text := m.Text()
	entities := m.Message.Entities
	if isReply {
		reply, err := m.GetReplyMessage()
		if err == nil && reply != nil {
			text = reply.Text()
			entities = reply.Message.Entities
		}
	}

	if len(entities) == 0 {
		return ""
	}

	for _, entity := range entities {
		switch e := entity.(type) {
		case *telegram.MessageEntityTextURL:
			return e.URL
		case *telegram.MessageEntityURL:
			url := text[e.Offset : e.Offset+e.Length]
			return url
		default:
			gologging.DebugF("Ignoring entity type: %T", e)
		}
	}

	return ""
}

// coalesce returns the first non-empty string.
// It takes two strings as input.
// It returns the first non-empty string.
func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// truncate truncates a string to at most max bytes without cutting a rune
// in half.
// It takes a string and a maximum length as input.
// It returns the truncated string.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// fmtTrackLine renders the "Artist - Title" caption line for a delivery.
func fmtTrackLine(performer, title string) string {
	if performer == "" {
		return title
	}
	return fmt.Sprintf("%s - %s", performer, title)
}
