package handlers

import (
	"fmt"
	"time"

	"github.com/amarnathcjd/gogram/telegram"
)

const helpText = `Send me a YouTube link and I will reply with tagged audio.

- A video link downloads a single track.
- A playlist link opens a track picker; select what you want and press Download.
- Synced lyrics arrive as a separate .lrc file when available.

Commands:
/start - show this message
/help - show this message
/ping - check that the bot is alive`

// pingHandler handles the /ping command.
func pingHandler(m *telegram.NewMessage) error {
	start := time.Now()
	msg, err := m.Reply("⏱️ Pinging...")
	if err != nil {
		return err
	}
	latency := time.Since(start).Milliseconds()
	uptime := time.Since(startTime).Truncate(time.Second)

	_, err = msg.Edit(fmt.Sprintf("🏓 Pong! %d ms\nUptime: %s", latency, uptime))
	return err
}

// startHandler handles the /start and /help commands.
func startHandler(m *telegram.NewMessage) error {
	bot := m.Client.Me()
	response := fmt.Sprintf("Hi %s! I am %s.\n\n%s", m.Sender.FirstName, bot.FirstName, helpText)
	_, err := m.Reply(response, telegram.SendOptions{LinkPreview: false})
	return err
}
