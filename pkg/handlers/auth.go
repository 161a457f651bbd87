package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amarnathcjd/gogram/telegram"

	"github.com/nkoryagin/tgaudio/pkg/core/db"
)

// getTargetUserID gets the user ID from a message.
// It takes a telegram.NewMessage object as input.
// It returns the user ID and an error if any.
func getTargetUserID(m *telegram.NewMessage) (int64, error) {
	args := strings.TrimSpace(m.Args())
	if args == "" {
		return 0, fmt.Errorf("no user specified")
	}

	if id, err := strconv.ParseInt(args, 10, 64); err == nil {
		return id, nil
	}

	user, err := m.Client.ResolveUsername(strings.TrimPrefix(args, "@"))
	if err != nil {
		return 0, err
	}
	ux, ok := user.(*telegram.UserObj)
	if !ok {
		return 0, fmt.Errorf("user not found")
	}
	return ux.ID, nil
}

// allowHandler handles the /allow command.
func allowHandler(m *telegram.NewMessage) error {
	userID, err := getTargetUserID(m)
	if err != nil {
		_, err = m.Reply("Usage: /allow <user id or @username>")
		return err
	}

	ctx, cancel := db.Ctx()
	defer cancel()
	if err := db.Store.Allow(ctx, userID); err != nil {
		_, err = m.Reply(fmt.Sprintf("Failed to allow the user: %v", err))
		return err
	}

	_, err = m.Reply(fmt.Sprintf("User %d can now use the bot.", userID))
	return err
}

// denyHandler handles the /deny command.
func denyHandler(m *telegram.NewMessage) error {
	userID, err := getTargetUserID(m)
	if err != nil {
		_, err = m.Reply("Usage: /deny <user id or @username>")
		return err
	}

	if userID == m.SenderID() {
		_, err = m.Reply("You cannot deny yourself.")
		return err
	}

	ctx, cancel := db.Ctx()
	defer cancel()
	if err := db.Store.Deny(ctx, userID); err != nil {
		_, err = m.Reply(fmt.Sprintf("Failed to deny the user: %v", err))
		return err
	}

	_, err = m.Reply(fmt.Sprintf("User %d can no longer use the bot.", userID))
	return err
}

// allowedHandler handles the /allowed command.
func allowedHandler(m *telegram.NewMessage) error {
	ctx, cancel := db.Ctx()
	defer cancel()

	users, err := db.Store.List(ctx)
	if err != nil {
		_, err = m.Reply(fmt.Sprintf("Failed to list the users: %v", err))
		return err
	}
	if len(users) == 0 {
		_, err = m.Reply("Nobody is allowed yet.")
		return err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Allowed users (%d):\n", len(users)))
	for _, id := range users {
		sb.WriteString(fmt.Sprintf("- %d\n", id))
	}
	_, err = m.Reply(sb.String())
	return err
}
