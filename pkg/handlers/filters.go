package handlers

import (
	"github.com/amarnathcjd/gogram/telegram"

	"github.com/nkoryagin/tgaudio/pkg/config"
	"github.com/nkoryagin/tgaudio/pkg/core/db"
)

// isAllowed is the message filter guarding every user-facing command.
// It takes a telegram.NewMessage object as input.
// It returns true if the sender is on the allow-list, otherwise false.
func isAllowed(m *telegram.NewMessage) bool {
	if m.Sender == nil {
		return false
	}
	ctx, cancel := db.Ctx()
	defer cancel()
	return db.Store.IsAllowed(ctx, m.Sender.ID)
}

// isAllowedCB is the callback counterpart of isAllowed.
func isAllowedCB(cb *telegram.CallbackQuery) bool {
	ctx, cancel := db.Ctx()
	defer cancel()
	return db.Store.IsAllowed(ctx, cb.SenderID)
}

// isOwner restricts a command to the configured owner.
// It takes a telegram.NewMessage object as input.
// It returns true if the sender is the owner, otherwise false.
func isOwner(m *telegram.NewMessage) bool {
	return m.Sender != nil && m.Sender.ID == config.Conf.OwnerId
}
