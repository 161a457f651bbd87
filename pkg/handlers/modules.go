package handlers

import (
	"time"

	"github.com/Laky-64/gologging"
	"github.com/amarnathcjd/gogram/telegram"
)

var startTime = time.Now()

// LoadModules loads all the handlers.
// It takes a telegram client as input.
func LoadModules(c *telegram.Client) {
	_, _ = c.UpdatesGetState()

	c.On("command:ping", pingHandler)
	c.On("command:start", startHandler, telegram.FilterFunc(isAllowed))
	c.On("command:help", startHandler, telegram.FilterFunc(isAllowed))
	c.On("command:stats", sysStatsHandler, telegram.FilterFunc(isOwner))

	c.On("command:allow", allowHandler, telegram.FilterFunc(isOwner))
	c.On("command:deny", denyHandler, telegram.FilterFunc(isOwner))
	c.On("command:allowed", allowedHandler, telegram.FilterFunc(isOwner))

	c.On(telegram.OnMessage, urlWatcher, telegram.FilterFunc(isAllowed))

	c.On("callback:sel_[\\w-]+", toggleTrackHandler, telegram.FilterFuncCallback(isAllowedCB))
	c.On("callback:page_\\d+", turnPageHandler, telegram.FilterFuncCallback(isAllowedCB))
	c.On("callback:dl_go", startBatchHandler, telegram.FilterFuncCallback(isAllowedCB))
	c.On("callback:dl_cancel", cancelSelectionHandler, telegram.FilterFuncCallback(isAllowedCB))

	gologging.Debug("Handlers loaded successfully.")
}
