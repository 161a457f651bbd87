package main

import (
	"log"
	"path/filepath"
	"time"

	"github.com/Laky-64/gologging"
	tg "github.com/amarnathcjd/gogram/telegram"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nkoryagin/tgaudio/pkg/cleanup"
	"github.com/nkoryagin/tgaudio/pkg/config"
	"github.com/nkoryagin/tgaudio/pkg/core/db"
	"github.com/nkoryagin/tgaudio/pkg/handlers"
)

// handleFlood manages flood wait errors by pausing execution for the specified duration.
// It returns true if a flood wait error is handled, and false otherwise.
func handleFlood(err error) bool {
	if wait := tg.GetFloodWait(err); wait > 0 {
		gologging.InfoF("A flood wait has been detected. Sleeping for %ds.", wait)
		time.Sleep(time.Duration(wait) * time.Second)
		return true
	}
	return false
}

// main serves as the entry point for the application.
// It initializes the configuration, auth store, and Telegram client, then starts the bot and waits for a shutdown signal.
func main() {
	gologging.SetLevel(gologging.InfoLevel)

	if err := config.LoadConfig(); err != nil {
		gologging.Fatal(err.Error())
	}

	// The stdlib logger feeds a rotating file so [DB] lines survive
	// restarts without growing unbounded.
	log.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(config.Conf.LogsDir, "tgaudio.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     config.Conf.MaxFileAgeDays,
	})

	ctx, cancel := db.Ctx()
	defer cancel()

	cfg := tg.NewClientConfigBuilder(config.Conf.ApiId, config.Conf.ApiHash).
		WithSession("bot.dat").
		WithFloodHandler(handleFlood).
		Build()

	client, err := tg.NewClient(cfg)
	if err != nil {
		gologging.FatalF("Failed to create the client: %v", err)
	}

	_, err = client.Conn()
	if err != nil {
		gologging.FatalF("Failed to connect to Telegram: %v", err)
	}

	err = client.LoginBot(config.Conf.Token)
	if err != nil {
		gologging.FatalF("Failed to log in as the bot: %v", err)
	}

	if err := db.InitStore(ctx); err != nil {
		gologging.FatalF("Failed to initialize the auth store: %v", err)
	}

	handlers.LoadModules(client)

	sweeper := cleanup.NewTask()
	sweeper.Start()

	gologging.InfoF("The bot is running as @%s.", client.Me().Username)

	client.Idle()
	gologging.InfoF("The bot is shutting down...")
	sweeper.Stop()

	closeCtx, closeCancel := db.Ctx()
	_ = db.Store.Close(closeCtx)
	closeCancel()
	_ = client.Stop()
}
