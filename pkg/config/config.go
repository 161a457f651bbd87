package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// BotConfig holds the configuration for the bot.
type BotConfig struct {
	ApiId          int32   // ApiId is the Telegram API ID.
	ApiHash        string  // ApiHash is the Telegram API hash.
	Token          string  // Token is the bot token.
	OwnerId        int64   // OwnerId is the user ID of the bot owner.
	AllowedUsers   []int64 // AllowedUsers seeds the allow-list of user IDs.
	MongoUri       string  // MongoUri is the MongoDB connection string; empty keeps the allow-list in memory.
	DbName         string  // DbName is the name of the database.
	Proxy          string  // Proxy is the proxy URL used for downloads and thumbnail fetches.
	DownloadsDir   string  // DownloadsDir is the directory where downloads are stored.
	LogsDir        string  // LogsDir is the directory where rotated log files are stored.
	MaxFileSize    int64   // MaxFileSize is the maximum size in bytes of a delivered audio file.
	MaxPayloadLen  int     // MaxPayloadLen bounds the encoded selection-page payload length.
	LrclibUrl      string  // LrclibUrl is the base URL of the lyrics lookup service.
	MaxFileAgeDays int     // MaxFileAgeDays is the age after which the daily cleanup deletes files.
}

// Conf is the global configuration for the bot.
var Conf *BotConfig

// LoadConfig loads the configuration from environment variables and sets the global Conf.
// It returns an error if required values are missing or directories cannot be created.
func LoadConfig() error {
	_ = godotenv.Load()

	Conf = &BotConfig{
		ApiId:          getEnvInt32("API_ID", 0),
		ApiHash:        os.Getenv("API_HASH"),
		Token:          os.Getenv("TOKEN"),
		OwnerId:        getEnvInt64("OWNER_ID", 0),
		AllowedUsers:   parseIDList(os.Getenv("ALLOWED_USERS")),
		MongoUri:       os.Getenv("MONGO_URI"),
		DbName:         getEnvStr("DB_NAME", "tgaudio"),
		Proxy:          os.Getenv("PROXY"),
		DownloadsDir:   getEnvStr("DOWNLOADS_DIR", "downloads"),
		LogsDir:        getEnvStr("LOGS_DIR", "logs"),
		MaxFileSize:    getEnvInt64("MAX_FILE_SIZE", 50*1024*1024),
		MaxPayloadLen:  int(getEnvInt64("MAX_PAYLOAD_LEN", 2048)),
		LrclibUrl:      getEnvStr("LRCLIB_URL", "https://lrclib.net"),
		MaxFileAgeDays: int(getEnvInt64("MAX_FILE_AGE_DAYS", 30)),
	}

	if Conf.OwnerId != 0 && !containsInt(Conf.AllowedUsers, Conf.OwnerId) {
		Conf.AllowedUsers = append(Conf.AllowedUsers, Conf.OwnerId)
	}

	return Conf.validate()
}

// parseIDList parses a comma or space separated list of user IDs.
// It returns a slice of the IDs that parsed cleanly, skipping the rest.
func parseIDList(value string) []int64 {
	if value == "" {
		return nil
	}
	var ids []int64
	for _, field := range strings.Fields(strings.ReplaceAll(value, ",", " ")) {
		if id := parseInt64(field); id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
