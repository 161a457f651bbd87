package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// getEnvStr retrieves a string from an environment variable or returns a default value.
// It returns the value of the environment variable if it exists, otherwise it returns the default value.
func getEnvStr(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

// getEnvInt64 retrieves an int64 from an environment variable or returns a default value.
// It returns the value of the environment variable if it exists and is a valid int64, otherwise it returns the default value.
func getEnvInt64(key string, def int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return def
	}
	return i
}

// getEnvInt32 retrieves an int32 from an environment variable or returns a default value.
// It returns the value of the environment variable if it exists and is a valid int32, otherwise it returns the default value.
func getEnvInt32(key string, def int32) int32 {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	i, err := strconv.ParseInt(val, 10, 32)
	if err != nil {
		return def
	}
	return int32(i)
}

// parseInt64 parses a decimal string as int64, returning 0 on failure.
func parseInt64(s string) int64 {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return i
}

// containsInt checks if a slice of int64 contains a specific value.
// It returns true if the slice contains the value, otherwise it returns false.
func containsInt(list []int64, x int64) bool {
	for _, v := range list {
		if v == x {
			return true
		}
	}
	return false
}

// validate checks if the bot configuration is valid.
// It returns an error if the configuration is invalid, otherwise it returns nil.
func (c *BotConfig) validate() error {
	var missing []string
	if c.ApiId == 0 {
		missing = append(missing, "API_ID")
	}
	if c.ApiHash == "" {
		missing = append(missing, "API_HASH")
	}
	if c.Token == "" {
		missing = append(missing, "TOKEN")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.MaxFileSize)
	}
	if c.MaxPayloadLen <= 0 {
		return fmt.Errorf("MAX_PAYLOAD_LEN must be positive, got %d", c.MaxPayloadLen)
	}

	for _, dir := range []string{c.DownloadsDir, c.LogsDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return nil
}
