package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []int64
	}{
		{"empty", "", nil},
		{"commas", "1,2,3", []int64{1, 2, 3}},
		{"spaces", "10 20 30", []int64{10, 20, 30}},
		{"mixed separators", "1, 2  3", []int64{1, 2, 3}},
		{"garbage skipped", "1,abc,3", []int64{1, 3}},
		{"negative ids kept", "-100123,42", []int64{-100123, 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseIDList(tt.value))
		})
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	base := func() *BotConfig {
		return &BotConfig{
			ApiId:         12345,
			ApiHash:       "hash",
			Token:         "token",
			DownloadsDir:  filepath.Join(dir, "downloads"),
			LogsDir:       filepath.Join(dir, "logs"),
			MaxFileSize:   1 << 20,
			MaxPayloadLen: 2048,
		}
	}

	t.Run("valid config creates directories", func(t *testing.T) {
		c := base()
		require.NoError(t, c.validate())
		assert.DirExists(t, c.DownloadsDir)
		assert.DirExists(t, c.LogsDir)
	})

	t.Run("missing credentials are reported together", func(t *testing.T) {
		c := base()
		c.ApiHash = ""
		c.Token = ""
		err := c.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API_HASH")
		assert.Contains(t, err.Error(), "TOKEN")
	})

	t.Run("non-positive limits rejected", func(t *testing.T) {
		c := base()
		c.MaxFileSize = 0
		assert.Error(t, c.validate())

		c = base()
		c.MaxPayloadLen = -1
		assert.Error(t, c.validate())
	})
}
