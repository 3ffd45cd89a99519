package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadFrom_Defaults verifies the documented defaults survive parsing.
func TestLoadFrom_Defaults(t *testing.T) {
	settings, err := LoadFrom([]string{
		"--bot-token", "123:abc",
		"--channel", "@example",
	})
	require.NoError(t, err)
	require.NotNil(t, settings)

	assert.Equal(t, "123:abc", settings.BotToken)
	assert.Equal(t, "@example", settings.Channel)
	assert.Equal(t, "posted.json", settings.StatePath)
	assert.Equal(t, 5, settings.MaxItems)
	assert.Equal(t, 150, settings.SummaryBudget)
	assert.Equal(t, 3, settings.RetryAttempts)
	assert.Equal(t, 30*time.Second, settings.FetchTimeout())
	assert.Equal(t, 2*time.Second, settings.RetryDelay())
	assert.Equal(t, 3*time.Second, settings.DeliveryDelay())
	assert.False(t, settings.TodayOnly)
	assert.False(t, settings.Debug)
}

// TestLoadFrom_Overrides verifies flags take effect.
func TestLoadFrom_Overrides(t *testing.T) {
	settings, err := LoadFrom([]string{
		"--bot-token", "123:abc",
		"--channel=-1001234567890",
		"--url", "https://news.example.com/gaming/",
		"--max-items", "10",
		"--today-only",
		"--retry-delay", "5",
	})
	require.NoError(t, err)

	assert.Equal(t, "-1001234567890", settings.Channel)
	assert.Equal(t, "https://news.example.com/gaming/", settings.ListingURL)
	assert.Equal(t, 10, settings.MaxItems)
	assert.True(t, settings.TodayOnly)
	assert.Equal(t, 5*time.Second, settings.RetryDelay())
}

// TestLoadFrom_MissingRequired verifies the credential fields are enforced
// at parse time, not at first send.
func TestLoadFrom_MissingRequired(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "placeholder")
	t.Setenv("TELEGRAM_CHANNEL_ID", "placeholder")
	os.Unsetenv("TELEGRAM_BOT_TOKEN")
	os.Unsetenv("TELEGRAM_CHANNEL_ID")

	_, err := LoadFrom([]string{})
	require.Error(t, err)
}
