// Package config loads runtime settings from environment variables and
// command-line flags, and source profiles from YAML files.
package config

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Settings is the full runtime configuration. Every field can come from a
// flag or an environment variable; the env names match what the deployment
// cron jobs already export.
type Settings struct {
	BotToken string `long:"bot-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token" required:"true"`
	Channel  string `long:"channel" env:"TELEGRAM_CHANNEL_ID" description:"Destination chat ID or @username" required:"true"`

	ListingURL  string `long:"url" env:"NEWS_URL" description:"Listing page or feed URL (overrides the profile's URL)"`
	ProfilePath string `long:"profile" env:"NEWS_PROFILE" description:"Path to a YAML source profile; omit for built-in defaults"`

	StatePath string `long:"state-file" env:"STATE_FILE" default:"posted.json" description:"Dedup state file"`
	LockPath  string `long:"lock-file" env:"LOCK_FILE" description:"Optional lock file guarding against overlapping runs"`

	MaxItems      int  `long:"max-items" env:"MAX_ARTICLES" default:"5" description:"Maximum candidate items per run"`
	MaxDeliveries int  `long:"max-deliveries" env:"MAX_DELIVERIES" default:"5" description:"Maximum deliveries per run"`
	SummaryBudget int  `long:"summary-budget" env:"SUMMARY_BUDGET" default:"150" description:"Summary character budget"`
	TodayOnly     bool `long:"today-only" env:"TODAY_ONLY" description:"Only deliver items published in the current window"`

	FetchTimeoutSeconds  int `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Page fetch timeout in seconds"`
	SendTimeoutSeconds   int `long:"send-timeout" env:"SEND_TIMEOUT" default:"30" description:"Channel send timeout in seconds"`
	RetryAttempts        int `long:"retry-attempts" env:"MAX_RETRIES" default:"3" description:"Delivery attempts per representation"`
	RetryDelaySeconds    int `long:"retry-delay" env:"RETRY_DELAY" default:"2" description:"Delay between delivery retries in seconds"`
	DeliveryDelaySeconds int `long:"delivery-delay" env:"DELIVERY_DELAY" default:"3" description:"Minimum spacing between deliveries in seconds"`

	UserAgent string `long:"user-agent" env:"USER_AGENT" description:"Override the fetcher's User-Agent"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// FetchTimeout returns the page fetch timeout.
func (s *Settings) FetchTimeout() time.Duration {
	return time.Duration(s.FetchTimeoutSeconds) * time.Second
}

// SendTimeout returns the channel send timeout.
func (s *Settings) SendTimeout() time.Duration {
	return time.Duration(s.SendTimeoutSeconds) * time.Second
}

// RetryDelay returns the pause between delivery retries.
func (s *Settings) RetryDelay() time.Duration {
	return time.Duration(s.RetryDelaySeconds) * time.Second
}

// DeliveryDelay returns the minimum spacing between deliveries.
func (s *Settings) DeliveryDelay() time.Duration {
	return time.Duration(s.DeliveryDelaySeconds) * time.Second
}

// Load parses os.Args and the environment. Returns (nil, nil) when help was
// requested.
func Load() (*Settings, error) {
	return load(nil)
}

// LoadFrom parses the given argument list instead of os.Args.
func LoadFrom(args []string) (*Settings, error) {
	return load(args)
}

func load(args []string) (*Settings, error) {
	var settings Settings

	parser := flags.NewParser(&settings, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return &settings, nil
}
