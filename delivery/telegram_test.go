package delivery

import (
	"errors"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiErr(code int, message string) error {
	return &tgbotapi.Error{Code: code, Message: message}
}

// TestClassify maps Bot API failures onto the engine's taxonomy.
func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"unauthorized token", apiErr(401, "Unauthorized"), ClassPermanent},
		{"blocked by user", apiErr(403, "Forbidden: bot was blocked by the user"), ClassPermanent},
		{"bad token path", apiErr(404, "Not Found"), ClassPermanent},
		{"chat not found", apiErr(400, "Bad Request: chat not found"), ClassPermanent},
		{"kicked from channel", apiErr(400, "Bad Request: bot was kicked from the channel chat"), ClassPermanent},
		{"bad photo url", apiErr(400, "Bad Request: wrong file identifier/HTTP URL specified"), ClassStructural},
		{"caption too long", apiErr(400, "Bad Request: message caption is too long"), ClassStructural},
		{"bad markup", apiErr(400, "Bad Request: can't parse entities"), ClassStructural},
		{"rate limited", apiErr(429, "Too Many Requests: retry after 30"), ClassTransient},
		{"server error", apiErr(502, "Bad Gateway"), ClassTransient},
		{"plain network error", errors.New("dial tcp: i/o timeout"), ClassTransient},
		{"wrapped api error", fmt.Errorf("send failed: %w", apiErr(403, "Forbidden")), ClassPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			require.Error(t, got)

			var chErr *ChannelError
			require.ErrorAs(t, got, &chErr)
			assert.Equal(t, tt.want, chErr.Class)
			assert.Equal(t, tt.want, ClassOf(got))
		})
	}
}

// TestClassify_NilPassesThrough keeps the success path allocation-free.
func TestClassify_NilPassesThrough(t *testing.T) {
	assert.NoError(t, classify(nil))
}

// TestClassify_PreservesCause verifies the original API error remains
// reachable for logs.
func TestClassify_PreservesCause(t *testing.T) {
	got := classify(apiErr(400, "Bad Request: chat not found"))

	var cause *tgbotapi.Error
	require.ErrorAs(t, got, &cause)
	assert.Equal(t, 400, cause.Code)
	assert.Contains(t, got.Error(), "chat not found")
}

// TestNewTelegramChannel_Validation covers the cheap argument checks that
// do not need a live API.
func TestNewTelegramChannel_Validation(t *testing.T) {
	_, err := NewTelegramChannel("", "@chan", 0)
	require.Error(t, err)

	_, err = NewTelegramChannel("token", "", 0)
	require.Error(t, err)
}
