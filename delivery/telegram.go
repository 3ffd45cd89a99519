package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramChannel delivers messages to a Telegram chat or channel through
// the Bot API. Destinations are given either as a numeric chat ID or as a
// public @username.
type TelegramChannel struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	username string
}

// NewTelegramChannel authenticates against the Bot API and resolves the
// destination. timeout bounds every API call.
func NewTelegramChannel(token, destination string, timeout time.Duration) (*TelegramChannel, error) {
	if token == "" {
		return nil, errors.New("bot token is empty")
	}
	if destination == "" {
		return nil, errors.New("destination channel is empty")
	}

	client := &http.Client{Timeout: timeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate bot: %w", err)
	}

	ch := &TelegramChannel{bot: bot}
	if id, err := strconv.ParseInt(destination, 10, 64); err == nil {
		ch.chatID = id
	} else {
		if !strings.HasPrefix(destination, "@") {
			destination = "@" + destination
		}
		ch.username = destination
	}
	return ch, nil
}

// SendRich sends a photo by URL with an HTML caption.
func (c *TelegramChannel) SendRich(ctx context.Context, mediaURL, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	photo := tgbotapi.PhotoConfig{
		BaseFile: tgbotapi.BaseFile{
			BaseChat: c.baseChat(),
			File:     tgbotapi.FileURL(mediaURL),
		},
		Caption:   caption,
		ParseMode: tgbotapi.ModeHTML,
	}

	_, err := c.bot.Send(photo)
	return classify(err)
}

// SendText sends an HTML text message.
func (c *TelegramChannel) SendText(ctx context.Context, text string, suppressPreview bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.MessageConfig{
		BaseChat:              c.baseChat(),
		Text:                  text,
		ParseMode:             tgbotapi.ModeHTML,
		DisableWebPagePreview: suppressPreview,
	}

	_, err := c.bot.Send(msg)
	return classify(err)
}

func (c *TelegramChannel) baseChat() tgbotapi.BaseChat {
	return tgbotapi.BaseChat{
		ChatID:          c.chatID,
		ChannelUsername: c.username,
	}
}

// destinationInvalid matches Bad Request descriptions that actually mean the
// destination is misconfigured. The Bot API reports these as 400 like
// content problems, but they will recur for every item.
var destinationInvalid = []string{
	"chat not found",
	"chat_id is empty",
	"bot was kicked",
	"bot is not a member",
	"not enough rights",
}

// classify maps a Bot API failure onto the engine's error taxonomy:
// credential and destination problems are permanent, content rejections are
// structural, rate limits, server errors, and plain network failures are
// transient.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		// No API response at all: network or timeout.
		return &ChannelError{Class: ClassTransient, Err: err}
	}

	class := ClassTransient
	switch {
	case apiErr.Code == http.StatusUnauthorized,
		apiErr.Code == http.StatusForbidden,
		apiErr.Code == http.StatusNotFound:
		class = ClassPermanent
	case apiErr.Code == http.StatusTooManyRequests:
		class = ClassTransient
	case apiErr.Code >= 500:
		class = ClassTransient
	case apiErr.Code >= 400:
		class = ClassStructural
		lower := strings.ToLower(apiErr.Message)
		for _, marker := range destinationInvalid {
			if strings.Contains(lower, marker) {
				class = ClassPermanent
				break
			}
		}
	}

	return &ChannelError{Class: class, Code: apiErr.Code, Err: apiErr}
}
