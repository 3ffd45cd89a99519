package delivery

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/gamedia/newswire/scrape"
)

// Channel is the notification-channel collaborator. Implementations must
// return *ChannelError for failures they can classify; anything else is
// treated as transient.
type Channel interface {
	// SendRich sends a media message with a caption.
	SendRich(ctx context.Context, mediaURL, caption string) error
	// SendText sends a plain message. suppressPreview disables the link
	// preview the channel would otherwise render.
	SendText(ctx context.Context, text string, suppressPreview bool) error
}

// ImageProber is a best-effort existence check for a media URL. A nil prober
// skips the check.
type ImageProber func(ctx context.Context, imageURL string) bool

// RetryPolicy bounds delivery attempts per representation. The policy is a
// value passed in, not control flow baked into the send path, so tests can
// shrink it to nothing.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy matches the channel's tolerance: three attempts, two
// seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}
}

// Status is the terminal state of one item's delivery.
type Status int

const (
	// StatusDeliveredRich means the media representation was accepted.
	StatusDeliveredRich Status = iota
	// StatusDeliveredText means the degraded text representation was
	// accepted.
	StatusDeliveredText
	// StatusSkippedDuplicate means the item was suppressed by the dedup
	// store and never attempted.
	StatusSkippedDuplicate
	// StatusFailedPermanent means the destination itself is invalid; the
	// run must not attempt further items.
	StatusFailedPermanent
	// StatusFailedExhausted means every attempt failed; the item is not
	// committed and will be retried on a future run.
	StatusFailedExhausted
)

func (s Status) String() string {
	switch s {
	case StatusDeliveredRich:
		return "delivered-rich"
	case StatusDeliveredText:
		return "delivered-text"
	case StatusSkippedDuplicate:
		return "skipped-duplicate"
	case StatusFailedPermanent:
		return "failed-permanent"
	case StatusFailedExhausted:
		return "failed-exhausted"
	default:
		return "unknown"
	}
}

// Delivered reports whether the outcome placed a message in the channel.
func (s Status) Delivered() bool {
	return s == StatusDeliveredRich || s == StatusDeliveredText
}

// Outcome describes how one item's delivery resolved. Attempts counts every
// send call across both representations.
type Outcome struct {
	Status   Status
	Attempts int
	Reason   error
}

// Engine drives the per-item delivery state machine: attempt rich, retry
// transient failures with a fixed delay, degrade to text on structural
// rejection or rich exhaustion, abort the run on permanent failure. No state
// survives between calls beyond the channel connection.
type Engine struct {
	channel Channel
	probe   ImageProber
	policy  RetryPolicy
}

// NewEngine creates an engine delivering through channel. probe may be nil.
func NewEngine(channel Channel, probe ImageProber, policy RetryPolicy) *Engine {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Engine{
		channel: channel,
		probe:   probe,
		policy:  policy,
	}
}

// Deliver sends one formatted item and reports the terminal outcome.
func (e *Engine) Deliver(ctx context.Context, item scrape.Item, msg Message) Outcome {
	attempts := 0

	if e.richEligible(ctx, item) {
	rich:
		for try := 1; try <= e.policy.MaxAttempts; try++ {
			attempts++
			err := e.channel.SendRich(ctx, item.ImageURL, msg.Caption)
			if err == nil {
				return Outcome{Status: StatusDeliveredRich, Attempts: attempts}
			}

			switch ClassOf(err) {
			case ClassPermanent:
				return Outcome{Status: StatusFailedPermanent, Attempts: attempts, Reason: err}
			case ClassStructural:
				// The same request would fail again; drop to text now.
				slog.Warn("Rich send rejected, degrading to text", "identity", item.Identity, "error", err)
				break rich
			default:
				slog.Warn("Rich send failed", "identity", item.Identity, "attempt", try, "error", err)
				if try < e.policy.MaxAttempts {
					if !e.wait(ctx) {
						return Outcome{Status: StatusFailedExhausted, Attempts: attempts, Reason: ctx.Err()}
					}
				}
			}
		}
	}

	var lastErr error
	for try := 1; try <= e.policy.MaxAttempts; try++ {
		attempts++
		err := e.channel.SendText(ctx, msg.Text, false)
		if err == nil {
			return Outcome{Status: StatusDeliveredText, Attempts: attempts}
		}
		lastErr = err

		switch ClassOf(err) {
		case ClassPermanent:
			return Outcome{Status: StatusFailedPermanent, Attempts: attempts, Reason: err}
		case ClassStructural:
			// Nothing simpler left to degrade to.
			return Outcome{Status: StatusFailedExhausted, Attempts: attempts, Reason: err}
		default:
			slog.Warn("Text send failed", "identity", item.Identity, "attempt", try, "error", err)
			if try < e.policy.MaxAttempts {
				if !e.wait(ctx) {
					return Outcome{Status: StatusFailedExhausted, Attempts: attempts, Reason: ctx.Err()}
				}
			}
		}
	}

	return Outcome{Status: StatusFailedExhausted, Attempts: attempts, Reason: lastErr}
}

// richEligible gates the rich representation: an image must be present, use
// an http(s) scheme, and pass the best-effort existence probe.
func (e *Engine) richEligible(ctx context.Context, item scrape.Item) bool {
	if item.ImageURL == "" {
		return false
	}
	u, err := url.Parse(item.ImageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	if e.probe != nil && !e.probe(ctx, item.ImageURL) {
		slog.Debug("Image probe failed, sending text only", "image", item.ImageURL)
		return false
	}
	return true
}

func (e *Engine) wait(ctx context.Context) bool {
	if e.policy.Delay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(e.policy.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
