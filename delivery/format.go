package delivery

import (
	"strings"

	"github.com/gamedia/newswire/scrape"
)

// Telegram transport limits. Captions ride along with media and are shorter
// than standalone messages.
const (
	CaptionLimit = 1024
	MessageLimit = 4096
)

// Message is the formatted representation of one item in both shapes the
// engine may send: Caption for the rich (photo) form, Text for the
// plain-text fallback with the permalink appended so the reader can still
// reach the source.
type Message struct {
	Caption string
	Text    string
}

// Formatter renders items into Telegram-HTML messages.
type Formatter struct {
	// Footer is the channel signature line appended to every message.
	// Empty omits the line.
	Footer string
}

// NewFormatter creates a formatter with the given footer line.
func NewFormatter(footer string) *Formatter {
	return &Formatter{Footer: footer}
}

// Format renders the item. Reserved characters are escaped first; the
// transport length limits are applied to the escaped text, and truncated
// text always ends with the marker.
func (f *Formatter) Format(item scrape.Item) Message {
	var b strings.Builder
	b.WriteString("<b>⚡ ")
	b.WriteString(EscapeHTML(item.Title))
	b.WriteString("</b>\n\n<i>")
	b.WriteString(EscapeHTML(item.Summary))
	b.WriteString("</i>")

	if len(item.Hashtags) > 0 {
		b.WriteString("\n\n")
		b.WriteString(EscapeHTML(strings.Join(item.Hashtags, " ")))
	}
	if f.Footer != "" {
		b.WriteString("\n\n")
		b.WriteString(EscapeHTML(f.Footer))
	}

	body := b.String()
	return Message{
		Caption: scrape.Truncate(body, CaptionLimit),
		Text:    scrape.Truncate(body+"\n\n"+item.Permalink, MessageLimit),
	}
}

// EscapeHTML escapes the characters Telegram's HTML parse mode reserves.
// Only &, < and > need escaping per the Bot API; quotes are left alone to
// keep captions inside their budget.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
