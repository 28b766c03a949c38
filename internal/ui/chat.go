package ui

import (
	"time"

	"github.com/vovakirdan/tui-handheld/internal/core"
)

// CharLifetime is how long each character of a message keeps it on screen.
const CharLifetime = 150 * time.Millisecond

// Message is one chat line.
type Message struct {
	Author string
	Text   string
	Sent   time.Time
}

// Expired reports whether the message has been shown long enough.
func (m Message) Expired(now time.Time) bool {
	return now.Sub(m.Sent) > time.Duration(len(m.Text))*CharLifetime
}

// Chat is the log of short messages shown at the bottom of the screen.
type Chat struct {
	messages []Message
}

// Send adds a message.
func (c *Chat) Send(author, text string, now time.Time) {
	c.messages = append(c.messages, Message{Author: author, Text: text, Sent: now})
}

// Messages returns the messages still on screen.
func (c *Chat) Messages() []Message {
	return c.messages
}

// Draw renders the log bottom-up and drops expired messages.
func (c *Chat) Draw(dst *core.Screen, now time.Time) {
	n := 0
	for _, m := range c.messages {
		if !m.Expired(now) {
			c.messages[n] = m
			n++
		}
	}
	c.messages = c.messages[:n]

	y := dst.Height() - len(c.messages)
	for _, m := range c.messages {
		author := "[" + m.Author + "] "
		dst.DrawTextColor(0, y, author, core.ColorBrightCyan)
		dst.DrawTextColor(len([]rune(author)), y, m.Text, core.ColorWhite)
		y++
	}
}
