package telegram

import (
	"time"
)

// Channel represents a resolved telegram channel.
type Channel struct {
	ID         int64  // channel id
	AccessHash int64  // access hash for api calls
	Username   string // channel username (without @), empty for private channels
	Title      string // channel title
}

// Media carries the attachment kind flags of a message. At most one flag is
// set for ordinary messages; video, audio and voice attachments also set
// Document since they arrive as document media on the wire.
type Media struct {
	Photo    bool
	Video    bool
	Document bool
	Audio    bool
	Voice    bool
}

// Message represents a parsed channel message.
type Message struct {
	ID      int       // message id (unique within channel, ascending)
	Date    time.Time // message creation timestamp
	Text    string    // message body (empty for media messages)
	Caption string    // media caption (empty for plain text messages)
	Media   Media     // attachment kind flags
}

// Body returns the message text, falling back to the media caption.
func (m Message) Body() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}
