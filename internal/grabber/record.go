package grabber

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blockedby/tg-grabber/internal/telegram"
)

// timeLayout is the on-sheet timestamp format.
const timeLayout = "2006-01-02 15:04:05"

// Record is one persisted output row: an accepted message plus its channel
// context. LastIdKey always equals the channel id, which is what makes
// scan-based watermark recovery possible.
type Record struct {
	Date         string
	ChannelTitle string
	ChannelID    int64
	Username     string
	MessageID    int
	Link         string
	MediaType    string
	Text         string
	LastIdKey    string
}

// Encode converts an accepted message to an output record. Pure: no I/O,
// deterministic for a given message and channel.
func Encode(msg telegram.Message, channel *telegram.Channel) Record {
	title := channel.Title
	if title == "" {
		title = channel.Username
	}
	if title == "" {
		title = strconv.FormatInt(channel.ID, 10)
	}

	username := ""
	if channel.Username != "" {
		username = "@" + channel.Username
	}

	return Record{
		Date:         msg.Date.Local().Format(timeLayout),
		ChannelTitle: title,
		ChannelID:    channel.ID,
		Username:     username,
		MessageID:    msg.ID,
		Link:         permalink(channel.Username, msg.ID),
		MediaType:    mediaType(msg.Media),
		Text:         msg.Body(),
		LastIdKey:    strconv.FormatInt(channel.ID, 10),
	}
}

// Row returns the record as a sheet row in header column order.
func (r Record) Row() []string {
	return []string{
		r.Date,
		r.ChannelTitle,
		strconv.FormatInt(r.ChannelID, 10),
		r.Username,
		strconv.Itoa(r.MessageID),
		r.Link,
		r.MediaType,
		r.Text,
		r.LastIdKey,
	}
}

// permalink builds the public t.me link for a message, or "" when the
// channel has no public handle.
func permalink(username string, messageID int) string {
	u := strings.TrimPrefix(username, "@")
	if u == "" {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s/%d", u, messageID)
}

// mediaType classifies attachment flags in fixed priority order; the first
// matching kind wins even if several flags are set.
func mediaType(m telegram.Media) string {
	switch {
	case m.Photo:
		return "photo"
	case m.Video:
		return "video"
	case m.Document:
		return "document"
	case m.Audio:
		return "audio"
	case m.Voice:
		return "voice"
	default:
		return "text"
	}
}
