// Package telegram provides a Telegram MTProto client wrapper for reading
// channel history.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blockedby/tg-grabber/internal/logger"
	"github.com/celestix/gotgproto"
	"github.com/gotd/td/tg"
)

// Client wraps a gotgproto client and provides the high-level operations
// the sync driver needs: resolving channel references and fetching history
// after a message id.
type Client struct {
	proto       *gotgproto.Client
	rateLimiter *RateLimiter
	log         *logger.Logger
}

// NewClient wraps an authorized gotgproto client.
func NewClient(proto *gotgproto.Client, rps float64, burst int) *Client {
	return &Client{
		proto:       proto,
		rateLimiter: NewRateLimiter(rps, burst),
		log:         logger.Get(),
	}
}

// Close stops the underlying protocol client.
func (c *Client) Close() {
	if c.proto != nil {
		c.proto.Stop()
	}
}

// Resolve resolves a canonical channel reference (@handle or numeric id)
// to a live channel.
func (c *Client) Resolve(ctx context.Context, ref string) (*Channel, error) {
	if strings.HasPrefix(ref, "@") {
		return c.resolveUsername(ctx, strings.TrimPrefix(ref, "@"))
	}
	return c.resolveID(ctx, ref)
}

func (c *Client) resolveUsername(ctx context.Context, username string) (*Channel, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.log.Debug().Str("username", username).Msg("telegram: resolving channel username")
	resolved, err := c.proto.API().ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		if wait := c.checkFloodWait(err); wait > 0 {
			c.log.Warn().Int("wait_seconds", wait).Msg("telegram: FLOOD_WAIT detected, updating rate limiter")
			c.rateLimiter.SetFloodWait(wait)
		}
		return nil, fmt.Errorf("resolve username %s: %w", username, err)
	}

	if len(resolved.Chats) == 0 {
		return nil, fmt.Errorf("channel not found: %s", username)
	}

	ch, ok := resolved.Chats[0].(*tg.Channel)
	if !ok {
		return nil, fmt.Errorf("not a channel: %s", username)
	}

	return &Channel{
		ID:         ch.ID,
		AccessHash: ch.AccessHash,
		Username:   username,
		Title:      ch.Title,
	}, nil
}

// resolveID resolves a numeric channel reference through the peer cache.
// The channel must have been seen by this session before (it is, for any
// channel the account is a member of).
func (c *Client) resolveID(ctx context.Context, ref string) (*Channel, error) {
	id, err := parseChannelID(ref)
	if err != nil {
		return nil, err
	}

	peer := c.proto.PeerStorage.GetPeerById(id)
	if peer == nil || peer.ID == 0 {
		return nil, fmt.Errorf("channel id %s not found in peer cache", ref)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	chats, err := c.proto.API().ChannelsGetChannels(ctx, []tg.InputChannelClass{
		&tg.InputChannel{ChannelID: id, AccessHash: peer.AccessHash},
	})
	if err != nil {
		if wait := c.checkFloodWait(err); wait > 0 {
			c.rateLimiter.SetFloodWait(wait)
		}
		return nil, fmt.Errorf("get channel %s: %w", ref, err)
	}

	for _, chat := range chats.GetChats() {
		if ch, ok := chat.(*tg.Channel); ok && ch.ID == id {
			return &Channel{
				ID:         ch.ID,
				AccessHash: ch.AccessHash,
				Username:   ch.Username,
				Title:      ch.Title,
			}, nil
		}
	}

	return nil, fmt.Errorf("channel id %s not returned by api", ref)
}

// parseChannelID converts a numeric reference to a bare channel id.
// Bot-API style ids carry a -100 prefix that the MTProto layer does not use.
func parseChannelID(ref string) (int64, error) {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid channel id %q: %w", ref, err)
	}
	if id < 0 {
		s := strings.TrimPrefix(ref, "-100")
		if s != ref {
			return strconv.ParseInt(s, 10, 64)
		}
		id = -id
	}
	return id, nil
}

// MessagesAfter fetches all messages with id strictly greater than minID,
// returned in ascending id order.
func (c *Client) MessagesAfter(ctx context.Context, channel *Channel, minID int64) ([]Message, error) {
	const batchSize = 100

	var out []Message
	offsetID := 0

	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		c.log.Debug().
			Int64("channel_id", channel.ID).
			Int("offset_id", offsetID).
			Int64("min_id", minID).
			Msg("telegram: calling MessagesGetHistory")

		history, err := c.proto.API().MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer: &tg.InputPeerChannel{
				ChannelID:  channel.ID,
				AccessHash: channel.AccessHash,
			},
			OffsetID: offsetID,
			MinID:    int(minID),
			Limit:    batchSize,
		})
		if err != nil {
			if wait := c.checkFloodWait(err); wait > 0 {
				c.log.Warn().Int("wait_seconds", wait).Msg("telegram: FLOOD_WAIT detected in MessagesAfter, updating rate limiter")
				c.rateLimiter.SetFloodWait(wait)
			}
			return nil, fmt.Errorf("get history: %w", err)
		}

		batch, oldestID, rawCount := extractMessages(history, minID)
		if rawCount == 0 {
			break
		}

		out = append(out, batch...)
		// batches arrive newest-first; the oldest raw id is the cursor
		offsetID = oldestID

		if rawCount < batchSize {
			break
		}
	}

	// newest-first overall, reverse to ascending id order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return out, nil
}

// extractMessages converts a history response to Messages, dropping service
// messages and anything at or below the exclusive minID bound. It also
// reports the oldest raw message id and the raw batch size so pagination
// can advance past dropped entries.
func extractMessages(history tg.MessagesMessagesClass, minID int64) ([]Message, int, int) {
	var raw []tg.MessageClass
	switch h := history.(type) {
	case *tg.MessagesChannelMessages:
		raw = h.Messages
	case *tg.MessagesMessages:
		raw = h.Messages
	default:
		return nil, 0, 0
	}

	var out []Message
	oldestID := 0
	for _, msg := range raw {
		id := rawMessageID(msg)
		if oldestID == 0 || id < oldestID {
			oldestID = id
		}

		m, ok := msg.(*tg.Message)
		if !ok {
			continue
		}
		if int64(m.ID) <= minID {
			continue
		}
		out = append(out, parseMessage(m))
	}
	return out, oldestID, len(raw)
}

func rawMessageID(msg tg.MessageClass) int {
	switch m := msg.(type) {
	case *tg.Message:
		return m.ID
	case *tg.MessageService:
		return m.ID
	case *tg.MessageEmpty:
		return m.ID
	default:
		return 0
	}
}

// parseMessage converts a raw telegram message. For media messages the wire
// text is the caption.
func parseMessage(m *tg.Message) Message {
	out := Message{
		ID:   m.ID,
		Date: time.Unix(int64(m.Date), 0),
	}

	if m.Media != nil {
		out.Media = classifyMedia(m.Media)
		out.Caption = m.Message
	} else {
		out.Text = m.Message
	}

	return out
}

// classifyMedia decodes attachment kind flags from the media class.
// Every document media keeps the Document flag in addition to its specific
// kind, matching how the API models video/audio/voice as documents.
func classifyMedia(media tg.MessageMediaClass) Media {
	var out Media

	switch mm := media.(type) {
	case *tg.MessageMediaPhoto:
		out.Photo = true
	case *tg.MessageMediaDocument:
		out.Document = true
		doc, ok := mm.Document.(*tg.Document)
		if !ok {
			return out
		}
		for _, attr := range doc.Attributes {
			switch a := attr.(type) {
			case *tg.DocumentAttributeVideo:
				out.Video = true
			case *tg.DocumentAttributeAudio:
				if a.Voice {
					out.Voice = true
				} else {
					out.Audio = true
				}
			}
		}
	}

	return out
}

// checkFloodWait checks if error is a FLOOD_WAIT error and returns wait seconds.
func (c *Client) checkFloodWait(err error) int {
	if err == nil {
		return 0
	}

	str := err.Error()
	if strings.Contains(str, "FLOOD_WAIT_") {
		var seconds int
		parts := strings.Split(str, "FLOOD_WAIT_")
		if len(parts) > 1 {
			numStr := strings.TrimSpace(parts[1])
			_, _ = fmt.Sscanf(numStr, "%d", &seconds)
			return seconds
		}
	}
	return 0
}
