package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/blockedby/tg-grabber/internal/grabber"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subject = subject
	f.data = data
	return nil
}

func TestPublishRowAppended(t *testing.T) {
	conn := &fakeConn{}
	p := NewWithConn(conn)

	event := grabber.RowEvent{
		RunID:     uuid.New(),
		ChannelID: 42,
		MessageID: 101,
		MediaType: "photo",
		Link:      "https://t.me/chan/101",
	}

	require.NoError(t, p.PublishRowAppended(context.Background(), event))
	assert.Equal(t, SubjectRowAppended, conn.subject)

	var got grabber.RowEvent
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, event.RunID, got.RunID)
	assert.Equal(t, int64(42), got.ChannelID)
	assert.Equal(t, 101, got.MessageID)
}

func TestPublishRowAppended_ConnError(t *testing.T) {
	p := NewWithConn(&fakeConn{err: errors.New("nats down")})

	err := p.PublishRowAppended(context.Background(), grabber.RowEvent{})
	require.Error(t, err)
}
