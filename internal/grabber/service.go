// Package grabber orchestrates the per-channel fetch-filter-append sync run.
package grabber

import (
	"context"
	"fmt"
	"time"

	"github.com/blockedby/tg-grabber/internal/channels"
	"github.com/blockedby/tg-grabber/internal/logger"
	"github.com/blockedby/tg-grabber/internal/telegram"
	"github.com/google/uuid"
)

// MessageSource defines the telegram operations the driver consumes.
type MessageSource interface {
	Resolve(ctx context.Context, ref string) (*telegram.Channel, error)
	MessagesAfter(ctx context.Context, channel *telegram.Channel, minID int64) ([]telegram.Message, error)
}

// WatermarkStore defines the log operations the driver consumes.
type WatermarkStore interface {
	Last(ctx context.Context, channelID int64) (int64, error)
	Append(ctx context.Context, rows [][]string) error
}

// EventPublisher publishes row-appended events.
type EventPublisher interface {
	PublishRowAppended(ctx context.Context, event RowEvent) error
}

// RowEvent describes one appended row for downstream consumers.
type RowEvent struct {
	RunID      uuid.UUID `json:"run_id"`
	ChannelID  int64     `json:"channel_id"`
	MessageID  int       `json:"message_id"`
	MediaType  string    `json:"media_type"`
	Link       string    `json:"link"`
	AppendedAt time.Time `json:"appended_at"`
}

// Service drives the sync run across the configured channels.
type Service struct {
	source    MessageSource
	store     WatermarkStore
	filter    Filter
	publisher EventPublisher // optional, may be nil
	log       *logger.Logger
}

// NewService creates a sync driver.
func NewService(source MessageSource, store WatermarkStore, filter Filter, publisher EventPublisher) *Service {
	return &Service{
		source:    source,
		store:     store,
		filter:    filter,
		publisher: publisher,
		log:       logger.Get(),
	}
}

// RunResult contains per-run statistics.
type RunResult struct {
	Channels int // channels fully processed
	Skipped  int // channels skipped on resolution or fetch failure
	Fetched  int // messages received from telegram
	Appended int // rows appended to the log
}

// Run processes the configured channel references strictly sequentially.
// Resolution and fetch failures skip the channel and continue; a store
// failure aborts the whole run.
func (s *Service) Run(ctx context.Context, refs []string) (*RunResult, error) {
	runID := uuid.New()
	log := &logger.Logger{Logger: s.log.With().Str("run_id", runID.String()).Logger()}

	result := &RunResult{}
	log.Info().Int("channels", len(refs)).Msg("grabber: starting run")

	for _, ref := range refs {
		canonical := channels.Normalize(ref)

		channel, err := s.source.Resolve(ctx, canonical)
		if err != nil {
			log.Warn().Err(err).Str("channel", canonical).Msg("grabber: resolve failed, skipping channel")
			result.Skipped++
			continue
		}

		last, err := s.store.Last(ctx, channel.ID)
		if err != nil {
			return result, fmt.Errorf("read watermark for %s: %w", canonical, err)
		}

		messages, err := s.source.MessagesAfter(ctx, channel, last)
		if err != nil {
			log.Warn().Err(err).Str("channel", canonical).Msg("grabber: fetch failed, skipping channel")
			result.Skipped++
			continue
		}
		result.Fetched += len(messages)

		var rows [][]string
		var events []RowEvent
		for _, msg := range messages {
			if !s.filter.Passes(msg.Body()) {
				continue
			}
			rec := Encode(msg, channel)
			rows = append(rows, rec.Row())
			events = append(events, RowEvent{
				RunID:     runID,
				ChannelID: rec.ChannelID,
				MessageID: rec.MessageID,
				MediaType: rec.MediaType,
				Link:      rec.Link,
			})
		}

		if len(rows) == 0 {
			log.Debug().
				Str("channel", canonical).
				Int64("watermark", last).
				Msg("grabber: nothing to append")
			result.Channels++
			continue
		}

		if err := s.store.Append(ctx, rows); err != nil {
			return result, fmt.Errorf("append %d rows for %s: %w", len(rows), canonical, err)
		}
		result.Appended += len(rows)
		result.Channels++

		log.Info().
			Str("channel", canonical).
			Int64("watermark", last).
			Int("fetched", len(messages)).
			Int("appended", len(rows)).
			Msg("grabber: channel synced")

		s.publish(ctx, log, events)
	}

	log.Info().
		Int("channels", result.Channels).
		Int("skipped", result.Skipped).
		Int("fetched", result.Fetched).
		Int("appended", result.Appended).
		Msg("grabber: run completed")

	return result, nil
}

// publish emits row events when a publisher is configured. Publish failures
// are logged and never affect the run.
func (s *Service) publish(ctx context.Context, log *logger.Logger, events []RowEvent) {
	if s.publisher == nil {
		return
	}
	now := time.Now()
	for _, event := range events {
		event.AppendedAt = now
		if err := s.publisher.PublishRowAppended(ctx, event); err != nil {
			log.Warn().Err(err).Int("message_id", event.MessageID).Msg("grabber: publish failed")
		}
	}
}
