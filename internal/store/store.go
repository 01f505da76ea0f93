// Package store implements watermark recovery over an append-only tabular log.
//
// The log is its own index: every row carries the channel id in the
// LastIdKey column, so the last seen message id for a channel is recovered
// by scanning that column instead of keeping a separate persisted structure.
package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blockedby/tg-grabber/internal/logger"
)

// Header is the fixed column layout of the output log.
var Header = []string{
	"Date", "ChannelTitle", "ChannelID", "Username",
	"MessageID", "Link", "MediaType", "Text", "LastIdKey",
}

// 1-based column positions used for watermark recovery.
const (
	ColMessageID = 5
	ColLastIdKey = 9
)

// TableLog is the minimal surface of an append-only tabular log. Rows and
// columns are 1-based, matching spreadsheet addressing.
type TableLog interface {
	// FindRows returns the positions of all rows whose cell in the given
	// column equals value exactly, in row order.
	FindRows(ctx context.Context, column int, value string) ([]int, error)

	// Cell reads a single cell.
	Cell(ctx context.Context, row, column int) (string, error)

	// AppendRows appends full rows to the end of the log, preserving order.
	AppendRows(ctx context.Context, rows [][]string) error
}

// Watermarks reads and advances per-channel watermarks over a TableLog.
type Watermarks struct {
	table TableLog
	log   *logger.Logger
}

// NewWatermarks creates a watermark store over the given log.
func NewWatermarks(table TableLog) *Watermarks {
	return &Watermarks{
		table: table,
		log:   logger.Get(),
	}
}

// Last returns the highest message id already recorded for the channel: the
// MessageID of the last row whose LastIdKey equals the channel id. A missing
// or malformed row means no watermark and yields 0. Errors reaching the log
// itself propagate.
func (w *Watermarks) Last(ctx context.Context, channelID int64) (int64, error) {
	key := strconv.FormatInt(channelID, 10)

	rows, err := w.table.FindRows(ctx, ColLastIdKey, key)
	if err != nil {
		return 0, fmt.Errorf("scan watermark column: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	cell, err := w.table.Cell(ctx, rows[len(rows)-1], ColMessageID)
	if err != nil {
		return 0, fmt.Errorf("read message id cell: %w", err)
	}

	id, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
	if err != nil {
		w.log.Warn().
			Int64("channel_id", channelID).
			Str("cell", cell).
			Msg("store: malformed message id in log, treating watermark as absent")
		return 0, nil
	}

	return id, nil
}

// Append appends a batch of output rows, preserving order. An empty batch
// performs no store round-trip.
func (w *Watermarks) Append(ctx context.Context, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	return w.table.AppendRows(ctx, rows)
}
