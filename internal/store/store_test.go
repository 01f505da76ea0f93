package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryTable is an in-memory TableLog for tests.
type memoryTable struct {
	rows    [][]string
	appends int
	failAll bool
}

var errTableDown = errors.New("table unreachable")

func (m *memoryTable) FindRows(_ context.Context, column int, value string) ([]int, error) {
	if m.failAll {
		return nil, errTableDown
	}
	var out []int
	for i, row := range m.rows {
		if column-1 < len(row) && row[column-1] == value {
			out = append(out, i+1)
		}
	}
	return out, nil
}

func (m *memoryTable) Cell(_ context.Context, row, column int) (string, error) {
	if m.failAll {
		return "", errTableDown
	}
	if row-1 >= len(m.rows) || column-1 >= len(m.rows[row-1]) {
		return "", nil
	}
	return m.rows[row-1][column-1], nil
}

func (m *memoryTable) AppendRows(_ context.Context, rows [][]string) error {
	if m.failAll {
		return errTableDown
	}
	m.appends++
	m.rows = append(m.rows, rows...)
	return nil
}

// row builds a minimal 9-column output row for tests.
func row(messageID, lastIdKey string) []string {
	return []string{"2024-01-01 12:00:00", "Chan", lastIdKey, "@chan", messageID, "", "text", "hi", lastIdKey}
}

func TestWatermarks_LastEmptyLog(t *testing.T) {
	w := NewWatermarks(&memoryTable{})

	got, err := w.Last(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got, "empty log should yield watermark 0")
}

func TestWatermarks_LastTakesLastMatchingRow(t *testing.T) {
	table := &memoryTable{rows: [][]string{
		row("100", "42"),
		row("101", "42"),
		row("105", "42"),
	}}
	w := NewWatermarks(table)

	got, err := w.Last(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(105), got)
}

func TestWatermarks_LastIgnoresOtherChannels(t *testing.T) {
	table := &memoryTable{rows: [][]string{
		row("100", "42"),
		row("900", "777"),
		row("103", "42"),
		row("950", "777"),
	}}
	w := NewWatermarks(table)

	got, err := w.Last(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(103), got, "interleaved rows of other channels must not affect the watermark")

	got, err = w.Last(context.Background(), 777)
	require.NoError(t, err)
	assert.Equal(t, int64(950), got)
}

func TestWatermarks_LastMalformedMessageID(t *testing.T) {
	table := &memoryTable{rows: [][]string{
		row("not-a-number", "42"),
	}}
	w := NewWatermarks(table)

	got, err := w.Last(context.Background(), 42)
	require.NoError(t, err, "malformed data is treated as absent, not as an error")
	assert.Equal(t, int64(0), got)
}

func TestWatermarks_LastPropagatesStoreErrors(t *testing.T) {
	w := NewWatermarks(&memoryTable{failAll: true})

	_, err := w.Last(context.Background(), 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, errTableDown)
}

func TestWatermarks_AppendEmptyBatchIsNoOp(t *testing.T) {
	table := &memoryTable{}
	w := NewWatermarks(table)

	require.NoError(t, w.Append(context.Background(), nil))
	require.NoError(t, w.Append(context.Background(), [][]string{}))
	assert.Equal(t, 0, table.appends, "empty batch must not touch the store")
}

func TestWatermarks_AppendPreservesOrder(t *testing.T) {
	table := &memoryTable{}
	w := NewWatermarks(table)

	batch := [][]string{row("101", "42"), row("102", "42"), row("103", "42")}
	require.NoError(t, w.Append(context.Background(), batch))

	require.Len(t, table.rows, 3)
	assert.Equal(t, "101", table.rows[0][ColMessageID-1])
	assert.Equal(t, "102", table.rows[1][ColMessageID-1])
	assert.Equal(t, "103", table.rows[2][ColMessageID-1])

	// appended rows become the new watermark
	got, err := w.Last(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(103), got)
}

func TestHeaderShape(t *testing.T) {
	require.Len(t, Header, 9)
	assert.Equal(t, "MessageID", Header[ColMessageID-1])
	assert.Equal(t, "LastIdKey", Header[ColLastIdKey-1])
}
