package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeString_Validate(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59"}
	for _, s := range valid {
		assert.NoError(t, TimeString(s).Validate(), s)
	}

	invalid := []string{"", "9:30", "24:00", "12:60", "12-30", "12:30:00", "ab:cd"}
	for _, s := range invalid {
		assert.ErrorIs(t, TimeString(s).Validate(), ErrInvalidTimeString, s)
	}
}

func TestTimeString_EndOfDay(t *testing.T) {
	assert.ErrorIs(t, EndOfDay.Validate(), ErrInvalidTimeString)
	assert.NoError(t, EndOfDay.ValidateEnd())
	assert.ErrorIs(t, TimeString("24:30").ValidateEnd(), ErrInvalidTimeString)

	_, err := NewTimeStringFromString("24:00")
	assert.ErrorIs(t, err, ErrInvalidTimeString)
	end, err := NewEndTimeStringFromString("24:00")
	require.NoError(t, err)
	assert.True(t, end.IsEndOfDay())

	minutes, err := end.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 24*60, minutes)
	assert.True(t, MustTimeString("23:59").IsBefore(end))

	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	at, err := end.On(date, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC), at)

	v, err := end.Value()
	require.NoError(t, err)
	assert.Equal(t, "24:00", v)

	var scanned TimeString
	require.NoError(t, scanned.Scan([]byte("24:00:00")))
	assert.Equal(t, EndOfDay, scanned)
}

func TestTimeString_Compare(t *testing.T) {
	a := MustTimeString("10:00")
	b := MustTimeString("10:30")

	assert.True(t, a.IsBefore(b))
	assert.False(t, b.IsBefore(a))
	assert.True(t, b.IsAfter(a))
	assert.False(t, a.IsBefore(a))
	assert.False(t, TimeString("bad").IsBefore(b))
}

func TestTimeString_On(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	date := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	at, err := MustTimeString("09:15").On(date, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.July, 1, 7, 15, 0, 0, time.UTC), at.UTC())

	// 2024-03-31 02:30 does not exist in Berlin
	gap := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	_, err = MustTimeString("02:30").On(gap, loc)
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_On_FallBackPicksFirstOccurrence(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 2026-10-25 02:00-03:00 повторяется: сначала CEST (+02), затем CET (+01)
	date := time.Date(2026, time.October, 25, 0, 0, 0, 0, time.UTC)

	at, err := MustTimeString("02:00").On(date, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.October, 25, 0, 0, 0, 0, time.UTC), at.UTC())

	at, err = MustTimeString("02:59").On(date, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.October, 25, 0, 59, 0, 0, time.UTC), at.UTC())

	// вне повторяющегося часа смещение однозначно
	at, err = MustTimeString("03:00").On(date, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.October, 25, 2, 0, 0, 0, time.UTC), at.UTC())

	at, err = MustTimeString("01:00").On(date, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.October, 24, 23, 0, 0, 0, time.UTC), at.UTC())
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString
	require.NoError(t, ts.Scan([]byte("14:05:00")))
	assert.Equal(t, TimeString("14:05"), ts)

	require.NoError(t, ts.Scan("08:00"))
	assert.Equal(t, TimeString("08:00"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}
