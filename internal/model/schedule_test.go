package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekSchedulePattern(t *testing.T) {
	s := WeekSchedule{
		Monday: {Start: "10:00", End: "19:00"},
		Sunday: {IsClosed: true},
	}

	p, ok := s.Pattern(Monday)
	require.True(t, ok)
	assert.Equal(t, "10:00", p.Start)

	p, ok = s.Pattern(Sunday)
	require.True(t, ok)
	assert.True(t, p.IsClosed)

	_, ok = s.Pattern(Tuesday)
	assert.False(t, ok)

	var nilSchedule WeekSchedule
	_, ok = nilSchedule.Pattern(Monday)
	assert.False(t, ok)
}

func TestWeekScheduleRoundTripsThroughColumn(t *testing.T) {
	s := WeekSchedule{
		Friday: {Start: "08:00", End: "14:30"},
	}

	v, err := s.Value()
	require.NoError(t, err)

	var got WeekSchedule
	require.NoError(t, got.Scan(v))
	assert.Equal(t, s, got)
}

func TestWeekScheduleScanNil(t *testing.T) {
	var got WeekSchedule
	require.NoError(t, got.Scan(nil))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
