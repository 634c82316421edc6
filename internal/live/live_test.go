package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLiveDefaultWindows(t *testing.T) {
	s, err := New("", DefaultWindows())
	require.NoError(t, err)
	ny := s.Location()

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"monday morning", time.Date(2024, 6, 3, 8, 30, 0, 0, ny), true},
		{"monday start", time.Date(2024, 6, 3, 7, 0, 0, 0, ny), true},
		{"monday end", time.Date(2024, 6, 3, 10, 0, 0, 0, ny), false},
		{"thursday before", time.Date(2024, 6, 6, 6, 59, 0, 0, ny), false},
		{"friday afternoon", time.Date(2024, 6, 7, 17, 59, 0, 0, ny), true},
		{"friday evening", time.Date(2024, 6, 7, 18, 0, 0, 0, ny), false},
		{"saturday", time.Date(2024, 6, 8, 8, 0, 0, 0, ny), false},
		{"utc input", time.Date(2024, 6, 3, 12, 30, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsLive(tt.at))
		})
	}
}

func TestNextStart(t *testing.T) {
	s, err := New("America/New_York", DefaultWindows())
	require.NoError(t, err)
	ny := s.Location()

	next, ok := s.NextStart(time.Date(2024, 6, 7, 19, 0, 0, 0, ny))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 10, 7, 0, 0, 0, ny), next)

	next, ok = s.NextStart(time.Date(2024, 6, 4, 7, 0, 0, 0, ny))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 5, 7, 0, 0, 0, ny), next, "start is strictly after now")
}

func TestNextStartNoWindows(t *testing.T) {
	s, err := New("UTC", nil)
	require.NoError(t, err)
	_, ok := s.NextStart(time.Now())
	assert.False(t, ok)
	assert.False(t, s.IsLive(time.Now()))
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("Mars/Olympus", DefaultWindows())
	assert.Error(t, err)

	_, err = New("UTC", []Window{{Days: []time.Weekday{time.Monday}, StartHour: 10, EndHour: 9}})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = New("UTC", []Window{{StartHour: 1, EndHour: 2}})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = New("UTC", []Window{{Days: []time.Weekday{9}, StartHour: 1, EndHour: 2}})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
