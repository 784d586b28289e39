// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockEnglish(t *testing.T) {
	c, err := NewClock("en-US")
	require.NoError(t, err)

	ts := time.Date(2026, time.March, 4, 9, 5, 3, 0, time.UTC)
	assert.Equal(t, "09:05:03", c.Time(ts))
	assert.Equal(t, "14:30:59", c.Time(time.Date(2026, 1, 1, 14, 30, 59, 0, time.UTC)))
}

func TestClockDefaultsToPersian(t *testing.T) {
	c, err := NewClock("")
	require.NoError(t, err)

	got := c.Time(time.Date(2026, 1, 1, 14, 30, 59, 0, time.UTC))
	assert.Equal(t, "۱۴:۳۰:۵۹", got)
	assert.Equal(t, "۰۹:۰۵:۰۳", c.Time(time.Date(2026, 3, 4, 9, 5, 3, 0, time.UTC)))
}

func TestClockDate(t *testing.T) {
	day := time.Date(2026, time.October, 16, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		tag  string
		want string
	}{
		{"en", "2026/10/16"},
		{"en-US", "2026/10/16"},
		{"fa-IR", "۲۰۲۶/۱۰/۱۶"},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, MustClock(tt.tag).Date(day))
		})
	}

	assert.Equal(t, "2026/03/04", MustClock("en").Date(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)))
}

func TestNewClockRejectsBadTag(t *testing.T) {
	_, err := NewClock("not a tag!")
	assert.Error(t, err)
}
