package timeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "days", input: "72h30m15s", want: "3d 0h 30m 15s"},
		{name: "hours", input: "2h5m1s", want: "2h 5m 1s"},
		{name: "minutes", input: "15m30s", want: "15m 30s"},
		{name: "seconds", input: "42s", want: "42s"},
		{name: "unparseable passes through", input: "not-a-duration", want: "not-a-duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUptime(tt.input))
		})
	}
}

func TestFormatTime(t *testing.T) {
	// Unparseable timestamps pass through unchanged.
	assert.Equal(t, "garbage", FormatTime("garbage"))

	// RFC3339 timestamps are reformatted.
	got := FormatTime("2026-01-02T15:04:05Z")
	assert.NotEqual(t, "2026-01-02T15:04:05Z", got)
	assert.NotEmpty(t, got)
}
