package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var ts = time.Date(2024, 1, 23, 15, 4, 5, 0, time.UTC)

func TestFormatter_Presets(t *testing.T) {
	tests := []struct {
		date, time string
		wantFull   string
		wantShort  string
	}{
		{"yyyy-mm-dd", "24h", "2024-01-23 15:04:05", "01-23"},
		{"mm/dd/yyyy", "12h", "01/23/2024 3:04:05 PM", "01/23"},
		{"dd/mm/yyyy", "24h", "23/01/2024 15:04:05", "23/01"},
		{"", "", "2024-01-23 15:04:05", "01-23"},
		{"Jan 02 2006", "bogus", "Jan 23 2024 15:04:05", "Jan 23"},
	}

	for _, tt := range tests {
		t.Run(tt.date+"/"+tt.time, func(t *testing.T) {
			f := New(tt.date, tt.time)
			require.Equal(t, tt.wantFull, f.Full(ts))
			require.Equal(t, tt.wantShort, f.DateShort(ts))
		})
	}
}

func TestShortLayout_FallsBackWhenEmpty(t *testing.T) {
	require.Equal(t, "Jan 02", shortLayout("2006"))
}

func TestDuration(t *testing.T) {
	require.Equal(t, "1.235s", Duration(1234567*time.Microsecond))
	require.Equal(t, "2m3s", Duration(2*time.Minute+3400*time.Millisecond))
}
