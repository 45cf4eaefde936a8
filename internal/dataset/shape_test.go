package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPoint(t *testing.T) {
	tests := []struct {
		name    string
		shape   string
		wantLon float64
		wantLat float64
		wantOK  bool
	}{
		{
			name:    "parenthesized pair",
			shape:   "(16.4 48.2)",
			wantLon: 16.4,
			wantLat: 48.2,
			wantOK:  true,
		},
		{
			name:    "bare pair",
			shape:   "16.4 48.2",
			wantLon: 16.4,
			wantLat: 48.2,
			wantOK:  true,
		},
		{
			name:    "wkt point",
			shape:   "POINT (16.413826 48.218092)",
			wantLon: 16.413826,
			wantLat: 48.218092,
			wantOK:  true,
		},
		{
			name:    "negative coordinates",
			shape:   "(-73.98 -40.75)",
			wantLon: -73.98,
			wantLat: -40.75,
			wantOK:  true,
		},
		{
			name:    "integer tokens",
			shape:   "16 48",
			wantLon: 16,
			wantLat: 48,
			wantOK:  true,
		},
		{
			name:    "multiple spaces between tokens",
			shape:   "16.4   48.2",
			wantLon: 16.4,
			wantLat: 48.2,
			wantOK:  true,
		},
		{name: "empty", shape: "", wantOK: false},
		{name: "single token", shape: "16.4", wantOK: false},
		{name: "no numbers", shape: "POINT (here there)", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lon, lat, ok := ExtractPoint(tt.shape)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.InDelta(t, tt.wantLon, lon, 1e-9)
			assert.InDelta(t, tt.wantLat, lat, 1e-9)
		})
	}
}
