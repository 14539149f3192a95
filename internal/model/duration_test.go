package model_test

import (
	"testing"
	"time"

	"github.com/sw-qps/hlsrun/internal/model"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	t.Parallel()
	var testCases = []struct {
		scenario string
		given    string
		then     time.Duration
		err      bool
	}{
		{"go millis", "500ms", 500 * time.Millisecond, false},
		{"go compound", "1m30s", 90 * time.Second, false},
		{"zero", "0s", 0, false},
		{"iso seconds", "PT10S", 10 * time.Second, false},
		{"iso fraction", "PT0,5S", 500 * time.Millisecond, false},
		{"iso day hour", "P1DT2H", 26 * time.Hour, false},
		{"iso minutes", "PT5M", 5 * time.Minute, false},
		{"empty", "", 0, true},
		{"negative", "-1s", 0, true},
		{"iso bare", "PT", 0, true},
		{"iso trailing T", "P1DT", 0, true},
		{"garbage", "soon", 0, true},
	}

	for _, tt := range testCases {
		t.Run(tt.scenario, func(t *testing.T) {
			t.Parallel()
			d, err := model.ParseDuration(tt.given)
			if tt.err {
				require.Error(t, err)
				require.ErrorIs(t, err, model.ErrDurationFormat)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.then, d)
		})
	}
}
