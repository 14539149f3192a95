package parallel_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sw-qps/hlsrun/internal/parallel"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	t.Parallel()

	input := []time.Duration{40 * time.Millisecond, 10 * time.Millisecond, 30 * time.Millisecond, 20 * time.Millisecond}

	type given struct {
		limit int
	}
	var testCases = []struct {
		scenario string
		given    given
		then     int32
	}{
		{"limit 1", given{1}, 1},
		{"limit 2", given{2}, 2},
		{"unbounded", given{0}, 4},
	}

	for _, tt := range testCases {
		t.Run(tt.scenario, func(t *testing.T) {
			t.Parallel()
			var running, peak atomic.Int32
			f := func(_ context.Context, d time.Duration) (int, error) {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(d)
				running.Add(-1)
				if d == 30*time.Millisecond {
					return 0, errors.New("thirty")
				}
				return int(d / time.Millisecond), nil
			}

			results := parallel.Map(t.Context(), tt.given.limit, input, f)
			require.Len(t, results, len(input))
			require.Equal(t, 40, results[0].Value)
			require.Equal(t, 10, results[1].Value)
			require.EqualError(t, results[2].Err, "thirty")
			require.Equal(t, 20, results[3].Value)
			require.LessOrEqual(t, peak.Load(), tt.then)
		})
	}
}

func TestMap_Canceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var calls atomic.Int32
	results := parallel.Map(ctx, 2, []int{1, 2, 3}, func(_ context.Context, i int) (int, error) {
		calls.Add(1)
		return i, nil
	})
	require.Zero(t, calls.Load())
	for _, r := range results {
		require.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestMap_Empty(t *testing.T) {
	t.Parallel()
	results := parallel.Map(t.Context(), 1, []string(nil), func(context.Context, string) (string, error) {
		return "", nil
	})
	require.Empty(t, results)
}
