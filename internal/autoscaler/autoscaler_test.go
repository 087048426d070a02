package autoscaler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkers(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		scaler   AutoScaler
		work     int
		pieces   int
		expected int
	}{
		"tiny work":        {scaler: AutoScaler{MaxWorkers: 8}, work: 10, pieces: 10, expected: 1},
		"capped by max":    {scaler: AutoScaler{MaxWorkers: 4}, work: 1 << 20, pieces: 100, expected: 4},
		"capped by pieces": {scaler: AutoScaler{MaxWorkers: 8}, work: 1 << 20, pieces: 3, expected: 3},
		"min per worker":   {scaler: AutoScaler{MaxWorkers: 8, MinPerWorker: 10}, work: 25, pieces: 25, expected: 2},
		"no pieces":        {scaler: AutoScaler{MaxWorkers: 8}, work: 1 << 20, pieces: 0, expected: 1},
	}

	for name, tc := range tcs {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, tc.scaler.Workers(tc.work, tc.pieces))
		})
	}
}

func TestDefaultMaxWorkers(t *testing.T) {
	t.Parallel()

	scaler := New(0)
	assert.GreaterOrEqual(t, scaler.Workers(1<<30, 1<<30), 1)
}
