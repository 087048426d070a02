package gradient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassOrder(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		dim       int
		component int
		expected  []int
	}{
		"1D":        {dim: 1, component: 0, expected: []int{0}},
		"2D first":  {dim: 2, component: 0, expected: []int{0, 1}},
		"2D second": {dim: 2, component: 1, expected: []int{1, 0}},
		"3D middle": {dim: 3, component: 1, expected: []int{1, 0, 2}},
		"3D last":   {dim: 3, component: 2, expected: []int{2, 0, 1}},
	}

	for name, tc := range tcs {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, passOrder(tc.dim, tc.component))
		})
	}
}
