package rank

import (
	"math"
	"testing"
)

const floatTol = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTol
}

func TestMinMax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"simple spread", []float64{0, 5, 10}, []float64{0.0, 0.5, 1.0}},
		{"constant column", []float64{3, 3, 3}, []float64{0, 0, 0}},
		{"single value", []float64{7}, []float64{0}},
		{"negative range", []float64{-10, 0, 10}, []float64{0.0, 0.5, 1.0}},
		{"nan and inf coerced", []float64{math.NaN(), math.Inf(1), 1}, []float64{0.0, 0.0, 1.0}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := MinMax(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if !approxEqual(got[i], tc.want[i]) {
					t.Errorf("out[%d] = %v, want %v", i, got[i], tc.want[i])
				}
				if math.IsNaN(got[i]) {
					t.Errorf("out[%d] is NaN", i)
				}
			}
		})
	}
}

func TestMinMax_Empty(t *testing.T) {
	t.Parallel()
	if got := MinMax(nil); got != nil {
		t.Errorf("MinMax(nil) = %v, want nil", got)
	}
}

func TestWinsorizeTop_CapsUpperTail(t *testing.T) {
	t.Parallel()
	// Median quantile of [1,2,3,4,100] is 3: everything above is capped,
	// values at or below pass through, and the maximum strictly decreases.
	in := []float64{1, 2, 3, 4, 100}
	got := WinsorizeTop(in, 0.5)

	want := []float64{1, 2, 3, 3, 3}
	for i := range want {
		if !approxEqual(got[i], want[i]) {
			t.Errorf("out[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	maxOut := got[0]
	for _, v := range got {
		if v > maxOut {
			maxOut = v
		}
	}
	if maxOut >= 100 {
		t.Errorf("maximum %v not strictly reduced", maxOut)
	}
}

func TestWinsorizeTop_DefaultQuantileBarelyCaps(t *testing.T) {
	t.Parallel()
	in := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	got := WinsorizeTop(in, 0.99)
	// 0.99 quantile of 5 values interpolates just below the max; only the
	// max itself is touched.
	for i := 0; i < 4; i++ {
		if !approxEqual(got[i], in[i]) {
			t.Errorf("out[%d] = %v, want untouched %v", i, got[i], in[i])
		}
	}
	if got[4] >= in[4] {
		t.Errorf("max = %v, want capped below %v", got[4], in[4])
	}
}

func TestQuantile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []float64
		q    float64
		want float64
	}{
		{"median odd", []float64{1, 2, 3, 4, 100}, 0.5, 3},
		{"median even interpolates", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"zero quantile", []float64{5, 1, 9}, 0.0, 1},
		{"full quantile", []float64{5, 1, 9}, 1.0, 9},
		{"clamped above", []float64{1, 2}, 1.5, 2},
		{"clamped below", []float64{1, 2}, -0.5, 1},
		{"empty", nil, 0.5, 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Quantile(tc.in, tc.q); !approxEqual(got, tc.want) {
				t.Errorf("Quantile(%v, %v) = %v, want %v", tc.in, tc.q, got, tc.want)
			}
		})
	}
}
