package sequencer

import "testing"

func TestReachedLimit(t *testing.T) {
	cases := []struct {
		name              string
		current, distance float64
		min, max          float64
		want              Limit
	}{
		{"inside", 5, 3, 0, 10, WithinLimits},
		{"past max, reverse safe", 9, 3, 0, 10, MustReverse},
		{"both directions out", 5, 20, 0, 10, Fatal},
		{"exactly max counts as crossing", 7, 3, 0, 10, MustReverse},
		{"exactly min counts as crossing", 3, -3, 0, 10, MustReverse},
		{"past min, reverse safe", 1, -3, 0, 10, MustReverse},
		{"moving down inside", 6, -2, 0, 10, WithinLimits},
		{"reverse lands on min", 5, 5, 0, 10, Fatal},
		{"negative envelope", -19, -2, -20, 20, MustReverse},
		{"wider than envelope going down", 5, -20, 0, 10, Fatal},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ReachedLimit(c.current, c.distance, c.min, c.max)
			if got != c.want {
				t.Fatalf("ReachedLimit(%v, %v, %v, %v): got %v, want %v",
					c.current, c.distance, c.min, c.max, got, c.want)
			}
		})
	}
}
