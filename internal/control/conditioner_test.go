package control

import "testing"

func TestConditioner_MedianOfThree(t *testing.T) {
	cases := []struct {
		name string
		in   [3]float64
		want float64
	}{
		{"ordered", [3]float64{19, 20, 21}, 20},
		{"all equal", [3]float64{5, 5, 5}, 5},
		{"unordered", [3]float64{30, 10, 20}, 20},
		{"descending", [3]float64{21, 20, 19}, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := medianOfThree(tc.in[0], tc.in[1], tc.in[2])
			if got != tc.want {
				t.Fatalf("medianOfThree(%v) = %.1f, want %.1f", tc.in, got, tc.want)
			}
		})
	}
}

func TestConditioner_FirstSampleSeedsAllSlots(t *testing.T) {
	c := NewConditioner()
	if got := c.Update(180); got != 180 {
		t.Fatalf("first sample: got %.1f, want 180", got)
	}
	// A single spike after seeding must be rejected by the median.
	if got := c.Update(500); got != 180 {
		t.Fatalf("spike after seed: got %.1f, want 180", got)
	}
}

func TestConditioner_TracksRampWithoutLag(t *testing.T) {
	c := NewConditioner()
	c.Update(100)
	c.Update(101)
	if got := c.Update(102); got != 101 {
		t.Fatalf("ramp: got %.1f, want 101", got)
	}
}

func TestConditioner_ResetReseeds(t *testing.T) {
	c := NewConditioner()
	c.Update(100)
	c.Update(200)
	c.Reset()
	if got := c.Update(25); got != 25 {
		t.Fatalf("after reset: got %.1f, want 25", got)
	}
	if got := c.Update(900); got != 25 {
		t.Fatalf("spike after reset seed: got %.1f, want 25", got)
	}
}
