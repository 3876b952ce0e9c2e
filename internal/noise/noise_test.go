package noise

import (
	"math"
	"testing"
)

func TestSimplex3Deterministic(t *testing.T) {
	points := [][3]float64{
		{0, 0, 0},
		{0, 0.37, 12.5},
		{0, 4.2, 400},
		{1.5, -2.25, 3.75},
		{0, 0.03, 25200},
	}
	for _, p := range points {
		a := Simplex3(p[0], p[1], p[2])
		b := Simplex3(p[0], p[1], p[2])
		if a != b {
			t.Errorf("Simplex3(%v) not referentially transparent: %v != %v", p, a, b)
		}
	}
}

func TestSimplex3Range(t *testing.T) {
	minV, maxV := math.Inf(1), math.Inf(-1)
	for i := 0; i < 40; i++ {
		for j := 0; j < 40; j++ {
			for k := 0; k < 10; k++ {
				v := Simplex3(float64(i)*0.173, float64(j)*0.291, float64(k)*13.7)
				if math.IsNaN(v) {
					t.Fatalf("NaN at %d,%d,%d", i, j, k)
				}
				minV = math.Min(minV, v)
				maxV = math.Max(maxV, v)
			}
		}
	}
	if minV < -1.05 || maxV > 1.05 {
		t.Errorf("range [%v, %v] exceeds [-1, 1]", minV, maxV)
	}
	if maxV-minV < 0.5 {
		t.Errorf("range [%v, %v] is too flat to be gradient noise", minV, maxV)
	}
}

func TestSimplex3NoShortPeriod(t *testing.T) {
	// The lattice repeats every 289 cells; callers work in the unit-to-hundreds
	// range, so a shift of a few cells must change the field.
	same := 0
	for i := 0; i < 50; i++ {
		y := float64(i) * 0.11
		if Simplex3(0, y, 10) == Simplex3(0, y, 17) {
			same++
		}
	}
	if same > 5 {
		t.Errorf("%d of 50 samples repeat after a 7-cell shift", same)
	}
}

func TestSimplex3LatticePeriod(t *testing.T) {
	a := Simplex3(0.3, 0.6, 0.9)
	b := Simplex3(0.3+289, 0.6+289, 0.9+289)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("expected 289 period along the lattice diagonal: %v vs %v", a, b)
	}
}

func TestRand2Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := Rand2(float64(i)*0.016, float64(i)*0.016)
		if v < 0 || v >= 1 {
			t.Fatalf("Rand2 out of [0,1): %v", v)
		}
	}
	if Rand2(1.25, 1.25) != Rand2(1.25, 1.25) {
		t.Error("Rand2 must be deterministic")
	}
}

func TestFBM3(t *testing.T) {
	if got, want := FBM3(0.2, 0.4, 0.6, 1, 1), Simplex3(0.2, 0.4, 0.6); got != want {
		t.Errorf("single octave FBM3 = %v, want %v", got, want)
	}
	if got := FBM3(0.2, 0.4, 0.6, 0, 1); got != Simplex3(0.2, 0.4, 0.6) {
		t.Errorf("octaves < 1 must behave as one octave, got %v", got)
	}
	for i := 0; i < 100; i++ {
		v := FBM3(float64(i)*0.07, float64(i)*0.13, 2, 2, 1)
		if v < -1.05 || v > 1.05 {
			t.Fatalf("FBM3 out of range: %v", v)
		}
	}
}
