package grid

import (
	"math"
	"testing"
)

var testCanvas = Canvas{Width: 1200, Height: 800, CellSize: 20}

func TestNormalizeRoundTrip(t *testing.T) {
	cols, rows := testCanvas.Cols(), testCanvas.Rows()
	for x := 0; x < cols; x += 7 {
		for y := 0; y < rows; y += 5 {
			for _, size := range [][2]int{{1, 1}, {10, 10}, {cols - x, rows - y}} {
				it := Normalize(Item{X: x, Y: y, W: size[0], H: size[1]}, testCanvas)
				got := Item{
					X: int(math.Round(it.NX * float64(cols))),
					Y: int(math.Round(it.NY * float64(rows))),
					W: int(math.Round(it.NW * float64(cols))),
					H: int(math.Round(it.NH * float64(rows))),
				}
				if got.Rect() != it.Rect() {
					t.Fatalf("round trip of %+v gave %+v", it.Rect(), got.Rect())
				}
			}
		}
	}
}

func TestNormalizeClamps(t *testing.T) {
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"inside", Rect{5, 5, 10, 10}, Rect{5, 5, 10, 10}},
		{"negative origin", Rect{-3, -8, 10, 10}, Rect{0, 0, 10, 10}},
		{"zero span", Rect{4, 4, 0, -2}, Rect{4, 4, 1, 1}},
		{"past right edge", Rect{55, 0, 10, 4}, Rect{50, 0, 10, 4}},
		{"past bottom edge", Rect{0, 39, 4, 4}, Rect{0, 36, 4, 4}},
		{"wider than canvas", Rect{12, 3, 80, 4}, Rect{0, 3, 80, 4}},
		{"taller than canvas", Rect{2, 12, 4, 50}, Rect{2, 0, 4, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := Item{}
			it.setRect(tt.in)
			got := Normalize(it, testCanvas)
			if got.Rect() != tt.want {
				t.Errorf("Normalize(%+v) = %+v, want %+v", tt.in, got.Rect(), tt.want)
			}
			for _, f := range []float64{got.NX, got.NY, got.NW, got.NH} {
				if f < 0 || f > 1 || math.IsNaN(f) {
					t.Errorf("normalized field %v outside [0, 1]", f)
				}
			}
		})
	}
}

func TestNormalizeDoesNotModifyInput(t *testing.T) {
	in := Item{ID: "a", X: -5, Y: 100, W: 0, H: 0, Overrides: map[Breakpoint]Override{
		Mobile: {X: -1, Y: -1, W: 2, H: 2, Visible: true},
	}}
	_ = Normalize(in, testCanvas)
	if in.X != -5 || in.Y != 100 || in.W != 0 {
		t.Errorf("input geometry changed: %+v", in.Rect())
	}
	if in.Overrides[Mobile].X != -1 {
		t.Errorf("input override changed: %+v", in.Overrides[Mobile])
	}
}

func TestNormalizeClampsOverrides(t *testing.T) {
	in := Item{W: 4, H: 4, Overrides: map[Breakpoint]Override{
		Tablet: {X: 100, Y: -4, W: 4, H: 4, Visible: false},
	}}
	got := Normalize(in, testCanvas).Overrides[Tablet]
	want := Override{X: 56, Y: 0, W: 4, H: 4, Visible: false}
	if got != want {
		t.Errorf("override = %+v, want %+v", got, want)
	}
}

func TestFraction(t *testing.T) {
	tests := []struct {
		num, den int
		want     float64
	}{
		{100, 200, 0.5},
		{0, 200, 0},
		{10, 0, 0},
		{300, 200, 1},
		{-10, 200, 0},
	}
	for _, tt := range tests {
		if got := fraction(tt.num, tt.den); got != tt.want {
			t.Errorf("fraction(%d, %d) = %v, want %v", tt.num, tt.den, got, tt.want)
		}
	}
}

func TestNormalizeZeroCanvas(t *testing.T) {
	got := Normalize(Item{X: 3, Y: 3, W: 2, H: 2}, Canvas{})
	if got.NX != 0 || got.NY != 0 || got.NW != 0 || got.NH != 0 {
		t.Errorf("zero canvas should yield zero fractions, got %v %v %v %v", got.NX, got.NY, got.NW, got.NH)
	}
}

func TestNudge(t *testing.T) {
	it := Normalize(Item{X: 0, Y: 0, W: 10, H: 10}, testCanvas)
	got := Nudge(it, -1, 3, testCanvas)
	if got.X != 0 || got.Y != 3 {
		t.Errorf("Nudge = (%d, %d), want (0, 3)", got.X, got.Y)
	}
	if got.NY != 3.0/40.0 {
		t.Errorf("NY = %v, want %v", got.NY, 3.0/40.0)
	}
}
