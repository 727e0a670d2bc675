package grid

import (
	"testing"

	"github.com/matzehuels/gridlayout/pkg/errors"
)

func TestNewCanvas(t *testing.T) {
	tests := []struct {
		name             string
		w, h, cell       int
		wantCols, wantRw int
		wantErr          bool
	}{
		{"standard", 1200, 800, 20, 60, 40, false},
		{"default cell", 1200, 800, 0, 60, 40, false},
		{"partial cells dropped", 1210, 815, 20, 60, 40, false},
		{"single cell", 20, 20, 20, 1, 1, false},
		{"zero width", 0, 800, 20, 0, 0, true},
		{"negative height", 1200, -1, 20, 0, 0, true},
		{"negative cell", 1200, 800, -5, 0, 0, true},
		{"smaller than a cell", 10, 10, 20, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCanvas(tt.w, tt.h, tt.cell)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewCanvas(%d, %d, %d) = %+v, want error", tt.w, tt.h, tt.cell, c)
				}
				if !errors.Is(err, errors.ErrCodeInvalidCanvas) {
					t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidCanvas)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewCanvas: %v", err)
			}
			if c.Cols() != tt.wantCols || c.Rows() != tt.wantRw {
				t.Errorf("grid = %dx%d, want %dx%d", c.Cols(), c.Rows(), tt.wantCols, tt.wantRw)
			}
		})
	}
}

func TestCanvasZeroCell(t *testing.T) {
	c := Canvas{Width: 100, Height: 100}
	if c.Cols() != 0 || c.Rows() != 0 {
		t.Errorf("zero cell size grid = %dx%d, want 0x0", c.Cols(), c.Rows())
	}
}

func TestCanvasPixel(t *testing.T) {
	c := Canvas{Width: 1200, Height: 800, CellSize: 20}
	if got := c.Pixel(7); got != 140 {
		t.Errorf("Pixel(7) = %d, want 140", got)
	}
}
