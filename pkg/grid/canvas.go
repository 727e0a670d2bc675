package grid

import (
	"github.com/matzehuels/gridlayout/pkg/errors"
)

// DefaultCellSize is the pixel size of one grid cell when none is configured.
const DefaultCellSize = 20

// Canvas is the fixed-size design surface items are placed on.
// All three fields are in pixels.
type Canvas struct {
	Width    int `json:"width" bson:"width"`
	Height   int `json:"height" bson:"height"`
	CellSize int `json:"cell_size" bson:"cell_size"`
}

// NewCanvas returns a validated canvas. A zero cellSize selects
// [DefaultCellSize].
func NewCanvas(width, height, cellSize int) (Canvas, error) {
	if cellSize == 0 {
		cellSize = DefaultCellSize
	}
	c := Canvas{Width: width, Height: height, CellSize: cellSize}
	if err := c.Validate(); err != nil {
		return Canvas{}, err
	}
	return c, nil
}

// Validate checks that the canvas dimensions are positive and that the
// derived grid has at least one column and one row.
func (c Canvas) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidCanvas, "canvas size must be positive (got %dx%d)", c.Width, c.Height)
	}
	if c.CellSize <= 0 {
		return errors.New(errors.ErrCodeInvalidCanvas, "cell size must be positive (got %d)", c.CellSize)
	}
	if c.Cols() < 1 || c.Rows() < 1 {
		return errors.New(errors.ErrCodeInvalidCanvas, "canvas %dx%d holds no %dpx cell", c.Width, c.Height, c.CellSize)
	}
	return nil
}

// Cols returns the number of whole grid columns.
func (c Canvas) Cols() int {
	if c.CellSize <= 0 {
		return 0
	}
	return c.Width / c.CellSize
}

// Rows returns the number of whole grid rows.
func (c Canvas) Rows() int {
	if c.CellSize <= 0 {
		return 0
	}
	return c.Height / c.CellSize
}

// Pixel maps a grid coordinate or span to pixels.
func (c Canvas) Pixel(cells int) int { return cells * c.CellSize }
