package livebind

// Layout selects how a container arranges its children on a grid.
type Layout string

const (
	LayoutVertical           Layout = "vertical"
	LayoutHorizontal         Layout = "horizontal"
	LayoutCenteredVertical   Layout = "centered-vertical"
	LayoutCenteredHorizontal Layout = "centered-horizontal"
)

// Arrangement is the output of a layout: one cell per child and the
// weights of the container's rows and columns.
type Arrangement struct {
	Cells   []Cell
	Rows    []int
	Columns []int
}

// Arrange places n children. fill[i] gives child i a weight of 1 along
// the layout axis so it absorbs extra space.
func (l Layout) Arrange(fill []bool, grid Grid) Arrangement {
	weights := make([]int, len(fill))
	for i, f := range fill {
		if f {
			weights[i] = 1
		}
	}

	var a Arrangement
	cell := func(row, col int) Cell {
		return Cell{Row: row, Column: col, Sticky: grid.Sticky, PadX: grid.PadX, PadY: grid.PadY}
	}

	switch l {
	case LayoutHorizontal:
		a.Rows = []int{1}
		a.Columns = weights
		for i := range fill {
			a.Cells = append(a.Cells, cell(0, i))
		}
	case LayoutCenteredHorizontal:
		a.Rows = []int{1, 0, 1}
		a.Columns = surround(weights)
		for i := range fill {
			a.Cells = append(a.Cells, cell(1, i+1))
		}
	case LayoutCenteredVertical:
		a.Rows = surround(weights)
		a.Columns = []int{1, 0, 1}
		for i := range fill {
			a.Cells = append(a.Cells, cell(i+1, 1))
		}
	default:
		a.Rows = weights
		a.Columns = []int{1}
		for i := range fill {
			a.Cells = append(a.Cells, cell(i, 0))
		}
	}
	return a
}

// surround pads weights with an expanding row or column on each side.
func surround(weights []int) []int {
	out := make([]int, 0, len(weights)+2)
	out = append(out, 1)
	out = append(out, weights...)
	return append(out, 1)
}
