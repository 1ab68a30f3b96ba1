package app

// Minimum terminal size for the workspace
const (
	MinWidth  = 80
	MinHeight = 20
)

// rect is a screen region in cells
type rect struct {
	X, Y, W, H int
}

func (r rect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// layout places the three panes between the header and footer lines
type layout struct {
	Width, Height int
	Tree          rect
	Editor        rect
	Results       rect
}

// TooSmall reports whether the terminal is below the minimum size
func (l layout) TooSmall() bool {
	return l.Width < MinWidth || l.Height < MinHeight
}

func computeLayout(width, height int) layout {
	l := layout{Width: width, Height: height}

	contentH := max(height-2, 0)
	treeW := max(26, min(40, width/3))
	rightW := max(width-treeW, 0)
	editorH := contentH / 2

	l.Tree = rect{X: 0, Y: 1, W: treeW, H: contentH}
	l.Editor = rect{X: treeW, Y: 1, W: rightW, H: editorH}
	l.Results = rect{X: treeW, Y: 1 + editorH, W: rightW, H: contentH - editorH}
	return l
}
