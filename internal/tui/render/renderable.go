package render

// Rect 表示矩形区域。
type Rect struct {
	X, Y          int
	Width, Height int
}

// Renderable 统一的可渲染抽象。
type Renderable interface {
	Render(area Rect, buf *Buffer)
	DesiredHeight(width int) int
}

// ColumnRenderable 垂直堆叠子元素。
type ColumnRenderable struct {
	children []Renderable
}

func NewColumn() *ColumnRenderable {
	return &ColumnRenderable{}
}

// Push 添加子元素。
func (c *ColumnRenderable) Push(child Renderable) {
	if c == nil || child == nil {
		return
	}
	c.children = append(c.children, child)
}

// Render 依次渲染子元素，超出 area.Height 时截断。
func (c *ColumnRenderable) Render(area Rect, buf *Buffer) {
	if c == nil {
		return
	}
	y := area.Y
	for _, child := range c.children {
		height := child.DesiredHeight(area.Width)
		child.Render(Rect{X: area.X, Y: y, Width: area.Width, Height: height}, buf)
		y += height
		if area.Height > 0 && y-area.Y >= area.Height {
			break
		}
	}
}

// DesiredHeight 返回所有子元素高度之和。
func (c *ColumnRenderable) DesiredHeight(width int) int {
	if c == nil {
		return 0
	}
	total := 0
	for _, child := range c.children {
		total += child.DesiredHeight(width)
	}
	return total
}

// RenderLines 把一个 Renderable 按宽度完整展开成行。
func RenderLines(r Renderable, width int) []Line {
	buf := Buffer{}
	r.Render(Rect{Width: width, Height: r.DesiredHeight(width)}, &buf)
	return buf.Lines
}
