// Package fragment defines the domain entities placed on the puzzle board.
// This package is PURE and must NOT import any infrastructure packages (engine, events, platform).
package fragment

// Type is the temporal category of a fragment. Patterns are keyed on it.
type Type string

const (
	TypePast     Type = "past"
	TypePresent  Type = "present"
	TypeFuture   Type = "future"
	TypeParadox  Type = "paradox"
	TypeVoid     Type = "void"
	TypeConstant Type = "constant"
)

// Types lists every fragment type in spawn-table order.
var Types = []Type{TypePast, TypePresent, TypeFuture, TypeParadox, TypeVoid, TypeConstant}

// Shape is the cosmetic glyph of a fragment. No gameplay effect.
type Shape string

const (
	ShapeCircle   Shape = "circle"
	ShapeSquare   Shape = "square"
	ShapeTriangle Shape = "triangle"
	ShapeDiamond  Shape = "diamond"
	ShapeHexagon  Shape = "hexagon"
	ShapeStar     Shape = "star"
)

// Shapes lists every cosmetic shape in spawn-table order.
var Shapes = []Shape{ShapeCircle, ShapeSquare, ShapeTriangle, ShapeDiamond, ShapeHexagon, ShapeStar}

// Color is a cosmetic hex color.
type Color string

// Palette lists the colors a spawned fragment can take.
var Palette = []Color{"#4D96FF", "#5CE1E6", "#6C4AB6", "#8D72E1", "#FF6B6B", "#FFD56F"}

// Valid reports whether t is one of the known fragment types.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Position is an integer grid coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Adjacent reports whether p and o share an edge (4-connectivity, no diagonals).
func (p Position) Adjacent(o Position) bool {
	dx := abs(p.X - o.X)
	dy := abs(p.Y - o.Y)
	return (dx == 1 && dy == 0) || (dx == 0 && dy == 1)
}

// Board is a coordinate-space bound. It owns no fragment references.
type Board struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether p lies inside the board.
func (b Board) Contains(p Position) bool {
	return p.X >= 0 && p.X < b.Width && p.Y >= 0 && p.Y < b.Height
}

// Cells returns the number of cells on the board.
func (b Board) Cells() int {
	return b.Width * b.Height
}

// Fragment is a placed, typed, rotatable piece on the board.
// Once Solved is true its position and rotation are locked.
type Fragment struct {
	ID       int      `json:"id"`
	Position Position `json:"position"`
	Rotation Rotation `json:"rotation"`
	Type     Type     `json:"type"`
	Shape    Shape    `json:"shape"`
	Color    Color    `json:"color"`
	Solved   bool     `json:"solved"`
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
