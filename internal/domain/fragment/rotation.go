package fragment

// Rotation is a fragment orientation in degrees: one of 0, 90, 180 or 270.
type Rotation int

const (
	Rotation0   Rotation = 0
	Rotation90  Rotation = 90
	Rotation180 Rotation = 180
	Rotation270 Rotation = 270
)

// QuarterTurn is the rotation step in degrees.
const QuarterTurn = 90

// Rotations lists every valid orientation.
var Rotations = []Rotation{Rotation0, Rotation90, Rotation180, Rotation270}

// Valid reports whether r is one of the four quarter-turn orientations.
func (r Rotation) Valid() bool {
	return r >= 0 && r < 360 && r%QuarterTurn == 0
}

// Add returns r turned by delta degrees, normalized to [0, 360).
func (r Rotation) Add(delta int) Rotation {
	v := (int(r) + delta) % 360
	if v < 0 {
		v += 360
	}
	return Rotation(v)
}
