package game

// Point is a grid cell coordinate.
type Point struct {
	X, Y int
}

// Grid holds the playfield dimensions.
type Grid struct {
	Width  int
	Height int
}

// Direction rappresenta una direzione cardinale.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Action is a turn relative to the current direction. A reversal cannot be
// expressed, so the snake can never fold back onto its own neck.
type Action int

const (
	Straight Action = iota
	TurnRight
	TurnLeft
)

// NumActions is the size of the action space.
const NumActions = 3

// turnTable maps (direction, action) to the resulting direction.
var turnTable = [4][NumActions]Direction{
	Up:    {Straight: Up, TurnRight: Right, TurnLeft: Left},
	Right: {Straight: Right, TurnRight: Down, TurnLeft: Up},
	Down:  {Straight: Down, TurnRight: Left, TurnLeft: Right},
	Left:  {Straight: Left, TurnRight: Up, TurnLeft: Down},
}

// Turn applies a relative action and returns the new direction.
func (d Direction) Turn(a Action) Direction {
	if a < 0 || a >= NumActions {
		panic("game: invalid action")
	}
	return turnTable[d][a]
}

// Vector converte una Direction in un vettore di spostamento.
func (d Direction) Vector() Point {
	switch d {
	case Up:
		return Point{X: 0, Y: -1}
	case Right:
		return Point{X: 1, Y: 0}
	case Down:
		return Point{X: 0, Y: 1}
	case Left:
		return Point{X: -1, Y: 0}
	default:
		return Point{X: 0, Y: 0}
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "none"
	}
}

// abs restituisce il valore assoluto di un intero.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// manhattan is the food-distance metric used by the reward shaping.
func manhattan(p1, p2 Point) int {
	return abs(p1.X-p2.X) + abs(p1.Y-p2.Y)
}
