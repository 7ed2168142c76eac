package game

// StateSize is the length of the observation vector. It is constant for
// every grid size and every point of an episode.
const StateSize = 24

// neighborhood lists the 8 cells around the head, clockwise from the
// upper-left. The danger flags keep this exact order.
var neighborhood = [8]Point{
	{-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0},
}

// cardinals in the free-run scan order: up, right, down, left.
var cardinals = [4]Point{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// State encodes the current game as a fixed-length observation vector:
//
//	 4  one-hot current direction
//	 8  danger flag per neighboring cell (wall or body)
//	 5  signed unit step toward food (x, y), normalized distance (x, y),
//	    normalized Manhattan distance
//	 3  normalized snake length, signed unit direction toward tail (x, y)
//	 4  normalized free run per cardinal direction until blocked
//
// It is a pure function of the snake, direction, food and grid, so it can be
// recomputed identically at any time.
func (g *Game) State() []float64 {
	head := g.snake[0]
	state := make([]float64, 0, StateSize)

	// Direction one-hot.
	for d := Up; d <= Left; d++ {
		state = append(state, boolFeature(g.dir == d))
	}

	// Danger ring.
	for _, off := range neighborhood {
		p := Point{X: head.X + off.X, Y: head.Y + off.Y}
		state = append(state, boolFeature(g.outOfBounds(p) || g.isSnakeAt(p)))
	}

	// Food direction and distances.
	state = append(state,
		sign(g.food.X-head.X),
		sign(g.food.Y-head.Y),
		float64(abs(g.food.X-head.X))/float64(g.grid.Width),
		float64(abs(g.food.Y-head.Y))/float64(g.grid.Height),
		float64(manhattan(head, g.food))/float64(g.grid.Width+g.grid.Height),
	)

	// Snake length and direction toward the tail. A length-1 snake has no
	// meaningful tail direction.
	state = append(state, float64(len(g.snake))/float64(g.grid.Width*g.grid.Height))
	if len(g.snake) > 1 {
		tail := g.snake[len(g.snake)-1]
		state = append(state, sign(tail.X-head.X), sign(tail.Y-head.Y))
	} else {
		state = append(state, 0, 0)
	}

	// Free run per cardinal, capped at the larger grid dimension.
	maxRun := g.grid.Width
	if g.grid.Height > maxRun {
		maxRun = g.grid.Height
	}
	for _, dir := range cardinals {
		count := 0
		p := head
		for i := 0; i < maxRun; i++ {
			p = Point{X: p.X + dir.X, Y: p.Y + dir.Y}
			if g.outOfBounds(p) || g.isSnakeAt(p) {
				break
			}
			count++
		}
		state = append(state, float64(count)/float64(maxRun))
	}

	return state
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func sign(x int) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
