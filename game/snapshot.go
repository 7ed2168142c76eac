package game

// Snapshot is a read-only view of the game for the presentation layer. The
// renderer consumes snapshots and never touches the game directly, except
// through TogglePause and Reset.
type Snapshot struct {
	Grid             Grid
	Snake            []Point // head first
	Dir              Direction
	Food             Point
	Score            int
	StepsWithoutFood int
	HungerLimit      int
	TotalSteps       int
	Over             bool
	Paused           bool
}

// Snapshot copies the current state out of the game.
func (g *Game) Snapshot() Snapshot {
	body := make([]Point, len(g.snake))
	copy(body, g.snake)

	return Snapshot{
		Grid:             g.grid,
		Snake:            body,
		Dir:              g.dir,
		Food:             g.food,
		Score:            g.score,
		StepsWithoutFood: g.stepsWithoutFood,
		HungerLimit:      g.hungerLimit,
		TotalSteps:       g.totalSteps,
		Over:             g.over,
		Paused:           g.paused,
	}
}
