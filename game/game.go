package game

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
)

// Reward shaping constants. The individual terms are summed as-is, with no
// clamping, so several of them can fire on the same step.
const (
	rewardCollision   = -100.0
	rewardTimeout     = -50.0
	rewardSurvive     = 1.0
	rewardCloser      = 5.0
	rewardFarther     = -3.0
	rewardEdge        = -2.0
	rewardStarving    = -5.0
	rewardFoodBase    = 100.0
	foodLengthExp     = 1.5
	starvingThreshold = 0.7

	// Bounded random draws when relocating food. Running out means the
	// board is essentially full and the episode ends.
	foodPlaceAttempts = 100
)

// Game è la simulazione deterministica della griglia: possiede lo stato di
// serpente e cibo e avanza di un tick per azione.
type Game struct {
	grid Grid
	rng  *rand.Rand

	snake    []Point // head at index 0
	occupied map[Point]struct{}
	dir      Direction
	food     Point

	score            int
	stepsWithoutFood int
	hungerLimit      int
	totalSteps       int
	over             bool
	paused           bool
}

// NewGame creates a game on a width x height grid seeded from the clock.
func NewGame(width, height int) *Game {
	return NewGameSeeded(width, height, uint64(time.Now().UnixNano()))
}

// NewGameSeeded creates a game with an explicit RNG seed so that runs can be
// reproduced. Reset must be called before the first Step.
func NewGameSeeded(width, height int, seed uint64) *Game {
	return &Game{
		grid:        Grid{Width: width, Height: height},
		rng:         rand.New(rand.NewSource(seed)),
		hungerLimit: 2 * width * height,
	}
}

// Reset places a length-1 snake at a random interior cell with a random
// direction, relocates the food and clears all counters. It returns the
// initial observation.
func (g *Game) Reset() []float64 {
	startX := g.rng.Intn(g.grid.Width-4) + 2
	startY := g.rng.Intn(g.grid.Height-4) + 2

	g.snake = []Point{{X: startX, Y: startY}}
	g.occupied = map[Point]struct{}{g.snake[0]: {}}
	g.dir = Direction(g.rng.Intn(4))
	g.score = 0
	g.stepsWithoutFood = 0
	g.totalSteps = 0
	g.over = false
	g.paused = false

	g.placeFood()

	return g.State()
}

// Step advances the simulation by one tick. The action is interpreted
// relative to the current direction. It returns the next observation, the
// shaped reward and whether the episode terminated.
//
// While paused, Step is a no-op that returns the current observation with
// zero reward.
func (g *Game) Step(a Action) ([]float64, float64, bool) {
	if g.paused {
		return g.State(), 0, false
	}
	if g.over {
		return g.State(), 0, true
	}

	g.dir = g.dir.Turn(a)

	head := g.snake[0]
	prevFoodDist := manhattan(head, g.food)

	vec := g.dir.Vector()
	newHead := Point{X: head.X + vec.X, Y: head.Y + vec.Y}

	g.stepsWithoutFood++
	g.totalSteps++

	collision := g.outOfBounds(newHead) || g.isSnakeAt(newHead)
	timeout := g.stepsWithoutFood >= g.hungerLimit

	if collision || timeout {
		g.over = true
		if collision {
			return g.State(), rewardCollision, true
		}
		return g.State(), rewardTimeout, true
	}

	// Accept the move.
	g.snake = append([]Point{newHead}, g.snake...)
	g.occupied[newHead] = struct{}{}

	reward := g.shapedReward(prevFoodDist)

	if newHead == g.food {
		g.score++
		g.stepsWithoutFood = 0
		reward += foodReward(len(g.snake))
		g.placeFood()
	} else {
		tail := g.snake[len(g.snake)-1]
		g.snake = g.snake[:len(g.snake)-1]
		delete(g.occupied, tail)
	}

	return g.State(), reward, g.over
}

// shapedReward is the non-terminal reward for a just-accepted move. It is
// computed after the new head is in place but before any tail drop.
func (g *Game) shapedReward(prevFoodDist int) float64 {
	head := g.snake[0]
	foodDist := manhattan(head, g.food)

	reward := rewardSurvive

	if foodDist < prevFoodDist {
		reward += rewardCloser
	} else if foodDist > prevFoodDist {
		reward += rewardFarther
	}

	if head.X == 0 || head.X == g.grid.Width-1 || head.Y == 0 || head.Y == g.grid.Height-1 {
		reward += rewardEdge
	}

	if float64(g.stepsWithoutFood) > float64(g.hungerLimit)*starvingThreshold {
		reward += rewardStarving
	}

	return reward
}

// foodReward grows with the snake so that late food is worth more than the
// accumulated step penalties of reaching it.
func foodReward(length int) float64 {
	return rewardFoodBase + math.Pow(float64(length), foodLengthExp)
}

// placeFood relocates the food onto a random free cell, drawing at most
// foodPlaceAttempts times. Exhaustion marks the game as over.
func (g *Game) placeFood() {
	for attempt := 0; attempt < foodPlaceAttempts; attempt++ {
		p := Point{
			X: g.rng.Intn(g.grid.Width),
			Y: g.rng.Intn(g.grid.Height),
		}
		if !g.isSnakeAt(p) {
			g.food = p
			return
		}
	}
	g.over = true
}

func (g *Game) outOfBounds(p Point) bool {
	return p.X < 0 || p.X >= g.grid.Width || p.Y < 0 || p.Y >= g.grid.Height
}

// isSnakeAt reports whether the given cell is occupied by the snake body.
// The occupancy set mirrors the ordered body slice exactly.
func (g *Game) isSnakeAt(p Point) bool {
	_, ok := g.occupied[p]
	return ok
}

// TogglePause flips the paused flag. This and Reset are the only two
// commands the presentation layer may issue.
func (g *Game) TogglePause() {
	g.paused = !g.paused
}

// Score returns the number of food items eaten this episode.
func (g *Game) Score() int { return g.score }

// Over reports whether the episode has terminated.
func (g *Game) Over() bool { return g.over }

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool { return g.paused }

// TotalSteps returns the number of ticks taken this episode.
func (g *Game) TotalSteps() int { return g.totalSteps }

// Bounds returns the grid dimensions.
func (g *Game) Bounds() Grid { return g.grid }
