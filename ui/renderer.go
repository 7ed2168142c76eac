// Package ui renders the game with raylib. The renderer consumes read-only
// snapshots; the only environment mutations it can trigger are pause
// toggles and resets, driven by keyboard input.
package ui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"snake-dqn/game"
	"snake-dqn/trainer"
)

const (
	borderPadding = 10
	statsDivisor  = 5 // stats panel takes 1/5 of the window width
)

// Renderer draws snapshots into a raylib window.
type Renderer struct {
	cellSize        int32
	screenWidth     int32
	screenHeight    int32
	statsPanel      int32
	gameWidth       int32
	totalGridWidth  int32
	totalGridHeight int32
	offsetX         int32
	offsetY         int32

	showHelp  bool
	foodPulse float64
	lastScore int
	particles []particle
	popups    []scorePopup
}

// NewRenderer opens the window. Callers own the window lifetime and must
// call Close when done.
func NewRenderer(title string) *Renderer {
	rl.InitWindow(1280, 800, title)
	rl.SetWindowState(rl.FlagWindowResizable)
	rl.SetTargetFPS(60)

	r := &Renderer{}
	r.updateDimensions()
	return r
}

// Close tears the window down.
func (r *Renderer) Close() {
	rl.CloseWindow()
}

// Closed reports whether the user asked to quit.
func (r *Renderer) Closed() bool {
	return rl.WindowShouldClose() || rl.IsKeyPressed(rl.KeyQ)
}

// HandleInput translates keys into the two permitted environment commands
// and the renderer-local help toggle.
func (r *Renderer) HandleInput(g *game.Game) {
	if rl.IsKeyPressed(rl.KeySpace) {
		g.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.Reset()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		r.showHelp = !r.showHelp
	}
}

func (r *Renderer) updateDimensions() {
	r.screenWidth = int32(rl.GetScreenWidth())
	r.screenHeight = int32(rl.GetScreenHeight())
	r.statsPanel = r.screenWidth / statsDivisor
	r.gameWidth = r.screenWidth - r.statsPanel
}

// Draw renders one frame from a snapshot.
func (r *Renderer) Draw(snap game.Snapshot, hud trainer.HUD) {
	r.updateDimensions()
	r.foodPulse = math.Mod(r.foodPulse+0.2, 2*math.Pi)

	if snap.Score > r.lastScore && len(snap.Snake) > 0 {
		r.spawnFoodEffects(snap.Snake[0], snap.Score)
	}
	if snap.Score < r.lastScore {
		// Episode rolled over.
		r.particles = r.particles[:0]
		r.popups = r.popups[:0]
	}
	r.lastScore = snap.Score

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 15, G: 15, B: 25, A: 255})

	r.layoutGrid(snap.Grid)
	r.drawGrid(snap.Grid)
	r.drawFood(snap.Food)
	r.drawSnake(snap)
	r.updateAndDrawParticles()
	r.updateAndDrawPopups()
	r.drawStatsPanel(snap, hud)

	switch {
	case r.showHelp:
		r.drawHelpOverlay()
	case snap.Paused:
		r.drawCenteredOverlay("PAUSED", "Press SPACE to resume")
	case snap.Over:
		r.drawCenteredOverlay(
			fmt.Sprintf("GAME OVER  score %d", snap.Score),
			"Press R for a new episode")
	}

	rl.EndDrawing()
}

func (r *Renderer) layoutGrid(grid game.Grid) {
	availableWidth := r.gameWidth - borderPadding*2
	availableHeight := r.screenHeight - borderPadding*2

	cellW := availableWidth / int32(grid.Width)
	cellH := availableHeight / int32(grid.Height)
	r.cellSize = min32(cellW, cellH)

	r.totalGridWidth = r.cellSize * int32(grid.Width)
	r.totalGridHeight = r.cellSize * int32(grid.Height)
	r.offsetX = borderPadding + (r.gameWidth-borderPadding*2-r.totalGridWidth)/2
	r.offsetY = (r.screenHeight - r.totalGridHeight) / 2
}

func (r *Renderer) drawGrid(grid game.Grid) {
	rl.DrawRectangle(r.offsetX-1, r.offsetY-1, r.totalGridWidth+2, r.totalGridHeight+2, rl.DarkGray)
	for x := 0; x < grid.Width; x++ {
		for y := 0; y < grid.Height; y++ {
			rl.DrawRectangleLines(
				r.cellX(x), r.cellY(y),
				r.cellSize, r.cellSize,
				rl.Color{R: 30, G: 30, B: 40, A: 255})
		}
	}
}

func (r *Renderer) drawFood(food game.Point) {
	pulse := float32(0.75 + 0.25*math.Sin(r.foodPulse))
	radius := float32(r.cellSize) / 2 * pulse
	cx := float32(r.cellX(food.X)) + float32(r.cellSize)/2
	cy := float32(r.cellY(food.Y)) + float32(r.cellSize)/2
	rl.DrawCircle(int32(cx), int32(cy), radius, rl.Color{R: 255, G: 80, B: 80, A: 255})
}

func (r *Renderer) drawSnake(snap game.Snapshot) {
	bodyColor := rl.Color{R: 50, G: 255, B: 100, A: 255}
	for i := len(snap.Snake) - 1; i >= 0; i-- {
		p := snap.Snake[i]
		color := bodyColor
		if i == 0 {
			color = rl.Color{R: 120, G: 255, B: 160, A: 255}
		} else if i == len(snap.Snake)-1 {
			color = rl.Color{R: 35, G: 180, B: 70, A: 255}
		}
		rl.DrawRectangle(r.cellX(p.X), r.cellY(p.Y), r.cellSize, r.cellSize, color)
	}
	if len(snap.Snake) > 0 {
		r.drawHeading(snap.Snake[0], snap.Dir)
	}
}

// drawHeading marks the head with a triangle pointing along the direction
// of travel.
func (r *Renderer) drawHeading(head game.Point, dir game.Direction) {
	headX := r.cellX(head.X)
	headY := r.cellY(head.Y)
	half := r.cellSize / 2

	var a, b, c rl.Vector2
	switch dir {
	case game.Right:
		a = rl.Vector2{X: float32(headX + r.cellSize), Y: float32(headY + half)}
		b = rl.Vector2{X: float32(headX + half), Y: float32(headY)}
		c = rl.Vector2{X: float32(headX + half), Y: float32(headY + r.cellSize)}
	case game.Left:
		a = rl.Vector2{X: float32(headX), Y: float32(headY + half)}
		b = rl.Vector2{X: float32(headX + half), Y: float32(headY + r.cellSize)}
		c = rl.Vector2{X: float32(headX + half), Y: float32(headY)}
	case game.Down:
		a = rl.Vector2{X: float32(headX + half), Y: float32(headY + r.cellSize)}
		b = rl.Vector2{X: float32(headX + r.cellSize), Y: float32(headY + half)}
		c = rl.Vector2{X: float32(headX), Y: float32(headY + half)}
	default: // Up
		a = rl.Vector2{X: float32(headX + half), Y: float32(headY)}
		b = rl.Vector2{X: float32(headX), Y: float32(headY + half)}
		c = rl.Vector2{X: float32(headX + r.cellSize), Y: float32(headY + half)}
	}
	rl.DrawTriangle(a, b, c, rl.Yellow)
}

func (r *Renderer) drawStatsPanel(snap game.Snapshot, hud trainer.HUD) {
	panelX := r.gameWidth
	rl.DrawRectangle(panelX, 0, r.statsPanel, r.screenHeight, rl.Color{R: 22, G: 22, B: 32, A: 255})

	fontSize := min32(r.screenHeight/40, r.statsPanel/12)
	lineHeight := fontSize + fontSize/2
	x := panelX + 12
	y := int32(20)

	write := func(text string, color rl.Color) {
		rl.DrawText(text, x, y, fontSize, color)
		y += lineHeight
	}

	write(fmt.Sprintf("mode    %s", hud.Mode), rl.White)
	write(fmt.Sprintf("episode %d/%d", hud.Episode, hud.Episodes), rl.White)
	write(fmt.Sprintf("score   %d", snap.Score), rl.Green)
	write(fmt.Sprintf("length  %d", len(snap.Snake)), rl.Green)
	write(fmt.Sprintf("epsilon %.3f", hud.Epsilon), rl.SkyBlue)
	if hud.Mode == "train" {
		write(fmt.Sprintf("best avg %.2f", hud.BestAvg), rl.Gold)
	}
	y += lineHeight

	// Hunger bar: fills as the snake approaches the starvation timeout.
	write("hunger", rl.Gray)
	barWidth := r.statsPanel - 24
	fill := int32(float64(barWidth) * float64(snap.StepsWithoutFood) / float64(snap.HungerLimit))
	rl.DrawRectangleLines(x, y, barWidth, fontSize, rl.Gray)
	rl.DrawRectangle(x, y, fill, fontSize, rl.Orange)
	y += lineHeight * 2

	write("SPACE pause  R reset", rl.Gray)
	write("H help  Q quit", rl.Gray)
}

func (r *Renderer) drawCenteredOverlay(title, subtitle string) {
	rl.DrawRectangle(0, 0, r.gameWidth, r.screenHeight, rl.Color{R: 0, G: 0, B: 0, A: 160})

	titleSize := int32(40)
	subSize := int32(20)
	titleWidth := rl.MeasureText(title, titleSize)
	subWidth := rl.MeasureText(subtitle, subSize)

	rl.DrawText(title, (r.gameWidth-titleWidth)/2, r.screenHeight/2-40, titleSize, rl.White)
	rl.DrawText(subtitle, (r.gameWidth-subWidth)/2, r.screenHeight/2+10, subSize, rl.LightGray)
}

func (r *Renderer) drawHelpOverlay() {
	rl.DrawRectangle(0, 0, r.gameWidth, r.screenHeight, rl.Color{R: 0, G: 0, B: 0, A: 200})

	lines := []string{
		"SNAKE - DEEP REINFORCEMENT LEARNING",
		"",
		"The agent learns with a Double DQN:",
		"it sees danger, food direction and free",
		"space, and picks straight / right / left.",
		"",
		"SPACE  pause or resume",
		"R      reset the episode",
		"H      toggle this help",
		"Q/ESC  quit",
	}

	y := r.screenHeight/2 - int32(len(lines))*14
	for i, line := range lines {
		size := int32(20)
		color := rl.LightGray
		if i == 0 {
			size = 28
			color = rl.White
		}
		width := rl.MeasureText(line, size)
		rl.DrawText(line, (r.gameWidth-width)/2, y, size, color)
		y += size + 8
	}
}

func (r *Renderer) cellX(x int) int32 {
	return r.offsetX + int32(x)*r.cellSize
}

func (r *Renderer) cellY(y int) int32 {
	return r.offsetY + int32(y)*r.cellSize
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
