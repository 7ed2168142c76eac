package ui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"snake-dqn/game"
)

const (
	particlesPerFood = 12
	particleLife     = 30 // frames
	popupLife        = 45 // frames
)

// particle is a short-lived spark emitted when food is eaten.
type particle struct {
	x, y   float32
	vx, vy float32
	life   int
}

// scorePopup floats the points earned above the cell they were earned on.
type scorePopup struct {
	x, y float32
	text string
	life int
}

func (r *Renderer) spawnFoodEffects(head game.Point, score int) {
	cx := float32(r.cellX(head.X)) + float32(r.cellSize)/2
	cy := float32(r.cellY(head.Y)) + float32(r.cellSize)/2

	for i := 0; i < particlesPerFood; i++ {
		angle := 2 * math.Pi * float64(i) / particlesPerFood
		speed := float32(2 + score%3)
		r.particles = append(r.particles, particle{
			x:    cx,
			y:    cy,
			vx:   speed * float32(math.Cos(angle)),
			vy:   speed * float32(math.Sin(angle)),
			life: particleLife,
		})
	}

	r.popups = append(r.popups, scorePopup{
		x:    cx,
		y:    cy,
		text: fmt.Sprintf("+%d", score),
		life: popupLife,
	})
}

func (r *Renderer) updateAndDrawParticles() {
	alive := r.particles[:0]
	for _, p := range r.particles {
		p.x += p.vx
		p.y += p.vy
		p.vy += 0.15 // slight gravity
		p.life--
		if p.life <= 0 {
			continue
		}
		alpha := uint8(255 * p.life / particleLife)
		rl.DrawCircle(int32(p.x), int32(p.y), 3, rl.Color{R: 255, G: 200, B: 80, A: alpha})
		alive = append(alive, p)
	}
	r.particles = alive
}

func (r *Renderer) updateAndDrawPopups() {
	alive := r.popups[:0]
	for _, p := range r.popups {
		p.y -= 1
		p.life--
		if p.life <= 0 {
			continue
		}
		alpha := uint8(255 * p.life / popupLife)
		rl.DrawText(p.text, int32(p.x), int32(p.y), 18, rl.Color{R: 255, G: 255, B: 100, A: alpha})
		alive = append(alive, p)
	}
	r.popups = alive
}
