package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slurry/mpm"
	"github.com/pthm-cable/slurry/ui"
)

// Draw renders one frame: particles, optional grid overlay, HUD, panel.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	if g.debugMode {
		g.drawGridOverlay()
	}
	g.drawParticles()
	g.drawHUD()
	g.applyPanel()

	rl.EndDrawing()
}

// simToWorld maps simulation space [0,1]^2 to world pixels, flipping y so
// gravity pulls down on screen.
func (g *Game) simToWorld(p mpm.Vec2) (float32, float32) {
	return p.X * g.worldScale, (1 - p.Y) * g.worldScale
}

func (g *Game) drawParticles() {
	pts := g.solver.Particles()
	radius := g.particleRadius * g.camera.Zoom
	for i := 0; i < pts.Len(); i++ {
		wx, wy := g.simToWorld(pts.Pos[i])
		if !g.camera.IsVisible(wx, wy, g.particleRadius) {
			continue
		}
		sx, sy := g.camera.WorldToScreen(wx, wy)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius, g.colors[pts.Mat[i]])
	}
}

// drawGridOverlay shades occupied grid nodes by mass. The grid still holds
// the last substep's state between frames, which is exactly what we want to
// look at when material misbehaves.
func (g *Game) drawGridOverlay() {
	grid := g.solver.Grid()
	n := grid.N
	cell := g.worldScale / float32(n)

	var maxMass float32
	for _, m := range grid.M {
		if m > maxMass {
			maxMass = m
		}
	}
	if maxMass == 0 {
		return
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m := grid.M[grid.Idx(i, j)]
			if m <= 0 {
				continue
			}
			wx := float32(i) * cell
			wy := (float32(n-1-j)) * cell
			sx, sy := g.camera.WorldToScreen(wx, wy)
			alpha := uint8(40 + 120*m/maxMass)
			rl.DrawRectangle(int32(sx), int32(sy),
				int32(cell*g.camera.Zoom)+1, int32(cell*g.camera.Zoom)+1,
				rl.Color{R: 40, G: 90, B: 110, A: alpha})
		}
	}
}

func (g *Game) drawHUD() {
	pts := g.solver.Particles()
	rl.DrawText(fmt.Sprintf("Frame: %d", g.frame), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Particles: %d  Substeps: %d", pts.Len(), g.substepsPerFrame*g.speed), 10, 35, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Speed: %dx  [</>]", g.speed), 10, 60, 20, rl.White)
	rl.DrawText(fmt.Sprintf("FPS: %d", rl.GetFPS()), 10, 85, 20, rl.White)

	if g.paused {
		rl.DrawText("PAUSED", 10, 110, 20, rl.Yellow)
	}
	if g.diverged {
		rl.DrawText("DIVERGED - press R to reset", 10, 135, 20, rl.Red)
	}
}

// applyPanel draws the control panel and applies whatever the user changed.
func (g *Game) applyPanel() {
	if g.panel == nil {
		return
	}
	legend := make([]ui.LegendEntry, 0, int(mpm.NumMaterials))
	for m := mpm.Material(0); m < mpm.NumMaterials; m++ {
		legend = append(legend, ui.LegendEntry{Name: m.String(), Color: g.colors[m]})
	}

	actions := g.panel.Draw(ui.State{
		Paused: g.paused,
		Speed:  g.speed,
		Radius: g.particleRadius,
		Legend: legend,
	})

	if actions.TogglePause {
		g.paused = !g.paused
	}
	if actions.Reset {
		g.reset()
	}
	g.speed = actions.Speed
	g.particleRadius = actions.Radius
}
