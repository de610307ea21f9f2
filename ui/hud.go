// Package ui renders the raygui control panel for the viewer.
package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// LegendEntry maps a material name to its render color.
type LegendEntry struct {
	Name  string
	Color rl.Color
}

// State is what the panel shows; the viewer passes it in every frame.
type State struct {
	Paused bool
	Speed  int
	Radius float32
	Legend []LegendEntry
}

// Actions carries the user's changes back to the viewer.
type Actions struct {
	TogglePause bool
	Reset       bool
	Speed       int
	Radius      float32
}

// Panel is the right-side control panel.
type Panel struct {
	x, y    float32
	width   float32
	visible bool
}

// NewPanel creates the panel in its default position.
func NewPanel() *Panel {
	return &Panel{x: 10, y: 170, width: 190, visible: true}
}

// Toggle switches panel visibility.
func (p *Panel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Draw renders the panel and returns the user's actions. With the panel
// hidden the state passes through unchanged.
func (p *Panel) Draw(s State) Actions {
	actions := Actions{Speed: s.Speed, Radius: s.Radius}
	if !p.visible {
		return actions
	}

	x, y := p.x, p.y
	rl.DrawRectangle(int32(x)-5, int32(y)-5, int32(p.width)+10, 225, rl.Color{R: 20, G: 20, B: 25, A: 200})

	pauseLabel := "Pause"
	if s.Paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 88, Height: 26}, pauseLabel) {
		actions.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + 97, Y: y, Width: 88, Height: 26}, "Reset") {
		actions.Reset = true
	}
	y += 36

	rl.DrawText("Speed", int32(x), int32(y), 14, rl.Gray)
	y += 18
	newSpeed := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: p.width - 40, Height: 18},
		"1", "10",
		float32(s.Speed), 1, 10,
	)
	rl.DrawText(fmt.Sprintf("%dx", s.Speed), int32(x+p.width-32), int32(y), 16, rl.White)
	actions.Speed = int(newSpeed + 0.5)
	y += 28

	rl.DrawText("Particle radius", int32(x), int32(y), 14, rl.Gray)
	y += 18
	actions.Radius = gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: p.width - 40, Height: 18},
		"0.5", "4",
		s.Radius, 0.5, 4,
	)
	rl.DrawText(fmt.Sprintf("%.1f", s.Radius), int32(x+p.width-32), int32(y), 16, rl.White)
	y += 30

	for _, entry := range s.Legend {
		rl.DrawRectangle(int32(x), int32(y), 14, 14, entry.Color)
		rl.DrawText(entry.Name, int32(x)+20, int32(y), 14, rl.RayWhite)
		y += 20
	}

	return actions
}
