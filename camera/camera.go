// Package camera provides a 2D camera system for viewport control.
package camera

// Camera controls the viewport into the simulation world. The world is a
// bounded rectangle; pan clamps so the view never leaves it.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// World dimensions
	WorldW, WorldH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the world with 1:1 zoom.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	// At zoom Z the visible world area is (viewportW/Z, viewportH/Z); the
	// minimum zoom keeps that inside the world on both axes.
	minZoom := viewportW / worldW
	if z := viewportH / worldH; z > minZoom {
		minZoom = z
	}

	return &Camera{
		X:         worldW / 2,
		Y:         worldH / 2,
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		MinZoom:   minZoom,
		MaxZoom:   8.0,
	}
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with given radius could be
// visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Pan moves the camera by the given world-space delta, clamped to keep the
// view inside the world.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx
	c.Y += dy
	c.clamp()
}

// ZoomBy multiplies the zoom level, clamped to [MinZoom, MaxZoom].
func (c *Camera) ZoomBy(factor float32) {
	c.Zoom *= factor
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	if c.Zoom > c.MaxZoom {
		c.Zoom = c.MaxZoom
	}
	c.clamp()
}

// Resize updates the viewport dimensions after a window resize.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH

	minZoom := viewportW / c.WorldW
	if z := viewportH / c.WorldH; z > minZoom {
		minZoom = z
	}
	c.MinZoom = minZoom
	if c.Zoom < minZoom {
		c.Zoom = minZoom
	}
	c.clamp()
}

// Reset recenters the camera and restores 1:1 zoom.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = 1.0
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
}

// clamp keeps the visible area inside the world bounds.
func (c *Camera) clamp() {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	c.X = clampAxis(c.X, halfW, c.WorldW)
	c.Y = clampAxis(c.Y, halfH, c.WorldH)
}

// clampAxis clamps a camera center so [center-half, center+half] stays
// within [0, world]; if the view is wider than the world it centers instead.
func clampAxis(center, half, world float32) float32 {
	if 2*half >= world {
		return world / 2
	}
	if center < half {
		return half
	}
	if center > world-half {
		return world - half
	}
	return center
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
