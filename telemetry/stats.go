// Package telemetry collects per-frame simulation statistics, aggregates
// them over fixed windows, and optionally writes them to CSV.
package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// FrameStats holds the measurements taken once per rendered frame, after the
// frame's substeps have completed.
type FrameStats struct {
	Frame     int32   `csv:"frame"`
	SimTime   float64 `csv:"sim_time"`  // simulated seconds elapsed
	Particles int     `csv:"particles"` // fixed for a run, recorded so the file stands alone

	GridMass      float64 `csv:"grid_mass"`      // total grid mass after the last P2G
	MaxSpeed      float64 `csv:"max_speed"`      // largest particle speed
	KineticEnergy float64 `csv:"kinetic_energy"` // 0.5 * m * sum |v|^2

	// Stage wall times from the frame's first substep, microseconds.
	ClearMicros float64 `csv:"clear_us"`
	P2GMicros   float64 `csv:"p2g_us"`
	GridMicros  float64 `csv:"grid_us"`
	G2PMicros   float64 `csv:"g2p_us"`
	FrameMicros float64 `csv:"frame_us"` // all substeps of the frame
}

// WindowStats aggregates FrameStats over one telemetry window.
type WindowStats struct {
	WindowEndFrame int32   `csv:"window_end"`
	SimTime        float64 `csv:"sim_time"`
	Frames         int     `csv:"frames"`

	FrameMicrosMean float64 `csv:"frame_us_mean"`
	FrameMicrosStd  float64 `csv:"frame_us_std"`
	P2GMicrosMean   float64 `csv:"p2g_us_mean"`
	G2PMicrosMean   float64 `csv:"g2p_us_mean"`

	GridMassMean      float64 `csv:"grid_mass_mean"`
	MaxSpeedMax       float64 `csv:"max_speed_max"`
	KineticEnergyMean float64 `csv:"kinetic_energy_mean"`
	KineticEnergyStd  float64 `csv:"kinetic_energy_std"`
}

// aggregate reduces a full window of frames into WindowStats.
func aggregate(frames []FrameStats) WindowStats {
	n := len(frames)
	ws := WindowStats{Frames: n}
	if n == 0 {
		return ws
	}
	ws.WindowEndFrame = frames[n-1].Frame
	ws.SimTime = frames[n-1].SimTime

	frameUs := make([]float64, n)
	p2gUs := make([]float64, n)
	g2pUs := make([]float64, n)
	mass := make([]float64, n)
	kinetic := make([]float64, n)
	for i, f := range frames {
		frameUs[i] = f.FrameMicros
		p2gUs[i] = f.P2GMicros
		g2pUs[i] = f.G2PMicros
		mass[i] = f.GridMass
		kinetic[i] = f.KineticEnergy
		if f.MaxSpeed > ws.MaxSpeedMax {
			ws.MaxSpeedMax = f.MaxSpeed
		}
	}

	ws.FrameMicrosMean = stat.Mean(frameUs, nil)
	ws.FrameMicrosStd = stat.StdDev(frameUs, nil)
	ws.P2GMicrosMean = stat.Mean(p2gUs, nil)
	ws.G2PMicrosMean = stat.Mean(g2pUs, nil)
	ws.GridMassMean = stat.Mean(mass, nil)
	ws.KineticEnergyMean = stat.Mean(kinetic, nil)
	ws.KineticEnergyStd = stat.StdDev(kinetic, nil)
	return ws
}

// Log emits the window through slog.
func (ws WindowStats) Log() {
	slog.Info("telemetry window",
		"window_end", ws.WindowEndFrame,
		"sim_time", ws.SimTime,
		"frame_us_mean", ws.FrameMicrosMean,
		"p2g_us_mean", ws.P2GMicrosMean,
		"g2p_us_mean", ws.G2PMicrosMean,
		"grid_mass_mean", ws.GridMassMean,
		"max_speed_max", ws.MaxSpeedMax,
		"kinetic_energy_mean", ws.KineticEnergyMean,
	)
}
