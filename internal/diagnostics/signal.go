// Package diagnostics provides CLI-only signal-strength visualization. It
// is never imported by the codec/decoder/analyzer/modem core; it exists to
// give a human watching `modemctl listen` a sense of capture level before
// and during a decode.
package diagnostics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// gradient runs from a dim blue (quiet) through green (nominal) to red
// (clipping), interpolated per meter cell by its fill level.
var gradient = []lipgloss.Color{
	lipgloss.Color("#1e3a5f"),
	lipgloss.Color("#2a9d8f"),
	lipgloss.Color("#e9c46a"),
	lipgloss.Color("#e76f51"),
}

const (
	liveGreen  = lipgloss.Color("#2a9d8f")
	liveYellow = lipgloss.Color("#e9c46a")
)

// SignalMeter tracks a decaying peak over a stream of sample chunks and
// renders a colored strength bar, the Go counterpart of the original
// source's SignalMonitor (src/audio/signal.rs).
type SignalMeter struct {
	width        int
	peak         float64
	samplesSeen  int
	decayEvery   int
	start        time.Time
	tickParity   bool
}

// NewSignalMeter creates a meter display cells wide, decaying its peak by
// 20% every decayEvery samples processed (the original decays once per
// second of audio; pass the sample rate for that behavior).
func NewSignalMeter(width, decayEvery int) *SignalMeter {
	return &SignalMeter{width: width, decayEvery: decayEvery, start: time.Now()}
}

// Header renders the static gradient legend printed once above the meter.
func (m *SignalMeter) Header() string {
	var b strings.Builder
	b.WriteString("Signal Strength: │")
	for i := 0; i < m.width; i++ {
		frac := float64(i) / float64(m.width)
		style := lipgloss.NewStyle().Foreground(interpolate(frac))
		b.WriteString(style.Render("█"))
	}
	b.WriteString("│")
	return b.String()
}

// Process folds a chunk of samples into the running peak and returns the
// rendered meter line for this chunk, or "" if the chunk is silent enough
// to skip redrawing.
func (m *SignalMeter) Process(samples []float32) string {
	m.samplesSeen += len(samples)

	var maxAbs float64
	for _, s := range samples {
		abs := math.Abs(float64(s))
		if abs > maxAbs {
			maxAbs = abs
		}
	}
	if maxAbs > m.peak {
		m.peak = maxAbs
	}

	if m.decayEvery > 0 && m.samplesSeen > m.decayEvery {
		m.peak *= 0.8
		m.samplesSeen = 0
		if m.peak < 0.001 {
			m.peak = 0
		}
	}

	if maxAbs <= 0.00001 {
		return ""
	}
	return m.render(maxAbs)
}

func (m *SignalMeter) render(level float64) string {
	m.tickParity = !m.tickParity
	dotColor := liveGreen
	if m.tickParity {
		dotColor = liveYellow
	}
	dot := lipgloss.NewStyle().Foreground(dotColor).Render("●")

	filled := int(math.Min(level*float64(m.width), float64(m.width)))
	var bar strings.Builder
	for i := 0; i < m.width; i++ {
		if i < filled {
			frac := float64(i) / float64(m.width)
			bar.WriteString(lipgloss.NewStyle().Foreground(interpolate(frac)).Render("█"))
		} else {
			bar.WriteString(" ")
		}
	}

	return fmt.Sprintf("%s %s │%s│ %s │ Peak: %s",
		formatElapsed(time.Since(m.start)), dot, bar.String(), formatLevel(level), formatLevel(m.peak))
}

// interpolate maps frac in [0,1] onto the gradient's piecewise color ramp.
func interpolate(frac float64) lipgloss.Color {
	if frac <= 0 {
		return gradient[0]
	}
	if frac >= 1 {
		return gradient[len(gradient)-1]
	}
	segments := len(gradient) - 1
	pos := frac * float64(segments)
	idx := int(pos)
	if idx >= segments {
		idx = segments - 1
	}
	return gradient[idx]
}

func formatLevel(v float64) string {
	return fmt.Sprintf("%5.3f", v)
}

func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
