package tui

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

// ShimmerConfig controls the highlight sweep drawn over the selected subtask name
type ShimmerConfig struct {
	Enabled        bool
	SpeedMs        int     // tick interval
	WidthRatio     float64 // width of the highlight relative to the text
	CycleMs        int     // time for one sweep
	PauseBetweenMs int
}

// DefaultShimmerConfig returns the sweep used by the report viewer.
// NO_COLOR or WORKTRACK_REDUCE_MOTION turn it off.
func DefaultShimmerConfig() ShimmerConfig {
	_, noColor := os.LookupEnv("NO_COLOR")
	_, reduce := os.LookupEnv("WORKTRACK_REDUCE_MOTION")
	return ShimmerConfig{
		Enabled:        !noColor && !reduce,
		SpeedMs:        100,
		WidthRatio:     0.25,
		CycleMs:        1800,
		PauseBetweenMs: 500,
	}
}

// Shimmer holds the position of the sweep. It is advanced by shimmerTickMsg.
type Shimmer struct {
	config    ShimmerConfig
	center    float64
	paused    bool
	pausedAt  time.Time
	active    bool
	trueColor bool
}

type shimmerTickMsg struct{}

// NewShimmer creates a sweep in its starting position
func NewShimmer(config ShimmerConfig) *Shimmer {
	return &Shimmer{
		config:    config,
		active:    config.Enabled,
		trueColor: os.Getenv("COLORTERM") == "truecolor",
	}
}

// Advance moves the sweep one tick across a text of visibleLen glyphs
func (s *Shimmer) Advance(visibleLen int, now time.Time) {
	if !s.active || visibleLen <= 0 {
		return
	}
	if s.paused {
		if now.Sub(s.pausedAt) >= time.Duration(s.config.PauseBetweenMs)*time.Millisecond {
			s.paused = false
			s.center = -float64(visibleLen) * s.config.WidthRatio
		}
		return
	}

	ticksPerCycle := float64(s.config.CycleMs) / float64(s.config.SpeedMs)
	distance := float64(visibleLen) * (1 + 2*s.config.WidthRatio)
	s.center += distance / ticksPerCycle

	end := float64(visibleLen) * (1 + s.config.WidthRatio)
	if s.center >= end {
		s.center = end
		s.paused = true
		s.pausedAt = now
	}
}

// Reset restarts the sweep, used when the selection changes
func (s *Shimmer) Reset() {
	s.center = 0
	s.paused = false
}

// SetActive pauses or resumes the sweep
func (s *Shimmer) SetActive(active bool) {
	s.active = active && s.config.Enabled
}

// Active reports whether the sweep is currently animating
func (s *Shimmer) Active() bool { return s.active }

// Interval is the tick interval for tea.Tick
func (s *Shimmer) Interval() time.Duration {
	return time.Duration(s.config.SpeedMs) * time.Millisecond
}

// Render draws text with the sweep applied, truncated to maxWidth runes
func (s *Shimmer) Render(text string, maxWidth int) string {
	text = truncate(text, maxWidth)
	if text == "" {
		return ""
	}
	if !s.active {
		return fmt.Sprintf("\033[38;2;167;139;250m%s\033[0m", text)
	}
	if !s.trueColor {
		return s.renderFallback(text)
	}
	return s.renderTrueColor(text)
}

func (s *Shimmer) renderTrueColor(text string) string {
	runes := []rune(text)
	// base #B1B8C7, highlight #EAE6FF
	baseR, baseG, baseB := 177.0, 184.0, 199.0
	hiR, hiG, hiB := 234.0, 230.0, 255.0

	sigma := math.Max(1, s.config.WidthRatio*float64(len(runes))/2)
	var b strings.Builder
	for i, r := range runes {
		dx := float64(i) - s.center
		w := math.Exp(-(dx * dx) / (2 * sigma * sigma))
		fmt.Fprintf(&b, "\033[38;2;%d;%d;%dm%c",
			int(baseR*(1-w)+hiR*w), int(baseG*(1-w)+hiG*w), int(baseB*(1-w)+hiB*w), r)
	}
	b.WriteString("\033[0m")
	return b.String()
}

func (s *Shimmer) renderFallback(text string) string {
	runes := []rune(text)
	width := max(1, int(s.config.WidthRatio*float64(len(runes))))
	start := int(s.center) - width/2

	var b strings.Builder
	for i, r := range runes {
		if i >= start && i < start+width {
			fmt.Fprintf(&b, "\033[38;5;147m%c", r)
		} else {
			fmt.Fprintf(&b, "\033[38;5;250m%c", r)
		}
	}
	b.WriteString("\033[0m")
	return b.String()
}

// truncate shortens s to at most width runes, ending with "..." when cut
func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
