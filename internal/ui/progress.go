package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// Countdown renders the time left until the next poll as a progress bar
type Countdown struct {
	Interval time.Duration
	bar      progress.Model
}

// NewCountdown creates a countdown sized for the terminal width
func NewCountdown(interval time.Duration, width int) Countdown {
	barWidth := width - 30 // Leave room for the label
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	return Countdown{
		Interval: interval,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
		),
	}
}

// Fraction returns how much of the interval has elapsed, between 0 and 1
func (c Countdown) Fraction(elapsed time.Duration) float64 {
	if c.Interval <= 0 {
		return 1
	}
	f := float64(elapsed) / float64(c.Interval)
	return min(max(f, 0), 1)
}

// Remaining returns the time left until the next poll, never negative
func (c Countdown) Remaining(elapsed time.Duration) time.Duration {
	return max(c.Interval-elapsed, 0)
}

// View renders the bar and the seconds remaining
func (c Countdown) View(elapsed time.Duration) string {
	left := c.Remaining(elapsed).Round(time.Second)
	return lipgloss.NewStyle().
		PaddingLeft(2).
		Render(fmt.Sprintf("%s  next poll in %s", c.bar.ViewAs(c.Fraction(elapsed)), left))
}
