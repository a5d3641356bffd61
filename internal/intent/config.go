package intent

import "fmt"

// Config holds the classifier thresholds. Times are seconds, distances are
// fractions of the capture diagonal axes.
type Config struct {
	// TypingAnticipation pulls a typing span's start before the first
	// keystroke so the camera arrives before text appears.
	TypingAnticipation float64
	// MaxKeyGap is the largest pause between keystrokes that still counts
	// as the same typing session.
	MaxKeyGap float64
	// ClickSpanDuration is how long a single click holds attention.
	ClickSpanDuration float64
	// NavClickGap and NavClickRadius bound when consecutive clicks fuse
	// into a navigation burst: close in time and close to the running
	// centroid of the burst so far.
	NavClickGap    float64
	NavClickRadius float64
	// ScrollGroupGap, ScrollRadius and ScrollSpanDuration are the scroll
	// analogues of the click clustering rules.
	ScrollGroupGap     float64
	ScrollRadius       float64
	ScrollSpanDuration float64
	// SwitchSpanDuration is the fixed length of an app-switch span.
	SwitchSpanDuration float64
	// IdleThreshold is the smallest uncovered stretch that becomes an
	// explicit idle span; shorter gaps are absorbed by a neighbor.
	IdleThreshold float64
	// MinGap bounds boundary placement for absorbed gaps: below it a new
	// activity of a different family claims the gap, above it the camera
	// holds the previous focus until the new activity starts.
	MinGap float64
	// ContextWindow is how long after a click a changed focus element is
	// still attributed to that click.
	ContextWindow float64
}

// DefaultConfig returns the tuning used when no configuration overrides it.
func DefaultConfig() Config {
	return Config{
		TypingAnticipation: 0.4,
		MaxKeyGap:          1.5,
		ClickSpanDuration:  0.8,
		NavClickGap:        2.0,
		NavClickRadius:     0.25,
		ScrollGroupGap:     1.5,
		ScrollRadius:       0.3,
		ScrollSpanDuration: 0.8,
		SwitchSpanDuration: 0.5,
		IdleThreshold:      5.0,
		MinGap:             0.3,
		ContextWindow:      0.5,
	}
}

// Validate rejects configurations that would break span construction.
func (c Config) Validate() error {
	if c.TypingAnticipation < 0 {
		return fmt.Errorf("typing anticipation must not be negative, got %g", c.TypingAnticipation)
	}
	if c.MaxKeyGap <= 0 {
		return fmt.Errorf("max key gap must be positive, got %g", c.MaxKeyGap)
	}
	if c.ClickSpanDuration <= 0 || c.ScrollSpanDuration <= 0 || c.SwitchSpanDuration <= 0 {
		return fmt.Errorf("span durations must be positive")
	}
	if c.NavClickGap <= 0 || c.NavClickRadius <= 0 {
		return fmt.Errorf("navigation clustering thresholds must be positive")
	}
	if c.ScrollGroupGap <= 0 || c.ScrollRadius <= 0 {
		return fmt.Errorf("scroll clustering thresholds must be positive")
	}
	if c.IdleThreshold <= 0 {
		return fmt.Errorf("idle threshold must be positive, got %g", c.IdleThreshold)
	}
	if c.MinGap < 0 || c.MinGap > c.IdleThreshold {
		return fmt.Errorf("min gap must be within [0, idle threshold], got %g", c.MinGap)
	}
	if c.ContextWindow < 0 {
		return fmt.Errorf("context window must not be negative, got %g", c.ContextWindow)
	}
	return nil
}
