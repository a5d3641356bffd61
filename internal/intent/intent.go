// Package intent classifies the unified event timeline into a contiguous
// sequence of user activity spans. Each span says what the user was doing,
// where on screen, and for how long; downstream stages turn spans into
// camera scenes and shots.
package intent

import (
	"fmt"

	"smartzoom/internal/geom"
	"smartzoom/internal/timeline"
)

// Intent is the closed set of recognized activities. Variants are small
// comparable structs, so two intents compare equal only when both the
// activity and its qualifier match: typing in a code editor is not the
// same intent as typing in a terminal.
type Intent interface {
	isIntent()
}

// TypingContext qualifies where typing happens; it drives how tight the
// camera frames the text caret.
type TypingContext string

const (
	ContextCodeEditor TypingContext = "codeEditor"
	ContextTerminal   TypingContext = "terminal"
	ContextTextField  TypingContext = "textField"
)

// Typing is sustained keyboard input.
type Typing struct {
	Context TypingContext
}

// Clicking is an isolated mouse press.
type Clicking struct{}

// Navigating is a burst of spatially close clicks, typical for menu or
// settings traversal.
type Navigating struct{}

// Scrolling is a run of wheel or trackpad ticks in one area.
type Scrolling struct {
	Direction timeline.ScrollDirection
}

// Dragging is a press-move-release gesture.
type Dragging struct {
	Type timeline.DragType
}

// Switching is a change of the frontmost application. From and To are
// canonical application IDs.
type Switching struct {
	From string
	To   string
}

// Idle is a stretch with no classified activity.
type Idle struct{}

func (Typing) isIntent()     {}
func (Clicking) isIntent()   {}
func (Navigating) isIntent() {}
func (Scrolling) isIntent()  {}
func (Dragging) isIntent()   {}
func (Switching) isIntent()  {}
func (Idle) isIntent()       {}

// Name returns the bare variant name without qualifiers.
func Name(i Intent) string {
	switch i.(type) {
	case Typing:
		return "typing"
	case Clicking:
		return "clicking"
	case Navigating:
		return "navigating"
	case Scrolling:
		return "scrolling"
	case Dragging:
		return "dragging"
	case Switching:
		return "appSwitching"
	case Idle:
		return "idle"
	default:
		return "unknown"
	}
}

// Describe returns the variant name with its qualifier, for logs and
// summary tables.
func Describe(i Intent) string {
	switch v := i.(type) {
	case Typing:
		return fmt.Sprintf("typing(%s)", v.Context)
	case Scrolling:
		if v.Direction != "" {
			return fmt.Sprintf("scrolling(%s)", v.Direction)
		}
		return "scrolling"
	case Dragging:
		if v.Type != "" {
			return fmt.Sprintf("dragging(%s)", v.Type)
		}
		return "dragging"
	case Switching:
		return fmt.Sprintf("appSwitching(%s to %s)", v.From, v.To)
	default:
		return Name(i)
	}
}

// SameFamily reports whether two intents are the same activity kind,
// ignoring qualifiers.
func SameFamily(a, b Intent) bool {
	return Name(a) == Name(b)
}

// ContextChange records that the focused UI element changed shortly after a
// click, meaning the click opened or revealed something.
type ContextChange struct {
	At      float64
	Element *timeline.ElementInfo
}

// Span is one classified stretch of the recording. A classified sequence
// tiles [0, duration] without gaps or overlaps.
type Span struct {
	Start      float64
	End        float64
	Intent     Intent
	Focus      geom.Point
	Element    *timeline.ElementInfo
	Confidence float64
	Context    *ContextChange
}

// Duration returns the span length in seconds.
func (s Span) Duration() float64 {
	return s.End - s.Start
}
