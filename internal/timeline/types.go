// Package timeline merges the separate record streams of a capture into one
// chronologically ordered event sequence in normalized coordinates. Every
// later stage works off this unified view instead of the raw capture.
package timeline

import (
	"sort"

	"smartzoom/internal/geom"
)

// Kind is the closed set of event variants. Each variant is a small struct
// carrying only the payload that kind needs; the marker method keeps the
// set closed to this package.
type Kind interface {
	isKind()
}

// ClickType distinguishes mouse button gestures.
type ClickType string

const (
	ClickLeft   ClickType = "left"
	ClickRight  ClickType = "right"
	ClickDouble ClickType = "double"
)

// DragType distinguishes what a drag gesture manipulated.
type DragType string

const (
	DragMove   DragType = "move"
	DragSelect DragType = "select"
	DragWindow DragType = "window"
)

// ScrollDirection is the dominant axis direction of a scroll tick.
type ScrollDirection string

const (
	ScrollUp    ScrollDirection = "up"
	ScrollDown  ScrollDirection = "down"
	ScrollLeft  ScrollDirection = "left"
	ScrollRight ScrollDirection = "right"
)

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModOption
	ModCommand
)

// ParseModifiers converts recorder modifier names into a bitmask. Unknown
// names are ignored.
func ParseModifiers(names []string) Modifiers {
	var m Modifiers
	for _, n := range names {
		switch n {
		case "shift":
			m |= ModShift
		case "control", "ctrl":
			m |= ModControl
		case "option", "alt":
			m |= ModOption
		case "command", "cmd", "meta":
			m |= ModCommand
		}
	}
	return m
}

// IsShortcut reports whether the mask indicates a command chord rather than
// text entry. Shift and option alone still produce characters.
func (m Modifiers) IsShortcut() bool {
	return m&(ModCommand|ModControl) != 0
}

// MouseMove is one sample of the continuous cursor track.
type MouseMove struct{}

// Click is a discrete mouse press, optionally with the accessibility
// element that was hit.
type Click struct {
	Type    ClickType
	Element *ElementInfo
}

// Drag is the full shape of a press-move-release gesture. Both endpoint
// events carry it, so a consumer seeing either end has the whole gesture.
type Drag struct {
	Start    geom.Point
	End      geom.Point
	Type     DragType
	Duration float64
}

// DragStart marks the press leg of a drag.
type DragStart struct {
	Gesture Drag
}

// DragEnd marks the release leg of a drag.
type DragEnd struct {
	Gesture Drag
}

// Scroll is one wheel or trackpad tick.
type Scroll struct {
	Direction ScrollDirection
	Amount    float64
}

// KeyDown is a key press. Character is empty for non-printing keys.
type KeyDown struct {
	Code      uint16
	Character string
	Modifiers Modifiers
}

// KeyUp is a key release.
type KeyUp struct {
	Code uint16
}

func (MouseMove) isKind() {}
func (Click) isKind()     {}
func (DragStart) isKind() {}
func (DragEnd) isKind()   {}
func (Scroll) isKind()    {}
func (KeyDown) isKind()   {}
func (KeyUp) isKind()     {}

// KindName returns a stable lowercase name for logging and plan output.
func KindName(k Kind) string {
	switch k.(type) {
	case MouseMove:
		return "mouseMove"
	case Click:
		return "click"
	case DragStart:
		return "dragStart"
	case DragEnd:
		return "dragEnd"
	case Scroll:
		return "scroll"
	case KeyDown:
		return "keyDown"
	case KeyUp:
		return "keyUp"
	default:
		return "unknown"
	}
}

// ElementInfo is a normalized accessibility element snapshot.
type ElementInfo struct {
	Role      string
	Title     string
	AppName   string
	Clickable bool
	Frame     geom.Rect
}

// HasFrame reports whether the recorder attached a usable on-screen frame.
func (e *ElementInfo) HasFrame() bool {
	return e != nil && !e.Frame.Empty()
}

// Event is one entry of the unified timeline.
type Event struct {
	Time float64
	Pos  geom.Point
	App  string // raw owning-application identifier at event time, empty when unknown
	Kind Kind
}

// UISample is a normalized periodic focus snapshot.
type UISample struct {
	Time     float64
	BundleID string
	AppName  string
	Element  *ElementInfo
}

// Timeline is the unified event view of one capture. Events and Samples are
// sorted by time; ties keep stream insertion order.
type Timeline struct {
	Duration float64
	Events   []Event
	Samples  []UISample
	Dropped  int
}

// SampleAt returns the latest UI sample at or before the given time, or nil
// when none exists yet.
func (t *Timeline) SampleAt(at float64) *UISample {
	idx := sort.Search(len(t.Samples), func(i int) bool {
		return t.Samples[i].Time > at
	})
	if idx == 0 {
		return nil
	}
	return &t.Samples[idx-1]
}

// EventsBetween returns the events with start <= Time < end. The returned
// slice aliases the timeline's backing array.
func (t *Timeline) EventsBetween(start, end float64) []Event {
	lo := sort.Search(len(t.Events), func(i int) bool {
		return t.Events[i].Time >= start
	})
	hi := sort.Search(len(t.Events), func(i int) bool {
		return t.Events[i].Time >= end
	})
	return t.Events[lo:hi]
}
