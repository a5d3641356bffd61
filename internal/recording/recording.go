// Package recording loads raw screen-recorder capture files. A capture is a
// single JSON document with pixel-space interaction events and periodic
// UI-state samples; normalization into capture-relative coordinates happens
// later, when the unified timeline is built.
package recording

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SchemaVersion is the newest capture layout this loader understands.
const SchemaVersion = 1

// ScreenBounds is the pixel size of the recorded capture area.
type ScreenBounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the bounds can be used for normalization.
func (b ScreenBounds) Valid() bool {
	return b.Width > 0 && b.Height > 0
}

// Frame is a pixel-space rectangle reported by the accessibility layer.
type Frame struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// MouseSample is one entry of the continuous cursor track.
type MouseSample struct {
	Time float64 `json:"t"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// ClickEvent is a discrete press of a mouse button.
type ClickEvent struct {
	Time    float64  `json:"t"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Type    string   `json:"type"`
	Element *Element `json:"element,omitempty"`
}

// DragEvent covers a full press-move-release gesture.
type DragEvent struct {
	StartTime float64 `json:"startT"`
	EndTime   float64 `json:"endT"`
	StartX    float64 `json:"startX"`
	StartY    float64 `json:"startY"`
	EndX      float64 `json:"endX"`
	EndY      float64 `json:"endY"`
	Type      string  `json:"type"`
}

// ScrollEvent is one wheel or trackpad scroll tick.
type ScrollEvent struct {
	Time      float64 `json:"t"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction string  `json:"direction"`
	Amount    float64 `json:"amount"`
}

// KeyEvent is a key press or release. Up distinguishes the release leg.
type KeyEvent struct {
	Time      float64  `json:"t"`
	Code      uint16   `json:"code"`
	Character string   `json:"character,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
	Up        bool     `json:"up,omitempty"`
}

// Element describes the focused accessibility element at sample time.
type Element struct {
	Role      string `json:"role"`
	Title     string `json:"title,omitempty"`
	AppName   string `json:"appName,omitempty"`
	Clickable bool   `json:"clickable,omitempty"`
	Frame     *Frame `json:"frame,omitempty"`
}

// UISample is a periodic snapshot of which application and element hold
// focus. Samples arrive on their own clock, independent of input events.
type UISample struct {
	Time     float64  `json:"t"`
	BundleID string   `json:"bundleId"`
	AppName  string   `json:"appName,omitempty"`
	Element  *Element `json:"element,omitempty"`
}

// Recording is one parsed capture file.
type Recording struct {
	SchemaVersion int           `json:"schemaVersion"`
	Duration      float64       `json:"duration"`
	Screen        ScreenBounds  `json:"screen"`
	MouseSamples  []MouseSample `json:"mouseSamples,omitempty"`
	Clicks        []ClickEvent  `json:"clicks,omitempty"`
	Drags         []DragEvent   `json:"drags,omitempty"`
	Scrolls       []ScrollEvent `json:"scrolls,omitempty"`
	Keys          []KeyEvent    `json:"keys,omitempty"`
	UISamples     []UISample    `json:"uiSamples,omitempty"`
}

// EventCount returns the total number of interaction records, excluding the
// continuous mouse track and UI samples.
func (r Recording) EventCount() int {
	return len(r.Clicks) + len(r.Drags) + len(r.Scrolls) + len(r.Keys)
}

// Validate checks the structural minimum needed to process the capture.
// Individual malformed events are tolerated here; the timeline builder
// drops them record by record.
func (r Recording) Validate() error {
	if r.SchemaVersion > SchemaVersion {
		return fmt.Errorf("unsupported capture schema version %d (newest supported is %d)", r.SchemaVersion, SchemaVersion)
	}
	if !r.Screen.Valid() {
		return fmt.Errorf("capture has invalid screen bounds %gx%g", r.Screen.Width, r.Screen.Height)
	}
	if r.Duration <= 0 && r.EventCount() == 0 && len(r.MouseSamples) == 0 {
		return fmt.Errorf("capture has no duration and no events")
	}
	return nil
}

// Load reads and validates a single capture file.
func Load(path string) (Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Recording{}, fmt.Errorf("failed to read capture file: %w", err)
	}

	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return Recording{}, fmt.Errorf("failed to parse capture file %s: %w", filepath.Base(path), err)
	}
	if err := rec.Validate(); err != nil {
		return Recording{}, fmt.Errorf("invalid capture %s: %w", filepath.Base(path), err)
	}
	return rec, nil
}

// Named pairs a capture with the stem of the file it came from, used for
// batch output naming.
type Named struct {
	Name      string
	Path      string
	Recording Recording
}

// LoadDir loads every *.json capture in a directory, sorted by name. Files
// that fail to parse are reported through the errs return instead of
// aborting the whole batch.
func LoadDir(dir string) ([]Named, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read capture directory: %w", err)}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var recs []Named
	var errs []error
	for _, name := range names {
		path := filepath.Join(dir, name)
		rec, err := Load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		recs = append(recs, Named{
			Name:      strings.TrimSuffix(name, filepath.Ext(name)),
			Path:      path,
			Recording: rec,
		})
	}
	return recs, errs
}
