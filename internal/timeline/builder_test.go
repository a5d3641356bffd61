package timeline

import (
	"math"
	"testing"

	"smartzoom/internal/recording"
)

func testScreen() recording.ScreenBounds {
	return recording.ScreenBounds{Width: 1000, Height: 500}
}

func TestBuildNormalizesAndSorts(t *testing.T) {
	rec := recording.Recording{
		Duration: 10,
		Screen:   testScreen(),
		Clicks: []recording.ClickEvent{
			{Time: 5.0, X: 900, Y: 450, Type: "left"},
			{Time: 1.0, X: 500, Y: 250, Type: "left"},
		},
		Scrolls: []recording.ScrollEvent{
			{Time: 3.0, X: 100, Y: 100, Direction: "down", Amount: -2.5},
		},
	}

	tl := Build(rec)

	if len(tl.Events) != 3 {
		t.Fatalf("built %d events, want 3", len(tl.Events))
	}
	for i := 1; i < len(tl.Events); i++ {
		if tl.Events[i].Time < tl.Events[i-1].Time {
			t.Fatalf("events out of order at %d: %f after %f", i, tl.Events[i].Time, tl.Events[i-1].Time)
		}
	}

	first := tl.Events[0]
	if first.Pos.X != 0.5 || first.Pos.Y != 0.5 {
		t.Errorf("click at (500,250) normalized to %+v, want (0.5, 0.5)", first.Pos)
	}

	scroll, ok := tl.Events[1].Kind.(Scroll)
	if !ok {
		t.Fatalf("middle event kind = %T, want Scroll", tl.Events[1].Kind)
	}
	if scroll.Amount != 2.5 {
		t.Errorf("scroll amount = %f, want magnitude 2.5", scroll.Amount)
	}
}

func TestBuildDropsMalformedRecords(t *testing.T) {
	rec := recording.Recording{
		Duration: 10,
		Screen:   testScreen(),
		Clicks: []recording.ClickEvent{
			{Time: 1.0, X: 500, Y: 250, Type: "left"},
			{Time: 2.0, X: 1500, Y: 250, Type: "left"},          // off capture, dropped not clamped
			{Time: math.NaN(), X: 500, Y: 250, Type: "left"},    // bad time
			{Time: -1.0, X: 500, Y: 250, Type: "left"},          // negative time
			{Time: 3.0, X: math.Inf(1), Y: 250, Type: "left"},   // non-finite position
		},
		Drags: []recording.DragEvent{
			{StartTime: 4.0, EndTime: 3.0, StartX: 10, StartY: 10, EndX: 20, EndY: 20, Type: "move"}, // ends before start
		},
	}

	tl := Build(rec)

	if len(tl.Events) != 1 {
		t.Errorf("kept %d events, want 1", len(tl.Events))
	}
	if tl.Dropped != 5 {
		t.Errorf("Dropped = %d, want 5", tl.Dropped)
	}
}

func TestBuildDragProducesBothEndpoints(t *testing.T) {
	rec := recording.Recording{
		Duration: 10,
		Screen:   testScreen(),
		Drags: []recording.DragEvent{
			{StartTime: 2.0, EndTime: 3.5, StartX: 100, StartY: 100, EndX: 900, EndY: 400, Type: "select"},
		},
	}

	tl := Build(rec)
	if len(tl.Events) != 2 {
		t.Fatalf("built %d events, want 2", len(tl.Events))
	}

	start, ok := tl.Events[0].Kind.(DragStart)
	if !ok {
		t.Fatalf("first event kind = %T, want DragStart", tl.Events[0].Kind)
	}
	end, ok := tl.Events[1].Kind.(DragEnd)
	if !ok {
		t.Fatalf("second event kind = %T, want DragEnd", tl.Events[1].Kind)
	}

	if start.Gesture != end.Gesture {
		t.Errorf("endpoint events carry different gestures: %+v vs %+v", start.Gesture, end.Gesture)
	}
	if start.Gesture.Type != DragSelect {
		t.Errorf("gesture type = %q, want %q", start.Gesture.Type, DragSelect)
	}
	if tl.Events[1].Pos != end.Gesture.End {
		t.Errorf("release event position %+v does not match gesture end %+v", tl.Events[1].Pos, end.Gesture.End)
	}
}

func TestBuildKeyEventsInheritCursorPosition(t *testing.T) {
	rec := recording.Recording{
		Duration: 10,
		Screen:   testScreen(),
		MouseSamples: []recording.MouseSample{
			{Time: 1.0, X: 200, Y: 100},
			{Time: 4.0, X: 800, Y: 400},
		},
		Keys: []recording.KeyEvent{
			{Time: 0.5, Code: 0, Character: "a"},
			{Time: 2.0, Code: 1, Character: "s"},
			{Time: 5.0, Code: 2, Character: "d", Modifiers: []string{"command"}},
		},
	}

	tl := Build(rec)

	var keys []Event
	for _, e := range tl.Events {
		if _, ok := e.Kind.(KeyDown); ok {
			keys = append(keys, e)
		}
	}
	if len(keys) != 3 {
		t.Fatalf("found %d key events, want 3", len(keys))
	}

	// Before any sample: earliest known cursor position.
	if keys[0].Pos.X != 0.2 || keys[0].Pos.Y != 0.2 {
		t.Errorf("pre-track key position = %+v, want (0.2, 0.2)", keys[0].Pos)
	}
	// Between samples: nearest preceding.
	if keys[1].Pos.X != 0.2 || keys[1].Pos.Y != 0.2 {
		t.Errorf("key at t=2 position = %+v, want (0.2, 0.2)", keys[1].Pos)
	}
	if keys[2].Pos.X != 0.8 || keys[2].Pos.Y != 0.8 {
		t.Errorf("key at t=5 position = %+v, want (0.8, 0.8)", keys[2].Pos)
	}

	down, _ := keys[2].Kind.(KeyDown)
	if !down.Modifiers.IsShortcut() {
		t.Error("command-modified key should report as shortcut")
	}
}

func TestBuildTagsApplications(t *testing.T) {
	rec := recording.Recording{
		Duration: 10,
		Screen:   testScreen(),
		Clicks: []recording.ClickEvent{
			{Time: 0.5, X: 100, Y: 100, Type: "left"},
			{Time: 2.0, X: 100, Y: 100, Type: "left"},
			{Time: 6.0, X: 100, Y: 100, Type: "left"},
		},
		UISamples: []recording.UISample{
			{Time: 1.0, BundleID: "com.apple.dt.Xcode", AppName: "Xcode"},
			{Time: 5.0, BundleID: "com.apple.Terminal", AppName: "Terminal"},
		},
	}

	tl := Build(rec)

	if got := tl.Events[0].App; got != "" {
		t.Errorf("event before first sample tagged %q, want empty", got)
	}
	if got := tl.Events[1].App; got != "com.apple.dt.Xcode" {
		t.Errorf("event at t=2 tagged %q, want Xcode bundle", got)
	}
	if got := tl.Events[2].App; got != "com.apple.Terminal" {
		t.Errorf("event at t=6 tagged %q, want Terminal bundle", got)
	}
}

func TestBuildElementFrameNormalization(t *testing.T) {
	rec := recording.Recording{
		Duration: 5,
		Screen:   testScreen(),
		UISamples: []recording.UISample{
			{Time: 1.0, BundleID: "app", Element: &recording.Element{
				Role:  "AXTextArea",
				Frame: &recording.Frame{X: 250, Y: 100, W: 500, H: 200},
			}},
			{Time: 2.0, BundleID: "app", Element: &recording.Element{
				Role:  "AXWindow",
				Frame: &recording.Frame{X: 2000, Y: 800, W: 100, H: 100}, // fully off capture
			}},
		},
	}

	tl := Build(rec)
	if len(tl.Samples) != 2 {
		t.Fatalf("kept %d samples, want 2", len(tl.Samples))
	}

	el := tl.Samples[0].Element
	if !el.HasFrame() {
		t.Fatal("on-screen element lost its frame")
	}
	if el.Frame.X != 0.25 || el.Frame.Y != 0.2 || el.Frame.W != 0.5 || el.Frame.H != 0.4 {
		t.Errorf("frame normalized to %+v, want (0.25, 0.2, 0.5, 0.4)", el.Frame)
	}

	if tl.Samples[1].Element.HasFrame() {
		t.Errorf("off-capture frame should be discarded, got %+v", tl.Samples[1].Element.Frame)
	}
}

func TestBuildDurationFallback(t *testing.T) {
	rec := recording.Recording{
		Duration: 0,
		Screen:   testScreen(),
		Clicks: []recording.ClickEvent{
			{Time: 7.5, X: 100, Y: 100, Type: "left"},
		},
	}

	tl := Build(rec)
	if tl.Duration != 7.5 {
		t.Errorf("Duration = %f, want last event time 7.5", tl.Duration)
	}
}

func TestSampleAtAndEventsBetween(t *testing.T) {
	rec := recording.Recording{
		Duration: 10,
		Screen:   testScreen(),
		Clicks: []recording.ClickEvent{
			{Time: 1.0, X: 100, Y: 100, Type: "left"},
			{Time: 2.0, X: 100, Y: 100, Type: "left"},
			{Time: 3.0, X: 100, Y: 100, Type: "left"},
		},
		UISamples: []recording.UISample{
			{Time: 1.5, BundleID: "first"},
			{Time: 2.5, BundleID: "second"},
		},
	}

	tl := Build(rec)

	if s := tl.SampleAt(1.0); s != nil {
		t.Errorf("SampleAt(1.0) = %+v, want nil before first sample", s)
	}
	if s := tl.SampleAt(2.0); s == nil || s.BundleID != "first" {
		t.Errorf("SampleAt(2.0) = %+v, want the t=1.5 sample", s)
	}
	if s := tl.SampleAt(9.0); s == nil || s.BundleID != "second" {
		t.Errorf("SampleAt(9.0) = %+v, want the t=2.5 sample", s)
	}

	// Half-open range: the event at exactly end is excluded.
	got := tl.EventsBetween(1.0, 3.0)
	if len(got) != 2 {
		t.Fatalf("EventsBetween(1,3) returned %d events, want 2", len(got))
	}
	if got[0].Time != 1.0 || got[1].Time != 2.0 {
		t.Errorf("EventsBetween(1,3) times = %f, %f, want 1.0, 2.0", got[0].Time, got[1].Time)
	}
}
