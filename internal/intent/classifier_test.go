package intent

import (
	"math"
	"sort"
	"testing"

	"smartzoom/internal/geom"
	"smartzoom/internal/timeline"
)

func makeTimeline(duration float64, events []timeline.Event, samples []timeline.UISample) timeline.Timeline {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Time < events[j].Time })
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Time < samples[j].Time })
	return timeline.Timeline{Duration: duration, Events: events, Samples: samples}
}

func keyEvent(t float64, ch string, app string) timeline.Event {
	return timeline.Event{
		Time: t,
		Pos:  geom.Point{X: 0.5, Y: 0.5},
		App:  app,
		Kind: timeline.KeyDown{Character: ch},
	}
}

func clickEvent(t, x, y float64, app string) timeline.Event {
	return timeline.Event{
		Time: t,
		Pos:  geom.Point{X: x, Y: y},
		App:  app,
		Kind: timeline.Click{Type: timeline.ClickLeft},
	}
}

func scrollEvent(t, x, y float64, dir timeline.ScrollDirection) timeline.Event {
	return timeline.Event{
		Time: t,
		Pos:  geom.Point{X: x, Y: y},
		Kind: timeline.Scroll{Direction: dir, Amount: 1},
	}
}

// checkTiling verifies the structural contract of every classification:
// sorted spans covering [0, duration] without gaps or overlaps.
func checkTiling(t *testing.T, spans []Span, duration float64) {
	t.Helper()
	if len(spans) == 0 {
		t.Fatal("no spans produced")
	}
	if spans[0].Start != 0 {
		t.Errorf("first span starts at %f, want 0", spans[0].Start)
	}
	if math.Abs(spans[len(spans)-1].End-duration) > 1e-9 {
		t.Errorf("last span ends at %f, want %f", spans[len(spans)-1].End, duration)
	}
	for i := 1; i < len(spans); i++ {
		if math.Abs(spans[i].Start-spans[i-1].End) > 1e-9 {
			t.Errorf("span %d starts at %f but previous ends at %f", i, spans[i].Start, spans[i-1].End)
		}
	}
	for i, s := range spans {
		if s.Duration() <= 0 {
			t.Errorf("span %d has non-positive duration %f", i, s.Duration())
		}
	}
}

func TestClassifyTypingSession(t *testing.T) {
	frame := geom.Rect{X: 0.1, Y: 0.2, W: 0.6, H: 0.1}
	samples := []timeline.UISample{
		{Time: 1.0, BundleID: "com.apple.dt.Xcode", AppName: "Xcode",
			Element: &timeline.ElementInfo{Role: "AXTextArea", AppName: "Xcode", Frame: frame}},
	}
	var events []timeline.Event
	for i := 0; i < 5; i++ {
		events = append(events, keyEvent(6.0+0.2*float64(i), "a", "com.apple.dt.Xcode"))
	}

	c := NewClassifier(DefaultConfig())
	spans := c.Classify(makeTimeline(12, events, samples))
	checkTiling(t, spans, 12)

	if len(spans) != 3 {
		t.Fatalf("Expected idle/typing/idle, got %d spans", len(spans))
	}

	typing := spans[1]
	if typing.Intent != (Typing{Context: ContextCodeEditor}) {
		t.Errorf("Expected typing(codeEditor), got %v", Describe(typing.Intent))
	}
	// Anticipation pulls the start 0.4s before the first keystroke; the
	// span ends on the last keystroke.
	if math.Abs(typing.Start-5.6) > 1e-9 || math.Abs(typing.End-6.8) > 1e-9 {
		t.Errorf("Expected typing span [5.6, 6.8], got [%f, %f]", typing.Start, typing.End)
	}
	if math.Abs(typing.Confidence-0.80) > 1e-9 {
		t.Errorf("Expected confidence 0.80 for 5 keystrokes, got %f", typing.Confidence)
	}
	if typing.Element == nil || typing.Focus != frame.Center() {
		t.Errorf("Expected focus on the text element center %v, got %v", frame.Center(), typing.Focus)
	}

	// Surrounding idle spans inherit the typing focus.
	if spans[0].Intent != (Idle{}) || spans[2].Intent != (Idle{}) {
		t.Fatalf("Expected idle neighbors, got %v and %v", Describe(spans[0].Intent), Describe(spans[2].Intent))
	}
	if spans[0].Focus != typing.Focus || spans[2].Focus != typing.Focus {
		t.Error("idle spans should inherit the neighboring focus")
	}
}

func TestClassifyTypingContexts(t *testing.T) {
	tests := []struct {
		name   string
		bundle string
		want   TypingContext
	}{
		{"code editor", "com.microsoft.VSCode", ContextCodeEditor},
		{"terminal", "com.googlecode.iterm2", ContextTerminal},
		{"unknown app falls back to text field", "com.example.Notes", ContextTextField},
	}

	c := NewClassifier(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := []timeline.UISample{{Time: 0.5, BundleID: tt.bundle}}
			events := []timeline.Event{keyEvent(1.0, "x", tt.bundle), keyEvent(1.2, "y", tt.bundle)}
			spans := c.Classify(makeTimeline(3, events, samples))

			var found *Span
			for i := range spans {
				if _, ok := spans[i].Intent.(Typing); ok {
					found = &spans[i]
					break
				}
			}
			if found == nil {
				t.Fatal("no typing span produced")
			}
			if found.Intent != (Typing{Context: tt.want}) {
				t.Errorf("Expected typing(%s), got %v", tt.want, Describe(found.Intent))
			}
		})
	}
}

func TestClassifyShortcutsDoNotType(t *testing.T) {
	events := []timeline.Event{
		{Time: 1.0, Pos: geom.Point{X: 0.5, Y: 0.5}, Kind: timeline.KeyDown{Character: "s", Modifiers: timeline.ModCommand}},
		{Time: 1.2, Pos: geom.Point{X: 0.5, Y: 0.5}, Kind: timeline.KeyDown{Character: "p", Modifiers: timeline.ModControl}},
	}

	c := NewClassifier(DefaultConfig())
	spans := c.Classify(makeTimeline(3, events, nil))

	for _, s := range spans {
		if _, ok := s.Intent.(Typing); ok {
			t.Fatalf("shortcut chords must not form typing spans, got %+v", s)
		}
	}
}

func TestClassifyNavigationBurst(t *testing.T) {
	events := []timeline.Event{
		clickEvent(6.0, 0.30, 0.30, "app"),
		clickEvent(6.5, 0.32, 0.31, "app"),
		clickEvent(7.2, 0.35, 0.33, "app"),
	}

	c := NewClassifier(DefaultConfig())
	spans := c.Classify(makeTimeline(14, events, nil))
	checkTiling(t, spans, 14)

	var nav *Span
	for i := range spans {
		if _, ok := spans[i].Intent.(Navigating); ok {
			if nav != nil {
				t.Fatal("Expected a single navigating span")
			}
			nav = &spans[i]
		}
	}
	if nav == nil {
		t.Fatal("Expected a navigating span, got none")
	}
	if math.Abs(nav.Start-6.0) > 1e-9 || math.Abs(nav.End-8.0) > 1e-9 {
		t.Errorf("Expected burst span [6.0, 8.0], got [%f, %f]", nav.Start, nav.End)
	}
	wantFocus := geom.Point{X: (0.30 + 0.32 + 0.35) / 3, Y: (0.30 + 0.31 + 0.33) / 3}
	if nav.Focus.Dist(wantFocus) > 1e-9 {
		t.Errorf("Expected centroid focus %v, got %v", wantFocus, nav.Focus)
	}
}

func TestClassifyFarClicksStaySeparate(t *testing.T) {
	events := []timeline.Event{
		clickEvent(1.0, 0.2, 0.2, "app"),
		clickEvent(2.0, 0.9, 0.9, "app"),
	}

	c := NewClassifier(DefaultConfig())
	spans := c.Classify(makeTimeline(4, events, nil))
	checkTiling(t, spans, 4)

	var clicks []Span
	for _, s := range spans {
		if _, ok := s.Intent.(Clicking); ok {
			clicks = append(clicks, s)
		}
	}
	if len(clicks) != 2 {
		t.Fatalf("Expected 2 separate clicking spans, got %d", len(clicks))
	}
	if clicks[0].Focus == clicks[1].Focus {
		t.Error("separate clicks should keep their own focus points")
	}
}

// A chain of small click steps must split once it drifts far from where the
// burst began, even though each consecutive pair stays close.
func TestClassifyClickChainSplitsOnDrift(t *testing.T) {
	var events []timeline.Event
	x := 0.10
	for i := 0; i < 12; i++ {
		events = append(events, clickEvent(1.0+0.5*float64(i), x, 0.5, "app"))
		x += 0.06
	}

	c := NewClassifier(DefaultConfig())
	spans := c.Classify(makeTimeline(10, events, nil))

	bursts := 0
	for _, s := range spans {
		switch s.Intent.(type) {
		case Navigating, Clicking:
			bursts++
		}
	}
	if bursts < 2 {
		t.Errorf("Expected the drifting chain to split into multiple spans, got %d", bursts)
	}
}

func TestClassifyContextChangeAfterClick(t *testing.T) {
	samples := []timeline.UISample{
		{Time: 0.9, BundleID: "app", Element: &timeline.ElementInfo{Role: "AXButton", Title: "Open"}},
		{Time: 1.3, BundleID: "app", Element: &timeline.ElementInfo{Role: "AXSheet", Title: "Export"}},
	}
	events := []timeline.Event{clickEvent(1.0, 0.4, 0.4, "app")}

	c := NewClassifier(DefaultConfig())
	spans := c.Classify(makeTimeline(3, events, samples))

	var clicked *Span
	for i := range spans {
		if _, ok := spans[i].Intent.(Clicking); ok {
			clicked = &spans[i]
		}
	}
	if clicked == nil {
		t.Fatal("Expected a clicking span")
	}
	if clicked.Context == nil {
		t.Fatal("Expected a context change after the click")
	}
	if clicked.Context.At != 1.3 || clicked.Context.Element.Role != "AXSheet" {
		t.Errorf("Expected change at 1.3 to AXSheet, got %+v", clicked.Context)
	}
}

func TestClassifyContextChangeOutsideWindowIgnored(t *testing.T) {
	samples := []timeline.UISample{
		{Time: 0.9, BundleID: "app", Element: &timeline.ElementInfo{Role: "AXButton"}},
		{Time: 2.5, BundleID: "app", Element: &timeline.ElementInfo{Role: "AXSheet"}},
	}
	events := []timeline.Event{clickEvent(1.0, 0.4, 0.4, "app")}

	c := NewClassifier(DefaultConfig())
	spans := c.Classify(makeTimeline(4, events, samples))

	for _, s := range spans {
		if _, ok := s.Intent.(Clicking); ok && s.Context != nil {
			t.Errorf("element change 1.5s after the click should not be attributed to it, got %+v", s.Context)
		}
	}
}

func TestClassifyDragSpan(t *testing.T) {
	gesture := timeline.Drag{
		Start:    geom.Point{X: 0.1, Y: 0.1},
		End:      geom.Point{X: 0.7, Y: 0.5},
		Type:     timeline.DragSelect,
		Duration: 1.4,
	}
	events := []timeline.Event{
		{Time: 6.0, Pos: gesture.Start, Kind: timeline.DragStart{Gesture: gesture}},
		{Time: 7.4, Pos: gesture.End, Kind: timeline.DragEnd{Gesture: gesture}},
	}

	c := NewClassifier(DefaultConfig())
	spans := c.Classify(makeTimeline(13, events, nil))
	checkTiling(t, spans, 13)

	var drag *Span
	for i := range spans {
		if _, ok := spans[i].Intent.(Dragging); ok {
			drag = &spans[i]
		}
	}
	if drag == nil {
		t.Fatal("Expected a dragging span")
	}
	if drag.Intent != (Dragging{Type: timeline.DragSelect}) {
		t.Errorf("Expected dragging(select), got %v", Describe(drag.Intent))
	}
	if math.Abs(drag.Start-6.0) > 1e-9 || math.Abs(drag.End-7.4) > 1e-9 {
		t.Errorf("Expected drag span [6.0, 7.4] covering the gesture, got [%f, %f]", drag.Start, drag.End)
	}
	wantFocus := geom.Mid(gesture.Start, gesture.End)
	if drag.Focus != wantFocus {
		t.Errorf("Expected focus on gesture midpoint %v, got %v", wantFocus, drag.Focus)
	}
}

func TestClassifyScrollRun(t *testing.T) {
	events := []timeline.Event{
		scrollEvent(6.0, 0.5, 0.4, timeline.ScrollDown),
		scrollEvent(6.3, 0.5, 0.42, timeline.ScrollDown),
		scrollEvent(6.6, 0.5, 0.44, timeline.ScrollDown),
		scrollEvent(6.9, 0.5, 0.44, timeline.ScrollUp),
	}

	c := NewClassifier(DefaultConfig())
	spans := c.Classify(makeTimeline(13, events, nil))
	checkTiling(t, spans, 13)

	var scroll *Span
	for i := range spans {
		if _, ok := spans[i].Intent.(Scrolling); ok {
			if scroll != nil {
				t.Fatal("Expected a single scrolling span")
			}
			scroll = &spans[i]
		}
	}
	if scroll == nil {
		t.Fatal("Expected a scrolling span")
	}
	if scroll.Intent != (Scrolling{Direction: timeline.ScrollDown}) {
		t.Errorf("Expected dominant direction down, got %v", Describe(scroll.Intent))
	}
	if math.Abs(scroll.Start-6.0) > 1e-9 || math.Abs(scroll.End-7.7) > 1e-9 {
		t.Errorf("Expected scroll span [6.0, 7.7], got [%f, %f]", scroll.Start, scroll.End)
	}
}

func TestClassifyAppSwitch(t *testing.T) {
	samples := []timeline.UISample{
		{Time: 1.0, BundleID: "com.microsoft.VSCode"},
		{Time: 6.2, BundleID: "com.apple.Terminal"},
	}
	events := []timeline.Event{
		clickEvent(1.5, 0.3, 0.3, "com.microsoft.VSCode"),
		clickEvent(7.0, 0.6, 0.6, "com.apple.Terminal"),
	}

	c := NewClassifier(DefaultConfig())
	spans := c.Classify(makeTimeline(10, events, samples))
	checkTiling(t, spans, 10)

	var sw *Span
	for i := range spans {
		if _, ok := spans[i].Intent.(Switching); ok {
			sw = &spans[i]
		}
	}
	if sw == nil {
		t.Fatal("Expected an app switching span")
	}
	if sw.Intent != (Switching{From: "vscode", To: "terminal"}) {
		t.Errorf("Expected switch vscode to terminal, got %v", Describe(sw.Intent))
	}
	if math.Abs(sw.Start-6.2) > 1e-9 || math.Abs(sw.End-6.7) > 1e-9 {
		t.Errorf("Expected switch span [6.2, 6.7], got [%f, %f]", sw.Start, sw.End)
	}
}

func TestClassifyAliasedAppIsNotASwitch(t *testing.T) {
	samples := []timeline.UISample{
		{Time: 1.0, BundleID: "com.microsoft.VSCode"},
		{Time: 3.0, BundleID: "", AppName: "Visual Studio Code"},
	}

	c := NewClassifier(DefaultConfig())
	spans := c.Classify(makeTimeline(6, nil, samples))

	for _, s := range spans {
		if _, ok := s.Intent.(Switching); ok {
			t.Fatalf("alias spelling change must not produce a switch, got %+v", s)
		}
	}
}

// A switch span keeps its ground: whatever span it lands on is trimmed, and
// activity resuming after the switch starts a fresh span.
func TestClassifySwitchTrimsSurroundingActivity(t *testing.T) {
	samples := []timeline.UISample{
		{Time: 0.5, BundleID: "com.microsoft.VSCode"},
		{Time: 2.0, BundleID: "com.apple.Terminal"},
	}
	var events []timeline.Event
	for _, at := range []float64{1.0, 1.2, 1.4, 1.6, 1.8} {
		events = append(events, keyEvent(at, "a", "com.microsoft.VSCode"))
	}
	for _, at := range []float64{2.2, 2.4, 2.6, 2.8, 3.0} {
		events = append(events, keyEvent(at, "b", "com.apple.Terminal"))
	}

	c := NewClassifier(DefaultConfig())
	spans := c.Classify(makeTimeline(4, events, samples))
	checkTiling(t, spans, 4)

	var kinds []string
	for _, s := range spans {
		kinds = append(kinds, Name(s.Intent))
	}

	want := []string{"typing", "appSwitching", "typing"}
	if len(kinds) != len(want) {
		t.Fatalf("Expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, kinds)
		}
	}

	if math.Abs(spans[0].End-2.0) > 1e-9 {
		t.Errorf("Expected first typing span trimmed to the switch at 2.0, got end %f", spans[0].End)
	}
	if math.Abs(spans[1].Start-2.0) > 1e-9 || math.Abs(spans[2].Start-2.5) > 1e-9 {
		t.Errorf("Expected switch [2.0, 2.5] then typing from 2.5, got [%f, ...] and %f", spans[1].Start, spans[2].Start)
	}
	if spans[2].Intent != (Typing{Context: ContextTerminal}) {
		t.Errorf("Expected typing(terminal) after the switch, got %v", Describe(spans[2].Intent))
	}
}

func TestClassifyGapHandling(t *testing.T) {
	t.Run("long gap becomes idle with inherited focus", func(t *testing.T) {
		events := []timeline.Event{clickEvent(1.0, 0.3, 0.4, "app")}
		c := NewClassifier(DefaultConfig())
		spans := c.Classify(makeTimeline(12, events, nil))
		checkTiling(t, spans, 12)

		last := spans[len(spans)-1]
		if last.Intent != (Idle{}) {
			t.Fatalf("Expected trailing idle span, got %v", Describe(last.Intent))
		}
		if last.Focus != (geom.Point{X: 0.3, Y: 0.4}) {
			t.Errorf("Expected idle to inherit the click focus, got %v", last.Focus)
		}
	})

	t.Run("medium gap extends the previous span", func(t *testing.T) {
		events := []timeline.Event{
			clickEvent(1.0, 0.3, 0.4, "app"),
			scrollEvent(4.0, 0.6, 0.6, timeline.ScrollDown),
		}
		c := NewClassifier(DefaultConfig())
		spans := c.Classify(makeTimeline(6, events, nil))
		checkTiling(t, spans, 6)

		for _, s := range spans {
			if _, ok := s.Intent.(Idle); ok {
				t.Fatalf("a 2.2s gap must not become idle, got %+v", s)
			}
		}
		if _, ok := spans[0].Intent.(Clicking); !ok || math.Abs(spans[0].End-4.0) > 1e-9 {
			t.Errorf("Expected the click span held until the scroll at 4.0, got %v ending %f",
				Describe(spans[0].Intent), spans[0].End)
		}
	})

	t.Run("tiny gap before a different activity is claimed by it", func(t *testing.T) {
		gesture := timeline.Drag{Start: geom.Point{X: 0.2, Y: 0.2}, End: geom.Point{X: 0.4, Y: 0.4}, Type: timeline.DragMove, Duration: 1.0}
		events := []timeline.Event{
			clickEvent(1.0, 0.3, 0.4, "app"),
			{Time: 2.0, Pos: gesture.Start, Kind: timeline.DragStart{Gesture: gesture}},
		}
		c := NewClassifier(DefaultConfig())
		spans := c.Classify(makeTimeline(4, events, nil))
		checkTiling(t, spans, 4)

		if len(spans) < 2 {
			t.Fatalf("Expected click then drag, got %d spans", len(spans))
		}
		if math.Abs(spans[0].End-1.8) > 1e-9 {
			t.Errorf("Expected the click span to keep its natural end 1.8, got %f", spans[0].End)
		}
		if math.Abs(spans[1].Start-1.8) > 1e-9 {
			t.Errorf("Expected the drag span to claim the 0.2s sliver and start at 1.8, got %f", spans[1].Start)
		}
	})
}

func TestClassifyEmptyTimeline(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	spans := c.Classify(timeline.Timeline{Duration: 30})

	if len(spans) != 1 {
		t.Fatalf("Expected a single idle span, got %d spans", len(spans))
	}
	s := spans[0]
	if s.Intent != (Idle{}) || s.Start != 0 || s.End != 30 {
		t.Errorf("Expected idle [0, 30], got %v [%f, %f]", Describe(s.Intent), s.Start, s.End)
	}
	if s.Focus != (geom.Point{X: 0.5, Y: 0.5}) {
		t.Errorf("Expected screen-center focus, got %v", s.Focus)
	}
	if s.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %f", s.Confidence)
	}
}

func TestClassifyZeroDuration(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	if spans := c.Classify(timeline.Timeline{}); spans != nil {
		t.Errorf("Expected no spans for an empty capture, got %d", len(spans))
	}
}

func TestClassifyCoverageWithMixedActivity(t *testing.T) {
	gesture := timeline.Drag{Start: geom.Point{X: 0.6, Y: 0.2}, End: geom.Point{X: 0.8, Y: 0.6}, Type: timeline.DragMove, Duration: 0.9}
	samples := []timeline.UISample{
		{Time: 0.2, BundleID: "com.microsoft.VSCode"},
		{Time: 14.0, BundleID: "com.apple.Terminal"},
	}
	events := []timeline.Event{
		clickEvent(1.0, 0.2, 0.3, "com.microsoft.VSCode"),
		keyEvent(3.0, "a", "com.microsoft.VSCode"),
		keyEvent(3.3, "b", "com.microsoft.VSCode"),
		keyEvent(3.6, "c", "com.microsoft.VSCode"),
		{Time: 5.0, Pos: gesture.Start, Kind: timeline.DragStart{Gesture: gesture}},
		{Time: 5.9, Pos: gesture.End, Kind: timeline.DragEnd{Gesture: gesture}},
		scrollEvent(7.0, 0.5, 0.5, timeline.ScrollDown),
		scrollEvent(7.4, 0.5, 0.52, timeline.ScrollDown),
		clickEvent(14.5, 0.7, 0.7, "com.apple.Terminal"),
	}

	c := NewClassifier(DefaultConfig())
	spans := c.Classify(makeTimeline(20, events, samples))
	checkTiling(t, spans, 20)

	seen := map[string]bool{}
	for _, s := range spans {
		seen[Name(s.Intent)] = true
	}
	for _, want := range []string{"clicking", "typing", "dragging", "scrolling", "appSwitching", "idle"} {
		if !seen[want] {
			t.Errorf("Expected a %s span in the mixed classification, got %v", want, seen)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	bad := DefaultConfig()
	bad.MaxKeyGap = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero key gap should fail validation")
	}

	bad = DefaultConfig()
	bad.MinGap = bad.IdleThreshold + 1
	if err := bad.Validate(); err == nil {
		t.Error("min gap above idle threshold should fail validation")
	}

	bad = DefaultConfig()
	bad.TypingAnticipation = -0.1
	if err := bad.Validate(); err == nil {
		t.Error("negative anticipation should fail validation")
	}
}
