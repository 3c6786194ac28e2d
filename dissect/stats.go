package dissect

// Interval measures the time between an opening and a closing event. It
// holds a single start time: opening again before a close overwrites the
// earlier start rather than nesting.
type Interval struct {
	open  bool
	start int
}

// Open starts (or restarts) the interval at t.
func (iv *Interval) Open(t int) {
	iv.open = true
	iv.start = t
}

// Close ends an open interval at t and returns its duration. ok is false
// when the interval was idle.
func (iv *Interval) Close(t int) (d int, ok bool) {
	if !iv.open {
		return 0, false
	}
	iv.open = false
	return t - iv.start, true
}

func (iv *Interval) IsOpen() bool {
	return iv.open
}

// durationTracker collects the closed intervals bounded by on and off events.
type durationTracker struct {
	on, off func(e Event) bool
	iv      Interval
	times   []int
}

func trackTypes(on, off []EventType) *durationTracker {
	return &durationTracker{
		on:    func(e Event) bool { return e.Is(on...) },
		off:   func(e Event) bool { return e.Is(off...) },
		times: make([]int, 0),
	}
}

// trackPower follows how long a single power-up stays active.
func trackPower(p Power) *durationTracker {
	match := func(t EventType) func(e Event) bool {
		return func(e Event) bool {
			return e.Type == t && e.PowerUp != nil && *e.PowerUp == p
		}
	}
	return &durationTracker{
		on:    match(PowerUp),
		off:   match(PowerDown),
		times: make([]int, 0),
	}
}

func (d *durationTracker) observe(e Event) {
	if d.on(e) {
		d.iv.Open(e.Time)
	}
	if d.off(e) {
		if t, ok := d.iv.Close(e.Time); ok {
			d.times = append(d.times, t)
		}
	}
}

func (d *durationTracker) total() int {
	return sum(d.times)
}

// windowCounter counts target events seen while a window opened by an on
// event has not yet been closed by an off event.
type windowCounter struct {
	target, on, off []EventType
	inside          bool
	count           int
}

func (w *windowCounter) observe(e Event) {
	if e.Is(w.on...) {
		w.inside = true
	}
	if w.inside && e.Is(w.target...) {
		w.count++
	}
	if e.Is(w.off...) {
		w.inside = false
	}
}

// CountEvents returns the number of events whose type is one of types.
func CountEvents(events []Event, types ...EventType) int {
	n := 0
	for _, e := range events {
		if e.Is(types...) {
			n++
		}
	}
	return n
}

// CountPowerUps returns how many times p was granted.
func CountPowerUps(events []Event, p Power) int {
	n := 0
	for _, e := range events {
		if e.Type == PowerUp && e.PowerUp != nil && *e.PowerUp == p {
			n++
		}
	}
	return n
}

// Durations returns every interval opened by an on event and closed by the
// next off event.
func Durations(events []Event, on, off []EventType) []int {
	d := trackTypes(on, off)
	for _, e := range events {
		d.observe(e)
	}
	return d.times
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
