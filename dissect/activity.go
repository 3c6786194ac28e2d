package dissect

import (
	"encoding/json"
	"math"
)

type EventType int

//go:generate stringer -type=EventType -linecomment
const (
	Start            EventType = iota // start
	Join                              // join
	Return                            // return
	Tag                               // tag
	Grab                              // grab
	Capture                           // capture
	FlaglessCapture                   // flagless_capture
	PowerDown                         // power_down
	PowerUp                           // power_up
	DuplicatePowerup                  // duplicate_powerup
	PreventStart                      // prevent_start
	PreventStop                       // prevent_stop
	ButtonStart                       // button_start
	ButtonStop                        // button_stop
	BlockStart                        // block_start
	BlockStop                         // block_stop
	Drop                              // drop
	Pop                               // pop
	Quit                              // quit
	Switch                            // switch
	End                               // end
)

// ParseEventType returns the EventType named s.
func ParseEventType(s string) (EventType, bool) {
	for t := Start; t <= End; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

func (i EventType) MarshalJSON() (text []byte, err error) {
	return json.Marshal(stringerIntMarshal{
		Name: i.String(),
		ID:   int(i),
	})
}

func (i *EventType) UnmarshalJSON(data []byte) (err error) {
	var x stringerIntMarshal
	if err = json.Unmarshal(data, &x); err != nil {
		return
	}
	*i = EventType(x.ID)
	return
}

// Event is one entry of a player's (or a match's) event log. Only the
// fields the event type carries are set; the rest stay nil.
//
//	start               Team
//	join                NewTeam
//	pop                 Powers
//	power_up/down       Flag, PowerUp, NewPowers
//	quit                Flag, Powers, OldTeam
//	switch              Flag, Powers, OldTeam, NewTeam
//	everything else     Flag, Powers
type Event struct {
	Type      EventType    `json:"type"`
	Time      int          `json:"time"` // in frames
	Player    Identity     `json:"player"`
	Team      Team         `json:"team"`
	Flag      *Flag        `json:"flag,omitempty"`
	Powers    *Power       `json:"powers,omitempty"`
	PowerUp   *Power       `json:"pup,omitempty"`
	NewPowers *Power       `json:"newPowers,omitempty"`
	OldTeam   *Team        `json:"oldTeam,omitempty"`
	NewTeam   *Team        `json:"newTeam,omitempty"`
	Score     map[Team]int `json:"score,omitempty"`
}

// Seconds returns the event time in seconds, rounded to milliseconds.
func (e Event) Seconds() float64 {
	return math.Round(float64(e.Time)/FramesPerSecond*1000) / 1000
}

// Is reports whether the event type is one of types.
func (e Event) Is(types ...EventType) bool {
	for _, t := range types {
		if e.Type == t {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T {
	return &v
}

func newEvent(t EventType, time int, id Identity, team Team) Event {
	return Event{
		Type:   t,
		Time:   time,
		Player: id,
		Team:   team,
	}
}

func startEvent(id Identity, team Team) Event {
	return newEvent(Start, 0, id, team)
}

func joinEvent(id Identity, s PlayerState) Event {
	e := newEvent(Join, s.Time, id, s.Team)
	e.NewTeam = ptr(s.Team)
	return e
}

// stateEvent covers every event that carries the held flag and active powers.
func stateEvent(t EventType, id Identity, s PlayerState) Event {
	e := newEvent(t, s.Time, id, s.Team)
	e.Flag = ptr(s.Flag)
	e.Powers = ptr(s.Powers)
	return e
}

func powerEvent(t EventType, id Identity, s PlayerState, p Power) Event {
	e := newEvent(t, s.Time, id, s.Team)
	e.Flag = ptr(s.Flag)
	e.PowerUp = ptr(p)
	e.NewPowers = ptr(s.Powers)
	return e
}

func popEvent(id Identity, s PlayerState) Event {
	e := newEvent(Pop, s.Time, id, s.Team)
	e.Powers = ptr(s.Powers)
	return e
}

func quitEvent(id Identity, s PlayerState) Event {
	e := stateEvent(Quit, id, s)
	e.OldTeam = ptr(s.Team)
	return e
}

func switchEvent(id Identity, s PlayerState, to Team) Event {
	e := stateEvent(Switch, id, s)
	e.OldTeam = ptr(s.Team)
	e.NewTeam = ptr(to)
	return e
}

func endEvent(id Identity, s PlayerState) Event {
	e := stateEvent(End, id, s)
	e.Time = id.Duration
	return e
}
