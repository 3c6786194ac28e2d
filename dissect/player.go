package dissect

import (
	"cmp"
	"slices"

	"github.com/rs/zerolog/log"
)

// PlayerState is carried from one frame to the next while a payload is decoded.
type PlayerState struct {
	Team    Team  `json:"team"`
	Time    int   `json:"time"`
	Flag    Flag  `json:"flag"`
	Powers  Power `json:"powers"`
	Prevent bool  `json:"prevent"`
	Button  bool  `json:"button"`
	Block   bool  `json:"block"`
}

// Frame is the set of changes encoded by one iteration of a payload.
type Frame struct {
	NewTeam       Team
	DropPop       bool
	Returns       int
	Tags          int
	Grab          bool
	Captures      int
	Keep          bool
	NewFlag       Flag
	PowersDown    Power
	PowersUp      Power
	Duplicates    int // granted power-ups the player already had
	TogglePrevent bool
	ToggleButton  bool
	ToggleBlock   bool
	Delta         int // frames elapsed since the previous frame
}

// ReadFrame reads the next frame. Which bits are present depends on s,
// the state left behind by the previous frame.
func ReadFrame(r *BitReader, s PlayerState) (f Frame) {
	f.NewTeam = s.Team
	if r.Bool() {
		if s.Team != NoTeam {
			if r.Bool() {
				f.NewTeam = NoTeam // quit
			} else {
				f.NewTeam = s.Team.Other() // switch
			}
		} else {
			f.NewTeam = Red + Team(r.Bit()) // join
		}
	}
	f.DropPop = r.Bool()
	f.Returns = r.Tally()
	f.Tags = r.Tally()
	f.Grab = s.Flag == NoFlag && r.Bool()
	f.Captures = r.Tally()
	f.Keep = !f.DropPop &&
		f.NewTeam != NoTeam &&
		(f.NewTeam == s.Team || s.Team == NoTeam) &&
		(f.Captures == 0 || (s.Flag == NoFlag && !f.Grab) || r.Bool())
	f.NewFlag = s.Flag
	if f.Grab {
		if f.Keep {
			f.NewFlag = OpponentFlag + Flag(r.Fixed(2))
		} else {
			f.NewFlag = TemporaryFlag
		}
	}
	powerups := r.Tally()
	for _, p := range Powers {
		if s.Powers.Has(p) {
			if r.Bool() {
				f.PowersDown |= p
			}
		} else if powerups > 0 && r.Bool() {
			f.PowersUp |= p
			powerups--
		}
	}
	f.Duplicates = powerups
	f.TogglePrevent = r.Bool()
	f.ToggleButton = r.Bool()
	f.ToggleBlock = r.Bool()
	f.Delta = 1 + r.Footer()
	return
}

// Step applies f to s and returns the new state together with the events
// the frame produced, in emission order.
func (s PlayerState) Step(id Identity, f Frame) (PlayerState, []Event) {
	s.Time += f.Delta
	events := make([]Event, 0, 4)
	if s.Team == NoTeam && f.NewTeam != NoTeam {
		s.Team = f.NewTeam
		events = append(events, joinEvent(id, s))
	}
	for range f.Returns {
		events = append(events, stateEvent(Return, id, s))
	}
	for range f.Tags {
		events = append(events, stateEvent(Tag, id, s))
	}
	if f.Grab {
		s.Flag = f.NewFlag
		events = append(events, stateEvent(Grab, id, s))
	}
	// A frame never reports more than one capture, however large the tally.
	if f.Captures > 0 {
		if f.Keep || s.Flag == NoFlag {
			events = append(events, stateEvent(FlaglessCapture, id, s))
		} else {
			events = append(events, stateEvent(Capture, id, s))
			s.Flag = NoFlag
		}
	}
	for _, p := range Powers {
		if f.PowersDown.Has(p) {
			s.Powers &^= p
			events = append(events, powerEvent(PowerDown, id, s, p))
		} else if f.PowersUp.Has(p) {
			s.Powers |= p
			events = append(events, powerEvent(PowerUp, id, s, p))
		}
	}
	for range f.Duplicates {
		events = append(events, stateEvent(DuplicatePowerup, id, s))
	}
	if f.TogglePrevent {
		events = append(events, stateEvent(toggle(s.Prevent, PreventStart, PreventStop), id, s))
		s.Prevent = !s.Prevent
	}
	if f.ToggleButton {
		events = append(events, stateEvent(toggle(s.Button, ButtonStart, ButtonStop), id, s))
		s.Button = !s.Button
	}
	if f.ToggleBlock {
		events = append(events, stateEvent(toggle(s.Block, BlockStart, BlockStop), id, s))
		s.Block = !s.Block
	}
	if f.DropPop {
		if s.Flag != NoFlag {
			events = append(events, stateEvent(Drop, id, s))
			s.Flag = NoFlag
		} else {
			events = append(events, popEvent(id, s))
		}
	}
	// A quitter keeps their team: later frames still read quit/switch bits
	// and the trailing end event stays attributed to it.
	if f.NewTeam != s.Team {
		if f.NewTeam == NoTeam {
			events = append(events, quitEvent(id, s))
			s.Powers = NoPower
		} else {
			events = append(events, switchEvent(id, s, f.NewTeam))
			s.Flag = NoFlag
			s.Team = f.NewTeam
		}
	}
	return s, events
}

func toggle(on bool, start, stop EventType) EventType {
	if on {
		return stop
	}
	return start
}

// PlayerReader decodes the event payload of a single player.
type PlayerReader struct {
	Identity Identity    `json:"player"`
	State    PlayerState `json:"state"`
	Events   []Event     `json:"events"`
	Frames   int         `json:"frames"`

	b         *BitReader
	listeners []func(pos int, before PlayerState, f Frame, events []Event) error
}

// NewPlayerReader validates id before any bit of data is read.
func NewPlayerReader(id Identity, data []byte) (*PlayerReader, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &PlayerReader{
		Identity: id,
		State:    PlayerState{Team: id.StartTeam},
		b:        NewBitReader(data),
	}, nil
}

// Listen registers a callback run after every decoded frame with the bit
// offset the frame started at.
func (p *PlayerReader) Listen(listener func(pos int, before PlayerState, f Frame, events []Event) error) {
	p.listeners = append(p.listeners, listener)
}

// Read decodes the whole payload. Malformed payloads still decode; the only
// errors come from listeners.
func (p *PlayerReader) Read() error {
	if p.State.Team != NoTeam {
		p.Events = append(p.Events, startEvent(p.Identity, p.State.Team))
	}
	for !p.b.End() {
		pos := p.b.Pos()
		before := p.State
		f := ReadFrame(p.b, before)
		var events []Event
		p.State, events = before.Step(p.Identity, f)
		p.Frames++
		for _, e := range events {
			log.Debug().
				Str("username", p.Identity.Name).
				Int("time", e.Time).
				Stringer("event", e.Type).
				Send()
		}
		p.Events = append(p.Events, events...)
		for _, listener := range p.listeners {
			if err := listener(pos, before, f, events); err != nil {
				return err
			}
		}
	}
	p.Events = append(p.Events, endEvent(p.Identity, p.State))
	SortEvents(p.Events)
	return nil
}

// Decode is shorthand for NewPlayerReader followed by Read.
func Decode(id Identity, data []byte) ([]Event, PlayerState, error) {
	p, err := NewPlayerReader(id, data)
	if err != nil {
		return nil, PlayerState{}, err
	}
	if err = p.Read(); err != nil {
		return nil, PlayerState{}, err
	}
	return p.Events, p.State, nil
}

// SortEvents orders events by time. Events sharing a time keep their order.
func SortEvents(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		return cmp.Compare(a.Time, b.Time)
	})
}
