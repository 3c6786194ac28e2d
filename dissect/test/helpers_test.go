// this file contains helper functions for *tests*

package test

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/tagpro-science/tp-dissect/dissect"
)

// bitWriter builds payloads bit by bit, most significant bit first
type bitWriter struct {
	bits []bool
}

func (w *bitWriter) Bit(b bool) {
	w.bits = append(w.bits, b)
}

// Fixed writes the n low bits of v
func (w *bitWriter) Fixed(v, n int) {
	for i := n - 1; i >= 0; i-- {
		w.Bit(v>>i&1 == 1)
	}
}

func (w *bitWriter) Tally(k int) {
	for range k {
		w.Bit(true)
	}
	w.Bit(false)
}

// Footer writes v using the narrowest class able to hold it
func (w *bitWriter) Footer(v int) {
	align := (8 - (len(w.bits)+2)%8) % 8
	minimum := 0
	for c := 0; c < 4; c++ {
		total := c<<3 | align
		if v < minimum+1<<total || c == 3 {
			w.Fixed(c, 2)
			w.Fixed(v-minimum, total)
			return
		}
		minimum += 1 << (c<<3 + align)
	}
}

// Bytes packs the bits, padding the last byte with zeros
func (w *bitWriter) Bytes() []byte {
	data := make([]byte, (len(w.bits)+7)/8)
	for i, b := range w.bits {
		if b {
			data[i>>3] |= 0x80 >> (i & 7)
		}
	}
	return data
}

// encodeFrame writes f so that reading it back in state s returns f.
// f.Keep and f.NewFlag must hold the values the reader would derive.
func encodeFrame(w *bitWriter, s dissect.PlayerState, f dissect.Frame) {
	if f.NewTeam == s.Team {
		w.Bit(false)
	} else {
		w.Bit(true)
		if s.Team != dissect.NoTeam {
			w.Bit(f.NewTeam == dissect.NoTeam)
		} else {
			w.Bit(f.NewTeam == dissect.Blue)
		}
	}
	w.Bit(f.DropPop)
	w.Tally(f.Returns)
	w.Tally(f.Tags)
	if s.Flag == dissect.NoFlag {
		w.Bit(f.Grab)
	}
	w.Tally(f.Captures)
	if !f.DropPop &&
		f.NewTeam != dissect.NoTeam &&
		(f.NewTeam == s.Team || s.Team == dissect.NoTeam) &&
		f.Captures != 0 &&
		!(s.Flag == dissect.NoFlag && !f.Grab) {
		w.Bit(f.Keep)
	}
	if f.Grab && f.Keep {
		w.Fixed(int(f.NewFlag-dissect.OpponentFlag), 2)
	}
	powerups := f.Duplicates
	for _, p := range dissect.Powers {
		if f.PowersUp.Has(p) {
			powerups++
		}
	}
	w.Tally(powerups)
	for _, p := range dissect.Powers {
		if s.Powers.Has(p) {
			w.Bit(f.PowersDown.Has(p))
		} else if powerups > 0 {
			w.Bit(f.PowersUp.Has(p))
			if f.PowersUp.Has(p) {
				powerups--
			}
		}
	}
	w.Bit(f.TogglePrevent)
	w.Bit(f.ToggleButton)
	w.Bit(f.ToggleBlock)
	w.Footer(f.Delta - 1)
}

// encodePayload encodes frames for a player starting on team
func encodePayload(team dissect.Team, frames ...dissect.Frame) []byte {
	w := new(bitWriter)
	s := dissect.PlayerState{Team: team}
	for _, f := range frames {
		encodeFrame(w, s, f)
		s, _ = s.Step(dissect.Identity{}, f)
	}
	return w.Bytes()
}

var matchDate = time.Date(2023, time.July, 14, 19, 30, 0, 0, time.UTC)

func identity(index int, name string, team dissect.Team) dissect.Identity {
	return dissect.Identity{
		Index:     index,
		Name:      name,
		Degree:    42,
		MatchID:   "3001",
		Timestamp: matchDate,
		MapID:     7,
		StartTeam: team,
		Duration:  600,
	}
}

func eventTypes(events []dissect.Event) []dissect.EventType {
	types := make([]dissect.EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

func powerPtr(p dissect.Power) *dissect.Power {
	return &p
}

// grab picks up the opponent flag while staying on team
func grab(team dissect.Team, delta int) dissect.Frame {
	return dissect.Frame{
		NewTeam: team,
		Grab:    true,
		Keep:    true,
		NewFlag: dissect.OpponentFlag,
		Delta:   delta,
	}
}

// capture scores the opponent flag held since the previous grab
func capture(team dissect.Team, delta int) dissect.Frame {
	return dissect.Frame{
		NewTeam:  team,
		Captures: 1,
		NewFlag:  dissect.OpponentFlag,
		Delta:    delta,
	}
}

// idle only advances time
func idle(team dissect.Team, flag dissect.Flag, delta int) dissect.Frame {
	return dissect.Frame{
		NewTeam: team,
		Keep:    true,
		NewFlag: flag,
		Delta:   delta,
	}
}

type bulkPlayer struct {
	Auth   *bool  `json:"auth"`
	Name   string `json:"name"`
	Degree int    `json:"degree"`
	Team   int    `json:"team"`
	Events string `json:"events"`
}

type bulkMatch struct {
	Date     int64        `json:"date"`
	MapID    int          `json:"mapId"`
	Duration int          `json:"duration"`
	Players  []bulkPlayer `json:"players"`
}

func newBulkMatch(date int64) bulkMatch {
	return bulkMatch{
		Date:     date,
		MapID:    7,
		Duration: 600,
		Players: []bulkPlayer{
			{
				Name:   "ball",
				Degree: 12,
				Team:   int(dissect.Red),
				Events: base64.StdEncoding.EncodeToString(encodePayload(dissect.Red, grab(dissect.Red, 10), capture(dissect.Red, 90))),
			},
			{
				Name:   "Some Ball",
				Degree: 30,
				Team:   int(dissect.Blue),
			},
		},
	}
}

// bulkJSON writes matches in the order of ids
func bulkJSON(t *testing.T, ids []string, matches map[string]bulkMatch) []byte {
	t.Helper()
	out := []byte("{")
	for i, id := range ids {
		if i > 0 {
			out = append(out, ',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			t.Fatal(err)
		}
		value, err := json.Marshal(matches[id])
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, key...)
		out = append(out, ':')
		out = append(out, value...)
	}
	return append(out, '}')
}
