package dissect

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FramesPerSecond is the tick rate of every time value in a payload.
const FramesPerSecond = 60

// Identity describes the player that owns a payload. It is copied into
// every event decoded from that payload.
type Identity struct {
	Index        int       `json:"index"`
	Name         string    `json:"name"`
	NameReserved *bool     `json:"nameReserved"`
	Degree       int       `json:"degree"`
	MatchID      string    `json:"matchID"`
	Timestamp    time.Time `json:"timestamp"`
	MapID        int       `json:"mapID"`
	StartTeam    Team      `json:"team"`
	Duration     int       `json:"duration"` // in frames
}

// Validate reports metadata that makes a payload impossible to place in a match.
func (id Identity) Validate() error {
	if strings.TrimSpace(id.MatchID) == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidMetadata)
	}
	if id.Timestamp.IsZero() || id.Timestamp.Unix() <= 0 {
		return fmt.Errorf("%w: match %s has no date", ErrInvalidMetadata, id.MatchID)
	}
	if id.Duration < 0 {
		return fmt.Errorf("%w: match %s has a negative duration", ErrInvalidMetadata, id.MatchID)
	}
	if id.StartTeam < NoTeam || id.StartTeam > Blue {
		return fmt.Errorf("%w: player %q starts on team %d", ErrInvalidMetadata, id.Name, id.StartTeam)
	}
	return nil
}

type stringerIntMarshal struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

type Team int
type Flag int

//go:generate stringer -type=Team -linecomment
const (
	NoTeam Team = iota // none
	Red                // red
	Blue               // blue
)

// Other returns the opposing team, or NoTeam when t is not on a team.
func (t Team) Other() Team {
	if t == NoTeam {
		return NoTeam
	}
	return 3 - t
}

//go:generate stringer -type=Flag -linecomment
const (
	NoFlag             Flag = iota // none
	OpponentFlag                   // opponent
	OpponentPotatoFlag             // opponent_potato
	NeutralFlag                    // neutral
	NeutralPotatoFlag              // neutral_potato
	TemporaryFlag                  // temporary
)

// Power is a set of power-ups, one bit each.
type Power int

const (
	JukeJuice   Power = 1 << iota // juke_juice
	RollingBomb                   // rolling_bomb
	TagPro                        // tagpro
	TopSpeed                      // top_speed

	NoPower Power = 0
)

// Powers lists every power-up in the order payloads encode them.
var Powers = [...]Power{JukeJuice, RollingBomb, TagPro, TopSpeed}

var powerNames = map[Power]string{
	JukeJuice:   "juke_juice",
	RollingBomb: "rolling_bomb",
	TagPro:      "tagpro",
	TopSpeed:    "top_speed",
}

func (p Power) Has(q Power) bool {
	return p&q != 0
}

func (p Power) String() string {
	if p == NoPower {
		return "none"
	}
	names := make([]string, 0, len(Powers))
	for _, q := range Powers {
		if p.Has(q) {
			names = append(names, powerNames[q])
		}
	}
	if rest := p &^ (JukeJuice | RollingBomb | TagPro | TopSpeed); rest != 0 {
		names = append(names, fmt.Sprintf("Power(%d)", int(rest)))
	}
	return strings.Join(names, "|")
}

func (i Team) MarshalJSON() (text []byte, err error) {
	return json.Marshal(stringerIntMarshal{
		Name: i.String(),
		ID:   int(i),
	})
}

func (i *Team) UnmarshalJSON(data []byte) (err error) {
	var x stringerIntMarshal
	if err = json.Unmarshal(data, &x); err != nil {
		return
	}
	*i = Team(x.ID)
	return
}

func (i Flag) MarshalJSON() (text []byte, err error) {
	return json.Marshal(stringerIntMarshal{
		Name: i.String(),
		ID:   int(i),
	})
}

func (i *Flag) UnmarshalJSON(data []byte) (err error) {
	var x stringerIntMarshal
	if err = json.Unmarshal(data, &x); err != nil {
		return
	}
	*i = Flag(x.ID)
	return
}

func (i Power) MarshalJSON() (text []byte, err error) {
	return json.Marshal(stringerIntMarshal{
		Name: i.String(),
		ID:   int(i),
	})
}

func (i *Power) UnmarshalJSON(data []byte) (err error) {
	var x stringerIntMarshal
	if err = json.Unmarshal(data, &x); err != nil {
		return
	}
	*i = Power(x.ID)
	return
}
