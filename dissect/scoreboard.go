package dissect

import (
	"github.com/rs/zerolog/log"
)

// Scoreboard summarizes one player's match. FinalTeamScore and WinLoss are
// only known once every player of the match has been decoded.
type Scoreboard struct {
	Identity
	Team           Team    `json:"finalTeam"` // last team the player was on
	Grabs          int     `json:"grabs"`
	HoldTotal      int     `json:"holdTotal"`
	Holds          []int   `json:"holds"`
	Captures       int     `json:"captures"`
	Tags           int     `json:"tags"`
	Returns        int     `json:"returns"`
	Kisses         int     `json:"kisses"`
	Drops          int     `json:"drops"`
	Pops           int     `json:"pops"`
	PreventTotal   int     `json:"preventTotal"`
	Prevents       []int   `json:"prevents"`
	ButtonTotal    int     `json:"buttonTotal"`
	Buttons        []int   `json:"buttons"`
	BlockTotal     int     `json:"blockTotal"`
	Blocks         []int   `json:"blocks"`
	Pups           int     `json:"pups"`
	PupJJ          int     `json:"pupJJ"`
	PupRB          int     `json:"pupRB"`
	PupTP          int     `json:"pupTP"`
	PupTS          int     `json:"pupTS"`
	PupJJTime      int     `json:"pupJJTime"`
	PupRBTime      int     `json:"pupRBTime"`
	PupTPTime      int     `json:"pupTPTime"`
	PupTSTime      int     `json:"pupTSTime"`
	PlayTime       int     `json:"playTime"`
	FinalTeamScore int     `json:"finalTeamScore"`
	WinLoss        float64 `json:"winLoss"`
}

// NewScoreboard derives a scoreboard from one player's time ordered events.
func NewScoreboard(events []Event) Scoreboard {
	var s Scoreboard
	if len(events) > 0 {
		s.Identity = events[0].Player
	}
	holds := trackTypes([]EventType{Grab}, []EventType{Drop, Pop, Capture})
	prevents := trackTypes([]EventType{PreventStart}, []EventType{PreventStop})
	buttons := trackTypes([]EventType{ButtonStart}, []EventType{ButtonStop})
	// Blocks are measured from button toggles, as the published scoreboards did.
	blocks := trackTypes([]EventType{ButtonStart}, []EventType{ButtonStop})
	playing := trackTypes([]EventType{Start, Join}, []EventType{Quit, End})
	pups := map[Power]*durationTracker{
		JukeJuice:   trackPower(JukeJuice),
		RollingBomb: trackPower(RollingBomb),
		TagPro:      trackPower(TagPro),
		TopSpeed:    trackPower(TopSpeed),
	}
	// Kisses are returns made while holding a flag.
	kisses := &windowCounter{
		target: []EventType{Return},
		on:     []EventType{Grab},
		off:    []EventType{Drop, Pop, Capture},
	}
	trackers := []*durationTracker{holds, prevents, buttons, blocks, playing}
	for _, p := range Powers {
		trackers = append(trackers, pups[p])
	}
	for _, e := range events {
		if e.Team != NoTeam {
			s.Team = e.Team
		}
		switch e.Type {
		case Grab:
			s.Grabs++
		case Capture:
			s.Captures++
		case Return:
			s.Returns++
			s.Tags++
		case Tag:
			s.Tags++
		case Drop:
			s.Drops++
		case Pop:
			s.Pops++
		case PowerUp:
			if e.PowerUp == nil {
				break
			}
			switch *e.PowerUp {
			case JukeJuice:
				s.PupJJ++
			case RollingBomb:
				s.PupRB++
			case TagPro:
				s.PupTP++
			case TopSpeed:
				s.PupTS++
			}
		}
		kisses.observe(e)
		for _, t := range trackers {
			t.observe(e)
		}
	}
	s.Kisses = kisses.count
	s.Holds = holds.times
	s.HoldTotal = holds.total()
	s.Prevents = prevents.times
	s.PreventTotal = prevents.total()
	s.Buttons = buttons.times
	s.ButtonTotal = buttons.total()
	s.Blocks = blocks.times
	s.BlockTotal = blocks.total()
	// pups predates top speed tracking and leaves it out.
	s.Pups = s.PupJJ + s.PupRB + s.PupTP
	s.PupJJTime = pups[JukeJuice].total()
	s.PupRBTime = pups[RollingBomb].total()
	s.PupTPTime = pups[TagPro].total()
	s.PupTSTime = pups[TopSpeed].total()
	s.PlayTime = playing.total()
	log.Debug().Interface("scoreboard", s).Send()
	return s
}

// NewScoreboards derives one scoreboard per player from a merged match log,
// in order of each player's first event.
func NewScoreboards(events []Event) []Scoreboard {
	order := make([]int, 0)
	byPlayer := make(map[int][]Event)
	for _, e := range events {
		i := e.Player.Index
		if _, ok := byPlayer[i]; !ok {
			order = append(order, i)
		}
		byPlayer[i] = append(byPlayer[i], e)
	}
	scoreboards := make([]Scoreboard, 0, len(order))
	for _, i := range order {
		scoreboards = append(scoreboards, NewScoreboard(byPlayer[i]))
	}
	return scoreboards
}
