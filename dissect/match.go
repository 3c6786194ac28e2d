package dissect

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
)

// PlayerRecord pairs a player with the raw event payload recorded for them.
type PlayerRecord struct {
	Identity Identity
	Data     []byte
}

// Match is one match of a bulk file, before any payload is decoded.
type Match struct {
	ID        string
	Timestamp time.Time
	MapID     int
	Duration  int // in frames
	Players   []PlayerRecord
}

// MatchReader decodes every player of a match and combines them into a single
// time ordered log with running scores and per-player scoreboards.
type MatchReader struct {
	Match       Match
	Players     []*PlayerReader
	Events      []Event
	Teams       []Team
	Score       map[Team]int
	Scoreboards []Scoreboard
	read        bool
}

// NewMatchReader validates the metadata of every player before anything is decoded.
func NewMatchReader(match Match) (m *MatchReader, err error) {
	m = &MatchReader{
		Match:   match,
		Players: make([]*PlayerReader, len(match.Players)),
	}
	for i, p := range match.Players {
		if m.Players[i], err = NewPlayerReader(p.Identity, p.Data); err != nil {
			return nil, err
		}
	}
	return
}

// Listen registers a frame callback on every player of the match.
func (m *MatchReader) Listen(listener func(pos int, before PlayerState, f Frame, events []Event) error) {
	for _, p := range m.Players {
		p.Listen(listener)
	}
}

// Read decodes the players in record order, then merges their events.
func (m *MatchReader) Read() error {
	if m.read {
		return nil
	}
	sequences := make([][]Event, 0, len(m.Players))
	m.Scoreboards = make([]Scoreboard, 0, len(m.Players))
	for _, p := range m.Players {
		if err := p.Read(); err != nil {
			return err
		}
		sequences = append(sequences, p.Events)
		m.Scoreboards = append(m.Scoreboards, NewScoreboard(p.Events))
	}
	m.Events = MergeEvents(sequences...)
	m.Teams = DiscoverTeams(m.Events)
	score, err := AnnotateScore(m.Events, m.Teams)
	if err != nil {
		return fmt.Errorf("match %s: %w", m.Match.ID, err)
	}
	m.Score = score
	if err = ResolveOutcome(m.Scoreboards, m.Score); err != nil {
		return fmt.Errorf("match %s: %w", m.Match.ID, err)
	}
	m.read = true
	log.Debug().
		Str("match", m.Match.ID).
		Int("players", len(m.Players)).
		Int("events", len(m.Events)).
		Interface("score", m.Score).
		Msg("match_read")
	return nil
}

// MergeEvents concatenates sequences and sorts the result by time. Events
// sharing a time stay in sequence order.
func MergeEvents(sequences ...[]Event) []Event {
	n := 0
	for _, s := range sequences {
		n += len(s)
	}
	merged := make([]Event, 0, n)
	for _, s := range sequences {
		merged = append(merged, s...)
	}
	SortEvents(merged)
	return merged
}

// DiscoverTeams returns every team referenced by events, in ascending order.
func DiscoverTeams(events []Event) []Team {
	seen := make(map[Team]struct{})
	for _, e := range events {
		seen[e.Team] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// AnnotateScore walks events in order, counting captures per team, and
// attaches the score after each event to that event. It returns the final
// score. Running it again over annotated events yields the same scores.
func AnnotateScore(events []Event, teams []Team) (map[Team]int, error) {
	score := make(map[Team]int, len(teams))
	for _, t := range teams {
		score[t] = 0
	}
	for i := range events {
		if events[i].Type == Capture {
			if _, ok := score[events[i].Team]; !ok {
				return nil, fmt.Errorf("%w: capture by team %d at %d", ErrUnknownTeam, events[i].Team, events[i].Time)
			}
			score[events[i].Team]++
		}
		events[i].Score = maps.Clone(score)
	}
	return score, nil
}

// ResolveOutcome sets the final team score and result of every scoreboard.
func ResolveOutcome(scoreboards []Scoreboard, score map[Team]int) error {
	for i := range scoreboards {
		team := scoreboards[i].Team
		own, ok := score[team]
		if !ok {
			return fmt.Errorf("%w: %q finished on team %d", ErrUnknownTeam, scoreboards[i].Name, team)
		}
		scoreboards[i].FinalTeamScore = own
		scoreboards[i].WinLoss = outcome(team, score)
	}
	return nil
}

// outcome is 1 when team outscored every other team, 0.5 when it tied all
// of them and 0 otherwise.
func outcome(team Team, score map[Team]int) float64 {
	own := score[team]
	won, drew := true, true
	for t, s := range score {
		if t == team {
			continue
		}
		if own <= s {
			won = false
		}
		if own != s {
			drew = false
		}
	}
	if won {
		return 1
	}
	if drew {
		return 0.5
	}
	return 0
}

func (m *MatchReader) WriteJSON(out io.Writer) error {
	encoder := json.NewEncoder(out)
	return encoder.Encode(m.Data())
}

type matchData struct {
	ID          string       `json:"matchID"`
	Timestamp   time.Time    `json:"timestamp"`
	MapID       int          `json:"mapID"`
	Duration    int          `json:"duration"`
	Score       map[Team]int `json:"score"`
	Events      []Event      `json:"events"`
	Scoreboards []Scoreboard `json:"scoreboards"`
}

func (m *MatchReader) Data() any {
	return matchData{
		ID:          m.Match.ID,
		Timestamp:   m.Match.Timestamp,
		MapID:       m.Match.MapID,
		Duration:    m.Match.Duration,
		Score:       m.Score,
		Events:      m.Events,
		Scoreboards: m.Scoreboards,
	}
}

// WriteBatchJSON writes every match as a single JSON array.
func WriteBatchJSON(out io.Writer, matches []*MatchReader) error {
	data := make([]any, 0, len(matches))
	for _, m := range matches {
		data = append(data, m.Data())
	}
	return json.NewEncoder(out).Encode(data)
}
