package dissect

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
)

var identityColumns = []string{
	"match_id", "date", "map_id", "duration", "player_index", "name", "name_reserved", "degree", "team",
}

func (id Identity) values() []any {
	var reserved any
	if id.NameReserved != nil {
		reserved = *id.NameReserved
	}
	return []any{
		id.MatchID, id.Timestamp, id.MapID, id.Duration, id.Index, id.Name, reserved, id.Degree, int(id.StartTeam),
	}
}

// EventColumns names the columns of Event.Values for a match played by teams.
func EventColumns(teams []Team) []string {
	columns := append([]string{
		"time", "seconds", "event", "current_team", "flag", "powers", "pup", "new_powers", "old_team", "new_team",
	}, identityColumns...)
	for _, t := range teams {
		columns = append(columns, fmt.Sprintf("score_team_%d_current", t))
	}
	return columns
}

// Values flattens e into a row. Fields the event type does not carry are nil.
func (e Event) Values(teams []Team) []any {
	row := []any{
		e.Time, e.Seconds(), e.Type.String(), int(e.Team),
		optional(e.Flag), optional(e.Powers), optional(e.PowerUp), optional(e.NewPowers),
		optional(e.OldTeam), optional(e.NewTeam),
	}
	row = append(row, e.Player.values()...)
	for _, t := range teams {
		if score, ok := e.Score[t]; ok {
			row = append(row, score)
		} else {
			row = append(row, nil)
		}
	}
	return row
}

func optional[T ~int](v *T) any {
	if v == nil {
		return nil
	}
	return int(*v)
}

// ScoreboardColumns names the scoreboard row. pups counts juke juice, rolling
// bomb and tagpro grants only; top speed has its own pup_ts columns.
var ScoreboardColumns = append(append([]string{}, identityColumns...),
	"final_team", "grabs", "hold_total", "holds", "captures", "tags", "returns", "kisses", "drops", "pops",
	"prevent_total", "prevents", "button_total", "buttons", "block_total", "blocks",
	"pups", "pup_jj", "pup_rb", "pup_tp", "pup_ts", "pup_jj_time", "pup_rb_time", "pup_tp_time", "pup_ts_time",
	"playtime", "final_team_score", "win_loss",
)

// Values flattens s into a row matching ScoreboardColumns.
func (s Scoreboard) Values() []any {
	return append(s.Identity.values(),
		int(s.Team), s.Grabs, s.HoldTotal, durationList(s.Holds), s.Captures, s.Tags, s.Returns, s.Kisses, s.Drops, s.Pops,
		s.PreventTotal, durationList(s.Prevents), s.ButtonTotal, durationList(s.Buttons), s.BlockTotal, durationList(s.Blocks),
		s.Pups, s.PupJJ, s.PupRB, s.PupTP, s.PupTS, s.PupJJTime, s.PupRBTime, s.PupTPTime, s.PupTSTime,
		s.PlayTime, s.FinalTeamScore, s.WinLoss,
	)
}

func durationList(times []int) string {
	parts := make([]string, len(times))
	for i, t := range times {
		parts[i] = strconv.Itoa(t)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

func writeCSV(out io.Writer, header []string, rows [][]any) error {
	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, v := range row {
			record[i] = formatCell(v)
		}
		if err := w.Write(record[:len(row)]); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// MatchTeams returns the union of the teams of matches, in ascending order.
func MatchTeams(matches []*MatchReader) []Team {
	seen := make(map[Team]bool)
	teams := make([]Team, 0, 3)
	for _, m := range matches {
		for _, t := range m.Teams {
			if !seen[t] {
				seen[t] = true
				teams = append(teams, t)
			}
		}
	}
	slices.Sort(teams)
	return teams
}

// WriteEventsCSV writes the event logs of matches as one table.
func WriteEventsCSV(out io.Writer, matches []*MatchReader) error {
	teams := MatchTeams(matches)
	rows := make([][]any, 0)
	for _, m := range matches {
		for _, e := range m.Events {
			rows = append(rows, e.Values(teams))
		}
	}
	return writeCSV(out, EventColumns(teams), rows)
}

// WriteScoreboardsCSV writes the scoreboards of matches as one table.
func WriteScoreboardsCSV(out io.Writer, matches []*MatchReader) error {
	rows := make([][]any, 0)
	for _, m := range matches {
		for _, s := range m.Scoreboards {
			rows = append(rows, s.Values())
		}
	}
	return writeCSV(out, ScoreboardColumns, rows)
}
