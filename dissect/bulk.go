package dissect

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Range selects matches by numeric id, from Min up to but excluding Max.
// The zero Range selects every match.
type Range struct {
	Min int64
	Max int64
}

// ParseRange parses "min-max". An empty string selects every match.
func ParseRange(s string) (r Range, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return r, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	if r.Min, err = strconv.ParseInt(strings.TrimSpace(lo), 10, 64); err != nil {
		return r, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	if r.Max, err = strconv.ParseInt(strings.TrimSpace(hi), 10, 64); err != nil {
		return r, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	if r.Max <= r.Min {
		return r, fmt.Errorf("%w: %q is empty", ErrInvalidRange, s)
	}
	return
}

func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// Contains reports whether the match id is selected. Ids that are not
// numbers are only selected by the zero Range.
func (r Range) Contains(id string) bool {
	if r.IsZero() {
		return true
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return false
	}
	return n >= r.Min && n < r.Max
}

func (r Range) String() string {
	if r.IsZero() {
		return "all"
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
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

func (b bulkMatch) match(id string) (Match, error) {
	if b.Date <= 0 {
		return Match{}, fmt.Errorf("%w: match %s has no date", ErrInvalidMetadata, id)
	}
	m := Match{
		ID:        id,
		Timestamp: time.Unix(b.Date, 0).UTC(),
		MapID:     b.MapID,
		Duration:  b.Duration,
		Players:   make([]PlayerRecord, 0, len(b.Players)),
	}
	for i, p := range b.Players {
		data, err := base64.StdEncoding.DecodeString(p.Events)
		if err != nil {
			return Match{}, fmt.Errorf("%w: match %s player %q: %v", ErrInvalidMetadata, id, p.Name, err)
		}
		m.Players = append(m.Players, PlayerRecord{
			Identity: Identity{
				Index:        i,
				Name:         p.Name,
				NameReserved: p.Auth,
				Degree:       p.Degree,
				MatchID:      id,
				Timestamp:    m.Timestamp,
				MapID:        b.MapID,
				StartTeam:    Team(p.Team),
				Duration:     b.Duration,
			},
			Data: data,
		})
	}
	return m, nil
}

// StreamMatches walks a bulk file one match at a time, in file order,
// calling fn for every match inside rng.
func StreamMatches(in io.Reader, rng Range, fn func(Match) error) error {
	return streamBulk(in, rng, func(id string, b bulkMatch) error {
		m, err := b.match(id)
		if err != nil {
			return err
		}
		return fn(m)
	})
}

func streamBulk(in io.Reader, rng Range, fn func(id string, b bulkMatch) error) error {
	dec := json.NewDecoder(in)
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected token %v", ErrInvalidBulkFile, tok)
		}
		if !rng.Contains(id) {
			var skip json.RawMessage
			if err = dec.Decode(&skip); err != nil {
				return err
			}
			continue
		}
		var b bulkMatch
		if err = dec.Decode(&b); err != nil {
			return fmt.Errorf("match %s: %w", id, err)
		}
		log.Debug().Str("match", id).Int("players", len(b.Players)).Msg("match_streamed")
		if err = fn(id, b); err != nil {
			return err
		}
	}
	return expectDelim(dec, '}')
}

// LoadMatches reads a whole bulk file into memory and returns the matches
// inside rng ordered by id.
func LoadMatches(in io.Reader, rng Range) ([]Match, error) {
	matches := make([]Match, 0)
	err := loadBulk(in, rng, func(id string, b bulkMatch) error {
		m, err := b.match(id)
		if err != nil {
			return err
		}
		matches = append(matches, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func loadBulk(in io.Reader, rng Range, fn func(id string, b bulkMatch) error) error {
	var raw map[string]bulkMatch
	if err := json.NewDecoder(in).Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("%w: %v", ErrInvalidBulkFile, err)
		}
		return err
	}
	ids := make([]string, 0, len(raw))
	for id := range raw {
		if rng.Contains(id) {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, compareIDs)
	for _, id := range ids {
		if err := fn(id, raw[id]); err != nil {
			return err
		}
	}
	return nil
}

func compareIDs(a, b string) int {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected end of file", ErrInvalidBulkFile)
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, found %v", ErrInvalidBulkFile, want, tok)
	}
	return nil
}
