package test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/tagpro-science/tp-dissect/dissect"
	"github.com/xuri/excelize/v2"
)

func TestWriteJSON(t *testing.T) {
	m := threePlayerMatch(t)
	var buf bytes.Buffer
	if err := m.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var got struct {
		MatchID     string               `json:"matchID"`
		Score       map[string]int       `json:"score"`
		Events      []dissect.Event      `json:"events"`
		Scoreboards []dissect.Scoreboard `json:"scoreboards"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.MatchID != "3001" || len(got.Events) != len(m.Events) || len(got.Scoreboards) != 3 {
		t.Fatalf("unexpected match json %s", buf.String())
	}
	if diff := deep.Equal(got.Score, map[string]int{"1": 2, "2": 1}); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(eventTypes(got.Events), eventTypes(m.Events)); diff != nil {
		t.Error(diff)
	}
	if !strings.Contains(buf.String(), `"type":{"name":"capture","id":5}`) {
		t.Error("expected event types to carry their names")
	}

	buf.Reset()
	if err := dissect.WriteBatchJSON(&buf, []*dissect.MatchReader{m, m}); err != nil {
		t.Fatal(err)
	}
	var batch []json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &batch); err != nil || len(batch) != 2 {
		t.Errorf("expected a list of two matches, got %d (%v)", len(batch), err)
	}
}

func TestEventValues(t *testing.T) {
	m := threePlayerMatch(t)
	columns := dissect.EventColumns(m.Teams)
	if columns[len(columns)-1] != "score_team_2_current" || columns[len(columns)-2] != "score_team_1_current" {
		t.Errorf("unexpected score columns %v", columns[len(columns)-2:])
	}
	for _, e := range m.Events {
		row := e.Values(m.Teams)
		if len(row) != len(columns) {
			t.Fatalf("%s has %d values for %d columns", e.Type, len(row), len(columns))
		}
	}
	start := m.Events[0].Values(m.Teams)
	if start[2] != "start" || start[4] != nil || start[5] != nil {
		t.Errorf("start should only carry its team: %v", start[:10])
	}
	e := dissect.Event{Type: dissect.Grab, Time: 125}
	if s := e.Seconds(); s != 2.083 {
		t.Errorf("Seconds() = %v, want 2.083", s)
	}
}

func TestWriteCSV(t *testing.T) {
	m := threePlayerMatch(t)
	var buf bytes.Buffer
	if err := dissect.WriteEventsCSV(&buf, []*dissect.MatchReader{m}); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(m.Events)+1 {
		t.Fatalf("got %d records, want %d", len(records), len(m.Events)+1)
	}
	if diff := deep.Equal(records[0], dissect.EventColumns(m.Teams)); diff != nil {
		t.Error(diff)
	}
	last := records[len(records)-1]
	if last[0] != "600" || last[1] != "10" || last[2] != "end" {
		t.Errorf("unexpected last record %v", last)
	}

	buf.Reset()
	if err = dissect.WriteScoreboardsCSV(&buf, []*dissect.MatchReader{m}); err != nil {
		t.Fatal(err)
	}
	records, err = csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}
	header := records[0]
	row := make(map[string]string, len(header))
	for i, name := range header {
		row[name] = records[1][i]
	}
	want := map[string]string{
		"name":             "ball",
		"captures":         "2",
		"holds":            "[90, 100]",
		"hold_total":       "190",
		"final_team_score": "2",
		"win_loss":         "1",
		"name_reserved":    "",
	}
	for k, v := range want {
		if row[k] != v {
			t.Errorf("%s = %q, want %q", k, row[k], v)
		}
	}
}

func TestWriteExcel(t *testing.T) {
	m := threePlayerMatch(t)
	var buf bytes.Buffer
	if err := dissect.WriteExcel(&buf, []*dissect.MatchReader{m}, map[int]string{7: "Boombox"}); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if diff := deep.Equal(f.GetSheetList(), []string{"Scoreboards", "Match 3001"}); diff != nil {
		t.Fatal(diff)
	}
	cells := map[string][2]string{
		"header":  {"Scoreboards", "A2"},
		"player":  {"Scoreboards", "F3"},
		"map":     {"Match 3001", "B2"},
		"heading": {"Match 3001", "A1"},
	}
	want := map[string]string{
		"header":  "match_id",
		"player":  "ball",
		"map":     "Boombox [7]",
		"heading": "Match info",
	}
	for k, c := range cells {
		v, err := f.GetCellValue(c[0], c[1])
		if err != nil {
			t.Fatal(err)
		}
		if v != want[k] {
			t.Errorf("%s (%s!%s) = %q, want %q", k, c[0], c[1], v, want[k])
		}
	}
}

func TestDump(t *testing.T) {
	data := encodePayload(dissect.Red, grab(dissect.Red, 10), capture(dissect.Red, 90))
	p, err := dissect.NewPlayerReader(identity(0, "ball", dissect.Red), data)
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err = p.Dump(&sb); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	// header, separator, one line per frame
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), sb.String())
	}
	if !strings.HasSuffix(lines[2], "- grab") || !strings.HasSuffix(lines[3], "- capture") {
		t.Errorf("unexpected frame lines:\n%s\n%s", lines[2], lines[3])
	}
	if len(p.Events) != 4 {
		t.Errorf("dumping should still decode the events, got %d", len(p.Events))
	}
}
