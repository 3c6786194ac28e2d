package dissect

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

var headerFont = &excelize.Font{
	Family: "Arial",
	Size:   24,
}

type excelCompass struct {
	f        *excelize.File
	s        string
	row, col int
}

func newExcelCompass(f *excelize.File, sheet string) *excelCompass {
	return &excelCompass{
		f: f,
		s: sheet,
	}
}

func (c *excelCompass) Sheet(sheet string) *excelCompass {
	c.s = sheet
	c.Reset()
	return c
}

func (c *excelCompass) Reset() *excelCompass {
	c.row = 0
	c.col = 0
	return c
}

func (c *excelCompass) Down(n int) *excelCompass {
	c.row += n
	return c
}

func (c *excelCompass) Right(n int) *excelCompass {
	c.col += n
	return c
}

// Home returns to the first column.
func (c *excelCompass) Home() *excelCompass {
	c.col = 0
	return c
}

func (c *excelCompass) Cell() string {
	cell, _ := excelize.CoordinatesToCellName(c.col+1, c.row+1, false)
	return cell
}

func (c *excelCompass) Heading(text string) *excelCompass {
	c.f.SetCellRichText(c.s, c.Cell(), []excelize.RichTextRun{
		{
			Text: text,
			Font: headerFont,
		},
	})
	return c
}

func (c *excelCompass) Str(text string) *excelCompass {
	c.f.SetCellStr(c.s, c.Cell(), text)
	return c
}

func (c *excelCompass) Int(n int) *excelCompass {
	c.f.SetCellInt(c.s, c.Cell(), n)
	return c
}

func (c *excelCompass) Float(n float64, precision int) *excelCompass {
	c.f.SetCellFloat(c.s, c.Cell(), n, precision, 64)
	return c
}

// Value writes one cell of a Values row. nil leaves the cell empty.
func (c *excelCompass) Value(v any) *excelCompass {
	switch x := v.(type) {
	case nil:
	case int:
		c.Int(x)
	case float64:
		c.Float(x, 3)
	case time.Time:
		c.Str(x.Format(time.RFC3339))
	default:
		c.f.SetCellValue(c.s, c.Cell(), v)
	}
	return c
}

// Row writes values left to right starting at the first column.
func (c *excelCompass) Row(values []any) *excelCompass {
	c.Home()
	for i, v := range values {
		if i > 0 {
			c.Right(1)
		}
		c.Value(v)
	}
	return c
}

func (c *excelCompass) Header(columns []string) *excelCompass {
	c.Home()
	for i, name := range columns {
		if i > 0 {
			c.Right(1)
		}
		c.Str(name)
	}
	return c
}

// WriteExcel writes a summary sheet with every scoreboard followed by one
// sheet per match. mapNames is optional.
func WriteExcel(out io.Writer, matches []*MatchReader, mapNames map[int]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet("Scoreboards"); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	c := newExcelCompass(f, "Scoreboards")
	c.Heading("Scoreboards")
	c.Down(1).Header(ScoreboardColumns)
	for _, m := range matches {
		for _, s := range m.Scoreboards {
			c.Down(1).Row(s.Values())
		}
	}

	for _, m := range matches {
		sheet := fmt.Sprintf("Match %s", m.Match.ID)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		c.Sheet(sheet)

		c.Heading("Match info")
		c.Down(1).Str("Map")
		mapName := fmt.Sprintf("%d", m.Match.MapID)
		if name, ok := mapNames[m.Match.MapID]; ok {
			mapName = fmt.Sprintf("%s [%d]", name, m.Match.MapID)
		}
		c.Right(1).Str(mapName)
		c.Down(1).Home().Str("Date")
		c.Right(1).Str(m.Match.Timestamp.Format(time.RFC3339))
		c.Down(1).Home().Str("Duration")
		c.Right(1).Float(float64(m.Match.Duration)/FramesPerSecond, 3)
		for _, t := range m.Teams {
			if t == NoTeam {
				continue
			}
			c.Down(1).Home().Str(fmt.Sprintf("Score %s", t))
			c.Right(1).Int(m.Score[t])
		}

		c.Down(2).Home().Heading("Statistics")
		c.Down(1).Str("Player")
		c.Right(1).Str("Team")
		c.Right(1).Str("Grabs")
		c.Right(1).Str("Hold")
		c.Right(1).Str("Captures")
		c.Right(1).Str("Tags")
		c.Right(1).Str("Returns")
		c.Right(1).Str("Pops")
		c.Right(1).Str("Prevent")
		c.Right(1).Str("Power-ups")
		c.Right(1).Str("Play time")
		c.Right(1).Str("Result")
		for _, s := range m.Scoreboards {
			c.Down(1).Home().Str(s.Name)
			c.Right(1).Str(s.Team.String())
			c.Right(1).Int(s.Grabs)
			c.Right(1).Float(float64(s.HoldTotal)/FramesPerSecond, 3)
			c.Right(1).Int(s.Captures)
			c.Right(1).Int(s.Tags)
			c.Right(1).Int(s.Returns)
			c.Right(1).Int(s.Pops)
			c.Right(1).Float(float64(s.PreventTotal)/FramesPerSecond, 3)
			c.Right(1).Int(s.Pups)
			c.Right(1).Float(float64(s.PlayTime)/FramesPerSecond, 3)
			c.Right(1).Float(s.WinLoss, 1)
			log.Debug().Str("match", m.Match.ID).Str("username", s.Name).Msg("excel_scoreboard")
		}

		c.Down(2).Home().Heading("Event feed")
		c.Down(1).Header(EventColumns(m.Teams))
		for _, e := range m.Events {
			c.Down(1).Row(e.Values(m.Teams))
		}
	}

	first, err := f.GetSheetIndex("Scoreboards")
	if err != nil {
		return err
	}
	f.SetActiveSheet(first)

	return f.Write(out)
}
