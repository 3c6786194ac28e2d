package dissect

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// Dump decodes the payload and writes one line per frame to w: the bit
// offset the frame started at, the game time after it, the team and flag
// it left the player with and the events it produced.
func (p *PlayerReader) Dump(w io.StringWriter) error {
	header := fmt.Sprintf("%s [match %s, team %s]:\n---------------\n", p.Identity.Name, p.Identity.MatchID, p.Identity.StartTeam)
	if _, err := w.WriteString(header); err != nil {
		return err
	}
	p.Listen(func(pos int, before PlayerState, f Frame, events []Event) error {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%8d %7d +%-5d %-4s", pos, before.Time+f.Delta, f.Delta, f.NewTeam)
		if f.NewFlag != NoFlag {
			fmt.Fprintf(&sb, " flag=%s", f.NewFlag)
		}
		if f.PowersUp != NoPower || f.PowersDown != NoPower {
			fmt.Fprintf(&sb, " up=%s down=%s", f.PowersUp, f.PowersDown)
		}
		if len(events) > 0 {
			names := make([]string, len(events))
			for i, e := range events {
				names[i] = e.Type.String()
			}
			sb.WriteString(" - " + strings.Join(names, ", "))
		}
		sb.WriteString("\n")
		_, err := w.WriteString(sb.String())
		return err
	})
	if err := p.Read(); err != nil {
		return err
	}
	log.Debug().Str("username", p.Identity.Name).Int("frames", p.Frames).Msg("dump_done")
	_, err := w.WriteString("\n")
	return err
}
