package test

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/tagpro-science/tp-dissect/dissect"
)

func ev(t dissect.EventType, time int) dissect.Event {
	return dissect.Event{Type: t, Time: time, Team: dissect.Red}
}

func pup(t dissect.EventType, time int, p dissect.Power) dissect.Event {
	e := ev(t, time)
	e.PowerUp = powerPtr(p)
	return e
}

func TestInterval(t *testing.T) {
	var iv dissect.Interval
	if _, ok := iv.Close(5); ok {
		t.Error("closing an idle interval should do nothing")
	}
	iv.Open(10)
	iv.Open(20)
	if !iv.IsOpen() {
		t.Fatal("expected an open interval")
	}
	d, ok := iv.Close(50)
	if !ok || d != 30 {
		t.Errorf("Close() = %d, %v, want 30, true", d, ok)
	}
	if iv.IsOpen() {
		t.Error("expected the interval to be idle after closing")
	}
}

func TestHoldsOverwriteUnclosedGrab(t *testing.T) {
	s := dissect.NewScoreboard([]dissect.Event{
		ev(dissect.Start, 0),
		ev(dissect.Grab, 10),
		ev(dissect.Grab, 20),
		ev(dissect.Capture, 50),
		ev(dissect.Drop, 60),
		ev(dissect.End, 100),
	})
	if diff := deep.Equal(s.Holds, []int{30}); diff != nil {
		t.Error(diff)
	}
	if s.Grabs != 2 || s.HoldTotal != 30 || s.Drops != 1 {
		t.Errorf("grabs = %d, hold total = %d, drops = %d", s.Grabs, s.HoldTotal, s.Drops)
	}
}

func TestKisses(t *testing.T) {
	s := dissect.NewScoreboard([]dissect.Event{
		ev(dissect.Return, 1),
		ev(dissect.Grab, 2),
		ev(dissect.Return, 5),
		ev(dissect.Return, 6),
		ev(dissect.Tag, 7),
		ev(dissect.Pop, 10),
		ev(dissect.Return, 12),
	})
	if s.Kisses != 2 {
		t.Errorf("kisses = %d, want 2", s.Kisses)
	}
	if s.Returns != 4 || s.Tags != 5 || s.Pops != 1 {
		t.Errorf("returns = %d, tags = %d, pops = %d", s.Returns, s.Tags, s.Pops)
	}
}

func TestBlocksFollowButtons(t *testing.T) {
	s := dissect.NewScoreboard([]dissect.Event{
		ev(dissect.PreventStart, 5),
		ev(dissect.ButtonStart, 10),
		ev(dissect.PreventStop, 15),
		ev(dissect.ButtonStop, 40),
		ev(dissect.BlockStart, 50),
		ev(dissect.BlockStop, 90),
	})
	if diff := deep.Equal(s.Prevents, []int{10}); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(s.Buttons, []int{30}); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(s.Blocks, s.Buttons); diff != nil {
		t.Error(diff)
	}
	if s.BlockTotal != 30 || s.ButtonTotal != 30 || s.PreventTotal != 10 {
		t.Errorf("block total = %d, button total = %d, prevent total = %d", s.BlockTotal, s.ButtonTotal, s.PreventTotal)
	}
}

func TestPowerUpTimes(t *testing.T) {
	s := dissect.NewScoreboard([]dissect.Event{
		pup(dissect.PowerUp, 10, dissect.JukeJuice),
		pup(dissect.PowerUp, 15, dissect.TopSpeed),
		pup(dissect.PowerDown, 40, dissect.JukeJuice),
		pup(dissect.PowerUp, 50, dissect.JukeJuice),
		pup(dissect.PowerDown, 75, dissect.TopSpeed),
		pup(dissect.PowerDown, 60, dissect.TagPro),
		ev(dissect.DuplicatePowerup, 80),
	})
	if s.PupJJ != 2 || s.PupTS != 1 || s.PupTP != 0 || s.Pups != 2 {
		t.Errorf("jj = %d, ts = %d, tp = %d, pups = %d", s.PupJJ, s.PupTS, s.PupTP, s.Pups)
	}
	if s.PupJJTime != 30 || s.PupTSTime != 60 || s.PupTPTime != 0 || s.PupRBTime != 0 {
		t.Errorf("jj time = %d, ts time = %d, tp time = %d", s.PupJJTime, s.PupTSTime, s.PupTPTime)
	}
	if got := dissect.CountPowerUps([]dissect.Event{pup(dissect.PowerUp, 1, dissect.RollingBomb)}, dissect.RollingBomb); got != 1 {
		t.Errorf("CountPowerUps() = %d, want 1", got)
	}
}

func TestPlayTime(t *testing.T) {
	s := dissect.NewScoreboard([]dissect.Event{
		ev(dissect.Start, 0),
		ev(dissect.Quit, 100),
		ev(dissect.Join, 200),
		{Type: dissect.End, Time: 600},
	})
	if s.PlayTime != 500 {
		t.Errorf("play time = %d, want 500", s.PlayTime)
	}
	// the last team seen is kept even after the player left
	if s.Team != dissect.Red {
		t.Errorf("team = %s, want red", s.Team)
	}
}

func TestDurations(t *testing.T) {
	events := []dissect.Event{
		ev(dissect.Grab, 0),
		ev(dissect.Drop, 10),
		ev(dissect.Drop, 20),
		ev(dissect.Grab, 30),
		ev(dissect.Capture, 45),
	}
	got := dissect.Durations(events, []dissect.EventType{dissect.Grab}, []dissect.EventType{dissect.Drop, dissect.Capture})
	if diff := deep.Equal(got, []int{10, 15}); diff != nil {
		t.Error(diff)
	}
	if n := dissect.CountEvents(events, dissect.Drop, dissect.Capture); n != 3 {
		t.Errorf("CountEvents() = %d, want 3", n)
	}
}
