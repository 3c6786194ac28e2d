package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/tagpro-science/tp-dissect/dissect"
)

func TestSaveMatch(t *testing.T) {
	dbURL := os.Getenv("TPDISSECT_TEST_POSTGRES")
	if dbURL == "" {
		t.Skip("TPDISSECT_TEST_POSTGRES not set")
	}
	ctx := context.Background()
	store, err := Open(ctx, dbURL)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	date := time.Date(2024, time.March, 2, 20, 0, 0, 0, time.UTC)
	m, err := dissect.NewMatchReader(dissect.Match{
		ID:        "pg-test",
		Timestamp: date,
		MapID:     7,
		Duration:  600,
		Players: []dissect.PlayerRecord{{
			Identity: dissect.Identity{
				Name:      "ball",
				MatchID:   "pg-test",
				Timestamp: date,
				MapID:     7,
				StartTeam: dissect.Red,
				Duration:  600,
			},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err = m.Read(); err != nil {
		t.Fatal(err)
	}
	for range 2 {
		if err = store.SaveMatch(ctx, m); err != nil {
			t.Fatal(err)
		}
	}
	counts, err := store.CountEvents(ctx, "pg-test")
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(counts, map[string]int{"start": 1, "end": 1}); diff != nil {
		t.Error(diff)
	}
}
