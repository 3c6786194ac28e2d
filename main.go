package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tagpro-science/tp-dissect/dissect"
	"github.com/tagpro-science/tp-dissect/dissect/eu"
	"github.com/tagpro-science/tp-dissect/store/postgres"
	"github.com/tagpro-science/tp-dissect/store/sqlite"
)

var Version = "dev"

func main() {
	setup()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	input := viper.GetString("input")
	if _, err := os.Stat(input); err != nil {
		log.Fatal().Err(err).Send()
	}
	rng, err := dissect.ParseRange(viper.GetString("range"))
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	batch := dissect.Batch{
		Range:       rng,
		Workers:     viper.GetInt("workers"),
		Stream:      viper.GetBool("stream"),
		SkipInvalid: viper.GetBool("skip-invalid"),
	}
	export := viper.GetString("export")
	dump := viper.GetString("dump")
	// Prints match info to console
	if export == "" {
		if len(dump) > 0 {
			if err := dumpMatches(input, dump, rng); err != nil {
				log.Fatal().Err(err).Send()
			}
			log.Info().Msgf("Dump saved to %s.", dump)
			return
		}
		if err := head(ctx, input, batch); err != nil {
			log.Fatal().Err(err).Send()
		}
		return
	}
	switch {
	case export == "stdout":
		err = exportJSON(ctx, input, batch, nil)
	case isJSON(export):
		err = exportJSON(ctx, input, batch, &export)
	case strings.HasSuffix(export, ".xlsx"):
		err = exportExcel(ctx, input, batch, export)
	case strings.HasSuffix(export, ".db") || strings.HasSuffix(export, ".sqlite"):
		err = exportSQLite(ctx, input, batch, export)
	case strings.HasPrefix(export, "postgres://") || strings.HasPrefix(export, "postgresql://"):
		err = exportPostgres(ctx, input, batch, export)
	default:
		err = exportCSV(ctx, input, batch, export)
	}
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	log.Info().Msg("Output saved.")
}

func setup() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	pflag.StringP("export", "x", "", "specifies the output (*.json[.zst|.gz], *.xlsx, *.db, postgres://..., a csv directory, stdout)")
	pflag.StringP("range", "r", "", "only reads match ids from min up to max (min-max)")
	pflag.BoolP("stream", "s", false, "walks the bulk file instead of loading it into memory")
	pflag.IntP("workers", "w", 0, "number of matches decoded in parallel (default GOMAXPROCS)")
	pflag.Int("report-every", 100, "logs progress every n matches")
	pflag.Bool("per-match", false, "writes one csv file per match")
	pflag.Bool("maps", false, "resolves map names from tagpro.eu for Excel output")
	pflag.Bool("skip-invalid", false, "skips matches with invalid metadata instead of failing")
	pflag.BoolP("debug", "d", false, "sets log level to debug")
	pflag.StringP("dump", "p", "", "dumps decoded frames to specified file")
	pflag.BoolP("version", "v", false, "prints the version")
	pflag.Parse()
	viper.SetEnvPrefix("TPDISSECT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		log.Fatal().Err(err).Send()
	}
	if viper.GetBool("debug") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if viper.GetBool("version") {
		log.Info().Msgf("tp-dissect version: %s", Version)
		log.Info().Msg("https://github.com/tagpro-science/tp-dissect")
		os.Exit(0)
	}
	if len(pflag.Args()) < 1 {
		log.Fatal().Msg("Specify a valid bulk match file path (*.json, *.json.zst, *.json.gz)")
	}
	viper.Set("input", pflag.Args()[0])
	if viper.GetString("export") == "stdout" {
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	}
}

func isJSON(export string) bool {
	name := strings.TrimSuffix(strings.TrimSuffix(export, ".zst"), ".gz")
	return strings.HasSuffix(name, ".json")
}

// run decodes every selected match of input, reporting progress as it goes.
func run(ctx context.Context, input string, batch dissect.Batch, fn func(m *dissect.MatchReader) error) error {
	in, err := dissect.OpenBulk(input)
	if err != nil {
		return err
	}
	defer in.Close()
	every := viper.GetInt("report-every")
	n := 0
	err = batch.Run(ctx, in, func(m *dissect.MatchReader) error {
		n++
		if every > 0 && n%every == 0 {
			log.Info().Msgf("Read %d matches (last %s)", n, m.Match.ID)
		}
		return fn(m)
	})
	if err != nil {
		return err
	}
	log.Info().Msgf("Read %d matches in range %s", n, batch.Range)
	return nil
}

func collect(ctx context.Context, input string, batch dissect.Batch) ([]*dissect.MatchReader, error) {
	matches := make([]*dissect.MatchReader, 0)
	err := run(ctx, input, batch, func(m *dissect.MatchReader) error {
		matches = append(matches, m)
		return nil
	})
	return matches, err
}

func head(ctx context.Context, input string, batch dissect.Batch) error {
	return run(ctx, input, batch, func(m *dissect.MatchReader) error {
		l := log.Info().
			Str("match", m.Match.ID).
			Int("map", m.Match.MapID).
			Time("date", m.Match.Timestamp).
			Float64("minutes", float64(m.Match.Duration)/dissect.FramesPerSecond/60)
		for _, t := range m.Teams {
			if t != dissect.NoTeam {
				l = l.Int(t.String(), m.Score[t])
			}
		}
		l.Send()
		for _, s := range m.Scoreboards {
			log.Info().
				Str("username", s.Name).
				Stringer("team", s.Team).
				Int("captures", s.Captures).
				Int("tags", s.Tags).
				Int("returns", s.Returns).
				Float64("result", s.WinLoss).
				Send()
		}
		return nil
	})
}

func exportJSON(ctx context.Context, input string, batch dissect.Batch, path *string) error {
	matches, err := collect(ctx, input, batch)
	if err != nil {
		return err
	}
	if path == nil {
		return dissect.WriteBatchJSON(os.Stdout, matches)
	}
	out, err := dissect.CreateOutput(*path)
	if err != nil {
		return err
	}
	if err = dissect.WriteBatchJSON(out, matches); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func exportExcel(ctx context.Context, input string, batch dissect.Batch, path string) error {
	matches, err := collect(ctx, input, batch)
	if err != nil {
		return err
	}
	var mapNames map[int]string
	if viper.GetBool("maps") {
		if mapNames, err = eu.GetMapNames(ctx); err != nil {
			log.Warn().Err(err).Msg("Could not resolve map names")
		}
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()
	return dissect.WriteExcel(out, matches, mapNames)
}

func exportSQLite(ctx context.Context, input string, batch dissect.Batch, path string) error {
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()
	return run(ctx, input, batch, func(m *dissect.MatchReader) error {
		return store.SaveMatch(ctx, m)
	})
}

func exportPostgres(ctx context.Context, input string, batch dissect.Batch, dbURL string) error {
	store, err := postgres.Open(ctx, dbURL)
	if err != nil {
		return err
	}
	defer store.Close()
	return run(ctx, input, batch, func(m *dissect.MatchReader) error {
		return store.SaveMatch(ctx, m)
	})
}

func exportCSV(ctx context.Context, input string, batch dissect.Batch, dir string) error {
	if viper.GetBool("per-match") {
		return run(ctx, input, batch, func(m *dissect.MatchReader) error {
			name := m.Match.ID + ".csv"
			matches := []*dissect.MatchReader{m}
			if err := writeCSV(filepath.Join(dir, "events", "match", name), matches, dissect.WriteEventsCSV); err != nil {
				return err
			}
			return writeCSV(filepath.Join(dir, "scoreboards", "match", name), matches, dissect.WriteScoreboardsCSV)
		})
	}
	matches, err := collect(ctx, input, batch)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%s.csv", batch.Range)
	if err = writeCSV(filepath.Join(dir, "events", "bulk_matches", name), matches, dissect.WriteEventsCSV); err != nil {
		return err
	}
	return writeCSV(filepath.Join(dir, "scoreboards", "bulk_matches", name), matches, dissect.WriteScoreboardsCSV)
}

func writeCSV(path string, matches []*dissect.MatchReader, write func(out io.Writer, matches []*dissect.MatchReader) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := dissect.CreateOutput(path)
	if err != nil {
		return err
	}
	if err = write(out, matches); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func dumpMatches(input, output string, rng dissect.Range) error {
	in, err := dissect.OpenBulk(input)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()
	return dissect.StreamMatches(in, rng, func(match dissect.Match) error {
		for _, p := range match.Players {
			r, err := dissect.NewPlayerReader(p.Identity, p.Data)
			if err != nil {
				return err
			}
			if err := r.Dump(out); err != nil {
				return err
			}
		}
		return nil
	})
}
