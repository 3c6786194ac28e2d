package dissect

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Batch decodes the matches of a bulk file in parallel.
type Batch struct {
	Range       Range
	Workers     int  // defaults to GOMAXPROCS
	Stream      bool // walk the file instead of loading it whole
	SkipInvalid bool // log and skip matches with invalid metadata
}

type batchJob struct {
	seq   int
	match Match
}

type batchResult struct {
	seq int
	m   *MatchReader // nil when skipped
}

// Run decodes every selected match of in and calls fn with each decoded
// match in file order. fn is never called concurrently.
func (b Batch) Run(ctx context.Context, in io.Reader, fn func(m *MatchReader) error) error {
	workers := b.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan batchJob)
	results := make(chan batchResult)

	g.Go(func() error {
		defer close(jobs)
		seq := 0
		send := func(id string, raw bulkMatch) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := raw.match(id)
			if err != nil {
				if b.SkipInvalid && errors.Is(err, ErrInvalidMetadata) {
					log.Warn().Err(err).Str("match", id).Msg("skipping match")
					return nil
				}
				return err
			}
			select {
			case jobs <- batchJob{seq: seq, match: m}:
				seq++
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if b.Stream {
			return streamBulk(in, b.Range, send)
		}
		return loadBulk(in, b.Range, send)
	})

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for j := range jobs {
				m, err := b.read(j.match)
				if err != nil {
					return err
				}
				select {
				case results <- batchResult{seq: j.seq, m: m}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	g.Go(func() error {
		pending := make(map[int]*MatchReader)
		next := 0
		for r := range results {
			pending[r.seq] = r.m
			for {
				m, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if m == nil {
					continue
				}
				if err := fn(m); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return g.Wait()
}

func (b Batch) read(match Match) (*MatchReader, error) {
	m, err := NewMatchReader(match)
	if err != nil {
		if b.SkipInvalid && errors.Is(err, ErrInvalidMetadata) {
			log.Warn().Err(err).Str("match", match.ID).Msg("skipping match")
			return nil, nil
		}
		return nil, err
	}
	if err = m.Read(); err != nil {
		return nil, err
	}
	return m, nil
}
