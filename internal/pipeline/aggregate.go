package pipeline

import (
	"context"
	"energy-pipeline/internal/model"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// ------------------- Reducers -------------------

// Statistic is the running state kept per key. Both fields only ever grow
// by addition, so partial statistics merge in any order.
type Statistic struct {
	Sum   float64 `json:"sum"`
	Count int64   `json:"count"`
}

// Observe adds one value
func (s *Statistic) Observe(v float64) {
	s.Sum += v
	s.Count++
}

// Merge combines two partial statistics
func (s Statistic) Merge(o Statistic) Statistic {
	return Statistic{Sum: s.Sum + o.Sum, Count: s.Count + o.Count}
}

// Reduction turns a final Statistic into the reported value
type Reduction int

const (
	ReduceSum Reduction = iota
	ReduceMean
)

// Finalize returns the reported value. Count is at least 1 for every key
// that exists.
func (r Reduction) Finalize(s Statistic) float64 {
	switch r {
	case ReduceMean:
		return s.Sum / float64(s.Count)
	default:
		return s.Sum
	}
}

func (r Reduction) String() string {
	switch r {
	case ReduceMean:
		return "mean"
	default:
		return "sum"
	}
}

// Aggregator maps each key to its running statistic
type Aggregator struct {
	stats map[string]*Statistic
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{stats: make(map[string]*Statistic)}
}

// Add records one value for key, creating the statistic on first sight
func (a *Aggregator) Add(key string, value float64) {
	s, ok := a.stats[key]
	if !ok {
		s = &Statistic{}
		a.stats[key] = s
	}
	s.Observe(value)
}

// Merge folds a partial aggregator into a
func (a *Aggregator) Merge(other *Aggregator) {
	for key, s := range other.stats {
		if existing, ok := a.stats[key]; ok {
			*existing = existing.Merge(*s)
		} else {
			cp := *s
			a.stats[key] = &cp
		}
	}
}

// Stat returns the statistic of a key
func (a *Aggregator) Stat(key string) (Statistic, bool) {
	s, ok := a.stats[key]
	if !ok {
		return Statistic{}, false
	}
	return *s, true
}

// Len returns the number of keys seen
func (a *Aggregator) Len() int {
	return len(a.stats)
}

// Entries finalizes every key, ordered by key bytes
func (a *Aggregator) Entries(r Reduction) []model.Entry {
	keys := make([]string, 0, len(a.stats))
	for key := range a.stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]model.Entry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, model.Entry{Key: key, Value: r.Finalize(*a.stats[key])})
	}
	return entries
}

// ------------------- Pass execution -------------------

// PassOptions tunes a single report pass
type PassOptions struct {
	Workers           int
	ChannelBufferSize int
	MaxLineBytes      int
	Verbose           bool
}

// shardWorker aggregates the lines dispatched to it
type shardWorker struct {
	ID      int
	Partial *Aggregator
	Stats   model.PassStats
}

func (w *shardWorker) processLine(report Report, line string) {
	w.Stats.RowsRead++
	key, value, err := report.Extract(SplitRecord(line))
	switch {
	case err == nil:
		w.Partial.Add(key, value)
		w.Stats.RowsAccepted++
	case errors.Is(err, ErrSkipRow):
		w.Stats.RowsSkipped++
	default:
		w.Stats.RowsInvalid++
		log.Printf("Skipping invalid row: %s", line)
	}
}

// AggregatePass reads every data line of r once and aggregates it for a
// single report. Lines are spread across opts.Workers shards whose partial
// results are merged after the input is drained.
func AggregatePass(ctx context.Context, r io.Reader, report Report, opts PassOptions) (*Aggregator, model.PassStats, error) {
	workerCount := opts.Workers
	if workerCount <= 0 {
		workerCount = 1
	}
	bufferSize := opts.ChannelBufferSize
	if bufferSize <= 0 {
		bufferSize = workerCount * 4
	}

	start := time.Now()
	linesCh := make(chan []string, bufferSize)
	g, gctx := errgroup.WithContext(ctx)

	// --- INGESTION ---
	g.Go(func() error {
		defer close(linesCh) // safe: only this goroutine closes linesCh
		return IngestLines(gctx, r, opts.MaxLineBytes, linesCh)
	})

	// --- SHARD WORKERS ---
	workers := make([]*shardWorker, workerCount)
	for i := range workers {
		w := &shardWorker{ID: i + 1, Partial: NewAggregator()}
		workers[i] = w
		g.Go(func() error {
			for batch := range linesCh {
				if err := gctx.Err(); err != nil {
					return err
				}
				for _, line := range batch {
					w.processLine(report, line)
				}
			}
			if opts.Verbose {
				fmt.Printf("📊 %s worker %d completed: %d rows, %d keys\n", report.Name, w.ID, w.Stats.RowsRead, w.Partial.Len())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, model.PassStats{}, err
	}

	// --- MERGE ---
	final := NewAggregator()
	stats := model.PassStats{WorkerCount: workerCount, StartTime: start}
	for _, w := range workers {
		final.Merge(w.Partial)
		stats.Add(w.Stats)
	}
	stats.Keys = final.Len()
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(start)

	return final, stats, nil
}
