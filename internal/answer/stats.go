package answer

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	tot   = atomic.Int64{}
	count = atomic.Int64{}

	emergencies = atomic.Int64{}
	errored     = atomic.Int64{}
	sources     sync.Map // string -> *atomic.Int64
)

func record(res Result, took time.Duration) {
	tot.Add(int64(took))
	count.Add(1)
	if res.IsEmergency {
		emergencies.Add(1)
	}
	if res.IsError {
		errored.Add(1)
	}
	c, _ := sources.LoadOrStore(res.Source, &atomic.Int64{})
	c.(*atomic.Int64).Add(1)
}

// Counts returns how many answers each source produced.
func Counts() map[string]int64 {
	m := map[string]int64{}
	sources.Range(func(k, v any) bool {
		m[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})
	return m
}

// Statistics logs resolve counters, it is meant to run when the process
// exits.
func Statistics() {
	if count.Load() == 0 {
		return
	}
	avg := time.Duration(tot.Load() / count.Load())
	args := []any{
		"count", count.Load(),
		"tot", time.Duration(tot.Load()),
		"avg", avg,
		"emergencies", emergencies.Load(),
		"errors", errored.Load(),
	}
	for source, n := range Counts() {
		args = append(args, "source."+source, n)
	}
	slog.Default().Debug("resolve stats", args...)
}
