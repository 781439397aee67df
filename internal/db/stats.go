package db

import (
	"log/slog"
	"sync/atomic"
	"time"
)

var tot = atomic.Int64{}
var count = atomic.Int64{}

func observe(start time.Time) {
	tot.Add(int64(time.Since(start)))
	count.Add(1)
}

// Statistics logs how many store operations ran and how long they took.
func Statistics() {
	if count.Load() == 0 {
		return
	}
	avg := time.Duration(tot.Load() / count.Load())
	slog.Default().Debug("store operation stats", "count", count.Load(), "tot", time.Duration(tot.Load()), "avg", avg)
}
