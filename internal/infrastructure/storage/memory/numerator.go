package memory

import (
	"context"
	"time"

	"rollstock/internal/core/numerator"
)

// Numerator is an in-memory numerator.Generator. Both strategies behave
// strictly here; numbers reset when the process restarts.
type Numerator struct {
	base
	counters map[string]int64
}

// NewNumerator creates an empty numerator.
func NewNumerator() *Numerator {
	return &Numerator{counters: make(map[string]int64)}
}

var _ numerator.Generator = (*Numerator)(nil)

func (n *Numerator) GetNextNumber(ctx context.Context, cfg numerator.Config, opts *numerator.Options, period time.Time) (string, error) {
	key := numerator.BuildKey(cfg, period)

	n.mu.Lock()
	n.counters[key]++
	num := n.counters[key]
	n.mu.Unlock()

	return numerator.FormatNumber(cfg, period, num), nil
}
